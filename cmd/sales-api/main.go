package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go-sales-analytics/internal/api"
	"go-sales-analytics/internal/api/handler"
	"go-sales-analytics/internal/config"
	"go-sales-analytics/internal/logging"
	"go-sales-analytics/internal/model"
	"go-sales-analytics/internal/pipeline"
	"go-sales-analytics/pkg/router"
)

//	@title			Sales Analytics API
//	@version		1.0
//	@description	Upload retail sales data and query KPIs, chart series and ad hoc aggregations.

//	@BasePath	/api/v1

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "sales-api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, closer, err := logging.Setup(cfg.Logging)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := handler.NewDashboardHandler(
		cfg.Data.MaxUploadBytes,
		pipeline.LoadOptions{SkipInvalidRows: cfg.Data.SkipInvalidRows},
		cfg.Data.Workers,
	)
	if cfg.Data.DefaultSource != "" {
		if _, err := h.LoadSource(ctx, model.Source{URL: cfg.Data.DefaultSource}); err != nil {
			// the API stays up; a dataset can still be uploaded
			logger.Error("failed to load default dataset",
				slog.String("source", cfg.Data.DefaultSource),
				slog.String("error", err.Error()))
		}
	}

	opts := router.Options{
		EnableCORS:     cfg.Security.EnableCORS,
		AllowedOrigins: cfg.Security.AllowedOrigins,
		RateLimit:      cfg.Server.RateLimit,
		RateBurst:      cfg.Server.RateBurst,
	}
	// colored access lines only when stdout is not already carrying the logs
	if cfg.Logging.Output != "stdout" {
		opts.Console = os.Stdout
	}
	r := router.New(opts)
	api.RegisterRoutes(r, h)

	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return router.Serve(ctx, srv, cfg.Server.ShutdownTimeout)
}

package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"go-sales-analytics/internal/analytics"
)

// ErrNoDataset is returned when no dataset has been loaded yet
var ErrNoDataset = errors.New("no dataset loaded")

// APIError represents a structured API error response
type APIError struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

func newAPIError(status int, code string, err error) *APIError {
	return &APIError{StatusCode: status, ErrorCode: code, Message: err.Error()}
}

// badRequest wraps a parameter error
func badRequest(err error) *APIError {
	return newAPIError(http.StatusBadRequest, "INVALID_PARAMETER", err)
}

// toAPIError maps domain errors to status codes
func toAPIError(err error) *APIError {
	var (
		apiErr     *APIError
		colErr     *analytics.UnknownColumnError
		numErr     *analytics.NonNumericColumnError
		reducerErr *analytics.UnknownReducerError
	)
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, ErrNoDataset):
		return newAPIError(http.StatusNotFound, "NO_DATASET", err)
	case errors.As(err, &colErr):
		return newAPIError(http.StatusBadRequest, "UNKNOWN_COLUMN", err)
	case errors.As(err, &numErr):
		return newAPIError(http.StatusBadRequest, "NON_NUMERIC_COLUMN", err)
	case errors.As(err, &reducerErr):
		return newAPIError(http.StatusBadRequest, "UNKNOWN_REDUCER", err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return newAPIError(http.StatusGatewayTimeout, "TIMEOUT", err)
	}
	return newAPIError(http.StatusInternalServerError, "INTERNAL", err)
}

// writeError logs err and renders it
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := toAPIError(err)
	level := slog.LevelWarn
	if apiErr.StatusCode >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	slog.Log(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", apiErr.StatusCode))
	render.Render(w, r, apiErr)
}

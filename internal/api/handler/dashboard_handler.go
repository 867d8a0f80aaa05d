package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/render"
	"github.com/google/uuid"

	"go-sales-analytics/internal/analytics"
	"go-sales-analytics/internal/model"
	"go-sales-analytics/internal/pipeline"
)

// DefaultRecordLimit is the /records page size when limit is absent
const DefaultRecordLimit = 100

// Dataset is a loaded, derived and cleaned table
type Dataset struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	LoadedAt          time.Time        `json:"loaded_at"`
	Rows              int              `json:"rows"`
	DuplicatesRemoved int              `json:"duplicates_removed"`
	Load              model.LoadReport `json:"load"`

	table model.Table
}

// DashboardHandler serves the sales dashboard over the current dataset.
// Uploading replaces the dataset; requests keep the dataset they started with.
type DashboardHandler struct {
	mu      sync.RWMutex
	current *Dataset

	MaxUploadBytes int64
	LoadOptions    pipeline.LoadOptions
	Workers        int
}

// NewDashboardHandler creates a handler with no dataset loaded
func NewDashboardHandler(maxUploadBytes int64, opts pipeline.LoadOptions, workers int) *DashboardHandler {
	if workers < 1 {
		workers = pipeline.DefaultWorkers
	}
	return &DashboardHandler{MaxUploadBytes: maxUploadBytes, LoadOptions: opts, Workers: workers}
}

// LoadSource loads a source (e.g. the configured default dataset) and makes it current
func (h *DashboardHandler) LoadSource(ctx context.Context, source model.Source) (*Dataset, error) {
	table, report, err := pipeline.Load(ctx, source, h.LoadOptions)
	if err != nil {
		return nil, err
	}
	return h.setDataset(ctx, source.URL, table, report)
}

// LoadReader loads an uploaded file and makes it current
func (h *DashboardHandler) LoadReader(ctx context.Context, r io.Reader, name string) (*Dataset, error) {
	table, report, err := pipeline.LoadReader(ctx, r, name, h.LoadOptions)
	if err != nil {
		return nil, err
	}
	return h.setDataset(ctx, name, table, report)
}

func (h *DashboardHandler) setDataset(ctx context.Context, name string, table model.Table, report model.LoadReport) (*Dataset, error) {
	prepared, err := pipeline.Prepare(ctx, table, false, nil)
	if err != nil {
		return nil, err
	}
	ds := &Dataset{
		ID:                uuid.New().String(),
		Name:              name,
		LoadedAt:          time.Now().UTC(),
		Rows:              prepared.Clean.Len(),
		DuplicatesRemoved: prepared.DuplicatesRemoved,
		Load:              report,
		table:             prepared.Clean,
	}

	h.mu.Lock()
	h.current = ds
	h.mu.Unlock()

	slog.InfoContext(ctx, "dataset loaded", slog.String("dataset_id", ds.ID), slog.String("name", name), slog.Int("rows", ds.Rows))
	return ds, nil
}

// Dataset returns the current dataset or ErrNoDataset
func (h *DashboardHandler) Dataset() (*Dataset, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.current == nil {
		return nil, ErrNoDataset
	}
	return h.current, nil
}

// filtered applies the year/category/region query parameters to the current dataset
func (h *DashboardHandler) filtered(r *http.Request) (*Dataset, model.Table, error) {
	ds, err := h.Dataset()
	if err != nil {
		return nil, model.Table{}, err
	}
	f, err := ParseFilter(r)
	if err != nil {
		return nil, model.Table{}, badRequest(err)
	}
	if f.IsZero() {
		return ds, ds.table, nil
	}
	return ds, analytics.Filter(ds.table, analytics.CriteriaFor(ds.table, f)), nil
}

// ParseFilter reads repeatable or comma separated year, category and region
// parameters. An absent parameter leaves its dimension nil ("all values"); a
// present but empty one yields an empty list, which rejects every row.
func ParseFilter(r *http.Request) (*model.Filter, error) {
	q := r.URL.Query()
	f := &model.Filter{
		Categories: listParam(q, "category"),
		Regions:    listParam(q, "region"),
	}
	if years := listParam(q, "year"); years != nil {
		f.Years = make([]int, 0, len(years))
		for _, y := range years {
			n, err := strconv.Atoi(y)
			if err != nil {
				return nil, fmt.Errorf("invalid year %q", y)
			}
			f.Years = append(f.Years, n)
		}
	}
	return f, nil
}

func listParam(q map[string][]string, name string) []string {
	raw, ok := q[name]
	if !ok {
		return nil
	}
	out := []string{}
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// UploadDataset loads an uploaded sales file
// @Summary Upload a dataset
// @Description Load a CSV or XLSX sales file, derive calendar features, drop duplicates and make it the current dataset
// @Tags datasets
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Sales CSV or XLSX file"
// @Success 201 {object} Dataset "Dataset loaded"
// @Failure 400 {object} APIError "Missing file"
// @Failure 422 {object} APIError "File could not be loaded"
// @Router /datasets [post]
func (h *DashboardHandler) UploadDataset(w http.ResponseWriter, r *http.Request) {
	if h.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, newAPIError(http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", err))
			return
		}
		writeError(w, r, badRequest(fmt.Errorf("multipart field \"file\" is required: %w", err)))
		return
	}
	defer file.Close()

	ds, err := h.LoadReader(r.Context(), file, header.Filename)
	if err != nil {
		writeError(w, r, newAPIError(http.StatusUnprocessableEntity, "LOAD_FAILED", err))
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, ds)
}

// CurrentDataset returns the current dataset metadata
// @Summary Current dataset
// @Description Metadata of the dataset the dashboard is serving
// @Tags datasets
// @Produce json
// @Success 200 {object} Dataset "Current dataset"
// @Failure 404 {object} APIError "No dataset loaded"
// @Router /datasets/current [get]
func (h *DashboardHandler) CurrentDataset(w http.ResponseWriter, r *http.Request) {
	ds, err := h.Dataset()
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, ds)
}

// Filters returns the distinct years, categories and regions of the current dataset
// @Summary Filter options
// @Description Distinct years (ascending), categories and regions (first-seen order)
// @Tags dashboard
// @Produce json
// @Success 200 {object} analytics.FilterOptions "Filter options"
// @Failure 404 {object} APIError "No dataset loaded"
// @Router /dashboard/filters [get]
func (h *DashboardHandler) Filters(w http.ResponseWriter, r *http.Request) {
	ds, err := h.Dataset()
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, analytics.Options(ds.table))
}

// KPIs returns headline numbers of the filtered dataset
// @Summary Dashboard KPIs
// @Description Total sales, total profit and distinct orders of the filtered rows
// @Tags dashboard
// @Produce json
// @Param year query []int false "Years (absent: all, empty: none)" collectionFormat(multi)
// @Param category query []string false "Categories (absent: all, empty: none)" collectionFormat(multi)
// @Param region query []string false "Regions (absent: all, empty: none)" collectionFormat(multi)
// @Success 200 {object} analytics.KPIs "KPIs"
// @Failure 400 {object} APIError "Invalid filter"
// @Failure 404 {object} APIError "No dataset loaded"
// @Router /dashboard/kpis [get]
func (h *DashboardHandler) KPIs(w http.ResponseWriter, r *http.Request) {
	_, table, err := h.filtered(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, analytics.ComputeKPIs(table))
}

// ChartsResponse holds the dashboard chart series
type ChartsResponse struct {
	Rows   int                       `json:"rows"`
	Charts []model.AggregationResult `json:"charts"`
}

// Charts returns the daily trend, category, region and top product series
// @Summary Dashboard charts
// @Description Daily sales trend, sales by category, sales by region and top 10 products by sales of the filtered rows
// @Tags dashboard
// @Produce json
// @Param year query []int false "Years (absent: all, empty: none)" collectionFormat(multi)
// @Param category query []string false "Categories (absent: all, empty: none)" collectionFormat(multi)
// @Param region query []string false "Regions (absent: all, empty: none)" collectionFormat(multi)
// @Success 200 {object} ChartsResponse "Chart series"
// @Failure 400 {object} APIError "Invalid filter"
// @Failure 404 {object} APIError "No dataset loaded"
// @Router /dashboard/charts [get]
func (h *DashboardHandler) Charts(w http.ResponseWriter, r *http.Request) {
	_, table, err := h.filtered(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	charts, err := pipeline.RunQueries(r.Context(), table, pipeline.DashboardQueries(), h.Workers)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, ChartsResponse{Rows: table.Len(), Charts: charts})
}

// RecordsResponse is a page of filtered rows
type RecordsResponse struct {
	Total   int            `json:"total"`
	Records []model.Record `json:"records"`
}

// Records returns the first rows of the filtered dataset
// @Summary Filtered records
// @Description First rows of the filtered dataset
// @Tags dashboard
// @Produce json
// @Param limit query int false "Maximum rows (default 100)"
// @Param year query []int false "Years (absent: all, empty: none)" collectionFormat(multi)
// @Param category query []string false "Categories (absent: all, empty: none)" collectionFormat(multi)
// @Param region query []string false "Regions (absent: all, empty: none)" collectionFormat(multi)
// @Success 200 {object} RecordsResponse "Rows"
// @Failure 400 {object} APIError "Invalid parameter"
// @Failure 404 {object} APIError "No dataset loaded"
// @Router /records [get]
func (h *DashboardHandler) Records(w http.ResponseWriter, r *http.Request) {
	limit := DefaultRecordLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, r, badRequest(fmt.Errorf("invalid limit %q", raw)))
			return
		}
		limit = n
	}
	_, table, err := h.filtered(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, RecordsResponse{Total: table.Len(), Records: table.Head(limit).Rows})
}

// Aggregate runs an ad hoc group/reduce/sort/limit query on the filtered dataset
// @Summary Ad hoc aggregation
// @Description Group the filtered rows by a column and reduce a metric
// @Tags dashboard
// @Produce json
// @Param group_by query string true "Group-by column, e.g. Region"
// @Param metric query string false "Metric column (default Sales)"
// @Param reducer query string false "sum, count, mean, min or max (default sum)"
// @Param order query string false "key_asc, value_desc or value_asc (default key_asc)"
// @Param limit query int false "Maximum groups, 0 for all"
// @Param year query []int false "Years (absent: all, empty: none)" collectionFormat(multi)
// @Param category query []string false "Categories (absent: all, empty: none)" collectionFormat(multi)
// @Param region query []string false "Regions (absent: all, empty: none)" collectionFormat(multi)
// @Success 200 {object} model.AggregationResult "Aggregation result"
// @Failure 400 {object} APIError "Invalid query"
// @Failure 404 {object} APIError "No dataset loaded"
// @Router /aggregate [get]
func (h *DashboardHandler) Aggregate(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, r, badRequest(err))
		return
	}
	_, table, err := h.filtered(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := analytics.AggregateParallel(table, q, h.Workers)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res.Name = q.Title()
	render.JSON(w, r, res)
}

func parseQuery(r *http.Request) (model.Query, error) {
	params := r.URL.Query()
	q := model.Query{
		GroupBy: model.Column(params.Get("group_by")),
		Metric:  model.Column(params.Get("metric")),
		Reducer: params.Get("reducer"),
	}
	if q.GroupBy == "" {
		return q, errors.New("group_by is required")
	}
	if q.Metric == "" {
		q.Metric = model.ColSales
	}
	order, err := model.ParseOrder(params.Get("order"))
	if err != nil {
		return q, err
	}
	q.Order = order
	if raw := params.Get("limit"); raw != "" {
		if q.Limit, err = strconv.Atoi(raw); err != nil {
			return q, fmt.Errorf("invalid limit %q", raw)
		}
	}
	return q, nil
}

// Health reports liveness and whether a dataset is loaded
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} map[string]interface{} "Service healthy"
// @Router /health [get]
func (h *DashboardHandler) Health(w http.ResponseWriter, r *http.Request) {
	_, err := h.Dataset()
	render.JSON(w, r, map[string]interface{}{
		"status":         "ok",
		"dataset_loaded": err == nil,
		"time":           time.Now().UTC(),
	})
}

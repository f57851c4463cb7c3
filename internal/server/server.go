package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/iwvelando/gearing-dashboard/internal/breakdown"
	"github.com/iwvelando/gearing-dashboard/internal/gearing"
	"github.com/iwvelando/gearing-dashboard/internal/workbook"
	"github.com/iwvelando/gearing-dashboard/pkg/constants"
	"github.com/iwvelando/gearing-dashboard/pkg/mathutil"
	"github.com/iwvelando/gearing-dashboard/pkg/output"
	"github.com/iwvelando/gearing-dashboard/pkg/period"
	"github.com/iwvelando/gearing-dashboard/pkg/validation"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

//go:embed static/*
var staticFiles embed.FS

// Options configures the handler.
type Options struct {
	MaxUploadSize int64
	CacheSize     int
	Version       string
	// Sections overrides the dashboard sections; empty means the defaults.
	Sections []gearing.Section
	// Breakdown holds the default breakdown selections used when a request
	// leaves a selection empty.
	Breakdown breakdown.Options
}

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	sections      []gearing.Section
	breakdown     breakdown.Options
	cache         *workbook.Cache
	metrics       *Metrics
}

// NewHandler constructs the HTTP handler that serves the web UI and the
// gearing and breakdown API.
func NewHandler(logger *zap.Logger, opts Options) (http.Handler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	maxUploadSize := opts.MaxUploadSize
	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	cache, err := workbook.NewCache(opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload cache: %w", err)
	}

	h := &handler{
		logger:        logger,
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
		sections:      opts.Sections,
		breakdown:     opts.Breakdown,
		cache:         cache,
		metrics:       NewMetrics(),
	}

	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/gearing", h.metrics.instrument("gearing", h.handleGearing)).Methods(http.MethodPost)
	api.HandleFunc("/breakdown", h.metrics.instrument("breakdown", h.handleBreakdown)).Methods(http.MethodPost)
	api.HandleFunc("/uploads/{id:[0-9a-f]+}/sections/{section:[A-Za-z0-9_-]+}.csv",
		h.metrics.instrument("section_csv", h.handleSectionCSV)).Methods(http.MethodGet)
	api.HandleFunc("/uploads/{id:[0-9a-f]+}/sections/{section:[A-Za-z0-9_-]+}.png",
		h.metrics.instrument("section_png", h.handleSectionChart)).Methods(http.MethodGet)
	api.HandleFunc("/version", h.metrics.instrument("version", h.handleVersion)).Methods(http.MethodGet)

	router.Handle("/metrics", promhttp.HandlerFor(h.metrics.Registry(), promhttp.HandlerOpts{}))

	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare embedded static files: %w", err)
	}
	router.PathPrefix("/").Handler(http.FileServer(http.FS(sub))).Methods(http.MethodGet, http.MethodHead)

	return router, nil
}

type gearingResponse struct {
	UploadID    string            `json:"uploadId"`
	RunID       string            `json:"runId"`
	Sheet       string            `json:"sheet"`
	Cached      bool              `json:"cached"`
	Sections    []sectionResponse `json:"sections"`
	Warnings    []string          `json:"warnings,omitempty"`
	DroppedRows int               `json:"droppedRows"`
	Duration    string            `json:"duration"`
}

type sectionResponse struct {
	Key   string        `json:"key"`
	Title string        `json:"title"`
	Kind  string        `json:"kind"`
	Rows  []rowResponse `json:"rows"`
	KPI   *kpiResponse  `json:"kpi,omitempty"`
	Error string        `json:"error,omitempty"`
}

type rowResponse struct {
	Period      string   `json:"period"`
	Month       string   `json:"month"`
	SortKey     int      `json:"sortKey"`
	Amount      *float64 `json:"amount"`
	AmountT     *float64 `json:"amountT"`
	Denominator *float64 `json:"denominator,omitempty"`
	Ratio       *float64 `json:"ratio,omitempty"`
}

type kpiResponse struct {
	Period       string  `json:"period"`
	Latest       float64 `json:"latest"`
	Previous     float64 `json:"previous"`
	Delta        float64 `json:"delta"`
	DeltaPercent float64 `json:"deltaPercent"`
}

type breakdownResponse struct {
	UploadID string                  `json:"uploadId"`
	Cached   bool                    `json:"cached"`
	Workbook string                  `json:"workbook"`
	Sheets   []breakdown.SheetResult `json:"sheets"`
	Duration string                  `json:"duration"`
}

func (h *handler) handleGearing(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleGearing"
	start := time.Now()

	wb, hit, ok := h.loadUpload(w, r, op)
	if !ok {
		return
	}

	filter, err := parseFilter(r.FormValue("years"), r.FormValue("months"))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	report, err := h.runGearing(wb, r.FormValue("sheet"), filter)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	h.metrics.DroppedRows.Add(float64(report.Dropped))

	response := gearingResponse{
		UploadID:    wb.ID,
		RunID:       report.RunID,
		Sheet:       report.Sheet,
		Cached:      hit,
		Warnings:    report.Warnings,
		DroppedRows: report.Dropped,
		Duration:    time.Since(start).String(),
	}
	for _, section := range report.Sections {
		response.Sections = append(response.Sections, buildSection(section))
	}

	h.logger.Info("gearing request complete",
		zap.String("op", op),
		zap.String("upload", wb.ID),
		zap.String("run", report.RunID),
		zap.Bool("cached", hit),
		zap.Duration("duration", time.Since(start)),
	)
	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleBreakdown"
	start := time.Now()

	wb, hit, ok := h.loadUpload(w, r, op)
	if !ok {
		return
	}

	opts := breakdown.Options{
		Periods:    orDefault(validation.ParseList(r.FormValue("periods")), h.breakdown.Periods),
		KurPen:     orDefault(validation.ParseList(r.FormValue("kurpen")), h.breakdown.KurPen),
		Dimensions: orDefault(validation.ParseList(r.FormValue("dimensions")), h.breakdown.Dimensions),
		Tenors:     orDefault(validation.ParseList(r.FormValue("tenors")), h.breakdown.Tenors),
	}
	report := breakdown.Run(h.logger, wb, opts)

	h.writeJSON(w, http.StatusOK, breakdownResponse{
		UploadID: wb.ID,
		Cached:   hit,
		Workbook: report.Workbook,
		Sheets:   report.Sheets,
		Duration: time.Since(start).String(),
	})
}

func (h *handler) handleSectionCSV(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSectionCSV"
	section, ok := h.cachedSection(w, r, op)
	if !ok {
		return
	}

	csvText, err := output.CsvString(section)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to write CSV: %v", err), op)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.csv"`, section.Section.Key))
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, csvText); err != nil {
		h.logger.Warn("failed to write CSV response", zap.String("op", op), zap.Error(err))
	}
}

func (h *handler) handleSectionChart(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSectionChart"
	section, ok := h.cachedSection(w, r, op)
	if !ok {
		return
	}

	png, err := renderChart(section)
	if errors.Is(err, errNoPoints) {
		h.respondErrorWithOp(w, http.StatusUnprocessableEntity, err.Error(), op)
		return
	}
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		h.logger.Warn("failed to write chart response", zap.String("op", op), zap.Error(err))
	}
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// loadUpload reads the multipart "file" field and parses it through the
// cache. On failure the error response has already been written.
func (h *handler) loadUpload(w http.ResponseWriter, r *http.Request, op string) (*workbook.Workbook, bool, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return nil, false, false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return nil, false, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, "missing spreadsheet file", op)
		return nil, false, false
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	if err := validation.ValidateUpload(header.Filename, header.Size, h.maxUploadSize); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return nil, false, false
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to read upload: %v", err), op)
		return nil, false, false
	}

	wb, hit, err := h.cache.Load(header.Filename, buf.Bytes())
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return nil, false, false
	}
	h.metrics.RecordCache(hit)
	return wb, hit, true
}

// cachedSection reruns the gearing pipeline over a cached upload and picks
// one section, honoring the years, months and sheet query parameters.
func (h *handler) cachedSection(w http.ResponseWriter, r *http.Request, op string) (gearing.SectionResult, bool) {
	vars := mux.Vars(r)
	wb, found := h.cache.Get(vars["id"])
	h.metrics.RecordCache(found)
	if !found {
		h.respondErrorWithOp(w, http.StatusNotFound, "upload not found, upload the file again", op)
		return gearing.SectionResult{}, false
	}

	query := r.URL.Query()
	filter, err := parseFilter(query.Get("years"), query.Get("months"))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return gearing.SectionResult{}, false
	}

	report, err := h.runGearing(wb, query.Get("sheet"), filter)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return gearing.SectionResult{}, false
	}
	section, err := report.Section(vars["section"])
	if err != nil {
		h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), op)
		return gearing.SectionResult{}, false
	}
	if section.Err != nil {
		h.respondErrorWithOp(w, http.StatusUnprocessableEntity, section.Err.Error(), op)
		return gearing.SectionResult{}, false
	}
	return section, true
}

// runGearing runs the pipeline on the named sheet, or on the selected one
// when sheetName is empty. Naming a sheet the upload lacks is an error.
func (h *handler) runGearing(wb *workbook.Workbook, sheetName string, filter gearing.Filter) (gearing.Report, error) {
	sheet := gearing.SelectSheet(wb)
	if sheetName = strings.TrimSpace(sheetName); sheetName != "" {
		s, ok := wb.Sheet(sheetName)
		if !ok {
			return gearing.Report{}, fmt.Errorf("sheet %q not found in %s", sheetName, wb.Name)
		}
		sheet = s
	}
	rc := gearing.NewRunContext(h.logger, filter, h.sections)
	return gearing.Run(rc, sheet), nil
}

func parseFilter(years, months string) (gearing.Filter, error) {
	var filter gearing.Filter
	for _, item := range validation.ParseList(years) {
		year, err := strconv.Atoi(item)
		if err != nil {
			return gearing.Filter{}, fmt.Errorf("invalid year %q", item)
		}
		filter.Years = append(filter.Years, year)
	}
	for _, item := range validation.ParseList(months) {
		month, ok := period.MonthFromAbbrev(item)
		if !ok {
			return gearing.Filter{}, fmt.Errorf("invalid month %q", item)
		}
		filter.Months = append(filter.Months, month)
	}
	return filter, nil
}

func buildSection(section gearing.SectionResult) sectionResponse {
	resp := sectionResponse{
		Key:   section.Section.Key,
		Title: section.Section.Title,
		Kind:  string(section.Section.Kind),
		Rows:  make([]rowResponse, 0, len(section.Rows)),
	}
	if section.Err != nil {
		resp.Error = section.Err.Error()
	}
	for _, row := range section.Rows {
		resp.Rows = append(resp.Rows, rowResponse{
			Period:      row.Label,
			Month:       row.Month,
			SortKey:     row.SortKey,
			Amount:      row.Amount.Ptr(),
			AmountT:     row.AmountT.Ptr(),
			Denominator: row.Denominator.Ptr(),
			Ratio:       row.Ratio.Ptr(),
		})
	}
	if kpi := section.KPI; kpi != nil {
		resp.KPI = &kpiResponse{
			Period:       kpi.LatestLabel,
			Latest:       kpi.Latest,
			Previous:     kpi.Previous,
			Delta:        kpi.Delta,
			DeltaPercent: mathutil.Round(kpi.DeltaPercent),
		}
	}
	return resp
}

func orDefault(selected, fallback []string) []string {
	if len(selected) > 0 {
		return selected
	}
	return fallback
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Warn("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

package web

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/airsat/internal/core"
	"github.com/JonMunkholm/airsat/internal/export"
	"github.com/JonMunkholm/airsat/internal/logging"
	"github.com/JonMunkholm/airsat/internal/metrics"
	"github.com/JonMunkholm/airsat/internal/web/templates"
)

// render runs one filter and aggregate pass and records it.
func (s *Server) render(spec core.FilterSpec) (*core.View, error) {
	start := time.Now()
	view, err := core.Render(s.data, spec)
	rows := 0
	if view != nil {
		rows = view.Filtered.Len()
	}
	metrics.ObserveRender(time.Since(start), rows, err)
	return view, err
}

// renderRequest renders the FilterSpec described by the request's query.
func (s *Server) renderRequest(r *http.Request) (*core.View, error) {
	spec, err := parseFilterSpec(r.URL.Query(), s.defaults)
	if err != nil {
		return nil, err
	}
	return s.render(spec)
}

// recoverable reports whether a filter error should be answered with the
// previous view instead of an error page.
func recoverable(err error) bool {
	var rangeErr *core.InvalidRangeError
	var valueErr *filterValueError
	return errors.As(err, &rangeErr) || errors.As(err, &valueErr)
}

// handleDashboard renders the main dashboard page.
// A rejected filter shows an alert above the session's last valid view.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := s.sessionID(w, r)

	spec, err := parseFilterSpec(r.URL.Query(), s.defaults)
	form := spec
	var view *core.View
	if err == nil {
		view, err = s.render(spec)
	}

	status := http.StatusOK
	var alert *core.UserMessage
	if err != nil {
		if !recoverable(err) {
			respondError(w, r, err, statusFor(err))
			return
		}
		logging.FromContext(ctx).Warn("filter rejected", "error", err, "session", id)

		msg := core.MapError(err)
		alert = &msg
		status = statusFor(err)

		last := s.lastValid(id)
		var valueErr *filterValueError
		if errors.As(err, &valueErr) {
			form = last
		}
		if view, err = s.render(last); err != nil {
			respondError(w, r, err, http.StatusInternalServerError)
			return
		}
	} else {
		s.sessions.Remember(id, spec)
	}

	page, size := pageParams(r, s.cfg.Filters.PageSize, s.cfg.Filters.MaxPageSize)
	showing := view.Filtered.Len()
	totalPages := max(1, (showing+size-1)/size)
	page = min(page, totalPages)

	data := templates.DashboardData{
		Source:     s.info.Source,
		LoadedAt:   s.info.LoadedAt,
		Alert:      alert,
		Form:       form,
		Domains:    s.domains(),
		Bounds:     s.bounds,
		Showing:    showing,
		Total:      view.Total,
		Summary:    view.Summary,
		Rows:       view.Filtered.Slice((page-1)*size, page*size),
		Page:       page,
		TotalPages: totalPages,
		Query:      encodeFilterSpec(view.Spec).Encode(),
		Report:     s.info.Report,
	}

	var buf bytes.Buffer
	if err := templates.Dashboard(data, formFields(categoryParams), formFields(rangeParams)).Render(ctx, &buf); err != nil {
		respondError(w, r, fmt.Errorf("render dashboard: %w", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// lastValid returns the session's last valid spec, or the default spec.
func (s *Server) lastValid(id uuid.UUID) core.FilterSpec {
	if spec, ok := s.sessions.LastValid(id); ok {
		return spec
	}
	return s.defaults
}

func (s *Server) domains() map[core.Column][]string {
	out := make(map[core.Column][]string, len(core.CategoricalColumns))
	for _, col := range core.CategoricalColumns {
		out[col] = s.data.Domain(col)
	}
	return out
}

func formFields(params []filterParam) []templates.FilterField {
	out := make([]templates.FilterField, len(params))
	for i, p := range params {
		out[i] = templates.FilterField{Column: p.column, Param: p.name}
	}
	return out
}

type summaryResponse struct {
	Showing int              `json:"showing"`
	Total   int              `json:"total"`
	Filters core.FilterSpec  `json:"filters"`
	Summary core.SummaryView `json:"summary"`
}

// handleSummary returns the SummaryView for the requested filters.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	view, err := s.renderRequest(r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, r, summaryResponse{
		Showing: view.Filtered.Len(),
		Total:   view.Total,
		Filters: view.Spec,
		Summary: view.Summary,
	})
}

type recordsResponse struct {
	Showing    int           `json:"showing"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	TotalPages int           `json:"totalPages"`
	Records    []core.Record `json:"records"`
}

// handleRecords returns one page of the filtered records.
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	view, err := s.renderRequest(r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	page, size := pageParams(r, s.cfg.Filters.PageSize, s.cfg.Filters.MaxPageSize)
	showing := view.Filtered.Len()
	records := view.Filtered.Slice((page-1)*size, page*size)
	if records == nil {
		records = []core.Record{}
	}

	writeJSON(w, r, recordsResponse{
		Showing:    showing,
		Total:      view.Total,
		Page:       page,
		PageSize:   size,
		TotalPages: (showing + size - 1) / size,
		Records:    records,
	})
}

type boundsResponse struct {
	Bounds   core.Bounds              `json:"bounds"`
	Domains  map[core.Column][]string `json:"domains"`
	Defaults core.FilterSpec          `json:"defaults"`
}

// handleBounds returns the observed range bounds, categorical domains, and
// the initial filters.
func (s *Server) handleBounds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, boundsResponse{
		Bounds:   s.bounds,
		Domains:  s.domains(),
		Defaults: s.defaults,
	})
}

type cleanReportResponse struct {
	LoadID   uuid.UUID        `json:"loadId"`
	Source   string           `json:"source"`
	LoadedAt time.Time        `json:"loadedAt"`
	Report   core.CleanReport `json:"report"`
}

// handleCleanReport returns what the startup cleaning pass did.
func (s *Server) handleCleanReport(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, cleanReportResponse{
		LoadID:   s.info.ID,
		Source:   s.info.Source,
		LoadedAt: s.info.LoadedAt,
		Report:   s.info.Report,
	})
}

// handleExport streams the filtered records as a download.
// Exports share a concurrency limiter; a request that cannot get a slot in
// time is rejected with 503.
func (s *Server) handleExport(format export.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := s.renderRequest(r)
		if err != nil {
			respondError(w, r, err, statusFor(err))
			return
		}

		if err := s.exports.Acquire(r.Context()); err != nil {
			w.Header().Set("Retry-After", "5")
			respondError(w, r, err, statusFor(err))
			return
		}
		defer s.exports.Release()

		logger := logging.WithFields(r.Context(), "format", format, "rows", view.Filtered.Len())
		timestamp := time.Now().Format("20060102_150405")
		filename := fmt.Sprintf("airline_satisfaction_%s.%s", timestamp, format)
		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

		start := time.Now()
		if err := export.Write(w, view.Filtered, format); err != nil {
			// Can't change status code after writing, just log
			logger.Error("export failed", "error", err)
			return
		}
		logger.Debug("export written", "filename", filename, "duration_ms", time.Since(start).Milliseconds())
	}
}

// handleHealth reports liveness and the loaded dataset size.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string]any{
		"status":   "ok",
		"rows":     s.data.Len(),
		"loadId":   s.info.ID,
		"sessions": s.sessions.Len(),
		"exports":  s.exports.Active(),
	})
}

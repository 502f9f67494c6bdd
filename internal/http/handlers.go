package http

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"wastelog/internal/attachments"
	"wastelog/internal/core"
	applog "wastelog/internal/log"
	"wastelog/internal/metrics"
	"wastelog/internal/render"
	"wastelog/internal/services"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).String(),
	})
}

// handleReady reports whether templates and the log are usable.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if s.svc == nil {
		checks["waste_log"] = "not_configured"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["waste_log"] = map[string]any{"entries": s.svc.EntryCount(), "status": "ok"}
		checks["cache"] = map[string]any{"reports": s.svc.CachedReports(), "status": "ok"}
	}

	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics writes counters in Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	sec := s.detector.GetMetrics()
	rl := s.rateLimiter.GetMetrics()
	tr := s.tracer.GetMetrics()

	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}
	metric("http_requests_total", "counter", "Total number of HTTP requests", tr.TotalRequests)
	metric("http_server_errors_total", "counter", "Responses with a 5xx status", tr.ServerErrors)
	metric("http_response_seconds_avg", "gauge", "Average response time", fmt.Sprintf("%.6f", tr.AverageResponseTime.Seconds()))
	metric("waste_entries", "gauge", "Entries in the waste log", s.svc.EntryCount())
	metric("report_cache_entries", "gauge", "Cached monthly reports", s.svc.CachedReports())
	metric("rate_limit_hits_total", "counter", "Total rate limit hits", rl.TotalHits)
	metric("active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", rl.ClientCount)
	metric("suspicious_requests_total", "counter", "Total suspicious requests detected", sec.SuspiciousRequests)
	metric("invalid_forwarded_ip_total", "counter", "Forwarded client IPs that failed to parse", sec.InvalidIPAttempts)
	metric("uptime_seconds", "gauge", "Application uptime in seconds", fmt.Sprintf("%.0f", time.Since(s.startedAt).Seconds()))
}

type trendBar struct {
	Label    string
	Key      core.MonthKey
	WeightKg float64
	Height   int
}

type dashboardView struct {
	Month  core.MonthKey
	Report metrics.Report
	Grade  string
	Shares []render.Share
	Trends []trendBar
	Line   string
}

const (
	lineWidth  = 400
	lineHeight = 160
	linePad    = 20
)

func newDashboardView(r metrics.Report) dashboardView {
	labels := render.TrendLabels(r.Trends)
	heights := render.BarWidths(r.Trends, 100)
	bars := make([]trendBar, len(r.Trends))
	for i, p := range r.Trends {
		bars[i] = trendBar{Label: labels[i], Key: p.Key, WeightKg: p.WeightKg, Height: heights[i]}
	}
	return dashboardView{
		Month:  r.Month,
		Report: r,
		Grade:  render.ScoreGrade(r.Metrics.EnvironmentalScore),
		Shares: render.Shares(r.ByType),
		Trends: bars,
		Line:   render.LinePoints(r.Trends, lineWidth, lineHeight, linePad),
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	month, err := s.parseMonth(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	report, err := s.svc.Report(r.Context(), month)
	if err != nil {
		s.writeError(w, r, err, applog.OpRender)
		return
	}

	data := struct {
		Today           string
		WasteTypes      []core.WasteType
		DisposalMethods []string
		MaxUpload       string
		Dashboard       dashboardView
	}{
		Today:           core.Today(s.svc.Now()).String(),
		WasteTypes:      core.WasteTypes(),
		DisposalMethods: core.DisposalMethods(),
		MaxUpload:       attachments.FormatFileSize(s.svc.MaxAttachmentBytes()),
		Dashboard:       newDashboardView(report),
	}
	s.renderHTML(w, r, "index.html", data)
}

// handleDashboardPartial re-renders the dashboard after an HTMX event.
func (s *Server) handleDashboardPartial(w http.ResponseWriter, r *http.Request) {
	month, err := s.parseMonth(r)
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}
	report, err := s.svc.Report(r.Context(), month)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Dashboard report error", applog.FieldError, err, applog.FieldMonth, month)
		InternalServerError("Error loading dashboard").Write(w)
		return
	}
	s.renderHTML(w, r, "dashboard.html", newDashboardView(report))
}

// handleCreateEntry accepts the HTMX form and answers with an HTML fragment.
func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	form, files, err := s.parseEntryRequest(w, r)
	if err != nil {
		ErrorResponse(statusFor(err), err.Error()).Write(w)
		return
	}

	res, err := s.svc.CreateEntry(r.Context(), form, files)
	if err != nil {
		if services.IsValidation(err) {
			UnprocessableEntityError("Invalid data: " + err.Error()).Write(w)
			return
		}
		s.events.LogError(r.Context(), "Failed to create entry", err, applog.ComponentHTTP, applog.OpCreate, nil)
		InternalServerError("Error saving entry").Write(w)
		return
	}

	body, err := s.executeTemplate("entry_result.html", res)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Template execution failed", applog.FieldError, err)
		body = []byte(`<div class="success">Entry saved</div>`)
	}

	resp := NewHTMXResponse().
		TriggerEntryCreated(res.Entry.Date.MonthKey().String()).
		TriggerFormReset()
	if len(res.Rejections) > 0 {
		resp.TriggerWarningNotification(fmt.Sprintf("Entry saved, %d file(s) skipped", len(res.Rejections)))
	} else {
		resp.TriggerSuccessNotification("Entry saved")
	}
	resp.Header("Content-Type", "text/html; charset=utf-8").Body(body).Write(w)
}

func (s *Server) executeTemplate(name string, data any) ([]byte, error) {
	if s.templates == nil {
		return nil, fmt.Errorf("templates not loaded")
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderHTML buffers the template so a failure still yields a clean 500.
func (s *Server) renderHTML(w http.ResponseWriter, r *http.Request, name string, data any) {
	body, err := s.executeTemplate(name, data)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Template execution failed", applog.FieldError, err, "template", name)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(body)
}

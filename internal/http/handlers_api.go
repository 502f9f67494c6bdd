package http

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"wastelog/internal/attachments"
	"wastelog/internal/core"
	"wastelog/internal/export"
	applog "wastelog/internal/log"
	"wastelog/internal/metrics"
)

// maxImportBytes bounds an imported snapshot, attachments included.
const maxImportBytes = 256 << 20

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	entries := s.svc.Entries()
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		month, err := core.ParseMonthKey(v)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("month %q: %w", v, err), applog.OpList)
			return
		}
		entries = metrics.EntriesForMonth(entries, month)
	}
	if entries == nil {
		entries = []core.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

type createEntryResponse struct {
	Entry      core.Entry              `json:"entry"`
	Rejections []attachments.Rejection `json:"rejections"`
}

func (s *Server) handleCreateEntryJSON(w http.ResponseWriter, r *http.Request) {
	form, files, err := s.parseEntryRequest(w, r)
	if err != nil {
		s.writeError(w, r, err, applog.OpParse)
		return
	}
	res, err := s.svc.CreateEntry(r.Context(), form, files)
	if err != nil {
		s.writeError(w, r, err, applog.OpCreate)
		return
	}
	rejections := res.Rejections
	if rejections == nil {
		rejections = []attachments.Rejection{}
	}
	writeJSON(w, http.StatusCreated, createEntryResponse{Entry: res.Entry, Rejections: rejections})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	month, err := s.parseMonth(r)
	if err != nil {
		s.writeError(w, r, err, applog.OpRead)
		return
	}
	report, err := s.svc.Report(r.Context(), month)
	if err != nil {
		s.writeError(w, r, err, applog.OpRead)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	window, err := parseWindow(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	points := s.svc.Trends(window)
	if points == nil {
		points = []metrics.TrendPoint{}
	}
	writeJSON(w, http.StatusOK, points)
}

// handleExport downloads the log as JSON, or as a workbook with the report
// for the requested month.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	var buf bytes.Buffer
	var filename, contentType string

	switch format {
	case "", "json":
		if err := export.WriteJSON(&buf, s.svc.Entries()); err != nil {
			s.writeError(w, r, err, applog.OpExport)
			return
		}
		filename, contentType = "wastelog.json", "application/json"
	case "xlsx":
		month, err := s.parseMonth(r)
		if err != nil {
			s.writeError(w, r, err, applog.OpExport)
			return
		}
		report, err := s.svc.Report(r.Context(), month)
		if err != nil {
			s.writeError(w, r, err, applog.OpExport)
			return
		}
		if err := export.WriteXLSX(&buf, s.svc.Entries(), report); err != nil {
			s.writeError(w, r, err, applog.OpExport)
			return
		}
		filename = "wastelog-" + month.String() + ".xlsx"
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("unsupported format %q: use json or xlsx", format)})
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		s.writeError(w, r, err, applog.OpImport)
		return
	}
	n, err := s.svc.Import(r.Context(), data)
	if err != nil {
		s.writeError(w, r, err, applog.OpImport)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"imported": n, "total": s.svc.EntryCount()})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Clear(r.Context()); err != nil {
		s.writeError(w, r, err, applog.OpClear)
		return
	}
	NewHTMXResponse().TriggerLogCleared().Status(http.StatusNoContent).Write(w)
}

// handleFileRules tells clients which uploads will be accepted.
func (s *Server) handleFileRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"maxBytes":        s.svc.MaxAttachmentBytes(),
		"maxSize":         attachments.FormatFileSize(s.svc.MaxAttachmentBytes()),
		"maxFiles":        s.maxUploadFiles,
		"allowedPrefixes": attachments.AllowedPrefixes,
	})
}

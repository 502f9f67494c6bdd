package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"wastelog/internal/attachments"
	"wastelog/internal/core"
	applog "wastelog/internal/log"
	"wastelog/internal/services"
)

// parseMonth reads the month query parameter, defaulting to the service's
// current month.
func (s *Server) parseMonth(r *http.Request) (core.MonthKey, error) {
	v := strings.TrimSpace(r.URL.Query().Get("month"))
	if v == "" {
		return s.svc.CurrentMonth(), nil
	}
	m, err := core.ParseMonthKey(v)
	if err != nil {
		return "", fmt.Errorf("month %q: %w", v, err)
	}
	return m, nil
}

// parseWindow reads the window query parameter; 0 means the configured window.
func parseWindow(r *http.Request) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get("window"))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > 24 {
		return 0, fmt.Errorf("window must be between 1 and 24, got %q", v)
	}
	return n, nil
}

// sanitizeInput drops control characters other than tab and newlines and
// trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// entryFormFrom reads the entry fields from a parsed form.
func entryFormFrom(r *http.Request) services.EntryForm {
	return services.EntryForm{
		WasteType:      sanitizeInput(r.FormValue("wasteType")),
		Weight:         sanitizeInput(r.FormValue("weight")),
		DisposalMethod: sanitizeInput(r.FormValue("disposalMethod")),
		Date:           sanitizeInput(r.FormValue("date")),
	}
}

var (
	errBadForm      = errors.New("malformed form")
	errTooManyFiles = errors.New("too many files")
)

// parseEntryRequest parses a multipart or urlencoded entry submission and
// collects uploaded files under the "files" field.
func (s *Server) parseEntryRequest(w http.ResponseWriter, r *http.Request) (services.EntryForm, []attachments.Candidate, error) {
	// Each file may be up to the attachment limit; allow one extra MiB for
	// the form fields and multipart framing.
	limit := s.svc.MaxAttachmentBytes()*int64(s.maxUploadFiles) + 1<<20
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return services.EntryForm{}, nil, fmt.Errorf("%w: %w", errBadForm, err)
		}
	} else if err := r.ParseForm(); err != nil {
		return services.EntryForm{}, nil, fmt.Errorf("%w: %w", errBadForm, err)
	}

	var files []attachments.Candidate
	if r.MultipartForm != nil {
		headers := r.MultipartForm.File["files"]
		if len(headers) > s.maxUploadFiles {
			return services.EntryForm{}, nil, fmt.Errorf("%w: %d (max %d)", errTooManyFiles, len(headers), s.maxUploadFiles)
		}
		for _, fh := range headers {
			files = append(files, attachments.FromMultipart(fh))
		}
	}
	files, err := dropRemoved(files, r.Form["remove"])
	if err != nil {
		return services.EntryForm{}, nil, err
	}
	return entryFormFrom(r), files, nil
}

// dropRemoved takes out the files the user removed from the selection
// before submitting. Indices refer to the original selection order.
func dropRemoved(files []attachments.Candidate, values []string) ([]attachments.Candidate, error) {
	if len(values) == 0 {
		return files, nil
	}
	idx := make([]int, 0, len(values))
	for _, v := range values {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("%w: remove index %q", errBadForm, v)
		}
		idx = append(idx, n)
	}
	slices.Sort(idx)
	idx = slices.Compact(idx)
	for i := len(idx) - 1; i >= 0; i-- {
		var err error
		if files, err = attachments.Remove(files, idx[i]); err != nil {
			return nil, fmt.Errorf("%w: %w", errBadForm, err)
		}
	}
	return files, nil
}

// statusFor maps a service error to an HTTP status.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case services.IsValidation(err):
		return http.StatusUnprocessableEntity
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errBadForm), errors.Is(err, errTooManyFiles):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError logs server-side failures and hides their detail from clients.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, op string) {
	status := statusFor(err)
	msg := err.Error()
	if status >= 500 {
		s.events.LogError(r.Context(), "Request failed", err, applog.ComponentHTTP, op, nil)
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorBody{Error: msg})
}

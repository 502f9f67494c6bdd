package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"wastelog/internal/attachments"
	"wastelog/internal/cache"
	"wastelog/internal/core"
	applog "wastelog/internal/log"
	"wastelog/internal/metrics"
	"wastelog/internal/session"
)

// EntryForm is the raw user input for a new entry.
type EntryForm struct {
	WasteType      string
	Weight         string
	DisposalMethod string
	Date           string // YYYY-MM-DD, empty means today
}

// CreateResult reports the stored entry and any files that were left out.
type CreateResult struct {
	Entry      core.Entry
	Rejections []attachments.Rejection
}

// IsValidation reports whether err stems from bad user input.
func IsValidation(err error) bool {
	for _, target := range []error{
		core.ErrInvalidWasteType,
		core.ErrInvalidWeight,
		core.ErrInvalidDate,
		core.ErrEmptyDisposalMethod,
		core.ErrDisposalMethodTooLong,
		core.ErrInvalidMonth,
		core.ErrInvalidAttachment,
		session.ErrCorruptSnapshot,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// WasteService orchestrates entry intake and report generation over a session.
type WasteService struct {
	session *session.Session
	loader  *attachments.Loader
	reports cache.Cache[metrics.Report]
	window  int

	// gen counts invalidations; a report built before the latest one is
	// not cached.
	cacheMu sync.Mutex
	gen     uint64

	now     func() time.Time
	logger  *applog.Logger
	events  *applog.StructuredLogger
}

// NewWasteService wires the service. reports may be nil to disable caching.
func NewWasteService(sess *session.Session, loader *attachments.Loader, reports cache.Cache[metrics.Report], window int, logger *applog.Logger) *WasteService {
	if logger == nil {
		logger = applog.Discard()
	}
	if loader == nil {
		loader = attachments.NewLoader(0, logger)
	}
	if window <= 0 {
		window = metrics.DefaultTrendWindow
	}
	return &WasteService{
		session: sess,
		loader:  loader,
		reports: reports,
		window:  window,
		now:     time.Now,
		logger:  logger.WithComponent(applog.ComponentEntry),
		events:  applog.NewStructuredLogger(logger),
	}
}

// Now returns the service clock's current time.
func (s *WasteService) Now() time.Time { return s.now() }

// CurrentMonth returns the key of the month containing the service clock's now.
func (s *WasteService) CurrentMonth() core.MonthKey { return core.CurrentMonth(s.now()) }

// TrendWindow returns the configured number of trend months.
func (s *WasteService) TrendWindow() int { return s.window }

// MaxAttachmentBytes returns the per-file upload limit.
func (s *WasteService) MaxAttachmentBytes() int64 { return s.loader.MaxBytes() }

// ParseEntryForm validates raw form input. An empty date defaults to the
// calendar date of now.
func ParseEntryForm(f EntryForm, now time.Time) (core.WasteType, float64, string, core.Date, error) {
	wt, err := core.ParseWasteType(f.WasteType)
	if err != nil {
		return "", 0, "", core.Date{}, fmt.Errorf("waste type %q: %w", f.WasteType, err)
	}
	kg, err := core.ParseWeightKg(f.Weight)
	if err != nil {
		return "", 0, "", core.Date{}, fmt.Errorf("weight %q: %w", f.Weight, err)
	}
	method := strings.TrimSpace(f.DisposalMethod)
	if method == "" {
		return "", 0, "", core.Date{}, core.ErrEmptyDisposalMethod
	}
	date := core.Today(now)
	if strings.TrimSpace(f.Date) != "" {
		if date, err = core.ParseDate(f.Date); err != nil {
			return "", 0, "", core.Date{}, fmt.Errorf("date %q: %w", f.Date, err)
		}
	}
	return wt, kg, method, date, nil
}

// CreateEntry validates the form, embeds acceptable files and appends the
// entry. Rejected files do not fail the call.
func (s *WasteService) CreateEntry(ctx context.Context, form EntryForm, files []attachments.Candidate) (CreateResult, error) {
	now := s.now()
	wt, kg, method, date, err := ParseEntryForm(form, now)
	if err != nil {
		return CreateResult{}, err
	}

	loaded, rejected, err := s.loader.Load(ctx, files)
	if err != nil {
		return CreateResult{}, fmt.Errorf("load attachments: %w", err)
	}

	entry, err := core.NewEntry(wt, kg, method, date, now, loaded)
	if err != nil {
		return CreateResult{}, err
	}
	if err := s.session.Append(ctx, entry); err != nil {
		s.events.LogError(ctx, "Failed to save waste entry", err, applog.ComponentEntry, applog.OpCreate, nil)
		return CreateResult{}, fmt.Errorf("save entry: %w", err)
	}
	s.invalidate()

	s.events.LogEntryCreated(ctx, entry.ID, string(entry.Type), entry.WeightKg, entry.DisposalMethod, len(entry.Attachments))
	return CreateResult{Entry: entry, Rejections: rejected}, nil
}

// Entries returns a copy of the full log.
func (s *WasteService) Entries() []core.Entry {
	return s.session.Entries()
}

// EntryCount returns the number of entries in the log.
func (s *WasteService) EntryCount() int {
	return s.session.Len()
}

// CachedReports returns how many reports are currently cached.
func (s *WasteService) CachedReports() int {
	if s.reports == nil {
		return 0
	}
	return s.reports.Size()
}

// Report returns the dashboard report for month, computed over the whole log.
func (s *WasteService) Report(ctx context.Context, month core.MonthKey) (metrics.Report, error) {
	if _, err := core.ParseMonthKey(string(month)); err != nil {
		return metrics.Report{}, fmt.Errorf("month %q: %w", month, err)
	}

	key := string(month) + "|" + strconv.Itoa(s.window)
	if s.reports != nil {
		if r, ok := s.reports.Get(key); ok {
			s.logger.DebugContext(ctx, "Report cache hit", applog.FieldMonth, month)
			return r, nil
		}
	}

	gen := s.generation()
	r := metrics.BuildReport(s.session.Entries(), month, s.window)
	if s.reports != nil {
		s.cacheMu.Lock()
		if s.gen == gen {
			s.reports.Set(key, r)
		}
		s.cacheMu.Unlock()
	}
	return r, nil
}

// Trends returns the last window months of the trend series; window <= 0
// uses the configured window.
func (s *WasteService) Trends(window int) []metrics.TrendPoint {
	if window <= 0 {
		window = s.window
	}
	return metrics.MonthlyTrends(s.session.Entries(), window)
}

// Import appends the entries of a JSON snapshot, such as a browser
// localStorage dump of the wasteData key.
func (s *WasteService) Import(ctx context.Context, data []byte) (int, error) {
	entries, err := session.Decode(data)
	if err != nil {
		return 0, err
	}
	n, err := s.session.Import(ctx, entries)
	if err != nil {
		return 0, fmt.Errorf("import: %w", err)
	}
	s.invalidate()
	s.logger.InfoContext(ctx, "Entries imported", applog.FieldEntries, n)
	return n, nil
}

// ExportJSON returns the log in the persisted snapshot format.
func (s *WasteService) ExportJSON() ([]byte, error) {
	return session.Encode(s.session.Entries())
}

// Clear removes every entry.
func (s *WasteService) Clear(ctx context.Context) error {
	if err := s.session.Clear(ctx); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *WasteService) generation() uint64 {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.gen
}

// invalidate runs after every committed mutation of the log.
func (s *WasteService) invalidate() {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.gen++
	if s.reports != nil {
		s.reports.Purge()
	}
}

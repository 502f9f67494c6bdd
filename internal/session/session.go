// Package session owns the in-memory waste log for one running application
// and keeps its persisted snapshot in step with every mutation.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"wastelog/internal/core"
	applog "wastelog/internal/log"
	"wastelog/internal/storage"
)

// DefaultKey is the storage key the whole log lives under.
const DefaultKey = "wasteData"

var (
	ErrCorruptSnapshot = errors.New("corrupt log snapshot")
	ErrNotLoaded       = errors.New("session not loaded")
)

// Session holds the log and is its only writer. Reads return copies.
type Session struct {
	mu      sync.RWMutex
	store   storage.KV
	key     string
	entries []core.Entry
	loaded  bool
	logger  *applog.Logger
}

func New(store storage.KV, key string, logger *applog.Logger) *Session {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = applog.Discard()
	}
	return &Session{
		store:  store,
		key:    key,
		logger: logger.WithComponent(applog.ComponentSession),
	}
}

// Load reads the snapshot once at startup. A missing key is an empty log.
func (s *Session) Load(ctx context.Context) error {
	raw, ok, err := s.store.GetItem(ctx, s.key)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	var entries []core.Entry
	if ok {
		entries, err = Decode(raw)
		if err != nil {
			return err
		}
		for i, e := range entries {
			if err := e.Validate(); err != nil {
				return fmt.Errorf("%w: entry %d: %w", ErrCorruptSnapshot, i, err)
			}
		}
	}

	s.mu.Lock()
	s.entries = entries
	s.loaded = true
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Waste log loaded",
		applog.FieldStorageKey, s.key,
		applog.FieldEntries, len(entries))
	return nil
}

// Entries returns a copy of the log in insertion order.
func (s *Session) Entries() []core.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Entry(nil), s.entries...)
}

// Len returns the number of logged entries.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Append validates e, adds it to the log and persists the full snapshot.
// If persisting fails the in-memory log is left as it was.
func (s *Session) Append(ctx context.Context, e core.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	return s.appendAll(ctx, []core.Entry{e}, applog.OpAppend)
}

// Import appends a batch of entries, typically from a browser dump. Entries
// without an ID get one. The batch is all-or-nothing.
func (s *Session) Import(ctx context.Context, entries []core.Entry) (int, error) {
	batch := make([]core.Entry, len(entries))
	for i, e := range entries {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if err := e.Validate(); err != nil {
			return 0, fmt.Errorf("entry %d: %w", i, err)
		}
		batch[i] = e
	}
	if len(batch) == 0 {
		return 0, nil
	}
	if err := s.appendAll(ctx, batch, applog.OpImport); err != nil {
		return 0, err
	}
	return len(batch), nil
}

func (s *Session) appendAll(ctx context.Context, batch []core.Entry, op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNotLoaded
	}

	prev := s.entries
	next := make([]core.Entry, 0, len(prev)+len(batch))
	next = append(next, prev...)
	next = append(next, batch...)

	if err := s.save(ctx, next); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist waste log",
			applog.FieldOperation, op,
			applog.FieldError, err)
		return err
	}
	s.entries = next
	return nil
}

// Save rewrites the snapshot from the current in-memory log.
func (s *Session) Save(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return ErrNotLoaded
	}
	return s.save(ctx, s.entries)
}

func (s *Session) save(ctx context.Context, entries []core.Entry) error {
	raw, err := Encode(entries)
	if err != nil {
		return err
	}
	if err := s.store.SetItem(ctx, s.key, raw); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	s.logger.DebugContext(ctx, "Waste log saved",
		applog.FieldStorageKey, s.key,
		applog.FieldEntries, len(entries))
	return nil
}

// Clear drops every entry and removes the snapshot.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.RemoveItem(ctx, s.key); err != nil {
		return fmt.Errorf("remove snapshot: %w", err)
	}
	s.entries = nil
	s.loaded = true
	s.logger.InfoContext(ctx, "Waste log cleared", applog.FieldStorageKey, s.key)
	return nil
}

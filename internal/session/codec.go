package session

import (
	"bytes"
	"encoding/json"
	"fmt"

	"wastelog/internal/core"
)

// Encode serializes the log as a JSON array, using "[]" for an empty log.
// Field names follow the browser snapshot format so dumps stay interchangeable.
func Encode(entries []core.Entry) ([]byte, error) {
	if entries == nil {
		entries = []core.Entry{}
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encode log: %w", err)
	}
	return b, nil
}

// Decode parses a snapshot. Empty input and JSON null both yield an empty log.
func Decode(data []byte) ([]core.Entry, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	var entries []core.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	return entries, nil
}

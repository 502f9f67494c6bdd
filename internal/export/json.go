package export

import (
	"io"

	"wastelog/internal/core"
	"wastelog/internal/session"
)

// WriteJSON writes the log in the same format it is persisted in, so the
// output can be imported again or pasted into a browser's localStorage.
func WriteJSON(w io.Writer, entries []core.Entry) error {
	b, err := session.Encode(entries)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

package attachments

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wastelog/internal/core"
)

func candidate(name, mediaType, body string) Candidate {
	return Candidate{
		Name:         name,
		SizeBytes:    int64(len(body)),
		MediaType:    mediaType,
		LastModified: time.UnixMilli(1700000000000),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		},
	}
}

func TestLoadKeepsSelectionOrder(t *testing.T) {
	l := NewLoader(0, nil)
	cands := []Candidate{
		candidate("a.png", "image/png", "aaa"),
		candidate("b.txt", "text/plain", "hello"),
		candidate("c.pdf", "application/pdf", "%PDF"),
		candidate("d.mp4", "video/mp4", "vid"),
	}

	got, rejected, err := l.Load(context.Background(), cands)
	require.NoError(t, err)
	assert.Empty(t, rejected)
	require.Len(t, got, 4)
	for i, c := range cands {
		assert.Equal(t, c.Name, got[i].Name)
	}
	assert.Equal(t, "data:text/plain;base64,aGVsbG8=", got[1].Data)
	assert.Equal(t, int64(5), got[1].SizeBytes)
	assert.Equal(t, int64(1700000000000), got[1].LastModified)
}

func TestLoadRejectsIndividually(t *testing.T) {
	l := NewLoader(8, nil)
	cands := []Candidate{
		candidate("ok.txt", "text/plain", "fine"),
		candidate("big.png", "image/png", "way too large"),
		candidate("app.zip", "application/zip", "zip"),
		{
			Name: "broken.txt", SizeBytes: 2, MediaType: "text/plain",
			Open: func() (io.ReadCloser, error) { return nil, errors.New("gone") },
		},
		candidate("doc.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", "doc"),
	}

	got, rejected, err := l.Load(context.Background(), cands)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "ok.txt", got[0].Name)
	assert.Equal(t, "doc.docx", got[1].Name)

	require.Len(t, rejected, 3)
	assert.Equal(t, 1, rejected[0].Index)
	assert.Contains(t, rejected[0].Reason, "too large")
	assert.Equal(t, 2, rejected[1].Index)
	assert.Contains(t, rejected[1].Reason, "not supported")
	assert.Equal(t, 3, rejected[2].Index)
	assert.Contains(t, rejected[2].Error(), "broken.txt")
}

func TestLoadRejectsUnderreportedSize(t *testing.T) {
	l := NewLoader(4, nil)
	c := candidate("liar.txt", "text/plain", "0123456789")
	c.SizeBytes = 1

	got, rejected, err := l.Load(context.Background(), []Candidate{c})
	require.NoError(t, err)
	assert.Empty(t, got)
	require.Len(t, rejected, 1)
}

func TestLoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := NewLoader(0, nil).Load(ctx, []Candidate{candidate("a.txt", "text/plain", "x")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSizeBoundaryIsInclusive(t *testing.T) {
	l := NewLoader(DefaultMaxBytes, nil)
	assert.Empty(t, l.Check(Candidate{SizeBytes: DefaultMaxBytes, MediaType: "image/jpeg"}))
	assert.NotEmpty(t, l.Check(Candidate{SizeBytes: DefaultMaxBytes + 1, MediaType: "image/jpeg"}))
}

func TestRemove(t *testing.T) {
	files := []core.Attachment{{Name: "a"}, {Name: "b"}, {Name: "c"}}

	out, err := Remove(files, 1)
	require.NoError(t, err)
	assert.Equal(t, []core.Attachment{{Name: "a"}, {Name: "c"}}, out)
	assert.Len(t, files, 3)

	_, err = Remove(files, 3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = Remove(files, -1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("bottle caps"), 0o600))

	c, err := FromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", c.Name)
	assert.Equal(t, "text/plain", c.MediaType)
	assert.Equal(t, int64(11), c.SizeBytes)

	got, rejected, err := NewLoader(0, nil).Load(context.Background(), []Candidate{c})
	require.NoError(t, err)
	assert.Empty(t, rejected)
	require.Len(t, got, 1)
	assert.True(t, strings.HasPrefix(got[0].Data, "data:text/plain;base64,"))

	_, err = FromPath(dir)
	assert.Error(t, err)
}

func TestFormatFileSize(t *testing.T) {
	cases := map[int64]string{
		0:                      "0 Bytes",
		500:                    "500 Bytes",
		1024:                   "1 KB",
		1536:                   "1.5 KB",
		1500000:                "1.43 MB",
		10 * 1024 * 1024:       "10 MB",
		3 * 1024 * 1024 * 1024: "3 GB",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatFileSize(in), "bytes=%d", in)
	}
}

func TestIconFor(t *testing.T) {
	cases := map[string]string{
		"image/png":          "fa-image",
		"video/webm":         "fa-video",
		"application/pdf":    "fa-file-pdf",
		"application/msword": "fa-file-word",
		"text/csv":           "fa-file-alt",
		"application/zip":    "fa-file",
	}
	for in, want := range cases {
		assert.Equal(t, want, IconFor(in), in)
	}
}

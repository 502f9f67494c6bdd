// Package attachments turns files picked alongside an entry into data URLs
// that can be embedded in the persisted log.
package attachments

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"wastelog/internal/core"
	applog "wastelog/internal/log"
)

// DefaultMaxBytes is the largest file accepted, 10 MiB.
const DefaultMaxBytes int64 = 10 * 1024 * 1024

// AllowedPrefixes lists the media type prefixes accepted for upload.
var AllowedPrefixes = []string{
	"image/",
	"video/",
	"application/pdf",
	"text/",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

var ErrIndexOutOfRange = errors.New("attachment index out of range")

// Candidate is a file offered for attachment. Open is called at most once.
type Candidate struct {
	Name         string
	SizeBytes    int64
	MediaType    string
	LastModified time.Time
	Open         func() (io.ReadCloser, error)
}

// Rejection describes a file that was not attached. Other files are unaffected.
type Rejection struct {
	Index  int    `json:"index"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

func (r Rejection) Error() string {
	return fmt.Sprintf("file %s: %s", r.Name, r.Reason)
}

// Loader validates candidates and reads the accepted ones concurrently.
type Loader struct {
	maxBytes int64
	limit    int
	logger   *applog.Logger
}

func NewLoader(maxBytes int64, logger *applog.Logger) *Loader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if logger == nil {
		logger = applog.Discard()
	}
	return &Loader{
		maxBytes: maxBytes,
		limit:    runtime.NumCPU(),
		logger:   logger.WithComponent(applog.ComponentAttachments),
	}
}

// MaxBytes returns the per-file size limit.
func (l *Loader) MaxBytes() int64 { return l.maxBytes }

// Check returns the rejection reason for c, or "" if it is acceptable.
func (l *Loader) Check(c Candidate) string {
	if c.SizeBytes > l.maxBytes {
		return fmt.Sprintf("file is too large, maximum size is %s", FormatFileSize(l.maxBytes))
	}
	if !Allowed(c.MediaType) {
		return fmt.Sprintf("file type %q is not supported", c.MediaType)
	}
	return ""
}

// Allowed reports whether mediaType starts with one of AllowedPrefixes.
func Allowed(mediaType string) bool {
	for _, p := range AllowedPrefixes {
		if strings.HasPrefix(mediaType, p) {
			return true
		}
	}
	return false
}

// Load reads every acceptable candidate in its own goroutine and returns the
// attachments in selection order. Each failing file yields a Rejection; the
// error is only set when ctx is done.
func (l *Loader) Load(ctx context.Context, candidates []Candidate) ([]core.Attachment, []Rejection, error) {
	slots := make([]*core.Attachment, len(candidates))

	var mu sync.Mutex
	var rejected []Rejection
	reject := func(i int, reason string) {
		mu.Lock()
		rejected = append(rejected, Rejection{Index: i, Name: candidates[i].Name, Reason: reason})
		mu.Unlock()
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(l.limit)

	for i, c := range candidates {
		if reason := l.Check(c); reason != "" {
			reject(i, reason)
			continue
		}
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			a, err := l.read(c)
			if err != nil {
				reject(i, err.Error())
				return nil
			}
			slots[i] = &a
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	out := make([]core.Attachment, 0, len(candidates))
	for _, a := range slots {
		if a != nil {
			out = append(out, *a)
		}
	}
	sort.Slice(rejected, func(i, j int) bool { return rejected[i].Index < rejected[j].Index })
	for _, r := range rejected {
		l.logger.WarnContext(ctx, "Attachment rejected",
			"index", r.Index,
			"name", r.Name,
			"reason", r.Reason)
	}
	return out, rejected, nil
}

func (l *Loader) read(c Candidate) (core.Attachment, error) {
	if c.Open == nil {
		return core.Attachment{}, errors.New("file has no content")
	}
	rc, err := c.Open()
	if err != nil {
		return core.Attachment{}, fmt.Errorf("open failed: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, l.maxBytes+1))
	if err != nil {
		return core.Attachment{}, fmt.Errorf("read failed: %w", err)
	}
	if int64(len(data)) > l.maxBytes {
		return core.Attachment{}, fmt.Errorf("file is too large, maximum size is %s", FormatFileSize(l.maxBytes))
	}

	var lastModified int64
	if !c.LastModified.IsZero() {
		lastModified = c.LastModified.UnixMilli()
	}
	return core.Attachment{
		Name:         c.Name,
		SizeBytes:    int64(len(data)),
		MediaType:    c.MediaType,
		LastModified: lastModified,
		Data:         DataURL(c.MediaType, data),
	}, nil
}

// DataURL encodes data as a base64 data URL.
func DataURL(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Remove returns files without the element at index. files is not modified.
func Remove[T any](files []T, index int) ([]T, error) {
	if index < 0 || index >= len(files) {
		return files, ErrIndexOutOfRange
	}
	out := make([]T, 0, len(files)-1)
	out = append(out, files[:index]...)
	return append(out, files[index+1:]...), nil
}

// FromMultipart wraps an uploaded form file.
func FromMultipart(fh *multipart.FileHeader) Candidate {
	return Candidate{
		Name:      fh.Filename,
		SizeBytes: fh.Size,
		MediaType: baseMediaType(fh.Header.Get("Content-Type")),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// FromPath describes a local file. The media type comes from the extension
// and falls back to content sniffing.
func FromPath(path string) (Candidate, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Candidate{}, err
	}
	if info.IsDir() {
		return Candidate{}, fmt.Errorf("%s is a directory", path)
	}

	mediaType := baseMediaType(mime.TypeByExtension(filepath.Ext(path)))
	if mediaType == "" {
		mediaType, err = sniff(path)
		if err != nil {
			return Candidate{}, err
		}
	}

	return Candidate{
		Name:         filepath.Base(path),
		SizeBytes:    info.Size(),
		MediaType:    mediaType,
		LastModified: info.ModTime(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

func sniff(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	return baseMediaType(http.DetectContentType(head[:n])), nil
}

func baseMediaType(v string) string {
	t, _, _ := strings.Cut(v, ";")
	return strings.ToLower(strings.TrimSpace(t))
}

package attachments

import (
	"math"
	"strconv"
	"strings"
)

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatFileSize renders a byte count with binary units and at most two
// decimals, e.g. "1.5 KB". Sizes past the gigabyte range stay in GB.
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	v := float64(bytes)
	i := 0
	for v >= 1024 && i < len(sizeUnits)-1 {
		v /= 1024
		i++
	}
	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + sizeUnits[i]
}

// IconFor returns the Font Awesome icon class shown next to a file.
func IconFor(mediaType string) string {
	switch {
	case strings.HasPrefix(mediaType, "image/"):
		return "fa-image"
	case strings.HasPrefix(mediaType, "video/"):
		return "fa-video"
	case strings.Contains(mediaType, "pdf"):
		return "fa-file-pdf"
	case strings.Contains(mediaType, "word"), strings.Contains(mediaType, "document"):
		return "fa-file-word"
	case strings.HasPrefix(mediaType, "text/"):
		return "fa-file-alt"
	default:
		return "fa-file"
	}
}

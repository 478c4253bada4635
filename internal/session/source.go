package session

import (
	"errors"
	"strings"
)

// ErrInvalidSource marks a source reference that cannot be resolved to a
// recognizable media reference. It is the only pipeline error surfaced to
// callers.
var ErrInvalidSource = errors.New("invalid source reference")

// SourceRef is a resolved source reference: either a video id extracted from
// a URL, or a bare transcript-session tag.
type SourceRef struct {
	Ref     string // Video id or session tag
	URL     string // Original URL when IsVideo
	IsVideo bool
}

// ParseSourceRef resolves a raw reference. Recognized video URL forms are
// youtube.com/watch?v=, youtu.be/ and youtube.com/embed/; anything else
// non-empty without URL markers is treated as a transcript-session tag.
func ParseSourceRef(raw string) (SourceRef, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return SourceRef{}, ErrInvalidSource
	}

	if strings.Contains(trimmed, "youtube.com") || strings.Contains(trimmed, "youtu.be") {
		id := extractVideoID(trimmed)
		if id == "" {
			return SourceRef{}, ErrInvalidSource
		}
		return SourceRef{Ref: id, URL: trimmed, IsVideo: true}, nil
	}

	if strings.ContainsAny(trimmed, " \t\n") || strings.Contains(trimmed, "://") {
		return SourceRef{}, ErrInvalidSource
	}

	return SourceRef{Ref: trimmed}, nil
}

func extractVideoID(url string) string {
	switch {
	case strings.Contains(url, "youtube.com/watch?v="):
		id := strings.SplitN(url, "watch?v=", 2)[1]
		return strings.SplitN(id, "&", 2)[0]
	case strings.Contains(url, "youtu.be/"):
		id := strings.SplitN(url, "youtu.be/", 2)[1]
		return strings.SplitN(id, "?", 2)[0]
	case strings.Contains(url, "youtube.com/embed/"):
		id := strings.SplitN(url, "embed/", 2)[1]
		return strings.SplitN(id, "?", 2)[0]
	default:
		return ""
	}
}

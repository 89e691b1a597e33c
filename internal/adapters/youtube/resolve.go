// Package youtube reads public YouTube data: video identifiers, watch page
// metadata and caption tracks.
package youtube

import (
	"fmt"
	"regexp"
	"strings"

	"yttranscript/internal/core/domain"
)

// Checked in order; the first match wins.
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`youtube\.com/watch\?v=([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/embed/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/shorts/([A-Za-z0-9_-]{11})`),
}

// ResolveVideoID extracts the video ID from a watch, youtu.be, embed or shorts
// URL, or accepts a bare 11-character ID.
func ResolveVideoID(input string) (domain.VideoID, error) {
	input = strings.TrimSpace(input)
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(input); m != nil {
			return domain.VideoID(m[1]), nil
		}
	}
	if id := domain.VideoID(input); id.Valid() {
		return id, nil
	}
	return "", fmt.Errorf("%w: %s", domain.ErrInvalidInput, input)
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"yttranscript/internal/core/domain"
	"yttranscript/internal/core/ports"
)

// DefaultLang is the preferred transcript language when none is given.
const DefaultLang = "ja"

var fallbackLangs = []string{"ja", "en"}

// TranscriptRetriever walks the language priority list until one transcript is found.
type TranscriptRetriever struct {
	source ports.TranscriptSource
	logger hclog.Logger
}

// NewTranscriptRetriever creates a new TranscriptRetriever.
func NewTranscriptRetriever(source ports.TranscriptSource, logger hclog.Logger) *TranscriptRetriever {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &TranscriptRetriever{source: source, logger: logger}
}

// Retrieve tries each prioritized language once, then any available transcript.
// When all attempts fail the error wraps domain.ErrNoTranscriptAvailable and every attempt error.
func (r *TranscriptRetriever) Retrieve(ctx context.Context, id domain.VideoID, preferred string, progress domain.ProgressFunc) (*domain.Transcript, error) {
	if progress == nil {
		progress = func(string) {}
	}

	var attempts []error
	for _, lang := range languagePriority(preferred) {
		tr, err := r.source.Fetch(ctx, id, []string{lang})
		if err == nil {
			return tr, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, domain.ErrLanguageNotFound) {
			r.logger.Debug("language not available", "video", id, "lang", lang)
		} else {
			r.logger.Warn("transcript attempt failed", "video", id, "lang", lang, "error", err)
		}
		attempts = append(attempts, fmt.Errorf("lang %s: %w", lang, err))
		progress(fmt.Sprintf("No transcript for lang: %s, trying next...", lang))
	}

	tr, err := r.source.Fetch(ctx, id, nil)
	if err == nil {
		return tr, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	r.logger.Warn("unconstrained transcript attempt failed", "video", id, "error", err)
	attempts = append(attempts, fmt.Errorf("any language: %w", err))

	return nil, fmt.Errorf("%w: %w", domain.ErrNoTranscriptAvailable, errors.Join(attempts...))
}

// languagePriority returns preferred followed by the fallback languages, without duplicates.
func languagePriority(preferred string) []string {
	if preferred == "" {
		preferred = DefaultLang
	}
	langs := make([]string, 0, len(fallbackLangs)+1)
	seen := make(map[string]bool, len(fallbackLangs)+1)
	for _, l := range append([]string{preferred}, fallbackLangs...) {
		if seen[l] {
			continue
		}
		seen[l] = true
		langs = append(langs, l)
	}
	return langs
}

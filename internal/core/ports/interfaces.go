package ports

import (
	"context"

	"yttranscript/internal/core/domain"
)

// MetadataScraper defines the contract for reading public video metadata.
type MetadataScraper interface {
	// FetchMeta retrieves title, channel, description and publish date for the video.
	// Missing optional fields degrade to defaults; only fetch failures are errors.
	FetchMeta(ctx context.Context, id domain.VideoID) (*domain.VideoMeta, error)
}

// TranscriptSource defines the contract for fetching caption tracks.
type TranscriptSource interface {
	// Fetch returns the transcript in the first of langs that the video offers.
	// An empty langs slice asks for any available transcript.
	Fetch(ctx context.Context, id domain.VideoID, langs []string) (*domain.Transcript, error)
}

// Summarizer defines the contract for generating a bullet-point synopsis.
type Summarizer interface {
	// Summarize returns Markdown bullets summarising the transcript text.
	Summarize(ctx context.Context, title, transcriptText string) (string, error)

	// Model names the text-generation model used, for progress output.
	Model() string
}

// Storage defines the contract for persisting the rendered note.
type Storage interface {
	// SaveDocument writes content to filename under dir, overwriting any existing file.
	// Returns the absolute path written.
	SaveDocument(ctx context.Context, dir, filename string, content []byte) (string, error)
}

// VaultSyncer pushes the vault to its remote. It never fails the caller.
type VaultSyncer interface {
	Sync(ctx context.Context, log domain.ProgressFunc)
}

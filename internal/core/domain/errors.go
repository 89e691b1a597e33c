package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput indicates the input is neither a recognised YouTube URL nor a bare video ID.
	ErrInvalidInput = errors.New("invalid YouTube URL or video ID")
	// ErrNoTranscriptAvailable indicates every transcript attempt failed.
	ErrNoTranscriptAvailable = errors.New("no transcript available for this video")
	// ErrLanguageNotFound indicates the video has no caption track in the requested language.
	ErrLanguageNotFound = errors.New("no caption track for language")
	// ErrMissingCredential indicates the summary API key is not configured.
	ErrMissingCredential = errors.New("ANTHROPIC_API_KEY is not set")
)

// NetworkError is a failed HTTP exchange: a transport failure or a non-2xx status.
type NetworkError struct {
	URL        string
	StatusCode int // 0 on transport failure
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("request %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("request %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// UpstreamError is a non-success or empty response from the text-generation API.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("Anthropic API error: %d", e.StatusCode)
	}
	return fmt.Sprintf("Anthropic API error: %d %s", e.StatusCode, e.Body)
}

// FilesystemError wraps a failure to write the output document.
type FilesystemError struct {
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error { return e.Err }

// Stage names one step of the video-to-document pipeline.
type Stage string

const (
	StageResolve    Stage = "resolve"
	StageScrape     Stage = "scrape"
	StageTranscribe Stage = "transcribe"
	StageSummarize  Stage = "summarize"
	StageAssemble   Stage = "assemble"
	StagePersist    Stage = "persist"
)

// StageError records which pipeline stage failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

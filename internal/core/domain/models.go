package domain

import "regexp"

var videoIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// VideoID is the 11-character token that names a YouTube video.
type VideoID string

// Valid reports whether id matches the video identifier alphabet and length.
func (id VideoID) Valid() bool {
	return videoIDRe.MatchString(string(id))
}

// WatchURL returns the canonical watch page URL for the video.
func (id VideoID) WatchURL() string {
	return "https://www.youtube.com/watch?v=" + string(id)
}

// VideoMeta holds the fields scraped from the public watch page.
type VideoMeta struct {
	Title         string `json:"title"`
	ChannelName   string `json:"channel_name"`
	Description   string `json:"description"`
	PublishedDate string `json:"published_date"` // YYYY-MM-DD, empty when unknown
}

// Snippet is one timestamped caption line.
type Snippet struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"` // seconds
}

// Transcript is an ordered caption track in one language.
type Transcript struct {
	LanguageCode string    `json:"language_code"`
	Language     string    `json:"language"`
	Snippets     []Snippet `json:"snippets"`
}

// ProgressFunc receives single-line status messages.
type ProgressFunc func(msg string)

// ProcessOptions configures a single pipeline run.
type ProcessOptions struct {
	URL         string
	Lang        string // preferred transcript language, "ja" when empty
	SkipSummary bool
	OutputDir   string
	OnProgress  ProgressFunc
}

// ProcessResult is the record of a completed run.
type ProcessResult struct {
	RunID       string   `json:"run_id"`
	Title       string   `json:"title"`
	ChannelName string   `json:"channel_name"`
	Filename    string   `json:"filename"`
	OutputPath  string   `json:"output_path"`
	Language    string   `json:"language"`
	HasSummary  bool     `json:"has_summary"`
	Warnings    []string `json:"warnings,omitempty"`
}

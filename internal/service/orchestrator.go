package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"yttranscript/internal/adapters/youtube"
	"yttranscript/internal/core/document"
	"yttranscript/internal/core/domain"
	"yttranscript/internal/core/ports"
)

// Orchestrator coordinates the video-to-note workflow.
type Orchestrator struct {
	scraper     ports.MetadataScraper
	transcripts *TranscriptRetriever
	summarizer  ports.Summarizer
	storage     ports.Storage
	logger      hclog.Logger

	now      func() time.Time
	newRunID func() string
}

// NewOrchestrator creates a new Orchestrator. A nil summarizer disables the summary stage.
func NewOrchestrator(
	scraper ports.MetadataScraper,
	transcripts ports.TranscriptSource,
	summarizer ports.Summarizer,
	storage ports.Storage,
	logger hclog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Orchestrator{
		scraper:     scraper,
		transcripts: NewTranscriptRetriever(transcripts, logger.Named("transcripts")),
		summarizer:  summarizer,
		storage:     storage,
		logger:      logger,
		now:         time.Now,
		newRunID:    func() string { return uuid.New().String() },
	}
}

// ProcessVideo fetches metadata and transcript for one video, optionally
// summarizes it, and writes the Markdown note to opts.OutputDir.
func (o *Orchestrator) ProcessVideo(ctx context.Context, opts domain.ProcessOptions) (*domain.ProcessResult, error) {
	runID := o.newRunID()
	log := o.logger.With("run", runID)
	progress := opts.OnProgress
	if progress == nil {
		progress = func(string) {}
	}
	lang := opts.Lang
	if lang == "" {
		lang = DefaultLang
	}
	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = "."
	}

	log.Info("starting run", "input", opts.URL, "lang", lang)

	id, err := youtube.ResolveVideoID(opts.URL)
	if err != nil {
		return nil, o.fail(log, domain.StageResolve, err)
	}
	log = log.With("video", string(id))

	progress(fmt.Sprintf("Fetching video metadata for %s...", id))
	meta, err := o.scraper.FetchMeta(ctx, id)
	if err != nil {
		return nil, o.fail(log, domain.StageScrape, err)
	}
	progress("Title: " + meta.Title)
	progress("Channel: " + meta.ChannelName)

	progress(fmt.Sprintf("Fetching transcript (preferred: %s)...", lang))
	transcript, err := o.transcripts.Retrieve(ctx, id, lang, progress)
	if err != nil {
		return nil, o.fail(log, domain.StageTranscribe, err)
	}
	progress(fmt.Sprintf("Transcript found (lang: %s, %s)", transcript.LanguageCode, transcript.Language))
	log.Debug("transcript retrieved", "lang", transcript.LanguageCode, "snippets", len(transcript.Snippets))

	result := &domain.ProcessResult{
		RunID:       runID,
		Title:       meta.Title,
		ChannelName: meta.ChannelName,
		Language:    transcript.LanguageCode,
	}
	if result.Language == "" {
		result.Language = lang
	}

	var summary string
	if !opts.SkipSummary && o.summarizer != nil {
		progress(fmt.Sprintf("Generating summary with %s...", o.summarizer.Model()))
		outcome := summarize(ctx, o.summarizer, meta.Title, document.TranscriptText(transcript.Snippets))
		switch outcome.Kind {
		case OutcomeOK:
			summary = outcome.Summary
			progress("Summary generated.")
		case OutcomeRecovered:
			log.Warn("summary skipped", "error", outcome.Err)
			result.Warnings = append(result.Warnings, outcome.Err.Error())
			progress(fmt.Sprintf("Warning: Summary generation failed (%v). Skipping.", outcome.Err))
		case OutcomeFatal:
			return nil, o.fail(log, domain.StageSummarize, outcome.Err)
		}
	}
	result.HasSummary = summary != ""

	markdown, filename := document.Render(document.Input{
		VideoID:    id,
		Meta:       *meta,
		Transcript: *transcript,
		Summary:    summary,
		Now:        o.now(),
	})
	if err := ctx.Err(); err != nil {
		return nil, o.fail(log, domain.StageAssemble, err)
	}

	path, err := o.storage.SaveDocument(ctx, outputDir, filename, []byte(markdown))
	if err != nil {
		return nil, o.fail(log, domain.StagePersist, err)
	}
	progress("Saved: " + path)

	result.Filename = filename
	result.OutputPath = path
	log.Info("run completed", "path", path, "summary", result.HasSummary)
	return result, nil
}

func (o *Orchestrator) fail(log hclog.Logger, stage domain.Stage, err error) error {
	log.Error("run failed", "stage", string(stage), "error", err)
	return &domain.StageError{Stage: stage, Err: err}
}

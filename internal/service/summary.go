package service

import (
	"context"
	"errors"

	"yttranscript/internal/core/ports"
)

// OutcomeKind tags the result of an optional stage.
type OutcomeKind int

const (
	// OutcomeOK means the stage produced its output.
	OutcomeOK OutcomeKind = iota
	// OutcomeRecovered means the stage failed but the run continues without its output.
	OutcomeRecovered
	// OutcomeFatal means the run must stop.
	OutcomeFatal
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOK:
		return "ok"
	case OutcomeRecovered:
		return "recovered"
	case OutcomeFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// StageOutcome is the tagged result of the summarize stage.
type StageOutcome struct {
	Kind    OutcomeKind
	Summary string
	Err     error
}

// summarize runs the summarizer and classifies its failure. Only cancellation
// of the run is fatal; every other failure degrades to "no summary".
func summarize(ctx context.Context, s ports.Summarizer, title, text string) StageOutcome {
	summary, err := s.Summarize(ctx, title, text)
	if err == nil {
		return StageOutcome{Kind: OutcomeOK, Summary: summary}
	}
	return StageOutcome{Kind: classifySummaryError(ctx, err), Err: err}
}

func classifySummaryError(ctx context.Context, err error) OutcomeKind {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return OutcomeFatal
	}
	return OutcomeRecovered
}

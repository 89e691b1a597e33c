package vaultgit

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"yttranscript/internal/core/domain"
)

// CommandRunner runs a command in dir and returns its standard output.
type CommandRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) (string, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes name with args in dir. A non-zero exit returns the captured stderr in the error.
func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
		}
		return "", fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, msg)
	}
	return out.String(), nil
}

// Syncer commits and pushes every change in an Obsidian vault git repository.
type Syncer struct {
	dir     string
	runner  CommandRunner
	timeout time.Duration
	now     func() time.Time
	logger  hclog.Logger
}

// NewSyncer creates a Syncer for the vault at dir. A nil runner uses ExecRunner.
func NewSyncer(dir string, runner CommandRunner, logger hclog.Logger) *Syncer {
	if runner == nil {
		runner = ExecRunner{}
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Syncer{
		dir:     dir,
		runner:  runner,
		timeout: 2 * time.Minute,
		now:     time.Now,
		logger:  logger,
	}
}

// Sync reports its outcome through log and never returns an error.
func (s *Syncer) Sync(ctx context.Context, log domain.ProgressFunc) {
	if log == nil {
		log = func(string) {}
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	status, err := s.git(ctx, "status", "--porcelain")
	if err != nil {
		s.fail(log, err)
		return
	}
	if strings.TrimSpace(status) == "" {
		log("Obsidian vault: no changes to sync")
		return
	}

	msg := "yt-transcript: auto-sync " + s.now().UTC().Format("2006-01-02 15:04:05")
	steps := [][]string{
		{"add", "-A"},
		{"commit", "-m", msg},
		{"pull", "--rebase"},
		{"push"},
	}
	for _, args := range steps {
		if _, err := s.git(ctx, args...); err != nil {
			s.fail(log, err)
			return
		}
	}
	log("Obsidian vault: synced")
}

func (s *Syncer) git(ctx context.Context, args ...string) (string, error) {
	s.logger.Debug("running git", "dir", s.dir, "args", args)
	return s.runner.Run(ctx, s.dir, "git", args...)
}

func (s *Syncer) fail(log domain.ProgressFunc, err error) {
	s.logger.Warn("vault sync failed", "dir", s.dir, "error", err)
	log(fmt.Sprintf("Obsidian vault sync failed: %v", err))
}

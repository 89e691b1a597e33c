package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"yttranscript/internal/adapters/anthropic"
	"yttranscript/internal/adapters/downloader"
	"yttranscript/internal/adapters/localstorage"
	"yttranscript/internal/adapters/vaultgit"
	"yttranscript/internal/adapters/youtube"
	"yttranscript/internal/config"
	"yttranscript/internal/core/domain"
	"yttranscript/internal/core/ports"
	"yttranscript/internal/service"
)

type flags struct {
	configPath string
	lang       string
	noSummary  bool
	outputDir  string
	sync       bool
	timeout    time.Duration
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:   "yt-transcript [URL or video ID]",
		Short: "Save a YouTube transcript as an Obsidian note",
		Example: `  yt-transcript "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
  yt-transcript dQw4w9WgXcQ --lang en --no-summary
  yt-transcript https://youtu.be/dQw4w9WgXcQ --sync`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := run(cmd, args[0], f)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&f.configPath, "config", "", "path to a YAML config file")
	cmd.Flags().StringVarP(&f.lang, "lang", "l", "", "preferred transcript language (default ja)")
	cmd.Flags().BoolVar(&f.noSummary, "no-summary", false, "skip summary generation")
	cmd.Flags().StringVarP(&f.outputDir, "output-dir", "o", "", "directory for the generated note")
	cmd.Flags().BoolVar(&f.sync, "sync", false, "commit and push the Obsidian vault afterwards")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "HTTP timeout per request (default 30s)")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "diagnostic log level: trace, debug, info, warn, error")
	return cmd
}

func run(cmd *cobra.Command, input string, f flags) error {
	loadDotEnv()

	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg, f)
	if err := cfg.Validate(); err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "yt-transcript",
		Level:  hclog.LevelFromString(cfg.LogLevel),
		Output: stderr,
	})

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	orchestrator := buildOrchestrator(cfg, logger)
	progress := func(msg string) { fmt.Fprintln(stderr, msg) }

	result, err := orchestrator.ProcessVideo(ctx, domain.ProcessOptions{
		URL:         input,
		Lang:        cfg.Lang,
		SkipSummary: f.noSummary,
		OutputDir:   cfg.OutputDir,
		OnProgress:  progress,
	})
	if err != nil {
		return err
	}

	if cfg.SyncVault {
		var syncer ports.VaultSyncer = vaultgit.NewSyncer(cfg.VaultDir, nil, logger.Named("vault"))
		syncer.Sync(ctx, progress)
	}

	printSummary(cmd.OutOrStdout(), result)
	return nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config, f flags) {
	if cmd.Flags().Changed("lang") {
		cfg.Lang = f.lang
	}
	if cmd.Flags().Changed("output-dir") {
		cfg.OutputDir = f.outputDir
	}
	if cmd.Flags().Changed("sync") {
		cfg.SyncVault = f.sync
	}
	if cmd.Flags().Changed("timeout") {
		cfg.HTTPTimeout = f.timeout
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
}

func buildOrchestrator(cfg *config.Config, logger hclog.Logger) *service.Orchestrator {
	dl := downloader.NewHTTPDownloader(downloader.Config{
		Timeout: cfg.HTTPTimeout,
		Retries: cfg.HTTPRetries,
	})

	scraper := youtube.NewPageScraper(dl,
		youtube.WithUserAgent(cfg.UserAgent),
		youtube.WithAcceptLanguage(cfg.AcceptLanguage),
	)
	captions := youtube.NewCaptionSource(dl, "")
	summarizer := anthropic.NewClient(cfg.AnthropicAPIKey, dl,
		anthropic.WithBaseURL(cfg.AnthropicBaseURL),
		anthropic.WithModel(cfg.SummaryModel),
	)

	return service.NewOrchestrator(scraper, captions, summarizer, localstorage.NewLocalStorage(), logger)
}

// loadDotEnv loads the first .env found in the working directory or up to
// four parents. Variables already set in the environment win.
func loadDotEnv() {
	dir, err := os.Getwd()
	if err != nil {
		return
	}
	for i := 0; i < 5; i++ {
		path := filepath.Join(dir, ".env")
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

func printSummary(w io.Writer, r *domain.ProcessResult) {
	fmt.Fprintln(w, "\n=== Done ===")
	fmt.Fprintf(w, "Title:    %s\n", r.Title)
	fmt.Fprintf(w, "Channel:  %s\n", r.ChannelName)
	fmt.Fprintf(w, "Language: %s\n", r.Language)
	fmt.Fprintf(w, "Summary:  %s\n", yesNo(r.HasSummary))
	fmt.Fprintf(w, "File:     %s\n", r.OutputPath)
	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "Warning:  %s\n", warn)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

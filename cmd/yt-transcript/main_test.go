package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yttranscript/internal/config"
	"yttranscript/internal/core/domain"
)

func TestApplyFlagsOnlyOverridesChanged(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--lang", "en", "--timeout", "5s"}))

	cfg := config.Default()
	cfg.OutputDir = "/from/config"
	f := flags{lang: "en", timeout: 5 * time.Second}
	applyFlags(cmd, cfg, f)

	assert.Equal(t, "en", cfg.Lang)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "/from/config", cfg.OutputDir)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestRunRejectsInvalidInput(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(config.EnvOutputDir, t.TempDir())

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"https://vimeo.com/123"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, stderr.String(), "Error: resolve:")
	assert.Empty(t, stdout.String())
}

func TestRunRequiresArgument(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})
	assert.Error(t, cmd.Execute())
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, &domain.ProcessResult{
		Title:       "Test Video",
		ChannelName: "Chan",
		Language:    "ja",
		OutputPath:  "/out/Test Video.md",
		Warnings:    []string{"ANTHROPIC_API_KEY is not set"},
	})

	out := buf.String()
	assert.Contains(t, out, "=== Done ===")
	assert.Contains(t, out, "Summary:  no\n")
	assert.Contains(t, out, "File:     /out/Test Video.md\n")
	assert.Contains(t, out, "Warning:  ANTHROPIC_API_KEY is not set\n")
}

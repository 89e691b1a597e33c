// Package config loads yt-transcript settings from defaults, an optional YAML
// file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variable names.
const (
	EnvOutputDir   = "YT_TRANSCRIPT_OUTPUT_DIR"
	EnvVaultDir    = "YT_TRANSCRIPT_VAULT_DIR"
	EnvAPIKey      = "ANTHROPIC_API_KEY"
	EnvBaseURL     = "ANTHROPIC_BASE_URL"
	EnvModel       = "YT_TRANSCRIPT_MODEL"
	EnvLang        = "YT_TRANSCRIPT_LANG"
	EnvHTTPTimeout = "YT_TRANSCRIPT_HTTP_TIMEOUT"
	EnvHTTPRetries = "YT_TRANSCRIPT_HTTP_RETRIES"
	EnvLogLevel    = "YT_TRANSCRIPT_LOG_LEVEL"
	EnvSyncVault   = "YT_TRANSCRIPT_SYNC_VAULT"
)

// Config holds every setting the CLI passes into the pipeline.
type Config struct {
	OutputDir        string        `yaml:"output_dir"`
	VaultDir         string        `yaml:"vault_dir"`
	AnthropicAPIKey  string        `yaml:"anthropic_api_key"`
	AnthropicBaseURL string        `yaml:"anthropic_base_url"`
	SummaryModel     string        `yaml:"summary_model"`
	Lang             string        `yaml:"lang"`
	AcceptLanguage   string        `yaml:"accept_language"`
	UserAgent        string        `yaml:"user_agent"`
	HTTPTimeout      time.Duration `yaml:"http_timeout"`
	HTTPRetries      int           `yaml:"http_retries"`
	LogLevel         string        `yaml:"log_level"`
	SyncVault        bool          `yaml:"sync_vault"`
}

// Default returns the built-in settings. Paths under the home directory are
// left with a "~" prefix; Load expands them.
func Default() *Config {
	return &Config{
		OutputDir:   "~/workspace/obsidian/Clippings",
		VaultDir:    "~/workspace/obsidian",
		Lang:        "ja",
		HTTPTimeout: 30 * time.Second,
		LogLevel:    "warn",
	}
}

// Load builds the configuration. When path is empty the first existing file
// among DefaultPaths is used; a missing default file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	file := path
	if file == "" {
		for _, p := range DefaultPaths() {
			if _, err := os.Stat(p); err == nil {
				file = p
				break
			}
		}
	}
	if file != "" {
		if err := cfg.loadFile(file); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	var err error
	if cfg.OutputDir, err = expandHome(cfg.OutputDir); err != nil {
		return nil, err
	}
	if cfg.VaultDir, err = expandHome(cfg.VaultDir); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultPaths lists the config files looked up when no path is given.
func DefaultPaths() []string {
	paths := []string{"yt-transcript.yaml"}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "yt-transcript", "config.yaml"))
	}
	return paths
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str(EnvOutputDir, &c.OutputDir)
	str(EnvVaultDir, &c.VaultDir)
	str(EnvAPIKey, &c.AnthropicAPIKey)
	str(EnvBaseURL, &c.AnthropicBaseURL)
	str(EnvModel, &c.SummaryModel)
	str(EnvLang, &c.Lang)
	str(EnvLogLevel, &c.LogLevel)

	if v, ok := lookup(EnvHTTPTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvHTTPTimeout, err)
		}
		c.HTTPTimeout = d
	}
	if v, ok := lookup(EnvHTTPRetries); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvHTTPRetries, err)
		}
		c.HTTPRetries = n
	}
	if v, ok := lookup(EnvSyncVault); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvSyncVault, err)
		}
		c.SyncVault = b
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.OutputDir) == "" {
		return errors.New("output directory is required")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be positive, got %s", c.HTTPTimeout)
	}
	if c.HTTPRetries < 0 {
		return fmt.Errorf("http retries must not be negative, got %d", c.HTTPRetries)
	}
	if c.SyncVault && strings.TrimSpace(c.VaultDir) == "" {
		return errors.New("vault directory is required when vault sync is enabled")
	}
	return nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

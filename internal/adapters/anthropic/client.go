package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"yttranscript/internal/adapters/downloader"
	"yttranscript/internal/core/domain"
)

const (
	// DefaultBaseURL is the public Anthropic API host.
	DefaultBaseURL = "https://api.anthropic.com"
	// DefaultModel is the model used when none is configured.
	DefaultModel = "claude-haiku-4-5-20251001"
	apiVersion   = "2023-06-01"
	maxTokens    = 1024

	// MaxTranscriptRunes is the transcript budget sent to the model.
	MaxTranscriptRunes = 12000
	truncationMarker   = "\n...(truncated)"
)

const promptTemplate = `以下はYouTube動画「%s」のトランスクリプトです。この内容を日本語で要約してください。

要件:
- 動画の主要なポイントを箇条書き（3〜7個）でまとめる
- 各ポイントは1〜2文で簡潔に
- 専門用語はそのまま残す
- Markdown記法で出力（見出し不要、箇条書きのみ）

トランスクリプト:
%s`

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
}

// Poster is the transport the client needs.
type Poster interface {
	PostJSON(ctx context.Context, url string, header http.Header, body []byte) ([]byte, error)
}

// Client implements ports.Summarizer using the Anthropic Messages API.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	http    Poster
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API host.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithModel overrides the model identifier.
func WithModel(m string) Option {
	return func(c *Client) {
		if m != "" {
			c.model = m
		}
	}
}

// NewClient creates a new Client. An empty apiKey is accepted; Summarize then
// fails with domain.ErrMissingCredential.
func NewClient(apiKey string, poster Poster, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		model:   DefaultModel,
		http:    poster,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the model identifier sent with each request.
func (c *Client) Model() string { return c.model }

// Summarize asks the model for a bullet-point summary of the transcript.
func (c *Client) Summarize(ctx context.Context, title, transcriptText string) (string, error) {
	if c.apiKey == "" {
		return "", domain.ErrMissingCredential
	}

	body, err := json.Marshal(messagesRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages: []message{
			{Role: "user", Content: BuildPrompt(title, transcriptText)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	h := http.Header{}
	h.Set("x-api-key", c.apiKey)
	h.Set("anthropic-version", apiVersion)

	data, err := c.http.PostJSON(ctx, c.baseURL+"/v1/messages", h, body)
	if err != nil {
		var statusErr *downloader.StatusError
		if errors.As(err, &statusErr) {
			return "", &domain.UpstreamError{StatusCode: statusErr.StatusCode, Body: string(statusErr.Body)}
		}
		return "", err
	}

	var resp messagesResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	for _, block := range resp.Content {
		if block.Type != "text" {
			continue
		}
		if text := strings.TrimSpace(block.Text); text != "" {
			return text, nil
		}
		break
	}
	return "", &domain.UpstreamError{StatusCode: http.StatusOK, Body: "Empty response from Anthropic API"}
}

// BuildPrompt renders the summary instruction with a truncated transcript.
func BuildPrompt(title, transcriptText string) string {
	return fmt.Sprintf(promptTemplate, title, Truncate(transcriptText))
}

// Truncate caps text at MaxTranscriptRunes, appending a marker when cut.
func Truncate(text string) string {
	if utf8.RuneCountInString(text) <= MaxTranscriptRunes {
		return text
	}
	return string([]rune(text)[:MaxTranscriptRunes]) + truncationMarker
}

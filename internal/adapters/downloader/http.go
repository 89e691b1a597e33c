package downloader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"yttranscript/internal/core/domain"
)

// DefaultMaxBodyBytes caps how much of a response body is read.
const DefaultMaxBodyBytes = 8 << 20

// Config configures an HTTPDownloader.
type Config struct {
	Timeout time.Duration
	// Retries is the number of extra attempts for transient failures (5xx, 429, transport).
	// Zero means a single attempt.
	Retries      int
	MaxBodyBytes int64
}

// HTTPDownloader performs size-capped HTTP exchanges and maps failures to domain errors.
type HTTPDownloader struct {
	client   *http.Client
	retries  int
	maxBytes int64
	newBack  func() backoff.BackOff
}

// NewHTTPDownloader creates a new HTTPDownloader.
func NewHTTPDownloader(cfg Config) *HTTPDownloader {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &HTTPDownloader{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		retries:  cfg.Retries,
		maxBytes: cfg.MaxBodyBytes,
		newBack: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxElapsedTime = 30 * time.Second
			return b
		},
	}
}

// WithClient swaps the underlying http.Client.
func (d *HTTPDownloader) WithClient(c *http.Client) *HTTPDownloader {
	d.client = c
	return d
}

// Get fetches url and returns its body. Non-2xx statuses yield *domain.NetworkError.
func (d *HTTPDownloader) Get(ctx context.Context, url string, header http.Header) ([]byte, error) {
	return d.Do(ctx, http.MethodGet, url, header, nil)
}

// PostJSON posts a JSON body and returns the response body.
func (d *HTTPDownloader) PostJSON(ctx context.Context, url string, header http.Header, body []byte) ([]byte, error) {
	h := header.Clone()
	if h == nil {
		h = http.Header{}
	}
	h.Set("Content-Type", "application/json")
	return d.Do(ctx, http.MethodPost, url, h, body)
}

// Do performs one logical request. Client errors (4xx) are never retried.
func (d *HTTPDownloader) Do(ctx context.Context, method, url string, header http.Header, body []byte) ([]byte, error) {
	var out []byte
	operation := func() error {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}

		resp, err := d.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return &domain.NetworkError{URL: url, Err: err}
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, d.maxBytes+1))
		if err != nil {
			return &domain.NetworkError{URL: url, Err: fmt.Errorf("read body: %w", err)}
		}
		if int64(len(data)) > d.maxBytes {
			return backoff.Permanent(&domain.NetworkError{URL: url, Err: &BodyTooLargeError{Limit: d.maxBytes}})
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			netErr := &domain.NetworkError{
				URL:        url,
				StatusCode: resp.StatusCode,
				Err:        &StatusError{StatusCode: resp.StatusCode, Body: data},
			}
			if isTransientStatus(resp.StatusCode) {
				return netErr
			}
			return backoff.Permanent(netErr)
		}

		out = data
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(d.newBack(), uint64(max(d.retries, 0))), ctx)
	if err := backoff.Retry(operation, b); err != nil {
		return nil, err
	}
	return out, nil
}

func isTransientStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// StatusError carries the body of a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
}

// BodyTooLargeError reports a response body over the configured cap.
type BodyTooLargeError struct {
	Limit int64
}

func (e *BodyTooLargeError) Error() string {
	return fmt.Sprintf("response body exceeds %d bytes", e.Limit)
}

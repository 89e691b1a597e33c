package youtube

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"

	"golang.org/x/net/html"

	"yttranscript/internal/core/domain"
)

const (
	// DefaultUserAgent is a desktop Chrome user agent.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	// DefaultAcceptLanguage biases the watch page towards Japanese titles.
	DefaultAcceptLanguage = "ja,en;q=0.9"

	defaultTitle   = "Untitled"
	defaultChannel = "Unknown"
)

var (
	titleRe        = regexp.MustCompile(`<title>([^<]+)</title>`)
	ownerChannelRe = regexp.MustCompile(`"ownerChannelName"\s*:\s*"([^"]+)"`)
	linkNameRe     = regexp.MustCompile(`<link itemprop="name" content="([^"]+)">`)
	ogDescRe       = regexp.MustCompile(`<meta property="og:description" content="([^"]*)">`)
	publishedRe    = regexp.MustCompile(`"(?:datePublished|uploadDate)"\s*:\s*"(\d{4}-\d{2}-\d{2})`)
	unicodeEscRe   = regexp.MustCompile(`(?:\\u[0-9a-fA-F]{4})+`)
)

// Fetcher is the HTTP transport the adapters need.
type Fetcher interface {
	Get(ctx context.Context, url string, header http.Header) ([]byte, error)
	PostJSON(ctx context.Context, url string, header http.Header, body []byte) ([]byte, error)
}

// PageScraper implements ports.MetadataScraper by pattern-matching the watch page.
type PageScraper struct {
	fetcher        Fetcher
	baseURL        string
	userAgent      string
	acceptLanguage string
}

// ScraperOption configures a PageScraper.
type ScraperOption func(*PageScraper)

// WithBaseURL points the scraper at another host, e.g. a test server.
func WithBaseURL(u string) ScraperOption {
	return func(s *PageScraper) { s.baseURL = strings.TrimRight(u, "/") }
}

// WithUserAgent overrides the browser user agent.
func WithUserAgent(ua string) ScraperOption {
	return func(s *PageScraper) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// WithAcceptLanguage overrides the Accept-Language header.
func WithAcceptLanguage(al string) ScraperOption {
	return func(s *PageScraper) {
		if al != "" {
			s.acceptLanguage = al
		}
	}
}

// NewPageScraper creates a new PageScraper.
func NewPageScraper(fetcher Fetcher, opts ...ScraperOption) *PageScraper {
	s := &PageScraper{
		fetcher:        fetcher,
		baseURL:        "https://www.youtube.com",
		userAgent:      DefaultUserAgent,
		acceptLanguage: DefaultAcceptLanguage,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchMeta downloads the watch page and extracts its metadata.
func (s *PageScraper) FetchMeta(ctx context.Context, id domain.VideoID) (*domain.VideoMeta, error) {
	h := http.Header{}
	h.Set("User-Agent", s.userAgent)
	h.Set("Accept-Language", s.acceptLanguage)

	page, err := s.fetcher.Get(ctx, s.baseURL+"/watch?v="+string(id), h)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch YouTube page: %w", err)
	}
	meta := ParseWatchPage(string(page))
	return &meta, nil
}

// ParseWatchPage extracts metadata from raw watch page HTML. Each field falls
// back to its default independently.
func ParseWatchPage(page string) domain.VideoMeta {
	meta := domain.VideoMeta{
		Title:       defaultTitle,
		ChannelName: defaultChannel,
	}

	if m := titleRe.FindStringSubmatch(page); m != nil {
		title := strings.TrimSpace(strings.TrimSuffix(m[1], " - YouTube"))
		meta.Title = html.UnescapeString(title)
	}

	if m := ownerChannelRe.FindStringSubmatch(page); m != nil {
		meta.ChannelName = html.UnescapeString(decodeUnicodeEscapes(m[1]))
	} else if m := linkNameRe.FindStringSubmatch(page); m != nil {
		meta.ChannelName = html.UnescapeString(m[1])
	}

	if m := ogDescRe.FindStringSubmatch(page); m != nil {
		meta.Description = html.UnescapeString(m[1])
	}

	if m := publishedRe.FindStringSubmatch(page); m != nil {
		meta.PublishedDate = m[1]
	}

	return meta
}

// decodeUnicodeEscapes turns JSON \uXXXX sequences into text, pairing surrogates.
func decodeUnicodeEscapes(s string) string {
	return unicodeEscRe.ReplaceAllStringFunc(s, func(run string) string {
		units := make([]uint16, 0, len(run)/6)
		for i := 0; i+6 <= len(run); i += 6 {
			v, err := strconv.ParseUint(run[i+2:i+6], 16, 16)
			if err != nil {
				return run
			}
			units = append(units, uint16(v))
		}
		return string(utf16.Decode(units))
	})
}

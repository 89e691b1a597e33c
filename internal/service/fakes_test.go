package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"yttranscript/internal/core/domain"
)

type fakeScraper struct {
	meta *domain.VideoMeta
	err  error
}

func (f *fakeScraper) FetchMeta(ctx context.Context, id domain.VideoID) (*domain.VideoMeta, error) {
	if f.err != nil {
		return nil, f.err
	}
	m := *f.meta
	return &m, nil
}

// fakeSource answers by language; the key "*" is the unconstrained request.
type fakeSource struct {
	mu       sync.Mutex
	results  map[string]*domain.Transcript
	errs     map[string]error
	requests []string
}

func (f *fakeSource) Fetch(ctx context.Context, id domain.VideoID, langs []string) (*domain.Transcript, error) {
	key := "*"
	if len(langs) > 0 {
		key = strings.Join(langs, ",")
	}
	f.mu.Lock()
	f.requests = append(f.requests, key)
	f.mu.Unlock()

	if tr, ok := f.results[key]; ok {
		return tr, nil
	}
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	return nil, domain.ErrLanguageNotFound
}

type fakeSummarizer struct {
	summary string
	err     error
	calls   int
}

func (f *fakeSummarizer) Summarize(ctx context.Context, title, text string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.summary, nil
}

func (f *fakeSummarizer) Model() string { return "test-model" }

type memStorage struct {
	files map[string]string
	err   error
}

func (m *memStorage) SaveDocument(ctx context.Context, dir, filename string, content []byte) (string, error) {
	if m.err != nil {
		return "", &domain.FilesystemError{Path: dir + "/" + filename, Err: m.err}
	}
	if m.files == nil {
		m.files = map[string]string{}
	}
	path := dir + "/" + filename
	m.files[path] = string(content)
	return path, nil
}

var errBoom = errors.New("boom")

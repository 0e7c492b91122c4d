package extract

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/bbbfishhh/InfoFlow4Venture/internal/fetcher"
	"github.com/bbbfishhh/InfoFlow4Venture/internal/storage"
	"github.com/bbbfishhh/InfoFlow4Venture/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

type fakeFetcher struct {
	pages map[string]string
	err   error
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (*fetcher.Page, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.pages[url]
	if !ok {
		return nil, &types.ProviderError{Provider: "crawl", StatusCode: 404, Err: errors.New("not found")}
	}
	return &fetcher.Page{URL: url, StatusCode: 200, Body: []byte(body)}, nil
}

func (f *fakeFetcher) Close() error { return nil }

type fakeGenerator struct {
	response string
	err      error
	calls    int
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

func TestDetailExtract(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		"https://example.com/a": "<html><body>article body</body></html>",
	}}
	g := &fakeGenerator{response: `Sure! [{"title":"T","summary":"S","key_words":"ai, startups, funding"}]`}

	e := NewDetailExtractor(f, g, testLogger)
	rec, err := e.Extract(context.Background(), "https://example.com/a")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if rec.Title != "T" || rec.Summary != "S" {
		t.Errorf("unexpected record: %+v", rec)
	}
	if kw, ok := rec.KeyWords.(string); !ok || kw != "ai, startups, funding" {
		t.Errorf("unexpected key_words: %v", rec.KeyWords)
	}
}

func TestDetailExtractEmptyURL(t *testing.T) {
	e := NewDetailExtractor(&fakeFetcher{}, &fakeGenerator{}, testLogger)
	if _, err := e.Extract(context.Background(), ""); !errors.Is(err, types.ErrEmptyURL) {
		t.Errorf("expected ErrEmptyURL, got %v", err)
	}
}

func TestDetailExtractMalformedPayload(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{"https://example.com/a": "<body>x</body>"}}
	g := &fakeGenerator{response: `[{"title": broken`}

	e := NewDetailExtractor(f, g, testLogger)
	if _, err := e.Extract(context.Background(), "https://example.com/a"); err == nil {
		t.Error("malformed payload must surface as an error")
	}
}

func TestDetailExtractPreservesRateLimit(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{"https://example.com/a": "<body>x</body>"}}
	g := &fakeGenerator{err: &types.ProviderError{Provider: "openai", StatusCode: 429, RateLimited: true, Err: errors.New("quota")}}

	e := NewDetailExtractor(f, g, testLogger)
	_, err := e.Extract(context.Background(), "https://example.com/a")
	if !types.IsRateLimit(err) {
		t.Errorf("rate-limit class must be preserved, got %v", err)
	}
}

const listingResponse = `[
	{"title":"A","tag":"AI","further_url":"https://example.com/a","post_time":"2024-11-27","summary":null,"key_words":null},
	{"title":"B","tag":"Venture","further_url":"https://example.com/b","post_time":"not-a-date","summary":null,"key_words":null}
]`

func newListFixture(store storage.Store) (*ListExtractor, *fakeGenerator) {
	f := &fakeFetcher{pages: map[string]string{
		"https://news.example.com/": "<html><body>listing</body></html>",
	}}
	g := &fakeGenerator{response: listingResponse}
	e := NewListExtractor(f, g, store, 10, testLogger)
	return e, g
}

func TestListingExtract(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore(0)
	e, _ := newListFixture(store)

	stubs, err := e.Extract(ctx, []string{"https://news.example.com/"})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(stubs) != 2 {
		t.Fatalf("expected 2 stubs, got %d", len(stubs))
	}
	if store.Len() != 2 {
		t.Errorf("expected 2 stored documents, got %d", store.Len())
	}

	doc, err := store.FindByURL(ctx, "https://example.com/a")
	if err != nil {
		t.Fatal(err)
	}
	if doc.Complete() {
		t.Error("fresh stub must not be complete")
	}
}

func TestListingExtractIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore(0)
	e, _ := newListFixture(store)

	for i := 0; i < 2; i++ {
		stubs, err := e.Extract(ctx, []string{"https://news.example.com/"})
		if err != nil {
			t.Fatal(err)
		}
		// Stubs still come back on the second pass for backfill purposes.
		if len(stubs) != 2 {
			t.Fatalf("pass %d: expected 2 stubs, got %d", i, len(stubs))
		}
	}
	if store.Len() != 2 {
		t.Errorf("second pass must not create duplicates, got %d documents", store.Len())
	}
}

func TestListingExtractDoesNotClobberExisting(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore(0)
	e, _ := newListFixture(store)

	if _, err := e.Extract(ctx, []string{"https://news.example.com/"}); err != nil {
		t.Fatal(err)
	}
	if err := store.UpdateDetail(ctx, "https://example.com/a", "backfilled", []string{"ai"}, time.Now()); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Extract(ctx, []string{"https://news.example.com/"}); err != nil {
		t.Fatal(err)
	}

	doc, err := store.FindByURL(ctx, "https://example.com/a")
	if err != nil {
		t.Fatal(err)
	}
	if doc.Content == nil || *doc.Content != "backfilled" {
		t.Error("re-extraction must not overwrite backfilled content")
	}
}

func TestListingExtractPublishedDateFallback(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore(0)
	e, _ := newListFixture(store)

	ingested := time.Date(2024, 11, 28, 10, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return ingested }

	if _, err := e.Extract(ctx, []string{"https://news.example.com/"}); err != nil {
		t.Fatal(err)
	}

	doc, err := store.FindByURL(ctx, "https://example.com/b")
	if err != nil {
		t.Fatal(err)
	}
	if !doc.PublishedDate.Equal(ingested) {
		t.Errorf("unparseable post_time must fall back to ingestion time, got %v", doc.PublishedDate)
	}
}

func TestListingExtractSkipsFailingSource(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore(0)
	f := &fakeFetcher{pages: map[string]string{
		"https://news.example.com/": "<html><body>listing</body></html>",
	}}
	g := &fakeGenerator{response: listingResponse}
	e := NewListExtractor(f, g, store, 10, testLogger)

	stubs, err := e.Extract(ctx, []string{
		"https://down.example.com/", // 404s
		"https://news.example.com/",
	})
	if err != nil {
		t.Fatalf("one bad source must not abort the run: %v", err)
	}
	if len(stubs) != 2 {
		t.Errorf("expected stubs from the healthy source, got %d", len(stubs))
	}
}

func TestListingExtractBoundsItems(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore(0)
	f := &fakeFetcher{pages: map[string]string{"https://news.example.com/": "<body>x</body>"}}
	g := &fakeGenerator{response: listingResponse}
	e := NewListExtractor(f, g, store, 1, testLogger)

	stubs, err := e.Extract(ctx, []string{"https://news.example.com/"})
	if err != nil {
		t.Fatal(err)
	}
	if len(stubs) != 1 {
		t.Errorf("expected listing bounded to 1 item, got %d", len(stubs))
	}
}

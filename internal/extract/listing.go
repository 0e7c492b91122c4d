package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bbbfishhh/InfoFlow4Venture/internal/ai"
	"github.com/bbbfishhh/InfoFlow4Venture/internal/fetcher"
	"github.com/bbbfishhh/InfoFlow4Venture/internal/storage"
	"github.com/bbbfishhh/InfoFlow4Venture/internal/types"
)

const listingInstructionFmt = `You are an HTML parsing expert. Your task is to:

1. Parse a listing page containing high-tech and startup company news
2. Extract only items related to AI, Venture, Startups, Technology or similar topics
3. Extract the following elements for each news item:
- Title
- Tag
- Further URL (link to the detailed page)
- Publication date
4. Format the results as a JSON array
5. Leave "summary" and "key_words" as null
6. Only extract the first %d news items

Expected output format:
[{"title": "...", "tag": "...", "further_url": "...", "post_time": "...", "summary": null, "key_words": null}]`

// ListExtractor discovers article stubs on configured listing pages and
// seeds the store with them.
type ListExtractor struct {
	fetcher  fetcher.Fetcher
	llm      ai.Generator
	store    storage.Store
	maxItems int
	logger   *slog.Logger
	now      func() time.Time
}

// NewListExtractor creates a listing-page extractor.
func NewListExtractor(f fetcher.Fetcher, llm ai.Generator, store storage.Store, maxItems int, logger *slog.Logger) *ListExtractor {
	return &ListExtractor{
		fetcher:  f,
		llm:      llm,
		store:    store,
		maxItems: maxItems,
		logger:   logger.With("component", "list_extractor"),
		now:      time.Now,
	}
}

// Extract processes each source listing page and returns every parsed stub.
// A failure on one source is logged and skipped; remaining sources still
// run. New stubs are upserted keyed by further_url; stubs whose URL is
// already stored are returned without touching the store, so existing
// content and keywords are never clobbered.
func (e *ListExtractor) Extract(ctx context.Context, sources []string) ([]types.NewsStub, error) {
	var all []types.NewsStub
	for _, src := range sources {
		stubs, err := e.extractOne(ctx, src)
		if err != nil {
			e.logger.Error("source skipped", "source", src, "error", err)
			continue
		}
		all = append(all, stubs...)
	}
	return all, nil
}

func (e *ListExtractor) extractOne(ctx context.Context, source string) ([]types.NewsStub, error) {
	page, err := e.fetcher.Fetch(ctx, source)
	if err != nil {
		return nil, err
	}

	text := page.Text()
	if text == "" {
		return nil, types.ErrNoContent
	}
	if len(text) > maxPromptChars {
		text = text[:maxPromptChars]
	}

	prompt := fmt.Sprintf(listingInstructionFmt, e.maxItems) +
		"\n\nListing page content:\n" + text
	raw, err := e.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var stubs []types.NewsStub
	if err := json.Unmarshal([]byte(ai.ExtractJSONArray(raw)), &stubs); err != nil {
		return nil, fmt.Errorf("parse listing payload: %w", err)
	}
	if len(stubs) > e.maxItems {
		stubs = stubs[:e.maxItems]
	}

	for _, stub := range stubs {
		if stub.FurtherURL == "" {
			continue
		}
		_, err := e.store.FindByURL(ctx, stub.FurtherURL)
		if err == nil {
			// Already stored; keep the stub for potential backfill but
			// don't overwrite the existing document.
			e.logger.Info("skipping existing news", "url", stub.FurtherURL)
			continue
		}
		if !errors.Is(err, types.ErrNotFound) {
			e.logger.Error("existence check failed", "url", stub.FurtherURL, "error", err)
			continue
		}
		doc := types.DocumentFromStub(stub, e.now())
		if err := e.store.UpsertStub(ctx, doc); err != nil {
			e.logger.Error("saving news failed", "url", stub.FurtherURL, "error", err)
		}
	}

	e.logger.Info("listing extracted", "source", source, "stubs", len(stubs))
	return stubs, nil
}

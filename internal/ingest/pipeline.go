package ingest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/bbbfishhh/InfoFlow4Venture/internal/config"
	"github.com/bbbfishhh/InfoFlow4Venture/internal/storage"
	"github.com/bbbfishhh/InfoFlow4Venture/internal/types"
)

// DetailSource produces the structured record for an article's detail page.
// Implemented by extract.DetailExtractor.
type DetailSource interface {
	Extract(ctx context.Context, url string) (*types.DetailRecord, error)
}

// ListSource discovers article stubs on the configured listing pages.
// Implemented by extract.ListExtractor.
type ListSource interface {
	Extract(ctx context.Context, sources []string) ([]types.NewsStub, error)
}

// Pipeline drives a full ingestion pass: listing extraction followed by
// per-stub detail backfill.
type Pipeline struct {
	list    ListSource
	detail  DetailSource
	store   storage.Store
	sources []string
	cfg     config.IngestConfig
	logger  *slog.Logger
	sleep   func(time.Duration)
	now     func() time.Time
}

// New creates an ingestion pipeline.
func New(list ListSource, detail DetailSource, store storage.Store, sources []string, cfg config.IngestConfig, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		list:    list,
		detail:  detail,
		store:   store,
		sources: sources,
		cfg:     cfg,
		logger:  logger.With("component", "ingest"),
		sleep:   time.Sleep,
		now:     time.Now,
	}
}

// Run executes one ingestion pass.
func (p *Pipeline) Run(ctx context.Context) error {
	stubs, err := p.list.Extract(ctx, p.sources)
	if err != nil {
		return err
	}
	p.logger.Info("listing pass complete", "stubs", len(stubs))
	return p.Backfill(ctx, stubs)
}

// Backfill enriches each stub's stored document with detail-page content
// and keywords. Documents that are already complete are skipped, so a
// rerun after a crash reattempts exactly the unfinished items. A failed
// extraction leaves the document incomplete and moves on; only rate-limit
// failures are waited out and retried, up to the configured cap.
func (p *Pipeline) Backfill(ctx context.Context, stubs []types.NewsStub) error {
	for _, stub := range stubs {
		if stub.FurtherURL == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		doc, err := p.store.FindByURL(ctx, stub.FurtherURL)
		if err != nil && !errors.Is(err, types.ErrNotFound) {
			p.logger.Error("lookup failed", "url", stub.FurtherURL, "error", err)
			continue
		}
		if doc != nil && doc.Complete() {
			p.logger.Info("skipping complete document", "url", stub.FurtherURL)
			continue
		}

		rec, err := p.extractWithRateLimitRetry(ctx, stub.FurtherURL)
		if err != nil {
			// Logged at extraction; the document stays incomplete and the
			// next run picks it up again.
			continue
		}

		keywords := types.NormalizeKeywords(rec.KeyWords)
		if err := p.store.UpdateDetail(ctx, stub.FurtherURL, rec.Summary, keywords, p.now()); err != nil {
			p.logger.Error("detail merge failed", "url", stub.FurtherURL, "error", err)
			continue
		}
		p.logger.Info("document backfilled", "url", stub.FurtherURL)
	}
	return nil
}

// extractWithRateLimitRetry calls the detail extractor, waiting out
// rate-limit responses. The retry count is capped so a sustained provider
// outage stalls one run, not forever.
func (p *Pipeline) extractWithRateLimitRetry(ctx context.Context, url string) (*types.DetailRecord, error) {
	for attempt := 0; ; attempt++ {
		rec, err := p.detail.Extract(ctx, url)
		if err == nil {
			return rec, nil
		}
		if !types.IsRateLimit(err) {
			return nil, err
		}
		if attempt >= p.cfg.RateLimitMaxRetries {
			p.logger.Error("rate limit retries exhausted", "url", url, "attempts", attempt+1)
			return nil, err
		}
		p.logger.Warn("rate limited, waiting", "url", url, "wait", p.cfg.RateLimitWait, "attempt", attempt+1)
		p.sleep(p.cfg.RateLimitWait)
	}
}

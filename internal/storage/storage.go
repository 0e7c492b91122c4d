package storage

import (
	"context"
	"time"

	"github.com/bbbfishhh/InfoFlow4Venture/internal/types"
)

// Store is the interface for the news document store. Documents are keyed
// by their unique URL; the backing store is expected to expire documents a
// configured duration after created_at.
type Store interface {
	// FindByURL returns the document with the given URL, or
	// types.ErrNotFound.
	FindByURL(ctx context.Context, url string) (*types.NewsDocument, error)

	// UpsertStub writes a freshly-sighted document keyed by its URL.
	UpsertStub(ctx context.Context, doc types.NewsDocument) error

	// UpdateDetail merges backfilled content and keywords into the stored
	// document via a partial field update, refreshing last_updated. The
	// rest of the document is left untouched.
	UpdateDetail(ctx context.Context, url string, content string, keywords []string, at time.Time) error

	// LatestComplete returns up to limit complete documents (non-null
	// content, non-empty keywords), newest published_date first.
	LatestComplete(ctx context.Context, limit int) ([]types.NewsDocument, error)

	// Close releases store resources.
	Close(ctx context.Context) error
}

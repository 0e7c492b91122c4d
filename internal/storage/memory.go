package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bbbfishhh/InfoFlow4Venture/internal/types"
)

// MemoryStore is an in-memory Store with the same semantics as MongoStore.
// Used by tests and dry runs; documents expire lazily on read based on the
// retention horizon.
type MemoryStore struct {
	mu        sync.RWMutex
	docs      map[string]types.NewsDocument
	retention time.Duration
	now       func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(retention time.Duration) *MemoryStore {
	return &MemoryStore{
		docs:      make(map[string]types.NewsDocument),
		retention: retention,
		now:       time.Now,
	}
}

// SetClock overrides the store's clock. Tests use this to exercise expiry.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryStore) expired(doc types.NewsDocument) bool {
	return s.retention > 0 && s.now().Sub(doc.CreatedAt) > s.retention
}

func (s *MemoryStore) FindByURL(ctx context.Context, url string) (*types.NewsDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[url]
	if !ok || s.expired(doc) {
		return nil, types.ErrNotFound
	}
	out := doc
	return &out, nil
}

func (s *MemoryStore) UpsertStub(ctx context.Context, doc types.NewsDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.URL] = doc
	return nil
}

func (s *MemoryStore) UpdateDetail(ctx context.Context, url string, content string, keywords []string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[url]
	if !ok || s.expired(doc) {
		return types.ErrNotFound
	}
	doc.Content = &content
	doc.Keywords = keywords
	doc.LastUpdated = at
	s.docs[url] = doc
	return nil
}

func (s *MemoryStore) LatestComplete(ctx context.Context, limit int) ([]types.NewsDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var docs []types.NewsDocument
	for _, doc := range s.docs {
		if doc.Complete() && !s.expired(doc) {
			docs = append(docs, doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].PublishedDate.After(docs[j].PublishedDate)
	})
	if len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

// Len returns the number of stored documents, ignoring expiry.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

func (s *MemoryStore) Close(ctx context.Context) error { return nil }

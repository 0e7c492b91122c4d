package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bbbfishhh/InfoFlow4Venture/internal/types"
)

func completeDoc(url string, published time.Time) types.NewsDocument {
	content := "summary for " + url
	return types.NewsDocument{
		Title:         "title",
		URL:           url,
		PublishedDate: published,
		CreatedAt:     published,
		Content:       &content,
		Keywords:      []string{"ai"},
	}
}

func TestFindByURLNotFound(t *testing.T) {
	s := NewMemoryStore(7 * 24 * time.Hour)
	if _, err := s.FindByURL(context.Background(), "https://example.com/x"); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpsertIsKeyedByURL(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(7 * 24 * time.Hour)
	now := time.Now()

	doc := types.NewsDocument{URL: "https://example.com/a", Title: "first", CreatedAt: now}
	if err := s.UpsertStub(ctx, doc); err != nil {
		t.Fatal(err)
	}
	doc.Title = "second"
	if err := s.UpsertStub(ctx, doc); err != nil {
		t.Fatal(err)
	}

	if s.Len() != 1 {
		t.Errorf("expected 1 document after double upsert, got %d", s.Len())
	}
	got, err := s.FindByURL(ctx, doc.URL)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "second" {
		t.Errorf("expected latest upsert to win, got %q", got.Title)
	}
}

func TestUpdateDetailIsPartial(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(7 * 24 * time.Hour)
	now := time.Now()

	stub := types.NewsDocument{
		URL:           "https://example.com/a",
		Title:         "original title",
		PublishedDate: now.AddDate(0, 0, -1),
		CreatedAt:     now,
		Tags:          []string{"AI"},
	}
	if err := s.UpsertStub(ctx, stub); err != nil {
		t.Fatal(err)
	}

	at := now.Add(time.Minute)
	if err := s.UpdateDetail(ctx, stub.URL, "a summary", []string{"ai", "funding"}, at); err != nil {
		t.Fatal(err)
	}

	got, err := s.FindByURL(ctx, stub.URL)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "original title" || len(got.Tags) != 1 {
		t.Error("detail update must not clobber unrelated fields")
	}
	if got.Content == nil || *got.Content != "a summary" {
		t.Errorf("content not merged: %v", got.Content)
	}
	if !got.LastUpdated.Equal(at) {
		t.Errorf("last_updated not refreshed: %v", got.LastUpdated)
	}
	if !got.Complete() {
		t.Error("document should be complete after detail update")
	}
}

func TestUpdateDetailMissingDocument(t *testing.T) {
	s := NewMemoryStore(7 * 24 * time.Hour)
	err := s.UpdateDetail(context.Background(), "https://example.com/missing", "x", []string{"y"}, time.Now())
	if !errors.Is(err, types.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLatestCompleteSelection(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0) // no expiry
	base := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)

	// 15 complete documents with distinct published dates
	for i := 0; i < 15; i++ {
		doc := completeDoc(fmt.Sprintf("https://example.com/%d", i), base.AddDate(0, 0, i))
		if err := s.UpsertStub(ctx, doc); err != nil {
			t.Fatal(err)
		}
	}
	// plus one incomplete that must never be selected
	if err := s.UpsertStub(ctx, types.NewsDocument{URL: "https://example.com/incomplete", PublishedDate: base.AddDate(0, 1, 0)}); err != nil {
		t.Fatal(err)
	}

	docs, err := s.LatestComplete(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 10 {
		t.Fatalf("expected 10 documents, got %d", len(docs))
	}
	for i, doc := range docs {
		want := fmt.Sprintf("https://example.com/%d", 14-i)
		if doc.URL != want {
			t.Errorf("position %d: expected %s, got %s", i, want, doc.URL)
		}
	}
}

func TestRetentionExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(7 * 24 * time.Hour)

	created := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)
	doc := completeDoc("https://example.com/old", created)
	if err := s.UpsertStub(ctx, doc); err != nil {
		t.Fatal(err)
	}

	s.SetClock(func() time.Time { return created.Add(8 * 24 * time.Hour) })
	if _, err := s.FindByURL(ctx, doc.URL); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("document past retention should be gone, got %v", err)
	}
	docs, err := s.LatestComplete(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 0 {
		t.Errorf("expired documents must not appear in digest selection, got %d", len(docs))
	}
}

package types

import (
	"reflect"
	"testing"
	"time"
)

func TestNormalizeKeywordsString(t *testing.T) {
	got := NormalizeKeywords("ai, startups, funding")
	want := []string{"ai", " startups", " funding"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestNormalizeKeywordsEmptyString(t *testing.T) {
	if got := NormalizeKeywords(""); len(got) != 0 {
		t.Errorf("expected empty list, got %v", got)
	}
}

func TestNormalizeKeywordsList(t *testing.T) {
	in := []string{"ai", "startups"}
	if got := NormalizeKeywords(in); !reflect.DeepEqual(got, in) {
		t.Errorf("list input should pass through unchanged, got %v", got)
	}

	// JSON decoding yields []any
	got := NormalizeKeywords([]any{"ai", "funding"})
	if !reflect.DeepEqual(got, []string{"ai", "funding"}) {
		t.Errorf("expected [ai funding], got %v", got)
	}
}

func TestNormalizeKeywordsOther(t *testing.T) {
	if got := NormalizeKeywords(42); len(got) != 0 {
		t.Errorf("expected empty list for non-text input, got %v", got)
	}
}

func TestParsePublishedDateFallback(t *testing.T) {
	now := time.Date(2024, 11, 28, 9, 30, 0, 0, time.UTC)

	if got := ParsePublishedDate("not-a-date", now); !got.Equal(now) {
		t.Errorf("unparseable post_time should fall back to ingestion time, got %v", got)
	}

	got := ParsePublishedDate("2024-11-20", now)
	want := time.Date(2024, 11, 20, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestComplete(t *testing.T) {
	content := "summary text"

	cases := []struct {
		name string
		doc  NewsDocument
		want bool
	}{
		{"missing both", NewsDocument{}, false},
		{"missing keywords", NewsDocument{Content: &content}, false},
		{"empty keywords", NewsDocument{Content: &content, Keywords: []string{}}, false},
		{"missing content", NewsDocument{Keywords: []string{"ai"}}, false},
		{"complete", NewsDocument{Content: &content, Keywords: []string{"ai"}}, true},
	}
	for _, tc := range cases {
		if got := tc.doc.Complete(); got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestDocumentFromStub(t *testing.T) {
	now := time.Date(2024, 11, 28, 9, 30, 0, 0, time.UTC)
	stub := NewsStub{
		Title:      "Linkup raises seed round",
		Tag:        "AI",
		FurtherURL: "https://example.com/linkup",
		PostTime:   "2024-11-27",
	}

	doc := DocumentFromStub(stub, now)
	if doc.URL != stub.FurtherURL {
		t.Errorf("expected URL %q, got %q", stub.FurtherURL, doc.URL)
	}
	if !reflect.DeepEqual(doc.Tags, []string{"AI"}) {
		t.Errorf("expected tags [AI], got %v", doc.Tags)
	}
	if doc.Content != nil || doc.Keywords != nil {
		t.Error("fresh document must have nil content and keywords")
	}
	if !doc.CreatedAt.Equal(now) {
		t.Errorf("expected created_at %v, got %v", now, doc.CreatedAt)
	}
}

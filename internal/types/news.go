package types

import (
	"strings"
	"time"
)

// NewsStub is a partial article record extracted from a listing page. The
// summary and keyword fields stay empty until detail backfill runs.
type NewsStub struct {
	Title      string `json:"title"`
	Tag        string `json:"tag"`
	FurtherURL string `json:"further_url"`
	PostTime   string `json:"post_time"`
	Summary    string `json:"summary,omitempty"`
	KeyWords   any    `json:"key_words,omitempty"`
}

// DetailRecord is the ephemeral result of detail-page extraction. KeyWords
// may come back from the model as a comma-separated string or as a list; it
// is normalized with NormalizeKeywords before storage.
type DetailRecord struct {
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	KeyWords any    `json:"key_words"`
}

// NewsDocument is the persisted article record, keyed by URL.
type NewsDocument struct {
	Title         string    `bson:"title"`
	URL           string    `bson:"url"`
	PublishedDate time.Time `bson:"published_date"`
	CreatedAt     time.Time `bson:"created_at"`
	Tags          []string  `bson:"tags"`
	Language      string    `bson:"language"`
	Content       *string   `bson:"content"`
	Keywords      []string  `bson:"keywords"`
	LastUpdated   time.Time `bson:"last_updated,omitempty"`
}

// Complete reports whether the document has been fully backfilled. Complete
// documents are skipped on subsequent ingestion passes.
func (d *NewsDocument) Complete() bool {
	return d.Content != nil && len(d.Keywords) > 0
}

// DocumentFromStub builds a fresh NewsDocument for a stub seen on a listing
// page. Content and keywords stay nil until backfill.
func DocumentFromStub(stub NewsStub, now time.Time) NewsDocument {
	var tags []string
	if stub.Tag != "" {
		tags = []string{stub.Tag}
	}
	return NewsDocument{
		Title:         stub.Title,
		URL:           stub.FurtherURL,
		PublishedDate: ParsePublishedDate(stub.PostTime, now),
		CreatedAt:     now,
		Tags:          tags,
		Language:      "en",
	}
}

// DigestItem is the digest view of a complete document: what gets
// translated and rendered into the email.
type DigestItem struct {
	Title    string   `json:"title"`
	Summary  string   `json:"summary"`
	KeyWords []string `json:"key_words"`
	URL      string   `json:"url"`
}

// DigestItemFromDocument projects a complete document into its digest view.
func DigestItemFromDocument(doc NewsDocument) DigestItem {
	item := DigestItem{
		Title:    doc.Title,
		KeyWords: doc.Keywords,
		URL:      doc.URL,
	}
	if doc.Content != nil {
		item.Summary = *doc.Content
	}
	return item
}

// ParsePublishedDate parses a source-reported post time. Sources report dates
// as YYYY-MM-DD; anything unparseable falls back to the ingestion time.
func ParsePublishedDate(postTime string, now time.Time) time.Time {
	t, err := time.ParseInLocation("2006-01-02", postTime, now.Location())
	if err != nil {
		return now
	}
	return t
}

// NormalizeKeywords converts a key_words payload into the stored list form.
// A string is split on commas (keeping the model's spacing as-is), a list is
// passed through, anything else yields an empty list.
func NormalizeKeywords(v any) []string {
	switch kw := v.(type) {
	case string:
		if kw == "" {
			return []string{}
		}
		return strings.Split(kw, ",")
	case []string:
		return kw
	case []any:
		out := make([]string, 0, len(kw))
		for _, e := range kw {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{}
	}
}

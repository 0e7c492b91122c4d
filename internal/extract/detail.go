package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/bbbfishhh/InfoFlow4Venture/internal/ai"
	"github.com/bbbfishhh/InfoFlow4Venture/internal/fetcher"
	"github.com/bbbfishhh/InfoFlow4Venture/internal/types"
)

const detailInstruction = `From the crawled content, extract the following information:
title: the title of the news article
summary: an about-100-word summary of the news content
key_words: top 3 relevant words separated by commas
Output the extracted information as a JSON array with a single object:
[{"title": "", "summary": "", "key_words": ""}]`

// maxPromptChars caps how much page text goes into a prompt.
const maxPromptChars = 12000

// DetailExtractor pulls a structured summary out of an article's detail
// page. It does not retry; rate-limit handling is the caller's job.
type DetailExtractor struct {
	fetcher fetcher.Fetcher
	llm     ai.Generator
	logger  *slog.Logger
}

// NewDetailExtractor creates a detail-page extractor.
func NewDetailExtractor(f fetcher.Fetcher, llm ai.Generator, logger *slog.Logger) *DetailExtractor {
	return &DetailExtractor{
		fetcher: f,
		llm:     llm,
		logger:  logger.With("component", "detail_extractor"),
	}
}

// Extract fetches the detail page at url and returns its structured record.
// Any collaborator failure or malformed model output is returned as an
// error; callers must treat an error as "extraction unavailable" and leave
// the document incomplete (rate-limit errors excepted, which they may
// retry).
func (e *DetailExtractor) Extract(ctx context.Context, url string) (*types.DetailRecord, error) {
	if url == "" {
		return nil, types.ErrEmptyURL
	}

	page, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		e.logger.Error("detail page fetch failed", "url", url, "error", err)
		return nil, err
	}

	text := page.Text()
	if text == "" {
		e.logger.Error("detail page has no text", "url", url)
		return nil, types.ErrNoContent
	}
	if len(text) > maxPromptChars {
		text = text[:maxPromptChars]
	}

	prompt := fmt.Sprintf("%s\n\nCrawled content:\n%s", detailInstruction, text)
	raw, err := e.llm.Generate(ctx, prompt)
	if err != nil {
		e.logger.Error("detail extraction failed", "url", url, "error", err)
		return nil, err
	}

	var records []types.DetailRecord
	if err := json.Unmarshal([]byte(ai.ExtractJSONArray(raw)), &records); err != nil {
		e.logger.Error("detail payload is not valid JSON", "url", url, "error", err)
		return nil, fmt.Errorf("parse detail payload: %w", err)
	}
	if len(records) == 0 {
		e.logger.Error("detail payload is empty", "url", url)
		return nil, types.ErrNoContent
	}

	e.logger.Info("detail extracted", "url", url, "title", records[0].Title)
	return &records[0], nil
}

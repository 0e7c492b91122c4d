package fetcher

import (
	"bytes"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// Page is the fetched content of a single URL.
type Page struct {
	URL        string
	StatusCode int
	Body       []byte

	docOnce sync.Once
	doc     *goquery.Document
	docErr  error
}

// Document lazily parses the body as HTML.
func (p *Page) Document() (*goquery.Document, error) {
	p.docOnce.Do(func() {
		p.doc, p.docErr = goquery.NewDocumentFromReader(bytes.NewReader(p.Body))
	})
	return p.doc, p.docErr
}

// Text reduces the page to whitespace-collapsed visible text, dropping
// script, style and navigation chrome. This is what gets handed to the
// extraction prompt.
func (p *Page) Text() string {
	doc, err := p.Document()
	if err != nil {
		return string(p.Body)
	}
	doc.Find("script, style, noscript, iframe, svg").Remove()

	var sel *goquery.Selection
	if body := doc.Find("body"); body.Length() > 0 {
		sel = body
	} else {
		sel = doc.Selection
	}
	return collapseWhitespace(sel.Text())
}

func collapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			inSpace = true
			continue
		}
		if inSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

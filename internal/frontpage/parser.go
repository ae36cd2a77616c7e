package frontpage

import (
	"bytes"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Parser turns front-page HTML into story entries.
type Parser struct {
	base *url.URL
}

// NewParser creates a parser that resolves relative story links against baseURL.
func NewParser(baseURL string) (*Parser, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parser base url %q: %w", baseURL, err)
	}

	if !base.IsAbs() {
		return nil, fmt.Errorf("parser base url %q: not absolute", baseURL)
	}

	return &Parser{base: base}, nil
}

// Parse extracts stories from front-page HTML in page order.
// Malformed rows are skipped; a malformed or empty page yields an empty
// slice, never an error.
func (p *Parser) Parse(body []byte) []Story {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	var stories []Story

	doc.Find("tr.athing").Each(func(_ int, row *goquery.Selection) {
		story, ok := p.parseRow(row)
		if !ok {
			return
		}

		stories = append(stories, story)
	})

	return stories
}

// parseRow extracts one story from an athing table row.
func (p *Parser) parseRow(row *goquery.Selection) (Story, bool) {
	idAttr, hasID := row.Attr("id")
	if !hasID {
		return Story{}, false
	}

	id, err := strconv.ParseInt(idAttr, 10, 64)
	if err != nil {
		return Story{}, false
	}

	anchor := row.Find(".titleline > a").First()
	if anchor.Length() == 0 {
		// Older markup used a storylink class on the anchor itself.
		anchor = row.Find("a.storylink").First()
	}

	href, hasHref := anchor.Attr("href")
	if !hasHref || href == "" {
		return Story{}, false
	}

	articleURL, ok := p.resolve(href)
	if !ok {
		return Story{}, false
	}

	return Story{
		ID:          id,
		Title:       strings.TrimSpace(anchor.Text()),
		URL:         articleURL,
		CommentsURL: p.CommentsURL(id),
	}, true
}

// CommentsURL returns the comment thread URL for a story ID.
func (p *Parser) CommentsURL(id int64) string {
	ref := &url.URL{Path: "item", RawQuery: "id=" + strconv.FormatInt(id, 10)}
	return p.base.ResolveReference(ref).String()
}

// resolve makes href absolute against the base URL. Self-hosted stories
// (Ask HN and the like) link relatively as "item?id=...".
func (p *Parser) resolve(href string) (string, bool) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	resolved := p.base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}

	return resolved.String(), true
}

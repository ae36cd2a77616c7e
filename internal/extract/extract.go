// Package extract pulls hyperlinks out of comment-thread HTML.
package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// commentBodySelector matches anchors inside HN comment bodies.
const commentBodySelector = ".commtext a[href]"

// CommentLinks returns the absolute http(s) URLs found in comment bodies,
// in document order, with duplicates collapsed to their first occurrence.
// Relative and malformed targets are dropped silently. Malformed input
// yields an empty result; the function performs no I/O.
func CommentLinks(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	anchors := doc.Find(commentBodySelector)
	if anchors.Length() == 0 {
		// A full page without comment bodies has nothing to extract.
		// Fragment input (a bare comment body) has no commtext wrapper
		// and no page structure, so all its anchors are comment links.
		if doc.Find("table").Length() > 0 {
			return nil
		}

		anchors = doc.Find("a[href]")
	}

	seen := make(map[string]struct{})

	var links []string

	anchors.Each(func(_ int, anchor *goquery.Selection) {
		href, ok := anchor.Attr("href")
		if !ok {
			return
		}

		link, valid := absoluteURL(href)
		if !valid {
			return
		}

		if _, dup := seen[link]; dup {
			return
		}

		seen[link] = struct{}{}
		links = append(links, link)
	})

	return links
}

// absoluteURL validates that href is a well-formed absolute http(s) URL.
func absoluteURL(href string) (string, bool) {
	parsed, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", false
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", false
	}

	if parsed.Host == "" {
		return "", false
	}

	return parsed.String(), true
}

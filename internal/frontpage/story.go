// Package frontpage fetches the aggregator front page and parses it into
// story entries.
package frontpage

// Story is one front-page entry with its associated comment thread.
type Story struct {
	// ID is the numeric identifier assigned by the site. It keys the
	// seen-registry and names the story's download directory.
	ID int64
	// Title is the story headline.
	Title string
	// URL is the story's article link, resolved to an absolute URL.
	URL string
	// CommentsURL is the story's comment thread page.
	CommentsURL string
}

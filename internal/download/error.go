package download

import "fmt"

// ErrorKind classifies download failures.
type ErrorKind string

const (
	// KindNetwork covers DNS, connection, and timeout failures.
	KindNetwork ErrorKind = "network"
	// KindStatus covers non-success HTTP responses.
	KindStatus ErrorKind = "status"
	// KindStorage covers filesystem write failures.
	KindStorage ErrorKind = "storage"
)

// Error is a failed download, carrying the URL and cause.
type Error struct {
	URL        string
	Kind       ErrorKind
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("download %s: HTTP %d for %s", e.Kind, e.StatusCode, e.URL)
	}

	return fmt.Sprintf("download %s: %s for %s", e.Kind, e.Cause, e.URL)
}

func (e *Error) Unwrap() error { return e.Cause }

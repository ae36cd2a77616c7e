package frontpage

import "fmt"

// ErrorType classifies front-page fetch failures for severity-aware logging.
type ErrorType string

const (
	ErrTypeRateLimited ErrorType = "rate_limited"
	ErrTypeNotFound    ErrorType = "not_found"
	ErrTypeUpstream    ErrorType = "upstream_failure"
	ErrTypeNetwork     ErrorType = "network"
	ErrTypeUnexpected  ErrorType = "unexpected"
)

// LogLevel determines whether a FetchError is logged at WARN or ERROR.
type LogLevel int

const (
	LevelWarn LogLevel = iota
	LevelError
)

// FetchError represents a classified front-page fetch failure.
type FetchError struct {
	Type       ErrorType
	Level      LogLevel
	StatusCode int
	URL        string
	Cause      error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("front page %s: HTTP %d for %s", e.Type, e.StatusCode, e.URL)
	}

	return fmt.Sprintf("front page %s: %s for %s", e.Type, e.Cause, e.URL)
}

func (e *FetchError) Unwrap() error { return e.Cause }

// HTTP status code boundaries for classification.
const (
	statusNotFound        = 404
	statusTooManyRequests = 429
	statusServerErrorLow  = 500
	statusServerErrorHigh = 599
)

// ClassifyHTTPStatus creates a FetchError from a non-success HTTP status code.
func ClassifyHTTPStatus(statusCode int, url string) *FetchError {
	cause := fmt.Errorf("HTTP %d", statusCode)

	switch {
	case statusCode == statusTooManyRequests:
		return &FetchError{Type: ErrTypeRateLimited, Level: LevelWarn, StatusCode: statusCode, URL: url, Cause: cause}
	case statusCode == statusNotFound:
		return &FetchError{Type: ErrTypeNotFound, Level: LevelWarn, StatusCode: statusCode, URL: url, Cause: cause}
	case statusCode >= statusServerErrorLow && statusCode <= statusServerErrorHigh:
		return &FetchError{Type: ErrTypeUpstream, Level: LevelWarn, StatusCode: statusCode, URL: url, Cause: cause}
	default:
		return &FetchError{Type: ErrTypeUnexpected, Level: LevelError, StatusCode: statusCode, URL: url, Cause: cause}
	}
}

// ClassifyNetworkError creates a FetchError for network-level failures
// (DNS, connection reset, timeout).
func ClassifyNetworkError(cause error, url string) *FetchError {
	return &FetchError{Type: ErrTypeNetwork, Level: LevelWarn, URL: url, Cause: cause}
}

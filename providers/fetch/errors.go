package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrRetryExhausted is returned by the retry middleware once every attempt has
// failed. It wraps the last error, so errors.As still finds the
// [*RetrievalError].
var ErrRetryExhausted = errors.New("ratescan: all retry attempts exhausted")

// RetrievalError reports a page that could not be retrieved. StatusCode is
// zero when no response was received.
type RetrievalError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *RetrievalError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status code: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// Retryable reports whether another attempt may succeed: 429 and 5xx
// responses, and transport failures other than cancellation.
func (e *RetrievalError) Retryable() bool {
	if e.StatusCode != 0 {
		return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
	}
	return e.Err != nil && !errors.Is(e.Err, context.Canceled) && !errors.Is(e.Err, errBodyTooLarge)
}

var errBodyTooLarge = errors.New("response body exceeds maximum size")

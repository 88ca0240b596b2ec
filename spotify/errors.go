package spotify

import (
	"errors"
	"fmt"
	"net/http"

	spotifyclient "github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
)

// ErrMissingInput marks a request the caller can fix (missing token, code or tracks).
var ErrMissingInput = errors.New("missing required input")

// UpstreamError is a failed call to a Spotify endpoint. Status is the HTTP
// status when Spotify answered, 0 for network failures.
type UpstreamError struct {
	Op     string
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("spotify %s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("spotify %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Unauthorized reports whether Spotify rejected the access token.
func (e *UpstreamError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

func (e *UpstreamError) RateLimited() bool {
	return e.Status == http.StatusTooManyRequests
}

func upstream(op string, err error) *UpstreamError {
	return &UpstreamError{Op: op, Status: statusOf(err), Err: err}
}

func statusOf(err error) int {
	var apiErr spotifyclient.Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	var apiErrPtr *spotifyclient.Error
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Status
	}
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		return retrieveErr.Response.StatusCode
	}
	return 0
}

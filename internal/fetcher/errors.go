package fetcher

import "errors"

// Error kinds returned by the upstream fetches
// Every error a Client returns wraps exactly one of these, so callers can
// branch with errors.Is while still printing the full message.
var (
	// ErrTransport means the request never produced a readable response
	ErrTransport = errors.New("transport failure")

	// ErrUnexpectedStatus means the upstream answered with a non-200 status
	ErrUnexpectedStatus = errors.New("unexpected status")

	// ErrLookupFailed means the upstream answered but flagged the lookup as failed
	ErrLookupFailed = errors.New("lookup failed")

	// ErrDecode means the response body was not the JSON we expected
	ErrDecode = errors.New("malformed response")
)

// IsUpstream reports whether err came from one of the upstream services
func IsUpstream(err error) bool {
	return errors.Is(err, ErrTransport) ||
		errors.Is(err, ErrUnexpectedStatus) ||
		errors.Is(err, ErrLookupFailed) ||
		errors.Is(err, ErrDecode)
}

package checklist

import "fmt"

// AuthError means the server rejected the request for lack of a valid
// session. Callers should send the user to the auth entry point instead of
// retrying.
type AuthError struct {
	StatusCode int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("not authenticated (HTTP %d)", e.StatusCode)
}

// TransportError covers everything else that can go wrong talking to the
// server: HTTP failures, network errors, and malformed bodies. It is surfaced
// to the user verbatim and never retried automatically.
type TransportError struct {
	StatusCode int    // zero when no HTTP response was received
	StatusText string // e.g. "Internal Server Error"
	Body       string // raw response body
	Err        error  // network or decode cause, when there is one
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 && e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("%d %s\n%s", e.StatusCode, e.StatusText, e.Body)
}

func (e *TransportError) Unwrap() error { return e.Err }

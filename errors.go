package ttsmaker

import "fmt"

// ValidationError reports a request parameter rejected before any network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("ttsmaker: invalid %s: %s", e.Field, e.Reason)
}

// ServiceError reports a request the service received but rejected or failed.
// StatusCode is the HTTP status of the response. Code is the service's own
// error code when the body carried one, zero otherwise.
type ServiceError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *ServiceError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("ttsmaker: service error %d (code %d): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("ttsmaker: service error %d: %s", e.StatusCode, e.Message)
}

// TransportError reports a network-level failure: the request never completed.
// Not retried internally; the caller decides whether to retry.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("ttsmaker: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IOError reports a local filesystem failure while persisting audio.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("ttsmaker: write %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

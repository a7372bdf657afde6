package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/oaiiae/addressbook/addressbook"
)

// ValidationError is returned before any network call when a record misses
// required fields.
type ValidationError = addressbook.ValidationError

var (
	// ErrNotFound is returned when the API answers 404, whatever the operation.
	ErrNotFound = errors.New("client: not found")

	// ErrConflict is returned by Create when a record with the same key already exists.
	ErrConflict = errors.New("client: already exists")
)

// TransportError wraps a network failure: the request never got a response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return "client: " + e.Op + ": " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError reports a malformed body on a nominally successful response.
type ProtocolError struct {
	Op     string
	Status int
	Err    error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("client: %s: invalid response body (status %d): %v", e.Op, e.Status, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// APIError reports any other non-2xx status.
type APIError struct {
	Op     string
	Status int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("client: %s: %d %s", e.Op, e.Status, http.StatusText(e.Status))
}

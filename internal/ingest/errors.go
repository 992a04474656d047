package ingest

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidSourceLocator indicates a malformed repository reference or
	// an inaccessible local path.
	ErrInvalidSourceLocator = errors.New("invalid source locator")

	// ErrRepositoryNotFound indicates the remote listing returned not-found
	// or forbidden.
	ErrRepositoryNotFound = errors.New("repository not found or access denied")

	// ErrAuthenticationRequired indicates the remote listing returned
	// unauthorized.
	ErrAuthenticationRequired = errors.New("authentication required")
)

// TransportError is any other non-success listing response.
type TransportError struct {
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("remote fetch failed with status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("remote fetch failed with status %d", e.Status)
}

func (e *TransportError) Unwrap() error { return e.Err }

// classifyListingStatus maps a failed tree-listing response to the ingestion
// error taxonomy. A zero status means no response was received.
func classifyListingStatus(status int, cause error) error {
	switch status {
	case http.StatusNotFound, http.StatusForbidden:
		return fmt.Errorf("%w: %v", ErrRepositoryNotFound, cause)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %v", ErrAuthenticationRequired, cause)
	default:
		return &TransportError{Status: status, Err: cause}
	}
}

package domain

import (
	"errors"
	"fmt"
)

// Configuration errors: fatal to the request, never retried, surfaced
// with a remediation message.
var (
	// ErrMissingAPIKey means no upstream credential was configured.
	ErrMissingAPIKey = errors.New("upstream API key is not configured; set a valid key to enable this catalog")

	// ErrInvalidAPIKey means the upstream rejected the credential (401).
	ErrInvalidAPIKey = errors.New("upstream API key is invalid or expired; generate a new key and update the configuration")

	// ErrMissingSession means a personal catalog was requested without
	// an account session.
	ErrMissingSession = errors.New("this catalog requires an account session; sign in again to refresh it")

	// ErrMissingListAPIKey means no list provider credential was
	// configured for a curated-list catalog.
	ErrMissingListAPIKey = errors.New("list provider API key is not configured; set a valid key to enable list catalogs")

	// ErrInvalidListAPIKey means the list provider rejected the
	// credential.
	ErrInvalidListAPIKey = errors.New("list provider API key is invalid; generate a new key and update the configuration")

	// ErrUnknownSource means the request named a catalog source this
	// service does not serve.
	ErrUnknownSource = errors.New("unknown catalog source")
)

// IsConfigError reports whether err is a non-retryable configuration
// error rather than a transient upstream failure.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrMissingAPIKey) ||
		errors.Is(err, ErrInvalidAPIKey) ||
		errors.Is(err, ErrMissingSession) ||
		errors.Is(err, ErrMissingListAPIKey) ||
		errors.Is(err, ErrInvalidListAPIKey)
}

// StatusError is a transient upstream failure carrying the HTTP status
// and the server's message (which may embed a retry-delay hint).
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream returned status %d", e.Status)
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.Status, e.Message)
}

// StatusCode returns the HTTP status the upstream responded with.
func (e *StatusError) StatusCode() int {
	return e.Status
}

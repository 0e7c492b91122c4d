package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrEmptyURL      = errors.New("empty URL")
	ErrNoContent     = errors.New("no content extracted")
	ErrEmptyResponse = errors.New("empty response body")
	ErrNoRecipients  = errors.New("no recipients configured")
	ErrNotFound      = errors.New("document not found")
)

// ProviderError wraps failures from external collaborators (crawl targets,
// LLM providers, translation APIs). RateLimited marks the one failure class
// that gets an automatic wait-and-retry in the ingestion pipeline.
type ProviderError struct {
	Provider    string
	StatusCode  int
	Err         error
	RateLimited bool
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %s error (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("provider %s error: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsRateLimit reports whether err carries a rate-limit ProviderError.
func IsRateLimit(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.RateLimited
}

// StoreError wraps document store failures.
type StoreError struct {
	Op  string
	URL string
	Err error
}

func (e *StoreError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("store %s failed for %s: %v", e.Op, e.URL, e.Err)
	}
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// DeliveryError wraps mail delivery failures for a single recipient.
type DeliveryError struct {
	Recipient string
	Attempts  int
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery to %s failed after %d attempt(s): %v", e.Recipient, e.Attempts, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

package services

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingInput marks requests that name no job source or no resume source.
	ErrMissingInput = errors.New("missing input")
	// ErrEmptyCompletion is returned when the provider answers with no text at all.
	ErrEmptyCompletion = errors.New("empty response from completion provider")
)

// MissingInputError names the field group the caller has to supply.
type MissingInputError struct {
	Field   string
	Message string
}

func (e *MissingInputError) Error() string {
	return e.Message
}

func (e *MissingInputError) Unwrap() error {
	return ErrMissingInput
}

// HTTPStatusError is a non-2xx response from a document source.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("Failed to fetch URL (%d)", e.StatusCode)
}

// ProviderCallError wraps any failure of the completion call itself.
type ProviderCallError struct {
	Provider string
	Timeout  bool
	Err      error
}

func (e *ProviderCallError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s completion timed out: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s completion failed: %v", e.Provider, e.Err)
}

func (e *ProviderCallError) Unwrap() error {
	return e.Err
}

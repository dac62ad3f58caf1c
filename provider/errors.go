package provider

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAllProvidersExhausted signals that every provider in a chain failed
	// or returned an empty result.
	ErrAllProvidersExhausted = errors.New("all providers exhausted")
	// ErrEmptyResult marks a provider response carrying no usable data. The
	// chain advances past it without putting the provider on cooldown.
	ErrEmptyResult = errors.New("empty result")
	// ErrUnknownCapability is returned for capabilities with no registered
	// chain.
	ErrUnknownCapability = errors.New("unknown capability")
)

// AttemptError records the terminal error of one provider in a failed chain
// invocation.
type AttemptError struct {
	Provider string
	Err      error
}

// Error implements the error interface.
func (e *AttemptError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

// Unwrap exposes the provider's underlying error.
func (e *AttemptError) Unwrap() error { return e.Err }

// ExhaustedError reports that a chain ran out of providers. It unwraps to
// ErrAllProvidersExhausted and to every per-provider attempt error, so both
// errors.Is(err, ErrAllProvidersExhausted) and inspection of individual
// causes work.
type ExhaustedError struct {
	Capability string
	Attempts   []*AttemptError
}

// Error implements the error interface.
func (e *ExhaustedError) Error() string {
	msgs := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		msgs[i] = a.Error()
	}
	return fmt.Sprintf("capability %s: all providers exhausted: %s", e.Capability, strings.Join(msgs, "; "))
}

// Unwrap exposes the sentinel and the attempt errors.
func (e *ExhaustedError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts)+1)
	errs = append(errs, ErrAllProvidersExhausted)
	for _, a := range e.Attempts {
		errs = append(errs, a)
	}
	return errs
}

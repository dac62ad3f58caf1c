package core

import (
	"errors"
	"fmt"
)

// ConfigError marks an invalid run configuration detected before any agent
// work starts. Runs fail fast with a ConfigError instead of degrading.
type ConfigError struct {
	Reason string
}

// NewConfigError builds a ConfigError from a format string.
func NewConfigError(format string, args ...any) *ConfigError {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "invalid run configuration: " + e.Reason
}

// TransientError wraps an error that is worth retrying, such as a rate limit
// or an upstream 5xx. Retry policies use IsTransient as their default
// predicate.
type TransientError struct {
	Err error
}

// Transient marks err as retryable. A nil err returns nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// Error implements the error interface.
func (e *TransientError) Error() string { return e.Err.Error() }

// Unwrap exposes the underlying error to errors.Is and errors.As.
func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err carries a TransientError anywhere in its
// chain.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// FailureKind classifies why an agent invocation contributed nothing to the
// run. Kinds are recorded in the run.failures accumulator.
type FailureKind string

const (
	// FailureError covers plain errors returned by Run.
	FailureError FailureKind = "error"
	// FailureTimeout covers invocations cut off by the per-agent timeout.
	FailureTimeout FailureKind = "timeout"
	// FailurePanic covers invocations that panicked; the orchestrator
	// contains the panic and records it here.
	FailurePanic FailureKind = "panic"
	// FailureUndeclaredWrite covers results carrying fields outside the
	// agent's Writes declaration. The whole result is discarded.
	FailureUndeclaredWrite FailureKind = "undeclared_write"
	// FailureUnsatisfiedReads covers agents that could not be placed in any
	// tier of a round because a field they read was never produced.
	FailureUnsatisfiedReads FailureKind = "unsatisfied_reads"
)

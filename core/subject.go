package core

import (
	"fmt"
	"strings"
)

// Subject identifies the company a run investigates. It is immutable once a
// run starts; agents receive it read-only through RunContext.
type Subject struct {
	// Name is the company's primary name as supplied by the caller.
	Name string `json:"name"`
	// Domain optionally carries the company's website domain to disambiguate
	// similarly named companies.
	Domain string `json:"domain,omitempty"`
	// Hints are free-form caller-supplied research hints, such as ticker
	// symbols, jurisdictions or known aliases.
	Hints map[string]string `json:"hints,omitempty"`
}

// Validate reports whether the subject carries the minimum information a run
// requires.
func (s Subject) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return NewConfigError("subject name must not be empty")
	}
	return nil
}

// Hint returns the named hint or the empty string when absent.
func (s Subject) Hint(key string) string {
	return s.Hints[key]
}

// String renders the subject for logs.
func (s Subject) String() string {
	if s.Domain != "" {
		return fmt.Sprintf("%s (%s)", s.Name, s.Domain)
	}
	return s.Name
}

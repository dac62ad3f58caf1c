package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/hupe1980/researchmesh/orchestrator"
)

// WriterOptions configures a Writer sink.
type WriterOptions struct {
	// Indent is the indentation string for pretty-printed output. Empty
	// produces compact single-line documents.
	Indent string
}

// Writer streams outcomes as JSON documents to an io.Writer, one document per
// run. Writes are serialized, so a single Writer can back concurrent runs
// sharing one stream (stdout, a log file, a pipe).
type Writer struct {
	mu   sync.Mutex
	w    io.Writer
	opts WriterOptions
}

// NewWriter returns a sink that encodes outcomes to w.
func NewWriter(w io.Writer, optFns ...func(o *WriterOptions)) *Writer {
	opts := WriterOptions{}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Writer{w: w, opts: opts}
}

var _ orchestrator.Sink = (*Writer)(nil)

// Deliver encodes the outcome and appends a trailing newline.
func (s *Writer) Deliver(_ context.Context, outcome orchestrator.Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	enc := json.NewEncoder(s.w)
	if s.opts.Indent != "" {
		enc.SetIndent("", s.opts.Indent)
	}
	if err := enc.Encode(outcome); err != nil {
		return fmt.Errorf("encode outcome: %w", err)
	}
	return nil
}

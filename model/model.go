package model

import (
	"context"
	"fmt"
	"sync"
)

// Request captures the normalized synthesis input produced by agents.
type Request struct {
	System      string  `json:"system,omitempty"` // Instructions framing of the task
	Prompt      string  `json:"prompt"`           // The research material to synthesize
	Temperature float64 `json:"temperature,omitempty"`
}

// Usage captures token usage and estimated spend for one generation.
type Usage struct {
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
	Cost         float64 `json:"cost"` // USD estimate; zero when no pricing is configured
}

// Response is the completed output of one generation.
type Response struct {
	Text         string `json:"text"`
	FinishReason string `json:"finish_reason"` // "stop", "length", etc.
	Usage        Usage  `json:"usage"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Model is the minimal interface agents use to drive synthesis.
type Model interface {
	Generate(ctx context.Context, req Request) (Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// Pricing converts token usage into an estimated spend. Rates are USD per
// one thousand tokens; a zero Pricing estimates zero cost.
type Pricing struct {
	InputPer1K  float64
	OutputPer1K float64
}

// Estimate returns the spend for the given token counts.
func (p Pricing) Estimate(inputTokens, outputTokens int64) float64 {
	return float64(inputTokens)/1000*p.InputPer1K + float64(outputTokens)/1000*p.OutputPer1K
}

// MockModel is a lightweight in‑memory Model useful for tests & examples.
// It is safe for concurrent use.
type MockModel struct {
	mu        sync.Mutex
	info      Info
	responses map[string]string
	err       error
	calls     int
	requests  []Request
}

// NewMockModel constructs a MockModel identifying itself with the given name.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: provider},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// SetError makes every subsequent Generate call fail with err. Passing nil
// restores normal behavior.
func (m *MockModel) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// CallCount returns how many times Generate has been invoked.
func (m *MockModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Requests returns a copy of every request seen so far.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}

// Generate implements Model; it replays the canned completion for the prompt
// or echoes the prompt when none is registered.
func (m *MockModel) Generate(ctx context.Context, req Request) (Response, error) {
	m.mu.Lock()
	m.calls++
	m.requests = append(m.requests, req)
	err := m.err
	text, ok := m.responses[req.Prompt]
	m.mu.Unlock()

	if err != nil {
		return Response{}, err
	}
	if cerr := ctx.Err(); cerr != nil {
		return Response{}, cerr
	}
	if !ok {
		text = fmt.Sprintf("Mock response to: %s", req.Prompt)
	}
	return Response{
		Text:         text,
		FinishReason: "stop",
		Usage: Usage{
			InputTokens:  int64(len(req.System)+len(req.Prompt)) / 4,
			OutputTokens: int64(len(text)) / 4,
		},
	}, nil
}

// Info implements Model interface.
func (m *MockModel) Info() Info {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.info
}

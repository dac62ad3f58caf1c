package core

// Report is the quality gate's verdict over shared state after a round. The
// orchestrator uses Terminal to decide whether to stop and Gaps to select
// gap-fill agents for the next round.
type Report struct {
	// Score is the gate's coverage score in [0, 1].
	Score float64 `json:"score"`
	// Gaps lists required fields that are still missing and addressable.
	Gaps []string `json:"gaps,omitempty"`
	// Terminal reports whether the run may stop.
	Terminal bool `json:"terminal"`
	// Incomplete is set when the run stopped without satisfying the gate,
	// for example because the iteration budget or run deadline was exhausted.
	Incomplete bool `json:"incomplete,omitempty"`
	// Round is the 1-based round the report was produced after.
	Round int `json:"round"`
}

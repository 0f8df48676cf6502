package agent

import (
	"github.com/rahul/sutra/internal/tools"
)

// Status is the terminal state of one plan step. Every step ends in exactly
// one of these.
type Status string

const (
	StatusCompleted         Status = "completed"
	StatusFallbackCompleted Status = "fallback_completed"
	StatusFailed            Status = "failed"
)

// StepOutcome records the result of attempting one plan step. It is created
// once and never mutated afterward.
type StepOutcome struct {
	StepNumber      int          `json:"step_number"`
	StepDescription string       `json:"step_description"`
	Tool            string       `json:"tool,omitempty"`
	Parameters      tools.Params `json:"parameters,omitempty"`
	Result          any          `json:"result,omitempty"`
	Status          Status       `json:"status"`
	Error           string       `json:"error,omitempty"`
}

// Counters tracks run-level artifact counts. Values only ever grow.
type Counters struct {
	ToolCalls      int `json:"tool_calls"`
	WebSources     int `json:"web_sources"`
	GeneratedFiles int `json:"generated_files"`
}

// RunInput describes one task execution request.
type RunInput struct {
	TaskDescription string
	// Plan overrides generation when non-empty.
	Plan []string
	// Owner identifies who the run belongs to (chat id, "cli", ...).
	Owner          string
	MemoryEnabled  bool
	StoreArtifacts bool
	OutputDir      string
}

// NewRunInput returns a RunInput with the default flags (memory and
// artifact storage on).
func NewRunInput(taskDescription string) RunInput {
	return RunInput{
		TaskDescription: taskDescription,
		MemoryEnabled:   true,
		StoreArtifacts:  true,
	}
}

// RunMetadata is the full record of a finished run.
type RunMetadata struct {
	RunID    string            `json:"run_id"`
	Plan     []string          `json:"plan"`
	Outcomes []StepOutcome     `json:"outcomes"`
	Counters Counters          `json:"counters"`
	Memory   map[string]string `json:"memory"`
}

// RunOutput is the terminal object returned to the caller. A run always
// produces one; no error escapes the orchestrator boundary.
type RunOutput struct {
	Success  bool         `json:"success"`
	Result   string       `json:"result"`
	Error    string       `json:"error,omitempty"`
	Metadata *RunMetadata `json:"metadata,omitempty"`
}

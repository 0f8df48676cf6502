package agent

import (
	"context"
	"regexp"
	"strings"

	"github.com/rahul/sutra/internal/errors"
	"github.com/rahul/sutra/internal/llm"
)

var (
	stepMarkerPattern = regexp.MustCompile(`^(?:\d+\.|-|\*)\s+.+$`)
	headerPattern     = regexp.MustCompile(`^#+\s+`)
	bulletPattern     = regexp.MustCompile(`^[-*+]\s+`)
)

// Planner turns a task description into an ordered list of step descriptions
// using a single model completion.
type Planner struct {
	LLM     llm.Generator
	Prompts *PromptManager
}

func NewPlanner(generator llm.Generator, prompts *PromptManager) *Planner {
	return &Planner{LLM: generator, Prompts: prompts}
}

// GeneratePlan asks the model for a numbered plan and parses it into steps.
// Parsing is best-effort and never fails on its own; the only error case is
// the completion backend failing.
func (p *Planner) GeneratePlan(ctx context.Context, taskDescription string) ([]string, error) {
	prompt := p.Prompts.Render("planner", map[string]string{"task": taskDescription})

	response := p.LLM.GenerateText(ctx, prompt, "")
	if llm.IsErrorReply(response) {
		return nil, errors.LLM("plan generation failed: %s", response)
	}

	return ParsePlanSteps(response), nil
}

// ParsePlanSteps splits a model response into plan steps. A line opens a new
// step when it starts with "<n>.", "-", "*", "Step " or "STAGE " (the last
// two case-insensitive); following lines accumulate into the open step. When
// no line matches any marker, every non-blank line becomes its own step.
func ParsePlanSteps(response string) []string {
	var steps []string
	var current string
	inStep := false

	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if isStepMarker(line) {
			if inStep && current != "" {
				steps = append(steps, strings.TrimSpace(current))
			}
			current = line
			inStep = true
		} else if inStep {
			current += "\n" + line
		}
	}
	if inStep && current != "" {
		steps = append(steps, strings.TrimSpace(current))
	}

	// No markers at all: treat every non-blank line as a step.
	if len(steps) == 0 && strings.TrimSpace(response) != "" {
		for _, line := range strings.Split(response, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				steps = append(steps, line)
			}
		}
	}

	for i, step := range steps {
		steps[i] = SanitizeStep(step)
	}
	return steps
}

func isStepMarker(line string) bool {
	if stepMarkerPattern.MatchString(line) {
		return true
	}
	upper := strings.ToUpper(line)
	return strings.HasPrefix(upper, "STEP ") || strings.HasPrefix(upper, "STAGE ")
}

// SanitizeStep strips leading markdown headers and bullet markers, repeating
// until none remain. It is idempotent: sanitizing an already-sanitized step
// returns it unchanged.
func SanitizeStep(step string) string {
	for {
		next := headerPattern.ReplaceAllString(step, "")
		next = bulletPattern.ReplaceAllString(next, "")
		if next == step {
			return step
		}
		step = next
	}
}

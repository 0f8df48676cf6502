package agent

import (
	"context"
	"reflect"
	"testing"
)

func TestParsePlanSteps_NumberedList(t *testing.T) {
	response := `Here is the plan:
1. Research the topic
2. Analyze the findings
3. Write the report`

	steps := ParsePlanSteps(response)
	expected := []string{
		"1. Research the topic",
		"2. Analyze the findings",
		"3. Write the report",
	}
	if !reflect.DeepEqual(steps, expected) {
		t.Errorf("Expected %v, got %v", expected, steps)
	}
}

func TestParsePlanSteps_MultiLineSteps(t *testing.T) {
	response := `1. Research the topic
using at least three sources
2. Write the report`

	steps := ParsePlanSteps(response)
	if len(steps) != 2 {
		t.Fatalf("Expected 2 steps, got %d: %v", len(steps), steps)
	}
	if steps[0] != "1. Research the topic\nusing at least three sources" {
		t.Errorf("Continuation line not accumulated: %q", steps[0])
	}
}

func TestParsePlanSteps_StepAndStageMarkers(t *testing.T) {
	response := `Step 1: gather data
step 2: clean data
STAGE 3: publish`

	steps := ParsePlanSteps(response)
	if len(steps) != 3 {
		t.Fatalf("Expected 3 steps, got %d: %v", len(steps), steps)
	}
}

func TestParsePlanSteps_NoMarkersFallsBackToLines(t *testing.T) {
	response := `gather data
clean data
publish`

	steps := ParsePlanSteps(response)
	if len(steps) != 3 {
		t.Fatalf("Expected every non-blank line as a step, got %d: %v", len(steps), steps)
	}
	if steps[0] != "gather data" {
		t.Errorf("Unexpected first step: %q", steps[0])
	}
}

func TestParsePlanSteps_Empty(t *testing.T) {
	if steps := ParsePlanSteps("   \n\n  "); len(steps) != 0 {
		t.Errorf("Expected no steps for blank input, got %v", steps)
	}
}

func TestSanitizeStep(t *testing.T) {
	cases := map[string]string{
		"## Research the topic": "Research the topic",
		"- Research the topic":  "Research the topic",
		"* - ## nested markers": "nested markers",
		"plain step":            "plain step",
	}
	for input, expected := range cases {
		if got := SanitizeStep(input); got != expected {
			t.Errorf("SanitizeStep(%q) = %q, want %q", input, got, expected)
		}
	}
}

func TestSanitizeStep_Idempotent(t *testing.T) {
	once := SanitizeStep("- - hello")
	twice := SanitizeStep(once)
	if once != twice {
		t.Errorf("SanitizeStep is not idempotent: %q vs %q", once, twice)
	}
}

func TestPlanner_GeneratePlan_LLMError(t *testing.T) {
	planner := NewPlanner(&fakeLLM{planReply: "Error: provider unavailable"}, NewPromptManager(""))
	_, err := planner.GeneratePlan(context.Background(), "write a report")
	if err == nil {
		t.Fatal("Expected error when the model reply is an error string")
	}
}

func TestPlanner_GeneratePlan(t *testing.T) {
	planner := NewPlanner(&fakeLLM{planReply: "1. first\n2. second"}, NewPromptManager(""))
	steps, err := planner.GeneratePlan(context.Background(), "write a report")
	if err != nil {
		t.Fatal(err)
	}
	if len(steps) != 2 {
		t.Fatalf("Expected 2 steps, got %v", steps)
	}
}

package agent

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/rahul/sutra/internal/errors"
	"github.com/rahul/sutra/internal/governance"
	"github.com/rahul/sutra/internal/tools"
)

func threeStepPlan() []string {
	return []string{
		"Research the history of Go",
		"Write a summary document",
		"List the workspace contents",
	}
}

func TestExecuteTask_AllStepsComplete(t *testing.T) {
	research := &fakeTool{
		name: "research",
		kind: tools.KindResearch,
		execute: func(ctx context.Context, params tools.Params) (tools.Result, error) {
			return tools.Result{
				"content": "Go was announced in 2009.",
				"sources": []tools.Source{
					{Title: "Go blog", URL: "https://go.dev/blog"},
					{Title: "Wikipedia", URL: "https://en.wikipedia.org/wiki/Go"},
				},
				"summary": "Found the announcement date.",
			}, nil
		},
	}
	markdown := &fakeTool{
		name: "markdown_generator",
		kind: tools.KindGenerator,
		execute: func(ctx context.Context, params tools.Params) (tools.Result, error) {
			return tools.Result{
				"content":  params["content"],
				"filepath": "/tmp/doc.md",
				"summary":  "Wrote the document.",
			}, nil
		},
	}
	shell := &fakeTool{name: "shell", kind: tools.KindUtility}

	registry := tools.NewRegistry()
	registry.Register(research)
	registry.Register(markdown)
	registry.Register(shell)

	model := &fakeLLM{
		selections: []string{
			"research: query=go history",
			"markdown_generator: content=Go summary",
			"shell: command=ls",
		},
		summaryReply: "Listed the workspace.",
		runSummary:   "All three steps finished.",
	}

	orch := newTestOrchestrator(model, registry)
	input := NewRunInput("summarize the history of Go")
	input.Plan = threeStepPlan()
	input.StoreArtifacts = false

	output := orch.ExecuteTask(context.Background(), input)

	if !output.Success {
		t.Fatalf("Expected success, got error: %s", output.Error)
	}
	if output.Result != "All three steps finished." {
		t.Errorf("Unexpected result: %q", output.Result)
	}
	if output.Metadata == nil {
		t.Fatal("Expected metadata")
	}
	if len(output.Metadata.Outcomes) != 3 {
		t.Fatalf("Expected 3 outcomes, got %d", len(output.Metadata.Outcomes))
	}
	for _, outcome := range output.Metadata.Outcomes {
		if outcome.Status != StatusCompleted {
			t.Errorf("Step %d: expected completed, got %s (%s)", outcome.StepNumber, outcome.Status, outcome.Error)
		}
	}

	counters := output.Metadata.Counters
	if counters.ToolCalls != 3 {
		t.Errorf("Expected 3 tool calls, got %d", counters.ToolCalls)
	}
	// One for the research call plus one extra source beyond the first.
	if counters.WebSources != 2 {
		t.Errorf("Expected 2 web sources, got %d", counters.WebSources)
	}
	if counters.GeneratedFiles != 1 {
		t.Errorf("Expected 1 generated file, got %d", counters.GeneratedFiles)
	}

	memory := output.Metadata.Memory
	expectKeys := []string{
		"step_1_content", "step_1_sources", "step_1_summary",
		"step_2_content", "step_2_filepath", "step_2_summary",
		"step_3_content", "step_3_summary",
	}
	for _, key := range expectKeys {
		if _, ok := memory[key]; !ok {
			t.Errorf("Missing memory key %s", key)
		}
	}
	if memory["step_1_sources"] != "Go blog, Wikipedia" {
		t.Errorf("Unexpected sources entry: %q", memory["step_1_sources"])
	}
	if memory["step_3_summary"] != "Listed the workspace." {
		t.Errorf("Expected model summary for a result without one, got %q", memory["step_3_summary"])
	}
}

func TestExecuteTask_ComposesContentForGeneratorStep(t *testing.T) {
	research := &fakeTool{
		name: "research",
		kind: tools.KindResearch,
		execute: func(ctx context.Context, params tools.Params) (tools.Result, error) {
			return tools.Result{
				"content": "Qubits are two-state quantum systems.",
				"summary": "Quantum computing uses qubits.",
			}, nil
		},
	}
	markdown := &fakeTool{
		name: "markdown_generator",
		kind: tools.KindGenerator,
		execute: func(ctx context.Context, params tools.Params) (tools.Result, error) {
			return tools.Result{"content": params["content"], "filepath": "/tmp/doc.md"}, nil
		},
	}
	registry := tools.NewRegistry()
	registry.Register(research)
	registry.Register(markdown)

	// Bare selections: every parameter must come from synthesis.
	model := &fakeLLM{
		selections:   []string{"research:", "markdown_generator:"},
		summaryReply: "Done.",
		runSummary:   "Done.",
	}

	orch := newTestOrchestrator(model, registry)
	input := NewRunInput("explain quantum computing")
	input.Plan = []string{
		"Research quantum computing",
		"Write a summary document",
	}
	input.StoreArtifacts = false

	output := orch.ExecuteTask(context.Background(), input)

	for _, outcome := range output.Metadata.Outcomes {
		if outcome.Status != StatusCompleted {
			t.Fatalf("Step %d: expected completed, got %s (%s)", outcome.StepNumber, outcome.Status, outcome.Error)
		}
	}
	if got := research.lastCall()["query"]; got != "Research quantum computing" {
		t.Errorf("Expected the step as query, got %q", got)
	}

	content := markdown.lastCall()["content"]
	if !strings.Contains(content, "explain quantum computing") {
		t.Errorf("Composed content missing the task: %q", content)
	}
	if !strings.Contains(content, "Step 2/2: Write a summary document") {
		t.Errorf("Composed content missing the step position line: %q", content)
	}
	if !strings.Contains(content, "step_1_summary: Quantum computing uses qubits.") {
		t.Errorf("Composed content missing the earlier step's digest entry: %q", content)
	}
	if !strings.Contains(content, "step_1_content: Qubits are two-state quantum systems.") {
		t.Errorf("Composed content missing the earlier step's content entry: %q", content)
	}
}

func TestExecuteTask_FailedStepFallsBack(t *testing.T) {
	failing := &fakeTool{
		name: "research",
		kind: tools.KindResearch,
		execute: func(ctx context.Context, params tools.Params) (tools.Result, error) {
			return nil, errors.Tool("connection refused")
		},
	}
	shell := &fakeTool{name: "shell", kind: tools.KindUtility}

	registry := tools.NewRegistry()
	registry.Register(failing)
	registry.Register(shell)

	model := &fakeLLM{
		selections: []string{
			"shell: command=date",
			"research: query=go history",
			"shell: command=ls",
		},
		fallbackReply: "Based on general knowledge, Go appeared in 2009.",
		summaryReply:  "Done.",
		runSummary:    "Finished with one degraded step.",
	}

	orch := newTestOrchestrator(model, registry)
	input := NewRunInput("research task")
	input.Plan = threeStepPlan()
	input.StoreArtifacts = false

	output := orch.ExecuteTask(context.Background(), input)

	if !output.Success {
		t.Fatalf("A degraded step must not fail the run: %s", output.Error)
	}
	outcomes := output.Metadata.Outcomes
	if len(outcomes) != 3 {
		t.Fatalf("Expected 3 outcomes, got %d", len(outcomes))
	}
	if outcomes[1].Status != StatusFallbackCompleted {
		t.Fatalf("Expected fallback_completed, got %s", outcomes[1].Status)
	}
	if outcomes[1].Error == "" {
		t.Error("Fallback outcome should keep the original error")
	}
	if outcomes[1].Result != "Based on general knowledge, Go appeared in 2009." {
		t.Errorf("Unexpected fallback result: %v", outcomes[1].Result)
	}
	// Step 3 still ran after the failure.
	if outcomes[2].Status != StatusCompleted {
		t.Errorf("Expected step 3 to complete, got %s", outcomes[2].Status)
	}
	if shell.callCount() != 2 {
		t.Errorf("Expected shell called for steps 1 and 3, got %d calls", shell.callCount())
	}

	memory := output.Metadata.Memory
	if _, ok := memory["step_2_fallback"]; !ok {
		t.Error("Expected a fallback memory entry for step 2")
	}
	if _, ok := memory["step_2_content"]; ok {
		t.Error("A failed invocation must not record step content")
	}
}

func TestExecuteTask_FallbackAlsoFails(t *testing.T) {
	failing := &fakeTool{
		name: "shell",
		kind: tools.KindUtility,
		execute: func(ctx context.Context, params tools.Params) (tools.Result, error) {
			return nil, errors.Tool("exec format error")
		},
	}
	registry := tools.NewRegistry()
	registry.Register(failing)

	model := &fakeLLM{
		selections:    []string{"shell: command=run"},
		fallbackReply: "Error: model unavailable",
		runSummary:    "One step failed outright.",
	}

	orch := newTestOrchestrator(model, registry)
	input := NewRunInput("run something")
	input.Plan = []string{"Run the thing"}
	input.StoreArtifacts = false

	output := orch.ExecuteTask(context.Background(), input)

	if !output.Success {
		t.Fatal("A failed step must still produce a successful run output")
	}
	outcome := output.Metadata.Outcomes[0]
	if outcome.Status != StatusFailed {
		t.Fatalf("Expected failed, got %s", outcome.Status)
	}
	if !strings.Contains(outcome.Error, "exec format error") {
		t.Errorf("Missing original error: %q", outcome.Error)
	}
	if !strings.Contains(outcome.Error, "model unavailable") {
		t.Errorf("Missing fallback error: %q", outcome.Error)
	}
}

func TestExecuteTask_MalformedSelectionFallsBack(t *testing.T) {
	shell := &fakeTool{name: "shell", kind: tools.KindUtility}
	registry := tools.NewRegistry()
	registry.Register(shell)

	model := &fakeLLM{
		selections:    []string{"I would just use the shell for this"},
		fallbackReply: "Handled without a tool.",
		runSummary:    "Done.",
	}

	orch := newTestOrchestrator(model, registry)
	input := NewRunInput("do the thing")
	input.Plan = []string{"Do the thing"}
	input.StoreArtifacts = false

	output := orch.ExecuteTask(context.Background(), input)

	if output.Metadata.Outcomes[0].Status != StatusFallbackCompleted {
		t.Errorf("Expected fallback_completed, got %s", output.Metadata.Outcomes[0].Status)
	}
	if shell.callCount() != 0 {
		t.Error("No tool should run for a malformed selection")
	}
}

func TestExecuteTask_DeterministicContentFallback(t *testing.T) {
	markdown := &fakeTool{
		name: "markdown_generator",
		kind: tools.KindGenerator,
		execute: func(ctx context.Context, params tools.Params) (tools.Result, error) {
			return tools.Result{"content": params["content"], "filepath": "/tmp/out.md"}, nil
		},
	}
	registry := tools.NewRegistry()
	registry.Register(markdown)

	model := &fakeLLM{
		// task= present, so no content is composed; content synthesis then
		// hits the failing completion.
		selections:   []string{"markdown_generator: task=write it up"},
		contentReply: "Error: quota exceeded",
		summaryReply: "Done.",
		runSummary:   "Done.",
	}

	orch := newTestOrchestrator(model, registry)
	input := NewRunInput("quarterly report")
	input.Plan = []string{"Write the report"}
	input.StoreArtifacts = false

	output := orch.ExecuteTask(context.Background(), input)

	if output.Metadata.Outcomes[0].Status != StatusCompleted {
		t.Fatalf("Expected completed, got %s", output.Metadata.Outcomes[0].Status)
	}
	got := markdown.lastCall()["content"]
	want := "Markdown document for: quarterly report\n\nStep: Write the report"
	if got != want {
		t.Errorf("Expected deterministic content %q, got %q", want, got)
	}
}

func TestExecuteTask_ResearchQueryInjection(t *testing.T) {
	research := &fakeTool{name: "research", kind: tools.KindResearch}
	registry := tools.NewRegistry()
	registry.Register(research)

	model := &fakeLLM{
		selections:   []string{"research:"},
		summaryReply: "Done.",
		runSummary:   "Done.",
	}

	orch := newTestOrchestrator(model, registry)
	input := NewRunInput("find facts")
	input.Plan = []string{"Find recent Go release notes"}
	input.StoreArtifacts = false

	orch.ExecuteTask(context.Background(), input)

	if got := research.lastCall()["query"]; got != "Find recent Go release notes" {
		t.Errorf("Expected the step as query, got %q", got)
	}
}

func TestExecuteTask_PolicyDenyRoutesToFallback(t *testing.T) {
	shell := &fakeTool{name: "shell", kind: tools.KindUtility}
	registry := tools.NewRegistry()
	registry.Register(shell)

	policy := governance.NewDefaultPolicyEngine()
	policy.DenyTool("shell")

	model := &fakeLLM{
		selections:    []string{"shell: command=rm -rf /"},
		fallbackReply: "Refusing to run that, here is an explanation instead.",
		runSummary:    "Done.",
	}

	orch := newTestOrchestrator(model, registry)
	orch.Policy = policy
	input := NewRunInput("cleanup")
	input.Plan = []string{"Clean the disk"}
	input.StoreArtifacts = false

	output := orch.ExecuteTask(context.Background(), input)

	if output.Metadata.Outcomes[0].Status != StatusFallbackCompleted {
		t.Errorf("Expected fallback_completed, got %s", output.Metadata.Outcomes[0].Status)
	}
	if shell.callCount() != 0 {
		t.Error("Denied tool must not execute")
	}
	if output.Metadata.Counters.ToolCalls != 0 {
		t.Errorf("Denied call should not count, got %d", output.Metadata.Counters.ToolCalls)
	}
}

func TestExecuteTask_PlanGenerationFailureUsesDefault(t *testing.T) {
	shell := &fakeTool{name: "shell", kind: tools.KindUtility}
	registry := tools.NewRegistry()
	registry.Register(shell)

	model := &fakeLLM{
		planReply: "Error: provider unavailable",
		selections: []string{
			"shell: command=one",
			"shell: command=two",
			"shell: command=three",
		},
		summaryReply: "Done.",
		runSummary:   "Done.",
	}

	orch := newTestOrchestrator(model, registry)
	input := NewRunInput("do something")
	input.StoreArtifacts = false

	output := orch.ExecuteTask(context.Background(), input)

	if !reflect.DeepEqual(output.Metadata.Plan, defaultPlan) {
		t.Errorf("Expected the default plan, got %v", output.Metadata.Plan)
	}
	if len(output.Metadata.Outcomes) != len(defaultPlan) {
		t.Errorf("Expected %d outcomes, got %d", len(defaultPlan), len(output.Metadata.Outcomes))
	}
}

func TestExecuteTask_NoToolsDegradesToFallback(t *testing.T) {
	model := &fakeLLM{
		selections:    []string{"research: query=x"},
		fallbackReply: "Answered from model knowledge alone.",
		runSummary:    "Done without tools.",
	}

	orch := newTestOrchestrator(model, tools.NewRegistry())
	input := NewRunInput("answer a question")
	input.Plan = []string{"Answer the question"}
	input.StoreArtifacts = false

	output := orch.ExecuteTask(context.Background(), input)

	if !output.Success {
		t.Fatalf("Zero tools must degrade, not abort: %s", output.Error)
	}
	if output.Metadata.Outcomes[0].Status != StatusFallbackCompleted {
		t.Errorf("Expected fallback_completed, got %s", output.Metadata.Outcomes[0].Status)
	}
}

func TestExecuteTask_MemoryDisabled(t *testing.T) {
	shell := &fakeTool{name: "shell", kind: tools.KindUtility}
	registry := tools.NewRegistry()
	registry.Register(shell)

	model := &fakeLLM{
		selections:   []string{"shell: command=ls"},
		summaryReply: "Done.",
		runSummary:   "Done.",
	}

	orch := newTestOrchestrator(model, registry)
	input := NewRunInput("list files")
	input.Plan = []string{"List the files"}
	input.MemoryEnabled = false
	input.StoreArtifacts = false

	output := orch.ExecuteTask(context.Background(), input)

	if len(output.Metadata.Memory) != 0 {
		t.Errorf("Expected empty memory, got %v", output.Metadata.Memory)
	}
}

func TestExecuteTask_OutcomeCountMatchesPlan(t *testing.T) {
	// Regardless of how individual steps end, one outcome per step.
	flaky := &fakeTool{
		name: "shell",
		kind: tools.KindUtility,
		execute: func() func(ctx context.Context, params tools.Params) (tools.Result, error) {
			n := 0
			return func(ctx context.Context, params tools.Params) (tools.Result, error) {
				n++
				if n%2 == 0 {
					return nil, errors.Tool("intermittent failure %d", n)
				}
				return tools.Result{"content": fmt.Sprintf("ok %d", n)}, nil
			}
		}(),
	}
	registry := tools.NewRegistry()
	registry.Register(flaky)

	plan := make([]string, 5)
	selections := make([]string, 5)
	for i := range plan {
		plan[i] = fmt.Sprintf("Run command %d", i+1)
		selections[i] = "shell: command=step"
	}

	model := &fakeLLM{
		selections:    selections,
		fallbackReply: "degraded",
		summaryReply:  "Done.",
		runSummary:    "Done.",
	}

	orch := newTestOrchestrator(model, registry)
	input := NewRunInput("many steps")
	input.Plan = plan
	input.StoreArtifacts = false

	output := orch.ExecuteTask(context.Background(), input)

	if len(output.Metadata.Outcomes) != len(plan) {
		t.Fatalf("Expected %d outcomes, got %d", len(plan), len(output.Metadata.Outcomes))
	}
	for i, outcome := range output.Metadata.Outcomes {
		if outcome.StepNumber != i+1 {
			t.Errorf("Outcome %d has step number %d", i, outcome.StepNumber)
		}
	}
}

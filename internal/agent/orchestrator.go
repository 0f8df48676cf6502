package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/rahul/sutra/internal/errors"
	"github.com/rahul/sutra/internal/governance"
	"github.com/rahul/sutra/internal/llm"
	"github.com/rahul/sutra/internal/observability"
	"github.com/rahul/sutra/internal/tools"
)

const (
	// Ledger digest thresholds for the two prompt-building contexts.
	selectionDigestLimit = 500
	paramDigestLimit     = 1000
	// How much of a stringified tool result feeds the summary completion.
	summaryInputLimit = 1000
)

// defaultPlan is used when no plan was supplied and generation failed.
var defaultPlan = []string{
	"Research and gather information about the task",
	"Process and analyze the information",
	"Generate the requested output",
}

// ArtifactRecorder persists references to files generated during a run.
type ArtifactRecorder interface {
	AddArtifact(runID string, tool string, filepath string) error
}

// Orchestrator walks a plan step by step: it asks the model which tool to
// use, repairs the selection, synthesizes missing parameters, invokes the
// tool and records the outcome. A failing step degrades to a text-only
// fallback; it never aborts the run.
type Orchestrator struct {
	LLM      llm.Generator
	Registry *tools.Registry
	Prompts  *PromptManager
	Logger   *observability.Logger
	Planner  *Planner
	Resolver *Resolver

	// Optional collaborators.
	Policy    governance.PolicyEngine
	Artifacts ArtifactRecorder
}

func NewOrchestrator(generator llm.Generator, registry *tools.Registry, prompts *PromptManager, logger *observability.Logger) *Orchestrator {
	return &Orchestrator{
		LLM:      generator,
		Registry: registry,
		Prompts:  prompts,
		Logger:   logger,
		Planner:  NewPlanner(generator, prompts),
		Resolver: NewResolver(registry, DefaultToolName),
	}
}

// runState is the mutable state of one run. Each run owns its own instance;
// nothing here is shared across runs.
type runState struct {
	id        string
	task      string
	plan      []string
	planText  string
	ledger    *Ledger
	counters  Counters
	memory    bool
	artifacts bool
	outputDir string
}

// ExecuteTask runs one task end to end and always returns a RunOutput; no
// error or panic escapes this boundary.
func (o *Orchestrator) ExecuteTask(ctx context.Context, input RunInput) (output RunOutput) {
	runID := uuid.NewString()
	defer func() {
		if r := recover(); r != nil {
			output = RunOutput{Success: false, Error: fmt.Sprintf("run aborted: %v", r)}
		}
		observability.SetStatus(observability.PhaseIdle, "")
	}()

	if input.Owner != "" {
		ctx = tools.WithOwner(ctx, input.Owner)
	}
	task := input.TaskDescription

	observability.SetStatus(observability.PhasePlanning, task)
	plan := input.Plan
	if len(plan) == 0 {
		generated, err := o.Planner.GeneratePlan(ctx, task)
		if err != nil || len(generated) == 0 {
			log.Printf("plan generation failed (%v), using default plan", err)
			generated = append([]string(nil), defaultPlan...)
		}
		plan = generated
	}
	o.Logger.LogPlan(runID, plan)

	run := &runState{
		id:        runID,
		task:      task,
		plan:      plan,
		planText:  formatPlan(plan),
		ledger:    NewLedger(),
		memory:    input.MemoryEnabled,
		artifacts: input.StoreArtifacts,
		outputDir: input.OutputDir,
	}
	if run.outputDir != "" && run.artifacts {
		if err := os.MkdirAll(run.outputDir, 0755); err != nil {
			log.Printf("failed to create artifact directory %s: %v", run.outputDir, err)
			run.outputDir = ""
		}
	}

	observability.SetStatus(observability.PhaseExecuting, task)
	outcomes := make([]StepOutcome, 0, len(plan)+1)
	for idx := range plan {
		outcomes = append(outcomes, o.executeStep(ctx, run, idx))
	}

	observability.SetStatus(observability.PhaseAggregating, task)
	summary := o.summarizeRun(ctx, run)
	if extra, ok := o.maybeGenerateReport(ctx, run, summary, outcomes); ok {
		outcomes = append(outcomes, extra)
	}
	o.Logger.LogSummary(run.id, run.counters)

	memory := map[string]string{}
	if run.memory {
		memory = run.ledger.Snapshot()
	}
	return RunOutput{
		Success: true,
		Result:  summary,
		Metadata: &RunMetadata{
			RunID:    run.id,
			Plan:     plan,
			Outcomes: outcomes,
			Counters: run.counters,
			Memory:   memory,
		},
	}
}

// executeStep drives one step through the select/resolve/synthesize/invoke
// pipeline and, on any failure, through the text-only fallback. It always
// returns exactly one outcome.
func (o *Orchestrator) executeStep(ctx context.Context, run *runState, idx int) StepOutcome {
	stepNum := idx + 1
	step := run.plan[idx]
	total := len(run.plan)

	observability.PrintStepProgress(stepNum, total, "Executing: "+firstLine(step))

	toolName, params, result, err := o.attemptStep(ctx, run, stepNum, step)
	if err == nil {
		o.recordStep(ctx, run, stepNum, toolName, result)
		o.Logger.LogStep(run.id, stepNum, string(StatusCompleted), toolName)
		observability.PrintStepProgress(stepNum, total, "✓ Completed")
		return StepOutcome{
			StepNumber:      stepNum,
			StepDescription: step,
			Tool:            toolName,
			Parameters:      params,
			Result:          result,
			Status:          StatusCompleted,
		}
	}

	stepErr := fmt.Sprintf("error executing step %d: %v", stepNum, err)
	o.Logger.LogFallback(run.id, stepNum, stepErr)
	observability.PrintStepProgress(stepNum, total, "✗ Failed: "+stepErr)

	prompt := o.Prompts.Render("fallback", map[string]string{
		"task":        run.task,
		"step_number": strconv.Itoa(stepNum),
		"step":        step,
		"memory":      o.memoryContext(run, "Context from previous steps:", selectionDigestLimit),
		"error":       err.Error(),
	})
	reply := o.LLM.GenerateText(ctx, prompt, "")
	o.Logger.LogLLM(run.id, prompt, reply)

	if !llm.IsErrorReply(reply) {
		if run.memory {
			run.ledger.Set(StepKey(stepNum, "fallback"), reply)
		}
		o.Logger.LogStep(run.id, stepNum, string(StatusFallbackCompleted), toolName)
		observability.PrintStepProgress(stepNum, total, "⚠ Completed with fallback")
		return StepOutcome{
			StepNumber:      stepNum,
			StepDescription: step,
			Tool:            toolName,
			Parameters:      params,
			Result:          reply,
			Status:          StatusFallbackCompleted,
			Error:           stepErr,
		}
	}

	o.Logger.LogStep(run.id, stepNum, string(StatusFailed), toolName)
	return StepOutcome{
		StepNumber:      stepNum,
		StepDescription: step,
		Tool:            toolName,
		Parameters:      params,
		Status:          StatusFailed,
		Error:           stepErr + "\nFallback also failed: " + reply,
	}
}

// attemptStep runs the happy path: tool selection, resolution, parameter
// synthesis, policy check and invocation. Any error routes the step to the
// fallback path.
func (o *Orchestrator) attemptStep(ctx context.Context, run *runState, stepNum int, step string) (string, tools.Params, tools.Result, error) {
	prompt := o.Prompts.Render("tool_selection", map[string]string{
		"task":              run.task,
		"plan":              run.planText,
		"step_number":       strconv.Itoa(stepNum),
		"step":              step,
		"memory":            o.memoryContext(run, "CONTEXT FROM PREVIOUS STEPS:", selectionDigestLimit),
		"tools":             strings.Join(o.Registry.Names(), ", "),
		"tool_descriptions": strings.Join(o.Registry.Describe(), "\n"),
	})
	reply := o.LLM.GenerateText(ctx, prompt, "")
	o.Logger.LogLLM(run.id, prompt, reply)
	if llm.IsErrorReply(reply) {
		return "", nil, nil, errors.LLM("tool selection failed: %s", reply)
	}

	selection, err := ParseToolSelection(reply)
	if err != nil {
		return "", nil, nil, err
	}

	toolName, err := o.Resolver.Resolve(selection.Tool)
	if err != nil {
		return "", nil, nil, err
	}
	tool := o.Registry.Get(toolName)

	params := selection.Params
	o.synthesizeParams(ctx, run, stepNum, step, tool, params)

	if o.Policy != nil {
		verdict, perr := o.Policy.Evaluate(ctx, governance.Request{Tool: toolName, Params: params, RunID: run.id})
		if perr != nil {
			return toolName, params, nil, errors.Wrap(errors.KindTool, perr, "policy evaluation failed")
		}
		if verdict.Effect == governance.EffectDeny {
			return toolName, params, nil, errors.Tool("policy denied tool %s: %s", toolName, verdict.Reason)
		}
	}

	o.Logger.LogToolCall(run.id, stepNum, toolName, params)
	run.counters.ToolCalls++
	switch tool.Kind() {
	case tools.KindResearch:
		run.counters.WebSources++
	case tools.KindGenerator:
		run.counters.GeneratedFiles++
	}

	result, err := tool.Execute(ctx, params)
	o.Logger.LogToolResult(run.id, stepNum, toolName, err)
	if err != nil {
		return toolName, params, nil, err
	}

	// Result-driven counter adjustments: the first source was already
	// counted with the call itself.
	if n := len(result.Sources()); n > 1 {
		run.counters.WebSources += n - 1
	}
	if fp := result.Str("filepath"); fp != "" {
		if tool.Kind() != tools.KindGenerator {
			run.counters.GeneratedFiles++
		}
		observability.PrintStepProgress(stepNum, len(run.plan), "Generated file: "+fp)
		if o.Artifacts != nil && run.artifacts {
			if aerr := o.Artifacts.AddArtifact(run.id, toolName, fp); aerr != nil {
				log.Printf("failed to record artifact %s: %v", fp, aerr)
			}
		}
	}

	return toolName, params, result, nil
}

// synthesizeParams fills in the parameters the model left out so the tool
// call never fails for a missing required argument.
func (o *Orchestrator) synthesizeParams(ctx context.Context, run *runState, stepNum int, step string, tool tools.Tool, params tools.Params) {
	_, hasTask := params["task"]
	_, hasQuery := params["query"]
	_, hasContent := params["content"]
	if !hasTask && !hasQuery && !hasContent {
		if tool.Kind() == tools.KindResearch {
			// Research tools get the step itself as the query.
			params["query"] = step
		} else {
			composed := fmt.Sprintf("%s\n\nStep %d/%d: %s", run.task, stepNum, len(run.plan), step)
			if run.memory && run.ledger.Len() > 0 {
				composed += "\n\nContext from previous steps:\n" + run.ledger.Render(paramDigestLimit)
			}
			params["content"] = composed
		}
	}

	if tool.Kind() == tools.KindGenerator {
		if run.outputDir != "" && run.artifacts && params["output_path"] == "" {
			filename := fmt.Sprintf("step_%d_output%s", stepNum, generatorExtension(tool.Name()))
			params["output_path"] = filepath.Join(run.outputDir, filename)
		}

		if params["content"] == "" {
			contentType := generatorContentType(tool.Name())
			prompt := o.Prompts.Render("content", map[string]string{
				"content_type": contentType,
				"task":         run.task,
				"step":         step,
			})
			generated := o.LLM.GenerateText(ctx, prompt, "")
			if llm.IsErrorReply(generated) {
				// Deterministic last resort; the call must not go out
				// without its required parameter.
				params["content"] = fmt.Sprintf("%s for: %s\n\nStep: %s", capitalize(contentType), run.task, step)
			} else {
				params["content"] = generated
			}
		}
	}
}

// recordStep writes the step's artifacts into the ledger.
func (o *Orchestrator) recordStep(ctx context.Context, run *runState, stepNum int, toolName string, result tools.Result) {
	if !run.memory {
		return
	}

	if content := result.Str("content"); content != "" {
		run.ledger.Set(StepKey(stepNum, "content"), content)
	}
	if titles := result.SourceTitles(); len(titles) > 0 {
		run.ledger.Set(StepKey(stepNum, "sources"), strings.Join(titles, ", "))
	}
	if fp := result.Str("filepath"); fp != "" {
		run.ledger.Set(StepKey(stepNum, "filepath"), fp)
	}

	summary := result.Str("summary")
	if summary == "" {
		summary = o.summarizeResult(ctx, run, result)
	}
	run.ledger.Set(StepKey(stepNum, "summary"), summary)
}

// summarizeResult asks the model for a short summary of a tool result,
// feeding it at most summaryInputLimit characters.
func (o *Orchestrator) summarizeResult(ctx context.Context, run *runState, result tools.Result) string {
	text := stringifyResult(result)
	if len(text) > summaryInputLimit {
		text = text[:summaryInputLimit]
	}
	prompt := o.Prompts.Render("step_summary", map[string]string{"result": text})
	reply := o.LLM.GenerateText(ctx, prompt, "")
	if llm.IsErrorReply(reply) {
		return "Step completed successfully."
	}
	return reply
}

// memoryContext renders the bounded ledger digest under a heading, or ""
// when memory is off or empty.
func (o *Orchestrator) memoryContext(run *runState, heading string, limit int) string {
	if !run.memory || run.ledger.Len() == 0 {
		return ""
	}
	return heading + "\n" + run.ledger.Render(limit)
}

func formatPlan(plan []string) string {
	var sb strings.Builder
	for i, step := range plan {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, step)
	}
	return sb.String()
}

func stringifyResult(result tools.Result) string {
	if content := result.Str("content"); content != "" {
		return content
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprintf("%v", result)
	}
	return string(data)
}

func generatorExtension(toolName string) string {
	switch toolName {
	case "markdown_generator":
		return ".md"
	case "code_generator":
		return ".py" // default language; the tool may override
	default:
		return ".txt"
	}
}

func generatorContentType(toolName string) string {
	switch toolName {
	case "code_generator":
		return "code"
	case "markdown_generator":
		return "markdown document"
	default:
		return "document"
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

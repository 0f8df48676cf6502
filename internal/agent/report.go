package agent

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/rahul/sutra/internal/llm"
	"github.com/rahul/sutra/internal/tools"
)

// reportMinContent is the shortest model-produced report body we accept
// before substituting the templated one.
const reportMinContent = 50

const reportToolName = "markdown_generator"

// summarizeRun produces the final natural-language summary for a run. A
// model failure degrades to a counter-based summary rather than an error.
func (o *Orchestrator) summarizeRun(ctx context.Context, run *runState) string {
	prompt := o.Prompts.Render("run_summary", map[string]string{
		"task":            run.task,
		"plan":            run.planText,
		"memory":          o.stepSummaryContext(run),
		"total_steps":     fmt.Sprintf("%d", len(run.plan)),
		"tool_calls":      fmt.Sprintf("%d", run.counters.ToolCalls),
		"web_sources":     fmt.Sprintf("%d", run.counters.WebSources),
		"generated_files": fmt.Sprintf("%d", run.counters.GeneratedFiles),
	})
	reply := o.LLM.GenerateText(ctx, prompt, "")
	o.Logger.LogLLM(run.id, prompt, reply)
	if llm.IsErrorReply(reply) {
		return fmt.Sprintf(
			"Task completed: %s\n\nExecuted %d steps with %d tool calls, consulting %d web sources and generating %d files.",
			run.task, len(run.plan), run.counters.ToolCalls, run.counters.WebSources, run.counters.GeneratedFiles,
		)
	}
	return reply
}

// stepSummaryContext collects the per-step summaries in order, unbounded.
func (o *Orchestrator) stepSummaryContext(run *runState) string {
	if !run.memory {
		return ""
	}
	var sb strings.Builder
	for i := 1; i <= len(run.plan); i++ {
		if summary, ok := run.ledger.Get(StepKey(i, "summary")); ok {
			fmt.Fprintf(&sb, "Step %d: %s\n", i, summary)
		} else if fallback, ok := run.ledger.Get(StepKey(i, "fallback")); ok {
			fmt.Fprintf(&sb, "Step %d (fallback): %s\n", i, fallback)
		}
	}
	if sb.Len() == 0 {
		return ""
	}
	return "CONTEXT FROM EXECUTION:\n" + sb.String()
}

// maybeGenerateReport writes a consolidated markdown report when the run
// looks like it warrants one. It returns an extra outcome describing the
// report generation, or ok=false when no report was produced.
func (o *Orchestrator) maybeGenerateReport(ctx context.Context, run *runState, summary string, outcomes []StepOutcome) (StepOutcome, bool) {
	if !run.artifacts || !run.memory {
		return StepOutcome{}, false
	}
	reportTool := o.Registry.Get(reportToolName)
	if reportTool == nil {
		return StepOutcome{}, false
	}

	check := o.LLM.GenerateText(ctx, o.Prompts.Render("report_check", map[string]string{
		"task": run.task,
	}), "")
	if !strings.Contains(strings.ToUpper(check), "YES") {
		return StepOutcome{}, false
	}

	content := o.LLM.GenerateText(ctx, o.Prompts.Render("report_content", map[string]string{
		"task":    run.task,
		"summary": summary,
		"memory":  o.stepSummaryContext(run),
	}), "")
	if llm.IsErrorReply(content) || len(strings.TrimSpace(content)) < reportMinContent {
		content = o.templatedReport(run, summary, outcomes)
	}

	outputPath := filepath.Join(orDefault(run.outputDir, "."), "final_report.md")
	params := tools.Params{"content": content, "output_path": outputPath}
	result, err := reportTool.Execute(ctx, params)
	if err != nil {
		log.Printf("final report generation failed: %v", err)
		return StepOutcome{}, false
	}

	run.counters.GeneratedFiles++
	if fp := result.Str("filepath"); fp != "" && o.Artifacts != nil {
		if aerr := o.Artifacts.AddArtifact(run.id, reportToolName, fp); aerr != nil {
			log.Printf("failed to record artifact %s: %v", fp, aerr)
		}
	}

	return StepOutcome{
		StepNumber:      len(run.plan) + 1,
		StepDescription: "Generate final report",
		Tool:            reportToolName,
		Parameters:      tools.Params{"output_path": outputPath},
		Result:          result,
		Status:          StatusCompleted,
	}, true
}

// templatedReport builds a deterministic report from run state when the
// model could not produce a usable one.
func (o *Orchestrator) templatedReport(run *runState, summary string, outcomes []StepOutcome) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Final Report: %s\n\n", run.task)
	sb.WriteString("## Summary\n\n")
	sb.WriteString(summary)
	sb.WriteString("\n\n## Execution Details\n\n")
	fmt.Fprintf(&sb, "- Steps executed: %d\n", len(run.plan))
	fmt.Fprintf(&sb, "- Tool calls: %d\n", run.counters.ToolCalls)
	fmt.Fprintf(&sb, "- Web sources consulted: %d\n", run.counters.WebSources)
	fmt.Fprintf(&sb, "- Files generated: %d\n", run.counters.GeneratedFiles)

	var files []string
	for _, outcome := range outcomes {
		if result, ok := outcome.Result.(tools.Result); ok {
			if fp := result.Str("filepath"); fp != "" {
				files = append(files, fp)
			}
		}
	}
	if len(files) > 0 {
		sb.WriteString("\n## Generated Files\n\n")
		for _, fp := range files {
			fmt.Fprintf(&sb, "- %s\n", fp)
		}
	}
	return sb.String()
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

package agent

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/rahul/sutra/internal/llm"
	"github.com/rahul/sutra/internal/observability"
	"github.com/rahul/sutra/internal/tools"
)

// fakeLLM routes prompts to canned replies by recognizing marker phrases
// from the built-in templates. Tool selections are consumed in order, one
// per selection prompt.
type fakeLLM struct {
	mu sync.Mutex

	planReply     string
	selections    []string
	fallbackReply string
	summaryReply  string
	runSummary    string
	contentReply  string
	reportCheck   string
	reportContent string

	prompts []string
}

func (f *fakeLLM) GenerateText(ctx context.Context, prompt, systemPrompt string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)

	switch {
	case strings.Contains(prompt, "task planning expert"):
		return f.planReply
	case strings.Contains(prompt, "Choose the most appropriate tool"):
		if len(f.selections) == 0 {
			return "Error: no scripted selection"
		}
		next := f.selections[0]
		f.selections = f.selections[1:]
		return next
	case strings.Contains(prompt, "the tool execution failed"):
		return f.fallbackReply
	case strings.Contains(prompt, "brief summary"):
		return f.summaryReply
	case strings.Contains(prompt, "Summarize the results"):
		return f.runSummary
	case strings.Contains(prompt, "should a final report"):
		return f.reportCheck
	case strings.Contains(prompt, "final report on this task"):
		return f.reportContent
	case strings.Contains(prompt, "Generate appropriate"):
		return f.contentReply
	}
	return "Error: unrecognized prompt"
}

func (f *fakeLLM) GenerateFromMessages(ctx context.Context, messages []llm.Message) string {
	return "Error: not supported"
}

// fakeTool is a scriptable tool that records the parameters it receives.
type fakeTool struct {
	name    string
	kind    tools.Kind
	execute func(ctx context.Context, params tools.Params) (tools.Result, error)

	mu    sync.Mutex
	calls []tools.Params
}

func (f *fakeTool) Name() string               { return f.name }
func (f *fakeTool) Description() string        { return "fake " + f.name }
func (f *fakeTool) Kind() tools.Kind           { return f.kind }
func (f *fakeTool) Parameters() map[string]any { return map[string]any{"type": "object"} }

func (f *fakeTool) Execute(ctx context.Context, params tools.Params) (tools.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, params)
	f.mu.Unlock()
	if f.execute != nil {
		return f.execute(ctx, params)
	}
	return tools.Result{"status": "success", "content": "ok"}, nil
}

func (f *fakeTool) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeTool) lastCall() tools.Params {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1]
}

// newTestOrchestrator wires an orchestrator around fakes with no policy and
// no artifact store. The logger writes its transcript under the temp dir so
// tests leave no files behind in the package directory.
func newTestOrchestrator(model llm.Generator, registry *tools.Registry) *Orchestrator {
	return NewOrchestrator(model, registry, NewPromptManager(""), observability.NewLoggerAt(os.TempDir()))
}

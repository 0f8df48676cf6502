package tools

import (
	"context"
	"strings"

	"github.com/tmc/langchaingo/tools/duckduckgo"

	"github.com/rahul/sutra/internal/errors"
)

// ResearchTool searches the web through DuckDuckGo and returns the combined
// result text plus a best-effort list of sources.
type ResearchTool struct {
	client *duckduckgo.Tool
}

func NewResearchTool() (*ResearchTool, error) {
	ddg, err := duckduckgo.New(10, duckduckgo.DefaultUserAgent)
	if err != nil {
		return nil, err
	}
	return &ResearchTool{client: ddg}, nil
}

func (t *ResearchTool) Name() string {
	return "research"
}

func (t *ResearchTool) Description() string {
	return "Search the web for real-time information on a topic. Returns result text and the sources it came from."
}

func (t *ResearchTool) Kind() Kind {
	return KindResearch
}

func (t *ResearchTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "The search query to look up",
			},
		},
		"required": []string{"query"},
	}
}

func (t *ResearchTool) Execute(ctx context.Context, params Params) (Result, error) {
	query := firstParam(params, "query", "task", "content")
	if query == "" {
		return nil, errors.Validation("research: missing required parameter 'query'")
	}

	text, err := t.client.Call(ctx, query)
	if err != nil {
		return nil, errors.Wrap(errors.KindTool, err, "research: search failed")
	}

	return Result{
		"status":  "success",
		"content": text,
		"sources": parseSearchSources(text),
	}, nil
}

// parseSearchSources pulls source titles out of the formatted search output.
// The format is not guaranteed, so an empty list is an acceptable answer.
func parseSearchSources(text string) []Source {
	var sources []Source
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if title, ok := strings.CutPrefix(line, "Title: "); ok && title != "" {
			sources = append(sources, Source{Title: title})
		}
	}
	return sources
}

// firstParam returns the first non-empty value among the given keys.
func firstParam(params Params, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(params[k]); v != "" {
			return v
		}
	}
	return ""
}

package tools

import (
	"context"
)

// Kind groups tools by how the orchestrator feeds and counts them.
type Kind string

const (
	// KindResearch tools take a query and return content plus sources.
	KindResearch Kind = "research"
	// KindGenerator tools take content and produce a file on disk.
	KindGenerator Kind = "generator"
	// KindUtility covers everything else (shell, filesystem, scheduling).
	KindUtility Kind = "utility"
)

// Params carries the key=value arguments parsed from a tool selection line.
type Params map[string]string

// Result is the tool-specific payload of a successful invocation. Well-known
// keys consumed by the orchestrator: "content", "sources", "filepath",
// "summary", "status".
type Result map[string]any

// Str returns a string field of the result, or "" when absent.
func (r Result) Str(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

// Sources returns the "sources" list of the result, if it has one.
func (r Result) Sources() []Source {
	if v, ok := r["sources"].([]Source); ok {
		return v
	}
	return nil
}

// SourceTitles returns the titles of the "sources" list.
func (r Result) SourceTitles() []string {
	src := r.Sources()
	titles := make([]string, 0, len(src))
	for _, s := range src {
		titles = append(titles, s.Title)
	}
	return titles
}

// Source is one reference returned by a research tool.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Tool defines the interface for all agent capabilities.
type Tool interface {
	Name() string
	Description() string
	Kind() Kind
	Parameters() map[string]any // JSON Schema for the tool's inputs
	Execute(ctx context.Context, params Params) (Result, error)
}

// Registry manages the set of available tools. Registration order is kept
// so that name resolution walks tools deterministically.
type Registry struct {
	tools map[string]Tool
	order []string
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

func (r *Registry) Register(t Tool) {
	if _, exists := r.tools[t.Name()]; !exists {
		r.order = append(r.order, t.Name())
	}
	r.tools[t.Name()] = t
}

func (r *Registry) Get(name string) Tool {
	return r.tools[name]
}

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) Len() int {
	return len(r.order)
}

// Describe renders "name: description" lines for prompt building.
func (r *Registry) Describe() []string {
	lines := make([]string, 0, len(r.order))
	for _, name := range r.order {
		lines = append(lines, name+": "+r.tools[name].Description())
	}
	return lines
}

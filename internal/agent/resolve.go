package agent

import (
	"strings"

	"github.com/rahul/sutra/internal/errors"
	"github.com/rahul/sutra/internal/tools"
)

// DefaultToolName is the general-purpose tool the resolver falls back to
// when a requested name matches nothing.
const DefaultToolName = "browser"

// resolutionStrategy proposes a registered tool name for a requested one, or
// returns false when the strategy has no answer.
type resolutionStrategy func(requested string, activated []string) (string, bool)

// Resolver maps a model-proposed tool name onto a registered tool using a
// ranked list of strategies, tried in order.
type Resolver struct {
	Registry    *tools.Registry
	DefaultTool string
	strategies  []resolutionStrategy
}

func NewResolver(registry *tools.Registry, defaultTool string) *Resolver {
	if defaultTool == "" {
		defaultTool = DefaultToolName
	}
	r := &Resolver{Registry: registry, DefaultTool: defaultTool}
	r.strategies = []resolutionStrategy{
		exactMatch,
		substringMatch,
		r.defaultToolMatch,
		firstActivated,
	}
	return r
}

// Resolve returns the registered tool name for requested, trying each
// strategy in rank order. It fails only when no tools are registered at all.
func (r *Resolver) Resolve(requested string) (string, error) {
	requested = strings.ToLower(strings.TrimSpace(requested))
	activated := r.Registry.Names()

	for _, strategy := range r.strategies {
		if name, ok := strategy(requested, activated); ok {
			return name, nil
		}
	}
	return "", errors.Tool("no available tools to execute step")
}

func exactMatch(requested string, activated []string) (string, bool) {
	for _, name := range activated {
		if name == requested {
			return name, true
		}
	}
	return "", false
}

// substringMatch accepts the first activated tool whose name contains the
// requested name or is contained by it, in registration order.
func substringMatch(requested string, activated []string) (string, bool) {
	if requested == "" {
		return "", false
	}
	for _, name := range activated {
		if strings.Contains(name, requested) || strings.Contains(requested, name) {
			return name, true
		}
	}
	return "", false
}

func (r *Resolver) defaultToolMatch(_ string, activated []string) (string, bool) {
	for _, name := range activated {
		if name == r.DefaultTool {
			return name, true
		}
	}
	return "", false
}

func firstActivated(_ string, activated []string) (string, bool) {
	if len(activated) == 0 {
		return "", false
	}
	return activated[0], true
}

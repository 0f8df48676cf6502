package agent

import (
	"strings"

	"github.com/rahul/sutra/internal/errors"
	"github.com/rahul/sutra/internal/tools"
)

// ToolSelection is a parsed "TOOL_NAME: k1=v1, k2=v2" line.
type ToolSelection struct {
	Tool   string
	Params tools.Params
}

// ParseToolSelection parses the model's tool selection reply. A malformed
// reply (no "name: params" shape) yields a validation error; orchestrator
// callers route that into the fallback path rather than crashing.
func ParseToolSelection(raw string) (*ToolSelection, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), ":", 2)
	if len(parts) != 2 {
		return nil, errors.Validation("invalid tool selection format: %s", raw)
	}

	name := strings.ToLower(strings.TrimSpace(parts[0]))
	if name == "" {
		return nil, errors.Validation("invalid tool selection format: empty tool name")
	}

	params := tools.Params{}
	for _, pair := range splitTopLevel(parts[1], ',') {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if key != "" {
			params[key] = value
		}
	}

	return &ToolSelection{Tool: name, Params: params}, nil
}

// splitTopLevel splits s on sep, ignoring separators inside single or double
// quotes so quoted values may contain commas.
func splitTopLevel(s string, sep rune) []string {
	var parts []string
	var current strings.Builder
	var quote rune

	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
			current.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			current.WriteRune(r)
		case r == sep:
			parts = append(parts, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	parts = append(parts, current.String())
	return parts
}

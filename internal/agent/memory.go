package agent

import (
	"fmt"
	"strings"
)

// ElisionPlaceholder replaces oversized ledger values in rendered context.
const ElisionPlaceholder = "[Content available but not shown due to size]"

// Ledger is the append-only per-run memory. Keys follow the
// step_<n>_<kind> convention and are never overwritten; a second write to an
// existing key is dropped.
type Ledger struct {
	keys   []string
	values map[string]string
}

func NewLedger() *Ledger {
	return &Ledger{values: make(map[string]string)}
}

// StepKey builds a ledger key for a step number and entry kind.
func StepKey(step int, kind string) string {
	return fmt.Sprintf("step_%d_%s", step, kind)
}

// Set records a value under key. The first write wins.
func (l *Ledger) Set(key, value string) {
	if _, exists := l.values[key]; exists {
		return
	}
	l.keys = append(l.keys, key)
	l.values[key] = value
}

func (l *Ledger) Get(key string) (string, bool) {
	v, ok := l.values[key]
	return v, ok
}

func (l *Ledger) Len() int {
	return len(l.keys)
}

// Snapshot returns a copy of the ledger contents.
func (l *Ledger) Snapshot() map[string]string {
	out := make(map[string]string, len(l.values))
	for k, v := range l.values {
		out[k] = v
	}
	return out
}

// Render produces a bounded context digest: one "- key: value" line per
// entry in insertion order, substituting the elision placeholder for any
// value whose length is at or above limit. This is the backpressure that
// keeps prompts from growing with the run.
func (l *Ledger) Render(limit int) string {
	if len(l.keys) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, key := range l.keys {
		value := l.values[key]
		if len(value) < limit {
			fmt.Fprintf(&sb, "- %s: %s\n", key, value)
		} else {
			fmt.Fprintf(&sb, "- %s: %s\n", key, ElisionPlaceholder)
		}
	}
	return sb.String()
}

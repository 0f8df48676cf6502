package agent

import (
	"strings"
	"testing"
)

func TestLedger_FirstWriteWins(t *testing.T) {
	l := NewLedger()
	l.Set("step_1_content", "original")
	l.Set("step_1_content", "overwrite attempt")

	v, ok := l.Get("step_1_content")
	if !ok {
		t.Fatal("Expected key to exist")
	}
	if v != "original" {
		t.Errorf("Expected first write to win, got %q", v)
	}
	if l.Len() != 1 {
		t.Errorf("Expected 1 entry, got %d", l.Len())
	}
}

func TestLedger_RenderKeepsInsertionOrder(t *testing.T) {
	l := NewLedger()
	l.Set("step_1_content", "alpha")
	l.Set("step_1_summary", "beta")
	l.Set("step_2_content", "gamma")

	rendered := l.Render(100)
	iAlpha := strings.Index(rendered, "alpha")
	iBeta := strings.Index(rendered, "beta")
	iGamma := strings.Index(rendered, "gamma")
	if iAlpha < 0 || iBeta < 0 || iGamma < 0 {
		t.Fatalf("Missing entries in render: %q", rendered)
	}
	if !(iAlpha < iBeta && iBeta < iGamma) {
		t.Errorf("Entries out of insertion order: %q", rendered)
	}
}

func TestLedger_RenderElidesAtLimit(t *testing.T) {
	l := NewLedger()
	l.Set("short", strings.Repeat("a", 499))
	l.Set("exact", strings.Repeat("b", 500))
	l.Set("long", strings.Repeat("c", 501))

	rendered := l.Render(500)
	if !strings.Contains(rendered, strings.Repeat("a", 499)) {
		t.Error("Value below the limit should be included verbatim")
	}
	if strings.Contains(rendered, strings.Repeat("b", 500)) {
		t.Error("Value at the limit should be elided")
	}
	if strings.Count(rendered, ElisionPlaceholder) != 2 {
		t.Errorf("Expected 2 elisions, got %d", strings.Count(rendered, ElisionPlaceholder))
	}
	// The key still appears even when the value is elided.
	if !strings.Contains(rendered, "- exact: ") {
		t.Errorf("Elided entry lost its key: %q", rendered)
	}
}

func TestLedger_RenderEmpty(t *testing.T) {
	if got := NewLedger().Render(500); got != "" {
		t.Errorf("Expected empty render, got %q", got)
	}
}

func TestLedger_SnapshotIsACopy(t *testing.T) {
	l := NewLedger()
	l.Set("step_1_content", "value")

	snap := l.Snapshot()
	snap["step_1_content"] = "mutated"

	if v, _ := l.Get("step_1_content"); v != "value" {
		t.Errorf("Snapshot mutation leaked into the ledger: %q", v)
	}
}

func TestStepKey(t *testing.T) {
	if got := StepKey(3, "fallback"); got != "step_3_fallback" {
		t.Errorf("Unexpected key: %q", got)
	}
}

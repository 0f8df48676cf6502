package observability

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// captureStdout runs fn and returns everything it printed.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w
	fn()
	w.Close()
	os.Stdout = orig

	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestLogger_LogHeartbeat(t *testing.T) {
	logger := NewLoggerAt(t.TempDir())

	out := captureStdout(t, func() { logger.LogHeartbeat() })

	var evt Event
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &evt); err != nil {
		t.Fatalf("Heartbeat output is not a JSON event: %v (%q)", err, out)
	}
	if evt.Type != EventTypeHeartbeat {
		t.Errorf("Expected heartbeat event, got %s", evt.Type)
	}
	if evt.Timestamp.IsZero() {
		t.Error("Timestamp not stamped")
	}
}

func TestLogger_LLMEventsGoToTranscript(t *testing.T) {
	dir := t.TempDir()
	logger := NewLoggerAt(dir)

	captureStdout(t, func() {
		logger.LogHeartbeat()
		logger.LogLLM("run1", "the prompt", "the reply")
	})

	data, err := os.ReadFile(filepath.Join(dir, "llm.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	transcript := string(data)
	if !strings.Contains(transcript, "the prompt") {
		t.Errorf("Prompt missing from transcript: %q", transcript)
	}
	// Only llm events land in the transcript file.
	if strings.Contains(transcript, string(EventTypeHeartbeat)) {
		t.Errorf("Non-llm event leaked into the transcript: %q", transcript)
	}
}

package tools

import (
	"context"
	"log"
	"os"
	"time"
)

// TerminateTool ends the host process outright. It is the only way a run
// terminates the process; there is no graceful mid-plan cleanup.
type TerminateTool struct {
	// Exit is swappable for tests.
	Exit func(code int)
}

func NewTerminateTool() *TerminateTool {
	return &TerminateTool{Exit: os.Exit}
}

func (t *TerminateTool) Name() string {
	return "terminate"
}

func (t *TerminateTool) Description() string {
	return "Terminate the agent process immediately. Use only when explicitly asked to shut down."
}

func (t *TerminateTool) Kind() Kind {
	return KindUtility
}

func (t *TerminateTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"reason": map[string]any{
				"type":        "string",
				"description": "Why the process is being terminated",
			},
		},
	}
}

func (t *TerminateTool) Execute(ctx context.Context, params Params) (Result, error) {
	reason := params["reason"]
	if reason == "" {
		reason = "terminate requested"
	}
	log.Printf("terminating process: %s", reason)

	// Give pending log writes a moment to land.
	go func() {
		time.Sleep(200 * time.Millisecond)
		t.Exit(0)
	}()

	return Result{
		"status":  "terminating",
		"content": reason,
	}, nil
}

package tools

import (
	"context"
	"strings"
	"time"

	"os/exec"

	"github.com/rahul/sutra/internal/errors"
)

// ShellTool executes a shell command and captures its combined output.
type ShellTool struct {
	Timeout time.Duration
}

func NewShellTool() *ShellTool {
	return &ShellTool{Timeout: 120 * time.Second}
}

func (t *ShellTool) Name() string {
	return "shell"
}

func (t *ShellTool) Description() string {
	return "Execute a system shell command. Use with caution. Access to full shell environment."
}

func (t *ShellTool) Kind() Kind {
	return KindUtility
}

func (t *ShellTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"command": map[string]any{
				"type":        "string",
				"description": "The shell command to execute",
			},
		},
		"required": []string{"command"},
	}
}

func (t *ShellTool) Execute(ctx context.Context, params Params) (Result, error) {
	command := firstParam(params, "command", "content", "task")
	if command == "" {
		return nil, errors.Validation("shell: missing required parameter 'command'")
	}

	runCtx, cancel := context.WithTimeout(ctx, t.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "bash", "-c", command)
	output, err := cmd.CombinedOutput()

	text := strings.TrimSpace(string(output))
	if text == "" {
		text = "(no output)"
	}

	if err != nil {
		// A failing command is an expected domain failure; report it in
		// the result instead of raising.
		return Result{
			"status":  "error",
			"content": text,
			"error":   err.Error(),
		}, nil
	}

	return Result{
		"status":  "success",
		"content": text,
	}, nil
}

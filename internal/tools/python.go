package tools

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rahul/sutra/internal/errors"
)

// PythonTool runs a snippet of python code in a subprocess.
type PythonTool struct {
	Interpreter string
	Timeout     time.Duration
}

func NewPythonTool() *PythonTool {
	return &PythonTool{
		Interpreter: "python3",
		Timeout:     60 * time.Second,
	}
}

func (t *PythonTool) Name() string {
	return "python_execute"
}

func (t *PythonTool) Description() string {
	return "Execute a snippet of Python code and return its output."
}

func (t *PythonTool) Kind() Kind {
	return KindUtility
}

func (t *PythonTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"code": map[string]any{
				"type":        "string",
				"description": "The Python code to run",
			},
		},
		"required": []string{"code"},
	}
}

func (t *PythonTool) Execute(ctx context.Context, params Params) (Result, error) {
	code := firstParam(params, "code", "content", "task")
	if code == "" {
		return nil, errors.Validation("python_execute: missing required parameter 'code'")
	}

	// Run from a temp file so multi-line snippets survive quoting.
	tmp, err := os.CreateTemp("", "sutra_*.py")
	if err != nil {
		return nil, errors.Wrap(errors.KindFile, err, "python_execute: failed to create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(code); err != nil {
		tmp.Close()
		return nil, errors.Wrap(errors.KindFile, err, "python_execute: failed to write temp file")
	}
	tmp.Close()

	runCtx, cancel := context.WithTimeout(ctx, t.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, t.Interpreter, filepath.Clean(tmp.Name()))
	output, err := cmd.CombinedOutput()

	text := strings.TrimSpace(string(output))
	if text == "" {
		text = "(no output)"
	}

	if err != nil {
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

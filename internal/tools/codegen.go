package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rahul/sutra/internal/errors"
	"github.com/rahul/sutra/internal/llm"
)

var codegenExtensions = map[string]string{
	"python":     ".py",
	"go":         ".go",
	"javascript": ".js",
	"typescript": ".ts",
	"bash":       ".sh",
	"html":       ".html",
	"css":        ".css",
}

// CodegenTool asks the model for source code matching a description and
// saves it to a file.
type CodegenTool struct {
	Root string
	LLM  llm.Generator
}

func NewCodegenTool(root string, generator llm.Generator) *CodegenTool {
	absRoot, _ := filepath.Abs(root)
	return &CodegenTool{Root: absRoot, LLM: generator}
}

func (t *CodegenTool) Name() string {
	return "code_generator"
}

func (t *CodegenTool) Description() string {
	return "Generate source code for a described task and save it to a file. Supports python, go, javascript, typescript, bash, html, css."
}

func (t *CodegenTool) Kind() Kind {
	return KindGenerator
}

func (t *CodegenTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"description": map[string]any{
				"type":        "string",
				"description": "What the code should do",
			},
			"language": map[string]any{
				"type":        "string",
				"description": "Target language (default python)",
			},
			"output_path": map[string]any{
				"type":        "string",
				"description": "Destination file path",
			},
		},
		"required": []string{"description"},
	}
}

func (t *CodegenTool) Execute(ctx context.Context, params Params) (Result, error) {
	description := firstParam(params, "description", "content", "task")
	if description == "" {
		return nil, errors.Validation("code_generator: missing required parameter 'description'")
	}

	language := strings.ToLower(firstParam(params, "language"))
	if _, ok := codegenExtensions[language]; !ok {
		language = "python"
	}

	prompt := fmt.Sprintf(`Write %s code for the following task:

%s

Reply with ONLY the code, no explanation. Do not wrap it in markdown fences.`, language, description)

	code := t.LLM.GenerateText(ctx, prompt, "You are an expert programmer. You write clean, working, well-commented code.")
	if llm.IsErrorReply(code) {
		return nil, errors.LLM("code_generator: generation failed: %s", code)
	}
	code = stripCodeFences(code)
	if strings.TrimSpace(code) == "" {
		return nil, errors.Tool("code_generator: model returned empty code")
	}

	outputPath := params["output_path"]
	if outputPath == "" {
		outputPath = filepath.Join(t.Root, fmt.Sprintf("generated_%d%s", time.Now().Unix(), codegenExtensions[language]))
	} else if !filepath.IsAbs(outputPath) {
		outputPath = filepath.Join(t.Root, outputPath)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return nil, errors.Wrap(errors.KindFile, err, "code_generator: failed to create output directory")
	}
	if err := os.WriteFile(outputPath, []byte(code), 0644); err != nil {
		return nil, errors.Wrap(errors.KindFile, err, "code_generator: failed to write file")
	}

	return Result{
		"status":   "success",
		"filepath": outputPath,
		"content":  code,
		"language": language,
		"summary":  fmt.Sprintf("Generated %s code at %s.", language, outputPath),
	}, nil
}

// stripCodeFences removes a surrounding ```lang ... ``` block if the model
// ignored the no-fences instruction.
func stripCodeFences(code string) string {
	trimmed := strings.TrimSpace(code)
	if !strings.HasPrefix(trimmed, "```") {
		return code
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return code
	}
	lines = lines[1:]
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

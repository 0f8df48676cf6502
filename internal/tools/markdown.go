package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rahul/sutra/internal/errors"
)

// MarkdownTool writes markdown content to a file. It doubles as the
// consolidated-report generator at the end of a run.
type MarkdownTool struct {
	Root string
}

func NewMarkdownTool(root string) *MarkdownTool {
	absRoot, _ := filepath.Abs(root)
	return &MarkdownTool{Root: absRoot}
}

func (t *MarkdownTool) Name() string {
	return "markdown_generator"
}

func (t *MarkdownTool) Description() string {
	return "Generate a markdown document from the given content and save it to a file."
}

func (t *MarkdownTool) Kind() Kind {
	return KindGenerator
}

func (t *MarkdownTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"content": map[string]any{
				"type":        "string",
				"description": "The markdown content to write",
			},
			"title": map[string]any{
				"type":        "string",
				"description": "Optional document title, prepended as a heading",
			},
			"output_path": map[string]any{
				"type":        "string",
				"description": "Destination file path (defaults to a timestamped file in the workspace)",
			},
		},
		"required": []string{"content"},
	}
}

func (t *MarkdownTool) Execute(ctx context.Context, params Params) (Result, error) {
	content := params["content"]
	if content == "" {
		return nil, errors.Validation("markdown_generator: missing required parameter 'content'")
	}

	if title := params["title"]; title != "" && !strings.HasPrefix(strings.TrimSpace(content), "#") {
		content = "# " + title + "\n\n" + content
	}

	outputPath := params["output_path"]
	if outputPath == "" {
		outputPath = filepath.Join(t.Root, fmt.Sprintf("document_%d.md", time.Now().Unix()))
	} else if !filepath.IsAbs(outputPath) {
		outputPath = filepath.Join(t.Root, outputPath)
	}
	if !strings.HasSuffix(outputPath, ".md") {
		outputPath += ".md"
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return nil, errors.Wrap(errors.KindFile, err, "markdown_generator: failed to create output directory")
	}
	if err := os.WriteFile(outputPath, []byte(content), 0644); err != nil {
		return nil, errors.Wrap(errors.KindFile, err, "markdown_generator: failed to write file")
	}

	return Result{
		"status":   "success",
		"filepath": outputPath,
		"content":  content,
		"summary":  fmt.Sprintf("Generated markdown document at %s (%d bytes).", outputPath, len(content)),
	}, nil
}

package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rahul/sutra/internal/errors"
)

// FilesystemTool manages files inside the workspace root.
type FilesystemTool struct {
	Root string
}

func NewFilesystemTool(root string) *FilesystemTool {
	absRoot, _ := filepath.Abs(root)
	return &FilesystemTool{Root: absRoot}
}

func (f *FilesystemTool) Name() string {
	return "filesystem"
}

func (f *FilesystemTool) Description() string {
	return "Manage files in the local workspace: read, write, list, delete, and mkdir."
}

func (f *FilesystemTool) Kind() Kind {
	return KindUtility
}

func (f *FilesystemTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"command": map[string]any{
				"type":        "string",
				"enum":        []string{"read", "write", "list", "delete", "mkdir"},
				"description": "The operation to perform",
			},
			"filename": map[string]any{
				"type":        "string",
				"description": "The name of the file or directory",
			},
			"content": map[string]any{
				"type":        "string",
				"description": "The content to write (only for 'write' command)",
			},
		},
		"required": []string{"command", "filename"},
	}
}

func (f *FilesystemTool) Execute(ctx context.Context, params Params) (Result, error) {
	command := params["command"]
	filename := params["filename"]
	if filename == "" {
		return nil, errors.Validation("filesystem: missing required parameter 'filename'")
	}

	targetPath := filepath.Join(f.Root, filename)

	// Keep every operation inside the workspace root.
	rel, err := filepath.Rel(f.Root, targetPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return nil, errors.Validation("filesystem: unsafe path attempt: %s", filename)
	}

	switch command {
	case "read":
		data, err := os.ReadFile(targetPath)
		if err != nil {
			return nil, errors.Wrap(errors.KindFile, err, "filesystem: failed to read file")
		}
		return Result{"status": "success", "content": string(data)}, nil

	case "write":
		if err := os.MkdirAll(filepath.Dir(targetPath), 0755); err != nil {
			return nil, errors.Wrap(errors.KindFile, err, "filesystem: failed to create directory")
		}
		if err := os.WriteFile(targetPath, []byte(params["content"]), 0644); err != nil {
			return nil, errors.Wrap(errors.KindFile, err, "filesystem: failed to write file")
		}
		return Result{
			"status":   "success",
			"filepath": targetPath,
			"summary":  fmt.Sprintf("Wrote %s", filename),
		}, nil

	case "list":
		entries, err := os.ReadDir(targetPath)
		if err != nil {
			return nil, errors.Wrap(errors.KindFile, err, "filesystem: failed to list directory")
		}
		var sb strings.Builder
		for _, entry := range entries {
			typeStr := "file"
			if entry.IsDir() {
				typeStr = "dir"
			}
			fmt.Fprintf(&sb, "[%s] %s\n", typeStr, entry.Name())
		}
		listing := sb.String()
		if listing == "" {
			listing = "Directory is empty"
		}
		return Result{"status": "success", "content": listing}, nil

	case "delete":
		if err := os.Remove(targetPath); err != nil {
			return nil, errors.Wrap(errors.KindFile, err, "filesystem: failed to delete")
		}
		return Result{"status": "success", "summary": fmt.Sprintf("Deleted %s", filename)}, nil

	case "mkdir":
		if err := os.MkdirAll(targetPath, 0755); err != nil {
			return nil, errors.Wrap(errors.KindFile, err, "filesystem: failed to create directory")
		}
		return Result{"status": "success", "summary": fmt.Sprintf("Created directory %s", filename)}, nil

	default:
		return nil, errors.Validation("filesystem: invalid command %q, use 'read', 'write', 'list', 'delete' or 'mkdir'", command)
	}
}

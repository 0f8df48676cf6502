package tools

import (
	"context"
	"testing"
)

func TestShellTool_Execute(t *testing.T) {
	tool := NewShellTool()
	res, err := tool.Execute(context.Background(), Params{"command": "echo hello"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Str("status") != "success" {
		t.Errorf("Expected success, got %q", res.Str("status"))
	}
	if res.Str("content") != "hello" {
		t.Errorf("Expected 'hello', got %q", res.Str("content"))
	}
}

func TestShellTool_CommandFailureIsAResult(t *testing.T) {
	tool := NewShellTool()
	res, err := tool.Execute(context.Background(), Params{"command": "exit 3"})
	if err != nil {
		t.Fatalf("A failing command is a domain result, not an error: %v", err)
	}
	if res.Str("status") != "error" {
		t.Errorf("Expected error status, got %q", res.Str("status"))
	}
	if res.Str("error") == "" {
		t.Error("Expected the exit error in the result")
	}
}

func TestShellTool_MissingCommand(t *testing.T) {
	tool := NewShellTool()
	if _, err := tool.Execute(context.Background(), Params{}); err == nil {
		t.Fatal("Expected error for missing command")
	}
}

func TestShellTool_AcceptsContentFallbackKey(t *testing.T) {
	tool := NewShellTool()
	res, err := tool.Execute(context.Background(), Params{"content": "echo via-content"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Str("content") != "via-content" {
		t.Errorf("Expected fallback key accepted, got %q", res.Str("content"))
	}
}

package tools

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rahul/sutra/internal/errors"
)

type ownerKey struct{}

// WithOwner tags a context with the chat/run owner on whose behalf tools run.
func WithOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, ownerKey{}, owner)
}

// OwnerFrom returns the owner stored by WithOwner, if any.
func OwnerFrom(ctx context.Context) (string, bool) {
	owner, ok := ctx.Value(ownerKey{}).(string)
	return owner, ok
}

type CronStore interface {
	AddTask(owner string, description string, intervalSeconds int) error
	ClearTasks(owner string) error
}

// CronTool lets the model schedule a task description for periodic re-runs.
type CronTool struct {
	Store CronStore
}

func NewCronTool(store CronStore) *CronTool {
	return &CronTool{Store: store}
}

func (c *CronTool) Name() string {
	return "schedule_task"
}

func (c *CronTool) Description() string {
	return "Manage recurring tasks: 'schedule' a new one or 'clear' all current ones."
}

func (c *CronTool) Kind() Kind {
	return KindUtility
}

func (c *CronTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"action": map[string]any{
				"type":        "string",
				"enum":        []string{"schedule", "clear"},
				"description": "The action to perform",
			},
			"task_description": map[string]any{
				"type":        "string",
				"description": "What the agent should do (only for 'schedule')",
			},
			"interval_seconds": map[string]any{
				"type":        "integer",
				"description": "The interval in seconds (minimum 60, only for 'schedule')",
			},
		},
		"required": []string{"action"},
	}
}

func (c *CronTool) Execute(ctx context.Context, params Params) (Result, error) {
	owner, ok := OwnerFrom(ctx)
	if !ok {
		return nil, errors.Validation("schedule_task: missing owner in context")
	}

	switch params["action"] {
	case "clear":
		if err := c.Store.ClearTasks(owner); err != nil {
			return nil, errors.Wrap(errors.KindTool, err, "schedule_task: failed to clear tasks")
		}
		return Result{
			"status":  "success",
			"content": "Cleared all scheduled tasks.",
		}, nil

	case "schedule":
		interval, _ := strconv.Atoi(params["interval_seconds"])
		if interval < 60 {
			return nil, errors.Validation("schedule_task: minimum interval is 60 seconds")
		}
		desc := firstParam(params, "task_description", "content", "task")
		if desc == "" {
			return nil, errors.Validation("schedule_task: missing task_description")
		}
		if err := c.Store.AddTask(owner, desc, interval); err != nil {
			return nil, errors.Wrap(errors.KindTool, err, "schedule_task: failed to schedule")
		}
		return Result{
			"status":  "success",
			"content": fmt.Sprintf("Scheduled task %q every %d seconds.", desc, interval),
		}, nil

	default:
		return nil, errors.Validation("schedule_task: invalid action %q, use 'schedule' or 'clear'", params["action"])
	}
}

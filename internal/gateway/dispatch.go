package gateway

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/rahul/sutra/internal/agent"
	"github.com/rahul/sutra/internal/store"
)

const welcomeText = `Hi! Send me a task and I will plan and execute it.

Commands:
/schedule <seconds> <task> - run a task on a recurring interval (min 60s)
/cancel - clear your scheduled tasks`

// Dispatcher turns incoming chat messages into orchestrator runs. Both
// gateways share one instance so Telegram and Discord behave the same.
type Dispatcher struct {
	Runner agent.Runner
	Store  *store.HistoryStore
}

func NewDispatcher(runner agent.Runner, st *store.HistoryStore) *Dispatcher {
	return &Dispatcher{Runner: runner, Store: st}
}

// Handle processes one message from owner and returns the reply text.
func (d *Dispatcher) Handle(ctx context.Context, owner string, text string) string {
	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return ""
	case text == "/start" || text == "/help":
		return welcomeText
	case strings.HasPrefix(text, "/schedule"):
		return d.schedule(owner, text)
	case text == "/cancel":
		if d.Store == nil {
			return "Scheduling is not available."
		}
		if err := d.Store.ClearTasks(owner); err != nil {
			return "Failed to clear tasks: " + err.Error()
		}
		return "All your scheduled tasks were cleared."
	}

	task := text
	if d.Store != nil {
		task = d.withHistory(owner, text)
		if err := d.Store.AddMessage(owner, "user", text); err != nil {
			log.Printf("failed to store message: %v", err)
		}
	}

	input := agent.NewRunInput(task)
	input.Owner = owner
	output := d.Runner.ExecuteTask(ctx, input)

	reply := output.Result
	if !output.Success {
		reply = "Task failed: " + output.Error
	} else if d.Store != nil && output.Metadata != nil {
		if paths, err := d.Store.ListArtifacts(output.Metadata.RunID); err == nil && len(paths) > 0 {
			reply += "\n\nGenerated files:\n- " + strings.Join(paths, "\n- ")
		}
	}

	if d.Store != nil {
		if err := d.Store.AddMessage(owner, "assistant", reply); err != nil {
			log.Printf("failed to store reply: %v", err)
		}
	}
	return reply
}

// historyLimit is how many recent messages are replayed into a new run.
const historyLimit = 5

// withHistory prefixes the request with the owner's recent conversation so
// follow-up messages keep their context.
func (d *Dispatcher) withHistory(owner string, text string) string {
	history, err := d.Store.GetHistory(owner, historyLimit)
	if err != nil {
		log.Printf("failed to load history: %v", err)
		return text
	}
	if len(history) == 0 {
		return text
	}

	var sb strings.Builder
	sb.WriteString("Recent conversation:\n")
	for _, m := range history {
		fmt.Fprintf(&sb, "%s: %s\n", m.Role, m.Content)
	}
	sb.WriteString("\nCurrent request: ")
	sb.WriteString(text)
	return sb.String()
}

func (d *Dispatcher) schedule(owner string, text string) string {
	if d.Store == nil {
		return "Scheduling is not available."
	}
	fields := strings.Fields(text)
	if len(fields) < 3 {
		return "Usage: /schedule <seconds> <task>"
	}
	interval, err := strconv.Atoi(fields[1])
	if err != nil || interval < 60 {
		return "Interval must be a number of at least 60 seconds."
	}
	description := strings.Join(fields[2:], " ")
	if err := d.Store.AddTask(owner, description, interval); err != nil {
		return "Failed to schedule task: " + err.Error()
	}
	return fmt.Sprintf("Scheduled %q every %d seconds.", description, interval)
}

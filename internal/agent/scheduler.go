package agent

import (
	"context"
	"log"
	"time"

	"github.com/rahul/sutra/internal/observability"
	"github.com/rahul/sutra/internal/store"
)

// Runner executes one task and reports its outcome. Orchestrator satisfies
// it; tests substitute fakes.
type Runner interface {
	ExecuteTask(ctx context.Context, input RunInput) RunOutput
}

// Notifier delivers a run result back to the owner who scheduled it.
type Notifier interface {
	Notify(owner string, message string) error
}

// Scheduler polls the task store and runs due recurring tasks.
type Scheduler struct {
	Store    *store.HistoryStore
	Runner   Runner
	Notifier Notifier
	Interval time.Duration
}

func NewScheduler(st *store.HistoryStore, runner Runner, notifier Notifier) *Scheduler {
	return &Scheduler{
		Store:    st,
		Runner:   runner,
		Notifier: notifier,
		Interval: 30 * time.Second,
	}
}

// Start blocks until ctx is cancelled, checking for due tasks on every tick.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runDue(ctx)
		}
	}
}

func (s *Scheduler) runDue(ctx context.Context) {
	tasks, err := s.Store.GetPendingTasks()
	if err != nil {
		log.Printf("scheduler: failed to fetch pending tasks: %v", err)
		return
	}

	for _, task := range tasks {
		observability.Heartbeat()
		log.Printf("scheduler: running task %d for %s: %s", task.ID, task.Owner, task.Description)

		input := NewRunInput(task.Description)
		input.Owner = task.Owner
		output := s.Runner.ExecuteTask(ctx, input)

		if err := s.Store.UpdateTaskLastRun(task.ID); err != nil {
			log.Printf("scheduler: failed to update last run for task %d: %v", task.ID, err)
		}

		if s.Notifier == nil {
			continue
		}
		message := output.Result
		if !output.Success {
			message = "Scheduled task failed: " + output.Error
		}
		if err := s.Notifier.Notify(task.Owner, message); err != nil {
			log.Printf("scheduler: failed to notify %s: %v", task.Owner, err)
		}
	}
}

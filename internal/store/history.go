package store

import (
	"database/sql"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"github.com/rahul/sutra/internal/llm"
)

type HistoryStore struct {
	DB *sql.DB
}

func NewHistoryStore(dbPath string) (*HistoryStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	queries := []string{
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			owner TEXT,
			role TEXT,
			content TEXT,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			owner TEXT,
			task_description TEXT,
			interval_seconds INTEGER,
			last_run DATETIME,
			status TEXT DEFAULT 'active'
		);`,
		`CREATE TABLE IF NOT EXISTS artifacts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT,
			tool TEXT,
			filepath TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
	}
	for _, q := range queries {
		if _, err = db.Exec(q); err != nil {
			return nil, err
		}
	}

	return &HistoryStore{DB: db}, nil
}

func (h *HistoryStore) Close() error {
	return h.DB.Close()
}

func (h *HistoryStore) AddMessage(owner string, role string, content string) error {
	_, err := h.DB.Exec(`INSERT INTO messages (owner, role, content) VALUES (?, ?, ?)`, owner, role, content)
	return err
}

func (h *HistoryStore) GetHistory(owner string, limit int) ([]llm.Message, error) {
	rows, err := h.DB.Query(
		`SELECT role, content FROM messages WHERE owner = ? ORDER BY timestamp DESC LIMIT ?`,
		owner, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []llm.Message
	for rows.Next() {
		var role, content string
		if err := rows.Scan(&role, &content); err != nil {
			return nil, err
		}
		history = append(history, llm.Message{Role: role, Content: content})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse into chronological order.
	for i, j := 0, len(history)-1; i < j; i, j = i+1, j-1 {
		history[i], history[j] = history[j], history[i]
	}
	return history, nil
}

// Task is one scheduled recurring task.
type Task struct {
	ID              int
	Owner           string
	Description     string
	IntervalSeconds int
	LastRun         time.Time
}

func (h *HistoryStore) AddTask(owner string, description string, intervalSeconds int) error {
	_, err := h.DB.Exec(
		`INSERT INTO tasks (owner, task_description, interval_seconds, last_run) VALUES (?, ?, ?, datetime('now', '-365 days'))`,
		owner, description, intervalSeconds)
	return err
}

func (h *HistoryStore) GetPendingTasks() ([]Task, error) {
	rows, err := h.DB.Query(`
		SELECT id, owner, task_description, interval_seconds
		FROM tasks
		WHERE status = 'active'
		AND (last_run IS NULL OR (julianday('now') - julianday(last_run)) * 86400 >= interval_seconds)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pending []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.Owner, &t.Description, &t.IntervalSeconds); err != nil {
			return nil, err
		}
		pending = append(pending, t)
	}
	return pending, rows.Err()
}

func (h *HistoryStore) UpdateTaskLastRun(id int) error {
	_, err := h.DB.Exec(`UPDATE tasks SET last_run = datetime('now') WHERE id = ?`, id)
	return err
}

func (h *HistoryStore) ClearTasks(owner string) error {
	_, err := h.DB.Exec(`DELETE FROM tasks WHERE owner = ?`, owner)
	return err
}

// AddArtifact records a file generated during a run.
func (h *HistoryStore) AddArtifact(runID string, tool string, filepath string) error {
	_, err := h.DB.Exec(`INSERT INTO artifacts (run_id, tool, filepath) VALUES (?, ?, ?)`, runID, tool, filepath)
	return err
}

// ListArtifacts returns the file paths recorded for a run, oldest first.
func (h *HistoryStore) ListArtifacts(runID string) ([]string, error) {
	rows, err := h.DB.Query(`SELECT filepath FROM artifacts WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

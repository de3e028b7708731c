package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"tasklist/internal/models"
)

const taskColumns = `id, title, position, created_at, updated_at`

// SQLStore implements Store on top of database/sql.
type SQLStore struct {
	// mu keeps a single writer against db; no two operations overlap.
	mu      sync.Mutex
	db      *sql.DB
	dialect dialect
	logger  *slog.Logger
	closed  bool
}

func newSQLStore(ctx context.Context, db *sql.DB, d dialect, logger *slog.Logger) (*SQLStore, error) {
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, newError(KindStoreUnavailable, "open store", err)
	}

	if err := runMigrations(ctx, db, d); err != nil {
		db.Close()
		return nil, newError(KindSchemaMismatch, "migrate store", err)
	}

	return &SQLStore{db: db, dialect: d, logger: logger.With("driver", d.name)}, nil
}

// Close closes the database connection. Calling Close more than once is a no-op.
func (s *SQLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.db.Close(); err != nil {
		return newError(KindStoreIO, "close store", err)
	}
	return nil
}

// saveChanges commits tx. It is the only place a mutation becomes durable.
func (s *SQLStore) saveChanges(op string, tx *sql.Tx) error {
	if err := tx.Commit(); err != nil {
		return newError(KindStoreIO, op, fmt.Errorf("failed to commit: %w", err))
	}
	return nil
}

func (s *SQLStore) begin(ctx context.Context, op string) (*sql.Tx, error) {
	if s.closed {
		return nil, newError(KindStoreUnavailable, op, errors.New("store is closed"))
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, newError(KindStoreIO, op, fmt.Errorf("failed to begin transaction: %w", err))
	}
	return tx, nil
}

func (s *SQLStore) checkOpen(op string) error {
	if s.closed {
		return newError(KindStoreUnavailable, op, errors.New("store is closed"))
	}
	return nil
}

// CreateTask inserts a new task with a freshly assigned ID.
func (s *SQLStore) CreateTask(ctx context.Context, title string) (*models.Task, error) {
	const op = "create task"

	title, err := validateTitle(op, title)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.begin(ctx, op)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := time.Now().UTC().Truncate(time.Microsecond)
	task := &models.Task{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO tasks (id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, task.ID, task.Title, task.CreatedAt, task.UpdatedAt)
	if err != nil {
		return nil, newError(KindStoreIO, op, fmt.Errorf("failed to insert task: %w", err))
	}

	position, err := result.LastInsertId()
	if err != nil {
		return nil, newError(KindStoreIO, op, fmt.Errorf("failed to get last insert id: %w", err))
	}
	task.Position = position

	if err := s.saveChanges(op, tx); err != nil {
		return nil, err
	}

	s.logger.Debug("task created", "id", task.ID, "position", task.Position)
	return task, nil
}

// GetTask retrieves a task by ID.
func (s *SQLStore) GetTask(ctx context.Context, id string) (*models.Task, error) {
	const op = "get task"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(op); err != nil {
		return nil, err
	}

	return getTask(ctx, s.db, op, id)
}

func getTask(ctx context.Context, q querier, op, id string) (*models.Task, error) {
	row := q.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, newError(KindNotFound, op, fmt.Errorf("task not found: %s", id))
		}
		return nil, newError(KindQueryFailed, op, err)
	}
	return task, nil
}

// ListTasks retrieves all tasks ordered by insertion.
func (s *SQLStore) ListTasks(ctx context.Context) ([]models.Task, error) {
	const op = "list tasks"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(op); err != nil {
		return nil, err
	}

	return s.queryTasks(ctx, op, `SELECT `+taskColumns+` FROM tasks ORDER BY position ASC`)
}

// FindTasksByTitle returns the tasks whose title equals title exactly.
func (s *SQLStore) FindTasksByTitle(ctx context.Context, title string) ([]models.Task, error) {
	const op = "find tasks by title"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(op); err != nil {
		return nil, err
	}

	return s.queryTasks(ctx, op, `SELECT `+taskColumns+` FROM tasks WHERE title = ? ORDER BY position ASC`, title)
}

func (s *SQLStore) queryTasks(ctx context.Context, op, query string, args ...any) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, newError(KindQueryFailed, op, err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, newError(KindQueryFailed, op, fmt.Errorf("failed to scan task: %w", err))
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, newError(KindQueryFailed, op, err)
	}

	return tasks, nil
}

// CountTasks returns the number of stored tasks.
func (s *SQLStore) CountTasks(ctx context.Context) (int, error) {
	const op = "count tasks"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(op); err != nil {
		return 0, err
	}

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&n); err != nil {
		return 0, newError(KindQueryFailed, op, err)
	}
	return n, nil
}

// UpdateTask replaces the title of the task with task.ID.
func (s *SQLStore) UpdateTask(ctx context.Context, task *models.Task, title string) error {
	const op = "update task"

	if task == nil || task.ID == "" {
		return newError(KindNotFound, op, errors.New("task has no id"))
	}

	title, err := validateTitle(op, title)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.begin(ctx, op)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC().Truncate(time.Microsecond)
	result, err := tx.ExecContext(ctx, `
		UPDATE tasks SET title = ?, updated_at = ? WHERE id = ?
	`, title, now, task.ID)
	if err != nil {
		return newError(KindStoreIO, op, fmt.Errorf("failed to update task: %w", err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return newError(KindQueryFailed, op, err)
	}
	if affected == 0 {
		s.logger.Info("update matched no task", "id", task.ID)
		return newError(KindNotFound, op, fmt.Errorf("task not found: %s", task.ID))
	}

	stored, err := getTask(ctx, tx, op, task.ID)
	if err != nil {
		return err
	}

	if err := s.saveChanges(op, tx); err != nil {
		return err
	}

	*task = *stored
	s.logger.Debug("task updated", "id", task.ID)
	return nil
}

// DeleteTask deletes a task by ID.
func (s *SQLStore) DeleteTask(ctx context.Context, id string) error {
	const op = "delete task"

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.begin(ctx, op)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return newError(KindStoreIO, op, fmt.Errorf("failed to delete task: %w", err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return newError(KindQueryFailed, op, err)
	}
	if affected == 0 {
		s.logger.Info("delete matched no task", "id", id)
		return newError(KindNotFound, op, fmt.Errorf("task not found: %s", id))
	}

	if err := s.saveChanges(op, tx); err != nil {
		return err
	}

	s.logger.Debug("task deleted", "id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var task models.Task
	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Position,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &task, nil
}

package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"tasklist/internal/models"
)

// MemoryStore implements Store in process memory. Contents are lost on Close.
type MemoryStore struct {
	mu       sync.Mutex
	tasks    map[string]models.Task
	order    []string
	position int64
	closed   bool
	logger   *slog.Logger
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore(logger *slog.Logger) *MemoryStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryStore{
		tasks:  make(map[string]models.Task),
		logger: logger.With("driver", DriverMemory),
	}
}

func (s *MemoryStore) checkOpen(op string) error {
	if s.closed {
		return newError(KindStoreUnavailable, op, errors.New("store is closed"))
	}
	return nil
}

// CreateTask appends a new task.
func (s *MemoryStore) CreateTask(ctx context.Context, title string) (*models.Task, error) {
	const op = "create task"

	title, err := validateTitle(op, title)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(op); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	s.position++
	task := models.Task{
		ID:        uuid.NewString(),
		Title:     title,
		Position:  s.position,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.tasks[task.ID] = task
	s.order = append(s.order, task.ID)

	s.logger.Debug("task created", "id", task.ID, "position", task.Position)
	return &task, nil
}

// GetTask returns the task with id.
func (s *MemoryStore) GetTask(ctx context.Context, id string) (*models.Task, error) {
	const op = "get task"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(op); err != nil {
		return nil, err
	}

	task, ok := s.tasks[id]
	if !ok {
		return nil, newError(KindNotFound, op, fmt.Errorf("task not found: %s", id))
	}
	return &task, nil
}

// ListTasks returns all tasks in insertion order.
func (s *MemoryStore) ListTasks(ctx context.Context) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen("list tasks"); err != nil {
		return nil, err
	}

	tasks := make([]models.Task, 0, len(s.order))
	for _, id := range s.order {
		tasks = append(tasks, s.tasks[id])
	}
	return tasks, nil
}

// FindTasksByTitle returns the tasks whose title equals title exactly.
func (s *MemoryStore) FindTasksByTitle(ctx context.Context, title string) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen("find tasks by title"); err != nil {
		return nil, err
	}

	tasks := []models.Task{}
	for _, id := range s.order {
		if t := s.tasks[id]; t.Title == title {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

// CountTasks returns the number of stored tasks.
func (s *MemoryStore) CountTasks(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen("count tasks"); err != nil {
		return 0, err
	}
	return len(s.tasks), nil
}

// UpdateTask replaces the title of the task with task.ID.
func (s *MemoryStore) UpdateTask(ctx context.Context, task *models.Task, title string) error {
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

	if err := s.checkOpen(op); err != nil {
		return err
	}

	stored, ok := s.tasks[task.ID]
	if !ok {
		s.logger.Info("update matched no task", "id", task.ID)
		return newError(KindNotFound, op, fmt.Errorf("task not found: %s", task.ID))
	}

	stored.Title = title
	stored.UpdatedAt = time.Now().UTC()
	s.tasks[task.ID] = stored
	*task = stored

	s.logger.Debug("task updated", "id", task.ID)
	return nil
}

// DeleteTask removes the task with id.
func (s *MemoryStore) DeleteTask(ctx context.Context, id string) error {
	const op = "delete task"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(op); err != nil {
		return err
	}

	if _, ok := s.tasks[id]; !ok {
		s.logger.Info("delete matched no task", "id", id)
		return newError(KindNotFound, op, fmt.Errorf("task not found: %s", id))
	}

	delete(s.tasks, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	s.logger.Debug("task deleted", "id", id)
	return nil
}

// Close discards the stored tasks.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.tasks = nil
	s.order = nil
	return nil
}

// Package presenter keeps an ordered in-memory copy of the task list in step
// with a store.Store and reports the row changes a view must apply.
package presenter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"tasklist/internal/models"
	"tasklist/internal/store"
)

// ErrEmptyTitle is returned when a caller submits a blank title. The store is
// not consulted.
var ErrEmptyTitle = errors.New("title is required")

// ErrIndexOutOfRange is returned for a row index the list does not have.
var ErrIndexOutOfRange = errors.New("row index out of range")

// ChangeKind describes how the displayed list changed.
type ChangeKind int

const (
	Reload ChangeKind = iota
	Insert
	Update
	Delete
)

func (k ChangeKind) String() string {
	switch k {
	case Reload:
		return "reload"
	case Insert:
		return "insert"
	case Update:
		return "update"
	case Delete:
		return "delete"
	default:
		return fmt.Sprintf("ChangeKind(%d)", int(k))
	}
}

// Change is a single row delta. Index is -1 for Reload.
type Change struct {
	Kind  ChangeKind
	Index int
}

// Observer receives every change after the in-memory list has been updated.
type Observer func(Change)

// List mirrors the store's tasks in display order.
type List struct {
	store    store.Store
	tasks    []models.Task
	observer Observer
	logger   *slog.Logger
}

// Option configures a List.
type Option func(*List)

// WithObserver registers fn to receive row changes.
func WithObserver(fn Observer) Option {
	return func(l *List) {
		l.observer = fn
	}
}

// WithLogger sets the logger used for gateway failures.
func WithLogger(logger *slog.Logger) Option {
	return func(l *List) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New returns an empty List backed by s. Call Load to populate it.
func New(s store.Store, opts ...Option) *List {
	l := &List{store: s, logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *List) notify(kind ChangeKind, index int) {
	if l.observer != nil {
		l.observer(Change{Kind: kind, Index: index})
	}
}

// Load replaces the list with the store contents. On failure the list is
// left empty.
func (l *List) Load(ctx context.Context) error {
	tasks, err := l.store.ListTasks(ctx)
	if err != nil {
		l.tasks = nil
		l.notify(Reload, -1)
		l.logger.Error("failed to load tasks", "error", err)
		return err
	}

	l.tasks = tasks
	l.notify(Reload, -1)
	return nil
}

// Add creates a task and appends it to the end of the list.
func (l *List) Add(ctx context.Context, title string) (*models.Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrEmptyTitle
	}

	task, err := l.store.CreateTask(ctx, title)
	if err != nil {
		l.logger.Error("failed to create task", "error", err)
		return nil, err
	}

	l.tasks = append(l.tasks, *task)
	l.notify(Insert, len(l.tasks)-1)
	return task, nil
}

// Rename changes the title of the task at index.
//
// When the store no longer has the task the row is removed and the
// store.ErrNotFound error is returned, so a caller can tell a miss from a
// successful edit.
func (l *List) Rename(ctx context.Context, index int, title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	if index < 0 || index >= len(l.tasks) {
		return ErrIndexOutOfRange
	}

	task := l.tasks[index]
	if err := l.store.UpdateTask(ctx, &task, title); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.logger.Info("renamed task no longer exists", "id", task.ID)
			l.removeAt(index)
			return err
		}
		l.logger.Error("failed to update task", "id", task.ID, "error", err)
		return err
	}

	l.tasks[index] = task
	l.notify(Update, index)
	return nil
}

// Remove deletes the task at index. The row is removed before the store is
// asked to delete it and is not restored if the store call fails; a caller
// that needs the authoritative list should Load again.
func (l *List) Remove(ctx context.Context, index int) error {
	if index < 0 || index >= len(l.tasks) {
		return ErrIndexOutOfRange
	}

	task := l.tasks[index]
	l.removeAt(index)

	if err := l.store.DeleteTask(ctx, task.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		l.logger.Error("failed to delete task", "id", task.ID, "error", err)
		return err
	}
	return nil
}

func (l *List) removeAt(index int) {
	l.tasks = append(l.tasks[:index], l.tasks[index+1:]...)
	l.notify(Delete, index)
}

// Len returns the number of rows.
func (l *List) Len() int {
	return len(l.tasks)
}

// At returns the task displayed at index.
func (l *List) At(index int) (models.Task, bool) {
	if index < 0 || index >= len(l.tasks) {
		return models.Task{}, false
	}
	return l.tasks[index], true
}

// Tasks returns a copy of the rows.
func (l *List) Tasks() []models.Task {
	out := make([]models.Task, len(l.tasks))
	copy(out, l.tasks)
	return out
}

// Titles returns the row titles in display order.
func (l *List) Titles() []string {
	out := make([]string, len(l.tasks))
	for i, t := range l.tasks {
		out[i] = t.Title
	}
	return out
}

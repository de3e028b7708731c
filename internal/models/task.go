package models

import (
	"errors"
	"strings"
	"time"
)

// Task is a single entry in the task list.
type Task struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Position  int64     `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks that the task has valid field values.
func (t *Task) Validate() error {
	return ValidateTitle(t.Title)
}

// ValidateTitle reports whether title can be stored as a task title.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return errors.New("title is required")
	}
	return nil
}

// NormalizeTitle strips surrounding whitespace from a user-supplied title.
func NormalizeTitle(title string) string {
	return strings.TrimSpace(title)
}

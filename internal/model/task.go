package model

import (
	"errors"
	"strings"
	"time"
)

// Task is the domain model for a single task.
// Field names and JSON tags match the durable slot format.
type Task struct {
	ID          string    `json:"id"`
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"dueDate"`
	Completed   bool      `json:"completed"`
}

// TaskData holds the user-editable fields of a task.
type TaskData struct {
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"dueDate"`
}

var (
	ErrSummaryRequired     = errors.New("task summary is required")
	ErrDescriptionRequired = errors.New("task description is required")
	ErrDueDateRequired     = errors.New("a due date is required")
)

// Normalize trims surrounding whitespace from the text fields.
func (d TaskData) Normalize() TaskData {
	d.Summary = strings.TrimSpace(d.Summary)
	d.Description = strings.TrimSpace(d.Description)
	return d
}

// Validate reports the first missing required field.
func (d TaskData) Validate() error {
	switch {
	case strings.TrimSpace(d.Summary) == "":
		return ErrSummaryRequired
	case strings.TrimSpace(d.Description) == "":
		return ErrDescriptionRequired
	case d.DueDate.IsZero():
		return ErrDueDateRequired
	}
	return nil
}

// Data returns the editable fields of t.
func (t Task) Data() TaskData {
	return TaskData{Summary: t.Summary, Description: t.Description, DueDate: t.DueDate}
}

// Apply replaces the editable fields; ID and Completed are kept.
func (t Task) Apply(d TaskData) Task {
	t.Summary = d.Summary
	t.Description = d.Description
	t.DueDate = d.DueDate
	return t
}

// Valid reports whether t satisfies the invariants required for persistence.
func (t Task) Valid() bool {
	return t.ID != "" && t.Data().Validate() == nil
}

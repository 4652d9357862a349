package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidStatus is returned when parsing an unknown status.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidPriority is returned when parsing an unknown priority.
	ErrInvalidPriority = errors.New("invalid priority")
)

// Status represents the state of a task.
type Status string

const (
	// StatusTodo indicates the task has not been started.
	StatusTodo Status = "todo"

	// StatusInProgress indicates the task is being worked on.
	StatusInProgress Status = "in_progress"

	// StatusCompleted indicates the task is finished.
	StatusCompleted Status = "completed"

	// StatusCancelled indicates the task was abandoned.
	StatusCancelled Status = "cancelled"
)

// ValidStatuses returns all valid status values in board order.
func ValidStatuses() []Status {
	return []Status{StatusTodo, StatusInProgress, StatusCompleted, StatusCancelled}
}

// IsValid returns true if the status is a known valid value.
func (s Status) IsValid() bool {
	for _, valid := range ValidStatuses() {
		if s == valid {
			return true
		}
	}
	return false
}

// Label returns the column heading used for the status.
func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

// ParseStatus accepts a status value ("in_progress") or a loose spelling
// ("in-progress", "In Progress").
func ParseStatus(value string) (Status, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	s := Status(normalized)
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, value)
	}
	return s, nil
}

// Priority represents the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityMedium Priority = "medium" // default
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// DefaultPriority is applied to tasks created without one.
const DefaultPriority = PriorityMedium

// ValidPriorities returns all priorities from lowest to highest.
func ValidPriorities() []Priority {
	return []Priority{PriorityLow, PriorityNormal, PriorityMedium, PriorityHigh, PriorityUrgent}
}

// IsValid returns true if the priority is a known valid value.
func (p Priority) IsValid() bool {
	for _, valid := range ValidPriorities() {
		if p == valid {
			return true
		}
	}
	return false
}

// Rank orders priorities; higher is more urgent. Unknown values rank
// below low.
func (p Priority) Rank() int {
	for i, valid := range ValidPriorities() {
		if p == valid {
			return i
		}
	}
	return -1
}

// Next returns the next priority up, wrapping from urgent to low.
func (p Priority) Next() Priority {
	all := ValidPriorities()
	return all[(p.Rank()+1)%len(all)]
}

// ParsePriority parses a priority name, case-insensitively.
func ParsePriority(value string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(value)))
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, value)
	}
	return p, nil
}

package models

import "fmt"

// TaskTitle is a value object representing a valid task title.
// Encapsulates validation rules: 1 <= len(title) <= 200.
type TaskTitle string

const (
	minTaskTitleLength = 1
	maxTaskTitleLength = 200
)

// NewTaskTitle constructs a valid TaskTitle or returns an error if constraints are violated.
func NewTaskTitle(s string) (TaskTitle, error) {
	if len(s) < minTaskTitleLength {
		return "", fmt.Errorf("task title must be at least %d character", minTaskTitleLength)
	}
	if len(s) > maxTaskTitleLength {
		return "", fmt.Errorf("task title must not exceed %d characters", maxTaskTitleLength)
	}
	return TaskTitle(s), nil
}

// String returns the underlying string value.
func (t TaskTitle) String() string {
	return string(t)
}

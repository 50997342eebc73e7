package domain

import "errors"

// Sentinel errors for the task domain. Use errors.Is() to check these.
var (
	// ErrTaskNotFound indicates the requested task does not exist.
	ErrTaskNotFound = errors.New("task not found")

	// ErrTaskAccessDenied indicates the task exists but belongs to another user.
	ErrTaskAccessDenied = errors.New("task access denied")

	// ErrTaskAlreadyExists indicates a task with the same id already exists.
	ErrTaskAlreadyExists = errors.New("task already exists")

	// ErrInvalidTaskTitle indicates the task title violates domain constraints.
	ErrInvalidTaskTitle = errors.New("invalid task title")

	// ErrInvalidTaskField indicates a task field other than the title violates
	// domain constraints.
	ErrInvalidTaskField = errors.New("invalid task field")
)

package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is matched by every NotFoundError.
	ErrNotFound = errors.New("not found")
	// ErrInconsistentState is matched by every InconsistentStateError.
	ErrInconsistentState = errors.New("inconsistent state")
	// ErrForbidden rejects an actor acting on another student's records.
	ErrForbidden = errors.New("forbidden")
	// ErrGradingFinalized rejects grading scheme mutations on a finalized course.
	ErrGradingFinalized = &InconsistentStateError{Reason: "grading is finalized for this course"}
)

// ValidationError reports input that breaks a grading rule.
type ValidationError struct {
	Field      string
	Value      interface{}
	Message    string
	ExceededBy float64
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError reports a missing course, assignment, submission or profile.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.Key)
}

// Is lets errors.Is(err, ErrNotFound) match.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// InconsistentStateError reports an operation attempted while an invariant does not hold.
type InconsistentStateError struct {
	Reason string
}

func (e *InconsistentStateError) Error() string {
	return e.Reason
}

// Is lets errors.Is(err, ErrInconsistentState) match.
func (e *InconsistentStateError) Is(target error) bool {
	return target == ErrInconsistentState
}

func notFound(entity, key string) error {
	return &NotFoundError{Entity: entity, Key: key}
}

func invalid(field string, value interface{}, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)}
}

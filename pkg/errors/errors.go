package errors

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrSchedulerClosed resolves every future submitted after Close.
	ErrSchedulerClosed = errors.New("scheduler is closed")
	// ErrTaskCanceled resolves a task that was removed from the pending queue
	// before it was dispatched.
	ErrTaskCanceled = fmt.Errorf("task canceled before dispatch: %w", context.Canceled)
)

type InvalidConfigurationError struct {
	Field  string
	Reason string
}

func NewInvalidConfigurationError(field, reason string) *InvalidConfigurationError {
	return &InvalidConfigurationError{Field: field, Reason: reason}
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}

func IsInvalidConfigurationError(err error) bool {
	var e *InvalidConfigurationError
	return errors.As(err, &e)
}

// TaskError attributes a failure to the task that produced it.
type TaskError struct {
	TaskID string
	Err    error
}

func NewTaskError(taskID string, err error) *TaskError {
	return &TaskError{TaskID: taskID, Err: err}
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %s failed: %v", e.TaskID, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

func IsTaskError(err error) bool {
	var e *TaskError
	return errors.As(err, &e)
}

// SchedulerMisuseError reports a broken internal invariant. It is raised with
// panic, never returned.
type SchedulerMisuseError struct {
	Reason string
}

func NewSchedulerMisuseError(format string, args ...any) *SchedulerMisuseError {
	return &SchedulerMisuseError{Reason: fmt.Sprintf(format, args...)}
}

func (e *SchedulerMisuseError) Error() string {
	return fmt.Sprintf("scheduler misuse: %s", e.Reason)
}

// BatchItemError is returned by a bounded batch when one item fails.
type BatchItemError struct {
	Index int
	Err   error
}

func NewBatchItemError(index int, err error) *BatchItemError {
	return &BatchItemError{Index: index, Err: err}
}

func (e *BatchItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

func (e *BatchItemError) Unwrap() error {
	return e.Err
}

func IsBatchItemError(err error) bool {
	var e *BatchItemError
	return errors.As(err, &e)
}

type ResourceNotFoundError struct {
	Kind string
	ID   string
}

func NewResourceNotFoundError(kind, id string) *ResourceNotFoundError {
	return &ResourceNotFoundError{Kind: kind, ID: id}
}

func NewRunNotFoundError(id string) *ResourceNotFoundError {
	return NewResourceNotFoundError("run", id)
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func IsResourceNotFoundError(err error) bool {
	var e *ResourceNotFoundError
	return errors.As(err, &e)
}

// TickError reports a tick that fired on a faulty timestamp.
type TickError struct {
	Seq int
	At  time.Time
}

func NewTickError(seq int, at time.Time) *TickError {
	return &TickError{Seq: seq, At: at}
}

func (e *TickError) Error() string {
	return fmt.Sprintf("tick %d failed at %d ms", e.Seq, e.At.UnixMilli())
}

func IsTickError(err error) bool {
	var e *TickError
	return errors.As(err, &e)
}

package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrBuildDocument signals that a resource could not be transformed into a search document.
	ErrBuildDocument = errors.New("build document")
	// ErrRelationConflict signals two relation rows for one pair with different types.
	ErrRelationConflict = errors.New("relation conflict")
	// ErrRunAborted signals that a run stopped before the record stream was exhausted.
	ErrRunAborted = errors.New("run aborted")
	// ErrPartialFailure signals a completed run in which some records failed to index.
	ErrPartialFailure = errors.New("partial failure")
	// ErrAlreadyRunning signals that another instance holds the run guard.
	ErrAlreadyRunning = errors.New("already running")
)

// RelationConflictError wraps ErrRelationConflict with the offending pair.
type RelationConflictError struct {
	FirstID  string
	SecondID string
	Previous string
	Current  string
}

func (e *RelationConflictError) Error() string {
	return fmt.Sprintf("%s: %s -> %s is both %q and %q",
		ErrRelationConflict.Error(), e.FirstID, e.SecondID, e.Previous, e.Current)
}

func (e *RelationConflictError) Unwrap() error { return ErrRelationConflict }

// PartialFailureError wraps ErrPartialFailure with the number of failed records.
type PartialFailureError struct {
	Failed  int
	Indexed int
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("%s: %d of %d records failed", ErrPartialFailure.Error(), e.Failed, e.Failed+e.Indexed)
}

func (e *PartialFailureError) Unwrap() error { return ErrPartialFailure }

package main

import (
	"errors"
	"fmt"

	"github.com/kailas-cloud/reindexer/internal/db"
	"github.com/kailas-cloud/reindexer/internal/domain"
)

var errorKinds = []struct {
	target error
	kind   string
}{
	{domain.ErrAlreadyRunning, "already_running"},
	{domain.ErrRunAborted, "aborted"},
	{domain.ErrRelationConflict, "relation_conflict"},
	{domain.ErrBuildDocument, "build_document"},
	{domain.ErrPartialFailure, "partial_failure"},
	{db.ErrIndexNotFound, "index_not_found"},
}

// errorKind names the class of a terminal error for the fatal log line.
func errorKind(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.target) {
			return k.kind
		}
	}
	var dbErr *db.Error
	if errors.As(err, &dbErr) {
		return "search_backend:" + dbErr.Op
	}
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return fmt.Sprintf("%T", err)
		}
		err = next
	}
}

package etl

import (
	"errors"
	"fmt"
)

// Failure taxonomy for a pipeline run. The database layer and the mask
// transform wrap these sentinels so callers can classify a failure with
// errors.Is regardless of the underlying cause.
var (
	// ErrEngineInit means the connection pool could not be created or
	// verified. Nothing has been read or written.
	ErrEngineInit = errors.New("engine init failed")

	// ErrSourceUnavailable means a source table could not be read
	// (connectivity, missing table, auth).
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrMalformedEmail means a user email lacks the "@" delimiter and
	// the mask policy is reject.
	ErrMalformedEmail = errors.New("malformed email")

	// ErrSinkWrite means the destination overwrite could not complete.
	// The destination keeps its previous contents.
	ErrSinkWrite = errors.New("sink write failed")
)

// StageError records which pipeline stage failed. It wraps the
// underlying error so sentinel matching still works through it.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("stage %s: %v", e.Stage, e.Err) }

func (e *StageError) Unwrap() error { return e.Err }

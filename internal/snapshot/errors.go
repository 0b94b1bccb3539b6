package snapshot

import (
	"errors"
	"fmt"
)

// ErrMalformedSnapshot matches every MalformedSnapshotError via errors.Is.
var ErrMalformedSnapshot = errors.New("malformed snapshot")

// MalformedSnapshotError reports a snapshot with a missing required key or a
// value of the wrong shape. It is fatal for the audit run.
type MalformedSnapshotError struct {
	Source string // file the snapshot came from, if known
	Field  string // JSON path of the offending field
	Reason string
	Err    error
}

func (e *MalformedSnapshotError) Error() string {
	msg := "malformed snapshot"
	if e.Source != "" {
		msg += " " + e.Source
	}
	if e.Field != "" {
		msg += fmt.Sprintf(": field %s", e.Field)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *MalformedSnapshotError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrMalformedSnapshot.
func (e *MalformedSnapshotError) Is(target error) bool {
	return target == ErrMalformedSnapshot
}

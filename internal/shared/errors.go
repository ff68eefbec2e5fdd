package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrEmptyRecordSet indicates a computation that requires at least one record.
	ErrEmptyRecordSet = errors.New("empty record set")
)

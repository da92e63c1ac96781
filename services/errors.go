package services

import "fmt"

// ValidationError reports malformed input to a mutation operation.
// Query paths never return it: garbage queries degrade to the fallback
// response instead.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PersistenceError reports a failed write to the backing definition
// source after the in-memory mutation already succeeded. Non-fatal: the
// in-memory state stays usable and the store may diverge from the
// backing source until the next successful write.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

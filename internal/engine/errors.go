package engine

import "fmt"

// NotAuthenticatedError indicates the caller supplied no learner identity.
// No computation is performed and no state changes.
type NotAuthenticatedError struct{}

func (e *NotAuthenticatedError) Error() string {
	return "not authenticated: learner id required"
}

// PersistenceError indicates a repository call failed on the primary write
// path. Secondary best-effort recomputes never surface one; their failures
// are logged and swallowed.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure in %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

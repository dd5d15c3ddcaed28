package graph

import "fmt"

// InvariantViolationError reports input that breaks the layout engine's
// ordering contract: a duplicate commit hash, a parent emitted before one
// of its children, or a lane operation against a column that is not live.
//
// This is always a data-integrity bug in the upstream walker, never a
// normal repository state - unusual DAGs (shallow clones, grafts, octopus
// merges) are handled by the regular layout logic. Callers must treat the
// whole layout pass as failed; the engine does not attempt recovery.
type InvariantViolationError struct {
	Hash   string // offending commit or target hash, if known
	Reason string
}

// Error implements the error interface.
func (e *InvariantViolationError) Error() string {
	if e.Hash == "" {
		return fmt.Sprintf("graph invariant violated: %s", e.Reason)
	}
	return fmt.Sprintf("graph invariant violated: %s (hash %s)", e.Reason, e.Hash)
}

func violation(hash, format string, args ...any) *InvariantViolationError {
	return &InvariantViolationError{Hash: hash, Reason: fmt.Sprintf(format, args...)}
}

package domain

import "fmt"

// UpstreamFormatError indicates the upstream response did not match the
// expected schema. It is never retried: proceeding on guessed data risks
// silently corrupting every downstream report.
type UpstreamFormatError struct {
	Reason string
	Err    error
}

func (e *UpstreamFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream format: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("upstream format: %s", e.Reason)
}

func (e *UpstreamFormatError) Unwrap() error { return e.Err }

// PersistenceError indicates a fatal failure writing or reading persisted
// output files.
type PersistenceError struct {
	Path string
	Op   string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

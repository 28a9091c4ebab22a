package engine

import "fmt"

// Diagnostic records a best-effort persistence failure that was swallowed
// to keep the primary result available. Diagnostics are returned alongside
// results so callers can observe what was not durably recorded.
type Diagnostic struct {
	Op  string // e.g. "store_pattern", "store_suggestion"
	Err error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %v", d.Op, d.Err)
}

package alignments

import "fmt"

// NotFoundError reports a group lookup that matched no canonical row.
type NotFoundError struct {
	Table   string
	GroupID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no passage group %d in table %q", e.GroupID, e.Table)
}

// StoreError wraps a failed store query. Queries are never retried; the
// failure surfaces as a server error.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("alignment store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

package norg

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound  = errors.New("norg: not found")
	ErrMalformed = errors.New("norg: malformed document")
)

// MalformedError reports a structural problem in a document. Line is the
// 0-based row; a negative value means the problem is not line-specific.
type MalformedError struct {
	Path   string
	Line   int
	Reason string
}

func (e *MalformedError) Error() string {
	if e.Line >= 0 {
		return fmt.Sprintf("norg: malformed document %s:%d: %s", e.Path, e.Line+1, e.Reason)
	}
	return fmt.Sprintf("norg: malformed document %s: %s", e.Path, e.Reason)
}

func (e *MalformedError) Unwrap() error { return ErrMalformed }

package interceptor

import (
	"errors"
	"fmt"
)

// ErrBlocked matches any *BlockedError via errors.Is.
var ErrBlocked = errors.New("request blocked by environment guard")

// BlockedError is returned when the environment guard suppressed a call.
type BlockedError struct {
	Warning string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrBlocked.Error(), e.Warning)
}

func (e *BlockedError) Is(target error) bool { return target == ErrBlocked }

// ParseError is returned when a successful response body is not valid JSON.
type ParseError struct {
	Snippet string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse response body %q: %v", e.Snippet, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

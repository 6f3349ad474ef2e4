package fetch

import "fmt"

// StatusError rejects a response whose status is above 400.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("err: %s, status: %d", e.Message, e.Status)
}

// DispatchError wraps any other failure of a dispatched call.
type DispatchError struct {
	Err error
}

func (e *DispatchError) Error() string { return fmt.Sprintf("http error: %v", e.Err) }

func (e *DispatchError) Unwrap() error { return e.Err }

package helper

import "fmt"

// Error wraps an error with the operation it occurred in.
type Error struct {
	Operation string
	Err       error
}

// NewError creates a new wrapped error for the given operation.
func NewError(operation string, err error) *Error {
	return &Error{
		Operation: operation,
		Err:       err,
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("error %v: %v", e.Operation, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

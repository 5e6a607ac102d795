package app

import "fmt"

// ErrConnection represents a database connection error. Fatal at startup:
// a Service with a live connection never surfaces one later.
type ErrConnection struct {
	Cause error
}

func (e *ErrConnection) Error() string {
	return fmt.Sprintf("connection error: %v", e.Cause)
}

func (e *ErrConnection) Unwrap() error {
	return e.Cause
}

// ErrGenerate represents a SQL-generation failure from the language model.
// Recoverable: the user can re-ask.
type ErrGenerate struct {
	Cause error
}

func (e *ErrGenerate) Error() string {
	return fmt.Sprintf("sql generation error: %v", e.Cause)
}

func (e *ErrGenerate) Unwrap() error {
	return e.Cause
}

// ErrIndex represents a table-retrieval failure.
type ErrIndex struct {
	Cause error
}

func (e *ErrIndex) Error() string {
	return fmt.Sprintf("table index error: %v", e.Cause)
}

func (e *ErrIndex) Unwrap() error {
	return e.Cause
}

package snakeres

import (
	"errors"
	"fmt"
)

// Sentinel errors for the registry lifecycle.
var (
	// ErrClosed indicates the Assets has been torn down with Close.
	ErrClosed = errors.New("assets closed")

	// ErrSealed indicates registration was attempted after Seal.
	ErrSealed = errors.New("assets sealed: load phase is over")
)

// ReleaseError wraps a failure releasing a resource during Close.
type ReleaseError struct {
	Category string
	Tag      string
	Err      error
}

// Error implements the error interface.
func (e *ReleaseError) Error() string {
	return fmt.Sprintf("release %s %q: %v", e.Category, e.Tag, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ReleaseError) Unwrap() error {
	return e.Err
}

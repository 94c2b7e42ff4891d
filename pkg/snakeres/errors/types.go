package errors

import "fmt"

// InvalidArgumentError indicates malformed construction data, such as an
// empty vertex list or an index past the end of the vertex buffer.
type InvalidArgumentError struct {
	Category string
	Tag      string
	Field    string
	Message  string
}

// Error implements the error interface.
func (e *InvalidArgumentError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s %q: invalid %s: %s", e.Category, e.Tag, e.Field, e.Message)
	}
	return fmt.Sprintf("%s %q: invalid argument: %s", e.Category, e.Tag, e.Message)
}

// IOError indicates an asset file could not be read.
type IOError struct {
	Category string
	Tag      string
	Path     string
	Err      error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	return fmt.Sprintf("%s %q: read %s: %v", e.Category, e.Tag, e.Path, e.Err)
}

// Unwrap returns the underlying filesystem error.
func (e *IOError) Unwrap() error {
	return e.Err
}

// DecodeError indicates image or audio data is malformed.
type DecodeError struct {
	Category string
	Tag      string
	Path     string
	Err      error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s %q: decode %s: %v", e.Category, e.Tag, e.Path, e.Err)
}

// Unwrap returns the decoder error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// CompilationError indicates a shader stage failed to compile.
// Err holds the read failure when the stage source could not be loaded.
type CompilationError struct {
	Tag   string
	Stage string
	Path  string
	Log   string
	Err   error
}

// Error implements the error interface.
func (e *CompilationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("shader %q: compile %s stage (%s): %s", e.Tag, e.Stage, e.Path, e.Log)
	}
	return fmt.Sprintf("shader %q: compile %s stage: %s", e.Tag, e.Stage, e.Log)
}

// Unwrap returns the load failure, if any.
func (e *CompilationError) Unwrap() error {
	return e.Err
}

// LinkError indicates the set of shader stages cannot form a program.
type LinkError struct {
	Tag string
	Log string
}

// Error implements the error interface.
func (e *LinkError) Error() string {
	return fmt.Sprintf("shader %q: link: %s", e.Tag, e.Log)
}

// MissingResourceError indicates a tag could not be resolved.
// Referrer names the resource holding the reference, e.g. `material "m1"`.
type MissingResourceError struct {
	Category string
	Tag      string
	Referrer string
}

// Error implements the error interface.
func (e *MissingResourceError) Error() string {
	if e.Referrer != "" {
		return fmt.Sprintf("%s %q referenced by %s is not registered", e.Category, e.Tag, e.Referrer)
	}
	return fmt.Sprintf("%s %q is not registered", e.Category, e.Tag)
}

// DuplicateTagError indicates the tag is already taken in its category.
type DuplicateTagError struct {
	Category string
	Tag      string
	Err      error
}

// Error implements the error interface.
func (e *DuplicateTagError) Error() string {
	return fmt.Sprintf("%s %q already registered", e.Category, e.Tag)
}

// Unwrap returns the registry error, if any.
func (e *DuplicateTagError) Unwrap() error {
	return e.Err
}

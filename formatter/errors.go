package formatter

import (
	"errors"
	"fmt"
)

var (
	// ErrInputUnreadable is reported when the input cannot be opened or read.
	ErrInputUnreadable = errors.New("input not readable")

	// ErrOutputUnwritable is reported when the output cannot be created or written.
	ErrOutputUnwritable = errors.New("output not writable")
)

// FileError records a failed read or write together with the path involved.
type FileError struct {
	Op   string // "read" or "write"
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel that corresponds to the failed operation.
func (e *FileError) Is(target error) bool {
	switch target {
	case ErrInputUnreadable:
		return e.Op == "read"
	case ErrOutputUnwritable:
		return e.Op == "write"
	}
	return false
}

func readError(path string, err error) error {
	return &FileError{Op: "read", Path: path, Err: err}
}

func writeError(path string, err error) error {
	return &FileError{Op: "write", Path: path, Err: err}
}

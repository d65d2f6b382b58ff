package errors

import (
	stderrors "errors"
	"fmt"
	"path/filepath"
	"runtime"
)

// Sentinel errors for the failure classes the session engine distinguishes.
// Callers match them with Is after any amount of Wrapf nesting.
var (
	// ErrPathNotFound indicates a context path that does not exist.
	ErrPathNotFound = stderrors.New("path not found")
	// ErrPermission indicates an entry that exists but cannot be read.
	ErrPermission = stderrors.New("permission denied")
	// ErrBlockedCommand indicates a command vetoed by the safety classifier.
	// It is surfaced to the user and never reaches the execution primitive.
	ErrBlockedCommand = stderrors.New("command blocked by safety policy")
	// ErrTransport indicates a model backend failure. The turn is retried
	// only on explicit user request, never automatically.
	ErrTransport = stderrors.New("model backend error")
)

// New creates a new error with file and line number information.
func New(format string, a ...interface{}) error {
	_, file, line, ok := runtime.Caller(1)
	if !ok {
		file = "???"
		line = 0
	} else {
		file = filepath.Base(file)
	}
	return fmt.Errorf("[%s:%d] %s", file, line, fmt.Sprintf(format, a...))
}

// Wrapf adds context (including file and line number) to an existing error.
// If the provided error is nil, Wrapf returns nil.
func Wrapf(err error, format string, a ...interface{}) error {
	if err == nil {
		return nil
	}
	_, file, line, ok := runtime.Caller(1)
	if !ok {
		file = "???"
		line = 0
	} else {
		file = filepath.Base(file)
	}
	return fmt.Errorf("[%s:%d] %s: %w", file, line, fmt.Sprintf(format, a...), err)
}

// Mark wraps err so that it also matches the given sentinel via Is.
// Used to attach a taxonomy class to an OS-level error.
func Mark(err, sentinel error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return stderrors.Is(err, target) }

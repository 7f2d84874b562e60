package data

import (
	"errors"
	"sync"
)

// Standard tagsfs errors. Gateway and monitor implementations should wrap
// these so callers can match with errors.Is.
var (
	// Path resolution errors
	ErrInvalidPath = errors.New("tagsfs: invalid path")
	ErrNotExist    = errors.New("tagsfs: path does not exist")
	ErrExist       = errors.New("tagsfs: path already exists")

	// Namespace errors
	ErrIsDirectory       = errors.New("tagsfs: is a directory")
	ErrNotDirectory      = errors.New("tagsfs: not a directory")
	ErrDirectoryNotEmpty = errors.New("tagsfs: directory not empty")
	ErrStale             = errors.New("tagsfs: entry invalidated by concurrent change")

	// Pattern and edit errors
	ErrNoMatch       = errors.New("tagsfs: path does not match pattern")
	ErrReadOnlyField = errors.New("tagsfs: placeholder is not writable")
	ErrUnsupported   = errors.New("tagsfs: operation not supported here")
	ErrInvalid       = errors.New("tagsfs: invalid argument")

	// Gateway errors
	ErrPartialWrite = errors.New("tagsfs: some tags were rejected")

	// I/O errors
	ErrClosed   = errors.New("tagsfs: already closed")
	ErrReadOnly = errors.New("tagsfs: read-only handle")
)

// Errors accumulates errors from multi-step teardown paths.
type Errors struct {
	mu     sync.Mutex
	errors []error
}

func (e *Errors) Add(err error) {
	if err == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.errors = append(e.errors, err)
}

func (e *Errors) Errors() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.errors) == 0 {
		return nil
	}

	return errors.Join(e.errors...)
}

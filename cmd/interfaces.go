package cmd

import (
	"context"
	"io"

	"github.com/tagsfs/tagsfs/data"
)

// API is a simplified version of TagFileSystem.
// It strips away all functions not required for command operations.
type API interface {
	// Stat describes the entry at a virtual path.
	Stat(path string) (data.Attr, error)

	// ReadDir lists a virtual directory in sorted order.
	ReadDir(path string) ([]data.Dirent, error)

	// Resolve maps a virtual file path to the absolute path of its
	// backing file.
	Resolve(path string) (string, error)

	// Tags returns the stored tag set of the file at a virtual path.
	Tags(path string) (data.TagSet, error)

	// Rename moves an entry inside the virtual namespace, editing the
	// tags the changed path segments derive from.
	Rename(ctx context.Context, oldPath, newPath string) error

	// MkDir creates a virtual directory.
	MkDir(path string) error

	// RmDir removes an empty virtual directory.
	RmDir(path string) error

	// Unlink removes a virtual file together with its backing file and
	// stored tags.
	Unlink(ctx context.Context, path string) error

	// Open opens the backing file behind a virtual path and returns an
	// opaque handle token. The returned handle must be released.
	Open(path string, writable bool) (string, error)

	// ReadAt reads from an open handle at the given offset.
	ReadAt(token string, buffer []byte, offset int64) (int, error)

	// Release closes an open handle.
	Release(token string) error
}

// Command represents an executable command within the virtual namespace.
type Command interface {
	// Name returns the command identifier
	Name() string

	// Description returns human-readable help text
	Description() string

	// Usage returns a usage string for help (e.g. "ls -l [path]")
	Usage() string

	// Execute runs the command with parsed arguments
	// The writer parameter is where command output should be written
	// Returns exit code (0 = success) and error message
	Execute(ctx context.Context, api API, args *CommandArgs, writer io.Writer) (int, error)

	// GetFlags returns the flag set for this command (this is optional)
	GetFlags() *CommandFlagSet
}

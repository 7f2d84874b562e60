package tagsfs

import (
	"github.com/tagsfs/tagsfs/log"
	"github.com/tagsfs/tagsfs/monitor"
	"github.com/tagsfs/tagsfs/source"
)

// MkdirPolicy controls what names may be created with MkDir.
type MkdirPolicy int

const (
	// MkdirStrict only allows names the pattern component parses
	// cleanly, so the new directory pre-seeds tag values for files moved
	// into it. This is the default.
	MkdirStrict MkdirPolicy = iota

	// MkdirPermissive allows any name. The directory carries no seeded
	// values and only persists until unmount.
	MkdirPermissive
)

type TagFileSystemOptions struct {
	LogLevel      log.LogLevel
	LogFile       string
	NoTerminalLog bool
	JSONLog       bool

	// Fallback is the token substituted for absent tags in generated
	// paths.
	Fallback string

	// ElideEmpty drops components that render empty instead of showing
	// the fallback token.
	ElideEmpty bool

	// TieBreakTag ranks colliding files by this tag's first value before
	// falling back to file identity. Numeric values compare numerically.
	TieBreakTag string

	// Mkdir selects the directory creation policy.
	Mkdir MkdirPolicy

	// Filters restrict which backing files join the namespace.
	Filters []source.Filter

	// Monitor watches the source tree for out-of-band changes. Nil
	// disables watching.
	Monitor monitor.Monitor
}

type TagFileSystemOption func(*TagFileSystemOptions) error

func newDefaultTagFileSystemOptions() *TagFileSystemOptions {
	return &TagFileSystemOptions{
		LogLevel: log.Info,
		Fallback: "?",
	}
}

func WithLogLevel(logLevel log.LogLevel) TagFileSystemOption {
	return func(opts *TagFileSystemOptions) error {
		opts.LogLevel = logLevel
		return nil
	}
}

func WithLogFile(logFile string) TagFileSystemOption {
	return func(opts *TagFileSystemOptions) error {
		opts.LogFile = logFile
		return nil
	}
}

func WithoutTerminalLog() TagFileSystemOption {
	return func(opts *TagFileSystemOptions) error {
		opts.NoTerminalLog = true
		return nil
	}
}

func WithJSONLog() TagFileSystemOption {
	return func(opts *TagFileSystemOptions) error {
		opts.JSONLog = true
		return nil
	}
}

func WithFallback(token string) TagFileSystemOption {
	return func(opts *TagFileSystemOptions) error {
		opts.Fallback = token
		return nil
	}
}

func WithElideEmpty() TagFileSystemOption {
	return func(opts *TagFileSystemOptions) error {
		opts.ElideEmpty = true
		return nil
	}
}

func WithTieBreakTag(name string) TagFileSystemOption {
	return func(opts *TagFileSystemOptions) error {
		opts.TieBreakTag = name
		return nil
	}
}

func WithMkdirPolicy(policy MkdirPolicy) TagFileSystemOption {
	return func(opts *TagFileSystemOptions) error {
		opts.Mkdir = policy
		return nil
	}
}

func WithFilters(filters ...source.Filter) TagFileSystemOption {
	return func(opts *TagFileSystemOptions) error {
		opts.Filters = append(opts.Filters, filters...)
		return nil
	}
}

func WithMonitor(m monitor.Monitor) TagFileSystemOption {
	return func(opts *TagFileSystemOptions) error {
		opts.Monitor = m
		return nil
	}
}

// Package tagsfs presents a collection of tagged files as a virtual
// directory hierarchy derived from a path template. The forward direction
// formats each file's tags into a virtual path; the inverse direction
// turns renames inside the hierarchy into tag updates written through a
// metadata gateway. Moving a file between directories edits the tags
// those directories stand for.
package tagsfs

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/tagsfs/tagsfs/data"
	"github.com/tagsfs/tagsfs/gateway"
	"github.com/tagsfs/tagsfs/log"
	"github.com/tagsfs/tagsfs/monitor"
	"github.com/tagsfs/tagsfs/pattern"
	"github.com/tagsfs/tagsfs/source"
	"github.com/tagsfs/tagsfs/tree"
)

type TagFileSystem struct {
	pattern *pattern.Pattern
	tree    *tree.Tree
	source  *source.Tree
	gateway gateway.Gateway
	log     *log.Logger
	opts    *TagFileSystemOptions

	// monLog is the monitor sublogger, set when the monitor starts.
	monLog *log.Logger

	// snapMu guards snapshots and handles. Never held across gateway or
	// tree calls; the tie breaker takes it from inside tree operations.
	snapMu    sync.RWMutex
	snapshots map[string]data.TagSet
	handles   map[string]*handle

	queue  *monitor.Queue
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a tag filesystem over the backing files under sourceRoot,
// shaped by the path template and reading tags through the gateway. The
// namespace is empty until Populate runs.
func New(sourceRoot, template string, gw gateway.Gateway, opts ...TagFileSystemOption) (*TagFileSystem, error) {
	options := newDefaultTagFileSystemOptions()
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	logger := log.NewLogger("tagsfs", options.LogLevel, options.LogFile, options.NoTerminalLog)
	logger.JSON = options.JSONLog

	patternOpts := []pattern.Option{pattern.WithFallback(options.Fallback)}
	if options.ElideEmpty {
		patternOpts = append(patternOpts, pattern.WithElideEmpty())
	}
	compiled, err := pattern.Compile(template, patternOpts...)
	if err != nil {
		return nil, err
	}

	src, err := source.NewTree(sourceRoot, options.Filters...)
	if err != nil {
		return nil, err
	}

	fs := &TagFileSystem{
		pattern:   compiled,
		source:    src,
		gateway:   gw,
		log:       logger,
		opts:      options,
		snapshots: make(map[string]data.TagSet),
		handles:   make(map[string]*handle),
		queue:     monitor.NewQueue(),
	}
	fs.tree = tree.New(fs.tieBreak)

	return fs, nil
}

// tieBreak ranks colliding files: by the configured tie-break tag first
// (numeric-aware), then by file identity for a stable total order.
func (fs *TagFileSystem) tieBreak(a, b string) bool {
	if fs.opts.TieBreakTag != "" {
		av, aok := fs.snapshot(a).First(fs.opts.TieBreakTag)
		bv, bok := fs.snapshot(b).First(fs.opts.TieBreakTag)

		switch {
		case aok && !bok:
			return true
		case !aok && bok:
			return false
		case aok && bok && av != bv:
			an, aerr := strconv.Atoi(av)
			bn, berr := strconv.Atoi(bv)
			if aerr == nil && berr == nil {
				return an < bn
			}
			return av < bv
		}
	}

	return a < b
}

// snapshot returns the cached tag set of a file, nil if unknown.
func (fs *TagFileSystem) snapshot(fileID string) data.TagSet {
	fs.snapMu.RLock()
	defer fs.snapMu.RUnlock()

	return fs.snapshots[fileID]
}

func (fs *TagFileSystem) setSnapshot(fileID string, tags data.TagSet) {
	fs.snapMu.Lock()
	defer fs.snapMu.Unlock()

	fs.snapshots[fileID] = tags
}

func (fs *TagFileSystem) dropSnapshot(fileID string) {
	fs.snapMu.Lock()
	defer fs.snapMu.Unlock()

	delete(fs.snapshots, fileID)
}

// loadSnapshot reads a file's tags through the gateway and augments them
// with the tags derived from its backing path.
func (fs *TagFileSystem) loadSnapshot(ctx context.Context, fileID string) (data.TagSet, error) {
	tags, err := fs.gateway.ReadTags(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("gateway %s: %w", fs.gateway.Name(), err)
	}

	tags = tags.Clone()
	for name, value := range pathDerivedTags(fileID) {
		tags.Set(name, value)
	}
	return tags, nil
}

// Pattern returns the compiled path template.
func (fs *TagFileSystem) Pattern() *pattern.Pattern {
	return fs.pattern
}

// SourceRoot returns the absolute path of the backing directory.
func (fs *TagFileSystem) SourceRoot() string {
	return fs.source.Root()
}

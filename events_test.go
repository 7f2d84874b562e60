package tagsfs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tagsfs/tagsfs"
	"github.com/tagsfs/tagsfs/data"
	"github.com/tagsfs/tagsfs/gateway/memory"
)

// stubMonitor feeds hand-crafted events and can be made to fail watch
// registration.
type stubMonitor struct {
	events   chan data.ChangeEvent
	watchErr error
}

func newStubMonitor(watchErr error) *stubMonitor {
	return &stubMonitor{
		events:   make(chan data.ChangeEvent, 16),
		watchErr: watchErr,
	}
}

func (m *stubMonitor) Name() string { return "stub" }

func (m *stubMonitor) Start(ctx context.Context) (<-chan data.ChangeEvent, error) {
	return m.events, nil
}

func (m *stubMonitor) Stop() error {
	close(m.events)
	return nil
}

func (m *stubMonitor) AddWatch(path string) error    { return m.watchErr }
func (m *stubMonitor) RemoveWatch(path string) error { return nil }

func waitForPath(tst *testing.T, fs *tagsfs.TagFileSystem, path string) {
	tst.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := fs.Stat(path); err == nil {
			return
		}
		if time.Now().After(deadline) {
			tst.Fatalf("%s never appeared", path)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// TestFS_MonitorAppliesCreate verifies that a create event places the
// new file at the path its tags format to.
func TestFS_MonitorAppliesCreate(t *testing.T) {
	ctx := t.Context()
	gw := memory.NewMemoryGateway()
	mon := newStubMonitor(nil)
	fs := newTestFS(t, gw, defaultTestFiles(), tagsfs.WithMonitor(mon))

	fileID := "vines/03.mp3"
	absolute := filepath.Join(fs.SourceRoot(), filepath.FromSlash(fileID))
	if err := os.WriteFile(absolute, []byte("audio"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	err := gw.WriteTags(ctx, fileID, data.TagUpdateSet{
		"genre": {"Rock"}, "artist": {"The Vines"},
		"tracknumber": {"3"}, "title": {"Ride"},
	})
	if err != nil {
		t.Fatalf("seeding tags failed: %v", err)
	}

	mon.events <- data.ChangeEvent{Kind: data.ChangeCreated, Path: absolute}
	waitForPath(t, fs, "/Rock/The Vines/03 - Ride.mp3")
}

// TestFS_MonitorWatchFailure verifies that failing watch registration is
// logged rather than fatal: populate succeeds and events still apply.
func TestFS_MonitorWatchFailure(t *testing.T) {
	ctx := t.Context()
	gw := memory.NewMemoryGateway()
	mon := newStubMonitor(errors.New("watch table full"))
	fs := newTestFS(t, gw, defaultTestFiles(), tagsfs.WithMonitor(mon))

	entries, err := fs.ReadDir("/")
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("populate should survive watch failures: %v", entries)
	}

	// A created directory also fails to register; the event must not
	// disturb the pipeline.
	subdir := filepath.Join(fs.SourceRoot(), "fresh")
	if err := os.Mkdir(subdir, 0o755); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}
	mon.events <- data.ChangeEvent{Kind: data.ChangeCreated, Path: subdir}

	fileID := "fresh/song.mp3"
	absolute := filepath.Join(fs.SourceRoot(), filepath.FromSlash(fileID))
	if err := os.WriteFile(absolute, []byte("audio"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	err = gw.WriteTags(ctx, fileID, data.TagUpdateSet{
		"genre": {"Soul"}, "artist": {"Nina Simone"},
		"tracknumber": {"1"}, "title": {"Feeling Good"},
	})
	if err != nil {
		t.Fatalf("seeding tags failed: %v", err)
	}

	mon.events <- data.ChangeEvent{Kind: data.ChangeCreated, Path: absolute}
	waitForPath(t, fs, "/Soul/Nina Simone/01 - Feeling Good.mp3")
}

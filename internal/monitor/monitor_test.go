package monitor

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

type countingRescanner struct {
	calls atomic.Int32
}

func (c *countingRescanner) Run(ctx context.Context) error {
	c.calls.Add(1)
	return nil
}

func TestMonitorTriggersRescanOnCreate(t *testing.T) {
	root := t.TempDir()
	rescan := &countingRescanner{}

	m, err := New([]string{root}, rescan, 20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	if err := os.WriteFile(filepath.Join(root, "new.mp4"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for rescan.calls.Load() == 0 {
		select {
		case <-deadline:
			cancel()
			<-done
			t.Fatalf("rescan was never triggered")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	<-done
}

func TestMonitorWatchesNewSubdirectories(t *testing.T) {
	root := t.TempDir()
	rescan := &countingRescanner{}

	m, err := New([]string{root}, rescan, 20*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	sub := filepath.Join(root, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	// Give the watcher goroutine a moment to observe the mkdir event and
	// register a watch on sub/ before we write into it.
	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(sub, "inner.mp4"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for rescan.calls.Load() == 0 {
		select {
		case <-deadline:
			cancel()
			<-done
			t.Fatalf("rescan was never triggered for nested directory")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	<-done
}

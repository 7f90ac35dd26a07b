package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}

func startWatcher(t *testing.T, e *env) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := e.engine.Watch(ctx, e.root, e.engine.logger); err != nil {
			t.Errorf("Watch: %v", err)
		}
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	// Give the watcher a moment to register the root.
	time.Sleep(100 * time.Millisecond)
}

func TestWatch_EnrichesNewDocument(t *testing.T) {
	e := testEnv(t)
	startWatcher(t, e)

	path := filepath.Join(e.root, "post.html")
	if err := os.WriteFile(path, []byte(document), 0o644); err != nil {
		t.Fatal(err)
	}

	ok := eventually(t, 3*time.Second, func() bool {
		data, err := os.ReadFile(path)
		return err == nil && strings.Contains(string(data), "呐喊")
	})
	if !ok {
		data, _ := os.ReadFile(path)
		t.Fatalf("document never enriched:\n%s", data)
	}
	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "GETBOOK") {
		t.Errorf("token survived:\n%s", data)
	}
}

func TestWatch_SweepsNewDirectory(t *testing.T) {
	e := testEnv(t)
	startWatcher(t, e)

	// Populate a directory outside the root, then move it in: the rename
	// arrives as a single create event, so the sweep must find the file.
	staging := filepath.Join(t.TempDir(), "2026")
	if err := os.MkdirAll(staging, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(staging, "post.html"), []byte(document), 0o644); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(e.root, "2026")
	if err := os.Rename(staging, target); err != nil {
		t.Fatal(err)
	}

	ok := eventually(t, 3*time.Second, func() bool {
		data, err := os.ReadFile(filepath.Join(target, "post.html"))
		return err == nil && strings.Contains(string(data), "呐喊")
	})
	if !ok {
		t.Fatal("document in new directory never enriched")
	}
}

func TestWatch_SkipsOwnWrites(t *testing.T) {
	e := testEnv(t)
	startWatcher(t, e)

	path := filepath.Join(e.root, "post.html")
	if err := os.WriteFile(path, []byte(document), 0o644); err != nil {
		t.Fatal(err)
	}
	if !eventually(t, 3*time.Second, func() bool {
		data, err := os.ReadFile(path)
		return err == nil && !strings.Contains(string(data), "GETBOOK")
	}) {
		t.Fatal("document never enriched")
	}

	calls := e.fetcher.Calls
	// Let the event from the engine's own write drain; it must not cause
	// another resolution round.
	time.Sleep(300 * time.Millisecond)
	if e.fetcher.Calls != calls {
		t.Errorf("fetches after own write = %d, want %d", e.fetcher.Calls, calls)
	}
}

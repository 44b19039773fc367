package lua

import (
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestWatcher_DetectsFileChange(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "scene.lua")
	writeScene(t, path, "initial content")

	var changes atomic.Int32
	var lastError atomic.Value

	watcher, err := NewWatcher(
		50*time.Millisecond, // Short debounce for testing
		func() error {
			changes.Add(1)
			return nil
		},
		func(err error) {
			lastError.Store(err)
		},
		path,
	)
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}

	watcher.Start()
	defer watcher.Stop()

	// Give watcher time to start
	time.Sleep(100 * time.Millisecond)

	writeScene(t, path, "modified content")

	// Wait for debounce and callback
	time.Sleep(200 * time.Millisecond)

	if count := changes.Load(); count != 1 {
		t.Errorf("expected 1 change, got %d", count)
	}
	if err := lastError.Load(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestWatcher_DebounceMultipleWrites(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "scene.lua")
	writeScene(t, path, "initial")

	var changes atomic.Int32
	watcher, err := NewWatcher(100*time.Millisecond, func() error {
		changes.Add(1)
		return nil
	}, nil, path)
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}

	watcher.Start()
	defer watcher.Stop()
	time.Sleep(100 * time.Millisecond)

	// Rapid writes within the debounce window
	for i := 0; i < 5; i++ {
		writeScene(t, path, "content "+string(rune('a'+i)))
		time.Sleep(20 * time.Millisecond)
	}

	time.Sleep(300 * time.Millisecond)

	if count := changes.Load(); count != 1 {
		t.Errorf("expected 1 change after debounce, got %d", count)
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "scene.lua")
	writeScene(t, path, "watched")

	var changes atomic.Int32
	watcher, err := NewWatcher(50*time.Millisecond, func() error {
		changes.Add(1)
		return nil
	}, nil, path)
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}

	watcher.Start()
	defer watcher.Stop()
	time.Sleep(100 * time.Millisecond)

	writeScene(t, filepath.Join(tmpDir, "other.lua"), "unrelated")
	time.Sleep(200 * time.Millisecond)

	if count := changes.Load(); count != 0 {
		t.Errorf("expected no change for unrelated file, got %d", count)
	}
}

func TestWatcher_ReportsCallbackErrors(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "scene.lua")
	writeScene(t, path, "initial")

	errBoom := errors.New("reload failed")
	errCh := make(chan error, 1)
	watcher, err := NewWatcher(50*time.Millisecond,
		func() error { return errBoom },
		func(err error) {
			select {
			case errCh <- err:
			default:
			}
		},
		path,
	)
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}

	watcher.Start()
	defer watcher.Stop()
	time.Sleep(100 * time.Millisecond)

	writeScene(t, path, "changed")

	select {
	case err := <-errCh:
		if !errors.Is(err, errBoom) {
			t.Errorf("onError got %v, want %v", err, errBoom)
		}
	case <-time.After(time.Second):
		t.Fatal("onError was not called")
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.lua")
	writeScene(t, path, "x")

	watcher, err := NewWatcher(0, nil, nil, path)
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}
	if watcher.debounce != DefaultWatchDebounce {
		t.Errorf("debounce = %v, want %v", watcher.debounce, DefaultWatchDebounce)
	}

	// Stop before Start closes the underlying watcher
	watcher.Stop()
	watcher.Stop()
	watcher.Start()

	started, err := NewWatcher(0, nil, nil, path)
	if err != nil {
		t.Fatal(err)
	}
	started.Start()
	started.Stop()
	started.Stop()
}

func TestNewWatcher_Errors(t *testing.T) {
	if _, err := NewWatcher(0, nil, nil); err == nil {
		t.Error("expected error with no files")
	}
	missing := filepath.Join(t.TempDir(), "no", "such", "scene.lua")
	if _, err := NewWatcher(0, nil, nil, missing); err == nil {
		t.Error("expected error for a missing directory")
	}
}

func TestWatchScene(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "scene.lua")
	writeScene(t, path, `function frame(dt, n) fg_pixel(0, 0, "red") end`)

	s, fg, _ := newTestScene(t, 4, 4)
	if _, err := WatchScene(s, 50*time.Millisecond, nil); err == nil {
		t.Error("expected error for a scene without a file")
	}
	if err := s.LoadFile(path); err != nil {
		t.Fatal(err)
	}

	watcher, err := WatchScene(s, 50*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("WatchScene() error = %v", err)
	}
	defer watcher.Stop()
	time.Sleep(100 * time.Millisecond)

	writeScene(t, path, `function frame(dt, n) fg_pixel(1, 1, "blue") end`)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s.Frame()
		if fg.GetPixel(1, 1) == blue {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Error("scene was not reloaded after the file changed")
}

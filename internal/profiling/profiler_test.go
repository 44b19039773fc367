package profiling

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigEnabled(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   bool
	}{
		{"empty", Config{}, false},
		{"cpu only", Config{CPUProfilePath: "cpu.prof"}, true},
		{"heap only", Config{HeapProfilePath: "heap.prof"}, true},
		{"both", Config{CPUProfilePath: "cpu.prof", HeapProfilePath: "heap.prof"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.config.Enabled(); got != tt.want {
				t.Errorf("Enabled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProfilerStartStop(t *testing.T) {
	tmpDir := t.TempDir()
	cpuPath := filepath.Join(tmpDir, "cpu.prof")
	heapPath := filepath.Join(tmpDir, "heap.prof")

	p := New(Config{CPUProfilePath: cpuPath, HeapProfilePath: heapPath})
	if p.Running() {
		t.Error("new profiler should not be running")
	}

	if err := p.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if !p.Running() {
		t.Error("Running() should return true after Start()")
	}
	if err := p.Start(); err == nil {
		t.Error("Start() should fail when already running")
	}

	// Some work for the CPU profile
	sum := 0
	for i := 0; i < 1_000_000; i++ {
		sum += i
	}
	_ = sum

	if err := p.Stop(); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}
	if p.Running() {
		t.Error("Running() should return false after Stop()")
	}

	for _, path := range []string{cpuPath, heapPath} {
		if info, err := os.Stat(path); err != nil || info.Size() == 0 {
			t.Errorf("profile %s missing or empty: %v", filepath.Base(path), err)
		}
	}
}

func TestProfilerStopWithoutStart(t *testing.T) {
	if err := New(Config{}).Stop(); err == nil {
		t.Error("Stop() should fail when profiler is not running")
	}
}

func TestProfilerNoProfiles(t *testing.T) {
	p := New(Config{})
	if err := p.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if err := p.Stop(); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}
}

func TestProfilerInvalidPaths(t *testing.T) {
	missingDir := filepath.Join(t.TempDir(), "missing")

	p := New(Config{CPUProfilePath: filepath.Join(missingDir, "cpu.prof")})
	if err := p.Start(); err == nil {
		t.Error("Start() should fail for an unwritable CPU profile path")
	}
	if p.Running() {
		t.Error("profiler should not be running after a failed Start()")
	}

	p = New(Config{HeapProfilePath: filepath.Join(missingDir, "heap.prof")})
	if err := p.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if err := p.Stop(); err == nil {
		t.Error("Stop() should report the heap profile failure")
	}
}

func TestWriteHeapProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.prof")
	if err := WriteHeapProfile(path); err != nil {
		t.Fatalf("WriteHeapProfile() failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("heap profile not written: %v", err)
	}
}

func TestStatsViewStub(t *testing.T) {
	if StatsAddress == "" {
		t.Error("StatsAddress should not be empty")
	}
	if !StatsViewAvailable() {
		t.Skip("stats viewer is compiled in; not launching it from a test")
	}
}

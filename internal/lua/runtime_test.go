package lua

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	rt "github.com/arnodel/golua/runtime"
)

func newTestRuntime(t *testing.T) *Runtime {
	t.Helper()
	config := DefaultConfig()
	config.Stdout = nil
	runtime, err := New(config)
	if err != nil {
		t.Fatalf("failed to create runtime: %v", err)
	}
	t.Cleanup(func() { runtime.Close() })
	return runtime
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.CPULimit != 10_000_000 {
		t.Errorf("expected CPULimit 10000000, got %d", config.CPULimit)
	}
	if config.MemoryLimit != 50*1024*1024 {
		t.Errorf("expected MemoryLimit %d, got %d", 50*1024*1024, config.MemoryLimit)
	}
	if config.Stdout != os.Stdout {
		t.Error("expected Stdout to be os.Stdout")
	}
}

func TestNewWithCustomStdout(t *testing.T) {
	buf := &bytes.Buffer{}
	runtime, err := New(RuntimeConfig{CPULimit: 1_000_000, MemoryLimit: 10 * 1024 * 1024, Stdout: buf})
	if err != nil {
		t.Fatalf("failed to create runtime: %v", err)
	}
	defer runtime.Close()

	if _, err := runtime.ExecuteString("test", `print("hello from lua")`); err != nil {
		t.Fatalf("failed to execute Lua code: %v", err)
	}
	if buf.String() != "hello from lua\n" {
		t.Errorf("expected 'hello from lua\\n', got %q", buf.String())
	}
	if runtime.Output() != "hello from lua\n" {
		t.Errorf("captured output = %q", runtime.Output())
	}

	runtime.ClearOutput()
	if runtime.Output() != "" {
		t.Errorf("output after ClearOutput = %q", runtime.Output())
	}
}

func TestExecuteString(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		want    int64
		wantErr bool
	}{
		{"arithmetic", "return 6 * 7", 42, false},
		{"loop", "local s = 0 for i = 1, 10 do s = s + i end return s", 55, false},
		{"string lib", "return #string.rep('ab', 3)", 6, false},
		{"syntax error", "return (", 0, true},
		{"runtime error", "error('boom')", 0, true},
	}

	runtime := newTestRuntime(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := runtime.ExecuteString(tt.name, tt.code)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExecuteString() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got, ok := rt.ToInt(result); !ok || got != tt.want {
				t.Errorf("result = %v, want %d", result, tt.want)
			}
		})
	}
}

func TestExecuteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answer.lua")
	if err := os.WriteFile(path, []byte("return 40 + 2"), 0o644); err != nil {
		t.Fatal(err)
	}

	runtime := newTestRuntime(t)
	result, err := runtime.ExecuteFile(path)
	if err != nil {
		t.Fatalf("ExecuteFile() error = %v", err)
	}
	if got, ok := rt.ToInt(result); !ok || got != 42 {
		t.Errorf("result = %v, want 42", result)
	}

	if _, err := runtime.ExecuteFile(filepath.Join(t.TempDir(), "missing.lua")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadFileFromFS(t *testing.T) {
	fsys := fstest.MapFS{
		"scenes/two.lua": &fstest.MapFile{Data: []byte("return 1 + 1")},
	}
	runtime := newTestRuntime(t)

	closure, err := runtime.LoadFileFromFS(fsys, "scenes/two.lua")
	if err != nil {
		t.Fatalf("LoadFileFromFS() error = %v", err)
	}
	result, err := runtime.Execute(closure)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got, ok := rt.ToInt(result); !ok || got != 2 {
		t.Errorf("result = %v, want 2", result)
	}

	if _, err := runtime.LoadFileFromFS(fsys, "scenes/none.lua"); err == nil {
		t.Error("expected error for missing FS file")
	}
}

func TestSetAndGetGlobal(t *testing.T) {
	runtime := newTestRuntime(t)

	runtime.SetGlobal("answer", rt.IntValue(42))
	if got, ok := rt.ToInt(runtime.GetGlobal("answer")); !ok || got != 42 {
		t.Errorf("answer = %v, want 42", runtime.GetGlobal("answer"))
	}
	if runtime.GetGlobal("undefined") != rt.NilValue {
		t.Error("undefined global should be nil")
	}
}

func TestSetGoFunctionAndCallFunction(t *testing.T) {
	runtime := newTestRuntime(t)

	runtime.SetGoFunction("add", func(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
		a, _ := c.IntArg(0)
		b, _ := c.IntArg(1)
		return c.PushingNext1(t.Runtime, rt.IntValue(a+b)), nil
	}, 2, false)

	if _, err := runtime.ExecuteString("def", "function twice_sum(a, b) return 2 * add(a, b) end"); err != nil {
		t.Fatalf("failed to define function: %v", err)
	}
	if !runtime.HasFunction("twice_sum") || runtime.HasFunction("nope") {
		t.Error("HasFunction mismatch")
	}

	result, err := runtime.CallFunction("twice_sum", rt.IntValue(10), rt.IntValue(11))
	if err != nil {
		t.Fatalf("CallFunction() error = %v", err)
	}
	if got, ok := rt.ToInt(result); !ok || got != 42 {
		t.Errorf("result = %v, want 42", result)
	}

	if _, err := runtime.CallFunction("nonexistent"); err == nil {
		t.Error("expected error for non-existent function")
	}
}

func TestResourceLimits(t *testing.T) {
	runtime, err := New(RuntimeConfig{CPULimit: 1000, MemoryLimit: 1 * 1024 * 1024})
	if err != nil {
		t.Fatalf("failed to create runtime: %v", err)
	}
	defer runtime.Close()

	_, err = runtime.ExecuteString("heavy", `
		local sum = 0
		for i = 1, 1000000 do
			sum = sum + i
		end
		return sum
	`)
	if err == nil {
		t.Error("expected the CPU limit to stop the loop")
	}
}

func TestClose(t *testing.T) {
	runtime, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("failed to create runtime: %v", err)
	}
	if err := runtime.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := runtime.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	if _, err := runtime.ExecuteString("late", "return 1"); !errors.Is(err, ErrRuntimeClosed) {
		t.Errorf("expected ErrRuntimeClosed, got %v", err)
	}
	if _, err := runtime.CallFunction("print"); !errors.Is(err, ErrRuntimeClosed) {
		t.Errorf("expected ErrRuntimeClosed, got %v", err)
	}
}

func TestConfig(t *testing.T) {
	config := RuntimeConfig{CPULimit: 5_000_000, MemoryLimit: 1 << 20}
	runtime, err := New(config)
	if err != nil {
		t.Fatal(err)
	}
	defer runtime.Close()

	if got := runtime.Config(); got.CPULimit != config.CPULimit || got.MemoryLimit != config.MemoryLimit {
		t.Errorf("Config() = %+v, want %+v", got, config)
	}
	if !strings.Contains(ErrLimitExceeded.Error(), "limit") {
		t.Error("unexpected ErrLimitExceeded text")
	}
}

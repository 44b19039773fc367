package lua

import (
	"sync"
	"testing"

	rt "github.com/arnodel/golua/runtime"
)

func TestHookTypeString(t *testing.T) {
	tests := []struct {
		hook     HookType
		expected string
		luaName  string
	}{
		{HookSetup, "setup", "setup"},
		{HookFrame, "frame", "frame"},
		{HookKey, "key", "on_key"},
		{HookMouse, "mouse", "on_mouse"},
		{HookTeardown, "teardown", "teardown"},
		{HookInvalid, "invalid", "invalid"},
		{HookType(99), "unknown", "unknown"},
	}

	for _, tt := range tests {
		if got := tt.hook.String(); got != tt.expected {
			t.Errorf("HookType(%d).String() = %q, want %q", tt.hook, got, tt.expected)
		}
		if got := tt.hook.LuaFunctionName(); got != tt.luaName {
			t.Errorf("HookType(%d).LuaFunctionName() = %q, want %q", tt.hook, got, tt.luaName)
		}
	}
}

func TestParseHookType(t *testing.T) {
	for _, h := range allHooks {
		got, err := ParseHookType(h.String())
		if err != nil || got != h {
			t.Errorf("ParseHookType(%q) = %v, %v", h.String(), got, err)
		}
	}
	if got, err := ParseHookType("draw_post"); err == nil || got != HookInvalid {
		t.Errorf("ParseHookType(draw_post) = %v, %v; want HookInvalid and error", got, err)
	}
}

func TestNewHookManagerWithNilRuntime(t *testing.T) {
	if _, err := NewHookManager(nil); err != ErrNilRuntime {
		t.Errorf("expected ErrNilRuntime, got %v", err)
	}
}

func newTestHooks(t *testing.T, code string) (*Runtime, *HookManager) {
	t.Helper()
	runtime := newTestRuntime(t)
	if code != "" {
		if _, err := runtime.ExecuteString("hooks", code); err != nil {
			t.Fatalf("failed to load hooks: %v", err)
		}
	}
	hm, err := NewHookManager(runtime)
	if err != nil {
		t.Fatalf("NewHookManager() error = %v", err)
	}
	return runtime, hm
}

func TestRegisterHook(t *testing.T) {
	_, hm := newTestHooks(t, `
		function my_frame() end
		not_a_function = 5
	`)

	if err := hm.RegisterHook(HookFrame, "my_frame"); err != nil {
		t.Fatalf("RegisterHook() error = %v", err)
	}
	if !hm.IsRegistered(HookFrame) || hm.GetRegisteredFunctionName(HookFrame) != "my_frame" {
		t.Error("frame hook not registered under my_frame")
	}

	if err := hm.RegisterHook(HookSetup, "missing"); err == nil {
		t.Error("expected error for missing function")
	}
	if err := hm.RegisterHook(HookSetup, "not_a_function"); err == nil {
		t.Error("expected error for non-function global")
	}

	hm.UnregisterHook(HookFrame)
	if hm.IsRegistered(HookFrame) {
		t.Error("hook still registered after UnregisterHook")
	}
	if hm.GetRegisteredFunctionName(HookFrame) != "" {
		t.Error("expected empty name for unregistered hook")
	}
}

func TestCallHookWithArguments(t *testing.T) {
	runtime, hm := newTestHooks(t, `
		function frame(dt, n) last = n * 10 + dt return last end
	`)
	hm.AutoRegisterHooks()

	result, err := hm.Call(HookFrame, rt.FloatValue(0.5), rt.IntValue(4))
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if got, ok := rt.ToFloat(result); !ok || got != 40.5 {
		t.Errorf("result = %v, want 40.5", result)
	}
	if got, ok := rt.ToFloat(runtime.GetGlobal("last")); !ok || got != 40.5 {
		t.Errorf("last = %v, want 40.5", runtime.GetGlobal("last"))
	}
}

func TestCallUnregisteredHook(t *testing.T) {
	_, hm := newTestHooks(t, "")
	result, err := hm.Call(HookTeardown)
	if err != nil || result != rt.NilValue {
		t.Errorf("Call() on unregistered hook = %v, %v; want nil, nil", result, err)
	}
}

func TestCallHookError(t *testing.T) {
	_, hm := newTestHooks(t, `function frame() error("bad frame") end`)
	hm.AutoRegisterHooks()

	if _, err := hm.Call(HookFrame); err == nil {
		t.Error("expected error from failing hook")
	}
}

func TestAutoRegisterHooks(t *testing.T) {
	_, hm := newTestHooks(t, `
		function setup(w, h) end
		function frame(dt, n) end
		function on_key(k, c, p) end
		teardown = "not a function"
	`)

	found := hm.AutoRegisterHooks()
	if len(found) != 3 {
		t.Errorf("found %v, want setup, frame and key", found)
	}
	for _, h := range []HookType{HookSetup, HookFrame, HookKey} {
		if !hm.IsRegistered(h) {
			t.Errorf("%s not registered", h)
		}
	}
	if hm.IsRegistered(HookMouse) || hm.IsRegistered(HookTeardown) {
		t.Error("mouse and teardown should not be registered")
	}
	if len(hm.RegisteredHooks()) != 3 {
		t.Errorf("RegisteredHooks() = %v", hm.RegisteredHooks())
	}

	hm.Clear()
	if len(hm.RegisteredHooks()) != 0 {
		t.Error("Clear() left hooks registered")
	}
}

func TestHookManagerConcurrency(t *testing.T) {
	_, hm := newTestHooks(t, `
		count = 0
		function frame() count = count + 1 end
	`)
	hm.AutoRegisterHooks()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if _, err := hm.Call(HookFrame); err != nil {
					t.Errorf("Call() error = %v", err)
					return
				}
				_ = hm.IsRegistered(HookFrame)
			}
		}()
	}
	wg.Wait()
}

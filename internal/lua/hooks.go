package lua

import (
	"fmt"
	"sync"

	rt "github.com/arnodel/golua/runtime"
)

// HookType identifies a scene callback.
type HookType int

const (
	// HookInvalid represents an invalid or unknown hook type.
	// This is returned by ParseHookType when parsing fails.
	HookInvalid HookType = iota

	// HookSetup is called once after the scene is loaded or reloaded,
	// with the frame width and height.
	HookSetup

	// HookFrame is called every logic tick with the elapsed seconds and
	// the tick number.
	HookFrame

	// HookKey is called for every key press and release with the key
	// name, the typed character and true for a press.
	HookKey

	// HookMouse is called for mouse button presses, releases and motion
	// with x, y, the button name and the event kind.
	HookMouse

	// HookTeardown is called once before the scene is unloaded.
	HookTeardown
)

// String returns the string representation of a HookType.
func (h HookType) String() string {
	switch h {
	case HookSetup:
		return "setup"
	case HookFrame:
		return "frame"
	case HookKey:
		return "key"
	case HookMouse:
		return "mouse"
	case HookTeardown:
		return "teardown"
	case HookInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// LuaFunctionName returns the global Lua function a scene defines for
// the hook.
func (h HookType) LuaFunctionName() string {
	switch h {
	case HookKey, HookMouse:
		return "on_" + h.String()
	default:
		return h.String()
	}
}

// ParseHookType parses a string into a HookType.
// Returns HookInvalid and an error if the string is not a valid hook type.
func ParseHookType(s string) (HookType, error) {
	switch s {
	case "setup":
		return HookSetup, nil
	case "frame":
		return HookFrame, nil
	case "key":
		return HookKey, nil
	case "mouse":
		return HookMouse, nil
	case "teardown":
		return HookTeardown, nil
	default:
		return HookInvalid, fmt.Errorf("unknown hook type: %s", s)
	}
}

// allHooks lists the hooks AutoRegisterHooks looks for.
var allHooks = []HookType{HookSetup, HookFrame, HookKey, HookMouse, HookTeardown}

// HookManager maps hook types to Lua functions and invokes them.
// It is safe for concurrent use.
type HookManager struct {
	runtime *Runtime
	hooks   map[HookType]string
	mu      sync.RWMutex
}

// NewHookManager creates a new HookManager for the given runtime.
func NewHookManager(runtime *Runtime) (*HookManager, error) {
	if runtime == nil {
		return nil, ErrNilRuntime
	}

	return &HookManager{
		runtime: runtime,
		hooks:   make(map[HookType]string),
	}, nil
}

// RegisterHook binds hookType to the global Lua function funcName.
func (hm *HookManager) RegisterHook(hookType HookType, funcName string) error {
	fn := hm.runtime.GetGlobal(funcName)
	if fn == rt.NilValue {
		return fmt.Errorf("Lua function %s not found", funcName)
	}
	if fn.Type() != rt.FunctionType {
		return fmt.Errorf("%s is not a function (type: %v)", funcName, fn.Type())
	}

	hm.mu.Lock()
	defer hm.mu.Unlock()
	hm.hooks[hookType] = funcName
	return nil
}

// UnregisterHook removes a hook registration.
func (hm *HookManager) UnregisterHook(hookType HookType) {
	hm.mu.Lock()
	defer hm.mu.Unlock()

	delete(hm.hooks, hookType)
}

// IsRegistered returns true if a hook is registered for the given type.
func (hm *HookManager) IsRegistered(hookType HookType) bool {
	hm.mu.RLock()
	defer hm.mu.RUnlock()

	_, ok := hm.hooks[hookType]
	return ok
}

// GetRegisteredFunctionName returns the function bound to hookType, or "".
func (hm *HookManager) GetRegisteredFunctionName(hookType HookType) string {
	hm.mu.RLock()
	defer hm.mu.RUnlock()

	return hm.hooks[hookType]
}

// Call invokes the function registered for hookType.
// It returns nil, nil if no hook is registered.
func (hm *HookManager) Call(hookType HookType, args ...rt.Value) (rt.Value, error) {
	hm.mu.RLock()
	funcName, ok := hm.hooks[hookType]
	hm.mu.RUnlock()

	if !ok {
		return rt.NilValue, nil
	}

	result, err := hm.runtime.CallFunction(funcName, args...)
	if err != nil {
		return rt.NilValue, fmt.Errorf("hook %s execution failed: %w", hookType, err)
	}
	return result, nil
}

// AutoRegisterHooks registers every hook whose conventional function
// (see LuaFunctionName) is defined, and returns them.
func (hm *HookManager) AutoRegisterHooks() []HookType {
	found := make([]HookType, 0, len(allHooks))
	for _, hookType := range allHooks {
		if hm.runtime.HasFunction(hookType.LuaFunctionName()) {
			found = append(found, hookType)
		}
	}

	hm.mu.Lock()
	for _, hookType := range found {
		hm.hooks[hookType] = hookType.LuaFunctionName()
	}
	hm.mu.Unlock()

	return found
}

// RegisteredHooks returns a list of all currently registered hook types.
func (hm *HookManager) RegisteredHooks() []HookType {
	hm.mu.RLock()
	defer hm.mu.RUnlock()

	hooks := make([]HookType, 0, len(hm.hooks))
	for hookType := range hm.hooks {
		hooks = append(hooks, hookType)
	}
	return hooks
}

// Clear removes all hook registrations.
func (hm *HookManager) Clear() {
	hm.mu.Lock()
	defer hm.mu.Unlock()

	hm.hooks = make(map[HookType]string)
}

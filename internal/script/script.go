// Package script hosts transactions whose apply and reverse effects are
// written in Lua.
//
// A Runtime owns a single Lua state. gopher-lua's LState is not
// goroutine-safe, so every call into the state is serialized through the
// runtime's mutex. A script is a chunk that returns a table with an
// apply function, a reverse function, and an optional describe function:
//
//	return {
//	    describe = function() return "increment counter" end,
//	    apply    = function() counter = (counter or 0) + 1 end,
//	    reverse  = function() counter = counter - 1 end,
//	}
//
// The loaded script adapts to the stack's Transaction interface; Lua
// errors surface as Go errors from Apply and Reverse.
package script

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// Common errors for script loading.
var (
	ErrRuntimeClosed = errors.New("script runtime is closed")
	ErrNotATable     = errors.New("script must return a table")
	ErrMissingApply  = errors.New("script table has no apply function")
	ErrMissingRevert = errors.New("script table has no reverse function")
)

// Runtime owns a sandboxed Lua state shared by its transactions.
type Runtime struct {
	mu     sync.Mutex
	L      *lua.LState
	closed bool
}

// NewRuntime creates a runtime with only safe Lua libraries opened.
func NewRuntime() *Runtime {
	L := lua.NewState(lua.Options{
		SkipOpenLibs: true,
	})

	// Base plus pure-computation libraries only. io, os, debug, and
	// package stay closed so scripts cannot reach outside the state.
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	return &Runtime{L: L}
}

// Close releases the Lua state. Transactions loaded from this runtime
// must not be used afterwards. Safe to call multiple times.
func (r *Runtime) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true
	r.L.Close()
}

// LoadFile loads a transaction script from a file. The transaction's
// fallback name is the file name without extension.
func (r *Runtime) LoadFile(path string) (*Transaction, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrRuntimeClosed
	}

	base := r.L.GetTop()
	if err := r.L.DoFile(path); err != nil {
		r.L.SetTop(base)
		return nil, fmt.Errorf("loading script %s: %w", path, err)
	}
	return r.buildLocked(name, base)
}

// LoadString loads a transaction script from source text.
func (r *Runtime) LoadString(name, src string) (*Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrRuntimeClosed
	}

	base := r.L.GetTop()
	if err := r.L.DoString(src); err != nil {
		r.L.SetTop(base)
		return nil, fmt.Errorf("loading script %s: %w", name, err)
	}
	return r.buildLocked(name, base)
}

// buildLocked consumes the script's return value from the stack and
// validates the transaction table.
func (r *Runtime) buildLocked(name string, base int) (*Transaction, error) {
	if r.L.GetTop() <= base {
		return nil, fmt.Errorf("script %s: %w", name, ErrNotATable)
	}
	ret := r.L.Get(-1)
	r.L.SetTop(base)

	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("script %s: %w", name, ErrNotATable)
	}

	apply, ok := tbl.RawGetString("apply").(*lua.LFunction)
	if !ok {
		return nil, fmt.Errorf("script %s: %w", name, ErrMissingApply)
	}
	reverse, ok := tbl.RawGetString("reverse").(*lua.LFunction)
	if !ok {
		return nil, fmt.Errorf("script %s: %w", name, ErrMissingRevert)
	}

	txn := &Transaction{
		runtime: r,
		name:    name,
		apply:   apply,
		reverse: reverse,
	}
	if describe, ok := tbl.RawGetString("describe").(*lua.LFunction); ok {
		txn.describe = describe
	}
	return txn, nil
}

// Global returns the current value of a global in the runtime's state.
// Intended for hosts inspecting script-maintained state.
func (r *Runtime) Global(name string) lua.LValue {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return lua.LNil
	}
	return r.L.GetGlobal(name)
}

// Transaction is a reversible unit of work implemented in Lua.
// It satisfies the stack's Transaction interface.
type Transaction struct {
	runtime  *Runtime
	name     string
	apply    *lua.LFunction
	reverse  *lua.LFunction
	describe *lua.LFunction
}

// Name returns the transaction's script name.
func (t *Transaction) Name() string {
	return t.name
}

// Apply runs the script's apply function.
func (t *Transaction) Apply() error {
	if err := t.runtime.call(t.apply); err != nil {
		return fmt.Errorf("script %s apply: %w", t.name, err)
	}
	return nil
}

// Reverse runs the script's reverse function.
func (t *Transaction) Reverse() error {
	if err := t.runtime.call(t.reverse); err != nil {
		return fmt.Errorf("script %s reverse: %w", t.name, err)
	}
	return nil
}

// Describe runs the script's describe function if it has one. On error
// or a non-string result the script name is returned.
func (t *Transaction) Describe() string {
	if t.describe == nil {
		return t.name
	}

	r := t.runtime
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return t.name
	}

	r.L.Push(t.describe)
	if err := r.L.PCall(0, 1, nil); err != nil {
		return t.name
	}
	ret := r.L.Get(-1)
	r.L.Pop(1)

	if s, ok := ret.(lua.LString); ok {
		return string(s)
	}
	return t.name
}

// call invokes a Lua function with no arguments or results.
func (r *Runtime) call(fn *lua.LFunction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRuntimeClosed
	}

	r.L.Push(fn)
	return r.L.PCall(0, 0, nil)
}

package script

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/nativeui-go/nativeui/pkg/bridge"
)

// ErrClosed is returned after Close.
var ErrClosed = errors.New("script runtime closed")

// Config configures a Runtime.
type Config struct {
	// Logger for operational diagnostics (optional).
	Logger *slog.Logger

	// Output receives print output (default: the Lua default, stdout).
	Output io.Writer

	// OnError receives errors raised by Lua callbacks (optional).
	OnError func(err error)
}

// Runtime is a sandboxed Lua state bound to a session.
type Runtime struct {
	L       *lua.LState
	session *bridge.Session
	config  Config

	entities map[*bridge.Entity]*lua.LUserData
	closed   bool
}

// New creates a Runtime for session.
func New(session *bridge.Session, config Config) *Runtime {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)

	r := &Runtime{
		L:        L,
		session:  session,
		config:   config,
		entities: make(map[*bridge.Entity]*lua.LUserData),
	}
	if config.Output != nil {
		L.SetGlobal("print", L.NewFunction(r.print))
	}
	r.register()
	return r
}

// openSafeLibraries opens only the Lua libraries without host access.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// DoFile runs a Lua file.
func (r *Runtime) DoFile(path string) error {
	if r.closed {
		return ErrClosed
	}
	return r.doWithRecovery(func() error {
		return r.L.DoFile(path)
	})
}

// DoString runs a chunk of Lua code.
func (r *Runtime) DoString(code string) error {
	if r.closed {
		return ErrClosed
	}
	return r.doWithRecovery(func() error {
		return r.L.DoString(code)
	})
}

// Close releases the Lua state. It does not close the session.
func (r *Runtime) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.L.Close()
}

// doWithRecovery executes a function with panic recovery.
func (r *Runtime) doWithRecovery(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("lua panic: %v", rec)
		}
	}()
	return fn()
}

// invoke calls a Lua callback. Errors are logged and passed to OnError.
func (r *Runtime) invoke(fn *lua.LFunction, args ...lua.LValue) {
	if fn == nil || r.closed {
		return
	}
	err := r.doWithRecovery(func() error {
		return r.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, args...)
	})
	if err == nil {
		return
	}
	if r.config.Logger != nil {
		r.config.Logger.Error("lua callback failed", "error", err)
	}
	if r.config.OnError != nil {
		r.config.OnError(err)
	}
}

func (r *Runtime) print(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, n)
	for i := 1; i <= n; i++ {
		parts[i-1] = L.ToStringMeta(L.Get(i)).String()
	}
	fmt.Fprintln(r.config.Output, strings.Join(parts, "\t"))
	return 0
}

// Package nativesim provides an in-memory native UI runtime.
//
// The runtime speaks the bridge wire protocol. It can be used directly as a
// transport.Sender, delivering replies step by step to an attached handler,
// or served over a framed connection. Every request is answered with a
// completion followed by the processed acknowledgement.
package nativesim

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/nativeui-go/nativeui/pkg/transport"
	"github.com/nativeui-go/nativeui/pkg/wire"
)

// Config configures a Runtime.
type Config struct {
	// Platform is reported by Platform (default: "sim").
	Platform string

	// Logger for debug output (optional).
	Logger *slog.Logger
}

// Runtime is a simulated native widget runtime. It is safe for concurrent use.
type Runtime struct {
	config Config

	mu        sync.Mutex
	next      wire.Handle
	widgets   map[wire.Handle]*widget
	screen    wire.Handle
	resources map[string]wire.Handle
	faults    map[wire.Operation][]wire.ResultCode
	requests  []wire.Request

	// Direct delivery.
	handler transport.Handler
	queue   []func()
	closed  bool

	// Served delivery.
	out *transport.Framer
	wmu sync.Mutex
}

// New creates an empty runtime.
func New(config Config) *Runtime {
	if config.Platform == "" {
		config.Platform = "sim"
	}
	return &Runtime{
		config:    config,
		next:      1,
		widgets:   make(map[wire.Handle]*widget),
		resources: make(map[string]wire.Handle),
		faults:    make(map[wire.Operation][]wire.ResultCode),
	}
}

// Platform returns the platform name the runtime reports.
func (r *Runtime) Platform() string {
	return r.config.Platform
}

// FailNext makes the next request of op fail with code.
func (r *Runtime) FailNext(op wire.Operation, code wire.ResultCode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.faults[op] = append(r.faults[op], code)
}

// Widget returns a snapshot of the widget with handle h.
func (r *Runtime) Widget(h wire.Handle) (Widget, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.widgets[h]
	if !ok {
		return Widget{}, false
	}
	return w.snapshot(), true
}

// Lookup returns the widget created for entityID.
func (r *Runtime) Lookup(entityID string) (Widget, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.widgets {
		if w.entityID == entityID {
			return w.snapshot(), true
		}
	}
	return Widget{}, false
}

// Len returns the number of live widgets.
func (r *Runtime) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.widgets)
}

// Screen returns the handle of the shown screen, or 0.
func (r *Runtime) Screen() wire.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.screen
}

// Requests returns every request processed so far, in order.
func (r *Runtime) Requests() []wire.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.requests)
}

// Operations returns the operation of every processed request, in order.
func (r *Runtime) Operations() []wire.Operation {
	r.mu.Lock()
	defer r.mu.Unlock()
	ops := make([]wire.Operation, len(r.requests))
	for i := range r.requests {
		ops[i] = r.requests[i].Operation
	}
	return ops
}

// Process applies req and returns its completion.
func (r *Runtime) Process(req *wire.Request) *wire.Completion {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.process(req)
}

func (r *Runtime) process(req *wire.Request) *wire.Completion {
	r.requests = append(r.requests, *req)

	c := &wire.Completion{CallID: req.CallID}
	if err := req.Validate(); err != nil {
		r.debugLog("process: invalid request", "callID", req.CallID, "error", err)
		return failed(c, wire.ResultError)
	}
	if code, ok := r.fault(req.Operation); ok {
		return failed(c, code)
	}

	switch req.Operation {
	case wire.OpCreate:
		return r.create(c, req)
	case wire.OpGetProperty:
		value, code := r.getProperty(req.Widget, req.Property)
		if code != wire.ResultOK {
			return failed(c, code)
		}
		c.Kind = wire.CompletionSuccess
		c.Value = value
		return c
	}

	var code wire.ResultCode
	switch req.Operation {
	case wire.OpDestroy:
		code = r.destroy(req.Widget)
	case wire.OpAddChild:
		code = r.insert(req.Parent, req.Child, -1)
	case wire.OpInsertChild:
		code = r.insert(req.Parent, req.Child, req.Index)
	case wire.OpRemoveChild:
		code = r.remove(req.Parent, req.Widget)
	case wire.OpSetProperty:
		code = r.setProperty(req.Widget, req.Property, req.Value)
	case wire.OpScreenShow:
		code = r.show(req.Widget)
	case wire.OpStackPush:
		code = r.push(req.Widget, req.Child)
	case wire.OpStackPop:
		code = r.pop(req.Widget)
	case wire.OpModalShow:
		code = r.modal(req.Widget, true)
	case wire.OpModalHide:
		code = r.modal(req.Widget, false)
	case wire.OpRegisterListener:
		code = r.listen(req.Widget, req.EventType)
	default:
		code = wire.ResultError
	}
	if code != wire.ResultOK {
		return failed(c, code)
	}
	c.Kind = wire.CompletionSuccess
	return c
}

func failed(c *wire.Completion, code wire.ResultCode) *wire.Completion {
	c.Kind = wire.CompletionError
	c.Code = code
	return c
}

func (r *Runtime) fault(op wire.Operation) (wire.ResultCode, bool) {
	codes := r.faults[op]
	if len(codes) == 0 {
		return 0, false
	}
	r.faults[op] = codes[1:]
	return codes[0], true
}

func (r *Runtime) create(c *wire.Completion, req *wire.Request) *wire.Completion {
	k, ok := widgetTypes[req.WidgetType]
	if !ok {
		return failed(c, wire.ResultInvalidTypeName)
	}
	h := r.next
	r.next++
	r.widgets[h] = &widget{
		handle:    h,
		typ:       req.WidgetType,
		kind:      k,
		entityID:  req.EntityID,
		props:     make(map[string]string),
		listeners: make(map[wire.EventType]struct{}),
	}
	r.debugLog("create", "type", req.WidgetType, "entity", req.EntityID, "handle", int32(h))

	c.Kind = wire.CompletionCreated
	c.EntityID = req.EntityID
	c.Handle = h
	return c
}

// destroy removes h and its subtree.
func (r *Runtime) destroy(h wire.Handle) wire.ResultCode {
	w, ok := r.widgets[h]
	if !ok {
		return wire.ResultInvalidHandle
	}
	if p, ok := r.widgets[w.parent]; ok {
		p.children = slices.DeleteFunc(p.children, func(c wire.Handle) bool { return c == h })
	}
	r.drop(w)
	return wire.ResultOK
}

func (r *Runtime) drop(w *widget) {
	for _, c := range w.children {
		if cw, ok := r.widgets[c]; ok {
			r.drop(cw)
		}
	}
	if r.screen == w.handle {
		r.screen = 0
	}
	delete(r.widgets, w.handle)
}

func (r *Runtime) insert(parent, child wire.Handle, index int32) wire.ResultCode {
	p, ok := r.widgets[parent]
	if !ok {
		return wire.ResultInvalidHandle
	}
	c, ok := r.widgets[child]
	if !ok || parent == child {
		return wire.ResultInvalidHandle
	}
	if c.parent != 0 {
		return wire.ResultError
	}
	if !p.accepts(c) {
		return wire.ResultInvalidLayout
	}
	if index > int32(len(p.children)) {
		return wire.ResultInvalidIndex
	}
	if index < 0 {
		p.children = append(p.children, child)
	} else {
		p.children = slices.Insert(p.children, int(index), child)
	}
	c.parent = parent
	return wire.ResultOK
}

func (r *Runtime) remove(parent, child wire.Handle) wire.ResultCode {
	c, ok := r.widgets[child]
	if !ok {
		return wire.ResultInvalidHandle
	}
	if c.parent == 0 || (parent.Valid() && c.parent != parent) {
		return wire.ResultError
	}
	if p, ok := r.widgets[c.parent]; ok {
		p.children = slices.DeleteFunc(p.children, func(h wire.Handle) bool { return h == child })
	}
	c.parent = 0
	return wire.ResultOK
}

func (r *Runtime) setProperty(h wire.Handle, name, value string) wire.ResultCode {
	w, ok := r.widgets[h]
	if !ok {
		return wire.ResultInvalidHandle
	}
	if slices.Contains(boolProperties, name) && value != "true" && value != "false" {
		return wire.ResultInvalidPropertyValue
	}
	w.props[name] = value
	return wire.ResultOK
}

func (r *Runtime) getProperty(h wire.Handle, name string) (string, wire.ResultCode) {
	w, ok := r.widgets[h]
	if !ok {
		return "", wire.ResultInvalidHandle
	}
	v, ok := w.props[name]
	if !ok {
		return "", wire.ResultInvalidPropertyName
	}
	return v, wire.ResultOK
}

func (r *Runtime) show(h wire.Handle) wire.ResultCode {
	w, ok := r.widgets[h]
	if !ok {
		return wire.ResultInvalidHandle
	}
	if !w.kind.isScreen() {
		return wire.ResultInvalidScreen
	}
	r.screen = h
	return wire.ResultOK
}

func (r *Runtime) push(stack, screen wire.Handle) wire.ResultCode {
	s, ok := r.widgets[stack]
	if !ok {
		return wire.ResultInvalidHandle
	}
	c, ok := r.widgets[screen]
	if !ok {
		return wire.ResultInvalidHandle
	}
	if s.kind != kindStackScreen || !c.kind.isScreen() {
		return wire.ResultInvalidScreen
	}
	s.stack = append(s.stack, screen)
	return wire.ResultOK
}

func (r *Runtime) pop(stack wire.Handle) wire.ResultCode {
	s, ok := r.widgets[stack]
	if !ok {
		return wire.ResultInvalidHandle
	}
	if s.kind != kindStackScreen {
		return wire.ResultInvalidScreen
	}
	if len(s.stack) == 0 {
		return wire.ResultError
	}
	s.stack = s.stack[:len(s.stack)-1]
	return wire.ResultOK
}

func (r *Runtime) modal(h wire.Handle, shown bool) wire.ResultCode {
	w, ok := r.widgets[h]
	if !ok {
		return wire.ResultInvalidHandle
	}
	if w.kind != kindDialog {
		return wire.ResultError
	}
	w.shown = shown
	return wire.ResultOK
}

func (r *Runtime) listen(h wire.Handle, typ wire.EventType) wire.ResultCode {
	w, ok := r.widgets[h]
	if !ok {
		return wire.ResultInvalidHandle
	}
	w.listeners[typ] = struct{}{}
	return wire.ResultOK
}

// debugLog logs a debug message if logging is enabled.
func (r *Runtime) debugLog(msg string, args ...any) {
	if r.config.Logger != nil {
		r.config.Logger.Debug(msg, args...)
	}
}

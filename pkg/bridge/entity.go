package bridge

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/nativeui-go/nativeui/pkg/correlation"
	"github.com/nativeui-go/nativeui/pkg/events"
	"github.com/nativeui-go/nativeui/pkg/wire"
)

// Properties routed through the resource loader by SetProperties.
var resourceProperties = []string{"image", "icon"}

// command is a deferred operation waiting in an entity queue.
type command struct {
	op   wire.Operation
	refs []string
	run  func(onProcessed func()) error
	fail func(error)
}

// Entity is a script-side proxy for one native widget.
//
// Operations never block. Until the entity is created, and while an entity
// it references has no handle, operations wait in the entity's queue and
// run one at a time as the transport reports the previous request
// processed.
type Entity struct {
	s          *Session
	id         string
	widgetType string
	root       bool

	state  State
	handle wire.Handle

	queue    []*command
	inFlight bool
	flight   uint64
}

// ID returns the entity id.
func (e *Entity) ID() string { return e.id }

// Type returns the widget type name.
func (e *Entity) Type() string { return e.widgetType }

// State returns the lifecycle state.
func (e *Entity) State() State { return e.state }

// Handle returns the native handle, or 0 before creation.
func (e *Entity) Handle() wire.Handle { return e.handle }

// IsContainerRoot reports whether the entity can be shown as a screen.
func (e *Entity) IsContainerRoot() bool { return e.root }

// QueueLen returns the number of queued operations.
func (e *Entity) QueueLen() int { return len(e.queue) }

// Create asks the native side to create the widget. Queued operations start
// once the handle is known.
func (e *Entity) Create(cb Callback) error {
	if err := e.usable(); err != nil {
		cb.fail(err)
		return err
	}
	if e.state != StateUncreated {
		err := fmt.Errorf("%w: %s is %s", ErrAlreadyCreated, e.id, e.state)
		cb.fail(err)
		return err
	}

	e.setState(StateCreating, "create requested")
	e.inFlight = true
	req := &wire.Request{
		Operation:  wire.OpCreate,
		EntityID:   e.id,
		WidgetType: e.widgetType,
	}
	err := e.s.send(e, req, correlation.Key{Op: wire.OpCreate, Target: e.id},
		func(c *wire.Completion) { e.onCreateComplete(c, cb) },
		func(err error) { e.createFailed(err, cb) },
		e.processedFn(),
	)
	if err != nil {
		e.inFlight = false
		e.createFailed(err, cb)
		return err
	}
	return nil
}

func (e *Entity) onCreateComplete(c *wire.Completion, cb Callback) {
	switch {
	case c.Kind == wire.CompletionError:
		e.createFailed(e.nativeError(wire.OpCreate, c), cb)
		return
	case c.Kind != wire.CompletionCreated:
		e.createFailed(&ProtocolError{CallID: c.CallID, Reason: "create completed without a handle"}, cb)
		return
	case !c.Handle.Valid():
		e.createFailed(&NativeError{Op: wire.OpCreate, CallID: c.CallID, EntityID: e.id, Code: wire.ResultCode(c.Handle)}, cb)
		return
	}

	if err := e.s.registry.Register(e.id, c.Handle); err != nil {
		e.createFailed(err, cb)
		return
	}
	e.handle = c.Handle
	e.setState(StateCreated, "handle "+c.Handle.String())

	cb.succeed(Reply{CallID: c.CallID, EntityID: e.id, Handle: c.Handle, Code: wire.ResultOK})
	e.advance()
	e.s.registered(e)
}

func (e *Entity) createFailed(err error, cb Callback) {
	if e.state == StateCreating {
		e.setState(StateUncreated, err.Error())
	}
	e.s.debugLog("Create: failed", "entity", e.id, "error", err)
	cb.fail(err)
}

// SetProperty sets a native property. name and value are passed through
// untranslated.
func (e *Entity) SetProperty(name, value string, cb Callback) error {
	return e.submit(wire.OpSetProperty, nil, cb, func(onProcessed func()) error {
		req := &wire.Request{
			Operation: wire.OpSetProperty,
			Widget:    e.handle,
			Property:  name,
			Value:     value,
		}
		key := correlation.Key{Op: wire.OpSetProperty, Target: e.id, Detail: []string{name, value}}
		return e.call(req, key, cb, onProcessed)
	})
}

// SetProperties translates and sets each entry of props in key order. Image
// properties go through SetImage when a resource loader is configured. cb
// runs once per property.
func (e *Entity) SetProperties(props map[string]string, cb Callback) error {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var errs []error
	for _, k := range keys {
		name := e.s.translator.Name(k)
		value := e.s.translator.Value(props[k])
		var err error
		if e.s.config.Resources != nil && slices.Contains(resourceProperties, name) {
			err = e.SetImage(name, value, cb)
		} else {
			err = e.SetProperty(name, value, cb)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SetImage loads the resource at path and sets property to its handle.
func (e *Entity) SetImage(property, path string, cb Callback) error {
	if err := e.usable(); err != nil {
		cb.fail(err)
		return err
	}
	loader := e.s.config.Resources
	if loader == nil {
		cb.fail(ErrNoResourceLoader)
		return ErrNoResourceLoader
	}
	loader.LoadResource(path, e.id+"-"+property, func(_ string, h wire.Handle, err error) {
		if err != nil {
			cb.fail(fmt.Errorf("load %s: %w", path, err))
			return
		}
		_ = e.SetProperty(property, h.String(), cb)
	})
	return nil
}

// GetProperty reads a native property. The value arrives in Reply.Value.
func (e *Entity) GetProperty(name string, cb Callback) error {
	return e.submit(wire.OpGetProperty, nil, cb, func(onProcessed func()) error {
		req := &wire.Request{
			Operation: wire.OpGetProperty,
			Widget:    e.handle,
			Property:  name,
		}
		key := correlation.Key{Op: wire.OpGetProperty, Target: e.id, Detail: []string{name}}
		return e.call(req, key, cb, onProcessed)
	})
}

// AddChild appends the entity childID to this entity's children.
func (e *Entity) AddChild(childID string, cb Callback) error {
	return e.submit(wire.OpAddChild, []string{childID}, cb, func(onProcessed func()) error {
		child, _ := e.s.registry.Resolve(childID)
		req := &wire.Request{
			Operation: wire.OpAddChild,
			Parent:    e.handle,
			Child:     child,
		}
		key := correlation.Key{Op: wire.OpAddChild, Target: e.id, Detail: []string{childID}}
		return e.call(req, key, cb, onProcessed)
	})
}

// InsertChild inserts the entity childID at index. An index of -1 appends.
func (e *Entity) InsertChild(childID string, index int32, cb Callback) error {
	if index < -1 {
		err := fmt.Errorf("%w: %d", wire.ErrInvalidIndex, index)
		cb.fail(err)
		return err
	}
	return e.submit(wire.OpInsertChild, []string{childID}, cb, func(onProcessed func()) error {
		child, _ := e.s.registry.Resolve(childID)
		req := &wire.Request{
			Operation: wire.OpInsertChild,
			Parent:    e.handle,
			Child:     child,
			Index:     index,
		}
		key := correlation.Key{
			Op:     wire.OpInsertChild,
			Target: e.id,
			Detail: []string{childID, strconv.Itoa(int(index))},
		}
		return e.call(req, key, cb, onProcessed)
	})
}

// RemoveChild detaches the entity childID from this entity.
func (e *Entity) RemoveChild(childID string, cb Callback) error {
	return e.submit(wire.OpRemoveChild, []string{childID}, cb, func(onProcessed func()) error {
		child, _ := e.s.registry.Resolve(childID)
		req := &wire.Request{
			Operation: wire.OpRemoveChild,
			Widget:    child,
			Parent:    e.handle,
		}
		key := correlation.Key{Op: wire.OpRemoveChild, Target: e.id, Detail: []string{childID}}
		return e.call(req, key, cb, onProcessed)
	})
}

// Show displays the entity as the top-level screen. Entities that are not
// container roots are rejected without contacting the native side.
func (e *Entity) Show(cb Callback) error {
	if !e.root {
		err := fmt.Errorf("%w: %s (%s)", ErrNotContainerRoot, e.id, e.widgetType)
		cb.fail(err)
		return err
	}
	return e.simple(wire.OpScreenShow, cb)
}

// AttachTo appends this entity to the children of parentID.
func (e *Entity) AttachTo(parentID string, cb Callback) error {
	return e.submit(wire.OpAddChild, []string{parentID}, cb, func(onProcessed func()) error {
		parent, _ := e.s.registry.Resolve(parentID)
		req := &wire.Request{
			Operation: wire.OpAddChild,
			Parent:    parent,
			Child:     e.handle,
		}
		key := correlation.Key{Op: wire.OpAddChild, Target: parentID, Detail: []string{e.id}}
		return e.call(req, key, cb, onProcessed)
	})
}

// AddEventListener binds l to events of typ on this entity. The binding is
// made when the registration is sent and dropped again if the native side
// rejects it.
func (e *Entity) AddEventListener(typ wire.EventType, l events.Listener, cb Callback) error {
	return e.submit(wire.OpRegisterListener, nil, cb, func(onProcessed func()) error {
		b := e.s.events.Register(e.handle, typ, l)
		req := &wire.Request{
			Operation: wire.OpRegisterListener,
			Widget:    e.handle,
			EventType: typ,
		}
		key := correlation.Key{Op: wire.OpRegisterListener, Target: e.id, Detail: []string{string(typ)}}
		err := e.call(req, key, Callback{
			OnSuccess: cb.OnSuccess,
			OnError: func(err error) {
				b.Remove()
				cb.fail(err)
			},
		}, onProcessed)
		if err != nil {
			b.Remove()
		}
		return err
	})
}

// PushScreen pushes the entity screenID onto this stack screen.
func (e *Entity) PushScreen(screenID string, cb Callback) error {
	return e.submit(wire.OpStackPush, []string{screenID}, cb, func(onProcessed func()) error {
		screen, _ := e.s.registry.Resolve(screenID)
		req := &wire.Request{
			Operation: wire.OpStackPush,
			Widget:    e.handle,
			Child:     screen,
		}
		key := correlation.Key{Op: wire.OpStackPush, Target: e.id, Detail: []string{screenID}}
		return e.call(req, key, cb, onProcessed)
	})
}

// PopScreen pops the top screen of this stack screen.
func (e *Entity) PopScreen(cb Callback) error {
	return e.simple(wire.OpStackPop, cb)
}

// ShowDialog shows this entity as a modal dialog.
func (e *Entity) ShowDialog(cb Callback) error {
	return e.simple(wire.OpModalShow, cb)
}

// HideDialog hides this modal dialog.
func (e *Entity) HideDialog(cb Callback) error {
	return e.simple(wire.OpModalHide, cb)
}

// Destroy destroys the native widget and tears the entity down: its handle
// is unregistered, its listeners are dropped and queued operations fail
// with ErrEntityDestroyed. An entity that was never created is torn down
// without contacting the native side.
func (e *Entity) Destroy(cb Callback) error {
	if err := e.usable(); err != nil {
		cb.fail(err)
		return err
	}
	if e.state == StateUncreated {
		e.teardown(ErrEntityDestroyed)
		cb.succeed(Reply{EntityID: e.id, Code: wire.ResultOK})
		return nil
	}
	return e.submit(wire.OpDestroy, nil, cb, func(onProcessed func()) error {
		req := &wire.Request{
			Operation: wire.OpDestroy,
			Widget:    e.handle,
		}
		return e.s.send(e, req, correlation.Key{Op: wire.OpDestroy, Target: e.id},
			func(c *wire.Completion) {
				if c.Kind == wire.CompletionError || !c.Code.IsSuccess() {
					cb.fail(e.nativeError(wire.OpDestroy, c))
					return
				}
				h := e.handle
				e.teardown(ErrEntityDestroyed)
				cb.succeed(Reply{CallID: c.CallID, EntityID: e.id, Handle: h, Code: c.Code})
			},
			cb.fail,
			onProcessed,
		)
	})
}

// simple submits an operation that only names this entity's widget.
func (e *Entity) simple(op wire.Operation, cb Callback) error {
	return e.submit(op, nil, cb, func(onProcessed func()) error {
		req := &wire.Request{Operation: op, Widget: e.handle}
		return e.call(req, correlation.Key{Op: op, Target: e.id}, cb, onProcessed)
	})
}

// submit runs a command now if the entity is created and every referenced
// entity has a handle, and queues it otherwise.
func (e *Entity) submit(op wire.Operation, refs []string, cb Callback, run func(onProcessed func()) error) error {
	if err := e.usable(); err != nil {
		cb.fail(err)
		return err
	}

	if e.state == StateCreated && e.resolved(refs) {
		if err := run(nil); err != nil {
			cb.fail(err)
			return err
		}
		return nil
	}

	e.queue = append(e.queue, &command{op: op, refs: refs, run: run, fail: cb.fail})
	e.s.debugLog("queued", "entity", e.id, "op", op.String(), "queue", len(e.queue))
	e.advance()
	return nil
}

// advance starts queued commands until one is in flight, the head waits on
// an unresolved reference or the queue is empty.
func (e *Entity) advance() {
	for e.state == StateCreated && !e.inFlight && len(e.queue) > 0 {
		head := e.queue[0]
		if !e.resolved(head.refs) {
			return
		}
		e.queue[0] = nil
		e.queue = e.queue[1:]

		e.inFlight = true
		if err := head.run(e.processedFn()); err != nil {
			e.inFlight = false
			e.s.debugLog("advance: send failed", "entity", e.id, "op", head.op.String(), "error", err)
			head.fail(err)
		}
	}
}

// processedFn returns the processed callback for the next in-flight
// request. Callbacks of earlier requests are ignored.
func (e *Entity) processedFn() func() {
	e.flight++
	token := e.flight
	return func() {
		if token != e.flight || !e.inFlight {
			return
		}
		e.inFlight = false
		e.advance()
	}
}

func (e *Entity) resolved(refs []string) bool {
	for _, id := range refs {
		if _, ok := e.s.registry.Resolve(id); !ok {
			return false
		}
	}
	return true
}

// call sends req and completes cb with the native result.
func (e *Entity) call(req *wire.Request, key correlation.Key, cb Callback, onProcessed func()) error {
	op := req.Operation
	return e.s.send(e, req, key, func(c *wire.Completion) {
		if c.Kind == wire.CompletionError || !c.Code.IsSuccess() {
			cb.fail(e.nativeError(op, c))
			return
		}
		cb.succeed(Reply{
			CallID:   c.CallID,
			EntityID: e.id,
			Handle:   e.handle,
			Code:     c.Code,
			Value:    c.Value,
		})
	}, cb.fail, onProcessed)
}

func (e *Entity) nativeError(op wire.Operation, c *wire.Completion) error {
	code := c.Code
	if code.IsSuccess() {
		code = wire.ResultError
	}
	return &NativeError{Op: op, CallID: c.CallID, EntityID: e.id, Code: code}
}

func (e *Entity) usable() error {
	if e.s.closed {
		return ErrSessionClosed
	}
	if e.state == StateDestroyed {
		return fmt.Errorf("%w: %s", ErrEntityDestroyed, e.id)
	}
	return nil
}

// teardown releases everything the session holds for the entity and fails
// its queued operations with reason.
func (e *Entity) teardown(reason error) {
	if e.state == StateDestroyed {
		return
	}
	if e.handle.Valid() {
		n := e.s.events.RemoveHandle(e.handle)
		e.s.debugLog("teardown: listeners removed", "entity", e.id, "count", n)
	}
	e.s.registry.Unregister(e.id)
	e.s.remove(e)

	queue := e.queue
	e.queue = nil
	e.inFlight = false
	e.flight++
	e.setState(StateDestroyed, reason.Error())

	for _, cmd := range queue {
		cmd.fail(fmt.Errorf("%w: %s %s", reason, cmd.op, e.id))
	}
	e.s.dropReferences(e.id, reason)
}

func (e *Entity) setState(to State, reason string) {
	from := e.state
	e.state = to
	e.s.logState(e, from, to, reason)
}

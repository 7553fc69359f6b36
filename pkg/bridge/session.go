package bridge

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/nativeui-go/nativeui/pkg/attrs"
	"github.com/nativeui-go/nativeui/pkg/correlation"
	"github.com/nativeui-go/nativeui/pkg/events"
	"github.com/nativeui-go/nativeui/pkg/log"
	"github.com/nativeui-go/nativeui/pkg/registry"
	"github.com/nativeui-go/nativeui/pkg/transport"
	"github.com/nativeui-go/nativeui/pkg/wire"
)

// ResourceLoader loads a resource (such as an image) on the native side and
// reports the handle it was assigned.
type ResourceLoader interface {
	LoadResource(path, id string, done func(id string, h wire.Handle, err error))
}

// Config configures a Session.
type Config struct {
	// Logger for operational diagnostics (optional).
	Logger *slog.Logger

	// ProtocolLogger receives entity state changes and protocol errors (optional).
	ProtocolLogger log.Logger

	// Translator maps attribute names and values in SetProperties and
	// create params. Defaults to attrs.Default().
	Translator attrs.Translator

	// Resources loads images for SetImage (optional).
	Resources ResourceLoader

	// SessionID tags protocol log events. Generated when empty.
	SessionID string
}

// DefaultConfig returns a Config with the built-in attribute table.
func DefaultConfig() Config {
	return Config{
		Translator: attrs.Default(),
	}
}

// Reply is the outcome of a successful operation.
type Reply struct {
	CallID   string
	EntityID string
	Handle   wire.Handle
	Code     wire.ResultCode
	Value    string
}

// Callback receives the outcome of one operation. Either field may be nil.
type Callback struct {
	OnSuccess func(Reply)
	OnError   func(error)
}

func (cb Callback) succeed(r Reply) {
	if cb.OnSuccess != nil {
		cb.OnSuccess(r)
	}
}

func (cb Callback) fail(err error) {
	if cb.OnError != nil {
		cb.OnError(err)
	}
}

// Compile-time interface satisfaction check.
var _ transport.Handler = (*Session)(nil)

// Session is the script-side end of the bridge.
type Session struct {
	sender     transport.Sender
	config     Config
	logger     *slog.Logger
	translator attrs.Translator

	registry *registry.Registry
	calls    *correlation.Table
	events   *events.Dispatcher

	entities map[string]*Entity
	live     []*Entity
	counter  int
	closed   bool
}

// NewSession creates a session that sends requests through sender.
func NewSession(sender transport.Sender, config Config) *Session {
	if config.SessionID == "" {
		config.SessionID = uuid.NewString()
	}
	translator := config.Translator
	if translator == nil {
		translator = attrs.Default()
	}
	return &Session{
		sender:     sender,
		config:     config,
		logger:     config.Logger,
		translator: translator,
		registry:   registry.New(),
		calls:      correlation.NewTable(),
		events:     events.NewDispatcher(),
		entities:   make(map[string]*Entity),
	}
}

// ID returns the session ID.
func (s *Session) ID() string {
	return s.config.SessionID
}

// EntityOption configures a new entity.
type EntityOption func(*Entity)

// WithContainerRoot overrides whether the entity can be shown as a screen.
// By default Screen, TabScreen and StackScreen are container roots.
func WithContainerRoot(root bool) EntityOption {
	return func(e *Entity) {
		e.root = root
	}
}

// NewEntity creates an uncreated entity. An empty id is replaced by a
// generated one.
func (s *Session) NewEntity(widgetType, id string, opts ...EntityOption) (*Entity, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	if id == "" {
		id = s.nextID(widgetType)
	}
	if _, ok := s.entities[id]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateEntity, id)
	}

	e := &Entity{
		s:          s,
		id:         id,
		widgetType: widgetType,
		root:       attrs.IsContainerRoot(widgetType),
	}
	for _, opt := range opts {
		opt(e)
	}
	s.entities[id] = e
	s.live = append(s.live, e)
	return e, nil
}

// Create creates an entity, queues its translated params as properties and
// sends the create request. cb receives the create outcome.
func (s *Session) Create(widgetType, id string, params map[string]string, cb Callback) (*Entity, error) {
	e, err := s.NewEntity(widgetType, id)
	if err != nil {
		cb.fail(err)
		return nil, err
	}
	if len(params) > 0 {
		e.SetProperties(params, Callback{OnError: func(err error) {
			s.debugLog("Create: initial property failed", "entity", e.id, "error", err)
		}})
	}
	if err := e.Create(cb); err != nil {
		return e, err
	}
	return e, nil
}

// Entity returns the live entity with the given id.
func (s *Session) Entity(id string) (*Entity, bool) {
	e, ok := s.entities[id]
	return e, ok
}

// Entities returns the live entities in creation order.
func (s *Session) Entities() []*Entity {
	return slices.Clone(s.live)
}

// Resolve returns the native handle of an entity id.
func (s *Session) Resolve(id string) (wire.Handle, bool) {
	return s.registry.Resolve(id)
}

// Pending returns the number of calls waiting for a completion.
func (s *Session) Pending() int {
	return s.calls.Pending()
}

// Listeners returns the number of bound event listeners.
func (s *Session) Listeners() int {
	return s.events.Count()
}

// WhenAllCreated runs fn once no create request is outstanding. If none is
// outstanding now, fn runs immediately.
func (s *Session) WhenAllCreated(fn func()) {
	s.calls.WhenIdle(wire.OpCreate, fn)
}

// HandleCompletion resolves the pending call named by c.
func (s *Session) HandleCompletion(c *wire.Completion) error {
	if err := c.Validate(); err != nil {
		s.logError(fmt.Sprintf("invalid completion: %v", err), "", nil)
		return err
	}

	var perr error
	ok := s.calls.Complete(c.CallID, func(entry correlation.Entry) {
		if c.Kind == wire.CompletionCreated && entry.Op != wire.OpCreate {
			perr = &ProtocolError{CallID: c.CallID, Reason: "created reply for " + entry.Op.String()}
		} else if c.Kind == wire.CompletionCreated && c.EntityID != "" && c.EntityID != entry.EntityID {
			perr = &ProtocolError{CallID: c.CallID, Reason: "created reply names " + c.EntityID + ", want " + entry.EntityID}
		}
		if perr != nil {
			s.logError(perr.Error(), entry.EntityID, nil)
			if entry.OnFail != nil {
				entry.OnFail(perr)
			}
			return
		}
		if entry.OnComplete != nil {
			entry.OnComplete(c)
		}
	})
	if !ok {
		s.debugLog("HandleCompletion: unknown call", "callID", c.CallID, "kind", c.Kind.String())
		s.logError("completion for unknown call "+c.CallID, c.EntityID, nil)
		return fmt.Errorf("%w: %s", ErrUnknownCall, c.CallID)
	}
	return perr
}

// OnCreated resolves a create call with the handle the native side assigned.
func (s *Session) OnCreated(callID, entityID string, h wire.Handle) error {
	return s.HandleCompletion(&wire.Completion{
		Kind:     wire.CompletionCreated,
		CallID:   callID,
		EntityID: entityID,
		Handle:   h,
	})
}

// OnSuccess resolves a call successfully.
func (s *Session) OnSuccess(callID string, code wire.ResultCode, value string) error {
	return s.HandleCompletion(&wire.Completion{
		Kind:   wire.CompletionSuccess,
		CallID: callID,
		Code:   code,
		Value:  value,
	})
}

// OnError resolves a call with a native error code.
func (s *Session) OnError(callID string, code wire.ResultCode) error {
	return s.HandleCompletion(&wire.Completion{
		Kind:   wire.CompletionError,
		CallID: callID,
		Code:   code,
	})
}

// HandleEvent delivers a widget event to its listeners and returns how
// many ran. Events nobody listens for are dropped.
func (s *Session) HandleEvent(ev *wire.Event) int {
	if err := ev.Validate(); err != nil {
		s.debugLog("HandleEvent: dropping invalid event", "handle", int32(ev.Handle), "error", err)
		return 0
	}
	n := s.events.Dispatch(*ev)
	if n == 0 {
		s.debugLog("HandleEvent: no listener", "handle", int32(ev.Handle), "type", string(ev.Type))
	}
	return n
}

// OnEvent delivers a widget event with up to three data arguments.
func (s *Session) OnEvent(h wire.Handle, typ wire.EventType, data ...int32) int {
	return s.HandleEvent(&wire.Event{Handle: h, Type: typ, Data: data})
}

// Close tears down every live entity, fails every pending call with
// ErrSessionClosed and closes the sender if it is an io.Closer.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	for _, e := range slices.Clone(s.live) {
		e.teardown(ErrSessionClosed)
	}
	for _, entry := range s.calls.Drain() {
		if entry.OnFail != nil {
			entry.OnFail(ErrSessionClosed)
		}
	}
	s.logSession("OPEN", "CLOSED")

	if c, ok := s.sender.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// send registers the call and hands the request to the sender. The entry is
// registered first so a completion delivered during Send finds it.
func (s *Session) send(e *Entity, req *wire.Request, key correlation.Key, onComplete func(*wire.Completion), onFail func(error), onProcessed func()) error {
	id, err := s.calls.Register(key, correlation.Entry{
		EntityID:   e.id,
		OnComplete: onComplete,
		OnFail:     onFail,
	})
	if err != nil {
		return err
	}
	req.MessageName = wire.MessageName
	req.CallID = id
	if err := s.sender.Send(req, onProcessed); err != nil {
		s.calls.Discard(id)
		s.logError(err.Error(), e.id, nil)
		return fmt.Errorf("send %s: %w", id, err)
	}
	return nil
}

// registered is called after an entity gets its handle. Queues blocked on
// that handle may proceed.
func (s *Session) registered(created *Entity) {
	for _, e := range slices.Clone(s.live) {
		if e != created {
			e.advance()
		}
	}
}

// dropReferences fails queued commands of live entities that name id and
// lets their queues move on.
func (s *Session) dropReferences(id string, reason error) {
	for _, e := range slices.Clone(s.live) {
		var dropped []*command
		e.queue = slices.DeleteFunc(e.queue, func(c *command) bool {
			if slices.Contains(c.refs, id) {
				dropped = append(dropped, c)
				return true
			}
			return false
		})
		if len(dropped) == 0 {
			continue
		}
		s.debugLog("teardown: references dropped", "entity", e.id, "target", id, "count", len(dropped))
		for _, c := range dropped {
			c.fail(fmt.Errorf("%w: %s %s references %s", reason, c.op, e.id, id))
		}
		if !s.closed {
			e.advance()
		}
	}
}

func (s *Session) remove(e *Entity) {
	delete(s.entities, e.id)
	if i := slices.Index(s.live, e); i >= 0 {
		s.live = slices.Delete(s.live, i, i+1)
	}
}

func (s *Session) nextID(widgetType string) string {
	for {
		id := "entity-" + widgetType + strconv.Itoa(s.counter)
		s.counter++
		if _, taken := s.entities[id]; !taken {
			return id
		}
	}
}

func (s *Session) logState(e *Entity, from, to State, reason string) {
	if s.config.ProtocolLogger == nil {
		return
	}
	s.config.ProtocolLogger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: s.config.SessionID,
		Layer:     log.LayerSession,
		Category:  log.CategoryState,
		EntityID:  e.id,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityWidget,
			OldState: from.String(),
			NewState: to.String(),
			Reason:   reason,
		},
	})
}

func (s *Session) logSession(from, to string) {
	if s.config.ProtocolLogger == nil {
		return
	}
	s.config.ProtocolLogger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: s.config.SessionID,
		Layer:     log.LayerSession,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntitySession,
			OldState: from,
			NewState: to,
		},
	})
}

func (s *Session) logError(msg, entityID string, code *int) {
	if s.config.ProtocolLogger == nil {
		return
	}
	s.config.ProtocolLogger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: s.config.SessionID,
		Layer:     log.LayerSession,
		Category:  log.CategoryError,
		EntityID:  entityID,
		Error: &log.ErrorEventData{
			Layer:   log.LayerSession,
			Message: msg,
			Code:    code,
		},
	})
}

// debugLog logs a debug message if logging is enabled.
func (s *Session) debugLog(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

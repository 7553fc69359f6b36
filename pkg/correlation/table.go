// Package correlation matches asynchronous native completions to the
// callbacks registered when the request was sent.
//
// Each outbound request is keyed by a call ID derived from its operation,
// its target entity and its arguments. The entry is registered before the
// request is handed to the transport and is consumed exactly once when the
// completion arrives.
package correlation

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/nativeui-go/nativeui/pkg/wire"
)

// Table errors.
var (
	// ErrUnknownCall is returned for a completion whose call ID has no live
	// entry.
	ErrUnknownCall = errors.New("unknown call id")

	// ErrDuplicateCall is returned when a call ID is inserted while an entry
	// with the same ID is still live.
	ErrDuplicateCall = errors.New("duplicate live call id")
)

// Key describes a request for call ID derivation.
type Key struct {
	Op     wire.Operation
	Target string
	Detail []string
}

// ID returns the deterministic call ID, op-target[-detail...].
func (k Key) ID() string {
	parts := make([]string, 0, 2+len(k.Detail))
	parts = append(parts, k.Op.String(), k.Target)
	parts = append(parts, k.Detail...)
	return strings.Join(parts, "-")
}

// Entry is the pending continuation of one request.
type Entry struct {
	// CallID is assigned by the table.
	CallID string

	// Op is the request operation.
	Op wire.Operation

	// EntityID is the entity the request was issued for.
	EntityID string

	// OnComplete receives the native completion.
	OnComplete func(c *wire.Completion)

	// OnFail receives local failures (send refused, session closed).
	OnFail func(err error)

	seq uint64
}

// Table holds the live entries keyed by call ID.
// Table is not safe for concurrent use.
type Table struct {
	entries map[string]*Entry
	pending map[wire.Operation]int
	waiters []waiter
	nextSeq uint64
}

type waiter struct {
	op wire.Operation
	fn func()
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		entries: make(map[string]*Entry),
		pending: make(map[wire.Operation]int),
	}
}

// Register stores entry under the call ID derived from key and returns the
// ID. While an identical request is still live, a generation suffix (#2,
// #3, ...) keeps the IDs distinct.
func (t *Table) Register(key Key, entry Entry) (string, error) {
	base := key.ID()
	id := base
	for gen := 2; t.has(id); gen++ {
		id = base + "#" + strconv.Itoa(gen)
	}
	entry.Op = key.Op
	if err := t.Insert(id, entry); err != nil {
		return "", err
	}
	return id, nil
}

// Insert stores entry under an explicit call ID.
func (t *Table) Insert(id string, entry Entry) error {
	if id == "" {
		return fmt.Errorf("%w: empty", ErrUnknownCall)
	}
	if t.has(id) {
		return fmt.Errorf("%w: %s", ErrDuplicateCall, id)
	}
	t.nextSeq++
	entry.CallID = id
	entry.seq = t.nextSeq
	t.entries[id] = &entry
	t.pending[entry.Op]++
	return nil
}

// Take consumes the entry for id. A second Take of the same id reports
// false.
func (t *Table) Take(id string) (Entry, bool) {
	e, ok := t.remove(id)
	if !ok {
		return Entry{}, false
	}
	t.notify()
	return e, true
}

// Complete consumes the entry for id and runs fn with it. Idle waiters are
// notified after fn returns, so they observe its effects.
func (t *Table) Complete(id string, fn func(Entry)) bool {
	e, ok := t.remove(id)
	if !ok {
		return false
	}
	fn(e)
	t.notify()
	return true
}

// Discard removes the entry for id without invoking it.
func (t *Table) Discard(id string) bool {
	_, ok := t.remove(id)
	if ok {
		t.notify()
	}
	return ok
}

// Pending returns the number of live entries.
func (t *Table) Pending() int {
	return len(t.entries)
}

// PendingOp returns the number of live entries for an operation.
func (t *Table) PendingOp(op wire.Operation) int {
	return t.pending[op]
}

// WhenIdle runs fn once no entry of op remains live. If none is live now,
// fn runs immediately.
func (t *Table) WhenIdle(op wire.Operation, fn func()) {
	if t.pending[op] == 0 {
		fn()
		return
	}
	t.waiters = append(t.waiters, waiter{op: op, fn: fn})
}

// Drain removes every live entry and returns them in registration order.
// Idle waiters are dropped without being run.
func (t *Table) Drain() []Entry {
	out := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })

	t.entries = make(map[string]*Entry)
	t.pending = make(map[wire.Operation]int)
	t.waiters = nil
	return out
}

func (t *Table) has(id string) bool {
	_, ok := t.entries[id]
	return ok
}

func (t *Table) remove(id string) (Entry, bool) {
	e, ok := t.entries[id]
	if !ok {
		return Entry{}, false
	}
	delete(t.entries, id)
	t.pending[e.Op]--
	if t.pending[e.Op] <= 0 {
		delete(t.pending, e.Op)
	}
	return *e, true
}

// notify runs the waiters whose operation has gone idle. Waiters may
// register new entries or waiters.
func (t *Table) notify() {
	if len(t.waiters) == 0 {
		return
	}
	var due []waiter
	kept := t.waiters[:0]
	for _, w := range t.waiters {
		if t.pending[w.op] == 0 {
			due = append(due, w)
		} else {
			kept = append(kept, w)
		}
	}
	t.waiters = kept
	for _, w := range due {
		w.fn()
	}
}

package bridge

// State is the lifecycle state of an entity.
type State uint8

const (
	// StateUncreated means no create request is outstanding.
	StateUncreated State = iota

	// StateCreating means a create request was sent and has not completed.
	StateCreating

	// StateCreated means the entity has a native handle.
	StateCreated

	// StateDestroyed means the entity was torn down. It is never reused.
	StateDestroyed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUncreated:
		return "UNCREATED"
	case StateCreating:
		return "CREATING"
	case StateCreated:
		return "CREATED"
	case StateDestroyed:
		return "DESTROYED"
	default:
		return "UNKNOWN"
	}
}

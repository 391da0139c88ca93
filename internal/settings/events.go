package settings

import "llmsettings/pkg/types"

// Event names published by the store.
const (
	EventMerged  = "merged"
	EventNoop    = "noop"
	EventEditing = "editing"
)

// Event represents a store mutation, or a mutation that was skipped.
// Minimal and stable: name + provider and optional fields via key/values.
type Event struct {
	Name     string
	Provider types.ProviderKey
	Fields   map[string]any
}

// EventPublisher receives events from the store. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

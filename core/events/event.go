package events

// Event represents a structured state change emitted by the protocol.
type Event interface {
	EventType() string
}

// Emitter broadcasts events to downstream subscribers (e.g. RPC, indexers).
type Emitter interface {
	Emit(Event)
}

// NoopEmitter is a helper that satisfies the Emitter interface while discarding
// all events. It is useful when a component wants to optionally expose events.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}

// Collector buffers emitted events in order. The state processor attaches a
// Collector to each speculative instruction so events from a failed
// instruction can be discarded together with its state changes.
type Collector struct {
	events []Event
}

// Emit implements the Emitter interface.
func (c *Collector) Emit(evt Event) {
	if c == nil || evt == nil {
		return
	}
	c.events = append(c.events, evt)
}

// Events returns the buffered events in emission order.
func (c *Collector) Events() []Event {
	if c == nil {
		return nil
	}
	return c.events
}

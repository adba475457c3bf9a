package core

import (
	"fmt"

	"localshare/core/events"
	"localshare/core/state"
	"localshare/core/types"
	"localshare/native/equity"
	"localshare/storage/statedb"
)

// StateProcessor applies equity instructions with all-or-nothing semantics.
// Every instruction runs against a copy of the current store; only when the
// instruction returns without error is the copy promoted to be the new state.
// A failed instruction therefore leaves every record byte-for-byte unchanged,
// including the events buffer, with no compensation logic anywhere.
type StateProcessor struct {
	store  *statedb.Store
	events []types.Event
}

// NewStateProcessor creates a processor over the provided store.
func NewStateProcessor(store *statedb.Store) (*StateProcessor, error) {
	if store == nil {
		return nil, fmt.Errorf("core: store must not be nil")
	}
	return &StateProcessor{store: store, events: make([]types.Event, 0)}, nil
}

// Apply executes one instruction speculatively and promotes the resulting
// state on success. The engine handed to fn is wired to the speculative view,
// so nothing fn does can leak into committed state when it errors.
func (sp *StateProcessor) Apply(fn func(*equity.Engine) error) error {
	speculative := sp.store.Copy()
	manager := state.NewManager(speculative)
	collector := &events.Collector{}
	engine := equity.NewEngine()
	engine.SetState(manager)
	engine.SetEmitter(collector)
	if err := fn(engine); err != nil {
		return err
	}
	sp.store = speculative
	for _, evt := range collector.Events() {
		if carrier, ok := evt.(interface{ Event() *types.Event }); ok {
			if payload := carrier.Event(); payload != nil {
				sp.events = append(sp.events, *payload)
			}
		}
	}
	return nil
}

// Manager returns a read-only view over the committed state. Mutations made
// through it bypass the atomic boundary, so callers must treat it as such.
func (sp *StateProcessor) Manager() *state.Manager {
	return state.NewManager(sp.store)
}

// Events returns the events accumulated by applied instructions.
func (sp *StateProcessor) Events() []types.Event {
	out := make([]types.Event, len(sp.events))
	copy(out, sp.events)
	return out
}

// Commit flushes the applied state into the backing database.
func (sp *StateProcessor) Commit() error {
	return sp.store.Commit()
}

package fakes

import (
	"context"
	"errors"
	"sync"

	platformEvents "github.com/cronbackhq/cronback/platform/events"
)

// FakePublisher captures published run events and can simulate
// failures.
type FakePublisher struct {
	mu        sync.Mutex
	events    []platformEvents.RunEvent
	FailNext  bool
	FailError error
}

func (p *FakePublisher) Publish(_ context.Context, e platformEvents.RunEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailNext {
		p.FailNext = false
		if p.FailError == nil {
			p.FailError = errors.New("publish failed")
		}
		return p.FailError
	}
	p.events = append(p.events, e)
	return nil
}

// Snapshot returns a copy of the captured events. Safe to call while
// background deliveries are still publishing.
func (p *FakePublisher) Snapshot() []platformEvents.RunEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]platformEvents.RunEvent, len(p.events))
	copy(out, p.events)
	return out
}

// Kinds returns the captured event kinds in publish order.
func (p *FakePublisher) Kinds() []platformEvents.EventKind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]platformEvents.EventKind, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Kind)
	}
	return out
}

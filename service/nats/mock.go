package nats

import (
	"context"
	"sync"
)

// RecordingPublisher is an in-memory Publisher for tests. It appends every
// event it accepts and can be told to fail subsequent publishes.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []*PaymentEvent
	err    error
	closed bool
}

func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{}
}

func (p *RecordingPublisher) PublishPayment(ctx context.Context, event *PaymentEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *RecordingPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// Events returns a snapshot of everything accepted so far.
func (p *RecordingPublisher) Events() []*PaymentEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*PaymentEvent, len(p.events))
	copy(out, p.events)
	return out
}

// FailWith makes subsequent PublishPayment calls return err. Pass nil to
// resume accepting events.
func (p *RecordingPublisher) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

func (p *RecordingPublisher) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package events

import (
	"errors"
	"sync"
	"sync/atomic"
)

// DefaultCapacity absorbs output bursts from concurrently running steps
// without letting the queue grow unbounded.
const DefaultCapacity = 500

// ErrConsumerGone is returned by Sender.Send after the consumer has
// disconnected from the bus.
var ErrConsumerGone = errors.New("event consumer has disconnected")

// Bus is a bounded FIFO of events with many producers and exactly one
// consumer. The finite capacity is the backpressure mechanism: once full,
// every producer blocks on Send until the consumer drains.
//
// Per-producer send order is preserved; events from different producers
// interleave by arrival order.
type Bus struct {
	ch      chan Event
	done    chan struct{}
	doneSet sync.Once
	senders atomic.Int64
}

// New creates a bus with the given queue capacity.
// If capacity is not positive, DefaultCapacity is used.
func New(capacity int) *Bus {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &Bus{
		ch:   make(chan Event, capacity),
		done: make(chan struct{}),
	}
}

// Events returns the consumer side of the bus. The channel closes when
// every sender has been closed, which the consumer uses as its natural
// shutdown signal.
func (b *Bus) Events() <-chan Event {
	return b.ch
}

// Disconnect signals that the consumer has gone away. Blocked and future
// sends fail with ErrConsumerGone. Safe to call more than once.
func (b *Bus) Disconnect() {
	b.doneSet.Do(func() {
		close(b.done)
	})
}

// Sender returns a new producer handle. Every sender must be closed; the
// bus closes its event channel when the last one is.
func (b *Bus) Sender() *Sender {
	b.senders.Add(1)

	return &Sender{bus: b}
}

// Sender is a producer handle for the bus. Handles are independently
// cloneable and safe for concurrent use with one another, though a single
// Sender must not be shared across goroutines.
type Sender struct {
	bus    *Bus
	closed bool
}

// Clone returns an additional sender for the same bus.
func (s *Sender) Clone() *Sender {
	if s.closed {
		panic("events: Clone of closed Sender")
	}

	return s.bus.Sender()
}

// Send enqueues an event, blocking while the bus is full. It returns
// ErrConsumerGone if the consumer has disconnected.
func (s *Sender) Send(ev Event) error {
	// Prefer the disconnect signal over a racing free slot.
	select {
	case <-s.bus.done:
		return ErrConsumerGone
	default:
	}

	select {
	case s.bus.ch <- ev:
		return nil
	case <-s.bus.done:
		return ErrConsumerGone
	}
}

// Close releases the sender. When the last sender is closed the bus event
// channel is closed, and the consumer observes end-of-stream.
func (s *Sender) Close() {
	if s.closed {
		return
	}

	s.closed = true

	if s.bus.senders.Add(-1) == 0 {
		close(s.bus.ch)
	}
}

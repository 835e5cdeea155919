// Package stream carries snapshots from the simulation goroutine to a single
// consumer.
//
// A [Handoff] is a single-producer, single-consumer FIFO. The producer calls
// [Handoff.Send] once per tick; the consumer calls [Handoff.Receive] until it
// gets [dynamo.ErrProducerGone]. Either side may leave at any time:
//
//   - CloseReceive makes every later Send fail with [dynamo.ErrConsumerGone]
//   - CloseSend lets the consumer drain what is buffered, then stop
//
// # Overflow
//
// What happens when the consumer falls behind is chosen per handoff, see
// [Policy]. Block is the default and never loses a snapshot.
package stream

import (
	"context"
	"fmt"
	"sync"

	"github.com/san-kum/sphsim/internal/dynamo"
)

// Policy decides what Send does when the buffer is full.
type Policy int

const (
	// Block makes the producer wait for the consumer.
	Block Policy = iota
	// DropOldest evicts the oldest buffered snapshot to make room.
	DropOldest
	// Unbounded never fills up; memory grows if the consumer lags.
	Unbounded
)

func (p Policy) String() string {
	switch p {
	case Block:
		return "block"
	case DropOldest:
		return "drop-oldest"
	case Unbounded:
		return "unbounded"
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

// ParsePolicy is the inverse of Policy.String.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "block", "":
		return Block, nil
	case "drop-oldest", "drop":
		return DropOldest, nil
	case "unbounded":
		return Unbounded, nil
	}
	return Block, &dynamo.ConfigError{Field: "policy", Value: s, Wrapped: dynamo.ErrInvalidConfig}
}

const DefaultCapacity = 64

// Handoff is a FIFO of snapshots between one producer and one consumer.
type Handoff struct {
	mu       sync.Mutex
	buf      []dynamo.Snapshot
	capacity int
	policy   Policy
	dropped  uint64
	sent     uint64

	readable chan struct{}
	writable chan struct{}

	consumerGone chan struct{}
	producerGone chan struct{}
	closeRecv    sync.Once
	closeSend    sync.Once
}

// New creates a handoff. capacity is ignored for Unbounded and defaults to
// DefaultCapacity when not positive.
func New(capacity int, policy Policy) *Handoff {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Handoff{
		buf:          make([]dynamo.Snapshot, 0, min(capacity, DefaultCapacity)),
		capacity:     capacity,
		policy:       policy,
		readable:     make(chan struct{}, 1),
		writable:     make(chan struct{}, 1),
		consumerGone: make(chan struct{}),
		producerGone: make(chan struct{}),
	}
}

func (h *Handoff) Policy() Policy { return h.policy }
func (h *Handoff) Capacity() int  { return h.capacity }

// Send transfers snap to the consumer. It returns dynamo.ErrConsumerGone once
// the consumer has closed, which is terminal, and ctx.Err() if ctx ends while
// waiting for room.
func (h *Handoff) Send(ctx context.Context, snap dynamo.Snapshot) error {
	for {
		h.mu.Lock()
		if closed(h.consumerGone) {
			h.mu.Unlock()
			return dynamo.ErrConsumerGone
		}
		if closed(h.producerGone) {
			h.mu.Unlock()
			return fmt.Errorf("send after close: %w", dynamo.ErrProducerGone)
		}

		if h.policy == Unbounded || len(h.buf) < h.capacity {
			h.push(snap)
			h.mu.Unlock()
			return nil
		}
		if h.policy == DropOldest {
			h.buf[0] = dynamo.Snapshot{}
			h.buf = h.buf[1:]
			h.dropped++
			h.push(snap)
			h.mu.Unlock()
			return nil
		}
		h.mu.Unlock()

		select {
		case <-h.writable:
		case <-h.consumerGone:
			return dynamo.ErrConsumerGone
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// push appends under h.mu and wakes the consumer.
func (h *Handoff) push(snap dynamo.Snapshot) {
	h.buf = append(h.buf, snap)
	h.sent++
	notify(h.readable)
}

// Receive returns the oldest snapshot, blocking until one is available. After
// CloseSend it drains the buffer and then returns dynamo.ErrProducerGone.
func (h *Handoff) Receive(ctx context.Context) (dynamo.Snapshot, error) {
	for {
		h.mu.Lock()
		if closed(h.consumerGone) {
			h.mu.Unlock()
			return dynamo.Snapshot{}, dynamo.ErrConsumerGone
		}
		if len(h.buf) > 0 {
			snap := h.buf[0]
			h.buf[0] = dynamo.Snapshot{}
			h.buf = h.buf[1:]
			h.mu.Unlock()
			notify(h.writable)
			return snap, nil
		}
		if closed(h.producerGone) {
			h.mu.Unlock()
			return dynamo.Snapshot{}, dynamo.ErrProducerGone
		}
		h.mu.Unlock()

		select {
		case <-h.readable:
		case <-h.producerGone:
		case <-h.consumerGone:
		case <-ctx.Done():
			return dynamo.Snapshot{}, ctx.Err()
		}
	}
}

// TryReceive returns the oldest snapshot without blocking.
func (h *Handoff) TryReceive() (dynamo.Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.buf) == 0 || closed(h.consumerGone) {
		return dynamo.Snapshot{}, false
	}
	snap := h.buf[0]
	h.buf[0] = dynamo.Snapshot{}
	h.buf = h.buf[1:]
	notify(h.writable)
	return snap, true
}

// CloseSend marks the producer as finished. Buffered snapshots stay
// receivable.
func (h *Handoff) CloseSend() {
	h.closeSend.Do(func() { close(h.producerGone) })
}

// CloseReceive marks the consumer as gone and discards the buffer. A producer
// blocked in Send is released with dynamo.ErrConsumerGone.
func (h *Handoff) CloseReceive() {
	h.closeRecv.Do(func() {
		h.mu.Lock()
		close(h.consumerGone)
		h.buf = nil
		h.mu.Unlock()
	})
}

// Done is closed once the consumer has gone.
func (h *Handoff) Done() <-chan struct{} { return h.consumerGone }

// Len is the number of buffered snapshots.
func (h *Handoff) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.buf)
}

// Dropped counts snapshots evicted by DropOldest.
func (h *Handoff) Dropped() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}

// Sent counts snapshots accepted by Send.
func (h *Handoff) Sent() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sent
}

func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

func closed(ch chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

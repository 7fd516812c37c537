// Package notify provides change notification for transaction stacks.
//
// The notify package implements an observer pattern that allows host
// components to subscribe to stack changes (transactions added, applied,
// reversed, discarded) and receive callbacks when they occur.
package notify

import (
	"sync"
	"time"
)

// ChangeType represents the type of stack change.
type ChangeType int

const (
	// ChangeAdded indicates a new transaction was added and applied.
	ChangeAdded ChangeType = iota

	// ChangeApplied indicates a pending transaction was redone.
	ChangeApplied

	// ChangeReversed indicates an applied transaction was undone.
	ChangeReversed

	// ChangeTruncated indicates undone transactions were discarded.
	ChangeTruncated

	// ChangeCleared indicates the entire stack was emptied.
	ChangeCleared
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case ChangeAdded:
		return "added"
	case ChangeApplied:
		return "applied"
	case ChangeReversed:
		return "reversed"
	case ChangeTruncated:
		return "truncated"
	case ChangeCleared:
		return "cleared"
	default:
		return "unknown"
	}
}

// Change represents a stack change event.
type Change struct {
	// Type is the type of change.
	Type ChangeType

	// ID identifies the transaction involved.
	// Empty for truncation and clear events.
	ID string

	// Description is the transaction's own description.
	Description string

	// Time is when the change occurred.
	Time time.Time
}

// Observer is called when stack changes occur.
type Observer func(change Change)

// Subscription represents an active observer subscription.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe removes this subscription.
func (s *Subscription) Unsubscribe() {
	if s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

// Notifier manages stack change subscriptions.
type Notifier struct {
	mu sync.RWMutex

	observers map[uint64]Observer

	// Next subscription ID
	nextID uint64

	// Whether to notify synchronously or asynchronously
	async bool

	// Buffer for async notifications
	buffer chan Change

	// Done channel for shutdown
	done chan struct{}

	// Wait group for async goroutine
	wg sync.WaitGroup

	// Closed flag for idempotent Close
	closed bool
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithAsync enables asynchronous notification delivery.
func WithAsync(bufferSize int) Option {
	return func(n *Notifier) {
		if bufferSize > 0 {
			n.async = true
			n.buffer = make(chan Change, bufferSize)
		}
	}
}

// New creates a new Notifier.
func New(opts ...Option) *Notifier {
	n := &Notifier{
		observers: make(map[uint64]Observer),
		done:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(n)
	}

	if n.async {
		n.wg.Add(1)
		go n.processAsync()
	}

	return n
}

// Subscribe registers an observer for all changes.
func (n *Notifier) Subscribe(observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.observers[id] = observer

	return &Subscription{
		id:       id,
		notifier: n,
	}
}

// Publish sends a change notification to all observers.
// In async mode the change is buffered; a full buffer blocks until the
// processing goroutine drains it or the notifier is closed.
func (n *Notifier) Publish(change Change) {
	n.mu.RLock()
	if n.closed {
		n.mu.RUnlock()
		return
	}
	n.mu.RUnlock()

	if n.async {
		select {
		case n.buffer <- change:
		case <-n.done:
		}
		return
	}

	n.deliver(change)
}

// deliver invokes observers outside the registry write path.
func (n *Notifier) deliver(change Change) {
	n.mu.RLock()
	observers := make([]Observer, 0, len(n.observers))
	for _, obs := range n.observers {
		observers = append(observers, obs)
	}
	n.mu.RUnlock()

	for _, obs := range observers {
		obs(change)
	}
}

// processAsync drains the buffer until Close.
func (n *Notifier) processAsync() {
	defer n.wg.Done()

	for {
		select {
		case change := <-n.buffer:
			n.deliver(change)
		case <-n.done:
			// Drain remaining buffered changes
			for {
				select {
				case change := <-n.buffer:
					n.deliver(change)
				default:
					return
				}
			}
		}
	}
}

// Close shuts down the notifier. In async mode buffered changes are
// delivered before Close returns. Safe to call multiple times.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	n.mu.Unlock()

	close(n.done)
	if n.async {
		n.wg.Wait()
	}
}

// Count returns the number of active subscriptions.
func (n *Notifier) Count() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.observers)
}

func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.observers, id)
}

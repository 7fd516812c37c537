package tps

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nishikata-waifu/jsTPS/internal/notify"
)

// Stack manages an ordered sequence of transactions and a cursor marking
// how many have been applied.
//
// The cursor is the index of the most recently applied transaction, or -1
// when none are applied. Entries at or below the cursor form the undo
// range; entries above it form the redo range. Every mutating operation
// preserves -1 <= cursor <= len(entries)-1.
type Stack struct {
	mu sync.Mutex

	entries []*entry
	cursor  int

	// Transient re-entrancy flags, true only while a transaction's
	// Apply/Reverse callback runs. Atomic so collaborators invoked
	// during a callback can read them without taking the stack lock.
	applying  atomic.Bool
	reversing atomic.Bool

	// Grouping state
	grouping  bool
	groupName string
	groupTxns []Transaction

	// Configuration
	maxEntries int
	notifier   *notify.Notifier
}

// New creates an empty stack.
func New(opts ...Option) *Stack {
	s := &Stack{cursor: -1}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add applies the transaction and records it at the top of the stack.
//
// If the redo range is non-empty it is discarded first; adding while
// earlier transactions are undone permanently drops the undone branch.
// On return the new transaction is at the cursor and has been applied
// exactly once.
//
// The transaction is applied before any history mutation: a failed Apply
// returns the transaction's error and leaves the sequence and cursor
// untouched (aside from whatever partial effect the transaction itself
// made).
func (s *Stack) Add(txn Transaction) error {
	if txn == nil {
		return ErrNilTransaction
	}

	if err := s.apply(txn); err != nil {
		return err
	}

	s.mu.Lock()
	if s.grouping {
		s.groupTxns = append(s.groupTxns, txn)
		s.mu.Unlock()
		return nil
	}
	e, dropped := s.pushLocked(txn)
	s.mu.Unlock()

	s.publishTruncated(dropped)
	s.publish(notify.ChangeAdded, e)
	return nil
}

// pushLocked truncates the redo range, appends the (already applied)
// transaction, and advances the cursor. Returns the new entry and how
// many redo entries were dropped.
func (s *Stack) pushLocked(txn Transaction) (*entry, int) {
	dropped := len(s.entries) - (s.cursor + 1)
	s.entries = s.entries[:s.cursor+1]

	e := newEntry(txn)
	s.entries = append(s.entries, e)
	s.cursor = len(s.entries) - 1

	// Enforce max entries by evicting the oldest applied transactions
	if s.maxEntries > 0 {
		if excess := s.cursor + 1 - s.maxEntries; excess > 0 {
			s.entries = s.entries[excess:]
			s.cursor -= excess
		}
	}

	return e, dropped
}

// Redo applies the next pending transaction and advances the cursor.
// It is a silent no-op when the redo range is empty.
// The cursor advances only if the transaction's Apply returns nil.
func (s *Stack) Redo() error {
	s.mu.Lock()
	if s.cursor >= len(s.entries)-1 {
		s.mu.Unlock()
		return nil
	}
	e := s.entries[s.cursor+1]
	s.mu.Unlock()

	if err := s.apply(e.txn); err != nil {
		return err
	}

	s.mu.Lock()
	s.cursor++
	s.mu.Unlock()

	s.publish(notify.ChangeApplied, e)
	return nil
}

// Undo reverses the most recently applied transaction and retreats the
// cursor. It is a silent no-op when the undo range is empty.
// The cursor retreats only if the transaction's Reverse returns nil.
func (s *Stack) Undo() error {
	s.mu.Lock()
	if s.cursor < 0 {
		s.mu.Unlock()
		return nil
	}
	e := s.entries[s.cursor]
	s.mu.Unlock()

	if err := s.reverse(e.txn); err != nil {
		return err
	}

	s.mu.Lock()
	s.cursor--
	s.mu.Unlock()

	s.publish(notify.ChangeReversed, e)
	return nil
}

// apply invokes Apply with the applying flag scoped to the call.
// The flag is reset even if the transaction fails.
func (s *Stack) apply(txn Transaction) error {
	s.applying.Store(true)
	defer s.applying.Store(false)
	return txn.Apply()
}

// reverse invokes Reverse with the reversing flag scoped to the call.
func (s *Stack) reverse(txn Transaction) error {
	s.reversing.Store(true)
	defer s.reversing.Store(false)
	return txn.Reverse()
}

// PeekUndo returns the transaction the next Undo would reverse.
func (s *Stack) PeekUndo() (Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cursor < 0 {
		return nil, false
	}
	return s.entries[s.cursor].txn, true
}

// PeekRedo returns the transaction the next Redo would apply.
func (s *Stack) PeekRedo() (Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cursor >= len(s.entries)-1 {
		return nil, false
	}
	return s.entries[s.cursor+1].txn, true
}

// Clear empties the sequence and resets the cursor.
//
// Pending transactions are not reversed; callers needing cleanup must
// undo before clearing.
func (s *Stack) Clear() {
	s.mu.Lock()
	s.entries = nil
	s.cursor = -1
	s.grouping = false
	s.groupTxns = nil
	s.mu.Unlock()

	if s.notifier != nil {
		s.notifier.Publish(notify.Change{
			Type: notify.ChangeCleared,
			Time: time.Now(),
		})
	}
}

// Size returns the total number of stored transactions.
func (s *Stack) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// UndoCount returns the number of undoable transactions.
func (s *Stack) UndoCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor + 1
}

// RedoCount returns the number of redoable transactions.
func (s *Stack) RedoCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries) - s.cursor - 1
}

// HasUndo returns true if the undo range is non-empty.
func (s *Stack) HasUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor >= 0
}

// HasRedo returns true if the redo range is non-empty.
func (s *Stack) HasRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor < len(s.entries)-1
}

// IsApplying returns true while a transaction's Apply is in flight.
func (s *Stack) IsApplying() bool {
	return s.applying.Load()
}

// IsReversing returns true while a transaction's Reverse is in flight.
func (s *Stack) IsReversing() bool {
	return s.reversing.Load()
}

// UndoInfo returns info about the applied range in order.
func (s *Stack) UndoInfo() []TransactionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]TransactionInfo, 0, s.cursor+1)
	for i := 0; i <= s.cursor; i++ {
		result = append(result, s.entries[i].info())
	}
	return result
}

// RedoInfo returns info about the pending range in order.
func (s *Stack) RedoInfo() []TransactionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]TransactionInfo, 0, len(s.entries)-s.cursor-1)
	for i := s.cursor + 1; i < len(s.entries); i++ {
		result = append(result, s.entries[i].info())
	}
	return result
}

// Describe returns a deterministic summary of the stack: total count,
// cursor position, and the description of every applied transaction in
// order. Diagnostics only.
func (s *Stack) Describe() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "transactions: %d, cursor: %d\n", len(s.entries), s.cursor)
	for i := 0; i <= s.cursor; i++ {
		fmt.Fprintf(&b, "  [%d] %s\n", i, s.entries[i].txn.Describe())
	}
	return b.String()
}

// publish sends a change notification for an entry, if a notifier is
// attached. Runs outside the stack lock.
func (s *Stack) publish(t notify.ChangeType, e *entry) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(notify.Change{
		Type:        t,
		ID:          e.id.String(),
		Description: e.txn.Describe(),
		Time:        time.Now(),
	})
}

// publishTruncated reports discarded redo entries, if any.
func (s *Stack) publishTruncated(dropped int) {
	if s.notifier == nil || dropped == 0 {
		return
	}
	s.notifier.Publish(notify.Change{
		Type:        notify.ChangeTruncated,
		Description: fmt.Sprintf("%d transactions discarded", dropped),
		Time:        time.Now(),
	})
}

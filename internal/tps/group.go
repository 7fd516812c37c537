package tps

import "github.com/nishikata-waifu/jsTPS/internal/notify"

// BeginGroup starts a transaction group. Transactions added while
// grouping are applied immediately but collected into a single compound
// undo unit that lands when EndGroup is called.
func (s *Stack) BeginGroup(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.grouping {
		// Already grouping, ignore nested calls
		return
	}

	s.grouping = true
	s.groupName = name
	s.groupTxns = nil
}

// EndGroup finishes a transaction group. All transactions added since
// BeginGroup land as one Compound at the top of the stack.
func (s *Stack) EndGroup() {
	s.mu.Lock()
	if !s.grouping {
		s.mu.Unlock()
		return
	}

	s.grouping = false

	if len(s.groupTxns) == 0 {
		s.groupTxns = nil
		s.mu.Unlock()
		return
	}

	compound := &Compound{
		Name:         s.groupName,
		Transactions: s.groupTxns,
	}
	s.groupTxns = nil

	// Members were applied as they were added; the compound lands
	// without re-applying.
	e, dropped := s.pushLocked(compound)
	s.mu.Unlock()

	s.publishTruncated(dropped)
	s.publish(notify.ChangeAdded, e)
}

// CancelGroup abandons a transaction group without recording it.
// Note: transactions already applied still affect the host's state.
func (s *Stack) CancelGroup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.grouping = false
	s.groupTxns = nil
}

// IsGrouping returns true if currently inside a transaction group.
func (s *Stack) IsGrouping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grouping
}

// GroupScope provides a convenient way to group transactions using defer.
// Usage:
//
//	func renameAll(s *tps.Stack) {
//	    defer s.GroupScope("rename all").End()
//	    // ... multiple Add calls ...
//	}
type GroupScope struct {
	stack  *Stack
	active bool
}

// GroupScope starts a new group scope.
// Call End() or use with defer to properly close the group.
func (s *Stack) GroupScope(name string) *GroupScope {
	s.BeginGroup(name)
	return &GroupScope{
		stack:  s,
		active: true,
	}
}

// End ends the group scope.
// Safe to call multiple times; only the first call has effect.
func (g *GroupScope) End() {
	if g.active {
		g.stack.EndGroup()
		g.active = false
	}
}

// Cancel cancels the group scope without recording a compound.
func (g *GroupScope) Cancel() {
	if g.active {
		g.stack.CancelGroup()
		g.active = false
	}
}

// WithGroup runs fn within a grouped undo context. If fn returns an
// error the group is cancelled; otherwise it lands as one undo unit.
func (s *Stack) WithGroup(name string, fn func() error) error {
	s.BeginGroup(name)

	if err := fn(); err != nil {
		s.CancelGroup()
		return err
	}

	s.EndGroup()
	return nil
}

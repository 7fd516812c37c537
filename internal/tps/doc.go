// Package tps provides a generic transaction-processing stack with
// undo/redo semantics for a host application.
//
// The stack does no domain work itself. It sequences externally supplied
// reversible operations, each implementing the Transaction interface, and
// manages a cursor that partitions them into an applied (undoable) range
// and a pending (redoable) range. Key concepts:
//
// # Transactions
//
// A Transaction is an opaque unit of reversible work with Apply, Reverse,
// and Describe capabilities. The stack never inspects transaction state;
// it only invokes these methods. Built-in helpers include:
//   - NewFunc: adapt a pair of functions into a Transaction
//   - Compound: group multiple transactions as one undo unit
//
// # The Stack
//
// The Stack type manages the transaction sequence and cursor:
//
//	stack := tps.New()
//
//	// Add applies the transaction and records it
//	stack.Add(txn)
//
//	// Undo/redo
//	stack.Undo()
//	stack.Redo()
//
// Adding a transaction while earlier ones are undone discards the undone
// suffix permanently. Branching invalidates redo history; it does not
// create a tree.
//
// # Grouping
//
// Multiple transactions can be collected into a single undo unit:
//
//	stack.BeginGroup("rename all")
//	// ... multiple Add calls ...
//	stack.EndGroup()
//
// Now one Undo reverses the whole group.
//
// # No-op Safety
//
// Calling Undo with nothing applied, or Redo with nothing pending, is a
// silent no-op. Callers are expected to consult HasUndo/HasRedo first,
// but calling anyway never faults or corrupts state.
//
// # Re-entrancy Flags
//
// IsApplying and IsReversing report whether a do/undo cycle is in flight.
// A collaborator invoked during a transaction's Apply or Reverse (for
// example a change observer) can consult them to avoid re-entrant stack
// mutation. The flags are reset even when the transaction returns an
// error.
package tps

package tps

import (
	"errors"
	"fmt"
)

// ErrNilTransaction is returned when a nil Transaction is added.
var ErrNilTransaction = errors.New("nil transaction")

// Transaction represents a reversible unit of work supplied by the host
// application.
type Transaction interface {
	// Apply performs the forward effect and returns an error if it fails.
	Apply() error

	// Reverse performs the exact inverse of the most recent Apply.
	Reverse() error

	// Describe returns a human-readable description of the transaction.
	Describe() string
}

// funcTxn adapts a pair of functions into a Transaction.
type funcTxn struct {
	description string
	apply       func() error
	reverse     func() error
}

// NewFunc returns a Transaction backed by apply and reverse functions.
// Either function may be nil, in which case that direction is a no-op.
func NewFunc(description string, apply, reverse func() error) Transaction {
	return &funcTxn{
		description: description,
		apply:       apply,
		reverse:     reverse,
	}
}

func (t *funcTxn) Apply() error {
	if t.apply == nil {
		return nil
	}
	return t.apply()
}

func (t *funcTxn) Reverse() error {
	if t.reverse == nil {
		return nil
	}
	return t.reverse()
}

func (t *funcTxn) Describe() string {
	return t.description
}

// Compound groups multiple transactions as one undo unit.
type Compound struct {
	Name         string
	Transactions []Transaction
}

// NewCompound creates a new compound transaction.
func NewCompound(name string, txns ...Transaction) *Compound {
	return &Compound{
		Name:         name,
		Transactions: txns,
	}
}

// Apply runs all member transactions in order.
func (c *Compound) Apply() error {
	for i, txn := range c.Transactions {
		if err := txn.Apply(); err != nil {
			// On error, reverse what has already been applied
			for j := i - 1; j >= 0; j-- {
				_ = c.Transactions[j].Reverse()
			}
			return fmt.Errorf("compound '%s' step %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// Reverse reverses all member transactions in reverse order.
func (c *Compound) Reverse() error {
	for i := len(c.Transactions) - 1; i >= 0; i-- {
		if err := c.Transactions[i].Reverse(); err != nil {
			return fmt.Errorf("reverse compound '%s' step %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// Describe returns the compound's name.
func (c *Compound) Describe() string {
	if c.Name != "" {
		return c.Name
	}
	if len(c.Transactions) == 1 {
		return c.Transactions[0].Describe()
	}
	return fmt.Sprintf("%d transactions", len(c.Transactions))
}

// Add appends a transaction to the compound.
func (c *Compound) Add(txn Transaction) {
	c.Transactions = append(c.Transactions, txn)
}

// IsEmpty returns true if the compound has no transactions.
func (c *Compound) IsEmpty() bool {
	return len(c.Transactions) == 0
}

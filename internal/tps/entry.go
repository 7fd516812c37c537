package tps

import (
	"time"

	"github.com/google/uuid"
)

// entry wraps a transaction with metadata.
type entry struct {
	id  uuid.UUID
	txn Transaction
	at  time.Time
}

func newEntry(txn Transaction) *entry {
	return &entry{
		id:  uuid.New(),
		txn: txn,
		at:  time.Now(),
	}
}

func (e *entry) info() TransactionInfo {
	return TransactionInfo{
		ID:          e.id,
		Description: e.txn.Describe(),
		Timestamp:   e.at,
	}
}

// TransactionInfo provides read-only info about a stored transaction.
// Used for displaying undo/redo history to users.
type TransactionInfo struct {
	ID          uuid.UUID
	Description string
	Timestamp   time.Time
}

package tps

import (
	"errors"
	"strings"
	"testing"
)

// traceTxn records the order its callbacks run in.
type traceTxn struct {
	name string
	log  *[]string
	err  error
}

func (t *traceTxn) Apply() error {
	if t.err != nil {
		return t.err
	}
	*t.log = append(*t.log, "apply "+t.name)
	return nil
}

func (t *traceTxn) Reverse() error {
	*t.log = append(*t.log, "reverse "+t.name)
	return nil
}

func (t *traceTxn) Describe() string { return t.name }

func TestFuncTransaction(t *testing.T) {
	counter := 0
	txn := NewFunc("bump",
		func() error { counter++; return nil },
		func() error { counter--; return nil },
	)

	if txn.Describe() != "bump" {
		t.Errorf("description = %q", txn.Describe())
	}

	txn.Apply()
	if counter != 1 {
		t.Errorf("counter = %d, want 1", counter)
	}
	txn.Reverse()
	if counter != 0 {
		t.Errorf("counter = %d, want 0", counter)
	}
}

func TestFuncTransactionNilCallbacks(t *testing.T) {
	txn := NewFunc("inert", nil, nil)

	if err := txn.Apply(); err != nil {
		t.Errorf("nil apply returned %v", err)
	}
	if err := txn.Reverse(); err != nil {
		t.Errorf("nil reverse returned %v", err)
	}
}

func TestCompoundApplyOrder(t *testing.T) {
	var log []string
	c := NewCompound("pair",
		&traceTxn{name: "a", log: &log},
		&traceTxn{name: "b", log: &log},
	)

	if err := c.Apply(); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	want := "apply a,apply b"
	if got := strings.Join(log, ","); got != want {
		t.Errorf("apply order = %q, want %q", got, want)
	}
}

func TestCompoundReverseOrder(t *testing.T) {
	var log []string
	c := NewCompound("pair",
		&traceTxn{name: "a", log: &log},
		&traceTxn{name: "b", log: &log},
	)

	c.Apply()
	log = nil

	if err := c.Reverse(); err != nil {
		t.Fatalf("Reverse failed: %v", err)
	}

	want := "reverse b,reverse a"
	if got := strings.Join(log, ","); got != want {
		t.Errorf("reverse order = %q, want %q", got, want)
	}
}

func TestCompoundApplyRollback(t *testing.T) {
	boom := errors.New("boom")
	var log []string
	c := NewCompound("partial",
		&traceTxn{name: "a", log: &log},
		&traceTxn{name: "b", log: &log, err: boom},
	)

	err := c.Apply()
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	// The applied prefix is reversed before the error returns
	want := "apply a,reverse a"
	if got := strings.Join(log, ","); got != want {
		t.Errorf("rollback order = %q, want %q", got, want)
	}
}

func TestCompoundDescribe(t *testing.T) {
	var log []string
	a := &traceTxn{name: "single step", log: &log}

	tests := []struct {
		name     string
		compound *Compound
		want     string
	}{
		{"named", NewCompound("rename all", a, a), "rename all"},
		{"unnamed single", NewCompound("", a), "single step"},
		{"unnamed multi", NewCompound("", a, a, a), "3 transactions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.compound.Describe(); got != tt.want {
				t.Errorf("Describe() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompoundAdd(t *testing.T) {
	c := NewCompound("grow")
	if !c.IsEmpty() {
		t.Error("new compound should be empty")
	}

	var log []string
	c.Add(&traceTxn{name: "a", log: &log})

	if c.IsEmpty() || len(c.Transactions) != 1 {
		t.Error("Add should append a member")
	}
}

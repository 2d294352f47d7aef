package arena

import (
	"errors"
	"sync"
)

// TokenLedger is the boundary to the external fungible token ledger. Vault
// deposits debit the staker into arena escrow; withdrawals and failures
// credit back out. Both calls must fail without partial effect.
type TokenLedger interface {
	TransferFrom(payer string, amount uint64) error
	Transfer(payee string, amount uint64) error
}

var ErrInsufficientFunds = errors.New("insufficient funds")

// MemoryLedger is an in-process TokenLedger used by the server binary and
// tests. The real deployment substitutes an external ledger.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[string]uint64
	escrow   uint64
}

func NewMemoryLedger(seed map[string]uint64) *MemoryLedger {
	balances := make(map[string]uint64, len(seed))
	for k, v := range seed {
		balances[k] = v
	}
	return &MemoryLedger{balances: balances}
}

func (l *MemoryLedger) TransferFrom(payer string, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balances[payer] < amount {
		return ErrInsufficientFunds
	}
	l.balances[payer] -= amount
	l.escrow += amount
	return nil
}

func (l *MemoryLedger) Transfer(payee string, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.escrow < amount {
		return ErrInsufficientFunds
	}
	l.escrow -= amount
	l.balances[payee] += amount
	return nil
}

func (l *MemoryLedger) Balance(id string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[id]
}

func (l *MemoryLedger) Escrow() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.escrow
}

package escrow

import (
	"context"
	"sync"

	"soulbound/pkg/domain"
)

// Transfer is one credited movement.
type Transfer struct {
	To     domain.AccountID
	Amount domain.Amount
}

// Ledger is an in-memory Transferrer that credits accounts locally. It backs
// single-node runs and tests.
type Ledger struct {
	mu       sync.Mutex
	balances map[domain.AccountID]domain.Amount
	history  []Transfer
}

func NewLedger() *Ledger {
	return &Ledger{balances: make(map[domain.AccountID]domain.Amount)}
}

func (l *Ledger) Transfer(_ context.Context, to domain.AccountID, amount domain.Amount) error {
	if amount.IsZero() {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	total, err := l.balances[to].Add(amount)
	if err != nil {
		return err
	}
	l.balances[to] = total
	l.history = append(l.history, Transfer{To: to, Amount: amount})
	return nil
}

// Balance returns everything credited to account so far.
func (l *Ledger) Balance(account domain.AccountID) domain.Amount {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[account]
}

// Transfers returns the credit history in order.
func (l *Ledger) Transfers() []Transfer {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Transfer(nil), l.history...)
}

// Package native models the host runtime's native currency: per-address
// integer balances and value transfers. A transfer hook registered on a
// recipient address stands in for the code of a contract-like account and
// runs inside the transfer, which makes the ledger the point where
// untrusted code executes on outbound value.
package native

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// ErrInsufficientFunds is returned when a transfer exceeds the sender's balance
var ErrInsufficientFunds = errors.New("insufficient funds")

// Hook runs on the recipient's behalf during a transfer. Returning an
// error rejects the value and rolls the transfer back.
type Hook func(ctx context.Context, from, to common.Address, amount *big.Int) error

// Ledger tracks native-currency balances.
type Ledger struct {
	mu       sync.Mutex
	balances map[common.Address]*big.Int
	hooks    map[common.Address]Hook
}

// NewLedger creates an empty ledger
func NewLedger() *Ledger {
	return &Ledger{
		balances: make(map[common.Address]*big.Int),
		hooks:    make(map[common.Address]Hook),
	}
}

// Mint credits fresh currency to an address (funding for tests and local runs)
func (l *Ledger) Mint(addr common.Address, amount *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.credit(addr, amount)
}

// BalanceOf returns the balance of an address
func (l *Ledger) BalanceOf(addr common.Address) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok := l.balances[addr]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

// SetHook attaches recipient-side code to an address. A nil hook detaches.
func (l *Ledger) SetHook(addr common.Address, hook Hook) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if hook == nil {
		delete(l.hooks, addr)
		return
	}
	l.hooks[addr] = hook
}

// Transfer moves value between addresses. The recipient's hook, when
// present, runs after the balances move; a hook error rolls the move back
// and surfaces to the sender.
func (l *Ledger) Transfer(ctx context.Context, from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("invalid transfer amount %s", amount)
	}

	l.mu.Lock()
	balance, ok := l.balances[from]
	if !ok {
		balance = new(big.Int)
		l.balances[from] = balance
	}
	if balance.Cmp(amount) < 0 {
		l.mu.Unlock()
		return fmt.Errorf("%w: %s has %s, needs %s", ErrInsufficientFunds, from, balance, amount)
	}
	balance.Sub(balance, amount)
	l.credit(to, amount)
	hook := l.hooks[to]
	l.mu.Unlock()

	if hook != nil {
		if err := hook(ctx, from, to, amount); err != nil {
			l.mu.Lock()
			l.balances[to].Sub(l.balances[to], amount)
			l.credit(from, amount)
			l.mu.Unlock()
			return fmt.Errorf("transfer to %s rejected: %w", to, err)
		}
	}
	return nil
}

// Move transfers value without running recipient hooks. The executor uses
// it to place caller value into contract custody before a payable call and
// to unwind that deposit when the call reverts; neither movement may run
// untrusted code.
func (l *Ledger) Move(from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("invalid transfer amount %s", amount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	balance, ok := l.balances[from]
	if !ok {
		balance = new(big.Int)
		l.balances[from] = balance
	}
	if balance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s has %s, needs %s", ErrInsufficientFunds, from, balance, amount)
	}
	balance.Sub(balance, amount)
	l.credit(to, amount)
	return nil
}

// credit adds to a balance; callers hold the lock
func (l *Ledger) credit(addr common.Address, amount *big.Int) {
	if b, ok := l.balances[addr]; ok {
		b.Add(b, amount)
		return
	}
	l.balances[addr] = new(big.Int).Set(amount)
}

// Account binds a ledger to one address so a contract can send value out
// of its own custody.
type Account struct {
	ledger *Ledger
	addr   common.Address
}

// NewAccount creates a sending account for an address
func NewAccount(ledger *Ledger, addr common.Address) *Account {
	return &Account{ledger: ledger, addr: addr}
}

// Address returns the account address
func (a *Account) Address() common.Address {
	return a.addr
}

// Send moves value from the account to a recipient
func (a *Account) Send(ctx context.Context, to common.Address, amount *big.Int) error {
	return a.ledger.Transfer(ctx, a.addr, to, amount)
}

// Package contract implements the Flag Pair Registry and Mint Engine: a
// serialized, transactional asset registry enforcing the two-phase
// claim/purchase protocol over flag pairs, with journaled revert semantics
// and a reentrancy lock held across every mutating operation.
//
// The contract assumes the single-threaded transactional model of its host:
// callers must not invoke operations from multiple goroutines concurrently
// (the executor package serializes submitted transactions). Within a
// transaction, untrusted code runs only at the safe-mint receiver callback
// and at outbound payment transfers.
package contract

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/flagquest/flagnode/internal/domain"
	"github.com/flagquest/flagnode/internal/events"
)

// Call carries the caller identity and the native-currency value attached
// to a payable operation.
type Call struct {
	Caller common.Address
	Value  *big.Int
}

// PaymentSender delivers native currency out of the contract's custody.
// Implementations may run untrusted code on the recipient side; a send
// error reverts the calling transaction.
type PaymentSender interface {
	Send(ctx context.Context, to common.Address, amount *big.Int) error
}

// TokenReceiver is the safe-mint/safe-transfer callback surface for
// contract-like recipient addresses. Returning an error rejects the token
// and reverts the whole transaction.
type TokenReceiver interface {
	OnTokenReceived(ctx context.Context, operator, from, to common.Address, tokenID uint64) error
}

// ReceiverResolver maps an address to its token receiver, or nil for plain
// wallet addresses that take delivery without a callback.
type ReceiverResolver interface {
	Resolve(addr common.Address) TokenReceiver
}

// EventSink receives the events of a committed transaction, in emission order.
type EventSink interface {
	Publish(ctx context.Context, batch []events.Event)
}

// Contract is the flag pair registry and mint engine. The zero value is not
// usable; construct with New.
type Contract struct {
	admin     common.Address
	state     *state
	sender    PaymentSender
	receivers ReceiverResolver
	sink      EventSink

	// reentrancy lock, held for the whole of every mutating operation
	entered bool
}

// Option configures a Contract.
type Option func(*Contract)

// WithReceiverResolver wires the safe-mint callback resolver
func WithReceiverResolver(r ReceiverResolver) Option {
	return func(c *Contract) { c.receivers = r }
}

// WithEventSink wires the sink that observes committed events
func WithEventSink(s EventSink) Option {
	return func(c *Contract) { c.sink = s }
}

// WithBaseURI sets the initial metadata base path
func WithBaseURI(baseURI string) Option {
	return func(c *Contract) { c.state.baseURI = baseURI }
}

// New deploys a contract instance. The deployer becomes the admin.
func New(admin common.Address, sender PaymentSender, opts ...Option) *Contract {
	c := &Contract{
		admin:  admin,
		state:  newState(),
		sender: sender,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Admin returns the administrator address
func (c *Contract) Admin() common.Address {
	return c.admin
}

// enter takes the reentrancy lock. A call arriving while the lock is held
// is a reentrant call from untrusted code and reverts.
func (c *Contract) enter() error {
	if c.entered {
		return domain.ErrReentrantCall
	}
	c.entered = true
	return nil
}

func (c *Contract) leave() {
	c.entered = false
}

// requireNotEntered refuses view access while a transition is in flight,
// so intermediate flag state is never observable from a callback.
func (c *Contract) requireNotEntered() error {
	if c.entered {
		return domain.ErrReentrantCall
	}
	return nil
}

// requireAdmin gates the admin surface
func (c *Contract) requireAdmin(call Call) error {
	if call.Caller != c.admin {
		return domain.ErrUnauthorized
	}
	return nil
}

// run executes op as one transaction under the reentrancy lock: on error
// every state write is unwound and nothing is published; on success the
// transaction's events reach the sink in emission order.
func (c *Contract) run(ctx context.Context, op func(tx *txn) error) error {
	if err := c.enter(); err != nil {
		return err
	}
	defer c.leave()

	tx := newTxn()
	if err := op(tx); err != nil {
		tx.revert()
		return err
	}
	if c.sink != nil && len(tx.events) > 0 {
		c.sink.Publish(ctx, tx.events)
	}
	return nil
}

// callValue normalizes the attached value of a payable call
func callValue(call Call) *big.Int {
	if call.Value == nil {
		return new(big.Int)
	}
	return call.Value
}

// Package executor hosts the contract as a single-threaded transactional
// actor: every externally submitted operation runs under one mutex, caller
// value moves into contract custody before a payable call and back out if
// the call reverts, and safe-mint receiver callbacks resolve through a
// registry of contract-like addresses.
package executor

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/flagquest/flagnode/internal/contract"
	"github.com/flagquest/flagnode/internal/domain"
	"github.com/flagquest/flagnode/internal/native"
)

// Executor is the serialized transaction host around one contract instance.
type Executor struct {
	mu           sync.Mutex
	contract     *contract.Contract
	ledger       *native.Ledger
	contractAddr common.Address
}

// New creates an executor for a deployed contract
func New(c *contract.Contract, ledger *native.Ledger, contractAddr common.Address) *Executor {
	return &Executor{
		contract:     c,
		ledger:       ledger,
		contractAddr: contractAddr,
	}
}

// Admin returns the contract administrator address
func (e *Executor) Admin() common.Address {
	return e.contract.Admin()
}

// ContractAddress returns the contract's native-currency account address
func (e *Executor) ContractAddress() common.Address {
	return e.contractAddr
}

// adminCall builds the call context for an authenticated admin operation
func (e *Executor) adminCall() contract.Call {
	return contract.Call{Caller: e.contract.Admin()}
}

// RegisterFlag registers one flag as the admin
func (e *Executor) RegisterFlag(ctx context.Context, flagID *big.Int, category domain.Category, price *big.Int, nftsRequired uint8) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.contract.RegisterFlag(ctx, e.adminCall(), flagID, category, price, nftsRequired)
}

// BatchRegisterFlags registers a batch of flags atomically as the admin
func (e *Executor) BatchRegisterFlags(ctx context.Context, flagIDs []*big.Int, categories []domain.Category, prices []*big.Int, nftsRequired []uint8) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.contract.BatchRegisterFlags(ctx, e.adminCall(), flagIDs, categories, prices, nftsRequired)
}

// SetMetadataHash sets a flag's integrity digest as the admin
func (e *Executor) SetMetadataHash(ctx context.Context, flagID *big.Int, hash string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.contract.SetMetadataHash(ctx, e.adminCall(), flagID, hash)
}

// SetBaseURI replaces the metadata base path as the admin
func (e *Executor) SetBaseURI(ctx context.Context, baseURI string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.contract.SetBaseURI(ctx, e.adminCall(), baseURI)
}

// Withdraw drains the contract balance to the admin and returns the
// amount transferred. The balance is read and drained under one lock
// hold, so the returned amount is exactly what moved.
func (e *Executor) Withdraw(ctx context.Context) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	amount := new(big.Int).Set(e.contract.GetContractBalance())
	if err := e.contract.Withdraw(ctx, e.adminCall()); err != nil {
		return nil, err
	}
	return amount, nil
}

// Claim runs the free first-phase claim for a caller
func (e *Executor) Claim(ctx context.Context, caller common.Address, flagID *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.contract.ClaimFirstNFT(ctx, contract.Call{Caller: caller}, flagID)
}

// Purchase runs the paid second-phase purchase for a caller. The attached
// value is debited from the caller's wallet up front and credited back in
// full when the contract call reverts.
func (e *Executor) Purchase(ctx context.Context, caller common.Address, flagID *big.Int, value *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if value == nil {
		value = new(big.Int)
	}
	if err := e.ledger.Move(caller, e.contractAddr, value); err != nil {
		return err
	}

	call := contract.Call{Caller: caller, Value: value}
	if err := e.contract.PurchaseSecondNFT(ctx, call, flagID); err != nil {
		// the revert path must not run recipient hooks
		if moveErr := e.ledger.Move(e.contractAddr, caller, value); moveErr != nil {
			return moveErr
		}
		return err
	}
	return nil
}

// Fund credits native currency to a wallet (local/dev faucet)
func (e *Executor) Fund(addr common.Address, amount *big.Int) {
	e.ledger.Mint(addr, amount)
}

// WalletBalance returns a wallet's native-currency balance
func (e *Executor) WalletBalance(addr common.Address) *big.Int {
	return e.ledger.BalanceOf(addr)
}

// View runs a read-only function against the contract under the
// serialization lock
func (e *Executor) View(fn func(c *contract.Contract) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.contract)
}

// TransferToken moves a token between wallets on behalf of the caller,
// running the recipient's receiver callback when one is registered
func (e *Executor) TransferToken(ctx context.Context, caller, from, to common.Address, tokenID uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.contract.SafeTransferFrom(ctx, contract.Call{Caller: caller}, from, to, tokenID)
}

package executor_test

import (
	"context"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flagquest/flagnode/internal/contract"
	"github.com/flagquest/flagnode/internal/domain"
	"github.com/flagquest/flagnode/internal/executor"
	"github.com/flagquest/flagnode/internal/native"
)

var (
	adminAddr    = common.HexToAddress("0x00000000000000000000000000000000000000AD")
	contractAddr = common.HexToAddress("0x00000000000000000000000000000000000000CC")
	walletA      = common.HexToAddress("0x00000000000000000000000000000000000000A1")
	walletB      = common.HexToAddress("0x00000000000000000000000000000000000000B1")
)

func price() *big.Int { return big.NewInt(10_000_000_000_000_000) }

type testRig struct {
	exec      *executor.Executor
	ledger    *native.Ledger
	receivers *executor.ReceiverRegistry
	contract  *contract.Contract
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()
	ledger := native.NewLedger()
	receivers := executor.NewReceiverRegistry()
	c := contract.New(adminAddr, native.NewAccount(ledger, contractAddr),
		contract.WithReceiverResolver(receivers))
	return &testRig{
		exec:      executor.New(c, ledger, contractAddr),
		ledger:    ledger,
		receivers: receivers,
		contract:  c,
	}
}

func TestPurchase_MovesValueIntoCustody(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	require.NoError(t, rig.exec.RegisterFlag(ctx, big.NewInt(1), domain.CategoryStandard, price(), 1))
	require.NoError(t, rig.exec.Claim(ctx, walletA, big.NewInt(1)))

	rig.exec.Fund(walletB, big.NewInt(100_000_000_000_000_000))
	require.NoError(t, rig.exec.Purchase(ctx, walletB, big.NewInt(1), price()))

	assert.Equal(t, big.NewInt(90_000_000_000_000_000), rig.ledger.BalanceOf(walletB))
	assert.Equal(t, price(), rig.ledger.BalanceOf(contractAddr))

	// the contract's own accounting mirrors the ledger custody
	err := rig.exec.View(func(c *contract.Contract) error {
		assert.Equal(t, price(), c.GetContractBalance())
		return nil
	})
	require.NoError(t, err)
}

func TestPurchase_OverpaymentRefundedToWallet(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	require.NoError(t, rig.exec.RegisterFlag(ctx, big.NewInt(1), domain.CategoryStandard, price(), 1))
	require.NoError(t, rig.exec.Claim(ctx, walletA, big.NewInt(1)))

	rig.exec.Fund(walletB, big.NewInt(100_000_000_000_000_000))
	require.NoError(t, rig.exec.Purchase(ctx, walletB, big.NewInt(1), big.NewInt(100_000_000_000_000_000)))

	// only the price stays in custody; the surplus came straight back
	assert.Equal(t, big.NewInt(90_000_000_000_000_000), rig.ledger.BalanceOf(walletB))
	assert.Equal(t, price(), rig.ledger.BalanceOf(contractAddr))
}

func TestPurchase_RevertReturnsDeposit(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	require.NoError(t, rig.exec.RegisterFlag(ctx, big.NewInt(1), domain.CategoryStandard, price(), 2))
	require.NoError(t, rig.exec.Claim(ctx, walletA, big.NewInt(1)))

	rig.exec.Fund(walletB, price())
	err := rig.exec.Purchase(ctx, walletB, big.NewInt(1), price())

	var payErr *domain.InsufficientPaymentError
	require.ErrorAs(t, err, &payErr)
	assert.Equal(t, price(), rig.ledger.BalanceOf(walletB))
	assert.Equal(t, big.NewInt(0), rig.ledger.BalanceOf(contractAddr))
}

func TestPurchase_UnfundedWallet(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	require.NoError(t, rig.exec.RegisterFlag(ctx, big.NewInt(1), domain.CategoryStandard, price(), 1))
	require.NoError(t, rig.exec.Claim(ctx, walletA, big.NewInt(1)))

	err := rig.exec.Purchase(ctx, walletB, big.NewInt(1), price())
	assert.ErrorIs(t, err, native.ErrInsufficientFunds)
	assert.Equal(t, big.NewInt(0), rig.ledger.BalanceOf(contractAddr))
}

func TestPurchase_HostileRefundRecipientCannotDrain(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	require.NoError(t, rig.exec.RegisterFlag(ctx, big.NewInt(1), domain.CategoryStandard, price(), 1))
	require.NoError(t, rig.exec.RegisterFlag(ctx, big.NewInt(2), domain.CategoryStandard, price(), 1))
	require.NoError(t, rig.exec.Claim(ctx, walletA, big.NewInt(1)))
	require.NoError(t, rig.exec.Claim(ctx, walletA, big.NewInt(2)))

	// walletB's hook re-enters on the refund; the reentrancy guard holds
	// because the hook runs inside the original call
	var reentryErr error
	hookRan := false
	rig.ledger.SetHook(walletB, func(hctx context.Context, _, _ common.Address, _ *big.Int) error {
		hookRan = true
		reentryErr = rig.contract.PurchaseSecondNFT(hctx, contract.Call{Caller: walletB, Value: price()}, big.NewInt(2))
		return nil
	})

	rig.exec.Fund(walletB, big.NewInt(30_000_000_000_000_000))
	require.NoError(t, rig.exec.Purchase(ctx, walletB, big.NewInt(1), big.NewInt(30_000_000_000_000_000)))

	assert.True(t, hookRan)
	assert.ErrorIs(t, reentryErr, domain.ErrReentrantCall)
	assert.Equal(t, big.NewInt(20_000_000_000_000_000), rig.ledger.BalanceOf(walletB))
	assert.Equal(t, price(), rig.ledger.BalanceOf(contractAddr))
}

func TestWithdraw_DrainsCustodyToAdmin(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	require.NoError(t, rig.exec.RegisterFlag(ctx, big.NewInt(1), domain.CategoryStandard, price(), 1))
	require.NoError(t, rig.exec.Claim(ctx, walletA, big.NewInt(1)))
	rig.exec.Fund(walletB, price())
	require.NoError(t, rig.exec.Purchase(ctx, walletB, big.NewInt(1), price()))

	amount, err := rig.exec.Withdraw(ctx)
	require.NoError(t, err)

	assert.Equal(t, price(), amount)
	assert.Equal(t, price(), rig.ledger.BalanceOf(adminAddr))
	assert.Equal(t, big.NewInt(0), rig.ledger.BalanceOf(contractAddr))

	_, err = rig.exec.Withdraw(ctx)
	assert.ErrorIs(t, err, domain.ErrNoBalanceToWithdraw)
}

func TestConcurrentClaims_Serialized(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	const flags = 16
	for i := 1; i <= flags; i++ {
		require.NoError(t, rig.exec.RegisterFlag(ctx, big.NewInt(int64(i)), domain.CategoryStandard, price(), 2))
	}

	var wg sync.WaitGroup
	errs := make([]error, flags)
	for i := 1; i <= flags; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i-1] = rig.exec.Claim(ctx, walletA, big.NewInt(int64(i)))
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	err := rig.exec.View(func(c *contract.Contract) error {
		assert.Equal(t, uint64(flags*2), c.GetTotalTokensMinted())
		assert.Equal(t, uint64(flags*2), c.BalanceOf(walletA))
		return nil
	})
	require.NoError(t, err)
}

func TestTransferToken_RunsReceiver(t *testing.T) {
	rig := newTestRig(t)
	ctx := context.Background()

	require.NoError(t, rig.exec.RegisterFlag(ctx, big.NewInt(1), domain.CategoryStandard, price(), 1))
	require.NoError(t, rig.exec.Claim(ctx, walletA, big.NewInt(1)))

	received := false
	rig.receivers.Register(walletB, receiverFunc(func(_ context.Context, _, _, _ common.Address, tokenID uint64) error {
		received = true
		assert.Equal(t, uint64(1), tokenID)
		return nil
	}))

	require.NoError(t, rig.exec.TransferToken(ctx, walletA, walletA, walletB, 1))
	assert.True(t, received)

	err := rig.exec.View(func(c *contract.Contract) error {
		owner, err := c.OwnerOf(1)
		require.NoError(t, err)
		assert.Equal(t, walletB, owner)
		return nil
	})
	require.NoError(t, err)
}

// receiverFunc adapts a function to the TokenReceiver interface
type receiverFunc func(ctx context.Context, operator, from, to common.Address, tokenID uint64) error

func (f receiverFunc) OnTokenReceived(ctx context.Context, operator, from, to common.Address, tokenID uint64) error {
	return f(ctx, operator, from, to, tokenID)
}

package native_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flagquest/flagnode/internal/native"
)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob   = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	carol = common.HexToAddress("0x00000000000000000000000000000000000000c3")
)

func TestTransfer(t *testing.T) {
	l := native.NewLedger()
	l.Mint(alice, big.NewInt(100))

	require.NoError(t, l.Transfer(context.Background(), alice, bob, big.NewInt(60)))

	assert.Equal(t, big.NewInt(40), l.BalanceOf(alice))
	assert.Equal(t, big.NewInt(60), l.BalanceOf(bob))
	assert.Equal(t, big.NewInt(0), l.BalanceOf(carol))
}

func TestTransfer_InsufficientFunds(t *testing.T) {
	l := native.NewLedger()
	l.Mint(alice, big.NewInt(10))

	err := l.Transfer(context.Background(), alice, bob, big.NewInt(11))
	assert.ErrorIs(t, err, native.ErrInsufficientFunds)

	// unfunded senders fail the same way
	err = l.Transfer(context.Background(), carol, bob, big.NewInt(1))
	assert.ErrorIs(t, err, native.ErrInsufficientFunds)

	assert.Equal(t, big.NewInt(10), l.BalanceOf(alice))
	assert.Equal(t, big.NewInt(0), l.BalanceOf(bob))
}

func TestTransfer_InvalidAmount(t *testing.T) {
	l := native.NewLedger()
	l.Mint(alice, big.NewInt(10))

	assert.Error(t, l.Transfer(context.Background(), alice, bob, nil))
	assert.Error(t, l.Transfer(context.Background(), alice, bob, big.NewInt(-1)))
	assert.Equal(t, big.NewInt(10), l.BalanceOf(alice))
}

func TestTransfer_RecipientHookObservesCreditedBalance(t *testing.T) {
	l := native.NewLedger()
	l.Mint(alice, big.NewInt(100))

	var seen *big.Int
	l.SetHook(bob, func(_ context.Context, from, to common.Address, amount *big.Int) error {
		assert.Equal(t, alice, from)
		assert.Equal(t, bob, to)
		assert.Equal(t, big.NewInt(25), amount)
		seen = l.BalanceOf(bob)
		return nil
	})

	require.NoError(t, l.Transfer(context.Background(), alice, bob, big.NewInt(25)))
	assert.Equal(t, big.NewInt(25), seen)
}

func TestTransfer_HookRejectionRollsBack(t *testing.T) {
	l := native.NewLedger()
	l.Mint(alice, big.NewInt(100))

	hookErr := errors.New("not accepting value")
	l.SetHook(bob, func(context.Context, common.Address, common.Address, *big.Int) error {
		return hookErr
	})

	err := l.Transfer(context.Background(), alice, bob, big.NewInt(30))
	require.ErrorIs(t, err, hookErr)

	assert.Equal(t, big.NewInt(100), l.BalanceOf(alice))
	assert.Equal(t, big.NewInt(0), l.BalanceOf(bob))

	// detaching the hook lets the transfer through
	l.SetHook(bob, nil)
	require.NoError(t, l.Transfer(context.Background(), alice, bob, big.NewInt(30)))
	assert.Equal(t, big.NewInt(30), l.BalanceOf(bob))
}

func TestMove_SkipsHooks(t *testing.T) {
	l := native.NewLedger()
	l.Mint(alice, big.NewInt(50))

	l.SetHook(bob, func(context.Context, common.Address, common.Address, *big.Int) error {
		t.Fatal("hook must not run on Move")
		return nil
	})

	require.NoError(t, l.Move(alice, bob, big.NewInt(50)))
	assert.Equal(t, big.NewInt(50), l.BalanceOf(bob))

	err := l.Move(alice, bob, big.NewInt(1))
	assert.ErrorIs(t, err, native.ErrInsufficientFunds)
}

func TestAccountSend(t *testing.T) {
	l := native.NewLedger()
	acct := native.NewAccount(l, alice)
	l.Mint(alice, big.NewInt(70))

	assert.Equal(t, alice, acct.Address())
	require.NoError(t, acct.Send(context.Background(), bob, big.NewInt(70)))
	assert.Equal(t, big.NewInt(0), l.BalanceOf(alice))
	assert.Equal(t, big.NewInt(70), l.BalanceOf(bob))

	assert.ErrorIs(t, acct.Send(context.Background(), bob, big.NewInt(1)), native.ErrInsufficientFunds)
}

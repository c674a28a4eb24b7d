package contract_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flagquest/flagnode/internal/contract"
	"github.com/flagquest/flagnode/internal/domain"
	"github.com/flagquest/flagnode/internal/events"
)

func TestWithdraw(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, 1, domain.CategoryStandard, standardPrice(), 2)
	env.claim(t, userA, 1)
	total := new(big.Int).Mul(standardPrice(), big.NewInt(2))
	env.purchase(t, userB, 1, total)
	require.Equal(t, total, env.contract.GetContractBalance())

	require.NoError(t, env.contract.Withdraw(context.Background(), contract.Call{Caller: admin}))

	assert.Equal(t, int64(0), env.contract.GetContractBalance().Int64())
	require.Len(t, env.sender.sends, 1)
	assert.Equal(t, admin, env.sender.sends[0].to)
	assert.Equal(t, total, env.sender.sends[0].amount)

	withdrawals := env.sink.ofType(events.TypeWithdrawal)
	require.Len(t, withdrawals, 1)
	assert.Equal(t, total.String(), withdrawals[0].Amount)
	assert.Equal(t, admin.String(), withdrawals[0].Address)
}

func TestWithdraw_Unauthorized(t *testing.T) {
	env := newTestEnv(t)
	err := env.contract.Withdraw(context.Background(), contract.Call{Caller: userA})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestWithdraw_EmptyBalance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	err := env.contract.Withdraw(ctx, contract.Call{Caller: admin})
	assert.ErrorIs(t, err, domain.ErrNoBalanceToWithdraw)

	// draining once makes a second withdrawal fail the same way
	env.register(t, 1, domain.CategoryStandard, standardPrice(), 1)
	env.claim(t, userA, 1)
	env.purchase(t, userB, 1, standardPrice())
	require.NoError(t, env.contract.Withdraw(ctx, contract.Call{Caller: admin}))

	err = env.contract.Withdraw(ctx, contract.Call{Caller: admin})
	assert.ErrorIs(t, err, domain.ErrNoBalanceToWithdraw)
}

func TestWithdraw_TransferFailureRestoresBalance(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, 1, domain.CategoryStandard, standardPrice(), 1)
	env.claim(t, userA, 1)
	env.purchase(t, userB, 1, standardPrice())

	env.sender.failErr = errors.New("transfer rejected")
	err := env.contract.Withdraw(context.Background(), contract.Call{Caller: admin})

	var withdrawErr *domain.WithdrawalFailedError
	require.ErrorAs(t, err, &withdrawErr)
	assert.Equal(t, standardPrice(), env.contract.GetContractBalance())
	assert.Empty(t, env.sink.ofType(events.TypeWithdrawal))

	// the balance stays withdrawable once the transfer works again
	env.sender.failErr = nil
	require.NoError(t, env.contract.Withdraw(context.Background(), contract.Call{Caller: admin}))
	assert.Equal(t, int64(0), env.contract.GetContractBalance().Int64())
}

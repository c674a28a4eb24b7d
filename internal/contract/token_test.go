package contract_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flagquest/flagnode/internal/contract"
	"github.com/flagquest/flagnode/internal/domain"
	"github.com/flagquest/flagnode/internal/events"
)

func TestSupportsInterface(t *testing.T) {
	env := newTestEnv(t)

	for _, id := range []contract.InterfaceID{
		contract.InterfaceERC165,
		contract.InterfaceToken,
		contract.InterfaceTokenMetadata,
		contract.InterfaceTokenEnumerable,
	} {
		assert.True(t, env.contract.SupportsInterface(id))
	}
	assert.False(t, env.contract.SupportsInterface(contract.InterfaceID{0xde, 0xad, 0xbe, 0xef}))
	assert.False(t, env.contract.SupportsInterface(contract.InterfaceID{0xff, 0xff, 0xff, 0xff}))
}

func TestTokenURI(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, 42, domain.CategoryStandard, standardPrice(), 1)
	env.claim(t, userA, 42)

	uri, err := env.contract.TokenURI(1)
	require.NoError(t, err)
	assert.Equal(t, "https://meta.flagquest.io/tokens/1.json", uri)

	_, err = env.contract.TokenURI(99)
	var notFound *domain.TokenNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, uint64(99), notFound.TokenID)

	// clearing the base path makes every URI empty
	require.NoError(t, env.contract.SetBaseURI(context.Background(), contract.Call{Caller: admin}, ""))
	uri, err = env.contract.TokenURI(1)
	require.NoError(t, err)
	assert.Empty(t, uri)
}

func TestEnumeration(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, 1, domain.CategoryStandard, standardPrice(), 2)
	env.register(t, 2, domain.CategoryStandard, standardPrice(), 1)
	env.claim(t, userA, 1) // tokens 1,2
	env.claim(t, userB, 2) // token 3
	env.purchase(t, userB, 1, new(big.Int).Mul(standardPrice(), big.NewInt(2))) // tokens 4,5

	assert.Equal(t, uint64(5), env.contract.TotalSupply())

	for i := uint64(0); i < 5; i++ {
		id, err := env.contract.TokenByIndex(i)
		require.NoError(t, err)
		assert.Equal(t, i+1, id)
	}
	_, err := env.contract.TokenByIndex(5)
	require.Error(t, err)

	assert.Equal(t, uint64(2), env.contract.BalanceOf(userA))
	assert.Equal(t, uint64(3), env.contract.BalanceOf(userB))
	assert.Equal(t, uint64(0), env.contract.BalanceOf(userC))

	got := make([]uint64, 0, 3)
	for i := uint64(0); i < 3; i++ {
		id, err := env.contract.TokenOfOwnerByIndex(userB, i)
		require.NoError(t, err)
		got = append(got, id)
	}
	assert.Equal(t, []uint64{3, 4, 5}, got)

	_, err = env.contract.TokenOfOwnerByIndex(userB, 3)
	require.Error(t, err)
	_, err = env.contract.TokenOfOwnerByIndex(userC, 0)
	require.Error(t, err)
}

func TestTransferFrom(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, 1, domain.CategoryStandard, standardPrice(), 1)
	env.claim(t, userA, 1)
	ctx := context.Background()

	require.NoError(t, env.contract.TransferFrom(ctx, contract.Call{Caller: userA}, userA, userB, 1))

	owner, err := env.contract.OwnerOf(1)
	require.NoError(t, err)
	assert.Equal(t, userB, owner)
	assert.Equal(t, uint64(0), env.contract.BalanceOf(userA))
	assert.Equal(t, uint64(1), env.contract.BalanceOf(userB))

	// historical claim ownership survives the transfer
	pair, err := env.contract.GetFlagPair(big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, userA, pair.FirstOwner)

	transfers := env.sink.ofType(events.TypeTransfer)
	last := transfers[len(transfers)-1]
	assert.Equal(t, userA.String(), last.FromAddress)
	assert.Equal(t, userB.String(), last.ToAddress)
}

func TestTransferFrom_Errors(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, 1, domain.CategoryStandard, standardPrice(), 1)
	env.claim(t, userA, 1)
	ctx := context.Background()

	tests := []struct {
		name    string
		caller  common.Address
		from    common.Address
		to      common.Address
		tokenID uint64
		wantErr error
	}{
		{
			name:    "unknown token",
			caller:  userA,
			from:    userA,
			to:      userB,
			tokenID: 7,
			wantErr: &domain.TokenNotFoundError{TokenID: 7},
		},
		{
			name:    "from is not the owner",
			caller:  userA,
			from:    userB,
			to:      userC,
			tokenID: 1,
			wantErr: domain.ErrNotTokenOwner,
		},
		{
			name:    "zero recipient",
			caller:  userA,
			from:    userA,
			to:      common.Address{},
			tokenID: 1,
			wantErr: domain.ErrZeroAddress,
		},
		{
			name:    "caller not authorized",
			caller:  userC,
			from:    userA,
			to:      userB,
			tokenID: 1,
			wantErr: domain.ErrNotTokenOwner,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.contract.TransferFrom(ctx, contract.Call{Caller: tt.caller}, tt.from, tt.to, tt.tokenID)
			require.Error(t, err)
			var notFound *domain.TokenNotFoundError
			if errors.As(tt.wantErr, &notFound) {
				var got *domain.TokenNotFoundError
				require.ErrorAs(t, err, &got)
				assert.Equal(t, notFound.TokenID, got.TokenID)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}

			owner, ownerErr := env.contract.OwnerOf(1)
			require.NoError(t, ownerErr)
			assert.Equal(t, userA, owner)
		})
	}
}

func TestApprove(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, 1, domain.CategoryStandard, standardPrice(), 1)
	env.claim(t, userA, 1)
	ctx := context.Background()

	// only the owner may approve
	err := env.contract.Approve(ctx, contract.Call{Caller: userB}, userC, 1)
	assert.ErrorIs(t, err, domain.ErrNotTokenOwner)

	require.NoError(t, env.contract.Approve(ctx, contract.Call{Caller: userA}, userC, 1))
	approved, err := env.contract.GetApproved(1)
	require.NoError(t, err)
	assert.Equal(t, userC, approved)

	// the approved address may move the token
	require.NoError(t, env.contract.TransferFrom(ctx, contract.Call{Caller: userC}, userA, userB, 1))
	owner, err := env.contract.OwnerOf(1)
	require.NoError(t, err)
	assert.Equal(t, userB, owner)

	// transfer clears the approval
	approved, err = env.contract.GetApproved(1)
	require.NoError(t, err)
	assert.Equal(t, common.Address{}, approved)
	err = env.contract.TransferFrom(ctx, contract.Call{Caller: userC}, userB, userA, 1)
	assert.ErrorIs(t, err, domain.ErrNotTokenOwner)
}

func TestSetApprovalForAll(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, 1, domain.CategoryStandard, standardPrice(), 2)
	env.claim(t, userA, 1)
	ctx := context.Background()

	err := env.contract.SetApprovalForAll(ctx, contract.Call{Caller: userA}, common.Address{}, true)
	assert.ErrorIs(t, err, domain.ErrZeroAddress)

	require.NoError(t, env.contract.SetApprovalForAll(ctx, contract.Call{Caller: userA}, userC, true))
	assert.True(t, env.contract.IsApprovedForAll(userA, userC))
	assert.False(t, env.contract.IsApprovedForAll(userB, userC))

	// an operator may move and approve any of the owner's tokens
	require.NoError(t, env.contract.TransferFrom(ctx, contract.Call{Caller: userC}, userA, userB, 1))
	require.NoError(t, env.contract.Approve(ctx, contract.Call{Caller: userC}, userB, 2))

	require.NoError(t, env.contract.SetApprovalForAll(ctx, contract.Call{Caller: userA}, userC, false))
	assert.False(t, env.contract.IsApprovedForAll(userA, userC))
	err = env.contract.TransferFrom(ctx, contract.Call{Caller: userC}, userA, userB, 2)
	assert.ErrorIs(t, err, domain.ErrNotTokenOwner)
}

func TestSafeTransferFrom_ReceiverCallback(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, 1, domain.CategoryStandard, standardPrice(), 1)
	env.claim(t, userA, 1)
	ctx := context.Background()

	var gotFrom, gotTo common.Address
	env.receivers[userB] = receiverFunc(func(_ context.Context, operator, from, to common.Address, tokenID uint64) error {
		assert.Equal(t, userA, operator)
		gotFrom, gotTo = from, to
		assert.Equal(t, uint64(1), tokenID)
		return nil
	})

	require.NoError(t, env.contract.SafeTransferFrom(ctx, contract.Call{Caller: userA}, userA, userB, 1))
	assert.Equal(t, userA, gotFrom)
	assert.Equal(t, userB, gotTo)
}

func TestSafeTransferFrom_ReceiverRejectionReverts(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, 1, domain.CategoryStandard, standardPrice(), 1)
	env.claim(t, userA, 1)
	ctx := context.Background()

	env.receivers[userB] = receiverFunc(func(context.Context, common.Address, common.Address, common.Address, uint64) error {
		return errors.New("cannot hold tokens")
	})

	err := env.contract.SafeTransferFrom(ctx, contract.Call{Caller: userA}, userA, userB, 1)
	require.Error(t, err)

	owner, ownerErr := env.contract.OwnerOf(1)
	require.NoError(t, ownerErr)
	assert.Equal(t, userA, owner)
	assert.Equal(t, uint64(1), env.contract.BalanceOf(userA))
	assert.Equal(t, uint64(0), env.contract.BalanceOf(userB))
}

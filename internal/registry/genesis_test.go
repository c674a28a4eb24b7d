package registry_test

import (
	"context"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flagquest/flagnode/internal/contract"
	"github.com/flagquest/flagnode/internal/executor"
	"github.com/flagquest/flagnode/internal/native"
	"github.com/flagquest/flagnode/internal/registry"
)

func writeGenesis(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "genesis.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newExec(t *testing.T) *executor.Executor {
	t.Helper()
	admin := common.HexToAddress("0x00000000000000000000000000000000000000AD")
	contractAddr := common.HexToAddress("0x00000000000000000000000000000000000000CC")
	ledger := native.NewLedger()
	c := contract.New(admin, native.NewAccount(ledger, contractAddr))
	return executor.New(c, ledger, contractAddr)
}

func TestLoadGenesis(t *testing.T) {
	path := writeGenesis(t, `{
		"flags": [
			{"flag_id": "1", "category": "standard", "price_per_nft": "10000000000000000", "nfts_required": 2},
			{"flag_id": "2", "category": "plus", "price_per_nft": "20000000000000000"}
		]
	}`)

	catalog, err := registry.LoadGenesis(path)
	require.NoError(t, err)
	require.Len(t, catalog.Flags, 2)
	assert.Equal(t, "1", catalog.Flags[0].FlagID)
	assert.Equal(t, "plus", catalog.Flags[1].Category)
}

func TestLoadGenesis_Errors(t *testing.T) {
	_, err := registry.LoadGenesis(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := writeGenesis(t, `{not json`)
	_, err = registry.LoadGenesis(path)
	assert.Error(t, err)
}

func TestApply_RegistersCatalog(t *testing.T) {
	path := writeGenesis(t, `{
		"flags": [
			{"flag_id": "1", "category": "standard", "price_per_nft": "1000", "nfts_required": 3, "metadata_hash": "0xdeadbeef"},
			{"flag_id": "2", "category": "premium", "price_per_nft": "2000"}
		]
	}`)
	catalog, err := registry.LoadGenesis(path)
	require.NoError(t, err)

	exec := newExec(t)
	require.NoError(t, catalog.Apply(context.Background(), exec))

	err = exec.View(func(c *contract.Contract) error {
		assert.Equal(t, 2, c.GetTotalRegisteredFlags())
		required, err := c.GetNftsRequired(big.NewInt(1))
		require.NoError(t, err)
		assert.Equal(t, uint8(3), required)

		pair, err := c.GetFlagPair(big.NewInt(1))
		require.NoError(t, err)
		assert.Equal(t, "0xdeadbeef", pair.MetadataHash)

		// nfts_required defaults to one when omitted
		required, err = c.GetNftsRequired(big.NewInt(2))
		require.NoError(t, err)
		assert.Equal(t, uint8(1), required)
		return nil
	})
	require.NoError(t, err)
}

func TestApply_Idempotent(t *testing.T) {
	path := writeGenesis(t, `{
		"flags": [{"flag_id": "1", "category": "standard", "price_per_nft": "1000", "nfts_required": 1}]
	}`)
	catalog, err := registry.LoadGenesis(path)
	require.NoError(t, err)

	exec := newExec(t)
	require.NoError(t, catalog.Apply(context.Background(), exec))
	require.NoError(t, catalog.Apply(context.Background(), exec))

	err = exec.View(func(c *contract.Contract) error {
		assert.Equal(t, 1, c.GetTotalRegisteredFlags())
		return nil
	})
	require.NoError(t, err)
}

func TestApply_InvalidEntryFailsWhole(t *testing.T) {
	path := writeGenesis(t, `{
		"flags": [
			{"flag_id": "1", "category": "standard", "price_per_nft": "1000", "nfts_required": 1},
			{"flag_id": "2", "category": "mythic", "price_per_nft": "1000", "nfts_required": 1}
		]
	}`)
	catalog, err := registry.LoadGenesis(path)
	require.NoError(t, err)

	exec := newExec(t)
	require.Error(t, catalog.Apply(context.Background(), exec))

	err = exec.View(func(c *contract.Contract) error {
		assert.Equal(t, 0, c.GetTotalRegisteredFlags())
		return nil
	})
	require.NoError(t, err)
}

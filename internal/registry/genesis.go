// Package registry loads the genesis flag catalog from disk and seeds
// the contract with it at startup.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"go.uber.org/zap"

	"github.com/flagquest/flagnode/internal/contract"
	"github.com/flagquest/flagnode/internal/domain"
	"github.com/flagquest/flagnode/internal/executor"
	"github.com/flagquest/flagnode/internal/logger"
)

// GenesisFlag is one catalog entry in the genesis JSON file
type GenesisFlag struct {
	FlagID       string `json:"flag_id"`
	Category     string `json:"category"`
	PricePerNFT  string `json:"price_per_nft"`
	NftsRequired uint8  `json:"nfts_required"`
	MetadataHash string `json:"metadata_hash,omitempty"`
}

// GenesisCatalog represents the structure of the genesis file
type GenesisCatalog struct {
	Flags []GenesisFlag `json:"flags"`
}

// parsedFlag is a catalog entry with its fields validated and decoded
type parsedFlag struct {
	id       *big.Int
	category domain.Category
	price    *big.Int
	required uint8
	hash     string
}

// LoadGenesis loads the genesis catalog from a JSON file
func LoadGenesis(filePath string) (*GenesisCatalog, error) {
	data, err := os.ReadFile(filePath) //nolint:gosec,G304 // This should be a trusted file
	if err != nil {
		return nil, fmt.Errorf("failed to read genesis file: %w", err)
	}

	var catalog GenesisCatalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse genesis JSON: %w", err)
	}

	return &catalog, nil
}

// parse validates every catalog entry before any registration runs
func (g *GenesisCatalog) parse() ([]parsedFlag, error) {
	out := make([]parsedFlag, 0, len(g.Flags))
	for i, f := range g.Flags {
		id, err := domain.ParseFlagID(f.FlagID)
		if err != nil {
			return nil, fmt.Errorf("genesis entry %d: %w", i, err)
		}
		category, err := domain.ParseCategory(f.Category)
		if err != nil {
			return nil, fmt.Errorf("genesis entry %d: %w", i, err)
		}
		price, ok := new(big.Int).SetString(f.PricePerNFT, 10)
		if !ok {
			return nil, fmt.Errorf("genesis entry %d: invalid price %q", i, f.PricePerNFT)
		}
		required := f.NftsRequired
		if required == 0 {
			required = 1
		}
		out = append(out, parsedFlag{id: id, category: category, price: price, required: required, hash: f.MetadataHash})
	}
	return out, nil
}

// Apply registers every catalog flag that is not registered yet. Entries
// already present in the contract are skipped, so re-running at every
// startup is safe.
func (g *GenesisCatalog) Apply(ctx context.Context, exec *executor.Executor) error {
	flags, err := g.parse()
	if err != nil {
		return err
	}

	var (
		ids        []*big.Int
		categories []domain.Category
		prices     []*big.Int
		required   []uint8
		hashes     []string
	)
	err = exec.View(func(c *contract.Contract) error {
		for _, f := range flags {
			if c.IsFlagRegistered(f.id) {
				logger.Warn("genesis flag already registered, skipping",
					zap.String("flag_id", f.id.String()))
				continue
			}
			ids = append(ids, f.id)
			categories = append(categories, f.category)
			prices = append(prices, f.price)
			required = append(required, f.required)
			hashes = append(hashes, f.hash)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if len(ids) == 0 {
		logger.Info("genesis catalog already registered",
			zap.Int("total", len(flags)))
		return nil
	}

	if err := exec.BatchRegisterFlags(ctx, ids, categories, prices, required); err != nil {
		return fmt.Errorf("failed to register genesis flags: %w", err)
	}

	for i, id := range ids {
		if hashes[i] == "" {
			continue
		}
		if err := exec.SetMetadataHash(ctx, id, hashes[i]); err != nil {
			return fmt.Errorf("failed to set metadata hash for flag %s: %w", id, err)
		}
	}

	logger.Info("registered genesis flags",
		zap.Int("registered", len(ids)),
		zap.Int("total", len(flags)))
	return nil
}

package contract

import (
	"context"
	"math/big"

	"github.com/flagquest/flagnode/internal/domain"
	"github.com/flagquest/flagnode/internal/events"
)

// RegisterFlag registers a new flag pair. Admin only. The category, price
// and token multiplicity are fixed for the lifetime of the flag.
func (c *Contract) RegisterFlag(ctx context.Context, call Call, flagID *big.Int, category domain.Category, price *big.Int, nftsRequired uint8) error {
	if err := c.requireAdmin(call); err != nil {
		return err
	}
	return c.run(ctx, func(tx *txn) error {
		return c.registerOne(tx, flagID, category, price, nftsRequired)
	})
}

// RegisterFlagSimple registers a flag requiring a single token per phase.
// Kept as a distinct entry point for wire compatibility.
func (c *Contract) RegisterFlagSimple(ctx context.Context, call Call, flagID *big.Int, category domain.Category, price *big.Int) error {
	return c.RegisterFlag(ctx, call, flagID, category, price, 1)
}

// BatchRegisterFlags registers a batch of flags atomically: the first
// invalid tuple reverts every insertion performed by the call.
func (c *Contract) BatchRegisterFlags(ctx context.Context, call Call, flagIDs []*big.Int, categories []domain.Category, prices []*big.Int, nftsRequired []uint8) error {
	if err := c.requireAdmin(call); err != nil {
		return err
	}
	if len(categories) != len(flagIDs) || len(prices) != len(flagIDs) || len(nftsRequired) != len(flagIDs) {
		return domain.ErrArrayLengthMismatch
	}
	return c.run(ctx, func(tx *txn) error {
		for i := range flagIDs {
			if err := c.registerOne(tx, flagIDs[i], categories[i], prices[i], nftsRequired[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// registerOne validates one registration tuple and inserts the record
func (c *Contract) registerOne(tx *txn, flagID *big.Int, category domain.Category, price *big.Int, nftsRequired uint8) error {
	if c.state.flag(flagID) != nil {
		return &domain.AlreadyRegisteredError{FlagID: flagID}
	}
	if !domain.IsValidCategory(category) {
		return &domain.InvalidCategoryError{Category: category}
	}
	if price == nil || price.Sign() <= 0 {
		return domain.ErrInvalidPrice
	}
	if nftsRequired < domain.MIN_NFTS_REQUIRED || nftsRequired > domain.MAX_NFTS_REQUIRED {
		return &domain.InvalidNftsRequiredError{NftsRequired: nftsRequired}
	}

	rec := &flagRecord{
		id:           new(big.Int).Set(flagID),
		category:     category,
		price:        new(big.Int).Set(price),
		nftsRequired: nftsRequired,
	}
	c.state.insertFlag(tx, rec)
	tx.emit(events.NewFlagRegistered(rec.id, category, rec.price, nftsRequired))
	return nil
}

// SetMetadataHash attaches an integrity digest to a registered flag. Admin
// only; overwrites any previous hash.
func (c *Contract) SetMetadataHash(ctx context.Context, call Call, flagID *big.Int, hash string) error {
	if err := c.requireAdmin(call); err != nil {
		return err
	}
	return c.run(ctx, func(tx *txn) error {
		rec := c.state.flag(flagID)
		if rec == nil {
			return &domain.NotRegisteredError{FlagID: flagID}
		}
		c.state.setMetadataHash(tx, rec, hash)
		tx.emit(events.NewMetadataHashSet(rec.id, hash))
		return nil
	})
}

// SetBaseURI replaces the base path used for token URI composition. Admin only.
func (c *Contract) SetBaseURI(ctx context.Context, call Call, baseURI string) error {
	if err := c.requireAdmin(call); err != nil {
		return err
	}
	return c.run(ctx, func(tx *txn) error {
		c.state.setBaseURI(tx, baseURI)
		tx.emit(events.NewBaseURIUpdated(baseURI))
		return nil
	})
}

package contract

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/flagquest/flagnode/internal/domain"
)

var basisPoints = big.NewInt(domain.BASIS_POINTS)

// DiscountedPricePerNFT returns the effective per-token price of a flag's
// second phase for a given buyer. Only Standard-category flags are
// discountable; Plus and Premium flags always charge their full price.
func (c *Contract) DiscountedPricePerNFT(flagID *big.Int, buyer common.Address) (*big.Int, error) {
	if err := c.requireNotEntered(); err != nil {
		return nil, err
	}
	rec := c.state.flag(flagID)
	if rec == nil {
		return nil, &domain.NotRegisteredError{FlagID: flagID}
	}
	return c.discountedPrice(rec, buyer), nil
}

// TotalPriceWithDiscount returns the discounted per-token price multiplied
// by the flag's token multiplicity.
func (c *Contract) TotalPriceWithDiscount(flagID *big.Int, buyer common.Address) (*big.Int, error) {
	if err := c.requireNotEntered(); err != nil {
		return nil, err
	}
	rec := c.state.flag(flagID)
	if rec == nil {
		return nil, &domain.NotRegisteredError{FlagID: flagID}
	}
	perNFT := c.discountedPrice(rec, buyer)
	return perNFT.Mul(perNFT, big.NewInt(int64(rec.nftsRequired))), nil
}

// discountedPrice applies the buyer's best tier discount in basis points.
// Integer arithmetic, multiply before divide, truncation toward zero.
func (c *Contract) discountedPrice(rec *flagRecord, buyer common.Address) *big.Int {
	if rec.category != domain.CategoryStandard {
		return new(big.Int).Set(rec.price)
	}

	var bps int64
	switch {
	case c.state.hasPremium[buyer]:
		bps = domain.PREMIUM_DISCOUNT_BPS
	case c.state.hasPlus[buyer]:
		bps = domain.PLUS_DISCOUNT_BPS
	default:
		return new(big.Int).Set(rec.price)
	}

	discount := new(big.Int).Mul(rec.price, big.NewInt(bps))
	discount.Div(discount, basisPoints)
	return new(big.Int).Sub(rec.price, discount)
}

// UserHasPlus reports whether an address holds the Plus tier
func (c *Contract) UserHasPlus(addr common.Address) bool {
	return c.state.hasPlus[addr]
}

// UserHasPremium reports whether an address holds the Premium tier
func (c *Contract) UserHasPremium(addr common.Address) bool {
	return c.state.hasPremium[addr]
}

// GetUserDiscountTier returns the buyer's best tier: Premium beats Plus
func (c *Contract) GetUserDiscountTier(addr common.Address) domain.Tier {
	switch {
	case c.state.hasPremium[addr]:
		return domain.TierPremium
	case c.state.hasPlus[addr]:
		return domain.TierPlus
	default:
		return domain.TierNone
	}
}

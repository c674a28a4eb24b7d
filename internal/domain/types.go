package domain

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Category represents the flag category, fixed at registration.
type Category uint8

const (
	CategoryStandard Category = 0
	CategoryPlus     Category = 1
	CategoryPremium  Category = 2
)

// IsValidCategory checks if a category value is one of the known categories
func IsValidCategory(c Category) bool {
	return c == CategoryStandard || c == CategoryPlus || c == CategoryPremium
}

// String returns the lowercase name of the category
func (c Category) String() string {
	switch c {
	case CategoryStandard:
		return "standard"
	case CategoryPlus:
		return "plus"
	case CategoryPremium:
		return "premium"
	default:
		return fmt.Sprintf("category(%d)", uint8(c))
	}
}

// ParseCategory parses a category from its lowercase name
func ParseCategory(s string) (Category, error) {
	switch s {
	case "standard":
		return CategoryStandard, nil
	case "plus":
		return CategoryPlus, nil
	case "premium":
		return CategoryPremium, nil
	default:
		return 0, fmt.Errorf("unknown category %q", s)
	}
}

// Tier represents a buyer's discount tier, conferred by completing a pair
// of the matching category. Monotonic: once granted, never cleared.
type Tier uint8

const (
	TierNone    Tier = 0
	TierPlus    Tier = 1
	TierPremium Tier = 2
)

// String returns the lowercase name of the tier
func (t Tier) String() string {
	switch t {
	case TierPlus:
		return "plus"
	case TierPremium:
		return "premium"
	default:
		return "none"
	}
}

// FlagID is the 256-bit identifier of a registered flag.
type FlagID = *big.Int

// FlagKey returns the canonical map key for a flag id (decimal string)
func FlagKey(id *big.Int) string {
	if id == nil {
		return ""
	}
	return id.String()
}

// ParseFlagID parses a decimal flag id string
func ParseFlagID(s string) (*big.Int, error) {
	id, ok := new(big.Int).SetString(s, 10)
	if !ok || id.Sign() < 0 {
		return nil, fmt.Errorf("invalid flag id %q", s)
	}
	return id, nil
}

// ParseAddress parses and normalizes a hex wallet address
func ParseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

// IsZeroAddress checks if an address is the zero address
func IsZeroAddress(addr common.Address) bool {
	return addr == common.Address{}
}

package contract

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/flagquest/flagnode/internal/domain"
)

// FlagPair is the externally visible snapshot of one flag record.
type FlagPair struct {
	FlagID       *big.Int
	Category     domain.Category
	Price        *big.Int
	NftsRequired uint8

	FirstMinted  bool
	SecondMinted bool
	PairComplete bool

	FirstOwner  common.Address
	SecondOwner common.Address

	FirstMintedCount  uint8
	SecondMintedCount uint8

	FirstTokenID  uint64
	SecondTokenID uint64

	MetadataHash string
}

// GetFlagPair returns a snapshot of the whole flag record
func (c *Contract) GetFlagPair(flagID *big.Int) (*FlagPair, error) {
	if err := c.requireNotEntered(); err != nil {
		return nil, err
	}
	rec := c.state.flag(flagID)
	if rec == nil {
		return nil, &domain.NotRegisteredError{FlagID: flagID}
	}
	return &FlagPair{
		FlagID:            new(big.Int).Set(rec.id),
		Category:          rec.category,
		Price:             new(big.Int).Set(rec.price),
		NftsRequired:      rec.nftsRequired,
		FirstMinted:       rec.firstMinted,
		SecondMinted:      rec.secondMinted,
		PairComplete:      rec.pairComplete,
		FirstOwner:        rec.firstOwner,
		SecondOwner:       rec.secondOwner,
		FirstMintedCount:  rec.firstMintedCount,
		SecondMintedCount: rec.secondMintedCount,
		FirstTokenID:      rec.firstTokenID,
		SecondTokenID:     rec.secondTokenID,
		MetadataHash:      rec.metadataHash,
	}, nil
}

// IsFlagRegistered checks the registry membership predicate
func (c *Contract) IsFlagRegistered(flagID *big.Int) bool {
	return c.state.flag(flagID) != nil
}

// GetFirstTokenIds returns the ordered phase-1 token ids of a flag
func (c *Contract) GetFirstTokenIds(flagID *big.Int) ([]uint64, error) {
	if err := c.requireNotEntered(); err != nil {
		return nil, err
	}
	rec := c.state.flag(flagID)
	if rec == nil {
		return nil, &domain.NotRegisteredError{FlagID: flagID}
	}
	return append([]uint64{}, rec.firstTokens...), nil
}

// GetSecondTokenIds returns the ordered phase-2 token ids of a flag
func (c *Contract) GetSecondTokenIds(flagID *big.Int) ([]uint64, error) {
	if err := c.requireNotEntered(); err != nil {
		return nil, err
	}
	rec := c.state.flag(flagID)
	if rec == nil {
		return nil, &domain.NotRegisteredError{FlagID: flagID}
	}
	return append([]uint64{}, rec.secondTokens...), nil
}

// GetNftsRequired returns the token multiplicity per phase of a flag
func (c *Contract) GetNftsRequired(flagID *big.Int) (uint8, error) {
	rec := c.state.flag(flagID)
	if rec == nil {
		return 0, &domain.NotRegisteredError{FlagID: flagID}
	}
	return rec.nftsRequired, nil
}

// GetTotalRegisteredFlags returns the number of registered flags
func (c *Contract) GetTotalRegisteredFlags() int {
	return len(c.state.flagOrder)
}

// GetRegisteredFlagIds returns every registered flag id in insertion order
func (c *Contract) GetRegisteredFlagIds() []*big.Int {
	out := make([]*big.Int, len(c.state.flagOrder))
	for i, id := range c.state.flagOrder {
		out[i] = new(big.Int).Set(id)
	}
	return out
}

// GetFlagIdForToken returns the flag a minted token belongs to
func (c *Contract) GetFlagIdForToken(tokenID uint64) (*big.Int, error) {
	rec := c.state.tokens[tokenID]
	if rec == nil {
		return nil, &domain.TokenNotFoundError{TokenID: tokenID}
	}
	return new(big.Int).Set(rec.flagID), nil
}

// IsTokenFirstNFT reports whether a minted token carries the phase-1 marker
func (c *Contract) IsTokenFirstNFT(tokenID uint64) (bool, error) {
	rec := c.state.tokens[tokenID]
	if rec == nil {
		return false, &domain.TokenNotFoundError{TokenID: tokenID}
	}
	return rec.first, nil
}

// GetTotalTokensMinted returns the monotonic mint counter
func (c *Contract) GetTotalTokensMinted() uint64 {
	return c.state.totalMinted
}

// GetContractBalance returns the accumulated payment balance
func (c *Contract) GetContractBalance() *big.Int {
	return new(big.Int).Set(c.state.balance)
}

// Package dto defines the REST wire representations of registry state.
// Monetary values travel as decimal strings to keep full 256-bit
// precision.
package dto

import (
	"time"

	"github.com/flagquest/flagnode/internal/store/schema"
)

// FlagResponse is the wire form of one flag pair
type FlagResponse struct {
	FlagID            string  `json:"flag_id"`
	Category          uint8   `json:"category"`
	PricePerNFT       string  `json:"price_per_nft"`
	NftsRequired      uint8   `json:"nfts_required"`
	FirstMinted       bool    `json:"first_minted"`
	SecondMinted      bool    `json:"second_minted"`
	PairComplete      bool    `json:"pair_complete"`
	FirstOwner        *string `json:"first_owner,omitempty"`
	SecondOwner       *string `json:"second_owner,omitempty"`
	FirstMintedCount  uint8   `json:"first_minted_count"`
	SecondMintedCount uint8   `json:"second_minted_count"`
	FirstTokenID      *uint64 `json:"first_token_id,omitempty"`
	SecondTokenID     *uint64 `json:"second_token_id,omitempty"`
	MetadataHash      string  `json:"metadata_hash,omitempty"`
	RegisteredAt      time.Time `json:"registered_at"`
}

// FlagFromSchema maps a projected flag row to its wire form
func FlagFromSchema(f *schema.Flag) *FlagResponse {
	return &FlagResponse{
		FlagID:            f.FlagID,
		Category:          f.Category,
		PricePerNFT:       f.PricePerNFT,
		NftsRequired:      f.NftsRequired,
		FirstMinted:       f.FirstMinted,
		SecondMinted:      f.SecondMinted,
		PairComplete:      f.PairComplete,
		FirstOwner:        f.FirstOwner,
		SecondOwner:       f.SecondOwner,
		FirstMintedCount:  f.FirstMintedCount,
		SecondMintedCount: f.SecondMintedCount,
		FirstTokenID:      f.FirstTokenID,
		SecondTokenID:     f.SecondTokenID,
		MetadataHash:      f.MetadataHash,
		RegisteredAt:      f.CreatedAt,
	}
}

// TokenResponse is the wire form of one minted token
type TokenResponse struct {
	TokenID  uint64 `json:"token_id"`
	FlagID   string `json:"flag_id"`
	Owner    string `json:"owner"`
	First    bool   `json:"first"`
	TokenURI string `json:"token_uri,omitempty"`
	MintedAt time.Time `json:"minted_at"`
}

// TokenFromSchema maps a projected token row to its wire form
func TokenFromSchema(t *schema.Token) *TokenResponse {
	return &TokenResponse{
		TokenID:  t.TokenID,
		FlagID:   t.FlagID,
		Owner:    t.Owner,
		First:    t.First,
		MintedAt: t.CreatedAt,
	}
}

// TierResponse is the wire form of a user's discount standing
type TierResponse struct {
	Address    string `json:"address"`
	Tier       uint8  `json:"tier"`
	HasPlus    bool   `json:"has_plus"`
	HasPremium bool   `json:"has_premium"`
}

// PriceResponse is the wire form of a live price quote
type PriceResponse struct {
	FlagID      string `json:"flag_id"`
	Buyer       string `json:"buyer"`
	PricePerNFT string `json:"price_per_nft"`
	TotalPrice  string `json:"total_price"`
	NftsRequired uint8 `json:"nfts_required"`
}

// StatsResponse aggregates registry counters with the live contract balance
type StatsResponse struct {
	TotalFlags      int64  `json:"total_flags"`
	CompletedPairs  int64  `json:"completed_pairs"`
	TotalTokens     int64  `json:"total_tokens"`
	PlusHolders     int64  `json:"plus_holders"`
	PremiumHolders  int64  `json:"premium_holders"`
	ContractBalance string `json:"contract_balance"`
}

// RegisterFlagRequest registers one flag
type RegisterFlagRequest struct {
	FlagID       string `json:"flag_id" binding:"required"`
	Category     uint8  `json:"category"`
	PricePerNFT  string `json:"price_per_nft" binding:"required"`
	NftsRequired uint8  `json:"nfts_required"`
}

// BatchRegisterRequest registers several flags atomically
type BatchRegisterRequest struct {
	Flags []RegisterFlagRequest `json:"flags" binding:"required,min=1"`
}

// ClaimRequest runs the free first-phase claim
type ClaimRequest struct {
	Caller string `json:"caller" binding:"required"`
}

// PurchaseRequest runs the paid second-phase purchase
type PurchaseRequest struct {
	Caller string `json:"caller" binding:"required"`
	Value  string `json:"value" binding:"required"`
}

// MetadataHashRequest sets a flag's metadata integrity digest
type MetadataHashRequest struct {
	MetadataHash string `json:"metadata_hash" binding:"required"`
}

// BaseURIRequest replaces the token metadata base path
type BaseURIRequest struct {
	BaseURI string `json:"base_uri"`
}

package schema

import (
	"time"
)

// Flag represents the flags table - the projected state of one registered
// flag pair. FlagID and the monetary columns are decimal strings to
// support full 256-bit values.
type Flag struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// FlagID is the registry flag identifier in decimal form
	FlagID string `gorm:"column:flag_id;not null;uniqueIndex;type:text"`
	// Category is the flag category (0 standard, 1 plus, 2 premium)
	Category uint8 `gorm:"column:category;not null"`
	// PricePerNFT is the undiscounted per-token price in decimal form
	PricePerNFT string `gorm:"column:price_per_nft;not null;type:text"`
	// NftsRequired is the number of tokens minted per phase
	NftsRequired uint8 `gorm:"column:nfts_required;not null"`

	FirstMinted  bool `gorm:"column:first_minted;not null"`
	SecondMinted bool `gorm:"column:second_minted;not null"`
	PairComplete bool `gorm:"column:pair_complete;not null"`

	// FirstOwner is the claimer of the first phase (nil before the claim)
	FirstOwner *string `gorm:"column:first_owner;type:text"`
	// SecondOwner is the buyer of the second phase (nil before the purchase)
	SecondOwner *string `gorm:"column:second_owner;type:text"`

	FirstMintedCount  uint8 `gorm:"column:first_minted_count;not null"`
	SecondMintedCount uint8 `gorm:"column:second_minted_count;not null"`

	// FirstTokenID is the id of the first token minted in phase one
	FirstTokenID *uint64 `gorm:"column:first_token_id"`
	// SecondTokenID is the id of the first token minted in phase two
	SecondTokenID *uint64 `gorm:"column:second_token_id"`

	// MetadataHash is the off-chain metadata integrity digest
	MetadataHash string `gorm:"column:metadata_hash;type:text"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`

	// Associations
	Tokens []Token `gorm:"foreignKey:FlagID;references:FlagID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Flag model
func (Flag) TableName() string {
	return "flags"
}

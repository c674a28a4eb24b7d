package schema

import (
	"time"
)

// Token represents the tokens table - one minted token of a flag pair
type Token struct {
	// TokenID is the registry token id; ids are contiguous from 1 so the
	// natural key doubles as the primary key
	TokenID uint64 `gorm:"column:token_id;primaryKey"`
	// FlagID is the decimal id of the flag the token belongs to
	FlagID string `gorm:"column:flag_id;not null;index;type:text"`
	// Owner is the current owner address
	Owner string `gorm:"column:owner;not null;index;type:text"`
	// First marks phase-one tokens; false means phase two
	First bool `gorm:"column:first;not null"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName specifies the table name for the Token model
func (Token) TableName() string {
	return "tokens"
}

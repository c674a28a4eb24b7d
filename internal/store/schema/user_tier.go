package schema

import (
	"time"
)

// UserTier represents the user_tiers table - permanent discount tiers
// earned by completing pairs
type UserTier struct {
	// Address is the holder's address
	Address string `gorm:"column:address;primaryKey;type:text"`
	// HasPlus is set once a plus-category pair was completed
	HasPlus bool `gorm:"column:has_plus;not null"`
	// HasPremium is set once a premium-category pair was completed
	HasPremium bool `gorm:"column:has_premium;not null"`

	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName specifies the table name for the UserTier model
func (UserTier) TableName() string {
	return "user_tiers"
}

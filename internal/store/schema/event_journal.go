package schema

import (
	"time"

	"gorm.io/datatypes"
)

// EventJournal represents the event_journal table - the append-only log of
// committed registry events, in publish order
type EventJournal struct {
	// Cursor is an auto-incrementing sequence number for efficient pagination and ordering
	Cursor int64 `gorm:"column:\"cursor\";primaryKey;autoIncrement"`
	// EventType identifies the kind of event (flag_registered, pair_completed, ...)
	EventType string `gorm:"column:event_type;not null;index;type:text"`
	// FlagID is the decimal flag id the event concerns, empty for events
	// without one (base_uri_updated, withdrawal)
	FlagID string `gorm:"column:flag_id;index;type:text"`
	// TokenID is the token the event concerns, zero when not applicable
	TokenID uint64 `gorm:"column:token_id"`
	// Address is the acting or receiving address of the event
	Address string `gorm:"column:address;type:text"`
	// OccurredAt is the event timestamp stamped at publish time
	OccurredAt time.Time `gorm:"column:occurred_at"`
	// Payload is the full serialized event
	Payload datatypes.JSON `gorm:"column:payload;type:jsonb"`
}

// TableName specifies the table name for the EventJournal model
func (EventJournal) TableName() string {
	return "event_journal"
}

package dto

import (
	"encoding/json"
	"time"

	"github.com/flagquest/flagnode/internal/store/schema"
)

// EventResponse is one journaled contract event
type EventResponse struct {
	Cursor     int64           `json:"cursor"`
	EventType  string          `json:"event_type"`
	FlagID     string          `json:"flag_id,omitempty"`
	TokenID    uint64          `json:"token_id,omitempty"`
	Address    string          `json:"address,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// EventFromSchema maps a journal row to its wire form
func EventFromSchema(e *schema.EventJournal) *EventResponse {
	return &EventResponse{
		Cursor:     e.Cursor,
		EventType:  e.EventType,
		FlagID:     e.FlagID,
		TokenID:    e.TokenID,
		Address:    e.Address,
		OccurredAt: e.OccurredAt,
		Payload:    json.RawMessage(e.Payload),
	}
}

// Package store projects committed registry events into a relational
// read model serving the HTTP API. The contract state stays authoritative;
// the store is a queryable mirror.
package store

import (
	"context"

	"github.com/flagquest/flagnode/internal/store/schema"
)

// Stats aggregates registry-wide counters for the stats endpoint
type Stats struct {
	TotalFlags     int64 `json:"total_flags"`
	CompletedPairs int64 `json:"completed_pairs"`
	TotalTokens    int64 `json:"total_tokens"`
	PlusHolders    int64 `json:"plus_holders"`
	PremiumHolders int64 `json:"premium_holders"`
}

// Store defines the interface for database operations
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// CreateFlag inserts a newly registered flag
	CreateFlag(ctx context.Context, flag *schema.Flag) error
	// RecordFirstMint records one phase-one token and advances the flag's
	// first-phase projection
	RecordFirstMint(ctx context.Context, flagID string, owner string, tokenID uint64, ordinal uint8) error
	// RecordSecondMint records one phase-two token and advances the flag's
	// second-phase projection
	RecordSecondMint(ctx context.Context, flagID string, owner string, tokenID uint64, ordinal uint8) error
	// MarkPairComplete marks a flag's pair as completed
	MarkPairComplete(ctx context.Context, flagID string) error
	// SetMetadataHash updates a flag's metadata integrity digest
	SetMetadataHash(ctx context.Context, flagID string, hash string) error
	// UpsertUserTier grants a discount tier to an address
	UpsertUserTier(ctx context.Context, address string, tier uint8) error
	// UpdateTokenOwner moves a token to a new owner
	UpdateTokenOwner(ctx context.Context, tokenID uint64, owner string) error
	// AppendEvent appends a committed event to the journal
	AppendEvent(ctx context.Context, entry *schema.EventJournal) error

	// GetFlag retrieves a flag by its decimal id; nil when unknown
	GetFlag(ctx context.Context, flagID string) (*schema.Flag, error)
	// ListFlags retrieves flags ordered by registration
	ListFlags(ctx context.Context, limit, offset int) ([]*schema.Flag, error)
	// GetFlagTokens retrieves every minted token of a flag in mint order
	GetFlagTokens(ctx context.Context, flagID string) ([]*schema.Token, error)
	// GetToken retrieves a token by id; nil when unknown
	GetToken(ctx context.Context, tokenID uint64) (*schema.Token, error)
	// GetUserTier retrieves the tier record of an address; nil when the
	// address holds no tier
	GetUserTier(ctx context.Context, address string) (*schema.UserTier, error)
	// ListEvents retrieves journal entries after a cursor, oldest first
	ListEvents(ctx context.Context, afterCursor int64, limit int) ([]*schema.EventJournal, error)
	// GetStats aggregates registry-wide counters
	GetStats(ctx context.Context) (*Stats, error)
}

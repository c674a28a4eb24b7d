package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/flagquest/flagnode/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new store instance over a GORM database connection
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// Migrate creates or updates the projection tables
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&schema.Flag{},
		&schema.Token{},
		&schema.UserTier{},
		&schema.EventJournal{},
	)
}

// ConfigureConnectionPool configures the connection pool settings for a
// GORM database connection. Zero values fall back to defaults.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// CreateFlag inserts a newly registered flag
func (s *pgStore) CreateFlag(ctx context.Context, flag *schema.Flag) error {
	if err := s.db.WithContext(ctx).Create(flag).Error; err != nil {
		return fmt.Errorf("failed to create flag: %w", err)
	}
	return nil
}

// RecordFirstMint records one phase-one token and advances the flag's first-phase projection
func (s *pgStore) RecordFirstMint(ctx context.Context, flagID string, owner string, tokenID uint64, ordinal uint8) error {
	return s.recordMint(ctx, flagID, owner, tokenID, ordinal, true)
}

// RecordSecondMint records one phase-two token and advances the flag's second-phase projection
func (s *pgStore) RecordSecondMint(ctx context.Context, flagID string, owner string, tokenID uint64, ordinal uint8) error {
	return s.recordMint(ctx, flagID, owner, tokenID, ordinal, false)
}

func (s *pgStore) recordMint(ctx context.Context, flagID string, owner string, tokenID uint64, ordinal uint8, first bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		token := schema.Token{
			TokenID: tokenID,
			FlagID:  flagID,
			Owner:   owner,
			First:   first,
		}
		// republished events make the insert idempotent
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&token).Error; err != nil {
			return fmt.Errorf("failed to create token: %w", err)
		}

		updates := map[string]interface{}{
			"updated_at": time.Now(),
		}
		if first {
			updates["first_minted"] = true
			updates["first_owner"] = owner
			updates["first_minted_count"] = ordinal
			if ordinal == 1 {
				updates["first_token_id"] = tokenID
			}
		} else {
			updates["second_minted"] = true
			updates["second_owner"] = owner
			updates["second_minted_count"] = ordinal
			if ordinal == 1 {
				updates["second_token_id"] = tokenID
			}
		}
		if err := tx.Model(&schema.Flag{}).Where("flag_id = ?", flagID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update flag projection: %w", err)
		}
		return nil
	})
}

// MarkPairComplete marks a flag's pair as completed
func (s *pgStore) MarkPairComplete(ctx context.Context, flagID string) error {
	err := s.db.WithContext(ctx).Model(&schema.Flag{}).
		Where("flag_id = ?", flagID).
		Updates(map[string]interface{}{"pair_complete": true, "updated_at": time.Now()}).Error
	if err != nil {
		return fmt.Errorf("failed to mark pair complete: %w", err)
	}
	return nil
}

// SetMetadataHash updates a flag's metadata integrity digest
func (s *pgStore) SetMetadataHash(ctx context.Context, flagID string, hash string) error {
	err := s.db.WithContext(ctx).Model(&schema.Flag{}).
		Where("flag_id = ?", flagID).
		Updates(map[string]interface{}{"metadata_hash": hash, "updated_at": time.Now()}).Error
	if err != nil {
		return fmt.Errorf("failed to set metadata hash: %w", err)
	}
	return nil
}

// UpsertUserTier grants a discount tier to an address
func (s *pgStore) UpsertUserTier(ctx context.Context, address string, tier uint8) error {
	record := schema.UserTier{Address: address}
	column := "has_plus"
	if tier >= 2 {
		record.HasPremium = true
		column = "has_premium"
	} else {
		record.HasPlus = true
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		DoUpdates: clause.Assignments(map[string]interface{}{column: true, "updated_at": time.Now()}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("failed to upsert user tier: %w", err)
	}
	return nil
}

// UpdateTokenOwner moves a token to a new owner
func (s *pgStore) UpdateTokenOwner(ctx context.Context, tokenID uint64, owner string) error {
	err := s.db.WithContext(ctx).Model(&schema.Token{}).
		Where("token_id = ?", tokenID).
		Updates(map[string]interface{}{"owner": owner, "updated_at": time.Now()}).Error
	if err != nil {
		return fmt.Errorf("failed to update token owner: %w", err)
	}
	return nil
}

// AppendEvent appends a committed event to the journal
func (s *pgStore) AppendEvent(ctx context.Context, entry *schema.EventJournal) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

// GetFlag retrieves a flag by its decimal id
func (s *pgStore) GetFlag(ctx context.Context, flagID string) (*schema.Flag, error) {
	var flag schema.Flag
	err := s.db.WithContext(ctx).Where("flag_id = ?", flagID).First(&flag).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get flag: %w", err)
	}
	return &flag, nil
}

// ListFlags retrieves flags ordered by registration
func (s *pgStore) ListFlags(ctx context.Context, limit, offset int) ([]*schema.Flag, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	var flags []*schema.Flag
	err := s.db.WithContext(ctx).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&flags).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list flags: %w", err)
	}
	return flags, nil
}

// GetFlagTokens retrieves every minted token of a flag in mint order
func (s *pgStore) GetFlagTokens(ctx context.Context, flagID string) ([]*schema.Token, error) {
	var tokens []*schema.Token
	err := s.db.WithContext(ctx).
		Where("flag_id = ?", flagID).
		Order("token_id ASC").
		Find(&tokens).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get flag tokens: %w", err)
	}
	return tokens, nil
}

// GetToken retrieves a token by id
func (s *pgStore) GetToken(ctx context.Context, tokenID uint64) (*schema.Token, error) {
	var token schema.Token
	err := s.db.WithContext(ctx).Where("token_id = ?", tokenID).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	return &token, nil
}

// GetUserTier retrieves the tier record of an address
func (s *pgStore) GetUserTier(ctx context.Context, address string) (*schema.UserTier, error) {
	var tier schema.UserTier
	err := s.db.WithContext(ctx).Where("address = ?", address).First(&tier).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user tier: %w", err)
	}
	return &tier, nil
}

// ListEvents retrieves journal entries after a cursor, oldest first
func (s *pgStore) ListEvents(ctx context.Context, afterCursor int64, limit int) ([]*schema.EventJournal, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	var entries []*schema.EventJournal
	err := s.db.WithContext(ctx).
		Where("\"cursor\" > ?", afterCursor).
		Order("\"cursor\" ASC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return entries, nil
}

// GetStats aggregates registry-wide counters
func (s *pgStore) GetStats(ctx context.Context) (*Stats, error) {
	var stats Stats
	db := s.db.WithContext(ctx)

	if err := db.Model(&schema.Flag{}).Count(&stats.TotalFlags).Error; err != nil {
		return nil, fmt.Errorf("failed to count flags: %w", err)
	}
	if err := db.Model(&schema.Flag{}).Where("pair_complete = ?", true).Count(&stats.CompletedPairs).Error; err != nil {
		return nil, fmt.Errorf("failed to count completed pairs: %w", err)
	}
	if err := db.Model(&schema.Token{}).Count(&stats.TotalTokens).Error; err != nil {
		return nil, fmt.Errorf("failed to count tokens: %w", err)
	}
	if err := db.Model(&schema.UserTier{}).Where("has_plus = ?", true).Count(&stats.PlusHolders).Error; err != nil {
		return nil, fmt.Errorf("failed to count plus holders: %w", err)
	}
	if err := db.Model(&schema.UserTier{}).Where("has_premium = ?", true).Count(&stats.PremiumHolders).Error; err != nil {
		return nil, fmt.Errorf("failed to count premium holders: %w", err)
	}

	return &stats, nil
}

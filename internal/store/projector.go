package store

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/flagquest/flagnode/internal/domain"
	"github.com/flagquest/flagnode/internal/events"
	"github.com/flagquest/flagnode/internal/logger"
	"github.com/flagquest/flagnode/internal/store/schema"
)

// Projector applies committed registry events to the read model. Events
// only reach the bus after the originating transaction commits, so every
// applied event reflects durable contract state.
type Projector struct {
	store Store
}

// NewProjector creates a projector over a store
func NewProjector(store Store) *Projector {
	return &Projector{store: store}
}

// Attach subscribes the projector to a bus
func (p *Projector) Attach(bus *events.Bus) {
	bus.Subscribe(p.handle)
}

func (p *Projector) handle(ctx context.Context, event events.Event) {
	if err := p.apply(ctx, event); err != nil {
		logger.ErrorCtx(ctx, err,
			zap.String("type", string(event.Type)),
			zap.String("flag_id", event.FlagID),
			zap.Uint64("token_id", event.TokenID),
		)
	}
}

func (p *Projector) apply(ctx context.Context, event events.Event) error {
	if err := p.journal(ctx, event); err != nil {
		return err
	}

	switch event.Type {
	case events.TypeFlagRegistered:
		return p.store.CreateFlag(ctx, &schema.Flag{
			FlagID:       event.FlagID,
			Category:     event.Category,
			PricePerNFT:  event.PricePerNFT,
			NftsRequired: event.NftsRequired,
		})
	case events.TypeFirstNFTClaimed:
		return p.store.RecordFirstMint(ctx, event.FlagID, event.Address, event.TokenID, event.Ordinal)
	case events.TypeSecondNFTPurchased:
		return p.store.RecordSecondMint(ctx, event.FlagID, event.Address, event.TokenID, event.Ordinal)
	case events.TypePairCompleted:
		return p.store.MarkPairComplete(ctx, event.FlagID)
	case events.TypeDiscountGranted:
		return p.store.UpsertUserTier(ctx, event.Address, event.Tier)
	case events.TypeMetadataHashSet:
		return p.store.SetMetadataHash(ctx, event.FlagID, event.MetadataHash)
	case events.TypeTransfer:
		// mints arrive as zero-from transfers; the token row comes from
		// the claim or purchase event instead
		if event.FromAddress == domain.ETHEREUM_ZERO_ADDRESS {
			return nil
		}
		return p.store.UpdateTokenOwner(ctx, event.TokenID, event.ToAddress)
	case events.TypeBaseURIUpdated, events.TypeWithdrawal:
		// journal-only events
		return nil
	default:
		logger.WarnCtx(ctx, "Unknown event type, journaled only",
			zap.String("type", string(event.Type)))
		return nil
	}
}

func (p *Projector) journal(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.store.AppendEvent(ctx, &schema.EventJournal{
		EventType:  string(event.Type),
		FlagID:     event.FlagID,
		TokenID:    event.TokenID,
		Address:    event.Address,
		OccurredAt: event.Timestamp,
		Payload:    datatypes.JSON(payload),
	})
}

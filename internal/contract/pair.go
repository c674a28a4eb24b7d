package contract

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/flagquest/flagnode/internal/domain"
	"github.com/flagquest/flagnode/internal/events"
)

// ClaimFirstNFT mints the first-phase tokens of a flag to the caller, free
// of charge. The whole batch mints atomically; the phase flag flips only
// after every token is out, so the reentrancy lock is what keeps a mint
// callback from re-entering the loop.
func (c *Contract) ClaimFirstNFT(ctx context.Context, call Call, flagID *big.Int) error {
	return c.run(ctx, func(tx *txn) error {
		rec := c.state.flag(flagID)
		if rec == nil {
			return &domain.NotRegisteredError{FlagID: flagID}
		}
		if rec.firstMinted {
			return &domain.FirstAlreadyClaimedError{FlagID: rec.id}
		}

		c.state.snapshotFlag(tx, rec)
		rec.firstOwner = call.Caller

		for i := uint8(0); i < rec.nftsRequired; i++ {
			tokenID, err := c.mint(ctx, tx, call.Caller, rec.id, true)
			if err != nil {
				return err
			}
			if i == 0 {
				rec.firstTokenID = tokenID
			}
			rec.firstTokens = append(rec.firstTokens, tokenID)
			rec.firstMintedCount++
			tx.emit(events.NewFirstNFTClaimed(rec.id, tokenID, call.Caller, i+1))
		}

		rec.firstMinted = true
		return nil
	})
}

// PurchaseSecondNFT mints the second-phase tokens of a flag to the caller
// against payment. Overpayment is refunded; underpayment reverts. On pair
// completion a Plus or Premium flag confers the matching buyer tier, with
// the tier bit written before the refund leaves so a hostile receiver
// cannot observe a mid-state.
func (c *Contract) PurchaseSecondNFT(ctx context.Context, call Call, flagID *big.Int) error {
	return c.run(ctx, func(tx *txn) error {
		rec := c.state.flag(flagID)
		if rec == nil {
			return &domain.NotRegisteredError{FlagID: flagID}
		}
		if !rec.firstMinted {
			return &domain.FirstNotClaimedError{FlagID: rec.id}
		}
		if rec.secondMinted {
			return &domain.SecondAlreadyPurchasedError{FlagID: rec.id}
		}

		pricePerNFT := c.discountedPrice(rec, call.Caller)
		total := new(big.Int).Mul(pricePerNFT, big.NewInt(int64(rec.nftsRequired)))
		sent := callValue(call)
		if sent.Cmp(total) < 0 {
			return &domain.InsufficientPaymentError{Required: total, Sent: new(big.Int).Set(sent)}
		}

		c.state.snapshotFlag(tx, rec)
		rec.secondOwner = call.Caller

		for i := uint8(0); i < rec.nftsRequired; i++ {
			tokenID, err := c.mint(ctx, tx, call.Caller, rec.id, false)
			if err != nil {
				return err
			}
			if i == 0 {
				rec.secondTokenID = tokenID
			}
			rec.secondTokens = append(rec.secondTokens, tokenID)
			rec.secondMintedCount++
			tx.emit(events.NewSecondNFTPurchased(rec.id, tokenID, call.Caller, pricePerNFT, i+1))
		}

		rec.secondMinted = true
		rec.pairComplete = true

		c.state.addBalance(tx, total)
		c.grantTier(tx, rec.category, call.Caller)

		if overpaid := new(big.Int).Sub(sent, total); overpaid.Sign() > 0 {
			if err := c.sender.Send(ctx, call.Caller, overpaid); err != nil {
				return &domain.RefundFailedError{Err: err}
			}
		}

		tx.emit(events.NewPairCompleted(rec.id, call.Caller))
		return nil
	})
}

// grantTier confers the buyer tier matching a completed flag's category.
// Standard confers nothing; already-held tiers are not re-granted.
func (c *Contract) grantTier(tx *txn, category domain.Category, buyer common.Address) {
	switch category {
	case domain.CategoryPlus:
		if !c.state.hasPlus[buyer] {
			c.state.grantPlus(tx, buyer)
			tx.emit(events.NewDiscountGranted(buyer, domain.TierPlus))
		}
	case domain.CategoryPremium:
		if !c.state.hasPremium[buyer] {
			c.state.grantPremium(tx, buyer)
			tx.emit(events.NewDiscountGranted(buyer, domain.TierPremium))
		}
	}
}

// mint assigns the next token id to the recipient and records the flag
// back-reference and phase marker. The receiver callback, when the
// recipient has one, runs after the token's state writes.
func (c *Contract) mint(ctx context.Context, tx *txn, to common.Address, flagID *big.Int, first bool) (uint64, error) {
	tokenID := c.state.totalMinted + 1
	rec := &tokenRecord{
		owner:  to,
		flagID: flagID,
		first:  first,
	}
	c.state.insertToken(tx, tokenID, rec)
	tx.emit(events.NewTransfer(common.Address{}, to, tokenID))

	if c.receivers != nil {
		if r := c.receivers.Resolve(to); r != nil {
			if err := r.OnTokenReceived(ctx, to, common.Address{}, to, tokenID); err != nil {
				return 0, err
			}
		}
	}
	return tokenID, nil
}

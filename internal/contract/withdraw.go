package contract

import (
	"context"
	"math/big"

	"github.com/flagquest/flagnode/internal/domain"
	"github.com/flagquest/flagnode/internal/events"
)

// Withdraw transfers the whole accumulated payment balance to the admin.
// The balance is zeroed before the external transfer runs; a transfer
// failure reverts the zeroing along with the rest of the transaction.
func (c *Contract) Withdraw(ctx context.Context, call Call) error {
	if err := c.requireAdmin(call); err != nil {
		return err
	}
	return c.run(ctx, func(tx *txn) error {
		amount := new(big.Int).Set(c.state.balance)
		if amount.Sign() == 0 {
			return domain.ErrNoBalanceToWithdraw
		}

		c.state.setBalance(tx, new(big.Int))
		if err := c.sender.Send(ctx, c.admin, amount); err != nil {
			return &domain.WithdrawalFailedError{Err: err}
		}

		tx.emit(events.NewWithdrawal(c.admin, amount))
		return nil
	})
}

package contract

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/flagquest/flagnode/internal/domain"
	"github.com/flagquest/flagnode/internal/events"
)

// InterfaceID identifies a supported token behavior, ERC-165 style.
type InterfaceID [4]byte

// The combined interface table: base token, metadata extension, owner
// enumeration, and the interface-support query itself.
var (
	InterfaceERC165          = InterfaceID{0x01, 0xff, 0xc9, 0xa7}
	InterfaceToken           = InterfaceID{0x80, 0xac, 0x58, 0xcd}
	InterfaceTokenMetadata   = InterfaceID{0x5b, 0x5e, 0x13, 0x9f}
	InterfaceTokenEnumerable = InterfaceID{0x78, 0x0e, 0x9d, 0x63}
	supportedInterfaces      = map[InterfaceID]bool{
		InterfaceERC165:          true,
		InterfaceToken:           true,
		InterfaceTokenMetadata:   true,
		InterfaceTokenEnumerable: true,
	}
)

// SupportsInterface reports whether the token surface implements the
// queried behavior
func (c *Contract) SupportsInterface(id InterfaceID) bool {
	return supportedInterfaces[id]
}

// OwnerOf returns the current owner of a minted token
func (c *Contract) OwnerOf(tokenID uint64) (common.Address, error) {
	rec := c.state.tokens[tokenID]
	if rec == nil {
		return common.Address{}, &domain.TokenNotFoundError{TokenID: tokenID}
	}
	return rec.owner, nil
}

// BalanceOf returns the number of tokens held by an address
func (c *Contract) BalanceOf(owner common.Address) uint64 {
	return uint64(len(c.state.ownerTokens[owner]))
}

// TotalSupply returns the number of tokens minted. Tokens are never burned,
// so this equals the monotonic mint counter.
func (c *Contract) TotalSupply() uint64 {
	return c.state.totalMinted
}

// TokenByIndex returns the token id at a global index. Ids are contiguous
// from 1, so the index maps directly.
func (c *Contract) TokenByIndex(index uint64) (uint64, error) {
	if index >= c.state.totalMinted {
		return 0, fmt.Errorf("global index %d out of range", index)
	}
	return index + 1, nil
}

// TokenOfOwnerByIndex returns the token id at an index of the owner's
// holdings
func (c *Contract) TokenOfOwnerByIndex(owner common.Address, index uint64) (uint64, error) {
	owned := c.state.ownerTokens[owner]
	if index >= uint64(len(owned)) {
		return 0, fmt.Errorf("owner index %d out of range for %s", index, owner)
	}
	return owned[index], nil
}

// TokenURI composes the metadata URI of a minted token: the base path,
// the decimal token id, and a ".json" suffix. Empty when no base path is
// configured.
func (c *Contract) TokenURI(tokenID uint64) (string, error) {
	if c.state.tokens[tokenID] == nil {
		return "", &domain.TokenNotFoundError{TokenID: tokenID}
	}
	if c.state.baseURI == "" {
		return "", nil
	}
	return fmt.Sprintf("%s%d.json", c.state.baseURI, tokenID), nil
}

// BaseURI returns the configured metadata base path
func (c *Contract) BaseURI() string {
	return c.state.baseURI
}

// Approve grants one address permission to transfer one token. Only the
// owner or an approved operator may grant it.
func (c *Contract) Approve(ctx context.Context, call Call, approved common.Address, tokenID uint64) error {
	return c.run(ctx, func(tx *txn) error {
		rec := c.state.tokens[tokenID]
		if rec == nil {
			return &domain.TokenNotFoundError{TokenID: tokenID}
		}
		if call.Caller != rec.owner && !c.isOperator(rec.owner, call.Caller) {
			return domain.ErrNotTokenOwner
		}
		c.state.setApproved(tx, rec, approved)
		return nil
	})
}

// GetApproved returns the address approved for one token, if any
func (c *Contract) GetApproved(tokenID uint64) (common.Address, error) {
	rec := c.state.tokens[tokenID]
	if rec == nil {
		return common.Address{}, &domain.TokenNotFoundError{TokenID: tokenID}
	}
	return rec.approved, nil
}

// SetApprovalForAll grants or revokes an operator over all of the caller's
// tokens
func (c *Contract) SetApprovalForAll(ctx context.Context, call Call, operator common.Address, approved bool) error {
	return c.run(ctx, func(tx *txn) error {
		if domain.IsZeroAddress(operator) {
			return domain.ErrZeroAddress
		}
		c.state.setOperator(tx, call.Caller, operator, approved)
		return nil
	})
}

// IsApprovedForAll reports whether an operator may act on all of an
// owner's tokens
func (c *Contract) IsApprovedForAll(owner, operator common.Address) bool {
	return c.isOperator(owner, operator)
}

// TransferFrom moves a token between addresses. Transfer does not touch
// flag records: firstOwner/secondOwner stay historical.
func (c *Contract) TransferFrom(ctx context.Context, call Call, from, to common.Address, tokenID uint64) error {
	return c.run(ctx, func(tx *txn) error {
		return c.transfer(tx, call, from, to, tokenID)
	})
}

// SafeTransferFrom moves a token and, when the recipient has a registered
// receiver, invokes its callback after the state writes. A callback error
// reverts the transfer.
func (c *Contract) SafeTransferFrom(ctx context.Context, call Call, from, to common.Address, tokenID uint64) error {
	return c.run(ctx, func(tx *txn) error {
		if err := c.transfer(tx, call, from, to, tokenID); err != nil {
			return err
		}
		if c.receivers != nil {
			if r := c.receivers.Resolve(to); r != nil {
				if err := r.OnTokenReceived(ctx, call.Caller, from, to, tokenID); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (c *Contract) transfer(tx *txn, call Call, from, to common.Address, tokenID uint64) error {
	rec := c.state.tokens[tokenID]
	if rec == nil {
		return &domain.TokenNotFoundError{TokenID: tokenID}
	}
	if rec.owner != from {
		return domain.ErrNotTokenOwner
	}
	if domain.IsZeroAddress(to) {
		return domain.ErrZeroAddress
	}
	authorized := call.Caller == rec.owner ||
		call.Caller == rec.approved ||
		c.isOperator(rec.owner, call.Caller)
	if !authorized {
		return domain.ErrNotTokenOwner
	}

	c.state.moveToken(tx, tokenID, rec, to)
	tx.emit(events.NewTransfer(from, to, tokenID))
	return nil
}

func (c *Contract) isOperator(owner, operator common.Address) bool {
	ops := c.state.operators[owner]
	return ops != nil && ops[operator]
}

package events

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/flagquest/flagnode/internal/domain"
)

// Type represents the type of core event
type Type string

const (
	TypeFlagRegistered     Type = "flag_registered"
	TypeFirstNFTClaimed    Type = "first_nft_claimed"
	TypeSecondNFTPurchased Type = "second_nft_purchased"
	TypePairCompleted      Type = "pair_completed"
	TypeDiscountGranted    Type = "discount_granted"
	TypeBaseURIUpdated     Type = "base_uri_updated"
	TypeMetadataHashSet    Type = "metadata_hash_set"
	TypeWithdrawal         Type = "withdrawal"
	TypeTransfer           Type = "transfer"
)

// Event is a normalized core event. One struct covers every event kind;
// fields not carried by a kind are left at their zero value and omitted
// from the wire encoding. Monetary amounts are decimal strings to support
// full 256-bit values.
type Event struct {
	Type         Type      `json:"type"`
	FlagID       string    `json:"flag_id,omitempty"`
	TokenID      uint64    `json:"token_id,omitempty"`
	Address      string    `json:"address,omitempty"`      // claimer, buyer, discount recipient, withdrawal target
	FromAddress  string    `json:"from_address,omitempty"` // transfer only; zero address for mints
	ToAddress    string    `json:"to_address,omitempty"`   // transfer only
	Category     uint8     `json:"category,omitempty"`
	Tier         uint8     `json:"tier,omitempty"`
	PricePerNFT  string    `json:"price_per_nft,omitempty"`
	Amount       string    `json:"amount,omitempty"`
	NftsRequired uint8     `json:"nfts_required,omitempty"`
	Ordinal      uint8     `json:"ordinal,omitempty"` // 1-based position within a mint batch
	BaseURI      string    `json:"base_uri,omitempty"`
	MetadataHash string    `json:"metadata_hash,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// NewFlagRegistered creates a FlagRegistered event
func NewFlagRegistered(flagID *big.Int, category domain.Category, pricePerNFT *big.Int, nftsRequired uint8) Event {
	return Event{
		Type:         TypeFlagRegistered,
		FlagID:       bigString(flagID),
		Category:     uint8(category),
		PricePerNFT:  bigString(pricePerNFT),
		NftsRequired: nftsRequired,
	}
}

// NewFirstNFTClaimed creates a FirstNFTClaimed event for one minted token
func NewFirstNFTClaimed(flagID *big.Int, tokenID uint64, claimer common.Address, ordinal uint8) Event {
	return Event{
		Type:    TypeFirstNFTClaimed,
		FlagID:  bigString(flagID),
		TokenID: tokenID,
		Address: claimer.String(),
		Ordinal: ordinal,
	}
}

// NewSecondNFTPurchased creates a SecondNFTPurchased event for one minted token
func NewSecondNFTPurchased(flagID *big.Int, tokenID uint64, buyer common.Address, pricePaidPerNFT *big.Int, ordinal uint8) Event {
	return Event{
		Type:        TypeSecondNFTPurchased,
		FlagID:      bigString(flagID),
		TokenID:     tokenID,
		Address:     buyer.String(),
		PricePerNFT: bigString(pricePaidPerNFT),
		Ordinal:     ordinal,
	}
}

// NewPairCompleted creates a PairCompleted event
func NewPairCompleted(flagID *big.Int, completedBy common.Address) Event {
	return Event{
		Type:    TypePairCompleted,
		FlagID:  bigString(flagID),
		Address: completedBy.String(),
	}
}

// NewDiscountGranted creates a DiscountGranted event
func NewDiscountGranted(user common.Address, tier domain.Tier) Event {
	return Event{
		Type:    TypeDiscountGranted,
		Address: user.String(),
		Tier:    uint8(tier),
	}
}

// NewBaseURIUpdated creates a BaseURIUpdated event
func NewBaseURIUpdated(baseURI string) Event {
	return Event{
		Type:    TypeBaseURIUpdated,
		BaseURI: baseURI,
	}
}

// NewMetadataHashSet creates a MetadataHashSet event
func NewMetadataHashSet(flagID *big.Int, metadataHash string) Event {
	return Event{
		Type:         TypeMetadataHashSet,
		FlagID:       bigString(flagID),
		MetadataHash: metadataHash,
	}
}

// NewWithdrawal creates a Withdrawal event
func NewWithdrawal(to common.Address, amount *big.Int) Event {
	return Event{
		Type:    TypeWithdrawal,
		Address: to.String(),
		Amount:  bigString(amount),
	}
}

// NewTransfer creates a token transfer event. Mints use the zero address
// as the from address.
func NewTransfer(from, to common.Address, tokenID uint64) Event {
	return Event{
		Type:        TypeTransfer,
		TokenID:     tokenID,
		FromAddress: from.String(),
		ToAddress:   to.String(),
	}
}

package domain

import (
	"errors"
	"fmt"
	"math/big"
)

// Sentinel error kinds. Every failed operation reverts all of its state
// writes before surfacing one of these.
var (
	// ErrInvalidPrice is returned when registering a flag with a zero price
	ErrInvalidPrice = errors.New("price must be greater than zero")

	// ErrArrayLengthMismatch is returned when batch registration slices differ in length
	ErrArrayLengthMismatch = errors.New("batch registration arrays must have equal length")

	// ErrNoBalanceToWithdraw is returned when withdrawing from an empty balance
	ErrNoBalanceToWithdraw = errors.New("no balance to withdraw")

	// ErrUnauthorized is returned when a non-admin calls an admin-only operation
	ErrUnauthorized = errors.New("caller is not the contract admin")

	// ErrReentrantCall is returned when an operation re-enters the contract
	// while the reentrancy lock is held
	ErrReentrantCall = errors.New("reentrant call")

	// ErrNotTokenOwner is returned when transferring a token the caller
	// neither owns nor is approved for
	ErrNotTokenOwner = errors.New("caller is not owner nor approved")

	// ErrZeroAddress is returned when a token operation targets the zero address
	ErrZeroAddress = errors.New("zero address")
)

// InvalidCategoryError is returned when registering a flag with an unknown category.
type InvalidCategoryError struct {
	Category Category
}

func (e *InvalidCategoryError) Error() string {
	return fmt.Sprintf("invalid category %d", uint8(e.Category))
}

// InvalidNftsRequiredError is returned when nftsRequired is outside [1, 10].
type InvalidNftsRequiredError struct {
	NftsRequired uint8
}

func (e *InvalidNftsRequiredError) Error() string {
	return fmt.Sprintf("nfts required %d outside [1, 10]", e.NftsRequired)
}

// NotRegisteredError is returned when an operation references an unknown flag.
type NotRegisteredError struct {
	FlagID *big.Int
}

func (e *NotRegisteredError) Error() string {
	return fmt.Sprintf("flag %s is not registered", e.FlagID)
}

// AlreadyRegisteredError is returned when registering a known flag id.
type AlreadyRegisteredError struct {
	FlagID *big.Int
}

func (e *AlreadyRegisteredError) Error() string {
	return fmt.Sprintf("flag %s is already registered", e.FlagID)
}

// FirstAlreadyClaimedError is returned when claiming a flag whose first phase is done.
type FirstAlreadyClaimedError struct {
	FlagID *big.Int
}

func (e *FirstAlreadyClaimedError) Error() string {
	return fmt.Sprintf("first NFT of flag %s already claimed", e.FlagID)
}

// FirstNotClaimedError is returned when purchasing before the first phase.
type FirstNotClaimedError struct {
	FlagID *big.Int
}

func (e *FirstNotClaimedError) Error() string {
	return fmt.Sprintf("first NFT of flag %s not claimed yet", e.FlagID)
}

// SecondAlreadyPurchasedError is returned when purchasing a completed flag.
type SecondAlreadyPurchasedError struct {
	FlagID *big.Int
}

func (e *SecondAlreadyPurchasedError) Error() string {
	return fmt.Sprintf("second NFT of flag %s already purchased", e.FlagID)
}

// InsufficientPaymentError is returned when the attached value does not
// cover the discounted total.
type InsufficientPaymentError struct {
	Required *big.Int
	Sent     *big.Int
}

func (e *InsufficientPaymentError) Error() string {
	return fmt.Sprintf("insufficient payment: required %s, sent %s", e.Required, e.Sent)
}

// RefundFailedError is returned when the overpayment refund transfer fails.
type RefundFailedError struct {
	Err error
}

func (e *RefundFailedError) Error() string {
	return fmt.Sprintf("refund transfer failed: %v", e.Err)
}

func (e *RefundFailedError) Unwrap() error {
	return e.Err
}

// WithdrawalFailedError is returned when the withdrawal transfer fails.
type WithdrawalFailedError struct {
	Err error
}

func (e *WithdrawalFailedError) Error() string {
	return fmt.Sprintf("withdrawal transfer failed: %v", e.Err)
}

func (e *WithdrawalFailedError) Unwrap() error {
	return e.Err
}

// TokenNotFoundError is returned when a token id has not been minted.
type TokenNotFoundError struct {
	TokenID uint64
}

func (e *TokenNotFoundError) Error() string {
	return fmt.Sprintf("token %d does not exist", e.TokenID)
}

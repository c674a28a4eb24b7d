package domain

const (
	// Basis-points scale used by the pricing function
	BASIS_POINTS = 10000

	// Discount factors in basis points
	PLUS_DISCOUNT_BPS    = 5000
	PREMIUM_DISCOUNT_BPS = 7500

	// Token multiplicity bounds per phase
	MIN_NFTS_REQUIRED = 1
	MAX_NFTS_REQUIRED = 10

	// Blockchain constants
	ETHEREUM_ZERO_ADDRESS = "0x0000000000000000000000000000000000000000"
)

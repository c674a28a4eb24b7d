package rest

import (
	"math/big"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/flagquest/flagnode/internal/api/rest/dto"
	"github.com/flagquest/flagnode/internal/contract"
	"github.com/flagquest/flagnode/internal/domain"
	"github.com/flagquest/flagnode/internal/executor"
	"github.com/flagquest/flagnode/internal/logger"
	"github.com/flagquest/flagnode/internal/store"
)

// Handler defines the interface for REST API handlers
// This interface allows for easy mocking and testing
//
//go:generate mockgen -source=handler.go -destination=../../mocks/api_handler.go -package=mocks -mock_names=Handler=MockAPIHandler
type Handler interface {
	// ListFlags retrieves registered flags with pagination
	// GET /api/v1/flags?limit=<limit>&offset=<offset>
	ListFlags(c *gin.Context)

	// GetFlag retrieves a single flag pair by its id
	// GET /api/v1/flags/:id
	GetFlag(c *gin.Context)

	// GetFlagTokens retrieves every token minted against a flag
	// GET /api/v1/flags/:id/tokens
	GetFlagTokens(c *gin.Context)

	// GetFlagPrice quotes the live discounted price for a buyer
	// GET /api/v1/flags/:id/price?buyer=<address>
	GetFlagPrice(c *gin.Context)

	// GetUserTier retrieves a user's discount standing
	// GET /api/v1/users/:address/tier
	GetUserTier(c *gin.Context)

	// GetToken retrieves a single token with its metadata URI
	// GET /api/v1/tokens/:id
	GetToken(c *gin.Context)

	// GetStats aggregates registry counters
	// GET /api/v1/stats
	GetStats(c *gin.Context)

	// ListEvents retrieves the committed event journal
	// GET /api/v1/events?after=<cursor>&limit=<limit>
	ListEvents(c *gin.Context)

	// Claim mints the free first-phase batch for the caller
	// POST /api/v1/flags/:id/claim
	Claim(c *gin.Context)

	// Purchase mints the paid second-phase batch for the caller
	// POST /api/v1/flags/:id/purchase
	Purchase(c *gin.Context)

	// RegisterFlag registers a single flag (requires authentication)
	// POST /api/v1/admin/flags
	RegisterFlag(c *gin.Context)

	// BatchRegisterFlags registers several flags atomically (requires authentication)
	// POST /api/v1/admin/flags/batch
	BatchRegisterFlags(c *gin.Context)

	// SetMetadataHash sets a flag's metadata digest (requires authentication)
	// POST /api/v1/admin/flags/:id/metadata
	SetMetadataHash(c *gin.Context)

	// SetBaseURI replaces the token metadata base path (requires authentication)
	// PUT /api/v1/admin/base-uri
	SetBaseURI(c *gin.Context)

	// Withdraw drains the contract balance to the admin (requires authentication)
	// POST /api/v1/admin/withdraw
	Withdraw(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface. Reads that need committed
// history go to the projection store; reads that must reflect the
// current transactional state (prices, tiers, URIs, balance) go through
// the executor.
type handler struct {
	store store.Store
	exec  *executor.Executor
}

// NewHandler creates a new REST API handler
func NewHandler(s store.Store, exec *executor.Executor) Handler {
	return &handler{
		store: s,
		exec:  exec,
	}
}

// flagIDParam parses the :id path segment as a flag id
func flagIDParam(c *gin.Context) (*big.Int, bool) {
	id, err := domain.ParseFlagID(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "Invalid flag id", err.Error())
		return nil, false
	}
	return id, true
}

func (h *handler) ListFlags(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		respondValidationError(c, "limit must be a positive integer")
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		respondValidationError(c, "offset must be a non-negative integer")
		return
	}

	flags, err := h.store.ListFlags(c.Request.Context(), limit, offset)
	if err != nil {
		respondInternalError(c, err, "Failed to list flags")
		return
	}

	out := make([]*dto.FlagResponse, 0, len(flags))
	for _, f := range flags {
		out = append(out, dto.FlagFromSchema(f))
	}
	c.JSON(http.StatusOK, gin.H{"flags": out, "limit": limit, "offset": offset})
}

func (h *handler) GetFlag(c *gin.Context) {
	id, ok := flagIDParam(c)
	if !ok {
		return
	}

	flag, err := h.store.GetFlag(c.Request.Context(), domain.FlagKey(id))
	if err != nil {
		respondInternalError(c, err, "Failed to load flag", zap.String("flag_id", id.String()))
		return
	}
	if flag == nil {
		respondNotFound(c, "Flag is not registered")
		return
	}

	c.JSON(http.StatusOK, dto.FlagFromSchema(flag))
}

func (h *handler) GetFlagTokens(c *gin.Context) {
	id, ok := flagIDParam(c)
	if !ok {
		return
	}

	flag, err := h.store.GetFlag(c.Request.Context(), domain.FlagKey(id))
	if err != nil {
		respondInternalError(c, err, "Failed to load flag")
		return
	}
	if flag == nil {
		respondNotFound(c, "Flag is not registered")
		return
	}

	tokens, err := h.store.GetFlagTokens(c.Request.Context(), domain.FlagKey(id))
	if err != nil {
		respondInternalError(c, err, "Failed to load tokens")
		return
	}

	out := make([]*dto.TokenResponse, 0, len(tokens))
	for _, tk := range tokens {
		out = append(out, dto.TokenFromSchema(tk))
	}
	c.JSON(http.StatusOK, gin.H{"flag_id": domain.FlagKey(id), "tokens": out})
}

func (h *handler) GetFlagPrice(c *gin.Context) {
	id, ok := flagIDParam(c)
	if !ok {
		return
	}

	var buyer common.Address
	if raw := c.Query("buyer"); raw != "" {
		parsed, err := domain.ParseAddress(raw)
		if err != nil {
			respondValidationError(c, "buyer must be a hex address")
			return
		}
		buyer = parsed
	}

	var resp dto.PriceResponse
	err := h.exec.View(func(ct *contract.Contract) error {
		perNFT, err := ct.DiscountedPricePerNFT(id, buyer)
		if err != nil {
			return err
		}
		total, err := ct.TotalPriceWithDiscount(id, buyer)
		if err != nil {
			return err
		}
		required, err := ct.GetNftsRequired(id)
		if err != nil {
			return err
		}
		resp = dto.PriceResponse{
			FlagID:       domain.FlagKey(id),
			Buyer:        buyer.Hex(),
			PricePerNFT:  perNFT.String(),
			TotalPrice:   total.String(),
			NftsRequired: required,
		}
		return nil
	})
	if err != nil {
		respondContractError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *handler) GetUserTier(c *gin.Context) {
	addr, err := domain.ParseAddress(c.Param("address"))
	if err != nil {
		respondBadRequest(c, "Invalid address", err.Error())
		return
	}

	var resp dto.TierResponse
	viewErr := h.exec.View(func(ct *contract.Contract) error {
		resp = dto.TierResponse{
			Address:    addr.Hex(),
			Tier:       uint8(ct.GetUserDiscountTier(addr)),
			HasPlus:    ct.UserHasPlus(addr),
			HasPremium: ct.UserHasPremium(addr),
		}
		return nil
	})
	if viewErr != nil {
		respondContractError(c, viewErr)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *handler) GetToken(c *gin.Context) {
	tokenID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondBadRequest(c, "Invalid token id")
		return
	}

	token, err := h.store.GetToken(c.Request.Context(), tokenID)
	if err != nil {
		respondInternalError(c, err, "Failed to load token", zap.Uint64("token_id", tokenID))
		return
	}
	if token == nil {
		respondNotFound(c, "Token does not exist")
		return
	}

	resp := dto.TokenFromSchema(token)
	viewErr := h.exec.View(func(ct *contract.Contract) error {
		uri, err := ct.TokenURI(tokenID)
		if err != nil {
			return err
		}
		resp.TokenURI = uri
		return nil
	})
	if viewErr != nil {
		// projection can lag the live state; serve the row without a URI
		logger.Warn("token URI unavailable", zap.Uint64("token_id", tokenID), zap.Error(viewErr))
	}

	c.JSON(http.StatusOK, resp)
}

func (h *handler) GetStats(c *gin.Context) {
	stats, err := h.store.GetStats(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "Failed to load stats")
		return
	}

	resp := dto.StatsResponse{
		TotalFlags:     stats.TotalFlags,
		CompletedPairs: stats.CompletedPairs,
		TotalTokens:    stats.TotalTokens,
		PlusHolders:    stats.PlusHolders,
		PremiumHolders: stats.PremiumHolders,
	}
	_ = h.exec.View(func(ct *contract.Contract) error {
		resp.ContractBalance = ct.GetContractBalance().String()
		return nil
	})

	c.JSON(http.StatusOK, resp)
}

func (h *handler) ListEvents(c *gin.Context) {
	after, err := strconv.ParseInt(c.DefaultQuery("after", "0"), 10, 64)
	if err != nil || after < 0 {
		respondValidationError(c, "after must be a non-negative cursor")
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 {
		respondValidationError(c, "limit must be a positive integer")
		return
	}

	entries, err := h.store.ListEvents(c.Request.Context(), after, limit)
	if err != nil {
		respondInternalError(c, err, "Failed to list events")
		return
	}

	out := make([]*dto.EventResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.EventFromSchema(e))
	}
	c.JSON(http.StatusOK, gin.H{"events": out})
}

func (h *handler) Claim(c *gin.Context) {
	id, ok := flagIDParam(c)
	if !ok {
		return
	}

	var req dto.ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}
	caller, err := domain.ParseAddress(req.Caller)
	if err != nil {
		respondValidationError(c, "caller must be a hex address")
		return
	}
	if domain.IsZeroAddress(caller) {
		respondValidationError(c, "caller must not be the zero address")
		return
	}

	if err := h.exec.Claim(c.Request.Context(), caller, id); err != nil {
		respondContractError(c, err)
		return
	}

	flag, err := h.store.GetFlag(c.Request.Context(), domain.FlagKey(id))
	if err != nil || flag == nil {
		c.JSON(http.StatusOK, gin.H{"flag_id": domain.FlagKey(id)})
		return
	}
	c.JSON(http.StatusOK, dto.FlagFromSchema(flag))
}

func (h *handler) Purchase(c *gin.Context) {
	id, ok := flagIDParam(c)
	if !ok {
		return
	}

	var req dto.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}
	caller, err := domain.ParseAddress(req.Caller)
	if err != nil {
		respondValidationError(c, "caller must be a hex address")
		return
	}
	value, ok := new(big.Int).SetString(req.Value, 10)
	if !ok || value.Sign() < 0 {
		respondValidationError(c, "value must be a non-negative decimal integer")
		return
	}

	if err := h.exec.Purchase(c.Request.Context(), caller, id, value); err != nil {
		respondContractError(c, err)
		return
	}

	flag, err := h.store.GetFlag(c.Request.Context(), domain.FlagKey(id))
	if err != nil || flag == nil {
		c.JSON(http.StatusOK, gin.H{"flag_id": domain.FlagKey(id)})
		return
	}
	c.JSON(http.StatusOK, dto.FlagFromSchema(flag))
}

// parseRegistration validates one registration entry
func parseRegistration(req *dto.RegisterFlagRequest) (*big.Int, *big.Int, error) {
	id, err := domain.ParseFlagID(req.FlagID)
	if err != nil {
		return nil, nil, err
	}
	price, ok := new(big.Int).SetString(req.PricePerNFT, 10)
	if !ok {
		return nil, nil, domain.ErrInvalidPrice
	}
	return id, price, nil
}

func (h *handler) RegisterFlag(c *gin.Context) {
	var req dto.RegisterFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	id, price, err := parseRegistration(&req)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	if err := h.exec.RegisterFlag(c.Request.Context(), id, domain.Category(req.Category), price, req.NftsRequired); err != nil {
		respondContractError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"flag_id": domain.FlagKey(id)})
}

func (h *handler) BatchRegisterFlags(c *gin.Context) {
	var req dto.BatchRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	ids := make([]*big.Int, 0, len(req.Flags))
	categories := make([]domain.Category, 0, len(req.Flags))
	prices := make([]*big.Int, 0, len(req.Flags))
	required := make([]uint8, 0, len(req.Flags))
	for i := range req.Flags {
		id, price, err := parseRegistration(&req.Flags[i])
		if err != nil {
			respondValidationError(c, err.Error())
			return
		}
		ids = append(ids, id)
		categories = append(categories, domain.Category(req.Flags[i].Category))
		prices = append(prices, price)
		required = append(required, req.Flags[i].NftsRequired)
	}

	if err := h.exec.BatchRegisterFlags(c.Request.Context(), ids, categories, prices, required); err != nil {
		respondContractError(c, err)
		return
	}

	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.FlagKey(id))
	}
	c.JSON(http.StatusCreated, gin.H{"flag_ids": out})
}

func (h *handler) SetMetadataHash(c *gin.Context) {
	id, ok := flagIDParam(c)
	if !ok {
		return
	}

	var req dto.MetadataHashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	if err := h.exec.SetMetadataHash(c.Request.Context(), id, req.MetadataHash); err != nil {
		respondContractError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"flag_id": domain.FlagKey(id), "metadata_hash": req.MetadataHash})
}

func (h *handler) SetBaseURI(c *gin.Context) {
	var req dto.BaseURIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	if err := h.exec.SetBaseURI(c.Request.Context(), req.BaseURI); err != nil {
		respondContractError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"base_uri": req.BaseURI})
}

func (h *handler) Withdraw(c *gin.Context) {
	amount, err := h.exec.Withdraw(c.Request.Context())
	if err != nil {
		respondContractError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"withdrawn": amount.String(), "to": h.exec.Admin().Hex()})
}

func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

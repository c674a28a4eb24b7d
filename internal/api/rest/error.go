package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/flagquest/flagnode/internal/api/shared/errors"
	"github.com/flagquest/flagnode/internal/domain"
	"github.com/flagquest/flagnode/internal/logger"
	"github.com/flagquest/flagnode/internal/native"
)

// errorResponse wraps an APIError in the response envelope
type errorResponse struct {
	Error *apierrors.APIError `json:"error"`
}

// respondWithError sends a standardized error response
func respondWithError(c *gin.Context, statusCode int, apiErr *apierrors.APIError) {
	c.JSON(statusCode, errorResponse{Error: apiErr})
}

// respondBadRequest sends a 400 Bad Request response
func respondBadRequest(c *gin.Context, message string, details ...string) {
	respondWithError(c, http.StatusBadRequest, apierrors.NewBadRequestError(message, details...))
}

// respondValidationError sends a 400 Bad Request with validation error
func respondValidationError(c *gin.Context, details string) {
	respondWithError(c, http.StatusBadRequest, apierrors.NewValidationError(details))
}

// respondNotFound sends a 404 Not Found response
func respondNotFound(c *gin.Context, message string, details ...string) {
	respondWithError(c, http.StatusNotFound, apierrors.NewNotFoundError(message, details...))
}

// respondInternalError sends a 500 Internal Server Error response and logs the error
func respondInternalError(c *gin.Context, err error, message string, fields ...zap.Field) {
	logger.ErrorCtx(c.Request.Context(), err, fields...)
	respondWithError(c, http.StatusInternalServerError, apierrors.NewInternalError(message))
}

// respondContractError maps a contract operation failure to its HTTP status.
// Phase conflicts are 409, payment shortfalls 402, unknown flags and
// tokens 404, admin rejections 403; everything unrecognized is a 500.
func respondContractError(c *gin.Context, err error) {
	var (
		notRegistered    *domain.NotRegisteredError
		alreadyReg       *domain.AlreadyRegisteredError
		firstClaimed     *domain.FirstAlreadyClaimedError
		firstNotClaimed  *domain.FirstNotClaimedError
		secondPurchased  *domain.SecondAlreadyPurchasedError
		insufficient     *domain.InsufficientPaymentError
		tokenNotFound    *domain.TokenNotFoundError
		invalidCategory  *domain.InvalidCategoryError
		invalidNftsCount *domain.InvalidNftsRequiredError
	)

	switch {
	case errors.As(err, &notRegistered):
		respondNotFound(c, "Flag is not registered", err.Error())
	case errors.As(err, &tokenNotFound):
		respondNotFound(c, "Token does not exist", err.Error())
	case errors.As(err, &alreadyReg):
		respondWithError(c, http.StatusConflict, apierrors.NewConflictError("Flag is already registered", err.Error()))
	case errors.As(err, &firstClaimed):
		respondWithError(c, http.StatusConflict, apierrors.NewConflictError("First NFT is already claimed", err.Error()))
	case errors.As(err, &firstNotClaimed):
		respondWithError(c, http.StatusConflict, apierrors.NewConflictError("First NFT has not been claimed yet", err.Error()))
	case errors.As(err, &secondPurchased):
		respondWithError(c, http.StatusConflict, apierrors.NewConflictError("Second NFT is already purchased", err.Error()))
	case errors.As(err, &insufficient):
		respondWithError(c, http.StatusPaymentRequired, apierrors.NewPaymentRequiredError(
			"Insufficient payment",
			"required "+insufficient.Required.String()+", sent "+insufficient.Sent.String(),
		))
	case errors.Is(err, native.ErrInsufficientFunds):
		respondWithError(c, http.StatusPaymentRequired, apierrors.NewPaymentRequiredError("Insufficient wallet balance", err.Error()))
	case errors.Is(err, domain.ErrUnauthorized):
		respondWithError(c, http.StatusForbidden, apierrors.NewForbiddenError("Caller is not the contract admin"))
	case errors.As(err, &invalidCategory),
		errors.As(err, &invalidNftsCount),
		errors.Is(err, domain.ErrInvalidPrice),
		errors.Is(err, domain.ErrArrayLengthMismatch),
		errors.Is(err, domain.ErrZeroAddress):
		respondValidationError(c, err.Error())
	case errors.Is(err, domain.ErrNoBalanceToWithdraw):
		respondWithError(c, http.StatusConflict, apierrors.NewConflictError("No balance to withdraw"))
	default:
		respondInternalError(c, err, "Operation failed")
	}
}

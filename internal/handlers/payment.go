// internal/handlers/payment.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ValenteCreativo/Side-B-sub000/internal/services"
	"github.com/ValenteCreativo/Side-B-sub000/internal/utils"
)

type PaymentHandler struct {
	issuerService *services.IssuerService
}

type QuotePaymentRequest struct {
	SessionID          uuid.UUID `json:"session_id" validate:"required"`
	BuyerID            uuid.UUID `json:"buyer_id" validate:"required"`
	BuyerWalletAddress string    `json:"buyer_wallet_address,omitempty" validate:"omitempty,eth_address"`
}

type ConfirmPaymentRequest struct {
	SessionID uuid.UUID `json:"session_id" validate:"required"`
	BuyerID   uuid.UUID `json:"buyer_id" validate:"required"`
	TxHash    string    `json:"tx_hash" validate:"required,tx_hash"`
}

func NewPaymentHandler(issuerService *services.IssuerService) *PaymentHandler {
	return &PaymentHandler{
		issuerService: issuerService,
	}
}

// POST /payments
func (h *PaymentHandler) QuotePayment(c *gin.Context) {
	var req QuotePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	quote, err := h.issuerService.QuotePayment(c.Request.Context(), req.SessionID, req.BuyerID)
	if err != nil {
		respondIssueError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"payment_details": quote,
	})
}

// POST /payments/confirm
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	var req ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	license, result, err := h.issuerService.ConfirmPayment(c.Request.Context(), req.SessionID, req.BuyerID, req.TxHash)
	if err != nil {
		respondIssueError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"success":      true,
		"license":      license,
		"verification": result,
	})
}

// respondIssueError maps the issuer's error taxonomy onto HTTP statuses.
// Retryable conditions are distinguishable by status and code; raw store
// or oracle errors never reach the client.
func respondIssueError(c *gin.Context, err error) {
	issueErr := services.AsIssueError(err)

	switch issueErr.Code {
	case services.CodeInvalidInput:
		utils.ErrorResponse(c, http.StatusBadRequest, string(issueErr.Code), issueErr.Message, nil)
	case services.CodeSessionNotFound:
		utils.NotFoundResponse(c, "Session")
	case services.CodeAlreadyLicensed:
		utils.ErrorResponse(c, http.StatusConflict, string(issueErr.Code), issueErr.Message, nil)
	case services.CodePaymentRejected:
		utils.ErrorResponse(c, http.StatusBadRequest, string(issueErr.Code), issueErr.Message, nil)
	case services.CodePaymentPending:
		utils.AcceptedResponse(c, string(issueErr.Code), gin.H{
			"status": "pending",
		})
	case services.CodeChainUnavailable:
		utils.UnavailableResponse(c, issueErr.Message)
	default:
		utils.InternalErrorResponse(c, "")
	}
}

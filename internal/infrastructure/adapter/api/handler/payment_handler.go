package handler

import (
	"errors"
	"net/http"

	domainerr "github.com/oumasdelicacy/mpesa-bridge/internal/domain/error"
	coreport "github.com/oumasdelicacy/mpesa-bridge/internal/domain/port/core"
	ucport "github.com/oumasdelicacy/mpesa-bridge/internal/domain/port/usecase"
	"github.com/oumasdelicacy/mpesa-bridge/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// PaymentHandler handles payment-related HTTP requests
type PaymentHandler struct {
	paymentService ucport.PaymentUseCase
	logger         coreport.Logger
}

// NewPaymentHandler creates a new payment handler instance
func NewPaymentHandler(paymentService ucport.PaymentUseCase, logger coreport.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         logger,
	}
}

// InitiatePush handles the POST /api/v1/payments/stk-push endpoint
func (h *PaymentHandler) InitiatePush(c *gin.Context) {
	var req dto.STKPushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid STK push request format", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	result, err := h.paymentService.InitiatePush(c.Request.Context(), ucport.InitiateRequest{
		PhoneNumber:      req.PhoneNumber,
		Amount:           req.Amount,
		AccountReference: req.AccountReference,
		TransactionDesc:  req.TransactionDesc,
		OrderID:          req.OrderID,
		UserAuthID:       req.UserAuthID,
	})
	if err != nil {
		c.JSON(statusForError(err), dto.ErrorResponse{
			Code:    domainerr.ErrorCode(err),
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.STKPushResponse{
		Success:           true,
		Message:           result.CustomerMessage,
		MerchantRequestID: result.MerchantRequestID,
		CheckoutRequestID: result.CheckoutRequestID,
		TransactionRef:    result.TransactionRef,
		Stored:            result.Stored,
	})
}

// QueryStatus handles the POST /api/v1/payments/query-status endpoint
func (h *PaymentHandler) QueryStatus(c *gin.Context) {
	var req dto.QueryStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid query status request format", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidCheckoutRequestID),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	result, err := h.paymentService.CheckStatus(c.Request.Context(), req.CheckoutRequestID)
	if err != nil {
		c.JSON(statusForError(err), dto.ErrorResponse{
			Code:    domainerr.ErrorCode(err),
			Message: err.Error(),
		})
		return
	}

	resp := dto.QueryStatusResponse{
		Success:    true,
		Status:     string(result.Status),
		ResultCode: result.ResultCode,
		ResultDesc: result.ResultDesc,
	}
	if result.Transaction != nil {
		resp.TransactionRef = result.Transaction.TransactionRef
		resp.Amount = result.Transaction.Amount
		resp.PhoneNumber = result.Transaction.PhoneNumber
	}

	c.JSON(http.StatusOK, resp)
}

// statusForError maps domain errors to HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, domainerr.ErrTransactionNotFound),
		errors.Is(err, domainerr.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainerr.ErrInvalidPhoneNumber),
		errors.Is(err, domainerr.ErrNegativeAmount),
		errors.Is(err, domainerr.ErrInvalidCheckoutRequestID),
		errors.Is(err, domainerr.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domainerr.ErrDuplicateTransaction):
		return http.StatusConflict
	case errors.Is(err, domainerr.ErrGatewayUnavailable),
		errors.Is(err, domainerr.ErrGatewayRejected):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

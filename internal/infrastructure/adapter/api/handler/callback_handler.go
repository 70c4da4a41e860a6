package handler

import (
	"net/http"

	coreport "github.com/oumasdelicacy/mpesa-bridge/internal/domain/port/core"
	ucport "github.com/oumasdelicacy/mpesa-bridge/internal/domain/port/usecase"
	"github.com/oumasdelicacy/mpesa-bridge/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// CallbackHandler receives asynchronous result callbacks from Daraja
type CallbackHandler struct {
	reconciler ucport.Reconciler
	logger     coreport.Logger
}

// NewCallbackHandler creates a new callback handler instance
func NewCallbackHandler(reconciler ucport.Reconciler, logger coreport.Logger) *CallbackHandler {
	return &CallbackHandler{
		reconciler: reconciler,
		logger:     logger,
	}
}

// HandleCallback handles the POST /api/v1/payments/mpesa/callback endpoint.
// Daraja redelivers callbacks that are not acknowledged with ResultCode 0,
// so every delivery is acked regardless of what reconciliation did with it.
func (h *CallbackHandler) HandleCallback(c *gin.Context) {
	var envelope dto.CallbackEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		h.logger.Error("Malformed callback payload", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusOK, dto.AcceptedAck())
		return
	}

	report := envelope.ToResultReport()

	h.logger.Info("Received M-Pesa callback", map[string]any{
		"merchant_request_id": report.MerchantRequestID,
		"checkout_request_id": report.CheckoutRequestID,
		"result_code":         report.ResultCode,
	})

	outcome, err := h.reconciler.Reconcile(c.Request.Context(), report, coreport.TriggerCallback)
	if err != nil {
		h.logger.Error("Callback reconciliation failed", map[string]any{
			"checkout_request_id": report.CheckoutRequestID,
			"error":               err.Error(),
		})
		c.JSON(http.StatusOK, dto.AcceptedAck())
		return
	}

	h.logger.Info("Callback reconciled", map[string]any{
		"checkout_request_id": outcome.CheckoutRequestID,
		"status":              outcome.Status,
		"matched":             outcome.Matched,
		"created":             outcome.Created,
		"discarded":           outcome.Discarded,
	})

	c.JSON(http.StatusOK, dto.AcceptedAck())
}

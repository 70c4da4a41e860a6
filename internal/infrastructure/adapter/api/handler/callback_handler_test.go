package handler

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/oumasdelicacy/mpesa-bridge/internal/domain/entity"
	coreport "github.com/oumasdelicacy/mpesa-bridge/internal/domain/port/core"
	"github.com/oumasdelicacy/mpesa-bridge/internal/domain/port/gateway"
	ucport "github.com/oumasdelicacy/mpesa-bridge/internal/domain/port/usecase"
	coremocks "github.com/oumasdelicacy/mpesa-bridge/mocks/port/core"
	usecasemocks "github.com/oumasdelicacy/mpesa-bridge/mocks/port/usecase"
)

const successCallbackJSON = `{
	"Body": {
		"stkCallback": {
			"MerchantRequestID": "29115-34620561-1",
			"CheckoutRequestID": "ws_CO_191220191020363925",
			"ResultCode": 0,
			"ResultDesc": "The service request is processed successfully.",
			"CallbackMetadata": {
				"Item": [
					{"Name": "Amount", "Value": 150.00},
					{"Name": "MpesaReceiptNumber", "Value": "NLJ7RT61SV"},
					{"Name": "TransactionDate", "Value": 20240615143000},
					{"Name": "PhoneNumber", "Value": 254712345678}
				]
			}
		}
	}
}`

func newTestLogger() *coremocks.MockLogger {
	logger := new(coremocks.MockLogger)
	logger.On("Debug", mock.Anything, mock.Anything).Maybe()
	logger.On("Info", mock.Anything, mock.Anything).Maybe()
	logger.On("Warn", mock.Anything, mock.Anything).Maybe()
	logger.On("Error", mock.Anything, mock.Anything).Maybe()
	return logger
}

func postCallback(t *testing.T, h *CallbackHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.POST("/api/v1/payments/mpesa/callback", h.HandleCallback)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/mpesa/callback", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestCallbackHandler_SuccessfulCallbackIsReconciled(t *testing.T) {
	reconciler := new(usecasemocks.MockReconciler)
	reconciler.On("Reconcile", mock.Anything, mock.MatchedBy(func(report gateway.ResultReport) bool {
		return report.CheckoutRequestID == "ws_CO_191220191020363925" &&
			report.ResultCode != nil && *report.ResultCode == 0 &&
			report.Metadata != nil &&
			report.Metadata.ReceiptNumber == "NLJ7RT61SV" &&
			report.Metadata.PhoneNumber == "254712345678"
	}), coreport.TriggerCallback).Return(&ucport.ReconcileOutcome{
		CheckoutRequestID: "ws_CO_191220191020363925",
		Matched:           true,
		Status:            entity.StatusCompleted,
	}, nil)

	h := NewCallbackHandler(reconciler, newTestLogger())
	recorder := postCallback(t, h, successCallbackJSON)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"ResultCode":0,"ResultDesc":"Accepted"}`, recorder.Body.String())
	reconciler.AssertExpectations(t)
}

func TestCallbackHandler_MalformedPayloadStillAcked(t *testing.T) {
	reconciler := new(usecasemocks.MockReconciler)

	h := NewCallbackHandler(reconciler, newTestLogger())
	recorder := postCallback(t, h, `{"Body": `)

	// Daraja redelivers anything not acked with ResultCode 0
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"ResultCode":0,"ResultDesc":"Accepted"}`, recorder.Body.String())
	reconciler.AssertNotCalled(t, "Reconcile", mock.Anything, mock.Anything, mock.Anything)
}

func TestCallbackHandler_ReconcileFailureStillAcked(t *testing.T) {
	reconciler := new(usecasemocks.MockReconciler)
	reconciler.On("Reconcile", mock.Anything, mock.Anything, coreport.TriggerCallback).
		Return(nil, errors.New("database connection error"))

	h := NewCallbackHandler(reconciler, newTestLogger())
	recorder := postCallback(t, h, successCallbackJSON)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"ResultCode":0,"ResultDesc":"Accepted"}`, recorder.Body.String())
}

func TestCallbackHandler_CancelledCallbackWithoutMetadata(t *testing.T) {
	reconciler := new(usecasemocks.MockReconciler)
	reconciler.On("Reconcile", mock.Anything, mock.MatchedBy(func(report gateway.ResultReport) bool {
		return report.ResultCode != nil && *report.ResultCode == 1032 && report.Metadata == nil
	}), coreport.TriggerCallback).Return(&ucport.ReconcileOutcome{
		CheckoutRequestID: "ws_CO_191220191020363925",
		Matched:           true,
		Status:            entity.StatusCancelled,
	}, nil)

	h := NewCallbackHandler(reconciler, newTestLogger())
	recorder := postCallback(t, h, `{
		"Body": {
			"stkCallback": {
				"MerchantRequestID": "29115-34620561-1",
				"CheckoutRequestID": "ws_CO_191220191020363925",
				"ResultCode": 1032,
				"ResultDesc": "Request cancelled by user"
			}
		}
	}`)

	assert.Equal(t, http.StatusOK, recorder.Code)
	reconciler.AssertExpectations(t)
}

package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/oumasdelicacy/mpesa-bridge/internal/domain/entity"
	errs "github.com/oumasdelicacy/mpesa-bridge/internal/domain/error"
	coreport "github.com/oumasdelicacy/mpesa-bridge/internal/domain/port/core"
	"github.com/oumasdelicacy/mpesa-bridge/internal/domain/port/gateway"
	"github.com/oumasdelicacy/mpesa-bridge/internal/domain/port/persistence"
	ucport "github.com/oumasdelicacy/mpesa-bridge/internal/domain/port/usecase"
)

// Service implements the payment-facing use cases: initiating an STK Push
// and polling its status. The poll path delegates the actual state change
// to the reconciler so callbacks and polls cannot diverge.
type Service struct {
	gateway      gateway.Client
	transactions persistence.TransactionRepository
	reconciler   ucport.Reconciler
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	metrics      coreport.MetricsRecorder
	shortCode    string
}

// NewService creates a payment service
func NewService(
	gw gateway.Client,
	transactions persistence.TransactionRepository,
	reconciler ucport.Reconciler,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	metrics coreport.MetricsRecorder,
	businessShortCode string,
) *Service {
	return &Service{
		gateway:      gw,
		transactions: transactions,
		reconciler:   reconciler,
		timeProvider: timeProvider,
		logger:       logger,
		metrics:      metrics,
		shortCode:    businessShortCode,
	}
}

// InitiatePush validates and normalizes the request, submits the push and
// stores the pending transaction. If the local insert fails after the
// gateway accepted the push, the push stands: the failure is logged and the
// caller still gets the checkout request ID, with Stored=false. The
// reconciliation engine's recovery path picks such payments up when their
// result arrives.
func (s *Service) InitiatePush(ctx context.Context, req ucport.InitiateRequest) (*ucport.InitiateResult, error) {
	if req.Amount <= 0 {
		return nil, errs.ErrNegativeAmount
	}
	if strings.TrimSpace(req.AccountReference) == "" {
		return nil, fmt.Errorf("%w: accountReference is required", errs.ErrInvalidRequest)
	}

	phone, err := FormatPhoneNumber(req.PhoneNumber)
	if err != nil {
		return nil, err
	}

	desc := req.TransactionDesc
	if desc == "" {
		desc = "Payment for order"
	}

	s.logger.Info("Initiating STK Push", map[string]any{
		"phone":             phone,
		"amount":            req.Amount,
		"account_reference": req.AccountReference,
	})

	resp, err := s.gateway.STKPush(ctx, gateway.STKPushRequest{
		PhoneNumber:      phone,
		Amount:           req.Amount,
		AccountReference: req.AccountReference,
		TransactionDesc:  desc,
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordPushInitiated()

	transactionRef := fmt.Sprintf("TXN-%d-%s", s.timeProvider.Now().Unix(), uuid.NewString()[:8])

	txn, err := entity.NewPendingTransaction(
		transactionRef,
		resp.MerchantRequestID,
		resp.CheckoutRequestID,
		req.Amount,
		phone,
		req.AccountReference,
		desc,
		s.shortCode,
		req.OrderID,
		req.UserAuthID,
		s.timeProvider,
	)
	if err != nil {
		// The push already went out; surface the bookkeeping gap, not an error.
		s.logger.Error("Failed to build pending transaction after successful push", map[string]any{
			"checkout_request_id": resp.CheckoutRequestID,
			"error":               err.Error(),
		})
		return initiateResultFrom(resp, transactionRef, false), nil
	}

	if err := s.transactions.Create(ctx, txn); err != nil {
		s.logger.Error("Failed to store pending transaction after successful push", map[string]any{
			"checkout_request_id": resp.CheckoutRequestID,
			"error":               err.Error(),
		})
		return initiateResultFrom(resp, transactionRef, false), nil
	}

	s.logger.Info("Pending transaction stored", map[string]any{
		"checkout_request_id": resp.CheckoutRequestID,
		"transaction_ref":     transactionRef,
	})

	return initiateResultFrom(resp, transactionRef, true), nil
}

func initiateResultFrom(resp *gateway.STKPushResponse, transactionRef string, stored bool) *ucport.InitiateResult {
	message := resp.CustomerMessage
	if message == "" {
		message = "STK Push sent successfully"
	}
	return &ucport.InitiateResult{
		MerchantRequestID: resp.MerchantRequestID,
		CheckoutRequestID: resp.CheckoutRequestID,
		CustomerMessage:   message,
		TransactionRef:    transactionRef,
		Stored:            stored,
	}
}

// CheckStatus queries the gateway and funnels its answer through the
// reconciler. Gateway and persistence failures surface to the caller; an
// unmatched, non-recoverable report comes back as ErrTransactionNotFound.
func (s *Service) CheckStatus(ctx context.Context, checkoutRequestID string) (*ucport.StatusResult, error) {
	if strings.TrimSpace(checkoutRequestID) == "" {
		return nil, errs.ErrInvalidCheckoutRequestID
	}

	report, err := s.gateway.QueryStatus(ctx, checkoutRequestID)
	if err != nil {
		return nil, err
	}

	outcome, err := s.reconciler.Reconcile(ctx, *report, coreport.TriggerPoll)
	if err != nil {
		return nil, err
	}

	if outcome.Discarded {
		return nil, errs.ErrTransactionNotFound
	}

	result := &ucport.StatusResult{
		Status:      outcome.Status,
		ResultCode:  report.ResultCode,
		ResultDesc:  report.ResultDesc,
		Transaction: outcome.Transaction,
	}
	return result, nil
}

// compile-time interface check
var _ ucport.PaymentUseCase = (*Service)(nil)

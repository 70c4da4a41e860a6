package usecase

import (
	"context"

	"github.com/oumasdelicacy/mpesa-bridge/internal/domain/entity"
)

// InitiateRequest represents an incoming STK Push initiation
type InitiateRequest struct {
	PhoneNumber      string
	Amount           float64
	AccountReference string
	TransactionDesc  string
	OrderID          *string
	UserAuthID       *string
}

// InitiateResult contains what the caller needs to track the payment
type InitiateResult struct {
	MerchantRequestID string
	CheckoutRequestID string
	CustomerMessage   string
	TransactionRef    string
	Stored            bool // false when the push succeeded but local bookkeeping failed
}

// StatusResult is the structured answer to a status poll
type StatusResult struct {
	Status      entity.TransactionStatus
	ResultCode  *int
	ResultDesc  string
	Transaction *entity.Transaction
}

// PaymentUseCase defines the payment-facing business operations
type PaymentUseCase interface {
	// InitiatePush normalizes the payer's phone number, submits an STK Push
	// and stores the pending transaction keyed by the returned checkout
	// request ID
	InitiatePush(ctx context.Context, req InitiateRequest) (*InitiateResult, error)

	// CheckStatus queries the gateway for the payment's current result and
	// reconciles it locally before returning
	CheckStatus(ctx context.Context, checkoutRequestID string) (*StatusResult, error)
}

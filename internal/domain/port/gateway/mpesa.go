package gateway

import (
	"context"
	"time"
)

// STKPushRequest is the domain-level input for a push-to-phone payment
type STKPushRequest struct {
	PhoneNumber      string  // Payer MSISDN in 2547XXXXXXXX form
	Amount           float64 // Amount in KES, rounded to whole shillings on the wire
	AccountReference string  // Shown on the payer's phone
	TransactionDesc  string  // Free-form description
}

// STKPushResponse is the gateway's synchronous answer to a push submission
type STKPushResponse struct {
	MerchantRequestID   string
	CheckoutRequestID   string
	ResponseCode        string
	ResponseDescription string
	CustomerMessage     string
}

// SuccessMetadata is the structured payload the provider attaches to a
// successful payment result
type SuccessMetadata struct {
	Amount          float64
	ReceiptNumber   string // M-Pesa receipt number
	PhoneNumber     string
	Balance         *float64
	TransactionDate time.Time
}

// ResultReport is the provider's account of what happened to a payment,
// whether delivered by callback or fetched by a status query. A nil
// ResultCode means the provider has not finished processing yet.
type ResultReport struct {
	MerchantRequestID string
	CheckoutRequestID string
	ResultCode        *int
	ResultDesc        string
	Metadata          *SuccessMetadata
}

// Pending reports whether the provider has produced a result yet
func (r *ResultReport) Pending() bool {
	return r.ResultCode == nil
}

// Client is the narrow interface the domain holds on the M-Pesa gateway
type Client interface {
	// STKPush submits a push-to-phone payment request
	STKPush(ctx context.Context, req STKPushRequest) (*STKPushResponse, error)

	// QueryStatus synchronously asks the gateway for the current result of
	// a previously initiated payment
	QueryStatus(ctx context.Context, checkoutRequestID string) (*ResultReport, error)
}

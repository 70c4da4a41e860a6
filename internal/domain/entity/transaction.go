package entity

import (
	"strings"
	"time"

	errs "github.com/oumasdelicacy/mpesa-bridge/internal/domain/error"
	tport "github.com/oumasdelicacy/mpesa-bridge/internal/domain/port/core"
)

// TransactionStatus defines possible status values for a payment transaction
type TransactionStatus string

// TransactionStatus constants
const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
	StatusCancelled TransactionStatus = "cancelled"
)

// IsTerminal reports whether no further provider result is expected for
// a transaction in this status
func (s TransactionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// TransactionType represents the kind of M-Pesa transaction
type TransactionType string

// Transaction types
const (
	TypePayment TransactionType = "payment"
	TypeRefund  TransactionType = "refund"
)

// Transaction represents one STK Push payment attempt against the M-Pesa
// gateway. CheckoutRequestID is the provider-issued correlation key that
// joins asynchronous callbacks and status polls back to this record.
type Transaction struct {
	ID                uint64            // Internal primary key
	TransactionRef    string            // Internal reference, replaced by the M-Pesa receipt number on success
	MerchantRequestID string            // Provider request identifier
	CheckoutRequestID string            // Provider correlation key, unique per payment attempt
	TransactionType   TransactionType   // Kind of transaction
	Status            TransactionStatus // Current reconciliation status
	ResultCode        *int              // Raw provider result code, nil while pending
	ResultDesc        string            // Human-readable result cause
	Amount            float64           // Amount in KES
	PhoneNumber       string            // Payer MSISDN in 2547XXXXXXXX form
	AccountReference  string            // Account reference shown on the payer's phone
	TransactionDesc   string            // Free-form description sent with the push
	BusinessShortCode string            // Paybill/till number the payment was made to
	OrderID           *string           // Optional owning order
	UserAuthID        *string           // Optional authenticated user who initiated the payment
	TransactionDate   time.Time         // Provider-reported completion time, initiation time until then
	CreatedAt         time.Time         // When the record was created
	UpdatedAt         time.Time         // Set on every mutation
}

// NewPendingTransaction creates a transaction in the pending state, as stored
// right after a successful STK Push submission.
func NewPendingTransaction(
	transactionRef string,
	merchantRequestID string,
	checkoutRequestID string,
	amount float64,
	phoneNumber string,
	accountReference string,
	transactionDesc string,
	businessShortCode string,
	orderID *string,
	userAuthID *string,
	timeProvider tport.TimeProvider,
) (*Transaction, error) {
	if strings.TrimSpace(checkoutRequestID) == "" {
		return nil, errs.ErrInvalidCheckoutRequestID
	}
	if transactionRef == "" {
		return nil, errs.ErrInvalidTransactionRef
	}
	if amount < 0 {
		return nil, errs.ErrNegativeAmount
	}
	if phoneNumber == "" {
		return nil, errs.ErrInvalidPhoneNumber
	}

	now := timeProvider.Now()
	return &Transaction{
		TransactionRef:    transactionRef,
		MerchantRequestID: merchantRequestID,
		CheckoutRequestID: checkoutRequestID,
		TransactionType:   TypePayment,
		Status:            StatusPending,
		Amount:            amount,
		PhoneNumber:       phoneNumber,
		AccountReference:  accountReference,
		TransactionDesc:   transactionDesc,
		BusinessShortCode: businessShortCode,
		OrderID:           orderID,
		UserAuthID:        userAuthID,
		TransactionDate:   now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// ApplyResult overwrites the transaction with a classified provider result.
// The overwrite is unconditional so that redelivered terminal callbacks are
// safe to apply repeatedly.
func (t *Transaction) ApplyResult(status TransactionStatus, resultCode int, resultDesc string, timeProvider tport.TimeProvider) {
	code := resultCode
	t.Status = status
	t.ResultCode = &code
	t.ResultDesc = resultDesc
	t.UpdatedAt = timeProvider.Now()
}

// ApplySuccessMetadata absorbs the structured payload of a successful
// callback: the M-Pesa receipt number replaces the internal reference, and
// the provider-confirmed amount, payer and completion time take precedence
// over the values captured at initiation.
func (t *Transaction) ApplySuccessMetadata(receiptNumber string, amount float64, phoneNumber string, transactionDate time.Time) {
	if receiptNumber != "" {
		t.TransactionRef = receiptNumber
	}
	if amount > 0 {
		t.Amount = amount
	}
	if phoneNumber != "" {
		t.PhoneNumber = phoneNumber
	}
	if !transactionDate.IsZero() {
		t.TransactionDate = transactionDate
	}
}

// HasOrder reports whether this payment is tied to an order
func (t *Transaction) HasOrder() bool {
	return t.OrderID != nil && *t.OrderID != ""
}

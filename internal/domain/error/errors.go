package error

import (
	"errors"
	"fmt"
)

// Error codes for standardized API responses
const (
	// 4xxx - Client errors
	CodeInvalidRequest            = 4001
	CodeInvalidPhoneNumber        = 4002
	CodeInvalidAmount             = 4003
	CodeInvalidCheckoutRequestID  = 4004
	CodeDuplicateTransaction      = 4005
	CodeTransactionNotFound       = 4040
	CodeOrderNotFound             = 4041

	// 5xxx - Server errors
	CodeInternalServer     = 5000
	CodeGatewayUnavailable = 5020
	CodeGatewayRejected    = 5021
	CodeMissingCredentials = 5030
)

// Base error types
var (
	// ErrInvalidRequest is returned when the request format is invalid
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidPhoneNumber is returned when the payer phone number is empty or malformed
	ErrInvalidPhoneNumber = errors.New("invalid phone number")

	// ErrNegativeAmount is returned when the payment amount is negative
	ErrNegativeAmount = errors.New("amount cannot be negative")

	// ErrInvalidCheckoutRequestID is returned when the provider correlation key is empty
	ErrInvalidCheckoutRequestID = errors.New("checkout request ID cannot be empty")

	// ErrInvalidTransactionRef is returned when the internal transaction reference is empty
	ErrInvalidTransactionRef = errors.New("transaction reference cannot be empty")

	// ErrDuplicateTransaction is returned when a transaction with the same checkout request ID already exists
	ErrDuplicateTransaction = errors.New("transaction with this checkout request ID already exists")

	// ErrTransactionNotFound is returned when no transaction matches a checkout request ID
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrOrderNotFound is returned when the referenced order doesn't exist
	ErrOrderNotFound = errors.New("order not found")

	// ErrReceiptNotFound is returned when the requested receipt doesn't exist
	ErrReceiptNotFound = errors.New("receipt not found")

	// ErrCustomerNotFound is returned when an order's owner has no user record
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrMissingCredentials is returned when gateway credentials are not configured
	ErrMissingCredentials = errors.New("gateway credentials not configured")

	// ErrGatewayUnavailable is returned when the payment gateway cannot be reached
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrGatewayRejected is returned when the gateway rejects a request outright
	ErrGatewayRejected = errors.New("payment gateway rejected the request")

	// ErrEmailNotConfigured is returned when the email provider key is absent
	ErrEmailNotConfigured = errors.New("email provider not configured")

	// ErrDatabaseConnection is returned when there's a problem talking to the database
	ErrDatabaseConnection = errors.New("database connection error")

	// ErrInternalServer is returned for unexpected server-side errors
	ErrInternalServer = errors.New("internal server error")
)

// ErrorCode returns standardized error codes for known errors
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrInvalidPhoneNumber):
		return CodeInvalidPhoneNumber
	case errors.Is(err, ErrNegativeAmount):
		return CodeInvalidAmount
	case errors.Is(err, ErrInvalidCheckoutRequestID):
		return CodeInvalidCheckoutRequestID
	case errors.Is(err, ErrDuplicateTransaction):
		return CodeDuplicateTransaction
	case errors.Is(err, ErrTransactionNotFound):
		return CodeTransactionNotFound
	case errors.Is(err, ErrOrderNotFound):
		return CodeOrderNotFound
	case errors.Is(err, ErrCustomerNotFound):
		return CodeOrderNotFound
	case errors.Is(err, ErrInvalidRequest):
		return CodeInvalidRequest
	case errors.Is(err, ErrMissingCredentials):
		return CodeMissingCredentials
	case errors.Is(err, ErrGatewayUnavailable):
		return CodeGatewayUnavailable
	case errors.Is(err, ErrGatewayRejected):
		return CodeGatewayRejected
	default:
		return CodeInternalServer
	}
}

// GatewayError carries the gateway-level detail of a rejected or failed
// provider call
type GatewayError struct {
	Operation  string
	StatusCode int
	Body       string
	Err        error
}

// Error implements the error interface
func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway %s failed (http %d): %v", e.Operation, e.StatusCode, e.Err)
}

// Unwrap returns the underlying error
func (e *GatewayError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *GatewayError) LogFields() map[string]any {
	return map[string]any{
		"error_type":  "gateway_error",
		"operation":   e.Operation,
		"http_status": e.StatusCode,
		"body":        e.Body,
		"error":       e.Err.Error(),
	}
}

// NewGatewayError creates a detailed gateway error
func NewGatewayError(operation string, statusCode int, body string, err error) error {
	return &GatewayError{
		Operation:  operation,
		StatusCode: statusCode,
		Body:       body,
		Err:        err,
	}
}

// ReconcileError carries the context of a failed reconciliation attempt
type ReconcileError struct {
	CheckoutRequestID string
	Stage             string
	Err               error
}

// Error implements the error interface
func (e *ReconcileError) Error() string {
	return fmt.Sprintf("reconcile failed for %s during %s: %v", e.CheckoutRequestID, e.Stage, e.Err)
}

// Unwrap returns the underlying error
func (e *ReconcileError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *ReconcileError) LogFields() map[string]any {
	return map[string]any{
		"error_type":          "reconcile_error",
		"checkout_request_id": e.CheckoutRequestID,
		"stage":               e.Stage,
		"error":               e.Err.Error(),
	}
}

// NewReconcileError creates a detailed reconciliation error
func NewReconcileError(checkoutRequestID, stage string, err error) error {
	return &ReconcileError{
		CheckoutRequestID: checkoutRequestID,
		Stage:             stage,
		Err:               err,
	}
}

// IsNotFoundError checks if the error is any "not found" type of error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrTransactionNotFound) ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrReceiptNotFound)
}

// IsDuplicateTransactionError checks if the error is a duplicate transaction error
func IsDuplicateTransactionError(err error) bool {
	return errors.Is(err, ErrDuplicateTransaction)
}

// IsGatewayError checks if the error originated at the payment gateway
func IsGatewayError(err error) bool {
	return errors.Is(err, ErrGatewayUnavailable) || errors.Is(err, ErrGatewayRejected)
}

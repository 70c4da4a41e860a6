package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	errs "github.com/oumasdelicacy/mpesa-bridge/internal/domain/error"
	coremocks "github.com/oumasdelicacy/mpesa-bridge/mocks/port/core"
)

var testNow = time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC)

func testTimeProvider() *coremocks.MockTimeProvider {
	tp := new(coremocks.MockTimeProvider)
	tp.On("Now").Return(testNow).Maybe()
	return tp
}

func validPendingTransaction(t *testing.T) *Transaction {
	t.Helper()
	txn, err := NewPendingTransaction(
		"TXN-1718461800-abcd1234",
		"29115-34620561-1",
		"ws_CO_191220191020363925",
		150,
		"254712345678",
		"ORD-881",
		"Payment for order",
		"174379",
		nil,
		nil,
		testTimeProvider(),
	)
	assert.NoError(t, err)
	return txn
}

func TestNewPendingTransaction(t *testing.T) {
	txn := validPendingTransaction(t)

	assert.Equal(t, StatusPending, txn.Status)
	assert.Equal(t, TypePayment, txn.TransactionType)
	assert.Nil(t, txn.ResultCode)
	assert.Equal(t, testNow, txn.CreatedAt)
	assert.Equal(t, testNow, txn.TransactionDate)
}

func TestNewPendingTransaction_Validation(t *testing.T) {
	tests := []struct {
		name              string
		transactionRef    string
		checkoutRequestID string
		amount            float64
		phoneNumber       string
		wantErr           error
	}{
		{
			name:              "missing checkout request id",
			transactionRef:    "TXN-1",
			checkoutRequestID: "  ",
			amount:            100,
			phoneNumber:       "254712345678",
			wantErr:           errs.ErrInvalidCheckoutRequestID,
		},
		{
			name:              "missing transaction ref",
			checkoutRequestID: "ws_CO_1",
			amount:            100,
			phoneNumber:       "254712345678",
			wantErr:           errs.ErrInvalidTransactionRef,
		},
		{
			name:              "negative amount",
			transactionRef:    "TXN-1",
			checkoutRequestID: "ws_CO_1",
			amount:            -5,
			phoneNumber:       "254712345678",
			wantErr:           errs.ErrNegativeAmount,
		},
		{
			name:              "missing phone number",
			transactionRef:    "TXN-1",
			checkoutRequestID: "ws_CO_1",
			amount:            100,
			wantErr:           errs.ErrInvalidPhoneNumber,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPendingTransaction(
				tt.transactionRef,
				"29115-34620561-1",
				tt.checkoutRequestID,
				tt.amount,
				tt.phoneNumber,
				"ORD-881",
				"Payment for order",
				"174379",
				nil,
				nil,
				testTimeProvider(),
			)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTransactionStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
}

func TestTransaction_ApplyResult(t *testing.T) {
	txn := validPendingTransaction(t)

	later := testNow.Add(30 * time.Second)
	tp := new(coremocks.MockTimeProvider)
	tp.On("Now").Return(later)

	txn.ApplyResult(StatusCancelled, 1032, "Transaction cancelled by user", tp)

	assert.Equal(t, StatusCancelled, txn.Status)
	assert.Equal(t, 1032, *txn.ResultCode)
	assert.Equal(t, "Transaction cancelled by user", txn.ResultDesc)
	assert.Equal(t, later, txn.UpdatedAt)

	// Unconditional overwrite, even from a terminal status
	txn.ApplyResult(StatusCompleted, 0, "", tp)
	assert.Equal(t, StatusCompleted, txn.Status)
	assert.Equal(t, 0, *txn.ResultCode)
}

func TestTransaction_ApplySuccessMetadata(t *testing.T) {
	txn := validPendingTransaction(t)
	completedAt := testNow.Add(45 * time.Second)

	txn.ApplySuccessMetadata("NLJ7RT61SV", 150, "254798765432", completedAt)

	assert.Equal(t, "NLJ7RT61SV", txn.TransactionRef)
	assert.Equal(t, float64(150), txn.Amount)
	assert.Equal(t, "254798765432", txn.PhoneNumber)
	assert.Equal(t, completedAt, txn.TransactionDate)
}

func TestTransaction_ApplySuccessMetadata_KeepsExistingOnEmptyFields(t *testing.T) {
	txn := validPendingTransaction(t)

	txn.ApplySuccessMetadata("", 0, "", time.Time{})

	assert.Equal(t, "TXN-1718461800-abcd1234", txn.TransactionRef)
	assert.Equal(t, float64(150), txn.Amount)
	assert.Equal(t, "254712345678", txn.PhoneNumber)
	assert.Equal(t, testNow, txn.TransactionDate)
}

func TestTransaction_HasOrder(t *testing.T) {
	txn := validPendingTransaction(t)
	assert.False(t, txn.HasOrder())

	empty := ""
	txn.OrderID = &empty
	assert.False(t, txn.HasOrder())

	orderID := "0b2c2a1e-9f46-4c27-8b89-6f0d9c7a5f10"
	txn.OrderID = &orderID
	assert.True(t, txn.HasOrder())
}

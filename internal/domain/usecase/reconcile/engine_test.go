package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/oumasdelicacy/mpesa-bridge/internal/domain/entity"
	errs "github.com/oumasdelicacy/mpesa-bridge/internal/domain/error"
	coreport "github.com/oumasdelicacy/mpesa-bridge/internal/domain/port/core"
	"github.com/oumasdelicacy/mpesa-bridge/internal/domain/port/gateway"
	coremocks "github.com/oumasdelicacy/mpesa-bridge/mocks/port/core"
	notificationmocks "github.com/oumasdelicacy/mpesa-bridge/mocks/port/notification"
	persistencemocks "github.com/oumasdelicacy/mpesa-bridge/mocks/port/persistence"
)

const testShortCode = "174379"

var fixedTime = time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC)

// newTestLogger returns a logger mock that accepts any log call
func newTestLogger() *coremocks.MockLogger {
	logger := new(coremocks.MockLogger)
	logger.On("Debug", mock.Anything, mock.Anything).Maybe()
	logger.On("Info", mock.Anything, mock.Anything).Maybe()
	logger.On("Warn", mock.Anything, mock.Anything).Maybe()
	logger.On("Error", mock.Anything, mock.Anything).Maybe()
	return logger
}

// newTestMetrics returns a metrics mock that accepts any recording
func newTestMetrics() *coremocks.MockMetricsRecorder {
	metrics := new(coremocks.MockMetricsRecorder)
	metrics.On("RecordReportReceived", mock.Anything).Maybe()
	metrics.On("RecordReconcileOutcome", mock.Anything, mock.Anything).Maybe()
	metrics.On("RecordRecoveryInsert").Maybe()
	metrics.On("RecordReportDiscarded").Maybe()
	metrics.On("RecordOrderMarkedPaid").Maybe()
	metrics.On("RecordReceiptEmitFailure").Maybe()
	return metrics
}

func newTestTimeProvider() *coremocks.MockTimeProvider {
	tp := new(coremocks.MockTimeProvider)
	tp.On("Now").Return(fixedTime).Maybe()
	return tp
}

func pendingTransaction(orderID *string) *entity.Transaction {
	return &entity.Transaction{
		ID:                1,
		TransactionRef:    "TXN-1718461800-abcd1234",
		MerchantRequestID: "29115-34620561-1",
		CheckoutRequestID: "ws_CO_191220191020363925",
		TransactionType:   entity.TypePayment,
		Status:            entity.StatusPending,
		Amount:            150,
		PhoneNumber:       "254712345678",
		AccountReference:  "ORD-881",
		BusinessShortCode: testShortCode,
		OrderID:           orderID,
		TransactionDate:   fixedTime.Add(-time.Minute),
		CreatedAt:         fixedTime.Add(-time.Minute),
		UpdatedAt:         fixedTime.Add(-time.Minute),
	}
}

func successReport(checkoutRequestID string) gateway.ResultReport {
	return gateway.ResultReport{
		MerchantRequestID: "29115-34620561-1",
		CheckoutRequestID: checkoutRequestID,
		ResultCode:        intPtr(0),
		ResultDesc:        "The service request is processed successfully.",
		Metadata: &gateway.SuccessMetadata{
			Amount:          150,
			ReceiptNumber:   "NLJ7RT61SV",
			PhoneNumber:     "254712345678",
			TransactionDate: fixedTime,
		},
	}
}

func TestEngine_Reconcile_SuccessWithOrder(t *testing.T) {
	ctx := context.Background()
	orderID := "0b2c2a1e-9f46-4c27-8b89-6f0d9c7a5f10"
	txn := pendingTransaction(&orderID)

	transactions := new(persistencemocks.MockTransactionRepository)
	orders := new(persistencemocks.MockOrderRepository)
	receipts := new(notificationmocks.MockReceiptEmitter)
	metrics := newTestMetrics()

	transactions.On("GetByCheckoutRequestID", ctx, txn.CheckoutRequestID).Return(txn, nil)
	transactions.On("Update", ctx, txn).Return(nil)
	orders.On("MarkPaid", ctx, orderID).Return(nil)
	receipts.On("Emit", ctx, "NLJ7RT61SV", orderID, "254712345678").Return(nil)

	engine := NewEngine(transactions, orders, receipts, newTestTimeProvider(), newTestLogger(), metrics, testShortCode)

	outcome, err := engine.Reconcile(ctx, successReport(txn.CheckoutRequestID), coreport.TriggerCallback)

	assert.NoError(t, err)
	assert.True(t, outcome.Matched)
	assert.Equal(t, entity.StatusCompleted, outcome.Status)
	assert.True(t, outcome.OrderPaidAttempted)
	assert.True(t, outcome.ReceiptAttempted)

	// The M-Pesa receipt number replaces the internal reference
	assert.Equal(t, "NLJ7RT61SV", txn.TransactionRef)
	assert.Equal(t, entity.StatusCompleted, txn.Status)
	assert.Equal(t, 0, *txn.ResultCode)

	transactions.AssertExpectations(t)
	orders.AssertExpectations(t)
	receipts.AssertExpectations(t)
	metrics.AssertCalled(t, "RecordOrderMarkedPaid")
	metrics.AssertCalled(t, "RecordReconcileOutcome", "completed", coreport.TriggerCallback)
}

func TestEngine_Reconcile_SuccessWithoutOrderSkipsSideEffects(t *testing.T) {
	ctx := context.Background()
	txn := pendingTransaction(nil)

	transactions := new(persistencemocks.MockTransactionRepository)
	orders := new(persistencemocks.MockOrderRepository)
	receipts := new(notificationmocks.MockReceiptEmitter)

	transactions.On("GetByCheckoutRequestID", ctx, txn.CheckoutRequestID).Return(txn, nil)
	transactions.On("Update", ctx, txn).Return(nil)

	engine := NewEngine(transactions, orders, receipts, newTestTimeProvider(), newTestLogger(), newTestMetrics(), testShortCode)

	outcome, err := engine.Reconcile(ctx, successReport(txn.CheckoutRequestID), coreport.TriggerCallback)

	assert.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, outcome.Status)
	assert.False(t, outcome.OrderPaidAttempted)
	assert.False(t, outcome.ReceiptAttempted)

	orders.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything)
	receipts.AssertNotCalled(t, "Emit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEngine_Reconcile_CancelledByUser(t *testing.T) {
	ctx := context.Background()
	orderID := "0b2c2a1e-9f46-4c27-8b89-6f0d9c7a5f10"
	txn := pendingTransaction(&orderID)

	transactions := new(persistencemocks.MockTransactionRepository)
	orders := new(persistencemocks.MockOrderRepository)
	receipts := new(notificationmocks.MockReceiptEmitter)

	transactions.On("GetByCheckoutRequestID", ctx, txn.CheckoutRequestID).Return(txn, nil)
	transactions.On("Update", ctx, txn).Return(nil)

	engine := NewEngine(transactions, orders, receipts, newTestTimeProvider(), newTestLogger(), newTestMetrics(), testShortCode)

	report := gateway.ResultReport{
		CheckoutRequestID: txn.CheckoutRequestID,
		ResultCode:        intPtr(1032),
		ResultDesc:        "Request cancelled by user",
	}
	outcome, err := engine.Reconcile(ctx, report, coreport.TriggerCallback)

	assert.NoError(t, err)
	assert.Equal(t, entity.StatusCancelled, outcome.Status)
	assert.Equal(t, MsgCancelledByUser, txn.ResultDesc)

	// A cancelled payment never touches the order
	orders.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything)
	receipts.AssertNotCalled(t, "Emit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEngine_Reconcile_PendingReportIsNoOp(t *testing.T) {
	ctx := context.Background()
	txn := pendingTransaction(nil)

	transactions := new(persistencemocks.MockTransactionRepository)
	transactions.On("GetByCheckoutRequestID", ctx, txn.CheckoutRequestID).Return(txn, nil)

	engine := NewEngine(transactions, new(persistencemocks.MockOrderRepository), new(notificationmocks.MockReceiptEmitter), newTestTimeProvider(), newTestLogger(), newTestMetrics(), testShortCode)

	report := gateway.ResultReport{
		CheckoutRequestID: txn.CheckoutRequestID,
		ResultDesc:        "The transaction is being processed",
	}
	outcome, err := engine.Reconcile(ctx, report, coreport.TriggerPoll)

	assert.NoError(t, err)
	assert.True(t, outcome.Matched)
	assert.Equal(t, entity.StatusPending, outcome.Status)

	transactions.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestEngine_Reconcile_RedeliveredTerminalReportIsIdempotent(t *testing.T) {
	ctx := context.Background()
	txn := pendingTransaction(nil)
	txn.Status = entity.StatusCompleted
	code := 0
	txn.ResultCode = &code
	txn.TransactionRef = "NLJ7RT61SV"

	transactions := new(persistencemocks.MockTransactionRepository)
	transactions.On("GetByCheckoutRequestID", ctx, txn.CheckoutRequestID).Return(txn, nil)
	transactions.On("Update", ctx, txn).Return(nil)

	engine := NewEngine(transactions, new(persistencemocks.MockOrderRepository), new(notificationmocks.MockReceiptEmitter), newTestTimeProvider(), newTestLogger(), newTestMetrics(), testShortCode)

	outcome, err := engine.Reconcile(ctx, successReport(txn.CheckoutRequestID), coreport.TriggerCallback)

	assert.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, outcome.Status)
	assert.Equal(t, "NLJ7RT61SV", txn.TransactionRef)
	transactions.AssertExpectations(t)
}

func TestEngine_Reconcile_RedeliveredSuccessRepeatsSideEffects(t *testing.T) {
	ctx := context.Background()
	orderID := "0b2c2a1e-9f46-4c27-8b89-6f0d9c7a5f10"
	txn := pendingTransaction(&orderID)

	transactions := new(persistencemocks.MockTransactionRepository)
	orders := new(persistencemocks.MockOrderRepository)
	receipts := new(notificationmocks.MockReceiptEmitter)

	transactions.On("GetByCheckoutRequestID", ctx, txn.CheckoutRequestID).Return(txn, nil)
	transactions.On("Update", ctx, txn).Return(nil)
	orders.On("MarkPaid", ctx, orderID).Return(nil)
	receipts.On("Emit", ctx, "NLJ7RT61SV", orderID, "254712345678").Return(nil)

	engine := NewEngine(transactions, orders, receipts, newTestTimeProvider(), newTestLogger(), newTestMetrics(), testShortCode)

	report := successReport(txn.CheckoutRequestID)

	first, err := engine.Reconcile(ctx, report, coreport.TriggerCallback)
	assert.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, first.Status)

	// A redelivered identical report runs the full path again; the order
	// update and receipt emission must tolerate the repeat downstream.
	second, err := engine.Reconcile(ctx, report, coreport.TriggerCallback)
	assert.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, second.Status)
	assert.True(t, second.OrderPaidAttempted)
	assert.True(t, second.ReceiptAttempted)

	orders.AssertNumberOfCalls(t, "MarkPaid", 2)
	receipts.AssertNumberOfCalls(t, "Emit", 2)
	transactions.AssertNumberOfCalls(t, "Update", 2)
}

func TestEngine_Reconcile_TerminalOverwriteWarns(t *testing.T) {
	ctx := context.Background()
	txn := pendingTransaction(nil)
	txn.Status = entity.StatusFailed
	code := 1037
	txn.ResultCode = &code

	transactions := new(persistencemocks.MockTransactionRepository)
	transactions.On("GetByCheckoutRequestID", ctx, txn.CheckoutRequestID).Return(txn, nil)
	transactions.On("Update", ctx, txn).Return(nil)

	logger := new(coremocks.MockLogger)
	logger.On("Debug", mock.Anything, mock.Anything).Maybe()
	logger.On("Info", mock.Anything, mock.Anything).Maybe()
	logger.On("Error", mock.Anything, mock.Anything).Maybe()
	logger.On("Warn", "Terminal status overwritten by a differently-coded report", mock.Anything).Once()

	engine := NewEngine(transactions, new(persistencemocks.MockOrderRepository), new(notificationmocks.MockReceiptEmitter), newTestTimeProvider(), logger, newTestMetrics(), testShortCode)

	report := gateway.ResultReport{
		CheckoutRequestID: txn.CheckoutRequestID,
		ResultCode:        intPtr(1032),
		ResultDesc:        "Request cancelled by user",
	}
	outcome, err := engine.Reconcile(ctx, report, coreport.TriggerPoll)

	assert.NoError(t, err)
	assert.Equal(t, entity.StatusCancelled, outcome.Status)
	logger.AssertExpectations(t)
}

func TestEngine_Reconcile_UnmatchedSuccessCreatesRecoveryRecord(t *testing.T) {
	ctx := context.Background()
	checkoutRequestID := "ws_CO_orphaned"

	transactions := new(persistencemocks.MockTransactionRepository)
	transactions.On("GetByCheckoutRequestID", ctx, checkoutRequestID).Return(nil, errs.ErrTransactionNotFound)
	transactions.On("Create", ctx, mock.MatchedBy(func(txn *entity.Transaction) bool {
		return txn.Status == entity.StatusCompleted &&
			txn.TransactionRef == "NLJ7RT61SV" &&
			txn.CheckoutRequestID == checkoutRequestID &&
			txn.BusinessShortCode == testShortCode
	})).Return(nil)

	metrics := newTestMetrics()

	engine := NewEngine(transactions, new(persistencemocks.MockOrderRepository), new(notificationmocks.MockReceiptEmitter), newTestTimeProvider(), newTestLogger(), metrics, testShortCode)

	outcome, err := engine.Reconcile(ctx, successReport(checkoutRequestID), coreport.TriggerCallback)

	assert.NoError(t, err)
	assert.True(t, outcome.Created)
	assert.False(t, outcome.Matched)
	assert.Equal(t, entity.StatusCompleted, outcome.Status)

	transactions.AssertExpectations(t)
	metrics.AssertCalled(t, "RecordRecoveryInsert")
}

func TestEngine_Reconcile_UnmatchedFailureIsDiscarded(t *testing.T) {
	ctx := context.Background()
	checkoutRequestID := "ws_CO_unknown"

	transactions := new(persistencemocks.MockTransactionRepository)
	transactions.On("GetByCheckoutRequestID", ctx, checkoutRequestID).Return(nil, errs.ErrTransactionNotFound)

	metrics := newTestMetrics()

	engine := NewEngine(transactions, new(persistencemocks.MockOrderRepository), new(notificationmocks.MockReceiptEmitter), newTestTimeProvider(), newTestLogger(), metrics, testShortCode)

	report := gateway.ResultReport{
		CheckoutRequestID: checkoutRequestID,
		ResultCode:        intPtr(1037),
		ResultDesc:        "DS timeout",
	}
	outcome, err := engine.Reconcile(ctx, report, coreport.TriggerPoll)

	assert.NoError(t, err)
	assert.True(t, outcome.Discarded)
	assert.Nil(t, outcome.Transaction)

	transactions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	metrics.AssertCalled(t, "RecordReportDiscarded")
}

func TestEngine_Reconcile_UnmatchedSuccessWithoutReceiptNumberIsDiscarded(t *testing.T) {
	ctx := context.Background()
	checkoutRequestID := "ws_CO_no_receipt"

	transactions := new(persistencemocks.MockTransactionRepository)
	transactions.On("GetByCheckoutRequestID", ctx, checkoutRequestID).Return(nil, errs.ErrTransactionNotFound)

	engine := NewEngine(transactions, new(persistencemocks.MockOrderRepository), new(notificationmocks.MockReceiptEmitter), newTestTimeProvider(), newTestLogger(), newTestMetrics(), testShortCode)

	report := gateway.ResultReport{
		CheckoutRequestID: checkoutRequestID,
		ResultCode:        intPtr(0),
		ResultDesc:        "The service request is processed successfully.",
	}
	outcome, err := engine.Reconcile(ctx, report, coreport.TriggerCallback)

	assert.NoError(t, err)
	assert.True(t, outcome.Discarded)
	transactions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestEngine_Reconcile_LookupFailureIsFatal(t *testing.T) {
	ctx := context.Background()
	checkoutRequestID := "ws_CO_db_down"

	transactions := new(persistencemocks.MockTransactionRepository)
	transactions.On("GetByCheckoutRequestID", ctx, checkoutRequestID).Return(nil, errs.ErrDatabaseConnection)

	engine := NewEngine(transactions, new(persistencemocks.MockOrderRepository), new(notificationmocks.MockReceiptEmitter), newTestTimeProvider(), newTestLogger(), newTestMetrics(), testShortCode)

	outcome, err := engine.Reconcile(ctx, successReport(checkoutRequestID), coreport.TriggerCallback)

	assert.Error(t, err)
	assert.Nil(t, outcome)

	var reconcileErr *errs.ReconcileError
	assert.True(t, errors.As(err, &reconcileErr))
	assert.Equal(t, "lookup", reconcileErr.Stage)
	assert.True(t, errors.Is(err, errs.ErrDatabaseConnection))
}

func TestEngine_Reconcile_UpdateFailureIsFatal(t *testing.T) {
	ctx := context.Background()
	txn := pendingTransaction(nil)

	transactions := new(persistencemocks.MockTransactionRepository)
	transactions.On("GetByCheckoutRequestID", ctx, txn.CheckoutRequestID).Return(txn, nil)
	transactions.On("Update", ctx, txn).Return(errs.ErrDatabaseConnection)

	engine := NewEngine(transactions, new(persistencemocks.MockOrderRepository), new(notificationmocks.MockReceiptEmitter), newTestTimeProvider(), newTestLogger(), newTestMetrics(), testShortCode)

	outcome, err := engine.Reconcile(ctx, successReport(txn.CheckoutRequestID), coreport.TriggerCallback)

	assert.Error(t, err)
	assert.Nil(t, outcome)

	var reconcileErr *errs.ReconcileError
	assert.True(t, errors.As(err, &reconcileErr))
	assert.Equal(t, "update", reconcileErr.Stage)
}

func TestEngine_Reconcile_OrderUpdateFailureDoesNotFailReconcile(t *testing.T) {
	ctx := context.Background()
	orderID := "0b2c2a1e-9f46-4c27-8b89-6f0d9c7a5f10"
	txn := pendingTransaction(&orderID)

	transactions := new(persistencemocks.MockTransactionRepository)
	orders := new(persistencemocks.MockOrderRepository)
	receipts := new(notificationmocks.MockReceiptEmitter)

	transactions.On("GetByCheckoutRequestID", ctx, txn.CheckoutRequestID).Return(txn, nil)
	transactions.On("Update", ctx, txn).Return(nil)
	orders.On("MarkPaid", ctx, orderID).Return(errs.ErrOrderNotFound)
	receipts.On("Emit", ctx, mock.Anything, orderID, mock.Anything).Return(nil)

	engine := NewEngine(transactions, orders, receipts, newTestTimeProvider(), newTestLogger(), newTestMetrics(), testShortCode)

	outcome, err := engine.Reconcile(ctx, successReport(txn.CheckoutRequestID), coreport.TriggerCallback)

	assert.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, outcome.Status)
	assert.True(t, outcome.OrderPaidAttempted)

	// The receipt is still attempted even though the order update failed
	receipts.AssertExpectations(t)
}

func TestEngine_Reconcile_ReceiptFailureDoesNotFailReconcile(t *testing.T) {
	ctx := context.Background()
	orderID := "0b2c2a1e-9f46-4c27-8b89-6f0d9c7a5f10"
	txn := pendingTransaction(&orderID)

	transactions := new(persistencemocks.MockTransactionRepository)
	orders := new(persistencemocks.MockOrderRepository)
	receipts := new(notificationmocks.MockReceiptEmitter)
	metrics := newTestMetrics()

	transactions.On("GetByCheckoutRequestID", ctx, txn.CheckoutRequestID).Return(txn, nil)
	transactions.On("Update", ctx, txn).Return(nil)
	orders.On("MarkPaid", ctx, orderID).Return(nil)
	receipts.On("Emit", ctx, mock.Anything, orderID, mock.Anything).Return(errors.New("smtp down"))

	engine := NewEngine(transactions, orders, receipts, newTestTimeProvider(), newTestLogger(), metrics, testShortCode)

	outcome, err := engine.Reconcile(ctx, successReport(txn.CheckoutRequestID), coreport.TriggerCallback)

	assert.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, outcome.Status)
	metrics.AssertCalled(t, "RecordReceiptEmitFailure")
}

func TestEngine_Reconcile_EmptyCheckoutRequestID(t *testing.T) {
	engine := NewEngine(new(persistencemocks.MockTransactionRepository), new(persistencemocks.MockOrderRepository), new(notificationmocks.MockReceiptEmitter), newTestTimeProvider(), newTestLogger(), newTestMetrics(), testShortCode)

	outcome, err := engine.Reconcile(context.Background(), gateway.ResultReport{}, coreport.TriggerCallback)

	assert.Nil(t, outcome)
	assert.ErrorIs(t, err, errs.ErrInvalidCheckoutRequestID)
}

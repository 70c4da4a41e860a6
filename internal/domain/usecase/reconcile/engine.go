package reconcile

import (
	"context"
	"errors"

	"github.com/oumasdelicacy/mpesa-bridge/internal/domain/entity"
	errs "github.com/oumasdelicacy/mpesa-bridge/internal/domain/error"
	coreport "github.com/oumasdelicacy/mpesa-bridge/internal/domain/port/core"
	"github.com/oumasdelicacy/mpesa-bridge/internal/domain/port/gateway"
	"github.com/oumasdelicacy/mpesa-bridge/internal/domain/port/notification"
	"github.com/oumasdelicacy/mpesa-bridge/internal/domain/port/persistence"
	"github.com/oumasdelicacy/mpesa-bridge/internal/domain/port/usecase"
)

// Engine applies provider result reports to locally stored transactions.
// It is the single reconciliation path shared by the callback handler and
// the status poll: one classification table, one update policy, one set of
// side effects regardless of how the report arrived.
//
// The engine is at-least-once safe by construction. It does not deduplicate
// redelivered terminal reports; it overwrites the stored result
// unconditionally, and downstream collaborators (order update, receipt
// emission) must tolerate redundant invocation.
type Engine struct {
	transactions persistence.TransactionRepository
	orders       persistence.OrderRepository
	receipts     notification.ReceiptEmitter
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	metrics      coreport.MetricsRecorder
	shortCode    string
}

// NewEngine creates a reconciliation engine
func NewEngine(
	transactions persistence.TransactionRepository,
	orders persistence.OrderRepository,
	receipts notification.ReceiptEmitter,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	metrics coreport.MetricsRecorder,
	businessShortCode string,
) *Engine {
	return &Engine{
		transactions: transactions,
		orders:       orders,
		receipts:     receipts,
		timeProvider: timeProvider,
		logger:       logger,
		metrics:      metrics,
		shortCode:    businessShortCode,
	}
}

// Reconcile looks up the transaction matching the report's checkout request
// ID, classifies the result and applies it. A persistence failure on the
// lookup or update is fatal to the call; failures of the order and receipt
// side effects are logged and swallowed, because the payment result itself
// has already been persisted by then.
func (e *Engine) Reconcile(
	ctx context.Context,
	report gateway.ResultReport,
	trigger coreport.ReconcileTrigger,
) (*usecase.ReconcileOutcome, error) {
	if report.CheckoutRequestID == "" {
		return nil, errs.ErrInvalidCheckoutRequestID
	}

	e.metrics.RecordReportReceived(trigger)

	txn, err := e.transactions.GetByCheckoutRequestID(ctx, report.CheckoutRequestID)
	if err != nil {
		if errors.Is(err, errs.ErrTransactionNotFound) {
			return e.reconcileUnmatched(ctx, report, trigger)
		}
		return nil, errs.NewReconcileError(report.CheckoutRequestID, "lookup", err)
	}

	status, message := Classify(report.ResultCode, report.ResultDesc)
	if status == entity.StatusPending {
		// The report carries no new information; leave the record as-is.
		e.logger.Debug("Result still pending, no change applied", map[string]any{
			"checkout_request_id": report.CheckoutRequestID,
			"status":              txn.Status,
		})
		e.metrics.RecordReconcileOutcome(string(txn.Status), trigger)
		return &usecase.ReconcileOutcome{
			CheckoutRequestID: report.CheckoutRequestID,
			Matched:           true,
			Status:            txn.Status,
			Transaction:       txn,
		}, nil
	}

	if txn.Status.IsTerminal() && txn.Status != status {
		e.logger.Warn("Terminal status overwritten by a differently-coded report", map[string]any{
			"checkout_request_id": report.CheckoutRequestID,
			"previous_status":     txn.Status,
			"new_status":          status,
			"result_code":         *report.ResultCode,
		})
	}

	resultDesc := message
	if resultDesc == "" {
		resultDesc = report.ResultDesc
	}

	txn.ApplyResult(status, *report.ResultCode, resultDesc, e.timeProvider)
	if status == entity.StatusCompleted && report.Metadata != nil {
		txn.ApplySuccessMetadata(
			report.Metadata.ReceiptNumber,
			report.Metadata.Amount,
			report.Metadata.PhoneNumber,
			report.Metadata.TransactionDate,
		)
	}

	if err := e.transactions.Update(ctx, txn); err != nil {
		return nil, errs.NewReconcileError(report.CheckoutRequestID, "update", err)
	}

	e.logger.Info("Transaction reconciled", map[string]any{
		"checkout_request_id": report.CheckoutRequestID,
		"status":              status,
		"result_code":         *report.ResultCode,
		"trigger":             trigger,
	})

	outcome := &usecase.ReconcileOutcome{
		CheckoutRequestID: report.CheckoutRequestID,
		Matched:           true,
		Status:            status,
		Transaction:       txn,
	}

	if status == entity.StatusCompleted && txn.HasOrder() {
		e.applyPaidSideEffects(ctx, txn, outcome)
	}

	e.metrics.RecordReconcileOutcome(string(status), trigger)
	return outcome, nil
}

// applyPaidSideEffects marks the order paid and emits the receipt. Both are
// best-effort: the money already moved, so a failure here must not unwind
// the persisted completed status or fail the reconcile call.
func (e *Engine) applyPaidSideEffects(ctx context.Context, txn *entity.Transaction, outcome *usecase.ReconcileOutcome) {
	orderID := *txn.OrderID

	outcome.OrderPaidAttempted = true
	if err := e.orders.MarkPaid(ctx, orderID); err != nil {
		e.logger.Error("Failed to mark order as paid", map[string]any{
			"order_id":            orderID,
			"checkout_request_id": txn.CheckoutRequestID,
			"error":               err.Error(),
		})
	} else {
		e.metrics.RecordOrderMarkedPaid()
		e.logger.Info("Order marked as paid", map[string]any{
			"order_id":        orderID,
			"transaction_ref": txn.TransactionRef,
		})
	}

	outcome.ReceiptAttempted = true
	if err := e.receipts.Emit(ctx, txn.TransactionRef, orderID, txn.PhoneNumber); err != nil {
		e.metrics.RecordReceiptEmitFailure()
		e.logger.Error("Failed to emit receipt", map[string]any{
			"order_id":        orderID,
			"transaction_ref": txn.TransactionRef,
			"error":           err.Error(),
		})
	}
}

// reconcileUnmatched handles a report whose checkout request ID has no
// stored transaction. A successful terminal report is persisted directly in
// the completed state so the payment is not lost (the initiation record was
// presumably never written); everything else is discarded with a
// diagnostic.
func (e *Engine) reconcileUnmatched(
	ctx context.Context,
	report gateway.ResultReport,
	trigger coreport.ReconcileTrigger,
) (*usecase.ReconcileOutcome, error) {
	status, _ := Classify(report.ResultCode, report.ResultDesc)

	if status != entity.StatusCompleted || report.Metadata == nil || report.Metadata.ReceiptNumber == "" {
		e.logger.Warn("Discarding result report with no matching transaction", map[string]any{
			"checkout_request_id": report.CheckoutRequestID,
			"classified_status":   status,
			"trigger":             trigger,
		})
		e.metrics.RecordReportDiscarded()
		return &usecase.ReconcileOutcome{
			CheckoutRequestID: report.CheckoutRequestID,
			Discarded:         true,
			Status:            status,
		}, nil
	}

	// Recovery path: a payment completed at the provider but we hold no
	// initiation record for it. Logged distinctly and counted, because a
	// pattern of these points at lost writes upstream, not normal traffic.
	now := e.timeProvider.Now()
	txn := &entity.Transaction{
		TransactionRef:    report.Metadata.ReceiptNumber,
		MerchantRequestID: report.MerchantRequestID,
		CheckoutRequestID: report.CheckoutRequestID,
		TransactionType:   entity.TypePayment,
		Status:            entity.StatusCompleted,
		ResultDesc:        report.ResultDesc,
		Amount:            report.Metadata.Amount,
		PhoneNumber:       report.Metadata.PhoneNumber,
		BusinessShortCode: e.shortCode,
		TransactionDate:   report.Metadata.TransactionDate,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	code := *report.ResultCode
	txn.ResultCode = &code
	if txn.TransactionDate.IsZero() {
		txn.TransactionDate = now
	}

	if err := e.transactions.Create(ctx, txn); err != nil {
		return nil, errs.NewReconcileError(report.CheckoutRequestID, "recovery-insert", err)
	}

	e.metrics.RecordRecoveryInsert()
	e.logger.Warn("Recovered successful payment with no initiation record", map[string]any{
		"checkout_request_id": report.CheckoutRequestID,
		"receipt_number":      report.Metadata.ReceiptNumber,
		"amount":              report.Metadata.Amount,
		"trigger":             trigger,
	})

	e.metrics.RecordReconcileOutcome(string(entity.StatusCompleted), trigger)
	return &usecase.ReconcileOutcome{
		CheckoutRequestID: report.CheckoutRequestID,
		Created:           true,
		Status:            entity.StatusCompleted,
		Transaction:       txn,
	}, nil
}

// compile-time interface check
var _ usecase.Reconciler = (*Engine)(nil)

package usecase

import (
	"context"

	"github.com/oumasdelicacy/mpesa-bridge/internal/domain/entity"
	"github.com/oumasdelicacy/mpesa-bridge/internal/domain/port/core"
	"github.com/oumasdelicacy/mpesa-bridge/internal/domain/port/gateway"
)

// ReconcileOutcome describes what a reconciliation attempt did with a
// provider result report
type ReconcileOutcome struct {
	CheckoutRequestID string
	// Matched is true when a stored transaction existed for the report's key
	Matched bool
	// Created is true when the report caused a recovery insert: a successful
	// terminal report arrived for a key with no initiation record
	Created bool
	// Discarded is true when an unmatched non-successful report was dropped
	Discarded bool
	// Status is the transaction's status after reconciliation
	Status entity.TransactionStatus
	// OrderPaidAttempted is true when the order collaborator was invoked
	OrderPaidAttempted bool
	// ReceiptAttempted is true when the receipt emitter was invoked
	ReceiptAttempted bool
	// Transaction is the matched or created record, nil when discarded
	Transaction *entity.Transaction
}

// Reconciler applies a provider result report to the locally stored
// transaction, exactly as described by the reconciliation contract: both
// the asynchronous callback and the synchronous status poll funnel through
// this single entry point.
type Reconciler interface {
	Reconcile(ctx context.Context, report gateway.ResultReport, trigger core.ReconcileTrigger) (*ReconcileOutcome, error)
}

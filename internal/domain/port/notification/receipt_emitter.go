package notification

import "context"

// ReceiptEmitter composes and dispatches a confirmation receipt for a paid
// order. Implementations must tolerate being invoked more than once for the
// same transaction: the reconciliation engine is at-least-once, not
// exactly-once.
type ReceiptEmitter interface {
	// Emit issues a receipt for the given paying transaction and order.
	// transactionRef is the M-Pesa receipt number (or internal reference
	// when the provider supplied none), payerIdentity the payer's phone.
	Emit(ctx context.Context, transactionRef, orderID, payerIdentity string) error
}

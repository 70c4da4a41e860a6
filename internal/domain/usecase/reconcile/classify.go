package reconcile

import (
	"github.com/oumasdelicacy/mpesa-bridge/internal/domain/entity"
)

// Provider result codes with a defined meaning. Anything else is a failure
// described by the provider's own message.
const (
	CodeSuccess           = 0
	CodeInsufficientFunds = 1
	CodeCancelledByUser   = 1032
	CodeTimeout           = 1037
)

// Messages recorded for classified failures. Downstream billing
// reconciliation matches on these strings, so they must not change.
const (
	MsgCancelledByUser   = "Transaction cancelled by user"
	MsgTimeout           = "Transaction timeout - user did not enter PIN"
	MsgInsufficientFunds = "Insufficient funds"
	MsgGenericFailure    = "Transaction failed"
)

// Classify maps a raw provider result code to an internal transaction
// status and result message. A nil code means the provider has not
// processed the payment yet and nothing should change locally.
func Classify(resultCode *int, resultDesc string) (entity.TransactionStatus, string) {
	if resultCode == nil {
		return entity.StatusPending, ""
	}

	switch *resultCode {
	case CodeSuccess:
		return entity.StatusCompleted, ""
	case CodeCancelledByUser:
		return entity.StatusCancelled, MsgCancelledByUser
	case CodeTimeout:
		return entity.StatusFailed, MsgTimeout
	case CodeInsufficientFunds:
		return entity.StatusFailed, MsgInsufficientFunds
	default:
		if resultDesc != "" {
			return entity.StatusFailed, resultDesc
		}
		return entity.StatusFailed, MsgGenericFailure
	}
}

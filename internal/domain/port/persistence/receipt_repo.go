package persistence

import (
	"context"

	"github.com/oumasdelicacy/mpesa-bridge/internal/domain/entity"
)

// ReceiptRepository persists issued receipts and their line items
type ReceiptRepository interface {
	// Create saves a receipt together with its items
	Create(ctx context.Context, receipt *entity.Receipt) error

	// NextReceiptNumber allocates the next RCP-prefixed receipt number
	NextReceiptNumber(ctx context.Context) (string, error)
}

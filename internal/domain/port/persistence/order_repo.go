package persistence

import (
	"context"

	"github.com/oumasdelicacy/mpesa-bridge/internal/domain/entity"
)

// OrderRepository gives the bridge its narrow view of the ordering app's
// data: mark an order paid after a completed payment, and read enough to
// compose a receipt.
type OrderRepository interface {
	// MarkPaid sets the order's status to paid and its payment method to mpesa
	//
	// Possible errors:
	// - ErrOrderNotFound: If the order doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	MarkPaid(ctx context.Context, orderID string) error

	// GetByID retrieves an order with its items
	GetByID(ctx context.Context, orderID string) (*entity.Order, error)

	// GetCustomer retrieves the contact details of the order's customer
	GetCustomer(ctx context.Context, userAuthID string) (*entity.Customer, error)
}

package persistence

import (
	"context"

	"github.com/oumasdelicacy/mpesa-bridge/internal/domain/entity"
)

// TransactionRepository defines essential methods to interact with M-Pesa
// transaction records
type TransactionRepository interface {
	// Create saves a new transaction
	//
	// Possible errors:
	// - ErrDuplicateTransaction: If a transaction with the same checkout request ID already exists
	// - ErrDatabaseConnection: If database connection fails
	Create(ctx context.Context, transaction *entity.Transaction) error

	// Update overwrites the mutable fields of an existing transaction,
	// matched by its checkout request ID. The overwrite is unconditional:
	// applying the same terminal result twice must succeed.
	//
	// Possible errors:
	// - ErrTransactionNotFound: If no transaction matches the checkout request ID
	// - ErrDatabaseConnection: If database connection fails
	Update(ctx context.Context, transaction *entity.Transaction) error

	// GetByCheckoutRequestID retrieves a transaction by the provider's
	// correlation key
	//
	// Possible errors:
	// - ErrTransactionNotFound: If no transaction matches the checkout request ID
	// - ErrDatabaseConnection: If database connection fails
	GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*entity.Transaction, error)
}

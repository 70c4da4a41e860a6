package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/oumasdelicacy/mpesa-bridge/internal/domain/entity"
	errs "github.com/oumasdelicacy/mpesa-bridge/internal/domain/error"
	coreport "github.com/oumasdelicacy/mpesa-bridge/internal/domain/port/core"
	"github.com/oumasdelicacy/mpesa-bridge/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// TransactionRepository implements persistence.TransactionRepository using GORM
type TransactionRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewTransactionRepository creates a new TransactionRepository instance
func NewTransactionRepository(db *gorm.DB, logger coreport.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// entityToModel converts a transaction entity to a database model
func (r *TransactionRepository) entityToModel(transaction *entity.Transaction) model.Transaction {
	return model.Transaction{
		ID:                transaction.ID,
		TransactionRef:    transaction.TransactionRef,
		MerchantRequestID: transaction.MerchantRequestID,
		CheckoutRequestID: transaction.CheckoutRequestID,
		TransactionType:   string(transaction.TransactionType),
		Status:            string(transaction.Status),
		ResultCode:        transaction.ResultCode,
		ResultDesc:        transaction.ResultDesc,
		Amount:            transaction.Amount,
		PhoneNumber:       transaction.PhoneNumber,
		AccountReference:  transaction.AccountReference,
		TransactionDesc:   transaction.TransactionDesc,
		BusinessShortCode: transaction.BusinessShortCode,
		OrderID:           transaction.OrderID,
		UserAuthID:        transaction.UserAuthID,
		TransactionDate:   transaction.TransactionDate,
		CreatedAt:         transaction.CreatedAt,
		UpdatedAt:         transaction.UpdatedAt,
	}
}

// modelToEntity converts a transaction model to an entity
func (r *TransactionRepository) modelToEntity(model *model.Transaction) *entity.Transaction {
	return &entity.Transaction{
		ID:                model.ID,
		TransactionRef:    model.TransactionRef,
		MerchantRequestID: model.MerchantRequestID,
		CheckoutRequestID: model.CheckoutRequestID,
		TransactionType:   entity.TransactionType(model.TransactionType),
		Status:            entity.TransactionStatus(model.Status),
		ResultCode:        model.ResultCode,
		ResultDesc:        model.ResultDesc,
		Amount:            model.Amount,
		PhoneNumber:       model.PhoneNumber,
		AccountReference:  model.AccountReference,
		TransactionDesc:   model.TransactionDesc,
		BusinessShortCode: model.BusinessShortCode,
		OrderID:           model.OrderID,
		UserAuthID:        model.UserAuthID,
		TransactionDate:   model.TransactionDate,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}
}

// Create saves a new transaction record
func (r *TransactionRepository) Create(ctx context.Context, transaction *entity.Transaction) error {
	r.logger.Debug("Creating transaction", map[string]any{
		"checkout_request_id": transaction.CheckoutRequestID,
		"transaction_ref":     transaction.TransactionRef,
	})

	transactionModel := r.entityToModel(transaction)

	result := r.db.WithContext(ctx).Create(&transactionModel)

	if result.Error != nil {
		// The checkout request ID carries a unique index, so a duplicate
		// key here means the same payment attempt was stored twice
		if r.errorClassifier.IsDuplicateKeyError(result.Error) {
			return r.handleDuplicateTransactionError(transaction)
		}

		r.logger.Error("Failed to create transaction", map[string]any{
			"checkout_request_id": transaction.CheckoutRequestID,
			"error":               result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	transaction.ID = transactionModel.ID

	r.logger.Info("Transaction created successfully", map[string]any{
		"checkout_request_id": transaction.CheckoutRequestID,
		"transaction_ref":     transaction.TransactionRef,
	})
	return nil
}

// handleDuplicateTransactionError handles duplicate transaction errors specifically
func (r *TransactionRepository) handleDuplicateTransactionError(transaction *entity.Transaction) error {
	r.logger.Warn("Duplicate transaction detected", map[string]any{
		"checkout_request_id": transaction.CheckoutRequestID,
		"transaction_ref":     transaction.TransactionRef,
	})
	return errs.ErrDuplicateTransaction
}

// Update overwrites the mutable reconciliation fields of a transaction,
// keyed by its checkout request ID
func (r *TransactionRepository) Update(ctx context.Context, transaction *entity.Transaction) error {
	r.logger.Debug("Updating transaction", map[string]any{
		"checkout_request_id": transaction.CheckoutRequestID,
		"status":              transaction.Status,
	})

	transactionModel := r.entityToModel(transaction)

	result := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("checkout_request_id = ?", transaction.CheckoutRequestID).
		Updates(map[string]interface{}{
			"status":           transactionModel.Status,
			"result_code":      transactionModel.ResultCode,
			"result_desc":      transactionModel.ResultDesc,
			"transaction_ref":  transactionModel.TransactionRef,
			"amount":           transactionModel.Amount,
			"phone_number":     transactionModel.PhoneNumber,
			"transaction_date": transactionModel.TransactionDate,
			"updated_at":       transactionModel.UpdatedAt,
		})

	if result.Error != nil {
		r.logger.Error("Failed to update transaction", map[string]any{
			"checkout_request_id": transaction.CheckoutRequestID,
			"error":               result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	if result.RowsAffected == 0 {
		r.logger.Warn("Transaction not found during update", map[string]any{
			"checkout_request_id": transaction.CheckoutRequestID,
		})
		return errs.ErrTransactionNotFound
	}

	r.logger.Debug("Transaction updated successfully", map[string]any{
		"checkout_request_id": transaction.CheckoutRequestID,
		"status":              transaction.Status,
	})
	return nil
}

// GetByCheckoutRequestID retrieves a transaction by its provider correlation key
func (r *TransactionRepository) GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*entity.Transaction, error) {
	r.logger.Debug("Getting transaction by checkout request ID", map[string]any{
		"checkout_request_id": checkoutRequestID,
	})

	var transactionModel model.Transaction
	result := r.db.WithContext(ctx).
		Where("checkout_request_id = ?", checkoutRequestID).
		First(&transactionModel)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			r.logger.Warn("Transaction not found", map[string]any{
				"checkout_request_id": checkoutRequestID,
			})
			return nil, errs.ErrTransactionNotFound
		}
		r.logger.Error("Failed to get transaction", map[string]any{
			"checkout_request_id": checkoutRequestID,
			"error":               result.Error.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	transaction := r.modelToEntity(&transactionModel)

	r.logger.Debug("Transaction retrieved successfully", map[string]any{
		"checkout_request_id": checkoutRequestID,
		"status":              transaction.Status,
	})

	return transaction, nil
}

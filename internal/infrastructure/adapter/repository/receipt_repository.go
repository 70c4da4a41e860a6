package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/oumasdelicacy/mpesa-bridge/internal/domain/entity"
	errs "github.com/oumasdelicacy/mpesa-bridge/internal/domain/error"
	coreport "github.com/oumasdelicacy/mpesa-bridge/internal/domain/port/core"
	"github.com/oumasdelicacy/mpesa-bridge/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// receiptNumberPrefix prefixes every allocated receipt number
const receiptNumberPrefix = "RCP"

// ReceiptRepository implements persistence.ReceiptRepository using GORM
type ReceiptRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewReceiptRepository creates a new ReceiptRepository instance
func NewReceiptRepository(db *gorm.DB, logger coreport.Logger) *ReceiptRepository {
	return &ReceiptRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// entityToModel converts a receipt entity to a database model
func (r *ReceiptRepository) entityToModel(receipt *entity.Receipt) model.Receipt {
	items := make([]model.ReceiptItem, 0, len(receipt.Items))
	for _, item := range receipt.Items {
		items = append(items, model.ReceiptItem{
			ReceiptID:   receipt.ID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		})
	}

	return model.Receipt{
		ID:             receipt.ID,
		ReceiptNumber:  receipt.ReceiptNumber,
		TransactionRef: receipt.TransactionRef,
		ReceiptType:    receipt.ReceiptType,
		IssueDate:      receipt.IssueDate,
		CustomerName:   receipt.CustomerName,
		CustomerPhone:  receipt.CustomerPhone,
		CustomerEmail:  receipt.CustomerEmail,
		Subtotal:       receipt.Subtotal,
		TaxAmount:      receipt.TaxAmount,
		DiscountAmount: receipt.DiscountAmount,
		TotalAmount:    receipt.TotalAmount,
		BusinessName:   receipt.BusinessName,
		BusinessPhone:  receipt.BusinessPhone,
		BusinessEmail:  receipt.BusinessEmail,
		PaymentMethod:  receipt.PaymentMethod,
		Currency:       receipt.Currency,
		Items:          items,
	}
}

// Create saves a receipt together with its line items in a single transaction
func (r *ReceiptRepository) Create(ctx context.Context, receipt *entity.Receipt) error {
	if receipt.ID == "" {
		receipt.ID = uuid.NewString()
	}

	r.logger.Debug("Creating receipt", map[string]any{
		"receipt_number":  receipt.ReceiptNumber,
		"transaction_ref": receipt.TransactionRef,
	})

	receiptModel := r.entityToModel(receipt)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&receiptModel).Error
	})

	if err != nil {
		if r.errorClassifier.IsDuplicateKeyError(err) {
			r.logger.Warn("Duplicate receipt number detected", map[string]any{
				"receipt_number": receipt.ReceiptNumber,
			})
			return fmt.Errorf("%w: receipt number %s", errs.ErrDuplicateTransaction, receipt.ReceiptNumber)
		}
		r.logger.Error("Failed to create receipt", map[string]any{
			"receipt_number": receipt.ReceiptNumber,
			"error":          err.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
	}

	r.logger.Info("Receipt created successfully", map[string]any{
		"receipt_number":  receipt.ReceiptNumber,
		"transaction_ref": receipt.TransactionRef,
	})
	return nil
}

// NextReceiptNumber allocates the next RCP-prefixed receipt number based on
// the current row count. Collisions under concurrency surface as duplicate
// key errors on Create and the emitter retries with a fresh number.
func (r *ReceiptRepository) NextReceiptNumber(ctx context.Context) (string, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&model.Receipt{}).Count(&count)

	if result.Error != nil {
		r.logger.Error("Failed to count receipts", map[string]any{
			"error": result.Error.Error(),
		})
		return "", fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	return fmt.Sprintf("%s-%06d", receiptNumberPrefix, count+1), nil
}

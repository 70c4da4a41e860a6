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

// OrderRepository implements persistence.OrderRepository using GORM. Orders
// are owned by the storefront application; this repository only flips their
// payment state and reads them back for receipts.
type OrderRepository struct {
	db           *gorm.DB
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewOrderRepository creates a new OrderRepository instance
func NewOrderRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *OrderRepository {
	return &OrderRepository{
		db:           db,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// MarkPaid sets an order's status to paid and records M-Pesa as the
// payment method
func (r *OrderRepository) MarkPaid(ctx context.Context, orderID string) error {
	r.logger.Debug("Marking order as paid", map[string]any{
		"order_id": orderID,
	})

	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"status":         string(entity.OrderStatusPaid),
			"payment_method": "mpesa",
			"updated_at":     r.timeProvider.Now(),
		})

	if result.Error != nil {
		r.logger.Error("Failed to mark order as paid", map[string]any{
			"order_id": orderID,
			"error":    result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	if result.RowsAffected == 0 {
		r.logger.Warn("Order not found during paid update", map[string]any{
			"order_id": orderID,
		})
		return errs.ErrOrderNotFound
	}

	r.logger.Info("Order marked as paid", map[string]any{
		"order_id": orderID,
	})
	return nil
}

// GetByID retrieves an order with its line items
func (r *OrderRepository) GetByID(ctx context.Context, orderID string) (*entity.Order, error) {
	r.logger.Debug("Getting order by ID", map[string]any{
		"order_id": orderID,
	})

	var orderModel model.Order
	result := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", orderID).
		First(&orderModel)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			r.logger.Warn("Order not found", map[string]any{
				"order_id": orderID,
			})
			return nil, errs.ErrOrderNotFound
		}
		r.logger.Error("Failed to get order", map[string]any{
			"order_id": orderID,
			"error":    result.Error.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	return r.modelToEntity(&orderModel), nil
}

// GetCustomer retrieves the contact details for the user who owns an order
func (r *OrderRepository) GetCustomer(ctx context.Context, userAuthID string) (*entity.Customer, error) {
	r.logger.Debug("Getting customer", map[string]any{
		"user_auth_id": userAuthID,
	})

	var userModel model.User
	result := r.db.WithContext(ctx).
		Where("auth_id = ?", userAuthID).
		First(&userModel)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			r.logger.Warn("Customer not found", map[string]any{
				"user_auth_id": userAuthID,
			})
			return nil, errs.ErrCustomerNotFound
		}
		r.logger.Error("Failed to get customer", map[string]any{
			"user_auth_id": userAuthID,
			"error":        result.Error.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	return &entity.Customer{
		AuthID: userModel.AuthID,
		Name:   userModel.Name,
		Email:  userModel.Email,
		Phone:  userModel.Phone,
	}, nil
}

// modelToEntity converts an order model to an entity
func (r *OrderRepository) modelToEntity(orderModel *model.Order) *entity.Order {
	items := make([]entity.OrderItem, 0, len(orderModel.Items))
	for _, item := range orderModel.Items {
		items = append(items, entity.OrderItem{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	return &entity.Order{
		ID:              orderModel.ID,
		ShortID:         orderModel.ShortID,
		UserAuthID:      orderModel.UserAuthID,
		Status:          entity.OrderStatus(orderModel.Status),
		TotalAmount:     orderModel.TotalAmount,
		DeliveryFee:     orderModel.DeliveryFee,
		DeliveryAddress: orderModel.DeliveryAddress,
		PaymentMethod:   orderModel.PaymentMethod,
		CreatedAt:       orderModel.CreatedAt,
		Items:           items,
	}
}

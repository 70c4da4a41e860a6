package receipt

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/oumasdelicacy/mpesa-bridge/internal/domain/entity"
	errs "github.com/oumasdelicacy/mpesa-bridge/internal/domain/error"
	coreport "github.com/oumasdelicacy/mpesa-bridge/internal/domain/port/core"
	"github.com/oumasdelicacy/mpesa-bridge/internal/domain/port/notification"
	"github.com/oumasdelicacy/mpesa-bridge/internal/domain/port/persistence"
	"github.com/oumasdelicacy/mpesa-bridge/internal/infrastructure/adapter/email"
)

// BusinessInfo identifies the merchant on issued receipts
type BusinessInfo struct {
	Name  string
	Phone string
	Email string
	From  string // Sender address used for receipt emails
}

// Emitter builds a receipt for a paid order, persists it and emails it to
// the customer. It implements notification.ReceiptEmitter.
type Emitter struct {
	orders       persistence.OrderRepository
	receipts     persistence.ReceiptRepository
	sender       email.Sender
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	business     BusinessInfo
}

// NewEmitter creates a receipt emitter
func NewEmitter(
	orders persistence.OrderRepository,
	receipts persistence.ReceiptRepository,
	sender email.Sender,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	business BusinessInfo,
) *Emitter {
	return &Emitter{
		orders:       orders,
		receipts:     receipts,
		sender:       sender,
		timeProvider: timeProvider,
		logger:       logger,
		business:     business,
	}
}

// Emit issues a receipt for the given paying transaction and order
func (e *Emitter) Emit(ctx context.Context, transactionRef, orderID, payerIdentity string) error {
	order, err := e.orders.GetByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to load order %s: %w", orderID, err)
	}

	customer := e.resolveCustomer(ctx, order, payerIdentity)

	rcpt, err := e.buildReceipt(ctx, transactionRef, order, customer)
	if err != nil {
		return err
	}

	if err := e.receipts.Create(ctx, rcpt); err != nil {
		// A concurrent emit may have taken the allocated number; one retry
		// with a fresh number covers it
		if errors.Is(err, errs.ErrDuplicateTransaction) {
			rcpt.ID = ""
			if rcpt.ReceiptNumber, err = e.receipts.NextReceiptNumber(ctx); err != nil {
				return fmt.Errorf("failed to reallocate receipt number: %w", err)
			}
			if err = e.receipts.Create(ctx, rcpt); err != nil {
				return fmt.Errorf("failed to persist receipt: %w", err)
			}
		} else {
			return fmt.Errorf("failed to persist receipt: %w", err)
		}
	}

	if customer.Email == "" {
		e.logger.Warn("No customer email on file, receipt not sent", map[string]any{
			"order_id":       orderID,
			"receipt_number": rcpt.ReceiptNumber,
		})
		return nil
	}

	if err := e.sendEmail(ctx, rcpt, order); err != nil {
		if errors.Is(err, errs.ErrEmailNotConfigured) {
			e.logger.Warn("Email provider not configured, receipt stored only", map[string]any{
				"receipt_number": rcpt.ReceiptNumber,
			})
			return nil
		}
		return err
	}

	e.logger.Info("Receipt issued", map[string]any{
		"receipt_number":  rcpt.ReceiptNumber,
		"transaction_ref": transactionRef,
		"order_id":        orderID,
	})
	return nil
}

// resolveCustomer prefers the user record's contact details and falls back
// to the payer's phone number from the payment itself
func (e *Emitter) resolveCustomer(ctx context.Context, order *entity.Order, payerIdentity string) *entity.Customer {
	customer, err := e.orders.GetCustomer(ctx, order.UserAuthID)
	if err != nil {
		e.logger.Warn("Customer lookup failed, using payer identity", map[string]any{
			"order_id":     order.ID,
			"user_auth_id": order.UserAuthID,
			"error":        err.Error(),
		})
		return &entity.Customer{Phone: payerIdentity}
	}
	if customer.Phone == "" {
		customer.Phone = payerIdentity
	}
	return customer
}

// buildReceipt assembles the receipt entity from the order and customer
func (e *Emitter) buildReceipt(ctx context.Context, transactionRef string, order *entity.Order, customer *entity.Customer) (*entity.Receipt, error) {
	number, err := e.receipts.NextReceiptNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate receipt number: %w", err)
	}

	items := make([]entity.ReceiptItem, 0, len(order.Items)+1)
	for _, item := range order.Items {
		items = append(items, entity.ReceiptItem{
			Description: item.Name,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.LineTotal(),
		})
	}
	if order.DeliveryFee > 0 {
		items = append(items, entity.ReceiptItem{
			Description: "Delivery fee",
			Quantity:    1,
			UnitPrice:   order.DeliveryFee,
			TotalPrice:  order.DeliveryFee,
		})
	}

	return &entity.Receipt{
		ReceiptNumber:  number,
		TransactionRef: transactionRef,
		ReceiptType:    "payment",
		IssueDate:      e.timeProvider.Now(),
		CustomerName:   customer.Name,
		CustomerPhone:  customer.Phone,
		CustomerEmail:  customer.Email,
		Subtotal:       order.Subtotal(),
		TotalAmount:    order.TotalAmount,
		BusinessName:   e.business.Name,
		BusinessPhone:  e.business.Phone,
		BusinessEmail:  e.business.Email,
		PaymentMethod:  "M-Pesa",
		Currency:       "KES",
		Items:          items,
	}, nil
}

// sendEmail renders the receipt and hands it to the email sender
func (e *Emitter) sendEmail(ctx context.Context, rcpt *entity.Receipt, order *entity.Order) error {
	items := make([]templateItem, 0, len(rcpt.Items))
	for _, item := range rcpt.Items {
		items = append(items, templateItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		})
	}

	var body bytes.Buffer
	err := receiptTemplate.Execute(&body, templateData{
		BusinessName:   rcpt.BusinessName,
		BusinessPhone:  rcpt.BusinessPhone,
		BusinessEmail:  rcpt.BusinessEmail,
		ReceiptNumber:  rcpt.ReceiptNumber,
		TransactionRef: rcpt.TransactionRef,
		IssueDate:      rcpt.IssueDate,
		CustomerName:   rcpt.CustomerName,
		CustomerPhone:  rcpt.CustomerPhone,
		Items:          items,
		Currency:       rcpt.Currency,
		Subtotal:       rcpt.Subtotal,
		DeliveryFee:    order.DeliveryFee,
		TotalAmount:    rcpt.TotalAmount,
		PaymentMethod:  rcpt.PaymentMethod,
	})
	if err != nil {
		return fmt.Errorf("failed to render receipt template: %w", err)
	}

	subject := fmt.Sprintf("Payment receipt %s", rcpt.ReceiptNumber)
	if order.ShortID != "" {
		subject = fmt.Sprintf("Payment receipt for order %s", order.ShortID)
	}

	return e.sender.Send(ctx, email.Message{
		From:    e.business.From,
		To:      []string{rcpt.CustomerEmail},
		Subject: subject,
		HTML:    body.String(),
	})
}

var _ notification.ReceiptEmitter = (*Emitter)(nil)

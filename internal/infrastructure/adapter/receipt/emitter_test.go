package receipt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/oumasdelicacy/mpesa-bridge/internal/domain/entity"
	errs "github.com/oumasdelicacy/mpesa-bridge/internal/domain/error"
	"github.com/oumasdelicacy/mpesa-bridge/internal/infrastructure/adapter/email"
	coremocks "github.com/oumasdelicacy/mpesa-bridge/mocks/port/core"
	persistencemocks "github.com/oumasdelicacy/mpesa-bridge/mocks/port/persistence"
)

var fixedTime = time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC)

// capturingSender records the last message handed to it
type capturingSender struct {
	sent []email.Message
	err  error
}

func (s *capturingSender) Send(_ context.Context, msg email.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func newTestLogger() *coremocks.MockLogger {
	logger := new(coremocks.MockLogger)
	logger.On("Debug", mock.Anything, mock.Anything).Maybe()
	logger.On("Info", mock.Anything, mock.Anything).Maybe()
	logger.On("Warn", mock.Anything, mock.Anything).Maybe()
	logger.On("Error", mock.Anything, mock.Anything).Maybe()
	return logger
}

func newTestTimeProvider() *coremocks.MockTimeProvider {
	tp := new(coremocks.MockTimeProvider)
	tp.On("Now").Return(fixedTime).Maybe()
	return tp
}

func testBusiness() BusinessInfo {
	return BusinessInfo{
		Name:  "Ouma's Delicacy",
		Phone: "254700000000",
		Email: "hello@oumasdelicacy.co.ke",
		From:  "receipts@oumasdelicacy.co.ke",
	}
}

func testOrder() *entity.Order {
	return &entity.Order{
		ID:          "0b2c2a1e-9f46-4c27-8b89-6f0d9c7a5f10",
		ShortID:     "ORD-881",
		UserAuthID:  "auth-123",
		Status:      entity.OrderStatusPending,
		TotalAmount: 650,
		DeliveryFee: 150,
		Items: []entity.OrderItem{
			{Name: "Chapati", Quantity: 4, UnitPrice: 50},
			{Name: "Beef stew", Quantity: 2, UnitPrice: 150},
		},
	}
}

func testCustomer() *entity.Customer {
	return &entity.Customer{
		AuthID: "auth-123",
		Name:   "Jane Wanjiku",
		Email:  "jane@example.com",
		Phone:  "254712345678",
	}
}

func TestEmitter_Emit_PersistsAndEmailsReceipt(t *testing.T) {
	ctx := context.Background()
	order := testOrder()

	orders := new(persistencemocks.MockOrderRepository)
	receipts := new(persistencemocks.MockReceiptRepository)
	sender := &capturingSender{}

	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	orders.On("GetCustomer", ctx, "auth-123").Return(testCustomer(), nil)
	receipts.On("NextReceiptNumber", ctx).Return("RCP-000042", nil)
	receipts.On("Create", ctx, mock.MatchedBy(func(rcpt *entity.Receipt) bool {
		return rcpt.ReceiptNumber == "RCP-000042" &&
			rcpt.TransactionRef == "NLJ7RT61SV" &&
			rcpt.Subtotal == 500 &&
			rcpt.TotalAmount == 650 &&
			len(rcpt.Items) == 3 // two order lines plus the delivery fee
	})).Return(nil)

	emitter := NewEmitter(orders, receipts, sender, newTestTimeProvider(), newTestLogger(), testBusiness())

	err := emitter.Emit(ctx, "NLJ7RT61SV", order.ID, "254712345678")

	assert.NoError(t, err)
	assert.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"jane@example.com"}, sender.sent[0].To)
	assert.Equal(t, "Payment receipt for order ORD-881", sender.sent[0].Subject)
	assert.Contains(t, sender.sent[0].HTML, "RCP-000042")
	assert.Contains(t, sender.sent[0].HTML, "Chapati")

	receipts.AssertExpectations(t)
}

func TestEmitter_Emit_NoCustomerEmailSkipsSend(t *testing.T) {
	ctx := context.Background()
	order := testOrder()

	orders := new(persistencemocks.MockOrderRepository)
	receipts := new(persistencemocks.MockReceiptRepository)
	sender := &capturingSender{}

	customer := testCustomer()
	customer.Email = ""

	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	orders.On("GetCustomer", ctx, "auth-123").Return(customer, nil)
	receipts.On("NextReceiptNumber", ctx).Return("RCP-000043", nil)
	receipts.On("Create", ctx, mock.Anything).Return(nil)

	emitter := NewEmitter(orders, receipts, sender, newTestTimeProvider(), newTestLogger(), testBusiness())

	err := emitter.Emit(ctx, "NLJ7RT61SV", order.ID, "254712345678")

	// The receipt is still stored even when there is nobody to email it to
	assert.NoError(t, err)
	assert.Empty(t, sender.sent)
	receipts.AssertExpectations(t)
}

func TestEmitter_Emit_CustomerLookupFailureFallsBackToPayer(t *testing.T) {
	ctx := context.Background()
	order := testOrder()

	orders := new(persistencemocks.MockOrderRepository)
	receipts := new(persistencemocks.MockReceiptRepository)
	sender := &capturingSender{}

	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	orders.On("GetCustomer", ctx, "auth-123").Return(nil, errs.ErrCustomerNotFound)
	receipts.On("NextReceiptNumber", ctx).Return("RCP-000044", nil)
	receipts.On("Create", ctx, mock.MatchedBy(func(rcpt *entity.Receipt) bool {
		return rcpt.CustomerPhone == "254712345678" && rcpt.CustomerEmail == ""
	})).Return(nil)

	emitter := NewEmitter(orders, receipts, sender, newTestTimeProvider(), newTestLogger(), testBusiness())

	err := emitter.Emit(ctx, "NLJ7RT61SV", order.ID, "254712345678")

	assert.NoError(t, err)
	assert.Empty(t, sender.sent)
	receipts.AssertExpectations(t)
}

func TestEmitter_Emit_RetriesOnDuplicateReceiptNumber(t *testing.T) {
	ctx := context.Background()
	order := testOrder()

	orders := new(persistencemocks.MockOrderRepository)
	receipts := new(persistencemocks.MockReceiptRepository)
	sender := &capturingSender{}

	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	orders.On("GetCustomer", ctx, "auth-123").Return(testCustomer(), nil)
	receipts.On("NextReceiptNumber", ctx).Return("RCP-000045", nil).Once()
	receipts.On("Create", ctx, mock.Anything).Return(errs.ErrDuplicateTransaction).Once()
	receipts.On("NextReceiptNumber", ctx).Return("RCP-000046", nil).Once()
	receipts.On("Create", ctx, mock.MatchedBy(func(rcpt *entity.Receipt) bool {
		return rcpt.ReceiptNumber == "RCP-000046"
	})).Return(nil).Once()

	emitter := NewEmitter(orders, receipts, sender, newTestTimeProvider(), newTestLogger(), testBusiness())

	err := emitter.Emit(ctx, "NLJ7RT61SV", order.ID, "254712345678")

	assert.NoError(t, err)
	assert.Len(t, sender.sent, 1)
	receipts.AssertExpectations(t)
}

func TestEmitter_Emit_EmailNotConfiguredIsTolerated(t *testing.T) {
	ctx := context.Background()
	order := testOrder()

	orders := new(persistencemocks.MockOrderRepository)
	receipts := new(persistencemocks.MockReceiptRepository)
	sender := &capturingSender{err: errs.ErrEmailNotConfigured}

	orders.On("GetByID", ctx, order.ID).Return(order, nil)
	orders.On("GetCustomer", ctx, "auth-123").Return(testCustomer(), nil)
	receipts.On("NextReceiptNumber", ctx).Return("RCP-000047", nil)
	receipts.On("Create", ctx, mock.Anything).Return(nil)

	emitter := NewEmitter(orders, receipts, sender, newTestTimeProvider(), newTestLogger(), testBusiness())

	err := emitter.Emit(ctx, "NLJ7RT61SV", order.ID, "254712345678")

	assert.NoError(t, err)
}

func TestEmitter_Emit_OrderLookupFailureSurfaces(t *testing.T) {
	ctx := context.Background()

	orders := new(persistencemocks.MockOrderRepository)
	orders.On("GetByID", ctx, "missing").Return(nil, errs.ErrOrderNotFound)

	emitter := NewEmitter(orders, new(persistencemocks.MockReceiptRepository), &capturingSender{}, newTestTimeProvider(), newTestLogger(), testBusiness())

	err := emitter.Emit(ctx, "NLJ7RT61SV", "missing", "254712345678")

	assert.ErrorIs(t, err, errs.ErrOrderNotFound)
}

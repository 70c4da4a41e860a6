package entity

import "time"

// OrderStatus values this service cares about. Orders are owned by the
// ordering app; the bridge only reads them for receipts and flips the
// status to paid after a completed payment.
type OrderStatus string

// Order statuses
const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusDelivered OrderStatus = "delivered"
)

// Order is a read model over the ordering app's orders table
type Order struct {
	ID              string      // Order UUID
	ShortID         string      // Human-friendly order number
	UserAuthID      string      // Owning customer's auth id
	Status          OrderStatus // Order lifecycle status
	TotalAmount     float64     // Order total in KES
	DeliveryFee     float64     // Delivery fee included in the total
	DeliveryAddress string      // Optional delivery address
	PaymentMethod   string      // Set to mpesa when marked paid
	CreatedAt       time.Time
	Items           []OrderItem
}

// OrderItem is one line of an order
type OrderItem struct {
	Name      string
	Quantity  int
	UnitPrice float64
}

// LineTotal returns the total price for this line
func (i OrderItem) LineTotal() float64 {
	return float64(i.Quantity) * i.UnitPrice
}

// Subtotal returns the order total net of the delivery fee
func (o *Order) Subtotal() float64 {
	return o.TotalAmount - o.DeliveryFee
}

// Customer holds the contact details a receipt is addressed to
type Customer struct {
	AuthID string
	Name   string
	Email  string
	Phone  string
}

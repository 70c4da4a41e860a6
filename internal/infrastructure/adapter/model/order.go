package model

import (
	"time"
)

// Order maps the ordering app's orders table. The bridge reads it for
// receipts and only ever writes status, payment_method and updated_at.
type Order struct {
	ID              string  `gorm:"type:uuid;primaryKey"`
	ShortID         string  `gorm:"size:20"`
	UserAuthID      string  `gorm:"type:uuid;not null;index"`
	Status          string  `gorm:"not null;size:50;index"`
	TotalAmount     float64 `gorm:"not null"`
	DeliveryFee     float64
	DeliveryAddress string `gorm:"type:text"`
	PaymentMethod   string `gorm:"size:50"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Items []OrderItem `gorm:"foreignKey:OrderID"`
}

// TableName specifies the table name for Order
func (Order) TableName() string {
	return "orders"
}

// OrderItem is one line of an order
type OrderItem struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	OrderID   string `gorm:"type:uuid;not null;index"`
	Name      string `gorm:"not null;size:255"`
	Quantity  int    `gorm:"not null"`
	UnitPrice float64
}

// TableName specifies the table name for OrderItem
func (OrderItem) TableName() string {
	return "order_items"
}

// User maps the ordering app's users table, read for receipt contact details
type User struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"`
	AuthID string `gorm:"type:uuid;uniqueIndex;not null"`
	Name   string `gorm:"size:255"`
	Email  string `gorm:"size:255"`
	Phone  string `gorm:"size:20"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

package model

import (
	"time"
)

// Receipt is the persisted payment receipt issued once a transaction completes
type Receipt struct {
	ID             string `gorm:"type:uuid;primaryKey"`
	ReceiptNumber  string `gorm:"uniqueIndex;not null;size:50"`
	TransactionRef string `gorm:"not null;size:100;index"`
	ReceiptType    string `gorm:"not null;size:50"`
	IssueDate      time.Time
	CustomerName   string `gorm:"size:255"`
	CustomerPhone  string `gorm:"size:20"`
	CustomerEmail  string `gorm:"size:255"`
	Subtotal       float64
	TaxAmount      float64
	DiscountAmount float64
	TotalAmount    float64 `gorm:"not null"`
	BusinessName   string  `gorm:"size:255"`
	BusinessPhone  string  `gorm:"size:20"`
	BusinessEmail  string  `gorm:"size:255"`
	PaymentMethod  string  `gorm:"size:50"`
	Currency       string  `gorm:"size:10"`
	CreatedAt      time.Time

	Items []ReceiptItem `gorm:"foreignKey:ReceiptID"`
}

// TableName specifies the table name for Receipt
func (Receipt) TableName() string {
	return "receipts"
}

// ReceiptItem is one billed line on a receipt
type ReceiptItem struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement"`
	ReceiptID   string `gorm:"type:uuid;not null;index"`
	Description string `gorm:"not null;size:255"`
	Quantity    int    `gorm:"not null"`
	UnitPrice   float64
	TotalPrice  float64
}

// TableName specifies the table name for ReceiptItem
func (ReceiptItem) TableName() string {
	return "receipt_items"
}

package model

import (
	"time"
)

// Transaction represents the database model for M-Pesa transactions
type Transaction struct {
	ID                uint64 `gorm:"primaryKey;autoIncrement"`
	TransactionRef    string `gorm:"column:transaction_ref;not null;size:255;index"`
	MerchantRequestID string `gorm:"column:merchant_request_id;size:255"`
	CheckoutRequestID string `gorm:"column:checkout_request_id;uniqueIndex;not null;size:255"`
	TransactionType   string `gorm:"not null;size:50"`
	Status            string `gorm:"not null;size:50;index"`
	ResultCode        *int
	ResultDesc        string  `gorm:"type:text"`
	Amount            float64 `gorm:"not null"`
	PhoneNumber       string  `gorm:"not null;size:20"`
	AccountReference  string  `gorm:"size:255"`
	TransactionDesc   string  `gorm:"size:255"`
	BusinessShortCode string  `gorm:"size:20"`
	OrderID           *string `gorm:"type:uuid;index"`
	UserAuthID        *string `gorm:"type:uuid"`
	TransactionDate   time.Time
	CreatedAt         time.Time `gorm:"not null"`
	UpdatedAt         time.Time `gorm:"not null"`
}

// TableName specifies the table name for Transaction
func (Transaction) TableName() string {
	return "mpesa_transactions"
}

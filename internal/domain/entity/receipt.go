package entity

import "time"

// Receipt is the persisted record of a payment confirmation issued to a
// customer after a completed, order-linked transaction.
type Receipt struct {
	ID             string  // Receipt UUID
	ReceiptNumber  string  // RCP-prefixed human-readable number
	TransactionRef string  // M-Pesa receipt number of the paying transaction
	ReceiptType    string  // Always "payment" for now
	IssueDate      time.Time
	CustomerName   string
	CustomerPhone  string
	CustomerEmail  string
	Subtotal       float64
	TaxAmount      float64
	DiscountAmount float64
	TotalAmount    float64
	BusinessName   string
	BusinessPhone  string
	BusinessEmail  string
	PaymentMethod  string // "M-Pesa"
	Currency       string // "KES"
	Items          []ReceiptItem
}

// ReceiptItem is one line of an issued receipt
type ReceiptItem struct {
	Description string
	Quantity    int
	UnitPrice   float64
	TotalPrice  float64
}

package receipt

import (
	"html/template"
	"time"
)

// receiptHTML renders the emailed payment confirmation. Kept deliberately
// table-based so it survives the common email clients.
const receiptHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Arial, Helvetica, sans-serif; color: #333; margin: 0; }
  .wrapper { max-width: 600px; margin: 0 auto; padding: 24px; }
  .header { background: #16a34a; color: #fff; padding: 16px 24px; border-radius: 8px 8px 0 0; }
  .header h1 { margin: 0; font-size: 20px; }
  .meta { padding: 16px 0; font-size: 14px; }
  table.items { width: 100%; border-collapse: collapse; font-size: 14px; }
  table.items th { text-align: left; border-bottom: 2px solid #e5e7eb; padding: 8px 4px; }
  table.items td { border-bottom: 1px solid #e5e7eb; padding: 8px 4px; }
  .totals { margin-top: 16px; font-size: 14px; }
  .totals td { padding: 4px; }
  .grand { font-weight: bold; font-size: 16px; }
  .footer { margin-top: 24px; font-size: 12px; color: #6b7280; }
</style>
</head>
<body>
<div class="wrapper">
  <div class="header">
    <h1>{{.BusinessName}} - Payment Receipt</h1>
  </div>
  <div class="meta">
    <p>Receipt No: <strong>{{.ReceiptNumber}}</strong><br>
    M-Pesa Ref: <strong>{{.TransactionRef}}</strong><br>
    Date: {{.IssueDate.Format "02 Jan 2006 15:04"}}<br>
    {{if .CustomerName}}Customer: {{.CustomerName}}<br>{{end}}
    {{if .CustomerPhone}}Phone: {{.CustomerPhone}}{{end}}</p>
  </div>
  <table class="items">
    <tr><th>Item</th><th>Qty</th><th>Price</th><th>Total</th></tr>
    {{range .Items}}
    <tr>
      <td>{{.Description}}</td>
      <td>{{.Quantity}}</td>
      <td>{{.UnitPrice | printf "%.2f"}}</td>
      <td>{{.TotalPrice | printf "%.2f"}}</td>
    </tr>
    {{end}}
  </table>
  <table class="totals" align="right">
    <tr><td>Subtotal:</td><td>{{.Currency}} {{.Subtotal | printf "%.2f"}}</td></tr>
    {{if gt .DeliveryFee 0.0}}<tr><td>Delivery:</td><td>{{.Currency}} {{.DeliveryFee | printf "%.2f"}}</td></tr>{{end}}
    <tr class="grand"><td>Total Paid:</td><td>{{.Currency}} {{.TotalAmount | printf "%.2f"}}</td></tr>
  </table>
  <div class="footer">
    <p>Paid via {{.PaymentMethod}}. Thank you for your order!</p>
    {{if .BusinessPhone}}<p>{{.BusinessName}} | {{.BusinessPhone}}{{if .BusinessEmail}} | {{.BusinessEmail}}{{end}}</p>{{end}}
  </div>
</div>
</body>
</html>`

var receiptTemplate = template.Must(template.New("receipt").Parse(receiptHTML))

// templateData is what receiptTemplate renders
type templateData struct {
	BusinessName   string
	BusinessPhone  string
	BusinessEmail  string
	ReceiptNumber  string
	TransactionRef string
	IssueDate      time.Time
	CustomerName   string
	CustomerPhone  string
	Items          []templateItem
	Currency       string
	Subtotal       float64
	DeliveryFee    float64
	TotalAmount    float64
	PaymentMethod  string
}

type templateItem struct {
	Description string
	Quantity    int
	UnitPrice   float64
	TotalPrice  float64
}

package dto

import (
	"encoding/json"
	"strconv"

	"github.com/oumasdelicacy/mpesa-bridge/internal/domain/port/gateway"
	"github.com/oumasdelicacy/mpesa-bridge/internal/infrastructure/adapter/mpesa"
)

// CallbackEnvelope is the Daraja STK callback payload as delivered to the
// registered callback URL
type CallbackEnvelope struct {
	Body struct {
		STKCallback STKCallback `json:"stkCallback"`
	} `json:"Body"`
}

// STKCallback is the inner callback record
type STKCallback struct {
	MerchantRequestID string            `json:"MerchantRequestID"`
	CheckoutRequestID string            `json:"CheckoutRequestID"`
	ResultCode        *int              `json:"ResultCode"`
	ResultDesc        string            `json:"ResultDesc"`
	CallbackMetadata  *CallbackMetadata `json:"CallbackMetadata"`
}

// CallbackMetadata holds the named items attached to successful callbacks
type CallbackMetadata struct {
	Item []CallbackItem `json:"Item"`
}

// CallbackItem is one name/value pair of callback metadata. Values arrive
// as strings or numbers depending on the field.
type CallbackItem struct {
	Name  string          `json:"Name"`
	Value json.RawMessage `json:"Value"`
}

// CallbackAck is the acknowledgement Daraja expects for every delivery
type CallbackAck struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}

// AcceptedAck returns the acknowledgement that stops Daraja redelivering
func AcceptedAck() CallbackAck {
	return CallbackAck{ResultCode: 0, ResultDesc: "Accepted"}
}

// ToResultReport converts the callback into the domain's result report shape
func (e *CallbackEnvelope) ToResultReport() gateway.ResultReport {
	cb := e.Body.STKCallback

	report := gateway.ResultReport{
		MerchantRequestID: cb.MerchantRequestID,
		CheckoutRequestID: cb.CheckoutRequestID,
		ResultCode:        cb.ResultCode,
		ResultDesc:        cb.ResultDesc,
	}

	if cb.CallbackMetadata == nil {
		return report
	}

	meta := &gateway.SuccessMetadata{}
	populated := false
	for _, item := range cb.CallbackMetadata.Item {
		switch item.Name {
		case "Amount":
			if v, ok := itemAsFloat(item.Value); ok {
				meta.Amount = v
				populated = true
			}
		case "MpesaReceiptNumber":
			if v, ok := itemAsString(item.Value); ok && v != "" {
				meta.ReceiptNumber = v
				populated = true
			}
		case "PhoneNumber":
			if v, ok := itemAsString(item.Value); ok && v != "" {
				meta.PhoneNumber = v
				populated = true
			}
		case "Balance":
			if v, ok := itemAsFloat(item.Value); ok {
				balance := v
				meta.Balance = &balance
				populated = true
			}
		case "TransactionDate":
			if v, ok := itemAsInt(item.Value); ok {
				meta.TransactionDate = mpesa.ParseTransactionDate(v)
				populated = true
			}
		}
	}

	if populated {
		report.Metadata = meta
	}
	return report
}

// itemAsFloat decodes a metadata value as a number, accepting the quoted
// form Daraja sometimes uses
func itemAsFloat(raw json.RawMessage) (float64, bool) {
	var asFloat float64
	if err := json.Unmarshal(raw, &asFloat); err == nil {
		return asFloat, true
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		if v, convErr := strconv.ParseFloat(asString, 64); convErr == nil {
			return v, true
		}
	}
	return 0, false
}

// itemAsInt decodes a metadata value as an integer
func itemAsInt(raw json.RawMessage) (int64, bool) {
	if v, ok := itemAsFloat(raw); ok {
		return int64(v), true
	}
	return 0, false
}

// itemAsString decodes a metadata value as a string, rendering numbers
// (like phone numbers) in their decimal form
func itemAsString(raw json.RawMessage) (string, bool) {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString, true
	}
	var asInt int64
	if err := json.Unmarshal(raw, &asInt); err == nil {
		return strconv.FormatInt(asInt, 10), true
	}
	var asFloat float64
	if err := json.Unmarshal(raw, &asFloat); err == nil {
		return strconv.FormatFloat(asFloat, 'f', -1, 64), true
	}
	return "", false
}

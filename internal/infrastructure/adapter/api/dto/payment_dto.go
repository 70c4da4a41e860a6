package dto

// STKPushRequest represents the API request for initiating an STK push
type STKPushRequest struct {
	PhoneNumber      string  `json:"phoneNumber" binding:"required"`
	Amount           float64 `json:"amount" binding:"required,gt=0"`
	AccountReference string  `json:"accountReference" binding:"required"`
	TransactionDesc  string  `json:"transactionDesc"`
	OrderID          *string `json:"orderId"`
	UserAuthID       *string `json:"userAuthId"`
}

// STKPushResponse represents the API response for an accepted STK push
type STKPushResponse struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	MerchantRequestID string `json:"merchantRequestId"`
	CheckoutRequestID string `json:"checkoutRequestId"`
	TransactionRef    string `json:"transactionRef"`
	Stored            bool   `json:"stored"`
}

// QueryStatusRequest represents the API request for a status poll
type QueryStatusRequest struct {
	CheckoutRequestID string `json:"checkoutRequestId" binding:"required"`
}

// QueryStatusResponse represents the API response for a status poll
type QueryStatusResponse struct {
	Success        bool    `json:"success"`
	Status         string  `json:"status"`
	ResultCode     *int    `json:"resultCode,omitempty"`
	ResultDesc     string  `json:"resultDesc,omitempty"`
	TransactionRef string  `json:"transactionRef,omitempty"`
	Amount         float64 `json:"amount,omitempty"`
	PhoneNumber    string  `json:"phoneNumber,omitempty"`
}

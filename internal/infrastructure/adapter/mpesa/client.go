package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	errs "github.com/oumasdelicacy/mpesa-bridge/internal/domain/error"
	coreport "github.com/oumasdelicacy/mpesa-bridge/internal/domain/port/core"
	"github.com/oumasdelicacy/mpesa-bridge/internal/domain/port/gateway"
)

const (
	sandboxBaseURL    = "https://sandbox.safaricom.co.ke"
	productionBaseURL = "https://api.safaricom.co.ke"

	oauthPath     = "/oauth/v1/generate?grant_type=client_credentials"
	stkPushPath   = "/mpesa/stkpush/v1/processrequest"
	stkQueryPath  = "/mpesa/stkpushquery/v1/query"
	timestampForm = "20060102150405"

	// Daraja keeps answering this error code while a push is still in flight
	errCodeStillProcessing = "500.001.1001"

	// Tokens are valid for an hour; refresh slightly early to avoid using
	// one that expires mid-request
	tokenExpiryMargin = 30 * time.Second
)

// nairobiTime is the zone Daraja timestamps are expressed in
var nairobiTime = time.FixedZone("EAT", 3*60*60)

// Config carries the Daraja API credentials and endpoints
type Config struct {
	Environment    string // "sandbox" or "production"
	ConsumerKey    string
	ConsumerSecret string
	ShortCode      string // Paybill/till number
	Passkey        string
	CallbackURL    string
	Timeout        time.Duration
}

// Validate checks that the required credentials are present
func (c *Config) Validate() error {
	if c.ConsumerKey == "" || c.ConsumerSecret == "" {
		return fmt.Errorf("%w: consumer key/secret", errs.ErrMissingCredentials)
	}
	if c.ShortCode == "" || c.Passkey == "" {
		return fmt.Errorf("%w: short code/passkey", errs.ErrMissingCredentials)
	}
	if c.CallbackURL == "" {
		return fmt.Errorf("%w: callback URL", errs.ErrMissingCredentials)
	}
	return nil
}

// BaseURL returns the API origin for the configured environment
func (c *Config) BaseURL() string {
	if c.Environment == "production" {
		return productionBaseURL
	}
	return sandboxBaseURL
}

// Client talks to the Safaricom Daraja API. It implements gateway.Client.
type Client struct {
	config       *Config
	httpClient   *http.Client
	timeProvider coreport.TimeProvider
	logger       coreport.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time

	// baseURL is overridable for tests
	baseURL string
}

// NewClient creates a Daraja API client
func NewClient(config *Config, timeProvider coreport.TimeProvider, logger coreport.Logger) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		config:       config,
		httpClient:   &http.Client{Timeout: timeout},
		timeProvider: timeProvider,
		logger:       logger,
		baseURL:      config.BaseURL(),
	}
}

type oauthResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

// getAccessToken returns a cached OAuth token, fetching a fresh one when
// the cache is empty or expired
func (c *Client) getAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.timeProvider.Now()
	if c.accessToken != "" && now.Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	if err := c.config.Validate(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+oauthPath, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %s", errs.ErrGatewayUnavailable, err.Error())
	}
	credentials := base64.StdEncoding.EncodeToString([]byte(c.config.ConsumerKey + ":" + c.config.ConsumerSecret))
	req.Header.Set("Authorization", "Basic "+credentials)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to reach OAuth endpoint", map[string]any{"error": err.Error()})
		return "", fmt.Errorf("%w: %s", errs.ErrGatewayUnavailable, err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %s", errs.ErrGatewayUnavailable, err.Error())
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("OAuth token request rejected", map[string]any{
			"status": resp.StatusCode,
			"body":   string(body),
		})
		return "", errs.NewGatewayError("oauth", resp.StatusCode, string(body), errs.ErrGatewayRejected)
	}

	var oauth oauthResponse
	if err := json.Unmarshal(body, &oauth); err != nil {
		return "", fmt.Errorf("%w: malformed oauth response: %s", errs.ErrGatewayUnavailable, err.Error())
	}
	if oauth.AccessToken == "" {
		return "", errs.NewGatewayError("oauth", resp.StatusCode, string(body), errs.ErrGatewayRejected)
	}

	expiresIn, err := strconv.Atoi(oauth.ExpiresIn)
	if err != nil || expiresIn <= 0 {
		expiresIn = 3600
	}

	c.accessToken = oauth.AccessToken
	c.tokenExpiry = now.Add(time.Duration(expiresIn)*time.Second - tokenExpiryMargin)

	c.logger.Debug("Obtained OAuth token", map[string]any{
		"expires_in": expiresIn,
	})
	return c.accessToken, nil
}

// credentials computes the per-request timestamp and password pair
func (c *Client) credentials() (timestamp, password string) {
	timestamp = c.timeProvider.Now().In(nairobiTime).Format(timestampForm)
	password = base64.StdEncoding.EncodeToString([]byte(c.config.ShortCode + c.config.Passkey + timestamp))
	return timestamp, password
}

type stkPushRequestBody struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

type stkPushResponseBody struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
	ErrorCode           string `json:"errorCode"`
	ErrorMessage        string `json:"errorMessage"`
}

// STKPush submits a push-to-phone payment request
func (c *Client) STKPush(ctx context.Context, req gateway.STKPushRequest) (*gateway.STKPushResponse, error) {
	token, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	timestamp, password := c.credentials()
	body := stkPushRequestBody{
		BusinessShortCode: c.config.ShortCode,
		Password:          password,
		Timestamp:         timestamp,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            int64(math.Round(req.Amount)),
		PartyA:            req.PhoneNumber,
		PartyB:            c.config.ShortCode,
		PhoneNumber:       req.PhoneNumber,
		CallBackURL:       c.config.CallbackURL,
		AccountReference:  req.AccountReference,
		TransactionDesc:   req.TransactionDesc,
	}

	c.logger.Info("Submitting STK push", map[string]any{
		"phone_number":      req.PhoneNumber,
		"amount":            body.Amount,
		"account_reference": req.AccountReference,
	})

	var parsed stkPushResponseBody
	statusCode, raw, err := c.postJSON(ctx, stkPushPath, token, body, &parsed)
	if err != nil {
		return nil, err
	}

	if statusCode != http.StatusOK || parsed.ResponseCode != "0" {
		c.logger.Error("STK push rejected", map[string]any{
			"status":        statusCode,
			"response_code": parsed.ResponseCode,
			"error_code":    parsed.ErrorCode,
			"error_message": parsed.ErrorMessage,
		})
		return nil, errs.NewGatewayError("stkpush", statusCode, raw, errs.ErrGatewayRejected)
	}

	c.logger.Info("STK push accepted", map[string]any{
		"merchant_request_id": parsed.MerchantRequestID,
		"checkout_request_id": parsed.CheckoutRequestID,
	})

	return &gateway.STKPushResponse{
		MerchantRequestID:   parsed.MerchantRequestID,
		CheckoutRequestID:   parsed.CheckoutRequestID,
		ResponseCode:        parsed.ResponseCode,
		ResponseDescription: parsed.ResponseDescription,
		CustomerMessage:     parsed.CustomerMessage,
	}, nil
}

type stkQueryRequestBody struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
}

type stkQueryResponseBody struct {
	MerchantRequestID   string          `json:"MerchantRequestID"`
	CheckoutRequestID   string          `json:"CheckoutRequestID"`
	ResponseCode        string          `json:"ResponseCode"`
	ResponseDescription string          `json:"ResponseDescription"`
	ResultCode          json.RawMessage `json:"ResultCode"`
	ResultDesc          string          `json:"ResultDesc"`
	ErrorCode           string          `json:"errorCode"`
	ErrorMessage        string          `json:"errorMessage"`
}

// QueryStatus synchronously asks the gateway for the current result of a
// previously initiated payment
func (c *Client) QueryStatus(ctx context.Context, checkoutRequestID string) (*gateway.ResultReport, error) {
	token, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	timestamp, password := c.credentials()
	body := stkQueryRequestBody{
		BusinessShortCode: c.config.ShortCode,
		Password:          password,
		Timestamp:         timestamp,
		CheckoutRequestID: checkoutRequestID,
	}

	c.logger.Debug("Querying STK push status", map[string]any{
		"checkout_request_id": checkoutRequestID,
	})

	var parsed stkQueryResponseBody
	statusCode, raw, err := c.postJSON(ctx, stkQueryPath, token, body, &parsed)
	if err != nil {
		return nil, err
	}

	// Daraja reports an in-flight push as an error rather than a result;
	// surface it as a pending report so callers poll again later
	if parsed.ErrorCode == errCodeStillProcessing {
		return &gateway.ResultReport{
			CheckoutRequestID: checkoutRequestID,
			ResultDesc:        parsed.ErrorMessage,
		}, nil
	}

	if statusCode != http.StatusOK {
		c.logger.Error("STK push query rejected", map[string]any{
			"status":        statusCode,
			"error_code":    parsed.ErrorCode,
			"error_message": parsed.ErrorMessage,
		})
		return nil, errs.NewGatewayError("stkquery", statusCode, raw, errs.ErrGatewayRejected)
	}

	report := &gateway.ResultReport{
		MerchantRequestID: parsed.MerchantRequestID,
		CheckoutRequestID: parsed.CheckoutRequestID,
		ResultCode:        parseResultCode(parsed.ResultCode),
		ResultDesc:        parsed.ResultDesc,
	}
	if report.CheckoutRequestID == "" {
		report.CheckoutRequestID = checkoutRequestID
	}
	return report, nil
}

// postJSON sends an authenticated JSON request and decodes the response body
func (c *Client) postJSON(ctx context.Context, path, token string, body any, out any) (int, string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %s", errs.ErrInternalServer, err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, "", fmt.Errorf("%w: %s", errs.ErrGatewayUnavailable, err.Error())
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Gateway request failed", map[string]any{
			"path":  path,
			"error": err.Error(),
		})
		return 0, "", fmt.Errorf("%w: %s", errs.ErrGatewayUnavailable, err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, "", fmt.Errorf("%w: %s", errs.ErrGatewayUnavailable, err.Error())
	}

	if len(raw) > 0 {
		// Error payloads share field names with success payloads, so decode
		// failures are reported by status handling in the caller instead
		_ = json.Unmarshal(raw, out)
	}

	return resp.StatusCode, string(raw), nil
}

// parseResultCode handles the three shapes Daraja uses for result codes:
// absent, a JSON number, or a quoted numeric string
func parseResultCode(raw json.RawMessage) *int {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var asInt int
	if err := json.Unmarshal(raw, &asInt); err == nil {
		return &asInt
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		if code, convErr := strconv.Atoi(asString); convErr == nil {
			return &code
		}
	}

	return nil
}

// ParseTransactionDate converts a Daraja yyyymmddhhmmss timestamp into a
// time.Time in Nairobi time. Returns the zero time for unparseable input.
func ParseTransactionDate(value int64) time.Time {
	if value == 0 {
		return time.Time{}
	}
	t, err := time.ParseInLocation(timestampForm, strconv.FormatInt(value, 10), nairobiTime)
	if err != nil {
		return time.Time{}
	}
	return t
}

var _ gateway.Client = (*Client)(nil)

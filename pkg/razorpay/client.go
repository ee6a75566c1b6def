package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/knowledgeledger/lms-backend/pkg/config"
	pkgerrors "github.com/knowledgeledger/lms-backend/pkg/errors"
	"github.com/knowledgeledger/lms-backend/pkg/logger"
)

var (
	errKeyIDRequired     = errors.New("razorpay key id is required")
	errKeySecretRequired = errors.New("razorpay key secret is required")
	errLoggerRequired    = errors.New("razorpay logger is required")
)

// Client wraps the Razorpay Orders API with centralized auth, logging and
// error mapping. Only the order-creation and signature-verification
// surface the checkout flow needs is exposed.
type Client struct {
	http      *resty.Client
	keyID     string
	keySecret string
	currency  string
	logger    *logger.Logger
}

// NewClient initializes the Razorpay wrapper and validates the credentials.
func NewClient(cfg config.RazorpayConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	keyID := strings.TrimSpace(cfg.KeyID)
	if keyID == "" {
		return nil, errKeyIDRequired
	}
	keySecret := strings.TrimSpace(cfg.KeySecret)
	if keySecret == "" {
		return nil, errKeySecretRequired
	}

	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetBasicAuth(keyID, keySecret)

	return &Client{
		http:      http,
		keyID:     keyID,
		keySecret: keySecret,
		currency:  cfg.Currency,
		logger:    logg,
	}, nil
}

// KeyID returns the public key id embedded in checkout payloads.
func (c *Client) KeyID() string {
	return c.keyID
}

// Currency returns the configured settlement currency.
func (c *Client) Currency() string {
	return c.currency
}

// CreateOrderInput carries the fields for opening a gateway order.
// AmountMinor is in the currency's minor unit (paise for INR).
type CreateOrderInput struct {
	AmountMinor int64
	Currency    string
	Receipt     string
	Notes       map[string]string
}

// GatewayOrder is the subset of the gateway response the platform keeps.
type GatewayOrder struct {
	ID          string `json:"id"`
	AmountMinor int64  `json:"amount"`
	Currency    string `json:"currency"`
	Receipt     string `json:"receipt"`
	Status      string `json:"status"`
}

type gatewayError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder opens an order on the gateway and returns its id for the
// client-side checkout handoff.
func (c *Client) CreateOrder(ctx context.Context, input CreateOrderInput) (*GatewayOrder, error) {
	if input.AmountMinor <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gateway order amount must be positive")
	}
	currency := input.Currency
	if currency == "" {
		currency = c.currency
	}

	body := map[string]any{
		"amount":   input.AmountMinor,
		"currency": currency,
		"receipt":  input.Receipt,
	}
	if len(input.Notes) > 0 {
		body["notes"] = input.Notes
	}

	var (
		order  GatewayOrder
		gwErr  gatewayError
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&order).
		SetError(&gwErr).
		Post("/orders")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "calling payment gateway")
	}
	if resp.IsError() {
		msg := gwErr.Error.Description
		if msg == "" {
			msg = fmt.Sprintf("gateway returned status %d", resp.StatusCode())
		}
		return nil, pkgerrors.New(pkgerrors.CodeDependency, msg).
			WithDetails(map[string]any{"gateway_code": gwErr.Error.Code})
	}
	if order.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "gateway order response missing id")
	}

	c.logger.Info(c.logger.WithField(ctx, "gateway_order_id", order.ID), "gateway order created")
	return &order, nil
}

// VerifyPaymentSignature checks the checkout callback signature:
// HMAC-SHA256(order_id + "|" + payment_id) keyed with the secret.
func (c *Client) VerifyPaymentSignature(gatewayOrderID, paymentID, signature string) bool {
	return VerifySignature(c.keySecret, gatewayOrderID, paymentID, signature)
}

// VerifySignature is the key-explicit form of VerifyPaymentSignature.
func VerifySignature(secret, gatewayOrderID, paymentID, signature string) bool {
	if gatewayOrderID == "" || paymentID == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

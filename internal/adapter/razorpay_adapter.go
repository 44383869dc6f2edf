package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/greenobird/service-booking/internal/domain"
)

// Order is the gateway's view of a payment order.
type Order struct {
	ID        string `json:"id"`
	Entity    string `json:"entity"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Receipt   string `json:"receipt,omitempty"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
}

// PaymentGateway is the Anti-Corruption Layer over the payment provider.
type PaymentGateway interface {
	// CreateOrder creates an auto-captured order for amountMinor (paise).
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*Order, error)
}

// RazorpayAdapter calls the Razorpay Orders REST API.
type RazorpayAdapter struct {
	baseURL   string
	keyID     string
	keySecret string
	client    *http.Client
	logger    *zap.Logger
}

// NewRazorpayAdapter creates an adapter. timeout bounds every call.
func NewRazorpayAdapter(baseURL, keyID, keySecret string, timeout time.Duration, logger *zap.Logger) *RazorpayAdapter {
	return &RazorpayAdapter{
		baseURL:   strings.TrimRight(baseURL, "/"),
		keyID:     keyID,
		keySecret: keySecret,
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

type razorpayOrderRequest struct {
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Receipt        string `json:"receipt,omitempty"`
	PaymentCapture int    `json:"payment_capture"`
}

type razorpayErrorBody struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder posts to /orders with basic auth.
func (a *RazorpayAdapter) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*Order, error) {
	if amountMinor <= 0 {
		return nil, domain.NewValidationError("amount", "Invalid amount")
	}

	body, err := json.Marshal(razorpayOrderRequest{
		Amount:         amountMinor,
		Currency:       currency,
		Receipt:        receipt,
		PaymentCapture: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("encode order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build order request: %w", err)
	}
	req.SetBasicAuth(a.keyID, a.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.Error("razorpay order request failed", zap.Error(err))
		return nil, domain.NewGatewayError("payment gateway unreachable", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, domain.NewGatewayError("payment gateway response unreadable", err)
	}

	if resp.StatusCode >= 300 {
		var apiErr razorpayErrorBody
		msg := fmt.Sprintf("payment gateway returned status %d", resp.StatusCode)
		if json.Unmarshal(payload, &apiErr) == nil && apiErr.Error.Description != "" {
			msg = apiErr.Error.Description
		}
		a.logger.Warn("razorpay rejected order",
			zap.Int("status", resp.StatusCode),
			zap.String("code", apiErr.Error.Code),
			zap.String("description", apiErr.Error.Description),
		)
		return nil, domain.NewGatewayError(msg, fmt.Errorf("status %d", resp.StatusCode))
	}

	var order Order
	if err := json.Unmarshal(payload, &order); err != nil || order.ID == "" {
		return nil, domain.NewGatewayError("payment gateway returned an invalid order", err)
	}

	a.logger.Info("razorpay order created",
		zap.String("order_id", order.ID),
		zap.Int64("amount", order.Amount),
		zap.String("currency", order.Currency),
	)
	return &order, nil
}

// MockRazorpayAdapter is a development/testing implementation of PaymentGateway.
// It simulates Razorpay behavior without requiring a real account.
type MockRazorpayAdapter struct {
	logger *zap.Logger
}

// NewMockRazorpayAdapter creates a new mock gateway for development.
func NewMockRazorpayAdapter(logger *zap.Logger) *MockRazorpayAdapter {
	return &MockRazorpayAdapter{logger: logger}
}

// CreateOrder returns a created order with a mock id.
func (m *MockRazorpayAdapter) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*Order, error) {
	if amountMinor <= 0 {
		return nil, domain.NewValidationError("amount", "Invalid amount")
	}
	order := &Order{
		ID:        fmt.Sprintf("order_mock_%s", uuid.New().String()[:8]),
		Entity:    "order",
		Amount:    amountMinor,
		Currency:  currency,
		Receipt:   receipt,
		Status:    "created",
		CreatedAt: time.Now().Unix(),
	}

	m.logger.Info("[MOCK RAZORPAY] order created",
		zap.String("order_id", order.ID),
		zap.Int64("amount", amountMinor),
		zap.String("currency", currency),
	)
	return order, nil
}

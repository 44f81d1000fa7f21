package gateway

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/Goh0809/Eventora-Backend/internal/domain"
)

// alphanumericChars for generating Stripe-compatible IDs
const alphanumericChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// randomAlphanumeric generates a random alphanumeric string of given length
func randomAlphanumeric(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = alphanumericChars[rand.Intn(len(alphanumericChars))]
	}
	return string(b)
}

// MockGateway implements PaymentGateway in memory for local development and tests
type MockGateway struct {
	config *MockGatewayConfig

	mu       sync.RWMutex
	sessions map[string]*CheckoutSessionRequest
	products map[string]*MockProduct
	prices   map[string]*MockPrice
}

// MockGatewayConfig holds configuration for the mock gateway
type MockGatewayConfig struct {
	// WebhookSecret signs callbacks the same way Stripe does
	WebhookSecret string

	// CheckoutBaseURL prefixes generated checkout URLs
	CheckoutBaseURL string

	// FailCheckout, FailProduct and FailPrice inject upstream failures
	FailCheckout bool
	FailProduct  bool
	FailPrice    bool
}

// MockProduct is a product held by the mock gateway
type MockProduct struct {
	ID          string
	Name        string
	Description string
	Active      bool
}

// MockPrice is a price held by the mock gateway
type MockPrice struct {
	ID         string
	ProductID  string
	UnitAmount int64
	Currency   string
	Active     bool
}

// DefaultMockGatewayConfig returns default configuration
func DefaultMockGatewayConfig() *MockGatewayConfig {
	return &MockGatewayConfig{
		WebhookSecret:   "whsec_mock",
		CheckoutBaseURL: "https://checkout.mock.local/pay/",
	}
}

// NewMockGateway creates a new mock gateway
func NewMockGateway(config *MockGatewayConfig) *MockGateway {
	defaults := DefaultMockGatewayConfig()
	if config == nil {
		config = defaults
	}
	if config.WebhookSecret == "" {
		config.WebhookSecret = defaults.WebhookSecret
	}
	if config.CheckoutBaseURL == "" {
		config.CheckoutBaseURL = defaults.CheckoutBaseURL
	}

	return &MockGateway{
		config:   config,
		sessions: make(map[string]*CheckoutSessionRequest),
		products: make(map[string]*MockProduct),
		prices:   make(map[string]*MockPrice),
	}
}

var errMockUnavailable = errors.New("mock gateway: injected failure")

// CreateCheckoutSession records the request and returns a fake hosted URL
func (g *MockGateway) CreateCheckoutSession(ctx context.Context, req *CheckoutSessionRequest) (*CheckoutSession, error) {
	if req == nil {
		return nil, fmt.Errorf("checkout session request is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if g.config.FailCheckout {
		return nil, domain.Upstream("Payment Gateway Unavailable", errMockUnavailable)
	}

	id := "cs_mock_" + randomAlphanumeric(24)

	g.mu.Lock()
	g.sessions[id] = req
	g.mu.Unlock()

	return &CheckoutSession{ID: id, URL: g.config.CheckoutBaseURL + id}, nil
}

// CreateProduct stores a new active product
func (g *MockGateway) CreateProduct(ctx context.Context, name, description string) (string, error) {
	if g.config.FailProduct {
		return "", domain.Upstream("Payment Gateway Unavailable", errMockUnavailable)
	}

	id := "prod_mock_" + randomAlphanumeric(14)

	g.mu.Lock()
	g.products[id] = &MockProduct{ID: id, Name: name, Description: description, Active: true}
	g.mu.Unlock()

	return id, nil
}

// UpdateProduct changes a stored product's text
func (g *MockGateway) UpdateProduct(ctx context.Context, productID, name, description string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.products[productID]
	if !ok {
		return classifyStripeError(fmt.Errorf("No such product: '%s'", productID))
	}
	p.Name = name
	p.Description = description
	return nil
}

// ArchiveProduct deactivates a stored product
func (g *MockGateway) ArchiveProduct(ctx context.Context, productID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.products[productID]
	if !ok {
		return classifyStripeError(fmt.Errorf("No such product: '%s'", productID))
	}
	p.Active = false
	return nil
}

// CreatePrice stores a new active price on an existing product
func (g *MockGateway) CreatePrice(ctx context.Context, productID string, unitAmount int64, currency string) (string, error) {
	if g.config.FailPrice {
		return "", domain.Upstream("Payment Gateway Unavailable", errMockUnavailable)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.products[productID]; !ok {
		return "", classifyStripeError(fmt.Errorf("No such product: '%s'", productID))
	}

	id := "price_mock_" + randomAlphanumeric(14)
	g.prices[id] = &MockPrice{
		ID:         id,
		ProductID:  productID,
		UnitAmount: unitAmount,
		Currency:   strings.ToLower(currency),
		Active:     true,
	}
	return id, nil
}

// ArchivePrice deactivates a stored price
func (g *MockGateway) ArchivePrice(ctx context.Context, priceID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.prices[priceID]
	if !ok {
		return classifyStripeError(fmt.Errorf("No such price: '%s'", priceID))
	}
	p.Active = false
	return nil
}

// ParseWebhook verifies callbacks signed with the configured secret
func (g *MockGateway) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	return parseWebhook(payload, signature, g.config.WebhookSecret)
}

// Name returns the gateway name
func (g *MockGateway) Name() string {
	return "mock"
}

// Session returns a recorded checkout request
func (g *MockGateway) Session(id string) (*CheckoutSessionRequest, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	s, ok := g.sessions[id]
	return s, ok
}

// Product returns a stored product
func (g *MockGateway) Product(id string) (MockProduct, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.products[id]
	if !ok {
		return MockProduct{}, false
	}
	return *p, true
}

// Price returns a stored price
func (g *MockGateway) Price(id string) (MockPrice, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.prices[id]
	if !ok {
		return MockPrice{}, false
	}
	return *p, true
}

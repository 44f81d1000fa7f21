package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/Goh0809/Eventora-Backend/pkg/config"
)

// Webhook event types handled by the booking workflow
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventCheckoutExpired   = "checkout.session.expired"
)

// PaymentGateway defines the collaborator that hosts checkout and owns the product catalog
type PaymentGateway interface {
	// CreateCheckoutSession opens a hosted checkout for one ticket
	CreateCheckoutSession(ctx context.Context, req *CheckoutSessionRequest) (*CheckoutSession, error)
	// CreateProduct registers a sellable product and returns its id
	CreateProduct(ctx context.Context, name, description string) (string, error)
	// UpdateProduct changes a product's name and description
	UpdateProduct(ctx context.Context, productID, name, description string) error
	// ArchiveProduct deactivates a product
	ArchiveProduct(ctx context.Context, productID string) error
	// CreatePrice attaches a one-off price in minor units to a product and returns its id
	CreatePrice(ctx context.Context, productID string, unitAmount int64, currency string) (string, error)
	// ArchivePrice deactivates a price
	ArchivePrice(ctx context.Context, priceID string) error
	// ParseWebhook verifies the signature header and decodes the event
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
	// Name returns the gateway name
	Name() string
}

// CheckoutSessionRequest describes a single-ticket checkout
type CheckoutSessionRequest struct {
	PriceID       string
	SuccessURL    string
	CancelURL     string
	CustomerEmail string
	ExpiresAt     time.Time
	Metadata      map[string]string
}

// CheckoutSession is the hosted checkout handed back to the client
type CheckoutSession struct {
	ID  string
	URL string
}

// WebhookEvent is a verified gateway callback
type WebhookEvent struct {
	ID      string
	Type    string
	Session *SessionPayload
}

// SessionPayload is the checkout session carried by checkout.session.* events
type SessionPayload struct {
	ID              string
	Metadata        map[string]string
	AmountTotal     int64
	PaymentIntentID string
}

// New creates the gateway selected by PAYMENT_GATEWAY
func New(cfg config.StripeConfig) (PaymentGateway, error) {
	switch cfg.Gateway {
	case "mock":
		return NewMockGateway(&MockGatewayConfig{WebhookSecret: cfg.WebhookSecret}), nil
	case "", "stripe":
		return NewStripeGateway(&StripeGatewayConfig{
			SecretKey:     cfg.SecretKey,
			WebhookSecret: cfg.WebhookSecret,
		})
	default:
		return nil, fmt.Errorf("unsupported payment gateway: %s", cfg.Gateway)
	}
}

package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Goh0809/Eventora-Backend/internal/domain"
	"github.com/Goh0809/Eventora-Backend/pkg/telemetry"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/price"
	"github.com/stripe/stripe-go/v82/product"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StripeGateway implements PaymentGateway using Stripe Checkout
type StripeGateway struct {
	config *StripeGatewayConfig
}

// StripeGatewayConfig holds configuration for Stripe gateway
type StripeGatewayConfig struct {
	SecretKey     string
	WebhookSecret string
}

// NewStripeGateway creates a new Stripe gateway
func NewStripeGateway(config *StripeGatewayConfig) (*StripeGateway, error) {
	if config == nil {
		return nil, fmt.Errorf("stripe config is required")
	}
	if config.SecretKey == "" {
		return nil, fmt.Errorf("stripe secret key is required")
	}

	// Set Stripe API key globally
	stripe.Key = config.SecretKey

	return &StripeGateway{
		config: config,
	}, nil
}

func failGatewaySpan(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return classifyStripeError(err)
}

// CreateCheckoutSession opens a payment-mode checkout with one line item
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req *CheckoutSessionRequest) (*CheckoutSession, error) {
	if req == nil {
		return nil, fmt.Errorf("checkout session request is required")
	}

	ctx, span := telemetry.StartSpan(ctx, "gateway.stripe.create_checkout_session")
	defer span.End()

	span.SetAttributes(
		attribute.String("price_id", req.PriceID),
		attribute.String("booking_id", req.Metadata["booking_id"]),
	)

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{domain.PaymentMethodCard}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(req.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		Metadata:   req.Metadata,
	}
	params.Context = ctx

	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	if !req.ExpiresAt.IsZero() {
		params.ExpiresAt = stripe.Int64(req.ExpiresAt.Unix())
	}

	s, err := session.New(params)
	if err != nil {
		return nil, failGatewaySpan(span, err)
	}

	span.SetAttributes(attribute.String("session_id", s.ID))
	span.SetStatus(codes.Ok, "")
	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

// CreateProduct registers a product for an event
func (g *StripeGateway) CreateProduct(ctx context.Context, name, description string) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "gateway.stripe.create_product")
	defer span.End()

	params := &stripe.ProductParams{
		Name: stripe.String(name),
	}
	params.Context = ctx
	if description != "" {
		params.Description = stripe.String(description)
	}

	p, err := product.New(params)
	if err != nil {
		return "", failGatewaySpan(span, err)
	}

	span.SetAttributes(attribute.String("product_id", p.ID))
	span.SetStatus(codes.Ok, "")
	return p.ID, nil
}

// UpdateProduct changes a product's name and description
func (g *StripeGateway) UpdateProduct(ctx context.Context, productID, name, description string) error {
	ctx, span := telemetry.StartSpan(ctx, "gateway.stripe.update_product")
	defer span.End()

	span.SetAttributes(attribute.String("product_id", productID))

	params := &stripe.ProductParams{
		Name:        stripe.String(name),
		Description: stripe.String(description),
	}
	params.Context = ctx

	if _, err := product.Update(productID, params); err != nil {
		return failGatewaySpan(span, err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// ArchiveProduct deactivates a product
func (g *StripeGateway) ArchiveProduct(ctx context.Context, productID string) error {
	ctx, span := telemetry.StartSpan(ctx, "gateway.stripe.archive_product")
	defer span.End()

	span.SetAttributes(attribute.String("product_id", productID))

	params := &stripe.ProductParams{Active: stripe.Bool(false)}
	params.Context = ctx

	if _, err := product.Update(productID, params); err != nil {
		return failGatewaySpan(span, err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// CreatePrice attaches a one-off price to a product
func (g *StripeGateway) CreatePrice(ctx context.Context, productID string, unitAmount int64, currency string) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "gateway.stripe.create_price")
	defer span.End()

	span.SetAttributes(
		attribute.String("product_id", productID),
		attribute.Int64("unit_amount", unitAmount),
	)

	params := &stripe.PriceParams{
		Product:    stripe.String(productID),
		UnitAmount: stripe.Int64(unitAmount),
		Currency:   stripe.String(strings.ToLower(currency)),
	}
	params.Context = ctx

	p, err := price.New(params)
	if err != nil {
		return "", failGatewaySpan(span, err)
	}

	span.SetAttributes(attribute.String("price_id", p.ID))
	span.SetStatus(codes.Ok, "")
	return p.ID, nil
}

// ArchivePrice deactivates a price
func (g *StripeGateway) ArchivePrice(ctx context.Context, priceID string) error {
	ctx, span := telemetry.StartSpan(ctx, "gateway.stripe.archive_price")
	defer span.End()

	span.SetAttributes(attribute.String("price_id", priceID))

	params := &stripe.PriceParams{Active: stripe.Bool(false)}
	params.Context = ctx

	if _, err := price.Update(priceID, params); err != nil {
		return failGatewaySpan(span, err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// ParseWebhook verifies the Stripe-Signature header and decodes the event
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	return parseWebhook(payload, signature, g.config.WebhookSecret)
}

// Name returns the gateway name
func (g *StripeGateway) Name() string {
	return "stripe"
}

func parseWebhook(payload []byte, signature, secret string) (*WebhookEvent, error) {
	if signature == "" {
		return nil, domain.ErrInvalidSignature
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	}

	out := &WebhookEvent{
		ID:   event.ID,
		Type: string(event.Type),
	}

	if strings.HasPrefix(out.Type, "checkout.session.") && event.Data != nil {
		var s stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
		}
		out.Session = &SessionPayload{
			ID:          s.ID,
			Metadata:    s.Metadata,
			AmountTotal: s.AmountTotal,
		}
		if s.PaymentIntent != nil {
			out.Session.PaymentIntentID = s.PaymentIntent.ID
		}
	}

	return out, nil
}

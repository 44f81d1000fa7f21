package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Goh0809/Eventora-Backend/internal/domain"
	"github.com/Goh0809/Eventora-Backend/internal/gateway"
	"github.com/Goh0809/Eventora-Backend/internal/repository"
	"github.com/Goh0809/Eventora-Backend/pkg/saga"
	"github.com/google/uuid"
)

const (
	// CheckoutSagaName is the paid checkout saga
	CheckoutSagaName = "checkout-saga"

	StepCreatePendingBooking  = "create_pending_booking"
	StepCreateCheckoutSession = "create_checkout_session"
	StepAttachSession         = "attach_session"

	// checkoutSessionTTL is how long the hosted checkout stays open
	checkoutSessionTTL = 30 * time.Minute
)

// CheckoutSagaData contains the data passed through the checkout saga
type CheckoutSagaData struct {
	// Input data
	EventID       string
	UserID        string
	CustomerEmail string
	PriceID       string
	AmountTotal   int64
	Currency      string
	SuccessURL    string
	CancelURL     string
	StartedAt     time.Time

	// Step outputs
	BookingID   string
	SessionID   string
	CheckoutURL string
}

// ToMap converts CheckoutSagaData to map[string]interface{}
func (d *CheckoutSagaData) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"event_id":       d.EventID,
		"user_id":        d.UserID,
		"customer_email": d.CustomerEmail,
		"price_id":       d.PriceID,
		"amount_total":   d.AmountTotal,
		"currency":       d.Currency,
		"success_url":    d.SuccessURL,
		"cancel_url":     d.CancelURL,
		"started_at":     d.StartedAt,
		"booking_id":     d.BookingID,
		"session_id":     d.SessionID,
		"checkout_url":   d.CheckoutURL,
	}
}

// FromMap populates CheckoutSagaData from map[string]interface{}
func (d *CheckoutSagaData) FromMap(m map[string]interface{}) {
	d.EventID = saga.String(m, "event_id")
	d.UserID = saga.String(m, "user_id")
	d.CustomerEmail = saga.String(m, "customer_email")
	d.PriceID = saga.String(m, "price_id")
	d.Currency = saga.String(m, "currency")
	d.SuccessURL = saga.String(m, "success_url")
	d.CancelURL = saga.String(m, "cancel_url")
	d.BookingID = saga.String(m, "booking_id")
	d.SessionID = saga.String(m, "session_id")
	d.CheckoutURL = saga.String(m, "checkout_url")
	if v, ok := m["amount_total"].(int64); ok {
		d.AmountTotal = v
	}
	if v, ok := m["started_at"].(time.Time); ok {
		d.StartedAt = v
	}
}

// NewCheckoutSagaDefinition builds the paid checkout saga. A failing step
// deletes the pending booking; an open checkout session expires on its own.
func NewCheckoutSagaDefinition(bookings repository.BookingRepository, gw gateway.PaymentGateway) *saga.Definition {
	def := saga.NewDefinition(CheckoutSagaName).WithTimeout(time.Minute)

	def.AddStep(&saga.Step{
		Name: StepCreatePendingBooking,
		Execute: func(ctx context.Context, m map[string]interface{}) (map[string]interface{}, error) {
			var d CheckoutSagaData
			d.FromMap(m)

			booking := &domain.Booking{
				ID:            uuid.New().String(),
				EventID:       d.EventID,
				UserID:        d.UserID,
				AmountTotal:   d.AmountTotal,
				Currency:      d.Currency,
				PaymentStatus: domain.PaymentStatusPending,
				PaymentMethod: domain.PaymentMethodCard,
				CreatedAt:     d.StartedAt,
				UpdatedAt:     d.StartedAt,
			}
			if err := bookings.Create(ctx, booking); err != nil {
				return nil, fmt.Errorf("failed to create pending booking: %w", err)
			}
			return map[string]interface{}{"booking_id": booking.ID}, nil
		},
		Compensate: func(ctx context.Context, m map[string]interface{}) error {
			id := saga.String(m, "booking_id")
			if id == "" {
				return nil
			}
			return bookings.Delete(ctx, id)
		},
		Timeout: 10 * time.Second,
	})

	def.AddStep(&saga.Step{
		Name: StepCreateCheckoutSession,
		Execute: func(ctx context.Context, m map[string]interface{}) (map[string]interface{}, error) {
			var d CheckoutSagaData
			d.FromMap(m)

			session, err := gw.CreateCheckoutSession(ctx, &gateway.CheckoutSessionRequest{
				PriceID:       d.PriceID,
				SuccessURL:    d.SuccessURL,
				CancelURL:     d.CancelURL,
				CustomerEmail: d.CustomerEmail,
				ExpiresAt:     d.StartedAt.Add(checkoutSessionTTL),
				Metadata: map[string]string{
					"booking_id": d.BookingID,
					"user_id":    d.UserID,
					"event_id":   d.EventID,
				},
			})
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{
				"session_id":   session.ID,
				"checkout_url": session.URL,
			}, nil
		},
		Timeout: 20 * time.Second,
	})

	def.AddStep(&saga.Step{
		Name: StepAttachSession,
		Execute: func(ctx context.Context, m map[string]interface{}) (map[string]interface{}, error) {
			if err := bookings.AttachSession(ctx, saga.String(m, "booking_id"), saga.String(m, "session_id")); err != nil {
				return nil, fmt.Errorf("failed to attach checkout session: %w", err)
			}
			return nil, nil
		},
		Timeout: 10 * time.Second,
	})

	return def
}

package domain

import (
	"time"
)

// PaymentStatus represents the payment state of a booking
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusExpired PaymentStatus = "expired"
)

// PaymentMethodCard is the only method offered
const PaymentMethodCard = "card"

// Checkout statuses returned to the client
const (
	CheckoutStatusConfirmed = "confirmed"
	CheckoutStatusPending   = "pending"
)

// Booking is a ticket purchase attempt for one user and one event
type Booking struct {
	ID                    string        `json:"id"`
	EventID               string        `json:"event_id"`
	UserID                string        `json:"user_id"`
	AmountTotal           int64         `json:"amount_total"`
	Currency              string        `json:"currency"`
	PaymentStatus         PaymentStatus `json:"payment_status"`
	PaymentMethod         string        `json:"payment_method"`
	StripeSessionID       string        `json:"stripe_session_id"`
	StripePaymentIntentID string        `json:"stripe_payment_intent_id,omitempty"`
	CreatedAt             time.Time     `json:"created_at"`
	UpdatedAt             time.Time     `json:"updated_at"`
}

// IsPaid reports whether the booking has been settled
func (b *Booking) IsPaid() bool {
	return b.PaymentStatus == PaymentStatusPaid
}

// CanTransitionTo enforces the payment state machine.
// paid is terminal. expired may still become paid when a late payment lands.
func (b *Booking) CanTransitionTo(next PaymentStatus) bool {
	switch b.PaymentStatus {
	case PaymentStatusPending:
		return next == PaymentStatusPaid || next == PaymentStatusExpired
	case PaymentStatusExpired:
		return next == PaymentStatusPaid
	default:
		return false
	}
}

// BookingEventInfo is the event data shown alongside a booking
type BookingEventInfo struct {
	Title     string    `json:"title"`
	Location  string    `json:"location"`
	EventDate time.Time `json:"event_date"`
	ImageURL  string    `json:"image_url"`
}

// BuyerInfo is the profile data shown alongside a booking
type BuyerInfo struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// BookingWithEvent is a row of a user's booking history
type BookingWithEvent struct {
	Booking
	Event BookingEventInfo `json:"event"`
}

// BookingDetail is a booking with its full event and buyer
type BookingDetail struct {
	Booking
	Event   *Event    `json:"event"`
	Profile BuyerInfo `json:"profile"`
}

// EventParticipant is a paid attendee as seen by the organizer
type EventParticipant struct {
	BookingID   string    `json:"booking_id"`
	UserID      string    `json:"user_id"`
	EventTitle  string    `json:"event_title"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	AmountTotal int64     `json:"amount_total"`
	Currency    string    `json:"currency"`
	PaidAt      time.Time `json:"created_at"`
}

// BookingStatus answers whether a user holds a booking for an event
type BookingStatus struct {
	HasBooked bool    `json:"has_booked"`
	BookingID *string `json:"booking_id"`
	Status    *string `json:"status"`
}

// CheckoutResult is what InitiateCheckout hands back to the client
type CheckoutResult struct {
	BookingID   string  `json:"booking_id"`
	CheckoutURL *string `json:"checkout_url"`
	Status      string  `json:"status"`
	Message     string  `json:"message"`
}

// BookingEventType names a booking lifecycle event
type BookingEventType string

const (
	BookingEventConfirmed BookingEventType = "booking.confirmed"
	BookingEventExpired   BookingEventType = "booking.expired"
)

// BookingEvent is published for downstream consumers
type BookingEvent struct {
	EventID     string           `json:"event_id"`
	Type        BookingEventType `json:"type"`
	OccurredAt  time.Time        `json:"occurred_at"`
	BookingID   string           `json:"booking_id"`
	UserID      string           `json:"user_id"`
	TicketEvent string           `json:"ticket_event_id"`
	AmountTotal int64            `json:"amount_total"`
	Currency    string           `json:"currency"`
	Status      PaymentStatus    `json:"payment_status"`
}

// NewBookingEvent builds a lifecycle event from a booking
func NewBookingEvent(eventType BookingEventType, b *Booking, eventID string, at time.Time) *BookingEvent {
	return &BookingEvent{
		EventID:     eventID,
		Type:        eventType,
		OccurredAt:  at,
		BookingID:   b.ID,
		UserID:      b.UserID,
		TicketEvent: b.EventID,
		AmountTotal: b.AmountTotal,
		Currency:    b.Currency,
		Status:      b.PaymentStatus,
	}
}

// Key partitions events by ticketed event so per-event ordering holds
func (e *BookingEvent) Key() string {
	return e.TicketEvent
}

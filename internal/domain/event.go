package domain

import (
	"math"
	"strings"
	"time"
)

// EventStatus represents the publication state of an event
type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusCancelled EventStatus = "cancelled"
)

// DefaultCurrency is applied to events created without one
const DefaultCurrency = "MYR"

// IsValid reports whether s is a known status
func (s EventStatus) IsValid() bool {
	switch s {
	case EventStatusDraft, EventStatusPublished, EventStatusCancelled:
		return true
	}
	return false
}

// Event is a listed, bookable occasion
type Event struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	Location        string      `json:"location"`
	EventDate       time.Time   `json:"event_date"`
	EventEndDate    *time.Time  `json:"event_end_date"`
	MaxSlots        int         `json:"max_slots"`
	IsPaid          bool        `json:"is_paid"`
	TicketPrice     float64     `json:"ticket_price"`
	Currency        string      `json:"currency"`
	Status          EventStatus `json:"event_status"`
	ImageURL        string      `json:"image_url"`
	StripeProductID string      `json:"stripe_product_id"`
	StripePriceID   string      `json:"stripe_price_id"`
	CreatedBy       string      `json:"created_by"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// RequiresPayment reports whether booking goes through checkout
func (e *Event) RequiresPayment() bool {
	return e.IsPaid && e.TicketPrice > 0
}

// AmountMinor is the ticket price in minor currency units
func (e *Event) AmountMinor() int64 {
	return ToMinorUnits(e.TicketPrice)
}

// BookingCurrency is the lowercase ISO code used for gateway calls and booking rows
func (e *Event) BookingCurrency() string {
	if e.Currency == "" {
		return "myr"
	}
	return strings.ToLower(e.Currency)
}

// ToMinorUnits converts a decimal amount to cents
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromMinorUnits converts cents to a decimal amount
func FromMinorUnits(amount int64) float64 {
	return float64(amount) / 100
}

// EventSummary is an event as listed, with booking count and categories
type EventSummary struct {
	Event
	CurrentBookings int        `json:"current_bookings"`
	Categories      []Category `json:"categories"`
}

// Organizer names the creator of an event
type Organizer struct {
	FullName string `json:"full_name"`
}

// EventDetail adds the primary category and organizer to EventSummary
type EventDetail struct {
	EventSummary
	Category  *Category `json:"category"`
	Organizer Organizer `json:"organizer"`
}

// UnknownOrganizer is shown when the creator has no profile
const UnknownOrganizer = "Unknown Organizer"

// EventFilter narrows the public listing
type EventFilter struct {
	Search     string
	CategoryID string
	CreatedBy  string
	Page       int
	Size       int
}

// Offset converts the page into a row offset
func (f *EventFilter) Offset() int {
	return (f.Page - 1) * f.Size
}

// EventUpdate carries only the fields a caller wants to change
type EventUpdate struct {
	Title        *string
	Description  *string
	Location     *string
	EventDate    *time.Time
	EventEndDate *time.Time
	MaxSlots     *int
	CategoryID   *string
	IsPaid       *bool
	TicketPrice  *float64
	Currency     *string
	Status       *EventStatus
	ImageURL     *string
}

// TouchesPricing reports whether the gateway product or price may need to change
func (u *EventUpdate) TouchesPricing() bool {
	return u.IsPaid != nil || u.TicketPrice != nil || u.Currency != nil || u.Title != nil || u.Description != nil
}

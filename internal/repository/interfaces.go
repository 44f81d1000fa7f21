package repository

import (
	"context"
	"time"

	"github.com/Goh0809/Eventora-Backend/internal/domain"
)

// EventRepository defines the interface for event data access
type EventRepository interface {
	// Create inserts a new event and fills in its server-side timestamps
	Create(ctx context.Context, event *domain.Event) error
	// GetByID retrieves an event by ID
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	// GetOwned retrieves an event only if it was created by userID
	GetOwned(ctx context.Context, id, userID string) (*domain.Event, error)
	// ListPublished lists published events matching the filter, newest first, with the total count
	ListPublished(ctx context.Context, filter *domain.EventFilter) ([]*domain.Event, int, error)
	// ListByOrganizer lists every event created by userID
	ListByOrganizer(ctx context.Context, userID string) ([]*domain.Event, error)
	// SetMedia patches the image URL and gateway identifiers
	SetMedia(ctx context.Context, id, imageURL, productID, priceID string) error
	// Update persists every mutable column of the event
	Update(ctx context.Context, event *domain.Event) error
	// Delete removes an event by ID
	Delete(ctx context.Context, id string) error
}

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	// List returns every category ordered by name
	List(ctx context.Context) ([]domain.Category, error)
	// ForEvents returns the categories mapped to each of the given events
	ForEvents(ctx context.Context, eventIDs []string) (map[string][]domain.Category, error)
	// PrimaryFor returns the first category mapped to an event, or nil
	PrimaryFor(ctx context.Context, eventID string) (*domain.Category, error)
	// AssignToEvent maps an event to a category
	AssignToEvent(ctx context.Context, eventID, categoryID string) error
	// ReplaceForEvent swaps an event's mapping for a single category
	ReplaceForEvent(ctx context.Context, eventID, categoryID string) error
}

// BookingRepository defines the interface for booking data access
type BookingRepository interface {
	// Create inserts a new booking
	Create(ctx context.Context, booking *domain.Booking) error
	// GetByID retrieves a booking by ID
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	// Delete removes a booking by ID
	Delete(ctx context.Context, id string) error
	// AttachSession stores the checkout session id on a booking
	AttachSession(ctx context.Context, id, sessionID string) error
	// MarkPaid settles a booking unless it is already paid; false means nothing changed
	MarkPaid(ctx context.Context, id, paymentIntentID string, amountTotal int64) (bool, error)
	// MarkExpired expires a booking only while it is still pending
	MarkExpired(ctx context.Context, id string) (bool, error)
	// ExpirePending expires up to limit pending bookings created before cutoff and returns them
	ExpirePending(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Booking, error)
	// CountPendingSince counts pending bookings for an event created at or after since
	CountPendingSince(ctx context.Context, eventID string, since time.Time) (int, error)
	// CountPaid counts paid bookings for an event
	CountPaid(ctx context.Context, eventID string) (int, error)
	// CountPaidByEvents counts paid bookings per event
	CountPaidByEvents(ctx context.Context, eventIDs []string) (map[string]int, error)
	// ExistsForEvent reports whether any booking references the event
	ExistsForEvent(ctx context.Context, eventID string) (bool, error)
	// FindPaid returns the user's paid booking for an event
	FindPaid(ctx context.Context, userID, eventID string) (*domain.Booking, error)
	// ListByUser lists a user's bookings with event info, newest first
	ListByUser(ctx context.Context, userID string) ([]*domain.BookingWithEvent, error)
	// GetDetail retrieves a booking with its event and buyer
	GetDetail(ctx context.Context, id string) (*domain.BookingDetail, error)
	// ListPaidParticipants lists paid bookings for an event with buyer info, newest first
	ListPaidParticipants(ctx context.Context, eventID string) ([]*domain.EventParticipant, error)
	// ListPaidSales lists paid bookings across events with buyer info, newest first
	ListPaidSales(ctx context.Context, eventIDs []string) ([]*domain.SaleRecord, error)
}

// ParticipantRepository defines the interface for participant data access
type ParticipantRepository interface {
	// Upsert registers a user for an event, returning the existing row on conflict
	Upsert(ctx context.Context, userID, eventID string) (*domain.Participant, error)
	// Count counts participants of an event
	Count(ctx context.Context, eventID string) (int, error)
	// Exists reports whether the user is a participant of the event
	Exists(ctx context.Context, userID, eventID string) (bool, error)
}

// ProfileRepository defines the interface for profile data access
type ProfileRepository interface {
	// GetByID retrieves a profile by user ID
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	// Update applies a partial update and returns the new row
	Update(ctx context.Context, id string, update *domain.ProfileUpdate, at time.Time) (*domain.Profile, error)
	// Touch bumps updated_at
	Touch(ctx context.Context, id string, at time.Time) error
}

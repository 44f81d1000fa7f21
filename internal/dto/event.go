package dto

import (
	"time"

	"github.com/Goh0809/Eventora-Backend/internal/domain"
)

// CreateEventRequest is the multipart form for a new event
type CreateEventRequest struct {
	Title        string    `form:"title" binding:"required,min=3"`
	Description  string    `form:"description"`
	Location     string    `form:"location" binding:"required"`
	EventDate    time.Time `form:"event_date" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	EventEndDate time.Time `form:"event_end_date" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	MaxSlots     int       `form:"max_slots" binding:"required,gt=0"`
	IsPaid       bool      `form:"is_paid"`
	TicketPrice  float64   `form:"ticket_price" binding:"gte=0"`
	Currency     string    `form:"currency"`
	CategoryID   string    `form:"category_id" binding:"required"`
	EventStatus  string    `form:"event_status"`
}

// UpdateEventRequest is a partial event update. Absent fields are left alone.
type UpdateEventRequest struct {
	Title        *string    `json:"title,omitempty"`
	Description  *string    `json:"description,omitempty"`
	EventDate    *time.Time `json:"event_date,omitempty"`
	EventEndDate *time.Time `json:"event_end_date,omitempty"`
	MaxSlots     *int       `json:"max_slots,omitempty" binding:"omitempty,gt=0"`
	Location     *string    `json:"location,omitempty"`
	CategoryID   *string    `json:"category_id,omitempty"`
	IsPaid       *bool      `json:"is_paid,omitempty"`
	TicketPrice  *float64   `json:"ticket_price,omitempty" binding:"omitempty,gte=0"`
	Currency     *string    `json:"currency,omitempty"`
	EventStatus  *string    `json:"event_status,omitempty"`
	ImageURL     *string    `json:"image_url,omitempty"`
}

// ToDomain converts the request to a domain update
func (r *UpdateEventRequest) ToDomain() *domain.EventUpdate {
	u := &domain.EventUpdate{
		Title:        r.Title,
		Description:  r.Description,
		Location:     r.Location,
		EventDate:    r.EventDate,
		EventEndDate: r.EventEndDate,
		MaxSlots:     r.MaxSlots,
		CategoryID:   r.CategoryID,
		IsPaid:       r.IsPaid,
		TicketPrice:  r.TicketPrice,
		Currency:     r.Currency,
		ImageURL:     r.ImageURL,
	}
	if r.EventStatus != nil {
		s := domain.EventStatus(*r.EventStatus)
		u.Status = &s
	}
	return u
}

// ListEventsQuery holds list query parameters
type ListEventsQuery struct {
	Page       int    `form:"page,default=1" binding:"gte=1"`
	Size       int    `form:"size,default=9" binding:"gte=1,lte=50"`
	Search     string `form:"search"`
	CategoryID string `form:"category_id"`
	CreatedBy  string `form:"created_by"`
}

// EventListResponse is a page of published events
type EventListResponse struct {
	Items []*domain.EventSummary `json:"items"`
	Total int                    `json:"total"`
	Page  int                    `json:"page"`
	Size  int                    `json:"size"`
}

// EventUpdateResponse reports the outcome of an update
type EventUpdateResponse struct {
	Message string        `json:"message"`
	Updates *domain.Event `json:"updates"`
}

// UploadResponse locates an uploaded object
type UploadResponse struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}

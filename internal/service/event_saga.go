package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Goh0809/Eventora-Backend/internal/domain"
	"github.com/Goh0809/Eventora-Backend/internal/gateway"
	"github.com/Goh0809/Eventora-Backend/internal/repository"
	"github.com/Goh0809/Eventora-Backend/internal/storage"
	"github.com/Goh0809/Eventora-Backend/pkg/saga"
)

const (
	// CreateEventSagaName is the event creation saga
	CreateEventSagaName = "create-event-saga"

	StepInsertEvent    = "insert_event"
	StepUploadImage    = "upload_event_image"
	StepCreateProduct  = "create_gateway_product"
	StepSetMedia       = "set_event_media"
	StepAssignCategory = "assign_category"
)

// CreateEventSagaData contains the data passed through the event creation saga
type CreateEventSagaData struct {
	Event      *domain.Event
	Image      *storage.File
	CategoryID string

	// Step outputs
	ImageURL  string
	ProductID string
	PriceID   string
}

// ToMap converts CreateEventSagaData to map[string]interface{}
func (d *CreateEventSagaData) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"event":       d.Event,
		"image":       d.Image,
		"category_id": d.CategoryID,
		"event_id":    d.Event.ID,
		"image_url":   d.ImageURL,
		"product_id":  d.ProductID,
		"price_id":    d.PriceID,
	}
}

// FromMap populates CreateEventSagaData from map[string]interface{}
func (d *CreateEventSagaData) FromMap(m map[string]interface{}) {
	if v, ok := m["event"].(*domain.Event); ok {
		d.Event = v
	}
	if v, ok := m["image"].(*storage.File); ok {
		d.Image = v
	}
	d.CategoryID = saga.String(m, "category_id")
	d.ImageURL = saga.String(m, "image_url")
	d.ProductID = saga.String(m, "product_id")
	d.PriceID = saga.String(m, "price_id")
}

// eventImageUploader stores an event banner and returns its public URL and path
type eventImageUploader func(ctx context.Context, eventID string, file *storage.File) (string, string, error)

// NewCreateEventSagaDefinition builds the event creation saga. Only the row insert is
// compensated; an uploaded image or gateway product is left behind on failure.
func NewCreateEventSagaDefinition(
	events repository.EventRepository,
	categories repository.CategoryRepository,
	gw gateway.PaymentGateway,
	upload eventImageUploader,
) *saga.Definition {
	def := saga.NewDefinition(CreateEventSagaName).WithTimeout(2 * time.Minute)

	def.AddStep(&saga.Step{
		Name: StepInsertEvent,
		Execute: func(ctx context.Context, m map[string]interface{}) (map[string]interface{}, error) {
			var d CreateEventSagaData
			d.FromMap(m)
			if err := events.Create(ctx, d.Event); err != nil {
				return nil, err
			}
			return nil, nil
		},
		Compensate: func(ctx context.Context, m map[string]interface{}) error {
			return events.Delete(ctx, saga.String(m, "event_id"))
		},
		Timeout: 10 * time.Second,
	})

	def.AddStep(&saga.Step{
		Name: StepUploadImage,
		Execute: func(ctx context.Context, m map[string]interface{}) (map[string]interface{}, error) {
			var d CreateEventSagaData
			d.FromMap(m)
			if d.Image == nil {
				return nil, nil
			}
			url, _, err := upload(ctx, d.Event.ID, d.Image)
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{"image_url": url}, nil
		},
		Timeout: 30 * time.Second,
	})

	def.AddStep(&saga.Step{
		Name: StepCreateProduct,
		Execute: func(ctx context.Context, m map[string]interface{}) (map[string]interface{}, error) {
			var d CreateEventSagaData
			d.FromMap(m)
			if !d.Event.RequiresPayment() {
				return nil, nil
			}
			productID, priceID, err := createProductAndPrice(ctx, gw, d.Event)
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{"product_id": productID, "price_id": priceID}, nil
		},
		Timeout: 20 * time.Second,
	})

	def.AddStep(&saga.Step{
		Name: StepSetMedia,
		Execute: func(ctx context.Context, m map[string]interface{}) (map[string]interface{}, error) {
			var d CreateEventSagaData
			d.FromMap(m)
			if err := events.SetMedia(ctx, d.Event.ID, d.ImageURL, d.ProductID, d.PriceID); err != nil {
				return nil, err
			}
			d.Event.ImageURL = d.ImageURL
			d.Event.StripeProductID = d.ProductID
			d.Event.StripePriceID = d.PriceID
			return nil, nil
		},
		Timeout: 10 * time.Second,
	})

	def.AddStep(&saga.Step{
		Name: StepAssignCategory,
		Execute: func(ctx context.Context, m map[string]interface{}) (map[string]interface{}, error) {
			var d CreateEventSagaData
			d.FromMap(m)
			if d.CategoryID == "" {
				return nil, nil
			}
			if err := categories.AssignToEvent(ctx, d.Event.ID, d.CategoryID); err != nil {
				return nil, fmt.Errorf("failed to assign category: %w", err)
			}
			return nil, nil
		},
		Timeout: 10 * time.Second,
	})

	return def
}

// createProductAndPrice registers the event as a gateway product with a one-off price
func createProductAndPrice(ctx context.Context, gw gateway.PaymentGateway, event *domain.Event) (string, string, error) {
	productID, err := gw.CreateProduct(ctx, event.Title, event.Description)
	if err != nil {
		return "", "", err
	}
	priceID, err := gw.CreatePrice(ctx, productID, event.AmountMinor(), event.BookingCurrency())
	if err != nil {
		return productID, "", err
	}
	return productID, priceID, nil
}

package service

import (
	"context"
	"strings"

	"github.com/Goh0809/Eventora-Backend/internal/domain"
	"github.com/Goh0809/Eventora-Backend/internal/dto"
	"github.com/Goh0809/Eventora-Backend/internal/gateway"
	"github.com/Goh0809/Eventora-Backend/internal/repository"
	"github.com/Goh0809/Eventora-Backend/internal/storage"
	"github.com/Goh0809/Eventora-Backend/pkg/clock"
	"github.com/Goh0809/Eventora-Backend/pkg/logger"
	"github.com/Goh0809/Eventora-Backend/pkg/saga"
	"github.com/Goh0809/Eventora-Backend/pkg/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// EventService defines the interface for event catalog business logic
type EventService interface {
	// Create inserts an event, uploads its banner and registers a gateway product when paid
	Create(ctx context.Context, userID string, req *dto.CreateEventRequest, image *storage.File) (*domain.Event, error)
	// List lists published events
	List(ctx context.Context, query *dto.ListEventsQuery) (*dto.EventListResponse, error)
	// Get retrieves an event with its category, booking count and organizer
	Get(ctx context.Context, id string) (*domain.EventDetail, error)
	// Update applies a partial update to an event owned by userID
	Update(ctx context.Context, id, userID string, req *dto.UpdateEventRequest) (*dto.EventUpdateResponse, error)
	// Delete removes an event owned by userID that has no bookings
	Delete(ctx context.Context, id, userID string) (*dto.MessageResponse, error)
	// UploadImage stores a banner for an event without touching the row
	UploadImage(ctx context.Context, eventID string, file *storage.File) (*dto.UploadResponse, error)
}

// EventServiceConfig contains configuration for event service
type EventServiceConfig struct {
	ImageBucket string
	ImageFolder string
	Clock       clock.Clock
	Logger      *logger.Logger
}

type eventService struct {
	eventRepo    repository.EventRepository
	categoryRepo repository.CategoryRepository
	bookingRepo  repository.BookingRepository
	profileRepo  repository.ProfileRepository
	gateway      gateway.PaymentGateway
	store        storage.ObjectStore
	orchestrator *saga.Orchestrator
	bucket       string
	folder       string
	clock        clock.Clock
	log          *logger.Logger
}

// NewEventService creates a new EventService and registers the creation saga
func NewEventService(
	eventRepo repository.EventRepository,
	categoryRepo repository.CategoryRepository,
	bookingRepo repository.BookingRepository,
	profileRepo repository.ProfileRepository,
	gw gateway.PaymentGateway,
	store storage.ObjectStore,
	orchestrator *saga.Orchestrator,
	cfg *EventServiceConfig,
) (EventService, error) {
	s := &eventService{
		eventRepo:    eventRepo,
		categoryRepo: categoryRepo,
		bookingRepo:  bookingRepo,
		profileRepo:  profileRepo,
		gateway:      gw,
		store:        store,
		orchestrator: orchestrator,
		bucket:       "event-images",
		folder:       "banners",
		clock:        clock.NewSystem(),
		log:          logger.Get(),
	}
	if cfg != nil {
		if cfg.ImageBucket != "" {
			s.bucket = cfg.ImageBucket
		}
		if cfg.ImageFolder != "" {
			s.folder = cfg.ImageFolder
		}
		if cfg.Clock != nil {
			s.clock = cfg.Clock
		}
		if cfg.Logger != nil {
			s.log = cfg.Logger
		}
	}
	if s.orchestrator == nil {
		s.orchestrator = saga.NewOrchestrator(&saga.OrchestratorConfig{Logger: saga.NewZapLogger(s.log.Logger)})
	}
	def := NewCreateEventSagaDefinition(eventRepo, categoryRepo, gw, s.uploadImage)
	if err := s.orchestrator.RegisterDefinition(def); err != nil {
		return nil, err
	}
	s.log = s.log.Named("event")
	return s, nil
}

// Create inserts an event, uploads its banner and registers a gateway product when paid
func (s *eventService) Create(ctx context.Context, userID string, req *dto.CreateEventRequest, image *storage.File) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.create")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", userID))

	if req == nil {
		span.SetStatus(codes.Error, "missing request")
		return nil, domain.Validation("Event details are required")
	}
	if image != nil {
		if err := storage.ValidateImage(image); err != nil {
			span.SetStatus(codes.Error, "invalid image")
			return nil, err
		}
	}

	status := domain.EventStatusPublished
	if req.EventStatus != "" {
		status = domain.EventStatus(strings.ToLower(req.EventStatus))
	}
	if !status.IsValid() {
		span.SetStatus(codes.Error, "invalid status")
		return nil, domain.ErrInvalidEventStatus
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	now := s.clock.Now()
	endDate := req.EventEndDate
	event := &domain.Event{
		ID:           uuid.New().String(),
		Title:        req.Title,
		Description:  req.Description,
		Location:     req.Location,
		EventDate:    req.EventDate,
		EventEndDate: &endDate,
		MaxSlots:     req.MaxSlots,
		IsPaid:       req.IsPaid,
		TicketPrice:  req.TicketPrice,
		Currency:     currency,
		Status:       status,
		CreatedBy:    userID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if !event.IsPaid {
		event.TicketPrice = 0
	}

	span.SetAttributes(attribute.String("event_id", event.ID), attribute.Bool("paid", event.RequiresPayment()))

	data := &CreateEventSagaData{Event: event, Image: image, CategoryID: req.CategoryID}
	if _, err := s.orchestrator.Execute(ctx, CreateEventSagaName, data.ToMap()); err != nil {
		if step, ok := saga.FailedStep(err); ok {
			s.log.WithContext(ctx).Warn("Event creation rolled back",
				zap.String("event_id", event.ID), zap.String("step", step), zap.Error(err))
		}
		telemetry.FailSpan(span, err, "create saga failed")
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return event, nil
}

// List lists published events
func (s *eventService) List(ctx context.Context, query *dto.ListEventsQuery) (*dto.EventListResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.list")
	defer span.End()

	filter := &domain.EventFilter{Page: 1, Size: 9}
	if query != nil {
		filter.Search = strings.TrimSpace(query.Search)
		filter.CategoryID = query.CategoryID
		filter.CreatedBy = query.CreatedBy
		if query.Page > 0 {
			filter.Page = query.Page
		}
		if query.Size > 0 {
			filter.Size = query.Size
		}
	}
	if filter.Size > 50 {
		filter.Size = 50
	}

	span.SetAttributes(attribute.Int("page", filter.Page), attribute.Int("size", filter.Size))

	events, total, err := s.eventRepo.ListPublished(ctx, filter)
	if err != nil {
		telemetry.FailSpan(span, err, "list failed")
		return nil, err
	}

	items, err := s.summarize(ctx, events)
	if err != nil {
		telemetry.FailSpan(span, err, "summarize failed")
		return nil, err
	}

	span.SetAttributes(attribute.Int("total", total))
	span.SetStatus(codes.Ok, "")
	return &dto.EventListResponse{Items: items, Total: total, Page: filter.Page, Size: filter.Size}, nil
}

func (s *eventService) summarize(ctx context.Context, events []*domain.Event) ([]*domain.EventSummary, error) {
	items := make([]*domain.EventSummary, 0, len(events))
	if len(events) == 0 {
		return items, nil
	}

	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}

	counts, err := s.bookingRepo.CountPaidByEvents(ctx, ids)
	if err != nil {
		return nil, err
	}
	categories, err := s.categoryRepo.ForEvents(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, e := range events {
		cats := categories[e.ID]
		if cats == nil {
			cats = []domain.Category{}
		}
		items = append(items, &domain.EventSummary{
			Event:           *e,
			CurrentBookings: counts[e.ID],
			Categories:      cats,
		})
	}
	return items, nil
}

// Get retrieves an event with its category, booking count and organizer
func (s *eventService) Get(ctx context.Context, id string) (*domain.EventDetail, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.get")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id))

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		telemetry.FailSpan(span, err, "lookup failed")
		return nil, err
	}

	category, err := s.categoryRepo.PrimaryFor(ctx, id)
	if err != nil {
		telemetry.FailSpan(span, err, "category lookup failed")
		return nil, err
	}

	booked, err := s.bookingRepo.CountPaid(ctx, id)
	if err != nil {
		telemetry.FailSpan(span, err, "count failed")
		return nil, err
	}

	organizer := domain.Organizer{FullName: domain.UnknownOrganizer}
	if profile, err := s.profileRepo.GetByID(ctx, event.CreatedBy); err == nil && profile.FullName != "" {
		organizer.FullName = profile.FullName
	}

	categories := []domain.Category{}
	if category != nil {
		categories = append(categories, *category)
	}

	span.SetStatus(codes.Ok, "")
	return &domain.EventDetail{
		EventSummary: domain.EventSummary{Event: *event, CurrentBookings: booked, Categories: categories},
		Category:     category,
		Organizer:    organizer,
	}, nil
}

// Delete removes an event owned by userID that has no bookings
func (s *eventService) Delete(ctx context.Context, id, userID string) (*dto.MessageResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.delete")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id), attribute.String("user_id", userID))

	event, err := s.eventRepo.GetOwned(ctx, id, userID)
	if err != nil {
		telemetry.FailSpan(span, err, "lookup failed")
		return nil, err
	}

	hasBookings, err := s.bookingRepo.ExistsForEvent(ctx, id)
	if err != nil {
		telemetry.FailSpan(span, err, "booking check failed")
		return nil, err
	}
	if hasBookings {
		span.SetStatus(codes.Error, "has bookings")
		return nil, domain.ErrEventHasBookings
	}

	log := s.log.WithContext(ctx).With(zap.String("event_id", id))
	s.archiveGatewayItems(ctx, log, event)

	if p := storage.PathFromURL(event.ImageURL, s.bucket); p != "" {
		if err := s.store.Remove(ctx, s.bucket, p); err != nil {
			log.Warn("Failed to remove event image", zap.String("path", p), zap.Error(err))
		}
	}

	if err := s.eventRepo.Delete(ctx, id); err != nil {
		telemetry.FailSpan(span, err, "delete failed")
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &dto.MessageResponse{Message: "Event Successfully Deleted"}, nil
}

// archiveGatewayItems deactivates the price then the product; failures are only logged
func (s *eventService) archiveGatewayItems(ctx context.Context, log *logger.Logger, event *domain.Event) {
	if event.StripePriceID != "" {
		if err := s.gateway.ArchivePrice(ctx, event.StripePriceID); err != nil {
			log.Warn("Failed to archive price", zap.String("price_id", event.StripePriceID), zap.Error(err))
		}
	}
	if event.StripeProductID != "" {
		if err := s.gateway.ArchiveProduct(ctx, event.StripeProductID); err != nil {
			log.Warn("Failed to archive product", zap.String("product_id", event.StripeProductID), zap.Error(err))
		}
	}
}

// Update applies a partial update to an event owned by userID
func (s *eventService) Update(ctx context.Context, id, userID string, req *dto.UpdateEventRequest) (*dto.EventUpdateResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.update")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id), attribute.String("user_id", userID))

	current, err := s.eventRepo.GetOwned(ctx, id, userID)
	if err != nil {
		telemetry.FailSpan(span, err, "lookup failed")
		return nil, err
	}
	if req == nil {
		req = &dto.UpdateEventRequest{}
	}
	update := req.ToDomain()
	if update.Status != nil && !update.Status.IsValid() {
		span.SetStatus(codes.Error, "invalid status")
		return nil, domain.ErrInvalidEventStatus
	}

	old := *current
	next := *current
	log := s.log.WithContext(ctx).With(zap.String("event_id", id))
	changed := applyEventFields(&next, update)

	if update.ImageURL != nil && *update.ImageURL != old.ImageURL {
		if p := storage.PathFromURL(old.ImageURL, s.bucket); p != "" {
			if err := s.store.Remove(ctx, s.bucket, p); err != nil {
				log.Warn("Failed to remove replaced image", zap.String("path", p), zap.Error(err))
			}
		}
		next.ImageURL = *update.ImageURL
		changed = true
	}

	if update.CategoryID != nil && *update.CategoryID != "" {
		primary, err := s.categoryRepo.PrimaryFor(ctx, id)
		if err != nil {
			telemetry.FailSpan(span, err, "category lookup failed")
			return nil, err
		}
		if primary == nil || primary.ID != *update.CategoryID {
			if err := s.categoryRepo.ReplaceForEvent(ctx, id, *update.CategoryID); err != nil {
				telemetry.FailSpan(span, err, "category replace failed")
				return nil, err
			}
			changed = true
		}
	}

	if update.TouchesPricing() {
		pricingChanged, err := s.syncPricing(ctx, log, &old, &next)
		if err != nil {
			telemetry.FailSpan(span, err, "pricing sync failed")
			return nil, err
		}
		changed = changed || pricingChanged
	}

	if !changed {
		span.SetStatus(codes.Ok, "")
		return &dto.EventUpdateResponse{Message: "No changes detected", Updates: &old}, nil
	}

	next.UpdatedAt = s.clock.Now()
	if err := s.eventRepo.Update(ctx, &next); err != nil {
		telemetry.FailSpan(span, err, "update failed")
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &dto.EventUpdateResponse{Message: "Event Updated Successfully", Updates: &next}, nil
}

// applyEventFields copies the plain columns of an update and reports whether any differ
func applyEventFields(e *domain.Event, u *domain.EventUpdate) bool {
	changed := false
	setString := func(dst *string, src *string) {
		if src != nil && *dst != *src {
			*dst = *src
			changed = true
		}
	}

	setString(&e.Title, u.Title)
	setString(&e.Description, u.Description)
	setString(&e.Location, u.Location)
	if u.Currency != nil {
		c := strings.ToUpper(strings.TrimSpace(*u.Currency))
		setString(&e.Currency, &c)
	}
	if u.EventDate != nil && !e.EventDate.Equal(*u.EventDate) {
		e.EventDate = *u.EventDate
		changed = true
	}
	if u.EventEndDate != nil && (e.EventEndDate == nil || !e.EventEndDate.Equal(*u.EventEndDate)) {
		end := *u.EventEndDate
		e.EventEndDate = &end
		changed = true
	}
	if u.MaxSlots != nil && e.MaxSlots != *u.MaxSlots {
		e.MaxSlots = *u.MaxSlots
		changed = true
	}
	if u.IsPaid != nil && e.IsPaid != *u.IsPaid {
		e.IsPaid = *u.IsPaid
		changed = true
	}
	if u.TicketPrice != nil && e.TicketPrice != *u.TicketPrice {
		e.TicketPrice = *u.TicketPrice
		changed = true
	}
	if u.Status != nil && e.Status != *u.Status {
		e.Status = *u.Status
		changed = true
	}
	return changed
}

// syncPricing moves the gateway product and price from old's state to next's.
// It runs after the plain fields are applied to next.
func (s *eventService) syncPricing(ctx context.Context, log *logger.Logger, old, next *domain.Event) (bool, error) {
	priceChanged := old.TicketPrice != next.TicketPrice || old.Currency != next.Currency
	textChanged := old.Title != next.Title || old.Description != next.Description

	switch {
	case old.IsPaid && !next.IsPaid:
		s.archiveGatewayItems(ctx, log, old)
		next.StripePriceID = ""
		next.StripeProductID = ""
		next.TicketPrice = 0
		return true, nil

	case !old.IsPaid && next.IsPaid:
		if !next.RequiresPayment() {
			return false, nil
		}
		productID, priceID, err := createProductAndPrice(ctx, s.gateway, next)
		if err != nil {
			return false, err
		}
		next.StripeProductID, next.StripePriceID = productID, priceID
		return true, nil

	case next.IsPaid && priceChanged:
		if !next.RequiresPayment() {
			return false, nil
		}
		if next.StripeProductID != "" {
			if old.StripePriceID != "" {
				if err := s.gateway.ArchivePrice(ctx, old.StripePriceID); err != nil {
					log.Warn("Failed to archive old price", zap.String("price_id", old.StripePriceID), zap.Error(err))
				}
			}
			priceID, err := s.gateway.CreatePrice(ctx, next.StripeProductID, next.AmountMinor(), next.BookingCurrency())
			if err == nil {
				next.StripePriceID = priceID
				if textChanged {
					s.updateProductText(ctx, log, next)
				}
				return true, nil
			}
			log.Warn("Failed to price existing product, creating a new one", zap.Error(err))
		}
		productID, priceID, err := createProductAndPrice(ctx, s.gateway, next)
		if err != nil {
			return false, err
		}
		next.StripeProductID, next.StripePriceID = productID, priceID
		return true, nil

	case next.IsPaid && textChanged && next.StripeProductID != "":
		s.updateProductText(ctx, log, next)
		return true, nil
	}

	return false, nil
}

func (s *eventService) updateProductText(ctx context.Context, log *logger.Logger, event *domain.Event) {
	if err := s.gateway.UpdateProduct(ctx, event.StripeProductID, event.Title, event.Description); err != nil {
		log.Warn("Failed to update product", zap.String("product_id", event.StripeProductID), zap.Error(err))
	}
}

// UploadImage stores a banner for an event without touching the row
func (s *eventService) UploadImage(ctx context.Context, eventID string, file *storage.File) (*dto.UploadResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.upload_image")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	if eventID == "" {
		span.SetStatus(codes.Error, "missing event id")
		return nil, domain.Validation("event_id is required")
	}
	if err := storage.ValidateImage(file); err != nil {
		span.SetStatus(codes.Error, "invalid image")
		return nil, err
	}

	url, objectPath, err := s.uploadImage(ctx, eventID, file)
	if err != nil {
		telemetry.FailSpan(span, err, "upload failed")
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &dto.UploadResponse{URL: url, Path: objectPath}, nil
}

func (s *eventService) uploadImage(ctx context.Context, eventID string, file *storage.File) (string, string, error) {
	if err := storage.ValidateImage(file); err != nil {
		return "", "", err
	}
	objectPath := storage.ObjectName(file.Filename, s.folder, eventID)
	if err := s.store.Upload(ctx, s.bucket, objectPath, file.ContentType, file.Data); err != nil {
		return "", "", err
	}
	return s.store.PublicURL(s.bucket, objectPath), objectPath, nil
}

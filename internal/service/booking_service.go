package service

import (
	"context"
	"errors"
	"time"

	"github.com/Goh0809/Eventora-Backend/internal/domain"
	"github.com/Goh0809/Eventora-Backend/internal/dto"
	"github.com/Goh0809/Eventora-Backend/internal/gateway"
	"github.com/Goh0809/Eventora-Backend/internal/metrics"
	"github.com/Goh0809/Eventora-Backend/internal/publisher"
	"github.com/Goh0809/Eventora-Backend/internal/repository"
	"github.com/Goh0809/Eventora-Backend/pkg/clock"
	"github.com/Goh0809/Eventora-Backend/pkg/logger"
	"github.com/Goh0809/Eventora-Backend/pkg/saga"
	"github.com/Goh0809/Eventora-Backend/pkg/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// BookingService defines the interface for booking business logic
type BookingService interface {
	// InitiateCheckout admits the user and either confirms a free ticket or opens a hosted checkout
	InitiateCheckout(ctx context.Context, userID, email string, req *dto.CheckoutRequest) (*domain.CheckoutResult, error)

	// HandlePaymentCallback verifies and applies a payment gateway webhook
	HandlePaymentCallback(ctx context.Context, payload []byte, signature string) (*dto.WebhookResponse, error)

	// GetBookingStatus reports whether the user holds a paid booking for the event
	GetBookingStatus(ctx context.Context, userID, eventID string) *domain.BookingStatus

	// ListMyBookings lists the user's bookings, newest first
	ListMyBookings(ctx context.Context, userID string) ([]*domain.BookingWithEvent, error)

	// GetBookingDetail retrieves a booking with its event and buyer
	GetBookingDetail(ctx context.Context, bookingID string) (*domain.BookingDetail, error)

	// ListEventParticipants lists the paid attendees of an event owned by organizerID
	ListEventParticipants(ctx context.Context, eventID, organizerID string) ([]*domain.EventParticipant, error)

	// ExpireStalePending expires one batch of pending bookings older than the pending TTL
	ExpireStalePending(ctx context.Context, limit int) (int, error)
}

// BookingServiceConfig contains configuration for booking service
type BookingServiceConfig struct {
	// HoldWindow is how long a pending booking counts against capacity
	HoldWindow time.Duration
	// PendingTTL is the age after which the reconciler expires a pending booking
	PendingTTL time.Duration
	Clock      clock.Clock
	Logger     *logger.Logger
}

type bookingService struct {
	eventRepo    repository.EventRepository
	bookingRepo  repository.BookingRepository
	participants ParticipantService
	gateway      gateway.PaymentGateway
	orchestrator *saga.Orchestrator
	publisher    publisher.EventPublisher
	clock        clock.Clock
	log          *logger.Logger
	holdWindow   time.Duration
	pendingTTL   time.Duration
}

// NewBookingService creates a new booking service and registers the checkout saga
func NewBookingService(
	eventRepo repository.EventRepository,
	bookingRepo repository.BookingRepository,
	participants ParticipantService,
	gw gateway.PaymentGateway,
	orchestrator *saga.Orchestrator,
	eventPublisher publisher.EventPublisher,
	cfg *BookingServiceConfig,
) (BookingService, error) {
	s := &bookingService{
		eventRepo:    eventRepo,
		bookingRepo:  bookingRepo,
		participants: participants,
		gateway:      gw,
		orchestrator: orchestrator,
		publisher:    eventPublisher,
		clock:        clock.NewSystem(),
		log:          logger.Get(),
		holdWindow:   15 * time.Minute,
		pendingTTL:   30 * time.Minute,
	}
	if cfg != nil {
		if cfg.HoldWindow > 0 {
			s.holdWindow = cfg.HoldWindow
		}
		if cfg.PendingTTL > 0 {
			s.pendingTTL = cfg.PendingTTL
		}
		if cfg.Clock != nil {
			s.clock = cfg.Clock
		}
		if cfg.Logger != nil {
			s.log = cfg.Logger
		}
	}
	if s.publisher == nil {
		s.publisher = publisher.NewNoOpEventPublisher()
	}
	if s.orchestrator == nil {
		s.orchestrator = saga.NewOrchestrator(&saga.OrchestratorConfig{Logger: saga.NewZapLogger(s.log.Logger)})
	}
	if err := s.orchestrator.RegisterDefinition(NewCheckoutSagaDefinition(bookingRepo, gw)); err != nil {
		return nil, err
	}
	s.log = s.log.Named("booking")
	return s, nil
}

// InitiateCheckout admits the user and either confirms a free ticket or opens a hosted checkout
func (s *bookingService) InitiateCheckout(ctx context.Context, userID, email string, req *dto.CheckoutRequest) (*domain.CheckoutResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.checkout")
	defer span.End()

	if req == nil || req.EventID == "" {
		span.SetStatus(codes.Error, "invalid event_id")
		return nil, domain.Validation("event_id is required")
	}

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("event_id", req.EventID),
	)

	event, err := s.eventRepo.GetByID(ctx, req.EventID)
	if err != nil {
		telemetry.FailSpan(span, err, "event lookup failed")
		return nil, err
	}

	registered, err := s.participants.Exists(ctx, userID, event.ID)
	if err != nil {
		telemetry.FailSpan(span, err, "participant lookup failed")
		return nil, err
	}
	if registered {
		span.SetStatus(codes.Error, "already registered")
		return nil, domain.ErrAlreadyRegistered
	}

	if err := s.admit(ctx, event); err != nil {
		telemetry.FailSpan(span, err, "admission rejected")
		return nil, err
	}

	if !event.RequiresPayment() {
		result, err := s.confirmFree(ctx, userID, event)
		if err != nil {
			telemetry.FailSpan(span, err, "free registration failed")
			return nil, err
		}
		span.SetAttributes(attribute.String("booking_id", result.BookingID))
		span.SetStatus(codes.Ok, "")
		return result, nil
	}

	if event.StripePriceID == "" {
		span.SetStatus(codes.Error, "price missing")
		return nil, domain.ErrStripePriceMissing
	}

	metrics.RecordCheckoutStarted(ctx, event.ID, true)

	data := &CheckoutSagaData{
		EventID:       event.ID,
		UserID:        userID,
		CustomerEmail: email,
		PriceID:       event.StripePriceID,
		AmountTotal:   event.AmountMinor(),
		Currency:      event.BookingCurrency(),
		SuccessURL:    req.SuccessURL,
		CancelURL:     req.CancelURL,
		StartedAt:     s.clock.Now(),
	}

	instance, err := s.orchestrator.Execute(ctx, CheckoutSagaName, data.ToMap())
	if err != nil {
		s.reportSagaFailure(ctx, err)
		telemetry.FailSpan(span, err, "checkout saga failed")
		return nil, err
	}

	data.FromMap(instance.GetData())
	checkoutURL := data.CheckoutURL

	span.SetAttributes(attribute.String("booking_id", data.BookingID))
	span.SetStatus(codes.Ok, "")

	return &domain.CheckoutResult{
		BookingID:   data.BookingID,
		CheckoutURL: &checkoutURL,
		Status:      domain.CheckoutStatusPending,
		Message:     "Redirecting to Payment...",
	}, nil
}

// admit checks capacity counting confirmed participants plus recent pending bookings.
// This is a soft hold: the count and the later insert are separate statements, so two
// concurrent requests for the last slot can both pass. Expiry of the hold is advisory.
func (s *bookingService) admit(ctx context.Context, event *domain.Event) error {
	confirmed, err := s.participants.Count(ctx, event.ID)
	if err != nil {
		return err
	}

	pending, err := s.bookingRepo.CountPendingSince(ctx, event.ID, s.clock.Now().Add(-s.holdWindow))
	if err != nil {
		return err
	}

	if confirmed+pending+1 > event.MaxSlots {
		metrics.RecordCapacityRejection(ctx, event.ID)
		return domain.ErrSoldOut
	}
	return nil
}

func (s *bookingService) confirmFree(ctx context.Context, userID string, event *domain.Event) (*domain.CheckoutResult, error) {
	metrics.RecordCheckoutStarted(ctx, event.ID, false)

	if _, err := s.participants.Register(ctx, userID, event.ID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	booking := &domain.Booking{
		ID:            uuid.New().String(),
		EventID:       event.ID,
		UserID:        userID,
		AmountTotal:   0,
		Currency:      event.BookingCurrency(),
		PaymentStatus: domain.PaymentStatusPaid,
		PaymentMethod: domain.PaymentMethodCard,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}

	metrics.RecordBookingConfirmed(ctx, "free")
	s.publishConfirmed(ctx, booking)

	return &domain.CheckoutResult{
		BookingID: booking.ID,
		Status:    domain.CheckoutStatusConfirmed,
		Message:   "Registration Successful",
	}, nil
}

func (s *bookingService) reportSagaFailure(ctx context.Context, err error) {
	var sagaErr *saga.Error
	if !errors.As(err, &sagaErr) {
		return
	}

	metrics.RecordCheckoutCompensated(ctx, sagaErr.Step)
	log := s.log.WithContext(ctx).With(zap.String("saga_id", sagaErr.SagaID), zap.String("step", sagaErr.Step))
	if !sagaErr.Compensated() {
		for _, ce := range sagaErr.CompensationErrors {
			log.Error("Checkout compensation failed", zap.Error(ce))
		}
	}
	log.Warn("Checkout rolled back", zap.Error(sagaErr.Err))
}

// HandlePaymentCallback verifies and applies a payment gateway webhook
func (s *bookingService) HandlePaymentCallback(ctx context.Context, payload []byte, signature string) (*dto.WebhookResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.payment_callback")
	defer span.End()

	event, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		metrics.RecordWebhook(ctx, "", false)
		telemetry.FailSpan(span, err, "webhook rejected")
		return nil, err
	}

	metrics.RecordWebhook(ctx, event.Type, true)
	span.SetAttributes(attribute.String("webhook_id", event.ID), attribute.String("webhook_type", event.Type))

	switch event.Type {
	case gateway.EventCheckoutCompleted:
		err = s.fulfill(ctx, event.Session)
	case gateway.EventCheckoutExpired:
		err = s.expireSession(ctx, event.Session)
	}
	if err != nil {
		telemetry.FailSpan(span, err, "webhook processing failed")
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &dto.WebhookResponse{Status: "success"}, nil
}

// fulfill settles a booking after a completed checkout. Redelivery is a no-op once paid.
func (s *bookingService) fulfill(ctx context.Context, session *gateway.SessionPayload) error {
	log := s.log.WithContext(ctx)

	bookingID := sessionBookingID(session)
	if bookingID == "" {
		log.Warn("Webhook received without booking id")
		return nil
	}
	log = log.With(zap.String("booking_id", bookingID))

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrBookingNotFound) {
			log.Warn("Webhook references unknown booking")
			return nil
		}
		return err
	}

	if booking.IsPaid() {
		log.Info("Booking already fulfilled, skipping")
		return nil
	}
	if !booking.CanTransitionTo(domain.PaymentStatusPaid) {
		return nil
	}
	late := booking.PaymentStatus == domain.PaymentStatusExpired

	userID := firstNonEmpty(booking.UserID, session.Metadata["user_id"])
	eventID := firstNonEmpty(booking.EventID, session.Metadata["event_id"])

	// Register before marking paid so a failed registration is retried on redelivery.
	if _, err := s.participants.Register(ctx, userID, eventID); err != nil {
		return err
	}

	changed, err := s.bookingRepo.MarkPaid(ctx, booking.ID, session.PaymentIntentID, session.AmountTotal)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	if late {
		metrics.RecordLatePayment(ctx)
		log.Warn("Payment received for expired booking, honouring it")
	}

	booking.PaymentStatus = domain.PaymentStatusPaid
	booking.StripePaymentIntentID = session.PaymentIntentID
	booking.AmountTotal = session.AmountTotal

	metrics.RecordBookingConfirmed(ctx, "webhook")
	s.publishConfirmed(ctx, booking)
	return nil
}

func (s *bookingService) expireSession(ctx context.Context, session *gateway.SessionPayload) error {
	bookingID := sessionBookingID(session)
	if bookingID == "" {
		return nil
	}

	changed, err := s.bookingRepo.MarkExpired(ctx, bookingID)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		s.log.WithContext(ctx).Warn("Expired booking vanished before publish", zap.String("booking_id", bookingID), zap.Error(err))
		return nil
	}

	metrics.RecordBookingsExpired(ctx, 1, "webhook")
	s.publishExpired(ctx, booking)
	return nil
}

// GetBookingStatus reports whether the user holds a paid booking for the event
func (s *bookingService) GetBookingStatus(ctx context.Context, userID, eventID string) *domain.BookingStatus {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.status")
	defer span.End()

	booking, err := s.bookingRepo.FindPaid(ctx, userID, eventID)
	if err != nil {
		if !errors.Is(err, domain.ErrBookingNotFound) {
			s.log.WithContext(ctx).Warn("Check booking status failed", zap.Error(err))
			telemetry.FailSpan(span, err, "status lookup failed")
		}
		return &domain.BookingStatus{HasBooked: false}
	}

	status := string(booking.PaymentStatus)
	span.SetStatus(codes.Ok, "")
	return &domain.BookingStatus{HasBooked: true, BookingID: &booking.ID, Status: &status}
}

// ListMyBookings lists the user's bookings, newest first
func (s *bookingService) ListMyBookings(ctx context.Context, userID string) ([]*domain.BookingWithEvent, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.list_mine")
	defer span.End()

	bookings, err := s.bookingRepo.ListByUser(ctx, userID)
	if err != nil {
		telemetry.FailSpan(span, err, "list failed")
		return nil, err
	}
	if bookings == nil {
		bookings = []*domain.BookingWithEvent{}
	}

	span.SetAttributes(attribute.Int("count", len(bookings)))
	span.SetStatus(codes.Ok, "")
	return bookings, nil
}

// GetBookingDetail retrieves a booking with its event and buyer
func (s *bookingService) GetBookingDetail(ctx context.Context, bookingID string) (*domain.BookingDetail, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.detail")
	defer span.End()

	span.SetAttributes(attribute.String("booking_id", bookingID))

	detail, err := s.bookingRepo.GetDetail(ctx, bookingID)
	if err != nil {
		telemetry.FailSpan(span, err, "detail failed")
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return detail, nil
}

// ListEventParticipants lists the paid attendees of an event owned by organizerID
func (s *bookingService) ListEventParticipants(ctx context.Context, eventID, organizerID string) ([]*domain.EventParticipant, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.participants")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID), attribute.String("organizer_id", organizerID))

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			span.SetStatus(codes.Error, "not organizer")
			return nil, domain.ErrNotEventOrganizer
		}
		telemetry.FailSpan(span, err, "event lookup failed")
		return nil, err
	}
	if event.CreatedBy != organizerID {
		span.SetStatus(codes.Error, "not organizer")
		return nil, domain.ErrNotEventOrganizer
	}

	participants, err := s.bookingRepo.ListPaidParticipants(ctx, eventID)
	if err != nil {
		telemetry.FailSpan(span, err, "list failed")
		return nil, err
	}
	if participants == nil {
		participants = []*domain.EventParticipant{}
	}

	span.SetStatus(codes.Ok, "")
	return participants, nil
}

// ExpireStalePending expires one batch of pending bookings older than the pending TTL
func (s *bookingService) ExpireStalePending(ctx context.Context, limit int) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.expire_pending")
	defer span.End()

	cutoff := s.clock.Now().Add(-s.pendingTTL)
	span.SetAttributes(attribute.Int("limit", limit), attribute.String("cutoff", cutoff.Format(time.RFC3339)))

	expired, err := s.bookingRepo.ExpirePending(ctx, cutoff, limit)
	if err != nil {
		telemetry.FailSpan(span, err, "expire failed")
		return 0, err
	}

	for _, b := range expired {
		s.publishExpired(ctx, b)
	}
	metrics.RecordBookingsExpired(ctx, len(expired), "reconciler")

	span.SetAttributes(attribute.Int("expired", len(expired)))
	span.SetStatus(codes.Ok, "")
	return len(expired), nil
}

func (s *bookingService) publishConfirmed(ctx context.Context, booking *domain.Booking) {
	if err := s.publisher.PublishBookingConfirmed(ctx, booking); err != nil {
		s.log.WithContext(ctx).Warn("Failed to publish booking confirmed", zap.String("booking_id", booking.ID), zap.Error(err))
	}
}

func (s *bookingService) publishExpired(ctx context.Context, booking *domain.Booking) {
	if err := s.publisher.PublishBookingExpired(ctx, booking); err != nil {
		s.log.WithContext(ctx).Warn("Failed to publish booking expired", zap.String("booking_id", booking.ID), zap.Error(err))
	}
}

func sessionBookingID(session *gateway.SessionPayload) string {
	if session == nil || session.Metadata == nil {
		return ""
	}
	return session.Metadata["booking_id"]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

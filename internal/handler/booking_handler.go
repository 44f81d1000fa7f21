package handler

import (
	"io"
	"net/http"

	"github.com/Goh0809/Eventora-Backend/internal/domain"
	"github.com/Goh0809/Eventora-Backend/internal/dto"
	"github.com/Goh0809/Eventora-Backend/internal/service"
	"github.com/Goh0809/Eventora-Backend/pkg/middleware"
	"github.com/Goh0809/Eventora-Backend/pkg/response"
	"github.com/Goh0809/Eventora-Backend/pkg/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// maxWebhookBytes bounds a gateway callback body
const maxWebhookBytes = 1 << 16

// BookingHandler handles booking HTTP requests
type BookingHandler struct {
	bookingService service.BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookingService service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// Checkout handles POST /bookings/checkout
// Free events are confirmed inline; paid events answer with a hosted checkout URL
func (h *BookingHandler) Checkout(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.checkout")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID, ok := requireUser(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		return
	}

	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		telemetry.FailSpan(span, err, "invalid request")
		bindError(c, err)
		return
	}

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("event_id", req.EventID),
	)

	result, err := h.bookingService.InitiateCheckout(ctx, userID, c.GetString(middleware.ContextKeyEmail), &req)
	if err != nil {
		telemetry.FailSpan(span, err, "checkout failed")
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("booking_id", result.BookingID))
	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// Webhook handles POST /bookings/webhook. The raw body is required for signature checks.
func (h *BookingHandler) Webhook(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.booking.webhook")
	defer span.End()

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes))
	if err != nil {
		telemetry.FailSpan(span, err, "read body")
		response.BadRequest(c, "Invalid payload")
		return
	}

	result, err := h.bookingService.HandlePaymentCallback(ctx, payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		telemetry.FailSpan(span, err, "webhook failed")
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// MyHistory handles GET /bookings/my-history
func (h *BookingHandler) MyHistory(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	bookings, err := h.bookingService.ListMyBookings(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, bookings)
}

// Status handles GET /bookings/status/:event_id
func (h *BookingHandler) Status(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	response.Success(c, h.bookingService.GetBookingStatus(c.Request.Context(), userID, c.Param("event_id")))
}

// Get handles GET /bookings/:booking_id
func (h *BookingHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	detail, err := h.bookingService.GetBookingDetail(c.Request.Context(), c.Param("booking_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	if detail.UserID != userID && (detail.Event == nil || detail.Event.CreatedBy != userID) {
		handleError(c, domain.ErrBookingNotFound)
		return
	}
	response.Success(c, detail)
}

// Participants handles GET /bookings/organizer/event/:event_id/participants
func (h *BookingHandler) Participants(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	participants, err := h.bookingService.ListEventParticipants(c.Request.Context(), c.Param("event_id"), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, participants)
}

package handler

import (
	"github.com/Goh0809/Eventora-Backend/internal/dto"
	"github.com/Goh0809/Eventora-Backend/internal/service"
	"github.com/Goh0809/Eventora-Backend/pkg/response"
	"github.com/Goh0809/Eventora-Backend/pkg/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// EventHandler handles event catalog HTTP requests
type EventHandler struct {
	eventService service.EventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService service.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// List handles GET /events
func (h *EventHandler) List(c *gin.Context) {
	var query dto.ListEventsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.eventService.List(c.Request.Context(), &query)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

// Get handles GET /events/:event_id
func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.eventService.Get(c.Request.Context(), c.Param("event_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, event)
}

// Create handles POST /events as a multipart form with an optional "image" part
func (h *EventHandler) Create(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req dto.CreateEventRequest
	if err := c.ShouldBind(&req); err != nil {
		telemetry.FailSpan(span, err, "invalid request")
		bindError(c, err)
		return
	}

	image, err := formFile(c, "image")
	if err != nil {
		telemetry.FailSpan(span, err, "invalid image")
		bindError(c, err)
		return
	}

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.Bool("is_paid", req.IsPaid),
		attribute.Bool("has_image", image != nil),
	)

	event, err := h.eventService.Create(ctx, userID, &req, image)
	if err != nil {
		telemetry.FailSpan(span, err, "create failed")
		handleError(c, err)
		return
	}
	response.Created(c, event)
}

// UploadImage handles POST /events/upload-image?event_id=
func (h *EventHandler) UploadImage(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}

	eventID := c.Query("event_id")
	if eventID == "" {
		response.BadRequest(c, "event_id is required")
		return
	}

	file, err := formFile(c, "file")
	if err != nil {
		bindError(c, err)
		return
	}
	if file == nil {
		response.BadRequest(c, "file is required")
		return
	}

	result, err := h.eventService.UploadImage(c.Request.Context(), eventID, file)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

// Update handles PUT /events/:event_id
func (h *EventHandler) Update(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.update")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		telemetry.FailSpan(span, err, "invalid request")
		bindError(c, err)
		return
	}

	eventID := c.Param("event_id")
	span.SetAttributes(attribute.String("event_id", eventID))

	result, err := h.eventService.Update(ctx, eventID, userID, &req)
	if err != nil {
		telemetry.FailSpan(span, err, "update failed")
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

// Delete handles DELETE /events/:event_id
func (h *EventHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	result, err := h.eventService.Delete(c.Request.Context(), c.Param("event_id"), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

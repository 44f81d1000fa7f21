package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups every HTTP handler of the API
type Handlers struct {
	Health    *HealthHandler
	Auth      *AuthHandler
	Profile   *ProfileHandler
	Event     *EventHandler
	Category  *CategoryHandler
	Booking   *BookingHandler
	Dashboard *DashboardHandler
}

// RouteConfig carries the prefix and the middleware routes depend on
type RouteConfig struct {
	Prefix string
	// Auth rejects requests without a valid bearer token
	Auth gin.HandlerFunc
	// Idempotency guards checkout; nil disables it
	Idempotency gin.HandlerFunc
}

// RegisterRoutes mounts the API on r
func RegisterRoutes(r *gin.Engine, h *Handlers, cfg RouteConfig) {
	r.GET("/", h.Health.Root)
	r.GET("/health", h.Health.Health)
	r.GET("/ready", h.Health.Ready)

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "/api/v1"
	}
	v1 := r.Group(prefix)
	auth := cfg.Auth

	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.GET("/oauth/:provider/url", h.Auth.OAuthURL)
		authGroup.POST("/oauth/:provider/callback", h.Auth.ExchangeCode)
		authGroup.POST("/logout", auth, h.Auth.Logout)
		authGroup.POST("/refresh", h.Auth.Refresh)
		authGroup.POST("/forgot-password", h.Auth.ForgotPassword)
		authGroup.POST("/verify-reset-code", h.Auth.ExchangeCode)
		authGroup.PUT("/reset-password", auth, h.Auth.ResetPassword)
	}

	profiles := v1.Group("/profiles")
	{
		profiles.GET("/me", auth, h.Profile.GetMe)
		profiles.PUT("/me", auth, h.Profile.UpdateMe)
		profiles.POST("/upload-avatar", auth, h.Profile.UploadAvatar)
		profiles.GET("/:user_id", h.Profile.GetPublic)
	}

	events := v1.Group("/events")
	{
		events.GET("", h.Event.List)
		events.GET("/:event_id", h.Event.Get)
		events.POST("", auth, h.Event.Create)
		events.POST("/upload-image", auth, h.Event.UploadImage)
		events.PUT("/:event_id", auth, h.Event.Update)
		events.DELETE("/:event_id", auth, h.Event.Delete)
	}

	v1.GET("/categories", h.Category.List)

	bookings := v1.Group("/bookings")
	{
		checkout := []gin.HandlerFunc{auth}
		if cfg.Idempotency != nil {
			checkout = append(checkout, cfg.Idempotency)
		}
		bookings.POST("/checkout", append(checkout, h.Booking.Checkout)...)
		bookings.POST("/webhook", h.Booking.Webhook)

		bookings.GET("/my-history", auth, h.Booking.MyHistory)
		bookings.GET("/status/:event_id", auth, h.Booking.Status)
		bookings.GET("/organizer/event/:event_id/participants", auth, h.Booking.Participants)
		bookings.GET("/:booking_id", auth, h.Booking.Get)
	}

	v1.GET("/dashboard/organizer", auth, h.Dashboard.Organizer)
}

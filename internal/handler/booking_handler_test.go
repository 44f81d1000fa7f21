package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/Goh0809/Eventora-Backend/internal/domain"
	"github.com/Goh0809/Eventora-Backend/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingHandler_Checkout(t *testing.T) {
	checkoutURL := "https://checkout.test/cs_test"

	tests := []struct {
		name           string
		body           interface{}
		mockFunc       func(ctx context.Context, userID, email string, req *dto.CheckoutRequest) (*domain.CheckoutResult, error)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "paid event opens checkout",
			body: dto.CheckoutRequest{EventID: "evt-1", SuccessURL: "http://localhost/ok"},
			mockFunc: func(ctx context.Context, userID, email string, req *dto.CheckoutRequest) (*domain.CheckoutResult, error) {
				assert.Equal(t, "user-1", userID)
				assert.Equal(t, "user-1@example.com", email)
				assert.Equal(t, "http://localhost/ok", req.SuccessURL)
				return &domain.CheckoutResult{BookingID: "bk-1", CheckoutURL: &checkoutURL, Status: "pending"}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing event id",
			body:           map[string]string{},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_REQUEST",
		},
		{
			name: "already registered",
			body: dto.CheckoutRequest{EventID: "evt-1"},
			mockFunc: func(ctx context.Context, userID, email string, req *dto.CheckoutRequest) (*domain.CheckoutResult, error) {
				return nil, domain.ErrAlreadyRegistered
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "CONFLICT",
		},
		{
			name: "sold out",
			body: dto.CheckoutRequest{EventID: "evt-1"},
			mockFunc: func(ctx context.Context, userID, email string, req *dto.CheckoutRequest) (*domain.CheckoutResult, error) {
				return nil, fmt.Errorf("admission: %w", domain.ErrSoldOut)
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "CAPACITY_EXCEEDED",
		},
		{
			name: "event not found",
			body: dto.CheckoutRequest{EventID: "evt-404"},
			mockFunc: func(ctx context.Context, userID, email string, req *dto.CheckoutRequest) (*domain.CheckoutResult, error) {
				return nil, domain.ErrEventNotFound
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   "NOT_FOUND",
		},
		{
			name: "gateway down",
			body: dto.CheckoutRequest{EventID: "evt-1"},
			mockFunc: func(ctx context.Context, userID, email string, req *dto.CheckoutRequest) (*domain.CheckoutResult, error) {
				return nil, domain.Upstream("Payment provider unavailable", fmt.Errorf("dial tcp: timeout"))
			},
			expectedStatus: http.StatusBadGateway,
			expectedCode:   "UPSTREAM_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI()
			api.booking.InitiateCheckoutFunc = tt.mockFunc

			w := api.doJSON(http.MethodPost, "/api/v1/bookings/checkout", tt.body, "user-1")

			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedCode != "" {
				env := decode(t, w)
				assert.False(t, env.Success)
				assert.Equal(t, tt.expectedCode, env.Error.Code)
				return
			}

			var result domain.CheckoutResult
			decodeData(t, w, &result)
			assert.Equal(t, "bk-1", result.BookingID)
			require.NotNil(t, result.CheckoutURL)
			assert.Equal(t, checkoutURL, *result.CheckoutURL)
		})
	}
}

func TestBookingHandler_Webhook(t *testing.T) {
	t.Run("passes raw body and signature", func(t *testing.T) {
		api := newTestAPI()
		payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)

		var gotPayload []byte
		var gotSignature string
		api.booking.HandlePaymentCallbackFunc = func(ctx context.Context, p []byte, signature string) (*dto.WebhookResponse, error) {
			gotPayload = p
			gotSignature = signature
			return &dto.WebhookResponse{Status: "success"}, nil
		}

		req := bytes.NewReader(payload)
		w := api.doWithHeaders(http.MethodPost, "/api/v1/bookings/webhook", req, map[string]string{
			"Content-Type":     "application/json",
			"Stripe-Signature": "t=1,v1=abc",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"success"}`, w.Body.String())
		assert.Equal(t, payload, gotPayload)
		assert.Equal(t, "t=1,v1=abc", gotSignature)
	})

	t.Run("invalid signature is a bad request", func(t *testing.T) {
		api := newTestAPI()
		api.booking.HandlePaymentCallbackFunc = func(ctx context.Context, p []byte, signature string) (*dto.WebhookResponse, error) {
			return nil, domain.ErrInvalidSignature
		}

		w := api.do(http.MethodPost, "/api/v1/bookings/webhook", bytes.NewReader([]byte(`{}`)), "application/json", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decode(t, w)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
		assert.Equal(t, "Invalid Signature", env.Error.Message)
	})
}

func TestBookingHandler_Reads(t *testing.T) {
	t.Run("my history", func(t *testing.T) {
		api := newTestAPI()
		api.booking.ListMyBookingsFunc = func(ctx context.Context, userID string) ([]*domain.BookingWithEvent, error) {
			assert.Equal(t, "user-1", userID)
			return []*domain.BookingWithEvent{{Booking: domain.Booking{ID: "bk-1"}}}, nil
		}

		w := api.do(http.MethodGet, "/api/v1/bookings/my-history", nil, "", "user-1")

		assert.Equal(t, http.StatusOK, w.Code)
		var bookings []domain.BookingWithEvent
		decodeData(t, w, &bookings)
		require.Len(t, bookings, 1)
		assert.Equal(t, "bk-1", bookings[0].ID)
	})

	t.Run("status", func(t *testing.T) {
		api := newTestAPI()
		id, status := "bk-1", "paid"
		api.booking.GetBookingStatusFunc = func(ctx context.Context, userID, eventID string) *domain.BookingStatus {
			assert.Equal(t, "evt-1", eventID)
			return &domain.BookingStatus{HasBooked: true, BookingID: &id, Status: &status}
		}

		w := api.do(http.MethodGet, "/api/v1/bookings/status/evt-1", nil, "", "user-1")

		assert.Equal(t, http.StatusOK, w.Code)
		var result domain.BookingStatus
		decodeData(t, w, &result)
		assert.True(t, result.HasBooked)
	})

	t.Run("participants forbidden for non organizer", func(t *testing.T) {
		api := newTestAPI()
		api.booking.ListEventParticipantsFunc = func(ctx context.Context, eventID, organizerID string) ([]*domain.EventParticipant, error) {
			return nil, domain.ErrNotEventOrganizer
		}

		w := api.do(http.MethodGet, "/api/v1/bookings/organizer/event/evt-1/participants", nil, "", "user-2")

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "FORBIDDEN", decode(t, w).Error.Code)
	})
}

func TestBookingHandler_Get(t *testing.T) {
	detail := &domain.BookingDetail{
		Booking: domain.Booking{ID: "bk-1", UserID: "buyer"},
		Event:   &domain.Event{ID: "evt-1", CreatedBy: "organizer"},
	}

	tests := []struct {
		name           string
		caller         string
		expectedStatus int
	}{
		{name: "buyer", caller: "buyer", expectedStatus: http.StatusOK},
		{name: "organizer", caller: "organizer", expectedStatus: http.StatusOK},
		{name: "stranger", caller: "stranger", expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI()
			api.booking.GetBookingDetailFunc = func(ctx context.Context, bookingID string) (*domain.BookingDetail, error) {
				assert.Equal(t, "bk-1", bookingID)
				return detail, nil
			}

			w := api.do(http.MethodGet, "/api/v1/bookings/bk-1", nil, "", tt.caller)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}

	t.Run("missing booking", func(t *testing.T) {
		api := newTestAPI()
		w := api.do(http.MethodGet, "/api/v1/bookings/bk-404", nil, "", "buyer")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

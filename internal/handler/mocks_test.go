package handler

import (
	"context"

	"github.com/Goh0809/Eventora-Backend/internal/domain"
	"github.com/Goh0809/Eventora-Backend/internal/dto"
	"github.com/Goh0809/Eventora-Backend/internal/storage"
)

// MockBookingService is a mock implementation of BookingService for testing
type MockBookingService struct {
	InitiateCheckoutFunc      func(ctx context.Context, userID, email string, req *dto.CheckoutRequest) (*domain.CheckoutResult, error)
	HandlePaymentCallbackFunc func(ctx context.Context, payload []byte, signature string) (*dto.WebhookResponse, error)
	GetBookingStatusFunc      func(ctx context.Context, userID, eventID string) *domain.BookingStatus
	ListMyBookingsFunc        func(ctx context.Context, userID string) ([]*domain.BookingWithEvent, error)
	GetBookingDetailFunc      func(ctx context.Context, bookingID string) (*domain.BookingDetail, error)
	ListEventParticipantsFunc func(ctx context.Context, eventID, organizerID string) ([]*domain.EventParticipant, error)
	ExpireStalePendingFunc    func(ctx context.Context, limit int) (int, error)
}

func (m *MockBookingService) InitiateCheckout(ctx context.Context, userID, email string, req *dto.CheckoutRequest) (*domain.CheckoutResult, error) {
	if m.InitiateCheckoutFunc != nil {
		return m.InitiateCheckoutFunc(ctx, userID, email, req)
	}
	return &domain.CheckoutResult{}, nil
}

func (m *MockBookingService) HandlePaymentCallback(ctx context.Context, payload []byte, signature string) (*dto.WebhookResponse, error) {
	if m.HandlePaymentCallbackFunc != nil {
		return m.HandlePaymentCallbackFunc(ctx, payload, signature)
	}
	return &dto.WebhookResponse{Status: "success"}, nil
}

func (m *MockBookingService) GetBookingStatus(ctx context.Context, userID, eventID string) *domain.BookingStatus {
	if m.GetBookingStatusFunc != nil {
		return m.GetBookingStatusFunc(ctx, userID, eventID)
	}
	return &domain.BookingStatus{}
}

func (m *MockBookingService) ListMyBookings(ctx context.Context, userID string) ([]*domain.BookingWithEvent, error) {
	if m.ListMyBookingsFunc != nil {
		return m.ListMyBookingsFunc(ctx, userID)
	}
	return []*domain.BookingWithEvent{}, nil
}

func (m *MockBookingService) GetBookingDetail(ctx context.Context, bookingID string) (*domain.BookingDetail, error) {
	if m.GetBookingDetailFunc != nil {
		return m.GetBookingDetailFunc(ctx, bookingID)
	}
	return nil, domain.ErrBookingNotFound
}

func (m *MockBookingService) ListEventParticipants(ctx context.Context, eventID, organizerID string) ([]*domain.EventParticipant, error) {
	if m.ListEventParticipantsFunc != nil {
		return m.ListEventParticipantsFunc(ctx, eventID, organizerID)
	}
	return []*domain.EventParticipant{}, nil
}

func (m *MockBookingService) ExpireStalePending(ctx context.Context, limit int) (int, error) {
	if m.ExpireStalePendingFunc != nil {
		return m.ExpireStalePendingFunc(ctx, limit)
	}
	return 0, nil
}

// MockEventService is a mock implementation of EventService for testing
type MockEventService struct {
	CreateFunc      func(ctx context.Context, userID string, req *dto.CreateEventRequest, image *storage.File) (*domain.Event, error)
	ListFunc        func(ctx context.Context, query *dto.ListEventsQuery) (*dto.EventListResponse, error)
	GetFunc         func(ctx context.Context, id string) (*domain.EventDetail, error)
	UpdateFunc      func(ctx context.Context, id, userID string, req *dto.UpdateEventRequest) (*dto.EventUpdateResponse, error)
	DeleteFunc      func(ctx context.Context, id, userID string) (*dto.MessageResponse, error)
	UploadImageFunc func(ctx context.Context, eventID string, file *storage.File) (*dto.UploadResponse, error)
}

func (m *MockEventService) Create(ctx context.Context, userID string, req *dto.CreateEventRequest, image *storage.File) (*domain.Event, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, userID, req, image)
	}
	return &domain.Event{}, nil
}

func (m *MockEventService) List(ctx context.Context, query *dto.ListEventsQuery) (*dto.EventListResponse, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, query)
	}
	return &dto.EventListResponse{Items: []*domain.EventSummary{}, Page: query.Page, Size: query.Size}, nil
}

func (m *MockEventService) Get(ctx context.Context, id string) (*domain.EventDetail, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, domain.ErrEventNotFound
}

func (m *MockEventService) Update(ctx context.Context, id, userID string, req *dto.UpdateEventRequest) (*dto.EventUpdateResponse, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, userID, req)
	}
	return &dto.EventUpdateResponse{Message: "No changes detected"}, nil
}

func (m *MockEventService) Delete(ctx context.Context, id, userID string) (*dto.MessageResponse, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id, userID)
	}
	return &dto.MessageResponse{Message: "Event Deleted Successfully"}, nil
}

func (m *MockEventService) UploadImage(ctx context.Context, eventID string, file *storage.File) (*dto.UploadResponse, error) {
	if m.UploadImageFunc != nil {
		return m.UploadImageFunc(ctx, eventID, file)
	}
	return &dto.UploadResponse{}, nil
}

// MockAuthService is a mock implementation of AuthService for testing
type MockAuthService struct {
	RegisterFunc       func(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	LoginFunc          func(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	OAuthURLFunc       func(ctx context.Context, provider, redirectURL string) (*dto.OAuthURLResponse, error)
	ExchangeCodeFunc   func(ctx context.Context, req *dto.CodeExchangeRequest) (*dto.TokenResponse, error)
	LogoutFunc         func(ctx context.Context, accessToken string, req *dto.LogoutRequest) (*dto.MessageResponse, error)
	RefreshFunc        func(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	ResetPasswordFunc  func(ctx context.Context, userID string, req *dto.ResetPasswordRequest) (*dto.MessageResponse, error)
	forgotPasswordSeen []string
}

func (m *MockAuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, req)
	}
	return &dto.RegisterResponse{Token: &dto.TokenResponse{TokenType: "Bearer"}}, nil
}

func (m *MockAuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, req)
	}
	return &dto.TokenResponse{TokenType: "bearer"}, nil
}

func (m *MockAuthService) OAuthURL(ctx context.Context, provider, redirectURL string) (*dto.OAuthURLResponse, error) {
	if m.OAuthURLFunc != nil {
		return m.OAuthURLFunc(ctx, provider, redirectURL)
	}
	return &dto.OAuthURLResponse{Provider: provider}, nil
}

func (m *MockAuthService) ExchangeCode(ctx context.Context, req *dto.CodeExchangeRequest) (*dto.TokenResponse, error) {
	if m.ExchangeCodeFunc != nil {
		return m.ExchangeCodeFunc(ctx, req)
	}
	return &dto.TokenResponse{TokenType: "bearer"}, nil
}

func (m *MockAuthService) Logout(ctx context.Context, accessToken string, req *dto.LogoutRequest) (*dto.MessageResponse, error) {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, accessToken, req)
	}
	return &dto.MessageResponse{Message: "Logged Out Successfully"}, nil
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, refreshToken)
	}
	return &dto.TokenResponse{TokenType: "bearer"}, nil
}

func (m *MockAuthService) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) *dto.MessageResponse {
	m.forgotPasswordSeen = append(m.forgotPasswordSeen, req.Email)
	return &dto.MessageResponse{Message: "If the email exists, a reset link has been sent"}
}

func (m *MockAuthService) ResetPassword(ctx context.Context, userID string, req *dto.ResetPasswordRequest) (*dto.MessageResponse, error) {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, userID, req)
	}
	return &dto.MessageResponse{Message: "Password Updated Successfully"}, nil
}

// MockProfileService is a mock implementation of ProfileService for testing
type MockProfileService struct {
	GetFunc          func(ctx context.Context, userID string) (*domain.Profile, error)
	UpdateFunc       func(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*domain.Profile, error)
	PublicFunc       func(ctx context.Context, userID string) (*domain.PublicProfile, error)
	UploadAvatarFunc func(ctx context.Context, userID string, file *storage.File) (*dto.AvatarResponse, error)
}

func (m *MockProfileService) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, userID)
	}
	return &domain.Profile{ID: userID}, nil
}

func (m *MockProfileService) Update(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*domain.Profile, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, userID, req)
	}
	return &domain.Profile{ID: userID}, nil
}

func (m *MockProfileService) Public(ctx context.Context, userID string) (*domain.PublicProfile, error) {
	if m.PublicFunc != nil {
		return m.PublicFunc(ctx, userID)
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockProfileService) UploadAvatar(ctx context.Context, userID string, file *storage.File) (*dto.AvatarResponse, error) {
	if m.UploadAvatarFunc != nil {
		return m.UploadAvatarFunc(ctx, userID, file)
	}
	return &dto.AvatarResponse{}, nil
}

// MockCategoryService is a mock implementation of CategoryService for testing
type MockCategoryService struct {
	ListFunc func(ctx context.Context) ([]domain.Category, error)
}

func (m *MockCategoryService) List(ctx context.Context) ([]domain.Category, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, domain.ErrNoCategoriesFound
}

// MockDashboardService is a mock implementation of DashboardService for testing
type MockDashboardService struct {
	OrganizerFunc func(ctx context.Context, userID string) (*dto.DashboardResponse, error)
}

func (m *MockDashboardService) Organizer(ctx context.Context, userID string) (*dto.DashboardResponse, error) {
	if m.OrganizerFunc != nil {
		return m.OrganizerFunc(ctx, userID)
	}
	return &dto.DashboardResponse{}, nil
}

// MockHealthChecker answers HealthCheck with err
type MockHealthChecker struct {
	err error
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	return m.err
}

package service

import (
	"context"
	"sync"
	"time"

	"github.com/Goh0809/Eventora-Backend/internal/domain"
	"github.com/Goh0809/Eventora-Backend/internal/gateway"
	"github.com/Goh0809/Eventora-Backend/internal/identity"
)

// MockEventRepository is a mock implementation of EventRepository
type MockEventRepository struct {
	CreateFunc          func(ctx context.Context, event *domain.Event) error
	GetByIDFunc         func(ctx context.Context, id string) (*domain.Event, error)
	GetOwnedFunc        func(ctx context.Context, id, userID string) (*domain.Event, error)
	ListPublishedFunc   func(ctx context.Context, filter *domain.EventFilter) ([]*domain.Event, int, error)
	ListByOrganizerFunc func(ctx context.Context, userID string) ([]*domain.Event, error)
	SetMediaFunc        func(ctx context.Context, id, imageURL, productID, priceID string) error
	UpdateFunc          func(ctx context.Context, event *domain.Event) error
	DeleteFunc          func(ctx context.Context, id string) error
}

func (m *MockEventRepository) Create(ctx context.Context, event *domain.Event) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, event)
	}
	return nil
}

func (m *MockEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrEventNotFound
}

func (m *MockEventRepository) GetOwned(ctx context.Context, id, userID string) (*domain.Event, error) {
	if m.GetOwnedFunc != nil {
		return m.GetOwnedFunc(ctx, id, userID)
	}
	return nil, domain.ErrEventNotFound
}

func (m *MockEventRepository) ListPublished(ctx context.Context, filter *domain.EventFilter) ([]*domain.Event, int, error) {
	if m.ListPublishedFunc != nil {
		return m.ListPublishedFunc(ctx, filter)
	}
	return []*domain.Event{}, 0, nil
}

func (m *MockEventRepository) ListByOrganizer(ctx context.Context, userID string) ([]*domain.Event, error) {
	if m.ListByOrganizerFunc != nil {
		return m.ListByOrganizerFunc(ctx, userID)
	}
	return []*domain.Event{}, nil
}

func (m *MockEventRepository) SetMedia(ctx context.Context, id, imageURL, productID, priceID string) error {
	if m.SetMediaFunc != nil {
		return m.SetMediaFunc(ctx, id, imageURL, productID, priceID)
	}
	return nil
}

func (m *MockEventRepository) Update(ctx context.Context, event *domain.Event) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, event)
	}
	return nil
}

func (m *MockEventRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockCategoryRepository is a mock implementation of CategoryRepository
type MockCategoryRepository struct {
	ListFunc            func(ctx context.Context) ([]domain.Category, error)
	ForEventsFunc       func(ctx context.Context, eventIDs []string) (map[string][]domain.Category, error)
	PrimaryForFunc      func(ctx context.Context, eventID string) (*domain.Category, error)
	AssignToEventFunc   func(ctx context.Context, eventID, categoryID string) error
	ReplaceForEventFunc func(ctx context.Context, eventID, categoryID string) error
}

func (m *MockCategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []domain.Category{}, nil
}

func (m *MockCategoryRepository) ForEvents(ctx context.Context, eventIDs []string) (map[string][]domain.Category, error) {
	if m.ForEventsFunc != nil {
		return m.ForEventsFunc(ctx, eventIDs)
	}
	return map[string][]domain.Category{}, nil
}

func (m *MockCategoryRepository) PrimaryFor(ctx context.Context, eventID string) (*domain.Category, error) {
	if m.PrimaryForFunc != nil {
		return m.PrimaryForFunc(ctx, eventID)
	}
	return nil, nil
}

func (m *MockCategoryRepository) AssignToEvent(ctx context.Context, eventID, categoryID string) error {
	if m.AssignToEventFunc != nil {
		return m.AssignToEventFunc(ctx, eventID, categoryID)
	}
	return nil
}

func (m *MockCategoryRepository) ReplaceForEvent(ctx context.Context, eventID, categoryID string) error {
	if m.ReplaceForEventFunc != nil {
		return m.ReplaceForEventFunc(ctx, eventID, categoryID)
	}
	return nil
}

// MockBookingRepository is a mock implementation of BookingRepository
type MockBookingRepository struct {
	CreateFunc               func(ctx context.Context, booking *domain.Booking) error
	GetByIDFunc              func(ctx context.Context, id string) (*domain.Booking, error)
	DeleteFunc               func(ctx context.Context, id string) error
	AttachSessionFunc        func(ctx context.Context, id, sessionID string) error
	MarkPaidFunc             func(ctx context.Context, id, paymentIntentID string, amountTotal int64) (bool, error)
	MarkExpiredFunc          func(ctx context.Context, id string) (bool, error)
	ExpirePendingFunc        func(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Booking, error)
	CountPendingSinceFunc    func(ctx context.Context, eventID string, since time.Time) (int, error)
	CountPaidFunc            func(ctx context.Context, eventID string) (int, error)
	CountPaidByEventsFunc    func(ctx context.Context, eventIDs []string) (map[string]int, error)
	ExistsForEventFunc       func(ctx context.Context, eventID string) (bool, error)
	FindPaidFunc             func(ctx context.Context, userID, eventID string) (*domain.Booking, error)
	ListByUserFunc           func(ctx context.Context, userID string) ([]*domain.BookingWithEvent, error)
	GetDetailFunc            func(ctx context.Context, id string) (*domain.BookingDetail, error)
	ListPaidParticipantsFunc func(ctx context.Context, eventID string) ([]*domain.EventParticipant, error)
	ListPaidSalesFunc        func(ctx context.Context, eventIDs []string) ([]*domain.SaleRecord, error)
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, booking)
	}
	return nil
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrBookingNotFound
}

func (m *MockBookingRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockBookingRepository) AttachSession(ctx context.Context, id, sessionID string) error {
	if m.AttachSessionFunc != nil {
		return m.AttachSessionFunc(ctx, id, sessionID)
	}
	return nil
}

func (m *MockBookingRepository) MarkPaid(ctx context.Context, id, paymentIntentID string, amountTotal int64) (bool, error) {
	if m.MarkPaidFunc != nil {
		return m.MarkPaidFunc(ctx, id, paymentIntentID, amountTotal)
	}
	return true, nil
}

func (m *MockBookingRepository) MarkExpired(ctx context.Context, id string) (bool, error) {
	if m.MarkExpiredFunc != nil {
		return m.MarkExpiredFunc(ctx, id)
	}
	return true, nil
}

func (m *MockBookingRepository) ExpirePending(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Booking, error) {
	if m.ExpirePendingFunc != nil {
		return m.ExpirePendingFunc(ctx, cutoff, limit)
	}
	return []*domain.Booking{}, nil
}

func (m *MockBookingRepository) CountPendingSince(ctx context.Context, eventID string, since time.Time) (int, error) {
	if m.CountPendingSinceFunc != nil {
		return m.CountPendingSinceFunc(ctx, eventID, since)
	}
	return 0, nil
}

func (m *MockBookingRepository) CountPaid(ctx context.Context, eventID string) (int, error) {
	if m.CountPaidFunc != nil {
		return m.CountPaidFunc(ctx, eventID)
	}
	return 0, nil
}

func (m *MockBookingRepository) CountPaidByEvents(ctx context.Context, eventIDs []string) (map[string]int, error) {
	if m.CountPaidByEventsFunc != nil {
		return m.CountPaidByEventsFunc(ctx, eventIDs)
	}
	return map[string]int{}, nil
}

func (m *MockBookingRepository) ExistsForEvent(ctx context.Context, eventID string) (bool, error) {
	if m.ExistsForEventFunc != nil {
		return m.ExistsForEventFunc(ctx, eventID)
	}
	return false, nil
}

func (m *MockBookingRepository) FindPaid(ctx context.Context, userID, eventID string) (*domain.Booking, error) {
	if m.FindPaidFunc != nil {
		return m.FindPaidFunc(ctx, userID, eventID)
	}
	return nil, domain.ErrBookingNotFound
}

func (m *MockBookingRepository) ListByUser(ctx context.Context, userID string) ([]*domain.BookingWithEvent, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockBookingRepository) GetDetail(ctx context.Context, id string) (*domain.BookingDetail, error) {
	if m.GetDetailFunc != nil {
		return m.GetDetailFunc(ctx, id)
	}
	return nil, domain.ErrBookingNotFound
}

func (m *MockBookingRepository) ListPaidParticipants(ctx context.Context, eventID string) ([]*domain.EventParticipant, error) {
	if m.ListPaidParticipantsFunc != nil {
		return m.ListPaidParticipantsFunc(ctx, eventID)
	}
	return nil, nil
}

func (m *MockBookingRepository) ListPaidSales(ctx context.Context, eventIDs []string) ([]*domain.SaleRecord, error) {
	if m.ListPaidSalesFunc != nil {
		return m.ListPaidSalesFunc(ctx, eventIDs)
	}
	return []*domain.SaleRecord{}, nil
}

// MockParticipantRepository is a mock implementation of ParticipantRepository
type MockParticipantRepository struct {
	UpsertFunc func(ctx context.Context, userID, eventID string) (*domain.Participant, error)
	CountFunc  func(ctx context.Context, eventID string) (int, error)
	ExistsFunc func(ctx context.Context, userID, eventID string) (bool, error)
}

func (m *MockParticipantRepository) Upsert(ctx context.Context, userID, eventID string) (*domain.Participant, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, userID, eventID)
	}
	return &domain.Participant{ID: "p-" + userID, UserID: userID, EventID: eventID}, nil
}

func (m *MockParticipantRepository) Count(ctx context.Context, eventID string) (int, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx, eventID)
	}
	return 0, nil
}

func (m *MockParticipantRepository) Exists(ctx context.Context, userID, eventID string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, userID, eventID)
	}
	return false, nil
}

// MockProfileRepository is a mock implementation of ProfileRepository
type MockProfileRepository struct {
	GetByIDFunc func(ctx context.Context, id string) (*domain.Profile, error)
	UpdateFunc  func(ctx context.Context, id string, update *domain.ProfileUpdate, at time.Time) (*domain.Profile, error)
	TouchFunc   func(ctx context.Context, id string, at time.Time) error
}

func (m *MockProfileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrProfileNotFound
}

func (m *MockProfileRepository) Update(ctx context.Context, id string, update *domain.ProfileUpdate, at time.Time) (*domain.Profile, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, update, at)
	}
	return nil, domain.ErrProfileUpdateFailed
}

func (m *MockProfileRepository) Touch(ctx context.Context, id string, at time.Time) error {
	if m.TouchFunc != nil {
		return m.TouchFunc(ctx, id, at)
	}
	return nil
}

// MockPaymentGateway is a mock implementation of PaymentGateway
type MockPaymentGateway struct {
	CreateCheckoutSessionFunc func(ctx context.Context, req *gateway.CheckoutSessionRequest) (*gateway.CheckoutSession, error)
	CreateProductFunc         func(ctx context.Context, name, description string) (string, error)
	UpdateProductFunc         func(ctx context.Context, productID, name, description string) error
	ArchiveProductFunc        func(ctx context.Context, productID string) error
	CreatePriceFunc           func(ctx context.Context, productID string, unitAmount int64, currency string) (string, error)
	ArchivePriceFunc          func(ctx context.Context, priceID string) error
	ParseWebhookFunc          func(payload []byte, signature string) (*gateway.WebhookEvent, error)

	mu    sync.Mutex
	calls []string
}

func (m *MockPaymentGateway) record(call string) {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()
}

// Calls returns the gateway operations invoked so far, in order
func (m *MockPaymentGateway) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MockPaymentGateway) CreateCheckoutSession(ctx context.Context, req *gateway.CheckoutSessionRequest) (*gateway.CheckoutSession, error) {
	m.record("create_checkout_session")
	if m.CreateCheckoutSessionFunc != nil {
		return m.CreateCheckoutSessionFunc(ctx, req)
	}
	return &gateway.CheckoutSession{ID: "cs_test", URL: "https://checkout.test/cs_test"}, nil
}

func (m *MockPaymentGateway) CreateProduct(ctx context.Context, name, description string) (string, error) {
	m.record("create_product")
	if m.CreateProductFunc != nil {
		return m.CreateProductFunc(ctx, name, description)
	}
	return "prod_test", nil
}

func (m *MockPaymentGateway) UpdateProduct(ctx context.Context, productID, name, description string) error {
	m.record("update_product")
	if m.UpdateProductFunc != nil {
		return m.UpdateProductFunc(ctx, productID, name, description)
	}
	return nil
}

func (m *MockPaymentGateway) ArchiveProduct(ctx context.Context, productID string) error {
	m.record("archive_product")
	if m.ArchiveProductFunc != nil {
		return m.ArchiveProductFunc(ctx, productID)
	}
	return nil
}

func (m *MockPaymentGateway) CreatePrice(ctx context.Context, productID string, unitAmount int64, currency string) (string, error) {
	m.record("create_price")
	if m.CreatePriceFunc != nil {
		return m.CreatePriceFunc(ctx, productID, unitAmount, currency)
	}
	return "price_test", nil
}

func (m *MockPaymentGateway) ArchivePrice(ctx context.Context, priceID string) error {
	m.record("archive_price")
	if m.ArchivePriceFunc != nil {
		return m.ArchivePriceFunc(ctx, priceID)
	}
	return nil
}

func (m *MockPaymentGateway) ParseWebhook(payload []byte, signature string) (*gateway.WebhookEvent, error) {
	if m.ParseWebhookFunc != nil {
		return m.ParseWebhookFunc(payload, signature)
	}
	return nil, domain.ErrInvalidSignature
}

func (m *MockPaymentGateway) Name() string { return "test" }

// MockEventPublisher records published booking events
type MockEventPublisher struct {
	mu        sync.Mutex
	confirmed []*domain.Booking
	expired   []*domain.Booking
	err       error
}

func (m *MockEventPublisher) PublishBookingConfirmed(ctx context.Context, booking *domain.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.confirmed = append(m.confirmed, booking)
	return nil
}

func (m *MockEventPublisher) PublishBookingExpired(ctx context.Context, booking *domain.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.expired = append(m.expired, booking)
	return nil
}

func (m *MockEventPublisher) Close() error { return nil }

func (m *MockEventPublisher) Confirmed() []*domain.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.Booking(nil), m.confirmed...)
}

func (m *MockEventPublisher) Expired() []*domain.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.Booking(nil), m.expired...)
}

// MockObjectStore is a mock implementation of storage.ObjectStore
type MockObjectStore struct {
	UploadFunc func(ctx context.Context, bucket, objectPath, contentType string, data []byte) error
	RemoveFunc func(ctx context.Context, bucket string, paths ...string) error

	mu       sync.Mutex
	uploaded []string
	removed  []string
}

func (m *MockObjectStore) Upload(ctx context.Context, bucket, objectPath, contentType string, data []byte) error {
	m.mu.Lock()
	m.uploaded = append(m.uploaded, bucket+"/"+objectPath)
	m.mu.Unlock()
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, bucket, objectPath, contentType, data)
	}
	return nil
}

func (m *MockObjectStore) Remove(ctx context.Context, bucket string, paths ...string) error {
	m.mu.Lock()
	for _, p := range paths {
		m.removed = append(m.removed, bucket+"/"+p)
	}
	m.mu.Unlock()
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, bucket, paths...)
	}
	return nil
}

func (m *MockObjectStore) PublicURL(bucket, objectPath string) string {
	return "https://storage.test/storage/v1/object/public/" + bucket + "/" + objectPath
}

// MockIdentityProvider is a mock implementation of IdentityProvider
type MockIdentityProvider struct {
	SignUpFunc              func(ctx context.Context, email, password, fullName string) (*identity.AuthResult, error)
	SignInWithPasswordFunc  func(ctx context.Context, email, password string) (*identity.AuthResult, error)
	RefreshSessionFunc      func(ctx context.Context, refreshToken string) (*identity.AuthResult, error)
	ExchangeCodeFunc        func(ctx context.Context, code, codeVerifier string) (*identity.AuthResult, error)
	SignOutFunc             func(ctx context.Context, accessToken string) error
	RecoverPasswordFunc     func(ctx context.Context, email, redirectTo string) error
	AdminUpdatePasswordFunc func(ctx context.Context, userID, password string) error
}

func (m *MockIdentityProvider) SignUp(ctx context.Context, email, password, fullName string) (*identity.AuthResult, error) {
	return m.SignUpFunc(ctx, email, password, fullName)
}

func (m *MockIdentityProvider) SignInWithPassword(ctx context.Context, email, password string) (*identity.AuthResult, error) {
	return m.SignInWithPasswordFunc(ctx, email, password)
}

func (m *MockIdentityProvider) RefreshSession(ctx context.Context, refreshToken string) (*identity.AuthResult, error) {
	return m.RefreshSessionFunc(ctx, refreshToken)
}

func (m *MockIdentityProvider) ExchangeCode(ctx context.Context, code, codeVerifier string) (*identity.AuthResult, error) {
	return m.ExchangeCodeFunc(ctx, code, codeVerifier)
}

func (m *MockIdentityProvider) AuthorizeURL(provider, redirectTo string, extra map[string]string) string {
	u := "https://idp.test/auth/v1/authorize?provider=" + provider + "&redirect_to=" + redirectTo
	for _, k := range []string{"access_type", "prompt"} {
		if v, ok := extra[k]; ok {
			u += "&" + k + "=" + v
		}
	}
	return u
}

func (m *MockIdentityProvider) SignOut(ctx context.Context, accessToken string) error {
	if m.SignOutFunc != nil {
		return m.SignOutFunc(ctx, accessToken)
	}
	return nil
}

func (m *MockIdentityProvider) RecoverPassword(ctx context.Context, email, redirectTo string) error {
	if m.RecoverPasswordFunc != nil {
		return m.RecoverPasswordFunc(ctx, email, redirectTo)
	}
	return nil
}

func (m *MockIdentityProvider) AdminUpdatePassword(ctx context.Context, userID, password string) error {
	if m.AdminUpdatePasswordFunc != nil {
		return m.AdminUpdatePasswordFunc(ctx, userID, password)
	}
	return nil
}

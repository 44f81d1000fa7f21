package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Goh0809/Eventora-Backend/internal/domain"
	"github.com/Goh0809/Eventora-Backend/internal/dto"
	"github.com/Goh0809/Eventora-Backend/internal/storage"
	"github.com/Goh0809/Eventora-Backend/pkg/clock"
	"github.com/Goh0809/Eventora-Backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventFixture struct {
	svc        EventService
	events     *MockEventRepository
	categories *MockCategoryRepository
	bookings   *MockBookingRepository
	profiles   *MockProfileRepository
	gateway    *MockPaymentGateway
	store      *MockObjectStore
}

func newEventFixture(t *testing.T) *eventFixture {
	t.Helper()
	f := &eventFixture{
		events:     &MockEventRepository{},
		categories: &MockCategoryRepository{},
		bookings:   &MockBookingRepository{},
		profiles:   &MockProfileRepository{},
		gateway:    &MockPaymentGateway{},
		store:      &MockObjectStore{},
	}
	svc, err := NewEventService(f.events, f.categories, f.bookings, f.profiles, f.gateway, f.store, nil,
		&EventServiceConfig{
			ImageBucket: "event-images",
			ImageFolder: "banners",
			Clock:       clock.NewManual(testNow),
			Logger:      logger.NewNop(),
		})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func createRequest(paid bool) *dto.CreateEventRequest {
	req := &dto.CreateEventRequest{
		Title:        "Go Conference",
		Description:  "Two days of Go",
		Location:     "Kuala Lumpur",
		EventDate:    testNow.Add(72 * time.Hour),
		EventEndDate: testNow.Add(96 * time.Hour),
		MaxSlots:     100,
		CategoryID:   "cat-1",
	}
	if paid {
		req.IsPaid = true
		req.TicketPrice = 49.90
	}
	return req
}

func banner() *storage.File {
	return &storage.File{Filename: "Banner.PNG", ContentType: "image/png", Data: []byte("png")}
}

func ownedEvent(e *domain.Event) func(ctx context.Context, id, userID string) (*domain.Event, error) {
	return func(ctx context.Context, id, userID string) (*domain.Event, error) {
		if id != e.ID || userID != e.CreatedBy {
			return nil, domain.ErrEventNotFound
		}
		cp := *e
		return &cp, nil
	}
}

func TestEventService_Create(t *testing.T) {
	t.Run("paid event registers product and price", func(t *testing.T) {
		f := newEventFixture(t)
		var media [3]string
		var assigned string
		f.events.SetMediaFunc = func(ctx context.Context, id, imageURL, productID, priceID string) error {
			media = [3]string{imageURL, productID, priceID}
			return nil
		}
		f.categories.AssignToEventFunc = func(ctx context.Context, eventID, categoryID string) error {
			assigned = categoryID
			return nil
		}
		var gotAmount int64
		var gotCurrency string
		f.gateway.CreatePriceFunc = func(ctx context.Context, productID string, unitAmount int64, currency string) (string, error) {
			gotAmount, gotCurrency = unitAmount, currency
			return "price_new", nil
		}

		event, err := f.svc.Create(context.Background(), "organizer-1", createRequest(true), banner())

		require.NoError(t, err)
		assert.Equal(t, "organizer-1", event.CreatedBy)
		assert.Equal(t, domain.DefaultCurrency, event.Currency)
		assert.Equal(t, domain.EventStatusPublished, event.Status)
		assert.Equal(t, "prod_test", event.StripeProductID)
		assert.Equal(t, "price_new", event.StripePriceID)
		assert.Equal(t, int64(4990), gotAmount)
		assert.Equal(t, "myr", gotCurrency)
		assert.Equal(t, "cat-1", assigned)

		require.Len(t, f.store.uploaded, 1)
		uploaded := f.store.uploaded[0]
		assert.True(t, strings.HasPrefix(uploaded, "event-images/banners/"+event.ID+"/"), uploaded)
		assert.True(t, strings.HasSuffix(uploaded, ".png"), uploaded)
		assert.Equal(t, event.ImageURL, media[0])
		assert.Contains(t, event.ImageURL, "/storage/v1/object/public/event-images/banners/")
		assert.Equal(t, "prod_test", media[1])
		assert.Equal(t, "price_new", media[2])
	})

	t.Run("free event skips the gateway", func(t *testing.T) {
		f := newEventFixture(t)
		req := createRequest(false)
		req.TicketPrice = 10

		event, err := f.svc.Create(context.Background(), "organizer-1", req, banner())

		require.NoError(t, err)
		assert.Empty(t, f.gateway.Calls())
		assert.Zero(t, event.TicketPrice)
		assert.Empty(t, event.StripePriceID)
	})

	t.Run("non image is rejected before insert", func(t *testing.T) {
		f := newEventFixture(t)
		inserted := false
		f.events.CreateFunc = func(ctx context.Context, e *domain.Event) error {
			inserted = true
			return nil
		}

		_, err := f.svc.Create(context.Background(), "organizer-1", createRequest(false),
			&storage.File{Filename: "doc.pdf", ContentType: "application/pdf"})

		assert.ErrorIs(t, err, domain.ErrInvalidImageType)
		assert.False(t, inserted)
	})

	t.Run("invalid status", func(t *testing.T) {
		f := newEventFixture(t)
		req := createRequest(false)
		req.EventStatus = "archived"

		_, err := f.svc.Create(context.Background(), "organizer-1", req, nil)

		assert.ErrorIs(t, err, domain.ErrInvalidEventStatus)
	})

	t.Run("upload failure deletes the row", func(t *testing.T) {
		f := newEventFixture(t)
		var deleted string
		f.events.DeleteFunc = func(ctx context.Context, id string) error {
			deleted = id
			return nil
		}
		f.store.UploadFunc = func(ctx context.Context, bucket, objectPath, contentType string, data []byte) error {
			return domain.Upstream("Storage Service Unavailable", errors.New("503"))
		}

		event, err := f.svc.Create(context.Background(), "organizer-1", createRequest(true), banner())

		assert.Nil(t, event)
		assert.True(t, domain.IsUpstream(err))
		assert.NotEmpty(t, deleted)
		assert.Empty(t, f.gateway.Calls())
	})

	t.Run("price failure deletes the row but keeps the product", func(t *testing.T) {
		f := newEventFixture(t)
		deleted := false
		f.events.DeleteFunc = func(ctx context.Context, id string) error {
			deleted = true
			return nil
		}
		f.gateway.CreatePriceFunc = func(ctx context.Context, productID string, unitAmount int64, currency string) (string, error) {
			return "", domain.Upstream("Payment Gateway Unavailable", errors.New("timeout"))
		}

		_, err := f.svc.Create(context.Background(), "organizer-1", createRequest(true), banner())

		assert.True(t, domain.IsUpstream(err))
		assert.True(t, deleted)
		assert.NotContains(t, f.gateway.Calls(), "archive_product")
	})
}

func TestEventService_List(t *testing.T) {
	f := newEventFixture(t)
	var gotFilter *domain.EventFilter
	f.events.ListPublishedFunc = func(ctx context.Context, filter *domain.EventFilter) ([]*domain.Event, int, error) {
		gotFilter = filter
		return []*domain.Event{{ID: "e-1", Title: "A"}, {ID: "e-2", Title: "B"}}, 12, nil
	}
	f.bookings.CountPaidByEventsFunc = func(ctx context.Context, ids []string) (map[string]int, error) {
		assert.ElementsMatch(t, []string{"e-1", "e-2"}, ids)
		return map[string]int{"e-1": 3}, nil
	}
	f.categories.ForEventsFunc = func(ctx context.Context, ids []string) (map[string][]domain.Category, error) {
		return map[string][]domain.Category{"e-2": {{ID: "cat-1", Name: "Music"}}}, nil
	}

	resp, err := f.svc.List(context.Background(), &dto.ListEventsQuery{Page: 2, Size: 5, Search: "  go "})

	require.NoError(t, err)
	assert.Equal(t, "go", gotFilter.Search)
	assert.Equal(t, 5, gotFilter.Offset())
	assert.Equal(t, 12, resp.Total)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 5, resp.Size)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, 3, resp.Items[0].CurrentBookings)
	assert.NotNil(t, resp.Items[0].Categories)
	assert.Empty(t, resp.Items[0].Categories)
	assert.Equal(t, 0, resp.Items[1].CurrentBookings)
	assert.Equal(t, "Music", resp.Items[1].Categories[0].Name)
}

func TestEventService_ListEmpty(t *testing.T) {
	f := newEventFixture(t)

	resp, err := f.svc.List(context.Background(), nil)

	require.NoError(t, err)
	assert.NotNil(t, resp.Items)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 9, resp.Size)
}

func TestEventService_Get(t *testing.T) {
	event := &domain.Event{ID: "e-1", Title: "A", CreatedBy: "organizer-1"}

	t.Run("with organizer profile", func(t *testing.T) {
		f := newEventFixture(t)
		f.events.GetByIDFunc = func(ctx context.Context, id string) (*domain.Event, error) { return event, nil }
		f.categories.PrimaryForFunc = func(ctx context.Context, id string) (*domain.Category, error) {
			return &domain.Category{ID: "cat-1", Name: "Music"}, nil
		}
		f.bookings.CountPaidFunc = func(ctx context.Context, id string) (int, error) { return 7, nil }
		f.profiles.GetByIDFunc = func(ctx context.Context, id string) (*domain.Profile, error) {
			return &domain.Profile{ID: id, FullName: "Ada Organizer"}, nil
		}

		detail, err := f.svc.Get(context.Background(), "e-1")

		require.NoError(t, err)
		assert.Equal(t, 7, detail.CurrentBookings)
		assert.Equal(t, "Music", detail.Category.Name)
		assert.Equal(t, "Ada Organizer", detail.Organizer.FullName)
	})

	t.Run("missing profile", func(t *testing.T) {
		f := newEventFixture(t)
		f.events.GetByIDFunc = func(ctx context.Context, id string) (*domain.Event, error) { return event, nil }

		detail, err := f.svc.Get(context.Background(), "e-1")

		require.NoError(t, err)
		assert.Nil(t, detail.Category)
		assert.Equal(t, domain.UnknownOrganizer, detail.Organizer.FullName)
	})

	t.Run("not found", func(t *testing.T) {
		f := newEventFixture(t)

		_, err := f.svc.Get(context.Background(), "missing")

		assert.ErrorIs(t, err, domain.ErrEventNotFound)
	})
}

func TestEventService_Delete(t *testing.T) {
	event := &domain.Event{
		ID:              "e-1",
		CreatedBy:       "organizer-1",
		ImageURL:        "https://x.supabase.co/storage/v1/object/public/event-images/banners/e-1/a.png",
		StripeProductID: "prod_1",
		StripePriceID:   "price_1",
	}

	t.Run("success", func(t *testing.T) {
		f := newEventFixture(t)
		f.events.GetOwnedFunc = ownedEvent(event)
		f.gateway.ArchivePriceFunc = func(ctx context.Context, id string) error { return errors.New("already archived") }

		resp, err := f.svc.Delete(context.Background(), "e-1", "organizer-1")

		require.NoError(t, err)
		assert.Equal(t, "Event Successfully Deleted", resp.Message)
		assert.Equal(t, []string{"archive_price", "archive_product"}, f.gateway.Calls())
		assert.Equal(t, []string{"event-images/banners/e-1/a.png"}, f.store.removed)
	})

	t.Run("not owner", func(t *testing.T) {
		f := newEventFixture(t)
		f.events.GetOwnedFunc = ownedEvent(event)

		_, err := f.svc.Delete(context.Background(), "e-1", "intruder")

		assert.ErrorIs(t, err, domain.ErrEventNotFound)
	})

	t.Run("has bookings", func(t *testing.T) {
		f := newEventFixture(t)
		f.events.GetOwnedFunc = ownedEvent(event)
		f.bookings.ExistsForEventFunc = func(ctx context.Context, id string) (bool, error) { return true, nil }
		deleted := false
		f.events.DeleteFunc = func(ctx context.Context, id string) error {
			deleted = true
			return nil
		}

		_, err := f.svc.Delete(context.Background(), "e-1", "organizer-1")

		assert.ErrorIs(t, err, domain.ErrEventHasBookings)
		assert.True(t, domain.IsConflict(err))
		assert.False(t, deleted)
		assert.Empty(t, f.gateway.Calls())
	})
}

func strPtr(s string) *string     { return &s }
func boolPtr(b bool) *bool        { return &b }
func floatPtr(f float64) *float64 { return &f }

func TestEventService_Update(t *testing.T) {
	paid := &domain.Event{
		ID: "e-1", CreatedBy: "organizer-1", Title: "A", Description: "d",
		IsPaid: true, TicketPrice: 20, Currency: "MYR",
		StripeProductID: "prod_1", StripePriceID: "price_1",
		ImageURL: "https://x.supabase.co/storage/v1/object/public/event-images/banners/e-1/old.png",
	}
	free := &domain.Event{ID: "e-2", CreatedBy: "organizer-1", Title: "B", Currency: "MYR"}

	tests := []struct {
		name      string
		event     *domain.Event
		req       *dto.UpdateEventRequest
		setup     func(f *eventFixture)
		wantMsg   string
		wantCalls []string
		check     func(t *testing.T, f *eventFixture, e *domain.Event)
	}{
		{
			name:    "no changes",
			event:   paid,
			req:     &dto.UpdateEventRequest{Title: strPtr("A")},
			wantMsg: "No changes detected",
		},
		{
			name:      "paid to free",
			event:     paid,
			req:       &dto.UpdateEventRequest{IsPaid: boolPtr(false)},
			wantMsg:   "Event Updated Successfully",
			wantCalls: []string{"archive_price", "archive_product"},
			check: func(t *testing.T, f *eventFixture, e *domain.Event) {
				assert.False(t, e.IsPaid)
				assert.Zero(t, e.TicketPrice)
				assert.Empty(t, e.StripePriceID)
				assert.Empty(t, e.StripeProductID)
			},
		},
		{
			name:      "free to paid",
			event:     free,
			req:       &dto.UpdateEventRequest{IsPaid: boolPtr(true), TicketPrice: floatPtr(15)},
			wantMsg:   "Event Updated Successfully",
			wantCalls: []string{"create_product", "create_price"},
			check: func(t *testing.T, f *eventFixture, e *domain.Event) {
				assert.Equal(t, "prod_test", e.StripeProductID)
				assert.Equal(t, "price_test", e.StripePriceID)
			},
		},
		{
			name:      "price change reprices the product",
			event:     paid,
			req:       &dto.UpdateEventRequest{TicketPrice: floatPtr(30)},
			wantMsg:   "Event Updated Successfully",
			wantCalls: []string{"archive_price", "create_price"},
			check: func(t *testing.T, f *eventFixture, e *domain.Event) {
				assert.Equal(t, "prod_1", e.StripeProductID)
				assert.Equal(t, "price_test", e.StripePriceID)
				assert.Equal(t, 30.0, e.TicketPrice)
			},
		},
		{
			name:  "reprice failure falls back to a new product",
			event: paid,
			req:   &dto.UpdateEventRequest{Currency: strPtr("usd")},
			setup: func(f *eventFixture) {
				calls := 0
				f.gateway.CreatePriceFunc = func(ctx context.Context, productID string, amount int64, currency string) (string, error) {
					calls++
					if calls == 1 {
						return "", errors.New("No such product")
					}
					assert.Equal(t, "prod_test", productID)
					assert.Equal(t, "usd", currency)
					return "price_fallback", nil
				}
			},
			wantMsg:   "Event Updated Successfully",
			wantCalls: []string{"archive_price", "create_price", "create_product", "create_price"},
			check: func(t *testing.T, f *eventFixture, e *domain.Event) {
				assert.Equal(t, "USD", e.Currency)
				assert.Equal(t, "prod_test", e.StripeProductID)
				assert.Equal(t, "price_fallback", e.StripePriceID)
			},
		},
		{
			name:      "text change updates the product",
			event:     paid,
			req:       &dto.UpdateEventRequest{Description: strPtr("new description")},
			wantMsg:   "Event Updated Successfully",
			wantCalls: []string{"update_product"},
		},
		{
			name:    "image replacement removes the old blob",
			event:   paid,
			req:     &dto.UpdateEventRequest{ImageURL: strPtr("https://x.supabase.co/storage/v1/object/public/event-images/banners/e-1/new.png")},
			wantMsg: "Event Updated Successfully",
			check: func(t *testing.T, f *eventFixture, e *domain.Event) {
				assert.Equal(t, []string{"event-images/banners/e-1/old.png"}, f.store.removed)
				assert.Contains(t, e.ImageURL, "new.png")
			},
		},
		{
			name:  "category change replaces the mapping",
			event: free,
			req:   &dto.UpdateEventRequest{CategoryID: strPtr("cat-2")},
			setup: func(f *eventFixture) {
				f.categories.PrimaryForFunc = func(ctx context.Context, id string) (*domain.Category, error) {
					return &domain.Category{ID: "cat-1"}, nil
				}
			},
			wantMsg: "Event Updated Successfully",
		},
		{
			name:  "same category is not a change",
			event: free,
			req:   &dto.UpdateEventRequest{CategoryID: strPtr("cat-1")},
			setup: func(f *eventFixture) {
				f.categories.PrimaryForFunc = func(ctx context.Context, id string) (*domain.Category, error) {
					return &domain.Category{ID: "cat-1"}, nil
				}
				f.categories.ReplaceForEventFunc = func(ctx context.Context, eventID, categoryID string) error {
					t.Fatal("replace should not be called")
					return nil
				}
			},
			wantMsg: "No changes detected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEventFixture(t)
			f.events.GetOwnedFunc = ownedEvent(tt.event)
			var persisted *domain.Event
			f.events.UpdateFunc = func(ctx context.Context, e *domain.Event) error {
				persisted = e
				return nil
			}
			if tt.setup != nil {
				tt.setup(f)
			}

			resp, err := f.svc.Update(context.Background(), tt.event.ID, "organizer-1", tt.req)

			require.NoError(t, err)
			assert.Equal(t, tt.wantMsg, resp.Message)
			require.NotNil(t, resp.Updates)
			if tt.wantMsg == "No changes detected" {
				assert.Nil(t, persisted)
				assert.Equal(t, tt.event.ID, resp.Updates.ID)
			} else {
				require.NotNil(t, persisted)
				assert.Equal(t, testNow, persisted.UpdatedAt)
			}
			if tt.wantCalls == nil {
				assert.Empty(t, f.gateway.Calls())
			} else {
				assert.Equal(t, tt.wantCalls, f.gateway.Calls())
			}
			if tt.check != nil {
				tt.check(t, f, resp.Updates)
			}
		})
	}
}

func TestEventService_UpdateNotOwner(t *testing.T) {
	f := newEventFixture(t)
	f.events.GetOwnedFunc = ownedEvent(&domain.Event{ID: "e-1", CreatedBy: "organizer-1"})

	_, err := f.svc.Update(context.Background(), "e-1", "intruder", &dto.UpdateEventRequest{Title: strPtr("x")})

	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}

func TestEventService_UploadImage(t *testing.T) {
	f := newEventFixture(t)

	resp, err := f.svc.UploadImage(context.Background(), "e-1", banner())

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.Path, "banners/e-1/"))
	assert.Equal(t, "https://storage.test/storage/v1/object/public/event-images/"+resp.Path, resp.URL)

	_, err = f.svc.UploadImage(context.Background(), "e-1", &storage.File{Filename: "x.txt", ContentType: "text/plain"})
	assert.ErrorIs(t, err, domain.ErrInvalidImageType)
}

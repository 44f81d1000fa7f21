package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"testing"
	"time"

	"github.com/Goh0809/Eventora-Backend/internal/domain"
	"github.com/Goh0809/Eventora-Backend/internal/dto"
	"github.com/Goh0809/Eventora-Backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type formPart struct {
	field       string
	filename    string
	contentType string
	data        []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...formPart) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.filename+`"`)
		h.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func validEventForm() map[string]string {
	return map[string]string{
		"title":          "Go Meetup",
		"description":    "Monthly meetup",
		"location":       "Kuala Lumpur",
		"event_date":     "2026-05-01T10:00:00Z",
		"event_end_date": "2026-05-01T12:00:00Z",
		"max_slots":      "50",
		"is_paid":        "true",
		"ticket_price":   "25.5",
		"currency":       "myr",
		"category_id":    "cat-1",
	}
}

func TestEventHandler_Create(t *testing.T) {
	t.Run("binds form and image", func(t *testing.T) {
		api := newTestAPI()

		var gotReq *dto.CreateEventRequest
		var gotImage *storage.File
		api.event.CreateFunc = func(ctx context.Context, userID string, req *dto.CreateEventRequest, image *storage.File) (*domain.Event, error) {
			assert.Equal(t, "organizer", userID)
			gotReq = req
			gotImage = image
			return &domain.Event{ID: "evt-1", Title: req.Title, CreatedBy: userID}, nil
		}

		body, contentType := multipartBody(t, validEventForm(), formPart{
			field: "image", filename: "banner.png", contentType: "image/png", data: []byte("png-bytes"),
		})
		w := api.do(http.MethodPost, "/api/v1/events", body, contentType, "organizer")

		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		require.NotNil(t, gotReq)
		assert.Equal(t, "Go Meetup", gotReq.Title)
		assert.Equal(t, 50, gotReq.MaxSlots)
		assert.True(t, gotReq.IsPaid)
		assert.InDelta(t, 25.5, gotReq.TicketPrice, 0.001)
		assert.True(t, gotReq.EventDate.Equal(time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)))

		require.NotNil(t, gotImage)
		assert.Equal(t, "banner.png", gotImage.Filename)
		assert.Equal(t, "image/png", gotImage.ContentType)
		assert.Equal(t, []byte("png-bytes"), gotImage.Data)

		var event domain.Event
		decodeData(t, w, &event)
		assert.Equal(t, "evt-1", event.ID)
	})

	t.Run("image is optional", func(t *testing.T) {
		api := newTestAPI()
		called := false
		api.event.CreateFunc = func(ctx context.Context, userID string, req *dto.CreateEventRequest, image *storage.File) (*domain.Event, error) {
			called = true
			assert.Nil(t, image)
			return &domain.Event{ID: "evt-2"}, nil
		}

		body, contentType := multipartBody(t, validEventForm())
		w := api.do(http.MethodPost, "/api/v1/events", body, contentType, "organizer")

		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.True(t, called)
	})

	t.Run("missing required field", func(t *testing.T) {
		api := newTestAPI()
		form := validEventForm()
		delete(form, "location")

		body, contentType := multipartBody(t, form)
		w := api.do(http.MethodPost, "/api/v1/events", body, contentType, "organizer")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_REQUEST", decode(t, w).Error.Code)
	})

	t.Run("invalid image type from service", func(t *testing.T) {
		api := newTestAPI()
		api.event.CreateFunc = func(ctx context.Context, userID string, req *dto.CreateEventRequest, image *storage.File) (*domain.Event, error) {
			return nil, domain.ErrInvalidImageType
		}

		body, contentType := multipartBody(t, validEventForm(), formPart{
			field: "image", filename: "notes.txt", contentType: "text/plain", data: []byte("hello"),
		})
		w := api.do(http.MethodPost, "/api/v1/events", body, contentType, "organizer")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", decode(t, w).Error.Code)
	})
}

func TestEventHandler_List(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		api := newTestAPI()
		api.event.ListFunc = func(ctx context.Context, query *dto.ListEventsQuery) (*dto.EventListResponse, error) {
			assert.Equal(t, 1, query.Page)
			assert.Equal(t, 9, query.Size)
			return &dto.EventListResponse{Items: []*domain.EventSummary{}, Page: 1, Size: 9}, nil
		}

		w := api.do(http.MethodGet, "/api/v1/events", nil, "", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("filters", func(t *testing.T) {
		api := newTestAPI()
		api.event.ListFunc = func(ctx context.Context, query *dto.ListEventsQuery) (*dto.EventListResponse, error) {
			assert.Equal(t, 2, query.Page)
			assert.Equal(t, 20, query.Size)
			assert.Equal(t, "jazz", query.Search)
			assert.Equal(t, "cat-1", query.CategoryID)
			return &dto.EventListResponse{Items: []*domain.EventSummary{}, Page: 2, Size: 20}, nil
		}

		w := api.do(http.MethodGet, "/api/v1/events?page=2&size=20&search=jazz&category_id=cat-1", nil, "", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("size out of range", func(t *testing.T) {
		api := newTestAPI()
		w := api.do(http.MethodGet, "/api/v1/events?size=500", nil, "", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestEventHandler_Get(t *testing.T) {
	api := newTestAPI()

	w := api.do(http.MethodGet, "/api/v1/events/evt-404", nil, "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Event Not Found", decode(t, w).Error.Message)

	api.event.GetFunc = func(ctx context.Context, id string) (*domain.EventDetail, error) {
		return &domain.EventDetail{EventSummary: domain.EventSummary{Event: domain.Event{ID: id}}}, nil
	}
	w = api.do(http.MethodGet, "/api/v1/events/evt-1", nil, "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestEventHandler_Update(t *testing.T) {
	t.Run("partial update", func(t *testing.T) {
		api := newTestAPI()
		api.event.UpdateFunc = func(ctx context.Context, id, userID string, req *dto.UpdateEventRequest) (*dto.EventUpdateResponse, error) {
			assert.Equal(t, "evt-1", id)
			assert.Equal(t, "organizer", userID)
			require.NotNil(t, req.Title)
			assert.Equal(t, "New Title", *req.Title)
			assert.Nil(t, req.Location)
			return &dto.EventUpdateResponse{Message: "Event Updated Successfully"}, nil
		}

		w := api.doJSON(http.MethodPut, "/api/v1/events/evt-1", map[string]string{"title": "New Title"}, "organizer")

		assert.Equal(t, http.StatusOK, w.Code)
		var result dto.EventUpdateResponse
		decodeData(t, w, &result)
		assert.Equal(t, "Event Updated Successfully", result.Message)
	})

	t.Run("not the organizer", func(t *testing.T) {
		api := newTestAPI()
		api.event.UpdateFunc = func(ctx context.Context, id, userID string, req *dto.UpdateEventRequest) (*dto.EventUpdateResponse, error) {
			return nil, domain.Forbidden("You Are Not Authorized to Update This Event")
		}

		w := api.doJSON(http.MethodPut, "/api/v1/events/evt-1", map[string]string{"title": "x"}, "someone")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("negative max slots", func(t *testing.T) {
		api := newTestAPI()
		w := api.doJSON(http.MethodPut, "/api/v1/events/evt-1", map[string]int{"max_slots": -1}, "organizer")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestEventHandler_Delete(t *testing.T) {
	api := newTestAPI()
	api.event.DeleteFunc = func(ctx context.Context, id, userID string) (*dto.MessageResponse, error) {
		return nil, domain.ErrEventHasBookings
	}

	w := api.do(http.MethodDelete, "/api/v1/events/evt-1", nil, "", "organizer")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestEventHandler_UploadImage(t *testing.T) {
	t.Run("requires event id", func(t *testing.T) {
		api := newTestAPI()
		body, contentType := multipartBody(t, nil, formPart{field: "file", filename: "a.png", contentType: "image/png", data: []byte("x")})
		w := api.do(http.MethodPost, "/api/v1/events/upload-image", body, contentType, "organizer")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("requires file", func(t *testing.T) {
		api := newTestAPI()
		body, contentType := multipartBody(t, nil)
		w := api.do(http.MethodPost, "/api/v1/events/upload-image?event_id=evt-1", body, contentType, "organizer")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("uploads", func(t *testing.T) {
		api := newTestAPI()
		api.event.UploadImageFunc = func(ctx context.Context, eventID string, file *storage.File) (*dto.UploadResponse, error) {
			assert.Equal(t, "evt-1", eventID)
			assert.Equal(t, "image/png", file.ContentType)
			return &dto.UploadResponse{URL: "https://storage.test/banners/a.png", Path: "banners/a.png"}, nil
		}

		body, contentType := multipartBody(t, nil, formPart{field: "file", filename: "a.png", contentType: "image/png", data: []byte("x")})
		w := api.do(http.MethodPost, "/api/v1/events/upload-image?event_id=evt-1", body, contentType, "organizer")

		assert.Equal(t, http.StatusOK, w.Code)
		var result dto.UploadResponse
		decodeData(t, w, &result)
		assert.Equal(t, "banners/a.png", result.Path)
	})
}

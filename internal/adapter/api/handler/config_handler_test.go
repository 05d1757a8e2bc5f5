package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/roadgrid/cvstore/internal/domain"
	"github.com/roadgrid/cvstore/internal/domain/mocks"
	"github.com/roadgrid/cvstore/internal/usecase"
)

const configBody = `{
	"onlineStorageType": "Age",
	"onlineDays": 30,
	"archiveStorageType": "Size",
	"archivedSize": 1073741824,
	"startTime": "0001-01-01T02:00:00Z",
	"endTime": "0001-01-01T04:00:00Z"
}`

func TestConfigHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	newHandler := func(store *mocks.MockConfigStore) *ConfigHandler {
		return NewConfigHandler(usecase.NewConfigService(store, logger), logger)
	}

	t.Run("Add Returns Created", func(t *testing.T) {
		h := newHandler(&mocks.MockConfigStore{})
		req := httptest.NewRequest(http.MethodPost, "/config", strings.NewReader(configBody))
		rec := httptest.NewRecorder()

		h.Add(rec, req)

		if rec.Code != http.StatusCreated {
			t.Errorf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
		}
	})

	t.Run("Second Add Returns Conflict", func(t *testing.T) {
		existing := domain.RetentionConfig{
			ID:                 uuid.New(),
			OnlineStorageType:  domain.StorageTypeAge,
			ArchiveStorageType: domain.StorageTypeAge,
		}
		h := newHandler(&mocks.MockConfigStore{Stored: &existing})
		req := httptest.NewRequest(http.MethodPost, "/config", strings.NewReader(configBody))
		rec := httptest.NewRecorder()

		h.Add(rec, req)

		if rec.Code != http.StatusConflict {
			t.Errorf("expected status %d, got %d", http.StatusConflict, rec.Code)
		}
	})

	t.Run("Add With Invalid Body Returns Bad Request", func(t *testing.T) {
		h := newHandler(&mocks.MockConfigStore{})
		req := httptest.NewRequest(http.MethodPost, "/config", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()

		h.Add(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
		}
	})

	t.Run("Get Without Config Returns Not Found", func(t *testing.T) {
		h := newHandler(&mocks.MockConfigStore{})
		req := httptest.NewRequest(http.MethodGet, "/config", nil)
		rec := httptest.NewRecorder()

		h.Get(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}
	})

	t.Run("Get Returns Stored Config", func(t *testing.T) {
		existing := domain.RetentionConfig{
			ID:                 uuid.New(),
			OnlineStorageType:  domain.StorageTypeSize,
			OnlineSize:         1 << 20,
			ArchiveStorageType: domain.StorageTypeAge,
			ArchivedDays:       90,
			StartTime:          time.Date(0, 1, 1, 2, 0, 0, 0, time.UTC),
			EndTime:            time.Date(0, 1, 1, 4, 0, 0, 0, time.UTC),
		}
		h := newHandler(&mocks.MockConfigStore{Stored: &existing})
		req := httptest.NewRequest(http.MethodGet, "/config", nil)
		rec := httptest.NewRecorder()

		h.Get(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), existing.ID.String()) {
			t.Errorf("expected body to contain config id, got %s", rec.Body.String())
		}
	})

	t.Run("Update Missing Config Returns Not Found", func(t *testing.T) {
		h := newHandler(&mocks.MockConfigStore{})
		body := strings.Replace(configBody, `"onlineStorageType"`,
			`"id": "`+uuid.NewString()+`", "onlineStorageType"`, 1)
		req := httptest.NewRequest(http.MethodPut, "/config", strings.NewReader(body))
		rec := httptest.NewRecorder()

		h.Update(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}
	})
}

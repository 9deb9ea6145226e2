package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

type settingsRepoMock struct {
	SetLeadTimeFunc func(ctx context.Context, ownerID uuid.UUID, minutes int) error
}

func (m *settingsRepoMock) SetLeadTime(ctx context.Context, ownerID uuid.UUID, minutes int) error {
	return m.SetLeadTimeFunc(ctx, ownerID, minutes)
}

func TestSetLeadTime(t *testing.T) {
	t.Parallel()

	accountID := uuid.New()
	var gotMinutes int

	h := NewSettingsHandler(discardLogger(), &settingsRepoMock{
		SetLeadTimeFunc: func(ctx context.Context, ownerID uuid.UUID, minutes int) error {
			if ownerID != accountID {
				t.Errorf("owner: got %s, want %s", ownerID, accountID)
			}
			gotMinutes = minutes
			return nil
		},
	})

	rec := httptest.NewRecorder()
	h.SetLeadTime(rec, request(http.MethodPut, "/api/v1/settings/lead-time", accountID, uuid.Nil,
		`{"lead_time_minutes": 30}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d (body %s)", rec.Code, rec.Body.String())
	}
	if gotMinutes != 30 {
		t.Errorf("minutes: got %d, want 30", gotMinutes)
	}
}

func TestSetLeadTime_OutOfBoundsIs400(t *testing.T) {
	t.Parallel()

	h := NewSettingsHandler(discardLogger(), &settingsRepoMock{
		SetLeadTimeFunc: func(ctx context.Context, ownerID uuid.UUID, minutes int) error {
			t.Error("out-of-bounds value must not be stored")
			return nil
		},
	})

	for _, body := range []string{
		`{"lead_time_minutes": 0}`,
		`{"lead_time_minutes": -5}`,
		`{"lead_time_minutes": 61}`,
	} {
		rec := httptest.NewRecorder()
		h.SetLeadTime(rec, request(http.MethodPut, "/api/v1/settings/lead-time", uuid.New(), uuid.Nil, body))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status got %d, want 400", body, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "between 1 and 60") {
			t.Errorf("%s: body %q missing bounds message", body, rec.Body.String())
		}
	}
}

func TestSetLeadTime_MissingAccountIs401(t *testing.T) {
	t.Parallel()

	h := NewSettingsHandler(discardLogger(), &settingsRepoMock{})

	rec := httptest.NewRecorder()
	h.SetLeadTime(rec, request(http.MethodPut, "/api/v1/settings/lead-time", uuid.Nil, uuid.Nil,
		`{"lead_time_minutes": 10}`))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want 401", rec.Code)
	}
}

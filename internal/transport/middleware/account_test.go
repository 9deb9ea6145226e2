package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/meetscribe/backend/pkg/ctxutil"
)

func TestAccount_ValidHeader(t *testing.T) {
	t.Parallel()

	want := uuid.New()

	var got uuid.UUID
	var ok bool
	handler := Account(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = ctxutil.AccountIDFromCtx(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Account-Id", want.String())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if !ok {
		t.Fatal("account id missing from context")
	}
	if got != want {
		t.Errorf("account id: got %v, want %v", got, want)
	}
}

func TestAccount_MalformedHeader(t *testing.T) {
	t.Parallel()

	handler := Account(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run for a malformed header")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Account-Id", "not-a-uuid")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestAccount_AbsentHeaderPassesThrough(t *testing.T) {
	t.Parallel()

	var called bool
	handler := Account(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, ok := ctxutil.AccountIDFromCtx(r.Context()); ok {
			t.Error("context must carry no account id")
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if !called {
		t.Fatal("handler not called")
	}
}

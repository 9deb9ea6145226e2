package webhook

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetscribe/backend/internal/domain"
)

type lifecycleMock struct {
	ApplyUpdateFunc func(ctx context.Context, update domain.StatusUpdate) error
}

func (m *lifecycleMock) ApplyUpdate(ctx context.Context, update domain.StatusUpdate) error {
	return m.ApplyUpdateFunc(ctx, update)
}

func newHandler(lc lifecycleService) *Handler {
	return NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), lc)
}

const validBody = `{
	"event": "bot.status_change",
	"data": {
		"bot_id": "ext-1",
		"status": {"code": "in_call_recording", "sub_code": "", "created_at": "2025-03-10T15:01:30Z"}
	}
}`

func TestReceive_AppliesUpdate(t *testing.T) {
	t.Parallel()

	var got domain.StatusUpdate
	h := newHandler(&lifecycleMock{
		ApplyUpdateFunc: func(ctx context.Context, update domain.StatusUpdate) error {
			got = update
			return nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/webhooks/recall", strings.NewReader(validBody))
	rec := httptest.NewRecorder()

	h.Receive(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ext-1", got.ExternalBotID)
	assert.Equal(t, "in_call_recording", got.RawState)
	assert.Equal(t, time.Date(2025, 3, 10, 15, 1, 30, 0, time.UTC).UnixMilli(), got.Sequence)
}

func TestReceive_StaleAnswers200(t *testing.T) {
	t.Parallel()

	h := newHandler(&lifecycleMock{
		ApplyUpdateFunc: func(ctx context.Context, update domain.StatusUpdate) error {
			return fmt.Errorf("sequence 10 not newer than 20: %w", domain.ErrStaleUpdate)
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/webhooks/recall", strings.NewReader(validBody))
	rec := httptest.NewRecorder()

	h.Receive(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, "duplicates must be acknowledged, not retried")
}

func TestReceive_MalformedBody(t *testing.T) {
	t.Parallel()

	h := newHandler(&lifecycleMock{
		ApplyUpdateFunc: func(ctx context.Context, update domain.StatusUpdate) error {
			t.Error("malformed payloads must not reach the lifecycle")
			return nil
		},
	})

	for _, body := range []string{
		"{not json",
		`{"event": "bot.status_change", "data": {"bot_id": "", "status": {"code": "done", "created_at": "2025-03-10T15:00:00Z"}}}`,
		`{"event": "bot.status_change", "data": {"bot_id": "ext-1", "status": {"code": "", "created_at": "2025-03-10T15:00:00Z"}}}`,
		`{"event": "bot.status_change", "data": {"bot_id": "ext-1", "status": {"code": "done"}}}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/recall", strings.NewReader(body))
		rec := httptest.NewRecorder()

		h.Receive(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "body: %s", body)
	}
}

func TestReceive_ProcessingFailure(t *testing.T) {
	t.Parallel()

	h := newHandler(&lifecycleMock{
		ApplyUpdateFunc: func(ctx context.Context, update domain.StatusUpdate) error {
			return fmt.Errorf("db down")
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/webhooks/recall", strings.NewReader(validBody))
	rec := httptest.NewRecorder()

	h.Receive(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

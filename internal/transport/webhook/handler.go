// Package webhook receives push notifications from the recording service.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/meetscribe/backend/internal/domain"
)

type lifecycleService interface {
	ApplyUpdate(ctx context.Context, update domain.StatusUpdate) error
}

// Handler turns recording-service webhook deliveries into status updates.
type Handler struct {
	lifecycle lifecycleService
	log       *slog.Logger
}

// NewHandler creates a webhook Handler.
func NewHandler(logger *slog.Logger, lifecycle lifecycleService) *Handler {
	return &Handler{
		lifecycle: lifecycle,
		log:       logger.With("handler", "webhook"),
	}
}

// payload is the provider's delivery shape.
type payload struct {
	Event string `json:"event"`
	Data  struct {
		BotID  string `json:"bot_id"`
		Status struct {
			Code      string    `json:"code"`
			SubCode   string    `json:"sub_code"`
			Message   string    `json:"message"`
			CreatedAt time.Time `json:"created_at"`
		} `json:"status"`
	} `json:"data"`
}

// Receive answers POST /webhooks/recall. Duplicate and stale deliveries are
// acknowledged with 200 so the provider stops retrying them; only a body we
// cannot parse is the sender's error.
func (h *Handler) Receive(w http.ResponseWriter, r *http.Request) {
	var p payload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if p.Data.BotID == "" || p.Data.Status.Code == "" || p.Data.Status.CreatedAt.IsZero() {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	update := domain.StatusUpdate{
		ExternalBotID: p.Data.BotID,
		RawState:      p.Data.Status.Code,
		Sequence:      p.Data.Status.CreatedAt.UnixMilli(),
		Detail:        p.Data.Status.SubCode,
	}

	if err := h.lifecycle.ApplyUpdate(r.Context(), update); err != nil {
		if errors.Is(err, domain.ErrStaleUpdate) {
			w.WriteHeader(http.StatusOK)
			return
		}
		h.log.ErrorContext(r.Context(), "webhook processing failed",
			slog.String("external_bot_id", update.ExternalBotID),
			slog.String("raw_state", update.RawState),
			slog.Any("error", err),
		)
		http.Error(w, "processing failed", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

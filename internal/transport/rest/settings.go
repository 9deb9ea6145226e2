package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/meetscribe/backend/pkg/ctxutil"
)

type settingsRepo interface {
	SetLeadTime(ctx context.Context, ownerID uuid.UUID, minutes int) error
}

// SettingsHandler serves the per-account pipeline settings.
type SettingsHandler struct {
	settings settingsRepo
	log      *slog.Logger
}

// NewSettingsHandler creates a SettingsHandler.
func NewSettingsHandler(logger *slog.Logger, settings settingsRepo) *SettingsHandler {
	return &SettingsHandler{
		settings: settings,
		log:      logger.With("handler", "settings"),
	}
}

type leadTimeRequest struct {
	LeadTimeMinutes int `json:"lead_time_minutes"`
}

// SetLeadTime answers PUT /api/v1/settings/lead-time.
func (h *SettingsHandler) SetLeadTime(w http.ResponseWriter, r *http.Request) {
	accountID, ok := ctxutil.AccountIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing X-Account-Id header")
		return
	}

	var req leadTimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.LeadTimeMinutes < 1 || req.LeadTimeMinutes > 60 {
		writeError(w, http.StatusBadRequest, "lead_time_minutes must be between 1 and 60")
		return
	}

	if err := h.settings.SetLeadTime(r.Context(), accountID, req.LeadTimeMinutes); err != nil {
		handleError(r.Context(), h.log, w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"lead_time_minutes": req.LeadTimeMinutes})
}

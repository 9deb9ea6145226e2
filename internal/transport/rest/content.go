package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/meetscribe/backend/internal/domain"
	"github.com/meetscribe/backend/pkg/ctxutil"
)

type contentGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.GeneratedContent, error)
}

type eventGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.MeetingEvent, error)
}

type publishService interface {
	Publish(ctx context.Context, contentID uuid.UUID) (*domain.GeneratedContent, error)
}

// ContentHandler serves the content publishing endpoint.
type ContentHandler struct {
	contents  contentGetter
	events    eventGetter
	publisher publishService
	log       *slog.Logger
}

// NewContentHandler creates a ContentHandler.
func NewContentHandler(logger *slog.Logger, contents contentGetter, events eventGetter, publisher publishService) *ContentHandler {
	return &ContentHandler{
		contents:  contents,
		events:    events,
		publisher: publisher,
		log:       logger.With("handler", "content"),
	}
}

// Publish answers POST /api/v1/content/{id}/publish. A failed post answers
// 502 with the artifact carrying the recorded error. Artifacts of foreign
// accounts answer 404, indistinguishable from absent ones.
func (h *ContentHandler) Publish(w http.ResponseWriter, r *http.Request) {
	accountID, ok := ctxutil.AccountIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing X-Account-Id header")
		return
	}

	contentID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid content id")
		return
	}

	existing, err := h.contents.GetByID(r.Context(), contentID)
	if err != nil {
		handleError(r.Context(), h.log, w, err)
		return
	}
	event, err := h.events.GetByID(r.Context(), existing.MeetingEventID)
	if err != nil {
		handleError(r.Context(), h.log, w, err)
		return
	}
	if event.OwnerAccountID != accountID {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	artifact, err := h.publisher.Publish(r.Context(), contentID)
	if err != nil {
		if artifact != nil {
			// The attempt ran and was recorded as failed.
			writeJSON(w, http.StatusBadGateway, toContentItem(artifact))
			return
		}
		handleError(r.Context(), h.log, w, err)
		return
	}

	writeJSON(w, http.StatusOK, toContentItem(artifact))
}

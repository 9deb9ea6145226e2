package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/meetscribe/backend/internal/domain"
	"github.com/meetscribe/backend/pkg/ctxutil"
)

type eventRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.MeetingEvent, error)
	SetNotetakerEnabled(ctx context.Context, id uuid.UUID, enabled bool) error
}

type botRepo interface {
	GetByMeetingEventID(ctx context.Context, eventID uuid.UUID) (*domain.Bot, error)
}

type transcriptRepo interface {
	GetByBotID(ctx context.Context, botID uuid.UUID) (*domain.Transcript, error)
}

type contentRepo interface {
	ListByMeetingEvent(ctx context.Context, eventID uuid.UUID) ([]*domain.GeneratedContent, error)
}

type contentService interface {
	GenerateManual(ctx context.Context, eventID uuid.UUID, platform domain.SocialPlatform) (*domain.GeneratedContent, error)
}

type lifecycleService interface {
	CancelForEvent(ctx context.Context, eventID uuid.UUID) error
}

// MeetingHandler serves the meeting-scoped endpoints.
type MeetingHandler struct {
	events      eventRepo
	bots        botRepo
	transcripts transcriptRepo
	content     contentRepo
	generator   contentService
	lifecycle   lifecycleService
	log         *slog.Logger
}

// NewMeetingHandler creates a MeetingHandler.
func NewMeetingHandler(
	logger *slog.Logger,
	events eventRepo,
	bots botRepo,
	transcripts transcriptRepo,
	content contentRepo,
	generator contentService,
	lifecycle lifecycleService,
) *MeetingHandler {
	return &MeetingHandler{
		events:      events,
		bots:        bots,
		transcripts: transcripts,
		content:     content,
		generator:   generator,
		lifecycle:   lifecycle,
		log:         logger.With("handler", "meetings"),
	}
}

// ownedEvent loads the event and checks it belongs to the caller. Foreign
// events answer 404, indistinguishable from absent ones.
func (h *MeetingHandler) ownedEvent(w http.ResponseWriter, r *http.Request) (*domain.MeetingEvent, bool) {
	accountID, ok := ctxutil.AccountIDFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing X-Account-Id header")
		return nil, false
	}

	eventID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid meeting id")
		return nil, false
	}

	event, err := h.events.GetByID(r.Context(), eventID)
	if err != nil {
		handleError(r.Context(), h.log, w, err)
		return nil, false
	}
	if event.OwnerAccountID != accountID {
		writeError(w, http.StatusNotFound, "not found")
		return nil, false
	}
	return event, true
}

type botResponse struct {
	ID                uuid.UUID            `json:"id"`
	State             string               `json:"state"`
	ExternalBotID     string               `json:"external_bot_id,omitempty"`
	ScheduledJoinTime time.Time            `json:"scheduled_join_time"`
	LastError         string               `json:"last_error,omitempty"`
	StateHistory      []domain.StateChange `json:"state_history"`
}

// GetBot answers GET /api/v1/meetings/{id}/bot.
func (h *MeetingHandler) GetBot(w http.ResponseWriter, r *http.Request) {
	event, ok := h.ownedEvent(w, r)
	if !ok {
		return
	}

	bot, err := h.bots.GetByMeetingEventID(r.Context(), event.ID)
	if err != nil {
		handleError(r.Context(), h.log, w, err)
		return
	}

	writeJSON(w, http.StatusOK, botResponse{
		ID:                bot.ID,
		State:             bot.State.String(),
		ExternalBotID:     bot.ExternalBotID,
		ScheduledJoinTime: bot.ScheduledJoinTime,
		LastError:         bot.LastError,
		StateHistory:      bot.StateHistory,
	})
}

type transcriptResponse struct {
	ID        uuid.UUID        `json:"id"`
	BotID     uuid.UUID        `json:"bot_id"`
	Segments  []domain.Segment `json:"segments"`
	Text      string           `json:"text"`
	FetchedAt time.Time        `json:"fetched_at"`
}

// GetTranscript answers GET /api/v1/meetings/{id}/transcript.
func (h *MeetingHandler) GetTranscript(w http.ResponseWriter, r *http.Request) {
	event, ok := h.ownedEvent(w, r)
	if !ok {
		return
	}

	bot, err := h.bots.GetByMeetingEventID(r.Context(), event.ID)
	if err != nil {
		handleError(r.Context(), h.log, w, err)
		return
	}

	transcript, err := h.transcripts.GetByBotID(r.Context(), bot.ID)
	if err != nil {
		handleError(r.Context(), h.log, w, err)
		return
	}

	writeJSON(w, http.StatusOK, transcriptResponse{
		ID:        transcript.ID,
		BotID:     transcript.BotID,
		Segments:  transcript.Segments,
		Text:      transcript.Text(),
		FetchedAt: transcript.FetchedAt,
	})
}

type contentItemResponse struct {
	ID             uuid.UUID  `json:"id"`
	Kind           string     `json:"kind"`
	Platform       string     `json:"platform,omitempty"`
	Body           string     `json:"body"`
	Status         string     `json:"status"`
	ExternalPostID string     `json:"external_post_id,omitempty"`
	LastError      string     `json:"last_error,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	PostedAt       *time.Time `json:"posted_at,omitempty"`
}

func toContentItem(c *domain.GeneratedContent) contentItemResponse {
	item := contentItemResponse{
		ID:             c.ID,
		Kind:           c.Kind.String(),
		Body:           c.Body,
		Status:         c.Status.String(),
		ExternalPostID: c.ExternalPostID,
		LastError:      c.LastError,
		CreatedAt:      c.CreatedAt,
		PostedAt:       c.PostedAt,
	}
	if c.Platform != nil {
		item.Platform = c.Platform.String()
	}
	return item
}

// ListContent answers GET /api/v1/meetings/{id}/content.
func (h *MeetingHandler) ListContent(w http.ResponseWriter, r *http.Request) {
	event, ok := h.ownedEvent(w, r)
	if !ok {
		return
	}

	items, err := h.content.ListByMeetingEvent(r.Context(), event.ID)
	if err != nil {
		handleError(r.Context(), h.log, w, err)
		return
	}

	out := make([]contentItemResponse, 0, len(items))
	for _, c := range items {
		out = append(out, toContentItem(c))
	}
	writeJSON(w, http.StatusOK, out)
}

type generateRequest struct {
	Platform string `json:"platform"`
}

// Generate answers POST /api/v1/meetings/{id}/generate. An empty platform
// requests the follow-up email.
func (h *MeetingHandler) Generate(w http.ResponseWriter, r *http.Request) {
	event, ok := h.ownedEvent(w, r)
	if !ok {
		return
	}

	var req generateRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	artifact, err := h.generator.GenerateManual(r.Context(), event.ID, domain.SocialPlatform(req.Platform))
	if err != nil {
		handleError(r.Context(), h.log, w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toContentItem(artifact))
}

type notetakerRequest struct {
	Enabled bool `json:"enabled"`
}

// SetNotetaker answers PUT /api/v1/events/{id}/notetaker. Disabling cancels
// a live bot.
func (h *MeetingHandler) SetNotetaker(w http.ResponseWriter, r *http.Request) {
	event, ok := h.ownedEvent(w, r)
	if !ok {
		return
	}

	var req notetakerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.events.SetNotetakerEnabled(r.Context(), event.ID, req.Enabled); err != nil {
		handleError(r.Context(), h.log, w, err)
		return
	}

	if !req.Enabled {
		if err := h.lifecycle.CancelForEvent(r.Context(), event.ID); err != nil {
			handleError(r.Context(), h.log, w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]bool{"notetaker_enabled": req.Enabled})
}

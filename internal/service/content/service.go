// Package content turns finished transcripts into drafts: one follow-up
// email per meeting plus one social post per matching automation rule.
package content

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/meetscribe/backend/internal/domain"
)

type eventRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.MeetingEvent, error)
}

type botRepo interface {
	GetByMeetingEventID(ctx context.Context, eventID uuid.UUID) (*domain.Bot, error)
}

type transcriptRepo interface {
	GetByBotID(ctx context.Context, botID uuid.UUID) (*domain.Transcript, error)
}

type automationRepo interface {
	GetActive(ctx context.Context, ownerID uuid.UUID, platform domain.SocialPlatform) (*domain.Automation, error)
	ListActiveForOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Automation, error)
}

type contentRepo interface {
	Create(ctx context.Context, c *domain.GeneratedContent) error
}

// textGenerator returns the model's literal response for a rendered prompt.
type textGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service generates drafts from transcripts.
type Service struct {
	events      eventRepo
	bots        botRepo
	transcripts transcriptRepo
	automations automationRepo
	content     contentRepo
	generator   textGenerator
	log         *slog.Logger
}

// NewService creates a new content service.
func NewService(
	log *slog.Logger,
	events eventRepo,
	bots botRepo,
	transcripts transcriptRepo,
	automations automationRepo,
	content contentRepo,
	generator textGenerator,
) *Service {
	return &Service{
		events:      events,
		bots:        bots,
		transcripts: transcripts,
		automations: automations,
		content:     content,
		generator:   generator,
		log:         log.With("service", "content"),
	}
}

// Package ingest fetches finished-meeting transcripts from the recording
// service and stores them exactly once per bot.
package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/meetscribe/backend/internal/domain"
)

type botRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Bot, error)
	Transition(ctx context.Context, id uuid.UUID, to domain.BotState, lastError string) (bool, error)
}

type transcriptRepo interface {
	Create(ctx context.Context, t *domain.Transcript) error
	ExistsForBot(ctx context.Context, botID uuid.UUID) (bool, error)
}

type botClient interface {
	Transcript(ctx context.Context, externalBotID string) ([]domain.Segment, error)
}

// generator is the auto-generation hook fired after a successful ingest.
type generator interface {
	AutoGenerate(ctx context.Context, eventID uuid.UUID) error
}

// Config are the ingestion knobs.
type Config struct {
	MaxFetchAttempts int
	FetchBackoffBase time.Duration
}

// Service downloads and persists transcripts.
type Service struct {
	bots        botRepo
	transcripts transcriptRepo
	client      botClient
	generator   generator
	clock       clockwork.Clock
	cfg         Config
	log         *slog.Logger
}

// NewService creates a new ingest service.
func NewService(
	log *slog.Logger,
	bots botRepo,
	transcripts transcriptRepo,
	client botClient,
	gen generator,
	clock clockwork.Clock,
	cfg Config,
) *Service {
	if cfg.FetchBackoffBase <= 0 {
		cfg.FetchBackoffBase = time.Second
	}
	return &Service{
		bots:        bots,
		transcripts: transcripts,
		client:      client,
		generator:   gen,
		clock:       clock,
		cfg:         cfg,
		log:         log.With("service", "ingest"),
	}
}

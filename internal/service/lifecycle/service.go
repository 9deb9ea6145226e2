// Package lifecycle owns the bot state machine. Status updates arrive from
// webhook pushes and reconciliation polls; both funnel through ApplyUpdate,
// which merges them monotonically by sequence marker so the two sources can
// race without corrupting state.
package lifecycle

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/meetscribe/backend/internal/domain"
)

type botRepo interface {
	GetByExternalID(ctx context.Context, externalID string) (*domain.Bot, error)
	GetByMeetingEventID(ctx context.Context, eventID uuid.UUID) (*domain.Bot, error)
	ListActive(ctx context.Context) ([]*domain.Bot, error)
	ListStale(ctx context.Context, now time.Time, timeout time.Duration) ([]*domain.Bot, error)
	ApplyStatus(ctx context.Context, id uuid.UUID, state domain.BotState, change domain.StateChange) (bool, error)
	Transition(ctx context.Context, id uuid.UUID, to domain.BotState, lastError string) (bool, error)
}

type botClient interface {
	Status(ctx context.Context, externalBotID string) (domain.StatusUpdate, error)
	Cancel(ctx context.Context, externalBotID string) error
}

// ingestor is the handoff to transcript ingestion on the first call_ended
// arrival.
type ingestor interface {
	Ingest(ctx context.Context, botID uuid.UUID) error
}

// Config are the tracking knobs.
type Config struct {
	ReconcileConcurrency int
	WatchdogTimeout      time.Duration
}

// Service tracks recording bots from deployment to a terminal state.
type Service struct {
	bots     botRepo
	client   botClient
	ingestor ingestor
	clock    clockwork.Clock
	cfg      Config
	log      *slog.Logger
}

// NewService creates a new lifecycle service.
func NewService(
	log *slog.Logger,
	bots botRepo,
	client botClient,
	ing ingestor,
	clock clockwork.Clock,
	cfg Config,
) *Service {
	return &Service{
		bots:     bots,
		client:   client,
		ingestor: ing,
		clock:    clock,
		cfg:      cfg,
		log:      log.With("service", "lifecycle"),
	}
}

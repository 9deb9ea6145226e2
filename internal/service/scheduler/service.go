// Package scheduler deploys recording bots for upcoming meetings. Each tick
// scans for enabled meetings without a bot and deploys inside the per-owner
// lead-time window.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/meetscribe/backend/internal/domain"
)

type eventRepo interface {
	ListSchedulable(ctx context.Context) ([]*domain.MeetingEvent, error)
}

type botRepo interface {
	Create(ctx context.Context, b *domain.Bot) error
	MarkDeployed(ctx context.Context, id uuid.UUID, externalID string, joinAt time.Time) error
	Transition(ctx context.Context, id uuid.UUID, to domain.BotState, lastError string) (bool, error)
}

type settingsRepo interface {
	Get(ctx context.Context, ownerID uuid.UUID) (*domain.AccountSettings, error)
}

type botClient interface {
	Deploy(ctx context.Context, meetingURL string, joinAt time.Time) (string, error)
}

// Config are the scheduling knobs.
type Config struct {
	DefaultLeadTime   time.Duration
	MaxDeployAttempts int
}

// Service runs the deployment scan.
type Service struct {
	events   eventRepo
	bots     botRepo
	settings settingsRepo
	client   botClient
	clock    clockwork.Clock
	cfg      Config
	log      *slog.Logger
}

// NewService creates a new scheduler service.
func NewService(
	log *slog.Logger,
	events eventRepo,
	bots botRepo,
	settings settingsRepo,
	client botClient,
	clock clockwork.Clock,
	cfg Config,
) *Service {
	return &Service{
		events:   events,
		bots:     bots,
		settings: settings,
		client:   client,
		clock:    clock,
		cfg:      cfg,
		log:      log.With("service", "scheduler"),
	}
}

// Package publish posts generated drafts to their social platform with
// at-most-once semantics. Concurrent publishes of the same artifact
// serialize on a row lock; exactly one wins.
package publish

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/meetscribe/backend/internal/domain"
)

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type contentRepo interface {
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.GeneratedContent, error)
	MarkPosted(ctx context.Context, id uuid.UUID, externalPostID string, postedAt time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error
}

type eventRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.MeetingEvent, error)
}

type socialAccountRepo interface {
	GetByOwnerAndPlatform(ctx context.Context, ownerID uuid.UUID, platform domain.SocialPlatform) (*domain.SocialAccount, error)
}

// poster routes a publish to the platform client.
type poster interface {
	Post(ctx context.Context, platform domain.SocialPlatform, account *domain.SocialAccount, body string) (string, error)
}

// Service publishes drafts.
type Service struct {
	tx       txManager
	content  contentRepo
	events   eventRepo
	accounts socialAccountRepo
	poster   poster
	clock    clockwork.Clock
	log      *slog.Logger
}

// NewService creates a new publish service.
func NewService(
	log *slog.Logger,
	tx txManager,
	content contentRepo,
	events eventRepo,
	accounts socialAccountRepo,
	p poster,
	clock clockwork.Clock,
) *Service {
	return &Service{
		tx:       tx,
		content:  content,
		events:   events,
		accounts: accounts,
		poster:   p,
		clock:    clock,
		log:      log.With("service", "publish"),
	}
}

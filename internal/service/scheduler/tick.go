package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/meetscribe/backend/internal/domain"
)

// deployBackoffBase is the first fibonacci backoff step between deploy
// attempts.
const deployBackoffBase = 500 * time.Millisecond

// Tick scans for schedulable meetings and deploys bots for those inside
// their join window. Each event is handled in isolation: one failure never
// blocks the rest of the scan.
func (s *Service) Tick(ctx context.Context) error {
	now := s.clock.Now().UTC()

	events, err := s.events.ListSchedulable(ctx)
	if err != nil {
		return fmt.Errorf("list schedulable events: %w", err)
	}

	var failed int
	for _, event := range events {
		if err := s.handleEvent(ctx, event, now); err != nil {
			failed++
			s.log.ErrorContext(ctx, "event scheduling failed",
				slog.String("event_id", event.ID.String()),
				slog.Any("error", err),
			)
		}
	}

	if failed > 0 {
		return fmt.Errorf("scheduling failed for %d of %d events", failed, len(events))
	}
	return nil
}

func (s *Service) handleEvent(ctx context.Context, event *domain.MeetingEvent, now time.Time) error {
	lead, err := s.leadTime(ctx, event.OwnerAccountID)
	if err != nil {
		return fmt.Errorf("resolve lead time: %w", err)
	}

	joinAt := event.StartTime.Add(-lead)

	switch {
	case !now.Before(event.StartTime):
		// Discovered only after the meeting started. Record the miss so the
		// event is never picked up again.
		return s.markMissed(ctx, event)
	case now.Before(joinAt):
		// Window not open yet.
		return nil
	}

	bot := &domain.Bot{
		ID:                uuid.New(),
		MeetingEventID:    event.ID,
		State:             domain.BotStatePending,
		ScheduledJoinTime: joinAt,
	}
	if err := s.bots.Create(ctx, bot); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			// Another tick got here first.
			return nil
		}
		return fmt.Errorf("create bot: %w", err)
	}

	externalID, err := s.deploy(ctx, event.MeetingURL, joinAt)
	if err != nil {
		if _, terr := s.bots.Transition(ctx, bot.ID, domain.BotStateFailed, err.Error()); terr != nil {
			return fmt.Errorf("mark bot failed: %w (deploy error: %v)", terr, err)
		}
		return fmt.Errorf("deploy bot: %w", err)
	}

	if err := s.bots.MarkDeployed(ctx, bot.ID, externalID, joinAt); err != nil {
		return fmt.Errorf("mark bot deployed: %w", err)
	}

	s.log.InfoContext(ctx, "bot scheduled",
		slog.String("event_id", event.ID.String()),
		slog.String("bot_id", bot.ID.String()),
		slog.String("external_bot_id", externalID),
		slog.Time("join_at", joinAt),
	)
	return nil
}

// deploy calls the recording service with fibonacci backoff on transient
// failures, up to the configured attempt ceiling.
func (s *Service) deploy(ctx context.Context, meetingURL string, joinAt time.Time) (string, error) {
	var externalID string

	backoff := retry.WithMaxRetries(uint64(s.cfg.MaxDeployAttempts-1), retry.NewFibonacci(deployBackoffBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		id, err := s.client.Deploy(ctx, meetingURL, joinAt)
		if err != nil {
			if domain.IsTransient(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		externalID = id
		return nil
	})
	if err != nil {
		return "", err
	}
	return externalID, nil
}

func (s *Service) markMissed(ctx context.Context, event *domain.MeetingEvent) error {
	bot := &domain.Bot{
		ID:                uuid.New(),
		MeetingEventID:    event.ID,
		State:             domain.BotStateMissed,
		ScheduledJoinTime: event.StartTime,
		LastError:         "meeting discovered after its start time",
	}
	if err := s.bots.Create(ctx, bot); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil
		}
		return fmt.Errorf("create missed bot: %w", err)
	}

	s.log.WarnContext(ctx, "meeting missed",
		slog.String("event_id", event.ID.String()),
		slog.Time("start_time", event.StartTime),
	)
	return nil
}

// leadTime resolves the owner's join lead time, falling back to the
// configured default.
func (s *Service) leadTime(ctx context.Context, ownerID uuid.UUID) (time.Duration, error) {
	settings, err := s.settings.Get(ctx, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return s.cfg.DefaultLeadTime, nil
		}
		return 0, err
	}
	if settings.LeadTimeMinutes <= 0 {
		return s.cfg.DefaultLeadTime, nil
	}
	return time.Duration(settings.LeadTimeMinutes) * time.Minute, nil
}

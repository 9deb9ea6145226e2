package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/meetscribe/backend/internal/domain"
)

// CancelForEvent tears down the bot attached to a meeting. The external
// cancel is best effort; the local row always lands in cancelled, after
// which later provider updates are ignored.
func (s *Service) CancelForEvent(ctx context.Context, eventID uuid.UUID) error {
	bot, err := s.bots.GetByMeetingEventID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("load bot: %w", err)
	}

	if bot.State.IsTerminal() {
		return nil
	}

	if bot.ExternalBotID != "" {
		if err := s.client.Cancel(ctx, bot.ExternalBotID); err != nil {
			s.log.WarnContext(ctx, "external cancel failed",
				slog.String("bot_id", bot.ID.String()),
				slog.String("external_bot_id", bot.ExternalBotID),
				slog.Any("error", err),
			)
		}
	}

	if _, err := s.bots.Transition(ctx, bot.ID, domain.BotStateCancelled, ""); err != nil {
		return fmt.Errorf("mark bot cancelled: %w", err)
	}

	s.log.InfoContext(ctx, "bot cancelled",
		slog.String("bot_id", bot.ID.String()),
		slog.String("event_id", eventID.String()),
	)
	return nil
}

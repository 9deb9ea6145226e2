package lifecycle

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/meetscribe/backend/internal/domain"
)

// ExpireStale force-fails every non-terminal bot that has gone silent past
// the watchdog horizon after its meeting ended. Catches bots whose provider
// stopped sending updates entirely.
func (s *Service) ExpireStale(ctx context.Context) error {
	now := s.clock.Now().UTC()

	stale, err := s.bots.ListStale(ctx, now, s.cfg.WatchdogTimeout)
	if err != nil {
		return fmt.Errorf("list stale bots: %w", err)
	}

	for _, bot := range stale {
		ok, err := s.bots.Transition(ctx, bot.ID, domain.BotStateFailed,
			fmt.Sprintf("no status update within %s of meeting end", s.cfg.WatchdogTimeout))
		if err != nil {
			return fmt.Errorf("expire bot %s: %w", bot.ID, err)
		}
		if !ok {
			// Reached a terminal state between listing and the write.
			continue
		}
		s.log.WarnContext(ctx, "bot expired by watchdog",
			slog.String("bot_id", bot.ID.String()),
			slog.String("previous_state", bot.State.String()),
		)
	}
	return nil
}

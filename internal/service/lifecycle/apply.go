package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/meetscribe/backend/internal/domain"
)

// ApplyUpdate merges one status notification into the bot's state. Updates
// whose sequence marker is not strictly newer than the bot's cursor are
// discarded and reported as ErrStaleUpdate; unknown external bot ids are
// dropped silently; terminal bots ignore everything.
func (s *Service) ApplyUpdate(ctx context.Context, update domain.StatusUpdate) error {
	bot, err := s.bots.GetByExternalID(ctx, update.ExternalBotID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.log.WarnContext(ctx, "status update for unknown bot",
				slog.String("external_bot_id", update.ExternalBotID),
				slog.String("raw_state", update.RawState),
			)
			return nil
		}
		return fmt.Errorf("load bot: %w", err)
	}

	if bot.State.IsTerminal() {
		return nil
	}
	if update.Sequence <= bot.LastSequence {
		return fmt.Errorf("sequence %d not newer than %d: %w",
			update.Sequence, bot.LastSequence, domain.ErrStaleUpdate)
	}

	state, recognized := domain.MapProviderState(update.RawState)

	change := domain.StateChange{
		State:      state.String(),
		Sequence:   update.Sequence,
		Detail:     update.Detail,
		RecordedAt: s.clock.Now().UTC(),
	}
	if !recognized {
		// Advance the cursor and record the sighting, keep the state.
		change.State = "unrecognized:" + update.RawState
		state = ""
	}

	applied, err := s.bots.ApplyStatus(ctx, bot.ID, state, change)
	if err != nil {
		return fmt.Errorf("apply status: %w", err)
	}
	if !applied {
		// Lost the race against a newer update.
		return fmt.Errorf("sequence %d already superseded: %w", update.Sequence, domain.ErrStaleUpdate)
	}

	s.log.InfoContext(ctx, "status applied",
		slog.String("bot_id", bot.ID.String()),
		slog.String("raw_state", update.RawState),
		slog.String("state", state.String()),
		slog.Int64("sequence", update.Sequence),
	)

	if state == domain.BotStateCallEnded && bot.State != domain.BotStateCallEnded {
		if err := s.ingestor.Ingest(ctx, bot.ID); err != nil {
			// Ingestion handles its own failure bookkeeping; the status merge
			// itself succeeded.
			s.log.ErrorContext(ctx, "transcript ingestion failed",
				slog.String("bot_id", bot.ID.String()),
				slog.Any("error", err),
			)
		}
	}
	return nil
}

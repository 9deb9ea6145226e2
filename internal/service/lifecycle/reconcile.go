package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/meetscribe/backend/internal/domain"
)

// Reconcile polls the recording service for every non-terminal deployed bot
// and funnels the results through ApplyUpdate. Polling runs with bounded
// concurrency; each bot is isolated, one failure never stops the sweep.
func (s *Service) Reconcile(ctx context.Context) error {
	bots, err := s.bots.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active bots: %w", err)
	}

	var failed atomic.Int32

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.ReconcileConcurrency)

	for _, bot := range bots {
		g.Go(func() error {
			if err := s.reconcileBot(ctx, bot); err != nil {
				failed.Add(1)
				s.log.ErrorContext(ctx, "bot reconciliation failed",
					slog.String("bot_id", bot.ID.String()),
					slog.Any("error", err),
				)
			}
			return nil
		})
	}
	_ = g.Wait()

	if n := failed.Load(); n > 0 {
		return fmt.Errorf("reconciliation failed for %d of %d bots", n, len(bots))
	}
	return nil
}

func (s *Service) reconcileBot(ctx context.Context, bot *domain.Bot) error {
	update, err := s.client.Status(ctx, bot.ExternalBotID)
	if err != nil {
		return fmt.Errorf("poll status: %w", err)
	}

	stale := false
	if err := s.ApplyUpdate(ctx, update); err != nil {
		if !errors.Is(err, domain.ErrStaleUpdate) {
			return err
		}
		// A webhook got here first, or the provider repeated itself.
		stale = true
	}

	// A call_ended bot still in the active set lost its ingestion handoff
	// (a restart, or the webhook request that carried it was cancelled).
	// Ingest no-ops once a transcript row exists, so retrying every sweep
	// is safe.
	state, _ := domain.MapProviderState(update.RawState)
	if bot.State == domain.BotStateCallEnded && (stale || state == domain.BotStateCallEnded) {
		if err := s.ingestor.Ingest(ctx, bot.ID); err != nil {
			return fmt.Errorf("ingest: %w", err)
		}
	}
	return nil
}

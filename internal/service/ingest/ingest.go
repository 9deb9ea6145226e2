package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/meetscribe/backend/internal/domain"
)

// Ingest downloads the transcript for a finished bot and stores it. Safe to
// call any number of times: an existing transcript makes it a no-op, and two
// racers resolve on the unique bot_id insert.
func (s *Service) Ingest(ctx context.Context, botID uuid.UUID) error {
	exists, err := s.transcripts.ExistsForBot(ctx, botID)
	if err != nil {
		return fmt.Errorf("check transcript: %w", err)
	}
	if exists {
		return nil
	}

	bot, err := s.bots.GetByID(ctx, botID)
	if err != nil {
		return fmt.Errorf("load bot: %w", err)
	}

	segments, err := s.fetch(ctx, bot.ExternalBotID)
	if err != nil {
		msg := fmt.Sprintf("transcript fetch failed: %v", err)
		if _, terr := s.bots.Transition(ctx, botID, domain.BotStateFailed, msg); terr != nil {
			return fmt.Errorf("mark bot failed: %w (fetch error: %v)", terr, err)
		}
		return fmt.Errorf("fetch transcript: %w", err)
	}

	transcript := &domain.Transcript{
		ID:        uuid.New(),
		BotID:     botID,
		Segments:  domain.NormalizeSegments(segments),
		FetchedAt: s.clock.Now().UTC(),
	}
	if err := s.transcripts.Create(ctx, transcript); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			// A concurrent ingest won the insert.
			return nil
		}
		return fmt.Errorf("store transcript: %w", err)
	}

	if _, err := s.bots.Transition(ctx, botID, domain.BotStateTranscriptReady, ""); err != nil {
		return fmt.Errorf("mark transcript ready: %w", err)
	}

	s.log.InfoContext(ctx, "transcript ingested",
		slog.String("bot_id", botID.String()),
		slog.Int("segments", len(transcript.Segments)),
	)

	if err := s.generator.AutoGenerate(ctx, bot.MeetingEventID); err != nil {
		// Content generation has its own failure handling; the transcript is
		// already safe.
		s.log.ErrorContext(ctx, "auto generation failed",
			slog.String("event_id", bot.MeetingEventID.String()),
			slog.Any("error", err),
		)
	}
	return nil
}

// fetch downloads the transcript with fibonacci backoff on transient
// failures. Transcripts still being produced by the provider count as
// transient.
func (s *Service) fetch(ctx context.Context, externalBotID string) ([]domain.Segment, error) {
	var segments []domain.Segment

	backoff := retry.WithMaxRetries(uint64(s.cfg.MaxFetchAttempts-1), retry.NewFibonacci(s.cfg.FetchBackoffBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		got, err := s.client.Transcript(ctx, externalBotID)
		if err != nil {
			if domain.IsTransient(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		segments = got
		return nil
	})
	if err != nil {
		return nil, err
	}
	return segments, nil
}

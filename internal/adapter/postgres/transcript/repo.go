// Package transcript implements the Transcript repository using PostgreSQL.
// Transcripts are insert-once: the unique constraint on bot_id plus
// ON CONFLICT DO NOTHING makes duplicate ingestion triggers harmless.
package transcript

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/meetscribe/backend/internal/adapter/postgres"
	"github.com/meetscribe/backend/internal/domain"
)

var qb = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repo provides transcript persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new transcript repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// Create inserts the transcript for a bot. Returns domain.ErrAlreadyExists if
// a transcript for the bot is already stored; the row is never overwritten.
func (r *Repo) Create(ctx context.Context, t *domain.Transcript) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	segments, err := json.Marshal(t.Segments)
	if err != nil {
		return fmt.Errorf("marshal segments: %w", err)
	}

	sql, args, err := qb.Insert("transcripts").
		Columns("id", "bot_id", "segments", "fetched_at").
		Values(t.ID, t.BotID, segments, t.FetchedAt).
		Suffix("ON CONFLICT (bot_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "transcript", t.ID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transcript for bot %s: %w", t.BotID, domain.ErrAlreadyExists)
	}
	return nil
}

// GetByBotID returns the transcript for a bot.
func (r *Repo) GetByBotID(ctx context.Context, botID uuid.UUID) (*domain.Transcript, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Select("id", "bot_id", "segments", "fetched_at").
		From("transcripts").
		Where(squirrel.Eq{"bot_id": botID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var (
		t        domain.Transcript
		segments []byte
	)
	err = q.QueryRow(ctx, sql, args...).Scan(&t.ID, &t.BotID, &segments, &t.FetchedAt)
	if err != nil {
		return nil, postgres.MapError(err, "transcript", botID)
	}
	if len(segments) > 0 {
		if err := json.Unmarshal(segments, &t.Segments); err != nil {
			return nil, fmt.Errorf("unmarshal segments: %w", err)
		}
	}
	return &t, nil
}

// ExistsForBot reports whether a transcript row is already stored for a bot.
func (r *Repo) ExistsForBot(ctx context.Context, botID uuid.UUID) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM transcripts WHERE bot_id = $1)`, botID,
	).Scan(&exists)
	if err != nil {
		return false, postgres.MapError(err, "transcript", botID)
	}
	return exists, nil
}

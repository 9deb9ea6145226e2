// Package event implements read access to calendar-derived meeting events.
// Rows are written by calendar sync; the pipeline only reads them and flips
// the notetaker flag on user command.
package event

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/meetscribe/backend/internal/adapter/postgres"
	"github.com/meetscribe/backend/internal/domain"
)

var qb = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

const columns = `id, title, start_time, end_time, platform, meeting_url,
	owner_account_id, notetaker_enabled, created_at, updated_at`

// Repo provides meeting event persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new meeting event repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// GetByID returns a meeting event by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.MeetingEvent, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Select(columns).From("meeting_events").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	e, err := scanEvent(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "meeting_event", id)
	}
	return e, nil
}

// ListSchedulable returns notetaker-enabled events without a bot. These are
// the scheduler's candidates; the scheduler decides per event whether to
// deploy, wait, or mark it missed, so even fully past events must show up
// here until a bot row exists for them.
func (r *Repo) ListSchedulable(ctx context.Context) ([]*domain.MeetingEvent, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Select(
		"e.id", "e.title", "e.start_time", "e.end_time", "e.platform", "e.meeting_url",
		"e.owner_account_id", "e.notetaker_enabled", "e.created_at", "e.updated_at").
		From("meeting_events e").
		LeftJoin("bots b ON b.meeting_event_id = e.id").
		Where(squirrel.Eq{"e.notetaker_enabled": true}).
		Where("b.id IS NULL").
		OrderBy("e.start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list schedulable events: %w", err)
	}
	defer rows.Close()

	var events []*domain.MeetingEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// SetNotetakerEnabled flips the notetaker flag for an event.
func (r *Repo) SetNotetakerEnabled(ctx context.Context, id uuid.UUID, enabled bool) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Update("meeting_events").
		Set("notetaker_enabled", enabled).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "meeting_event", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("meeting_event %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanEvent(row pgx.Row) (*domain.MeetingEvent, error) {
	var e domain.MeetingEvent
	err := row.Scan(&e.ID, &e.Title, &e.StartTime, &e.EndTime, &e.Platform, &e.MeetingURL,
		&e.OwnerAccountID, &e.NotetakerEnabled, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

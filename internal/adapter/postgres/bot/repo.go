// Package bot implements the Bot repository using PostgreSQL.
// The repository is the single writer for bot rows; status updates go through
// a compare-and-set on last_sequence so racing webhook and poll deliveries
// cannot both win.
package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/meetscribe/backend/internal/adapter/postgres"
	"github.com/meetscribe/backend/internal/domain"
)

var qb = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

const columns = `id, meeting_event_id, external_bot_id, state, state_history,
	last_sequence, scheduled_join_time, last_error, created_at, updated_at`

// Repo provides bot persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new bot repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// Create inserts a new bot row. The unique constraint on meeting_event_id
// makes a second create for the same event return domain.ErrAlreadyExists,
// which callers treat as "someone else got there first".
func (r *Repo) Create(ctx context.Context, b *domain.Bot) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	history, err := json.Marshal(b.StateHistory)
	if err != nil {
		return fmt.Errorf("marshal state history: %w", err)
	}

	sql, args, err := qb.Insert("bots").
		Columns("id", "meeting_event_id", "external_bot_id", "state", "state_history",
			"last_sequence", "scheduled_join_time", "last_error").
		Values(b.ID, b.MeetingEventID, b.ExternalBotID, b.State, history,
			b.LastSequence, nullableTime(b.ScheduledJoinTime), b.LastError).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "bot", b.ID)
	}
	return nil
}

// GetByID returns a bot by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Bot, error) {
	return r.getWhere(ctx, squirrel.Eq{"id": id}, id)
}

// GetByMeetingEventID returns the bot for a meeting event, if any.
func (r *Repo) GetByMeetingEventID(ctx context.Context, eventID uuid.UUID) (*domain.Bot, error) {
	return r.getWhere(ctx, squirrel.Eq{"meeting_event_id": eventID}, eventID)
}

// GetByExternalID resolves an external recording-service bot id to a bot row.
func (r *Repo) GetByExternalID(ctx context.Context, externalID string) (*domain.Bot, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Select(columns).From("bots").
		Where(squirrel.Eq{"external_bot_id": externalID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	b, err := scanBot(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "bot", uuid.Nil)
	}
	return b, nil
}

// ListActive returns every non-terminal bot that has been deployed, for
// reconciliation polling.
func (r *Repo) ListActive(ctx context.Context) ([]*domain.Bot, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Select(columns).From("bots").
		Where(squirrel.NotEq{"state": terminalStates()}).
		Where(squirrel.NotEq{"external_bot_id": ""}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list active bots: %w", err)
	}
	defer rows.Close()

	return scanBots(rows)
}

// ListStale returns non-terminal bots with no update for longer than timeout
// past their meeting's scheduled end. These are watchdog candidates.
func (r *Repo) ListStale(ctx context.Context, now time.Time, timeout time.Duration) ([]*domain.Bot, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	cutoff := now.Add(-timeout)
	sql, args, err := qb.Select(
		"b.id", "b.meeting_event_id", "b.external_bot_id", "b.state", "b.state_history",
		"b.last_sequence", "b.scheduled_join_time", "b.last_error", "b.created_at", "b.updated_at").
		From("bots b").
		Join("meeting_events e ON e.id = b.meeting_event_id").
		Where(squirrel.NotEq{"b.state": terminalStates()}).
		Where(squirrel.Lt{"e.end_time": cutoff}).
		Where(squirrel.Lt{"b.updated_at": cutoff}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list stale bots: %w", err)
	}
	defer rows.Close()

	return scanBots(rows)
}

// MarkDeployed records the external bot id and join time handed back by the
// recording service and moves the bot from pending to deploying.
func (r *Repo) MarkDeployed(ctx context.Context, id uuid.UUID, externalID string, joinAt time.Time) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Update("bots").
		Set("external_bot_id", externalID).
		Set("state", domain.BotStateDeploying).
		Set("scheduled_join_time", joinAt).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id, "state": domain.BotStatePending}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "bot", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("bot %s: %w", id, domain.ErrConflict)
	}
	return nil
}

// Transition forces the bot into a new state, recording the error text, as
// long as the current state is non-terminal. Used for local transitions:
// deploy failure, transcript_ready, watchdog failure, cancellation, missed.
// Returns false when the bot was already terminal.
func (r *Repo) Transition(ctx context.Context, id uuid.UUID, to domain.BotState, lastError string) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	change, err := json.Marshal([]domain.StateChange{{
		State:      to.String(),
		RecordedAt: time.Now().UTC(),
	}})
	if err != nil {
		return false, fmt.Errorf("marshal state change: %w", err)
	}

	sql, args, err := qb.Update("bots").
		Set("state", to).
		Set("last_error", lastError).
		Set("state_history", squirrel.Expr("state_history || ?::jsonb", change)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.NotEq{"state": terminalStates()}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build update: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return false, postgres.MapError(err, "bot", id)
	}
	return tag.RowsAffected() > 0, nil
}

// ApplyStatus applies an externally sourced status update iff its sequence
// marker is strictly newer than the stored one. An empty state keeps the
// current state and advances only the cursor (unrecognized provider codes).
// Returns false when the update lost the compare-and-set, i.e. it was stale
// or a duplicate.
func (r *Repo) ApplyStatus(ctx context.Context, id uuid.UUID, state domain.BotState, change domain.StateChange) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	entry, err := json.Marshal([]domain.StateChange{change})
	if err != nil {
		return false, fmt.Errorf("marshal state change: %w", err)
	}

	upd := qb.Update("bots").
		Set("last_sequence", change.Sequence).
		Set("state_history", squirrel.Expr("state_history || ?::jsonb", entry)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Lt{"last_sequence": change.Sequence}).
		Where(squirrel.NotEq{"state": terminalStates()})
	if state != "" {
		upd = upd.Set("state", state)
	}
	if state == domain.BotStateFailed {
		// Externally reported failures surface their provider detail.
		upd = upd.Set("last_error", change.Detail)
	}

	sql, args, err := upd.ToSql()
	if err != nil {
		return false, fmt.Errorf("build update: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return false, postgres.MapError(err, "bot", id)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repo) getWhere(ctx context.Context, pred squirrel.Eq, id uuid.UUID) (*domain.Bot, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Select(columns).From("bots").Where(pred).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	b, err := scanBot(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "bot", id)
	}
	return b, nil
}

func terminalStates() []string {
	return []string{
		domain.BotStateTranscriptReady.String(),
		domain.BotStateFailed.String(),
		domain.BotStateCancelled.String(),
		domain.BotStateMissed.String(),
	}
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func scanBot(row pgx.Row) (*domain.Bot, error) {
	var (
		b       domain.Bot
		history []byte
		joinAt  *time.Time
	)
	err := row.Scan(&b.ID, &b.MeetingEventID, &b.ExternalBotID, &b.State, &history,
		&b.LastSequence, &joinAt, &b.LastError, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if joinAt != nil {
		b.ScheduledJoinTime = *joinAt
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &b.StateHistory); err != nil {
			return nil, fmt.Errorf("unmarshal state history: %w", err)
		}
	}
	return &b, nil
}

func scanBots(rows pgx.Rows) ([]*domain.Bot, error) {
	var bots []*domain.Bot
	for rows.Next() {
		b, err := scanBot(rows)
		if err != nil {
			return nil, err
		}
		bots = append(bots, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bots, nil
}

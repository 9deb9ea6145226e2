// Package content implements the GeneratedContent repository using PostgreSQL.
// Rows are append-only; only the publisher mutates status, and it does so
// under a row lock so concurrent publishes serialize.
package content

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/meetscribe/backend/internal/adapter/postgres"
	"github.com/meetscribe/backend/internal/domain"
)

var qb = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

const columns = `id, meeting_event_id, kind, platform, automation_id, body, status,
	external_post_id, last_error, created_at, posted_at`

// Repo provides generated content persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new generated content repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// Create inserts a new draft artifact.
func (r *Repo) Create(ctx context.Context, c *domain.GeneratedContent) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Insert("generated_content").
		Columns("id", "meeting_event_id", "kind", "platform", "automation_id",
			"body", "status", "external_post_id", "last_error").
		Values(c.ID, c.MeetingEventID, c.Kind, c.Platform, c.AutomationID,
			c.Body, c.Status, c.ExternalPostID, c.LastError).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "generated_content", c.ID)
	}
	return nil
}

// GetByID returns an artifact by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.GeneratedContent, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Select(columns).From("generated_content").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	c, err := scanContent(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "generated_content", id)
	}
	return c, nil
}

// GetByIDForUpdate returns an artifact under FOR UPDATE. Must run inside a
// transaction; concurrent callers block until the first commits.
func (r *Repo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.GeneratedContent, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Select(columns).From("generated_content").
		Where(squirrel.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	c, err := scanContent(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "generated_content", id)
	}
	return c, nil
}

// ListByMeetingEvent returns the full artifact history for a meeting, newest
// first.
func (r *Repo) ListByMeetingEvent(ctx context.Context, eventID uuid.UUID) ([]*domain.GeneratedContent, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Select(columns).From("generated_content").
		Where(squirrel.Eq{"meeting_event_id": eventID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list generated content: %w", err)
	}
	defer rows.Close()

	var items []*domain.GeneratedContent
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// MarkPosted records a successful publish. The status guard rejects a second
// writer that slipped past the row lock: zero rows affected means the
// artifact was no longer publishable, reported as domain.ErrConflict.
func (r *Repo) MarkPosted(ctx context.Context, id uuid.UUID, externalPostID string, postedAt time.Time) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Update("generated_content").
		Set("status", domain.ContentStatusPosted).
		Set("external_post_id", externalPostID).
		Set("posted_at", postedAt).
		Set("last_error", "").
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": []string{
			domain.ContentStatusDraft.String(),
			domain.ContentStatusFailed.String(),
		}}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "generated_content", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("generated_content %s: %w", id, domain.ErrConflict)
	}
	return nil
}

// MarkFailed records a failed publish attempt; the artifact stays
// re-publishable.
func (r *Repo) MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Update("generated_content").
		Set("status", domain.ContentStatusFailed).
		Set("last_error", lastError).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.NotEq{"status": domain.ContentStatusPosted}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "generated_content", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("generated_content %s: %w", id, domain.ErrConflict)
	}
	return nil
}

func scanContent(row pgx.Row) (*domain.GeneratedContent, error) {
	var (
		c        domain.GeneratedContent
		platform *string
	)
	err := row.Scan(&c.ID, &c.MeetingEventID, &c.Kind, &platform, &c.AutomationID,
		&c.Body, &c.Status, &c.ExternalPostID, &c.LastError, &c.CreatedAt, &c.PostedAt)
	if err != nil {
		return nil, err
	}
	if platform != nil {
		p := domain.SocialPlatform(*platform)
		c.Platform = &p
	}
	return &c, nil
}

// Package settings implements per-account pipeline settings persistence.
package settings

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/meetscribe/backend/internal/adapter/postgres"
	"github.com/meetscribe/backend/internal/domain"
)

var qb = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repo provides account settings persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new settings repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// Get returns the settings for an owner, or domain.ErrNotFound when the
// account has never customized anything.
func (r *Repo) Get(ctx context.Context, ownerID uuid.UUID) (*domain.AccountSettings, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Select("owner_account_id", "lead_time_minutes", "updated_at").
		From("account_settings").
		Where(squirrel.Eq{"owner_account_id": ownerID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var s domain.AccountSettings
	err = q.QueryRow(ctx, sql, args...).Scan(&s.OwnerAccountID, &s.LeadTimeMinutes, &s.UpdatedAt)
	if err != nil {
		return nil, postgres.MapError(err, "account_settings", ownerID)
	}
	return &s, nil
}

// SetLeadTime upserts the bot deployment lead time for an owner.
func (r *Repo) SetLeadTime(ctx context.Context, ownerID uuid.UUID, minutes int) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Insert("account_settings").
		Columns("owner_account_id", "lead_time_minutes").
		Values(ownerID, minutes).
		Suffix("ON CONFLICT (owner_account_id) DO UPDATE SET lead_time_minutes = EXCLUDED.lead_time_minutes, updated_at = now()").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "account_settings", ownerID)
	}
	return nil
}

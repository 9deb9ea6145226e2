// Package automation implements read access to user-managed automation rules.
package automation

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

const columns = `id, owner_account_id, platform, name, prompt_template, is_active,
	created_at, updated_at`

// Repo provides automation persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new automation repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// GetActive returns the single active automation for (owner, platform), or
// domain.ErrNotFound when none is active. A partial unique index guarantees
// at most one row can match.
func (r *Repo) GetActive(ctx context.Context, ownerID uuid.UUID, platform domain.SocialPlatform) (*domain.Automation, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Select(columns).From("automations").
		Where(squirrel.Eq{
			"owner_account_id": ownerID,
			"platform":         platform,
			"is_active":        true,
		}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	a, err := scanAutomation(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "automation", ownerID)
	}
	return a, nil
}

// ListActiveForOwner returns every active automation for an owner, across
// platforms, in stable platform order.
func (r *Repo) ListActiveForOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Automation, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Select(columns).From("automations").
		Where(squirrel.Eq{"owner_account_id": ownerID, "is_active": true}).
		OrderBy("platform ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list automations: %w", err)
	}
	defer rows.Close()

	var automations []*domain.Automation
	for rows.Next() {
		a, err := scanAutomation(rows)
		if err != nil {
			return nil, err
		}
		automations = append(automations, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return automations, nil
}

func scanAutomation(row pgx.Row) (*domain.Automation, error) {
	var a domain.Automation
	err := row.Scan(&a.ID, &a.OwnerAccountID, &a.Platform, &a.Name, &a.PromptTemplate,
		&a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

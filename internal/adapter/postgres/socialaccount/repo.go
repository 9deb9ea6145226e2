// Package socialaccount implements read access to stored social platform
// credentials. Token acquisition and refresh happen outside the pipeline.
package socialaccount

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/meetscribe/backend/internal/adapter/postgres"
	"github.com/meetscribe/backend/internal/domain"
)

var qb = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repo provides social account lookup backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new social account repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// GetByOwnerAndPlatform returns the stored credentials for one
// (owner, platform) pair, or domain.ErrNotFound.
func (r *Repo) GetByOwnerAndPlatform(ctx context.Context, ownerID uuid.UUID, platform domain.SocialPlatform) (*domain.SocialAccount, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := qb.Select("id", "owner_account_id", "platform", "access_token", "page_id", "created_at").
		From("social_accounts").
		Where(squirrel.Eq{"owner_account_id": ownerID, "platform": platform}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var a domain.SocialAccount
	err = q.QueryRow(ctx, sql, args...).Scan(&a.ID, &a.OwnerAccountID, &a.Platform,
		&a.AccessToken, &a.PageID, &a.CreatedAt)
	if err != nil {
		return nil, postgres.MapError(err, "social_account", ownerID)
	}
	return &a, nil
}

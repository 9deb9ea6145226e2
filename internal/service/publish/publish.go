package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/meetscribe/backend/internal/domain"
)

// Publish posts one artifact. The whole attempt runs inside a transaction
// holding a row lock on the artifact: a concurrent publisher blocks, then
// sees posted and gets ErrConflict. Failed artifacts may be retried by
// calling Publish again; nothing retries automatically.
func (s *Service) Publish(ctx context.Context, contentID uuid.UUID) (*domain.GeneratedContent, error) {
	var (
		result  *domain.GeneratedContent
		postErr error
	)

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		artifact, err := s.content.GetByIDForUpdate(ctx, contentID)
		if err != nil {
			return fmt.Errorf("load content: %w", err)
		}

		if artifact.Status == domain.ContentStatusPosted {
			return fmt.Errorf("content already posted: %w", domain.ErrConflict)
		}
		if !artifact.Publishable() {
			return fmt.Errorf("content in status %s cannot be published: %w", artifact.Status, domain.ErrConflict)
		}
		if artifact.Kind != domain.ContentKindSocialPost || artifact.Platform == nil {
			return domain.NewValidationError("content_id", "only social posts can be published")
		}

		event, err := s.events.GetByID(ctx, artifact.MeetingEventID)
		if err != nil {
			return fmt.Errorf("load event: %w", err)
		}

		account, err := s.accounts.GetByOwnerAndPlatform(ctx, event.OwnerAccountID, *artifact.Platform)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("no connected %s account: %w", *artifact.Platform, domain.ErrConfiguration)
			}
			return fmt.Errorf("load social account: %w", err)
		}

		externalPostID, err := s.poster.Post(ctx, *artifact.Platform, account, artifact.Body)
		if err != nil {
			// Commit the failure so the artifact lands in failed and stays
			// re-publishable; surface the post error to the caller.
			if merr := s.content.MarkFailed(ctx, contentID, err.Error()); merr != nil {
				return fmt.Errorf("mark failed: %w (post error: %v)", merr, err)
			}
			artifact.Status = domain.ContentStatusFailed
			artifact.LastError = err.Error()
			result = artifact
			postErr = fmt.Errorf("post to %s: %w", *artifact.Platform, err)
			return nil
		}

		postedAt := s.clock.Now().UTC()
		if err := s.content.MarkPosted(ctx, contentID, externalPostID, postedAt); err != nil {
			return fmt.Errorf("mark posted: %w", err)
		}

		artifact.Status = domain.ContentStatusPosted
		artifact.ExternalPostID = externalPostID
		artifact.PostedAt = &postedAt
		artifact.LastError = ""
		result = artifact

		s.log.InfoContext(ctx, "content published",
			slog.String("content_id", contentID.String()),
			slog.String("platform", artifact.Platform.String()),
			slog.String("external_post_id", externalPostID),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if postErr != nil {
		return result, postErr
	}
	return result, nil
}

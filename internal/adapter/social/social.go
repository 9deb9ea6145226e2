// Package social holds the HTTP adapters that publish generated posts to
// external platforms. Each platform gets its own Poster; the Registry picks
// one by platform name.
package social

import (
	"context"
	"fmt"
	"net/http"

	"github.com/meetscribe/backend/internal/domain"
)

// Poster publishes one body of text on behalf of a connected account and
// returns the platform's post id.
type Poster interface {
	Post(ctx context.Context, account *domain.SocialAccount, body string) (string, error)
}

// Registry maps platforms to their posters.
type Registry struct {
	posters map[domain.SocialPlatform]Poster
}

func NewRegistry() *Registry {
	return &Registry{posters: make(map[domain.SocialPlatform]Poster)}
}

// Register adds a poster for a platform, replacing any previous one.
func (r *Registry) Register(platform domain.SocialPlatform, p Poster) {
	r.posters[platform] = p
}

// Post routes the publish call to the platform's poster.
func (r *Registry) Post(ctx context.Context, platform domain.SocialPlatform, account *domain.SocialAccount, body string) (string, error) {
	p, ok := r.posters[platform]
	if !ok {
		return "", fmt.Errorf("%w: no poster registered for platform %q", domain.ErrConfiguration, platform)
	}
	return p.Post(ctx, account, body)
}

// classifyStatus maps an HTTP status to the transient/permanent taxonomy.
func classifyStatus(op string, status int, detail string) error {
	err := fmt.Errorf("unexpected status %d: %s", status, detail)
	if status == http.StatusTooManyRequests || status >= 500 {
		return domain.NewTransientError(op, err)
	}
	return domain.NewPermanentError(op, err)
}

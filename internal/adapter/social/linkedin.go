package social

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/meetscribe/backend/internal/domain"
)

// LinkedIn publishes posts through the LinkedIn UGC API. Posting takes two
// calls: resolve the member URN from the token, then create the share.
type LinkedIn struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

func NewLinkedIn(logger *slog.Logger) *LinkedIn {
	return NewLinkedInWithURL("https://api.linkedin.com/v2", logger)
}

// NewLinkedInWithURL creates a LinkedIn poster with a custom API base URL
// (for testing).
func NewLinkedInWithURL(baseURL string, logger *slog.Logger) *LinkedIn {
	return &LinkedIn{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        logger.With("adapter", "linkedin"),
	}
}

func (l *LinkedIn) Post(ctx context.Context, account *domain.SocialAccount, body string) (string, error) {
	urn, err := l.memberURN(ctx, account.AccessToken)
	if err != nil {
		return "", err
	}

	share := map[string]any{
		"author":         urn,
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]any{
			"com.linkedin.ugc.ShareContent": map[string]any{
				"shareCommentary":    map[string]any{"text": body},
				"shareMediaCategory": "NONE",
			},
		},
		"visibility": map[string]any{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	buf, err := json.Marshal(share)
	if err != nil {
		return "", fmt.Errorf("linkedin: marshal share: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+"/ugcPosts", bytes.NewReader(buf))
	if err != nil {
		return "", fmt.Errorf("linkedin: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+account.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return "", domain.NewTransientError("linkedin.post", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", classifyStatus("linkedin.post", resp.StatusCode, string(detail))
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", domain.NewPermanentError("linkedin.post", fmt.Errorf("decode response: %w", err))
	}

	l.log.InfoContext(ctx, "post published", slog.String("post_id", out.ID))
	return out.ID, nil
}

// memberURN resolves the token owner's person URN via the userinfo endpoint.
func (l *LinkedIn) memberURN(ctx context.Context, token string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"/userinfo", nil)
	if err != nil {
		return "", fmt.Errorf("linkedin: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return "", domain.NewTransientError("linkedin.userinfo", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", classifyStatus("linkedin.userinfo", resp.StatusCode, string(detail))
	}

	var out struct {
		Sub string `json:"sub"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", domain.NewPermanentError("linkedin.userinfo", fmt.Errorf("decode response: %w", err))
	}
	if out.Sub == "" {
		return "", domain.NewPermanentError("linkedin.userinfo", fmt.Errorf("userinfo has no subject"))
	}
	return "urn:li:person:" + out.Sub, nil
}

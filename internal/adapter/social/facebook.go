package social

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/meetscribe/backend/internal/domain"
)

// Facebook publishes posts through the Graph API feed endpoint. When the
// account carries a page id the post goes to that page, otherwise to the
// user's own timeline.
type Facebook struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

func NewFacebook(logger *slog.Logger) *Facebook {
	return NewFacebookWithURL("https://graph.facebook.com/v18.0", logger)
}

// NewFacebookWithURL creates a Facebook poster with a custom API base URL
// (for testing).
func NewFacebookWithURL(baseURL string, logger *slog.Logger) *Facebook {
	return &Facebook{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        logger.With("adapter", "facebook"),
	}
}

func (f *Facebook) Post(ctx context.Context, account *domain.SocialAccount, body string) (string, error) {
	target := "me"
	if account.PageID != "" {
		target = account.PageID
	}

	form := url.Values{}
	form.Set("message", body)
	form.Set("access_token", account.AccessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		f.baseURL+"/"+target+"/feed", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("facebook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", domain.NewTransientError("facebook.post", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", domain.NewTransientError("facebook.post", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", classifyStatus("facebook.post", resp.StatusCode, graphErrorMessage(raw))
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", domain.NewPermanentError("facebook.post", fmt.Errorf("decode response: %w", err))
	}

	f.log.InfoContext(ctx, "post published", slog.String("post_id", out.ID))
	return out.ID, nil
}

// graphErrorMessage pulls the human-readable message out of a Graph API
// error body, falling back to the raw body.
func graphErrorMessage(raw []byte) string {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error.Message != "" {
		return payload.Error.Message
	}
	return string(raw)
}

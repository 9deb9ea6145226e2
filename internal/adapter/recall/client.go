// Package recall is the HTTP adapter to the meeting-recording service.
// It deploys bots, reads their status, downloads transcripts and cancels
// deployments. Failures are classified as transient (network, 429, 5xx) or
// permanent (other 4xx) so callers can decide what to retry.
package recall

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

	"github.com/meetscribe/backend/internal/config"
	"github.com/meetscribe/backend/internal/domain"
)

// Client talks to the recording-service REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	downloader *http.Client
	log        *slog.Logger
}

// NewClient creates a Client from configuration.
func NewClient(cfg config.RecallConfig, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		downloader: &http.Client{Timeout: cfg.DownloadTimeout},
		log:        logger.With("adapter", "recall"),
	}
}

// NewClientWithURL creates a Client with a custom base URL (for testing).
func NewClientWithURL(baseURL, apiKey string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		downloader: &http.Client{Timeout: 10 * time.Second},
		log:        logger.With("adapter", "recall"),
	}
}

// Deploy schedules a recording bot for a meeting and returns the external
// bot id. The service joins the meeting at joinAt on its own.
func (c *Client) Deploy(ctx context.Context, meetingURL string, joinAt time.Time) (string, error) {
	payload := map[string]any{
		"meeting_url": meetingURL,
		"join_at":     joinAt.UTC().Format(time.RFC3339),
		"bot_name":    "Meetscribe Notetaker",
		"recording_config": map[string]any{
			"transcript": map[string]any{
				"provider": map[string]any{
					"recallai_streaming": map[string]any{"language_code": "en"},
				},
			},
		},
	}

	var out createBotResponse
	if err := c.doJSON(ctx, http.MethodPost, "/bot/", payload, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", domain.NewPermanentError("recall.deploy", fmt.Errorf("response missing bot id"))
	}

	c.log.InfoContext(ctx, "bot deployed", slog.String("external_bot_id", out.ID))
	return out.ID, nil
}

// Status returns the latest status change of a bot as a StatusUpdate. The
// sequence marker is the provider's status timestamp in Unix milliseconds.
func (c *Client) Status(ctx context.Context, externalBotID string) (domain.StatusUpdate, error) {
	bot, err := c.getBot(ctx, externalBotID)
	if err != nil {
		return domain.StatusUpdate{}, err
	}

	if len(bot.StatusChanges) == 0 {
		return domain.StatusUpdate{}, domain.NewTransientError("recall.status",
			fmt.Errorf("bot %s has no status changes yet", externalBotID))
	}

	last := bot.StatusChanges[len(bot.StatusChanges)-1]
	return domain.StatusUpdate{
		ExternalBotID: externalBotID,
		RawState:      last.Code,
		Sequence:      last.CreatedAt.UnixMilli(),
		Detail:        strings.TrimSpace(last.SubCode + " " + last.Message),
	}, nil
}

// Transcript downloads and parses the diarized transcript of a finished
// recording. A transcript that is not ready yet is a transient error.
func (c *Client) Transcript(ctx context.Context, externalBotID string) ([]domain.Segment, error) {
	bot, err := c.getBot(ctx, externalBotID)
	if err != nil {
		return nil, err
	}

	url, err := transcriptURL(bot)
	if err != nil {
		return nil, domain.NewTransientError("recall.transcript", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("recall: create download request: %w", err)
	}

	resp, err := c.downloader.Do(req)
	if err != nil {
		return nil, domain.NewTransientError("recall.transcript", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus("recall.transcript", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewTransientError("recall.transcript", err)
	}

	var entries []transcriptEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, domain.NewPermanentError("recall.transcript", fmt.Errorf("decode transcript: %w", err))
	}

	segments := toSegments(entries)
	c.log.DebugContext(ctx, "transcript downloaded",
		slog.String("external_bot_id", externalBotID),
		slog.Int("segments", len(segments)),
	)
	return segments, nil
}

// Cancel deletes a scheduled or running bot. A bot already gone counts as
// cancelled.
func (c *Client) Cancel(ctx context.Context, externalBotID string) error {
	err := c.doJSON(ctx, http.MethodDelete, "/bot/"+externalBotID+"/", nil, nil)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}
	c.log.InfoContext(ctx, "bot cancelled", slog.String("external_bot_id", externalBotID))
	return nil
}

func (c *Client) getBot(ctx context.Context, externalBotID string) (*botResponse, error) {
	var bot botResponse
	if err := c.doJSON(ctx, http.MethodGet, "/bot/"+externalBotID+"/", nil, &bot); err != nil {
		return nil, err
	}
	return &bot, nil
}

// doJSON executes one API request with auth, decoding the response into out
// when out is non-nil.
func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	op := "recall." + strings.ToLower(method)

	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("recall: marshal payload: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("recall: create request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.NewTransientError(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classifyStatus(op, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.NewPermanentError(op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// classifyStatus maps an HTTP status to the transient/permanent taxonomy.
func classifyStatus(op string, status int) error {
	err := fmt.Errorf("unexpected status %d", status)
	if status == http.StatusTooManyRequests || status >= 500 {
		return domain.NewTransientError(op, err)
	}
	return domain.NewPermanentError(op, err)
}

func isNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "unexpected status 404")
}

// transcriptURL digs the download URL out of the bot payload. Any missing
// link in the chain means the provider has not finished producing the
// transcript.
func transcriptURL(bot *botResponse) (string, error) {
	if len(bot.Recordings) == 0 {
		return "", fmt.Errorf("no recordings yet")
	}
	art := bot.Recordings[0].MediaShortcuts.Transcript
	if art == nil || art.Status.Code != "done" {
		return "", fmt.Errorf("transcript not ready")
	}
	if art.Data.DownloadURL == "" {
		return "", fmt.Errorf("transcript has no download url")
	}
	return art.Data.DownloadURL, nil
}

// toSegments flattens diarized entries into transcript segments, one per
// entry, with offsets taken from the first and last word.
func toSegments(entries []transcriptEntry) []domain.Segment {
	segments := make([]domain.Segment, 0, len(entries))
	for _, e := range entries {
		if len(e.Words) == 0 {
			continue
		}
		texts := make([]string, 0, len(e.Words))
		for _, w := range e.Words {
			if w.Text != "" {
				texts = append(texts, w.Text)
			}
		}
		if len(texts) == 0 {
			continue
		}
		segments = append(segments, domain.Segment{
			Speaker:     e.Participant.Name,
			Text:        strings.Join(texts, " "),
			StartOffset: e.Words[0].StartTimestamp.Relative,
			EndOffset:   e.Words[len(e.Words)-1].EndTimestamp.Relative,
		})
	}
	return segments
}

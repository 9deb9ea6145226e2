package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/meetscribe/backend/internal/domain"
)

// artifactTask is one planned generation call.
type artifactTask struct {
	kind       domain.ContentKind
	platform   *domain.SocialPlatform
	automation *uuid.UUID
	prompt     string
}

// AutoGenerate produces the full draft set for a meeting: the follow-up
// email plus one post per active automation of the owner. Each artifact is
// one isolated generation call; a failure skips that artifact, never the
// others, and produces no row.
func (s *Service) AutoGenerate(ctx context.Context, eventID uuid.UUID) error {
	event, transcript, err := s.loadTranscript(ctx, eventID)
	if err != nil {
		return err
	}

	data := TemplateData{Transcript: transcript.Text(), MeetingTitle: event.Title}

	tasks := []artifactTask{{
		kind:   domain.ContentKindEmail,
		prompt: RenderTemplate(emailPromptTemplate, data),
	}}

	automations, err := s.automations.ListActiveForOwner(ctx, event.OwnerAccountID)
	if err != nil {
		return fmt.Errorf("list automations: %w", err)
	}
	for _, a := range automations {
		tasks = append(tasks, artifactTask{
			kind:       domain.ContentKindSocialPost,
			platform:   &a.Platform,
			automation: &a.ID,
			prompt:     s.renderAutomation(a, data),
		})
	}

	var (
		mu       sync.Mutex
		failures []error
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, task := range tasks {
		g.Go(func() error {
			if err := s.generateOne(gctx, eventID, task); err != nil {
				s.log.ErrorContext(gctx, "artifact generation failed",
					slog.String("event_id", eventID.String()),
					slog.String("kind", task.kind.String()),
					slog.Any("error", err),
				)
				mu.Lock()
				failures = append(failures, fmt.Errorf("%s: %w", task.kind, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(failures) > 0 {
		return fmt.Errorf("generated %d of %d artifacts: %w",
			len(tasks)-len(failures), len(tasks), errors.Join(failures...))
	}
	return nil
}

// GenerateManual produces a single artifact on demand. An empty platform
// means the follow-up email; otherwise a post, using the owner's active
// automation template when one exists.
func (s *Service) GenerateManual(ctx context.Context, eventID uuid.UUID, platform domain.SocialPlatform) (*domain.GeneratedContent, error) {
	if platform != "" && !platform.IsValid() {
		return nil, domain.NewValidationError("platform", "unknown platform")
	}

	event, transcript, err := s.loadTranscript(ctx, eventID)
	if err != nil {
		return nil, err
	}

	data := TemplateData{Transcript: transcript.Text(), MeetingTitle: event.Title}

	task := artifactTask{
		kind:   domain.ContentKindEmail,
		prompt: RenderTemplate(emailPromptTemplate, data),
	}
	if platform != "" {
		task.kind = domain.ContentKindSocialPost
		task.platform = &platform

		automation, err := s.automations.GetActive(ctx, event.OwnerAccountID, platform)
		switch {
		case err == nil:
			task.automation = &automation.ID
			task.prompt = s.renderAutomation(automation, data)
		case errors.Is(err, domain.ErrNotFound):
			task.prompt = RenderTemplate(defaultPostTemplate(platform.String()), data)
		default:
			return nil, fmt.Errorf("load automation: %w", err)
		}
	}

	artifact, err := s.createArtifact(ctx, eventID, task)
	if err != nil {
		return nil, err
	}
	return artifact, nil
}

func (s *Service) generateOne(ctx context.Context, eventID uuid.UUID, task artifactTask) error {
	_, err := s.createArtifact(ctx, eventID, task)
	return err
}

func (s *Service) createArtifact(ctx context.Context, eventID uuid.UUID, task artifactTask) (*domain.GeneratedContent, error) {
	body, err := s.generator.Generate(ctx, task.prompt)
	if err != nil {
		return nil, fmt.Errorf("generate text: %w", err)
	}

	artifact := &domain.GeneratedContent{
		ID:             uuid.New(),
		MeetingEventID: eventID,
		Kind:           task.kind,
		Platform:       task.platform,
		AutomationID:   task.automation,
		Body:           body,
		Status:         domain.ContentStatusDraft,
	}
	if err := s.content.Create(ctx, artifact); err != nil {
		return nil, fmt.Errorf("store draft: %w", err)
	}

	s.log.InfoContext(ctx, "draft created",
		slog.String("event_id", eventID.String()),
		slog.String("content_id", artifact.ID.String()),
		slog.String("kind", artifact.Kind.String()),
	)
	return artifact, nil
}

// renderAutomation renders the automation's own template, falling back to
// the platform default when the rule carries none.
func (s *Service) renderAutomation(a *domain.Automation, data TemplateData) string {
	if a.PromptTemplate == "" {
		return RenderTemplate(defaultPostTemplate(a.Platform.String()), data)
	}
	return RenderTemplate(a.PromptTemplate, data)
}

// loadTranscript resolves event -> bot -> transcript, the precondition for
// any generation.
func (s *Service) loadTranscript(ctx context.Context, eventID uuid.UUID) (*domain.MeetingEvent, *domain.Transcript, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, nil, fmt.Errorf("load event: %w", err)
	}

	bot, err := s.bots.GetByMeetingEventID(ctx, eventID)
	if err != nil {
		return nil, nil, fmt.Errorf("load bot: %w", err)
	}

	transcript, err := s.transcripts.GetByBotID(ctx, bot.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("load transcript: %w", err)
	}
	return event, transcript, nil
}

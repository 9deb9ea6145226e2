package scheduler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetscribe/backend/internal/domain"
)

type eventRepoMock struct {
	ListSchedulableFunc func(ctx context.Context) ([]*domain.MeetingEvent, error)
}

func (m *eventRepoMock) ListSchedulable(ctx context.Context) ([]*domain.MeetingEvent, error) {
	return m.ListSchedulableFunc(ctx)
}

type botRepoMock struct {
	CreateFunc       func(ctx context.Context, b *domain.Bot) error
	MarkDeployedFunc func(ctx context.Context, id uuid.UUID, externalID string, joinAt time.Time) error
	TransitionFunc   func(ctx context.Context, id uuid.UUID, to domain.BotState, lastError string) (bool, error)
}

func (m *botRepoMock) Create(ctx context.Context, b *domain.Bot) error {
	return m.CreateFunc(ctx, b)
}

func (m *botRepoMock) MarkDeployed(ctx context.Context, id uuid.UUID, externalID string, joinAt time.Time) error {
	return m.MarkDeployedFunc(ctx, id, externalID, joinAt)
}

func (m *botRepoMock) Transition(ctx context.Context, id uuid.UUID, to domain.BotState, lastError string) (bool, error) {
	return m.TransitionFunc(ctx, id, to, lastError)
}

type settingsRepoMock struct {
	GetFunc func(ctx context.Context, ownerID uuid.UUID) (*domain.AccountSettings, error)
}

func (m *settingsRepoMock) Get(ctx context.Context, ownerID uuid.UUID) (*domain.AccountSettings, error) {
	return m.GetFunc(ctx, ownerID)
}

type botClientMock struct {
	DeployFunc func(ctx context.Context, meetingURL string, joinAt time.Time) (string, error)
}

func (m *botClientMock) Deploy(ctx context.Context, meetingURL string, joinAt time.Time) (string, error) {
	return m.DeployFunc(ctx, meetingURL, joinAt)
}

func noSettings() *settingsRepoMock {
	return &settingsRepoMock{
		GetFunc: func(ctx context.Context, ownerID uuid.UUID) (*domain.AccountSettings, error) {
			return nil, fmt.Errorf("settings: %w", domain.ErrNotFound)
		},
	}
}

func newTestService(events eventRepo, bots botRepo, settings settingsRepo, client botClient, clock clockwork.Clock) *Service {
	return &Service{
		events:   events,
		bots:     bots,
		settings: settings,
		client:   client,
		clock:    clock,
		cfg:      Config{DefaultLeadTime: 10 * time.Minute, MaxDeployAttempts: 3},
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func testEvent(start time.Time) *domain.MeetingEvent {
	return &domain.MeetingEvent{
		ID:               uuid.New(),
		Title:            "Weekly sync",
		StartTime:        start,
		EndTime:          start.Add(30 * time.Minute),
		Platform:         domain.MeetingPlatformMeet,
		MeetingURL:       "https://meet.example.com/abc",
		OwnerAccountID:   uuid.New(),
		NotetakerEnabled: true,
	}
}

// An event outside its join window is left alone; once inside the window the
// bot is created, deployed and marked deploying.
func TestTick_JoinWindow(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	event := testEvent(start)

	var created, deployed, marked atomic.Int32

	bots := &botRepoMock{
		CreateFunc: func(ctx context.Context, b *domain.Bot) error {
			created.Add(1)
			require.Equal(t, domain.BotStatePending, b.State)
			require.Equal(t, event.ID, b.MeetingEventID)
			return nil
		},
		MarkDeployedFunc: func(ctx context.Context, id uuid.UUID, externalID string, joinAt time.Time) error {
			marked.Add(1)
			require.Equal(t, "ext-1", externalID)
			require.Equal(t, start.Add(-10*time.Minute), joinAt)
			return nil
		},
	}
	client := &botClientMock{
		DeployFunc: func(ctx context.Context, meetingURL string, joinAt time.Time) (string, error) {
			deployed.Add(1)
			return "ext-1", nil
		},
	}
	events := &eventRepoMock{
		ListSchedulableFunc: func(ctx context.Context) ([]*domain.MeetingEvent, error) {
			return []*domain.MeetingEvent{event}, nil
		},
	}

	// T-15: before the 10 minute window opens.
	clock := clockwork.NewFakeClockAt(start.Add(-15 * time.Minute))
	svc := newTestService(events, bots, noSettings(), client, clock)

	require.NoError(t, svc.Tick(context.Background()))
	assert.Zero(t, created.Load())

	// T-9: inside the window.
	clock.Advance(6 * time.Minute)

	require.NoError(t, svc.Tick(context.Background()))
	assert.Equal(t, int32(1), created.Load())
	assert.Equal(t, int32(1), deployed.Load())
	assert.Equal(t, int32(1), marked.Load())
}

func TestTick_OwnerLeadTimeOverride(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	event := testEvent(start)

	settings := &settingsRepoMock{
		GetFunc: func(ctx context.Context, ownerID uuid.UUID) (*domain.AccountSettings, error) {
			return &domain.AccountSettings{OwnerAccountID: ownerID, LeadTimeMinutes: 30}, nil
		},
	}

	var created atomic.Int32
	bots := &botRepoMock{
		CreateFunc: func(ctx context.Context, b *domain.Bot) error {
			created.Add(1)
			require.Equal(t, start.Add(-30*time.Minute), b.ScheduledJoinTime)
			return nil
		},
		MarkDeployedFunc: func(ctx context.Context, id uuid.UUID, externalID string, joinAt time.Time) error {
			return nil
		},
	}
	client := &botClientMock{
		DeployFunc: func(ctx context.Context, meetingURL string, joinAt time.Time) (string, error) {
			return "ext-1", nil
		},
	}
	events := &eventRepoMock{
		ListSchedulableFunc: func(ctx context.Context) ([]*domain.MeetingEvent, error) {
			return []*domain.MeetingEvent{event}, nil
		},
	}

	// T-25 is outside the default window but inside the owner's 30 minutes.
	clock := clockwork.NewFakeClockAt(start.Add(-25 * time.Minute))
	svc := newTestService(events, bots, settings, client, clock)

	require.NoError(t, svc.Tick(context.Background()))
	assert.Equal(t, int32(1), created.Load())
}

func TestTick_LateDiscoveryMarksMissed(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	event := testEvent(start)

	var missed atomic.Int32
	bots := &botRepoMock{
		CreateFunc: func(ctx context.Context, b *domain.Bot) error {
			missed.Add(1)
			require.Equal(t, domain.BotStateMissed, b.State)
			require.NotEmpty(t, b.LastError)
			return nil
		},
	}
	client := &botClientMock{
		DeployFunc: func(ctx context.Context, meetingURL string, joinAt time.Time) (string, error) {
			t.Fatal("must not deploy for a missed meeting")
			return "", nil
		},
	}
	events := &eventRepoMock{
		ListSchedulableFunc: func(ctx context.Context) ([]*domain.MeetingEvent, error) {
			return []*domain.MeetingEvent{event}, nil
		},
	}

	clock := clockwork.NewFakeClockAt(start.Add(5 * time.Minute))
	svc := newTestService(events, bots, noSettings(), client, clock)

	require.NoError(t, svc.Tick(context.Background()))
	assert.Equal(t, int32(1), missed.Load())
}

// An event discovered only after its end still gets a durable missed marker
// so it drops out of the schedulable set.
func TestTick_FullyEndedEventMarksMissed(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	event := testEvent(start)

	var missed atomic.Int32
	bots := &botRepoMock{
		CreateFunc: func(ctx context.Context, b *domain.Bot) error {
			missed.Add(1)
			require.Equal(t, domain.BotStateMissed, b.State)
			return nil
		},
	}
	client := &botClientMock{
		DeployFunc: func(ctx context.Context, meetingURL string, joinAt time.Time) (string, error) {
			t.Fatal("must not deploy for an ended meeting")
			return "", nil
		},
	}
	events := &eventRepoMock{
		ListSchedulableFunc: func(ctx context.Context) ([]*domain.MeetingEvent, error) {
			return []*domain.MeetingEvent{event}, nil
		},
	}

	clock := clockwork.NewFakeClockAt(event.EndTime.Add(2 * time.Hour))
	svc := newTestService(events, bots, noSettings(), client, clock)

	require.NoError(t, svc.Tick(context.Background()))
	assert.Equal(t, int32(1), missed.Load())
}

// A concurrent tick losing the bot-row insert race treats the event as
// already handled.
func TestTick_DuplicateCreateIsNoOp(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	event := testEvent(start)

	bots := &botRepoMock{
		CreateFunc: func(ctx context.Context, b *domain.Bot) error {
			return fmt.Errorf("bot: %w", domain.ErrAlreadyExists)
		},
	}
	client := &botClientMock{
		DeployFunc: func(ctx context.Context, meetingURL string, joinAt time.Time) (string, error) {
			t.Fatal("must not deploy when the bot row already exists")
			return "", nil
		},
	}
	events := &eventRepoMock{
		ListSchedulableFunc: func(ctx context.Context) ([]*domain.MeetingEvent, error) {
			return []*domain.MeetingEvent{event}, nil
		},
	}

	clock := clockwork.NewFakeClockAt(start.Add(-5 * time.Minute))
	svc := newTestService(events, bots, noSettings(), client, clock)

	require.NoError(t, svc.Tick(context.Background()))
}

func TestTick_TransientDeployRetries(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	event := testEvent(start)

	var attempts atomic.Int32
	client := &botClientMock{
		DeployFunc: func(ctx context.Context, meetingURL string, joinAt time.Time) (string, error) {
			if attempts.Add(1) == 1 {
				return "", domain.NewTransientError("recall.post", fmt.Errorf("unexpected status 503"))
			}
			return "ext-2", nil
		},
	}

	var marked atomic.Int32
	bots := &botRepoMock{
		CreateFunc: func(ctx context.Context, b *domain.Bot) error { return nil },
		MarkDeployedFunc: func(ctx context.Context, id uuid.UUID, externalID string, joinAt time.Time) error {
			marked.Add(1)
			require.Equal(t, "ext-2", externalID)
			return nil
		},
	}
	events := &eventRepoMock{
		ListSchedulableFunc: func(ctx context.Context) ([]*domain.MeetingEvent, error) {
			return []*domain.MeetingEvent{event}, nil
		},
	}

	clock := clockwork.NewFakeClockAt(start.Add(-5 * time.Minute))
	svc := newTestService(events, bots, noSettings(), client, clock)

	require.NoError(t, svc.Tick(context.Background()))
	assert.Equal(t, int32(2), attempts.Load())
	assert.Equal(t, int32(1), marked.Load())
}

func TestTick_PermanentDeployFailureMarksFailed(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	event := testEvent(start)

	var attempts, failed atomic.Int32
	client := &botClientMock{
		DeployFunc: func(ctx context.Context, meetingURL string, joinAt time.Time) (string, error) {
			attempts.Add(1)
			return "", domain.NewPermanentError("recall.post", fmt.Errorf("unexpected status 422"))
		},
	}
	bots := &botRepoMock{
		CreateFunc: func(ctx context.Context, b *domain.Bot) error { return nil },
		TransitionFunc: func(ctx context.Context, id uuid.UUID, to domain.BotState, lastError string) (bool, error) {
			failed.Add(1)
			require.Equal(t, domain.BotStateFailed, to)
			require.NotEmpty(t, lastError)
			return true, nil
		},
	}
	events := &eventRepoMock{
		ListSchedulableFunc: func(ctx context.Context) ([]*domain.MeetingEvent, error) {
			return []*domain.MeetingEvent{event}, nil
		},
	}

	clock := clockwork.NewFakeClockAt(start.Add(-5 * time.Minute))
	svc := newTestService(events, bots, noSettings(), client, clock)

	err := svc.Tick(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), attempts.Load(), "permanent errors must not be retried")
	assert.Equal(t, int32(1), failed.Load())
}

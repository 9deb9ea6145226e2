package event

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v2"

	"github.com/meetscribe/backend/internal/domain"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func eventRows(events ...*domain.MeetingEvent) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{
		"id", "title", "start_time", "end_time", "platform", "meeting_url",
		"owner_account_id", "notetaker_enabled", "created_at", "updated_at",
	})
	for _, e := range events {
		rows.AddRow(e.ID, e.Title, e.StartTime, e.EndTime, e.Platform,
			e.MeetingURL, e.OwnerAccountID, e.NotetakerEnabled, e.CreatedAt, e.UpdatedAt)
	}
	return rows
}

// The candidate query must not filter on end_time: events discovered only
// after they ended still need a missed marker, which only the scheduler can
// write.
func TestListSchedulable_IncludesEndedEvents(t *testing.T) {
	t.Parallel()

	mock := newMock(t)
	repo := New(mock)

	past := &domain.MeetingEvent{
		ID:               uuid.New(),
		Title:            "Retro",
		StartTime:        time.Date(2025, 3, 9, 15, 0, 0, 0, time.UTC),
		EndTime:          time.Date(2025, 3, 9, 15, 30, 0, 0, time.UTC),
		Platform:         domain.MeetingPlatformMeet,
		MeetingURL:       "https://meet.example.com/retro",
		OwnerAccountID:   uuid.New(),
		NotetakerEnabled: true,
	}

	mock.ExpectQuery(`WHERE e\.notetaker_enabled = \$1 AND b\.id IS NULL ORDER BY e\.start_time ASC`).
		WithArgs(true).
		WillReturnRows(eventRows(past))

	events, err := repo.ListSchedulable(context.Background())
	if err != nil {
		t.Fatalf("ListSchedulable: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events: got %d, want 1", len(events))
	}
	if events[0].ID != past.ID {
		t.Errorf("event id: got %s, want %s", events[0].ID, past.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// MeetingPlatform identifies the conferencing system hosting a meeting.
type MeetingPlatform string

const (
	MeetingPlatformZoom  MeetingPlatform = "zoom"
	MeetingPlatformTeams MeetingPlatform = "teams"
	MeetingPlatformMeet  MeetingPlatform = "meet"
	MeetingPlatformOther MeetingPlatform = "other"
)

func (p MeetingPlatform) String() string { return string(p) }

func (p MeetingPlatform) IsValid() bool {
	switch p {
	case MeetingPlatformZoom, MeetingPlatformTeams, MeetingPlatformMeet, MeetingPlatformOther:
		return true
	}
	return false
}

// MeetingEvent is a calendar-derived meeting record. Rows are created and
// updated by calendar sync; the pipeline reads them and flips NotetakerEnabled
// on user command, nothing else.
type MeetingEvent struct {
	ID               uuid.UUID
	Title            string
	StartTime        time.Time
	EndTime          time.Time
	Platform         MeetingPlatform
	MeetingURL       string
	OwnerAccountID   uuid.UUID
	NotetakerEnabled bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Validate checks the event invariants.
func (e *MeetingEvent) Validate() error {
	if e.Title == "" {
		return NewValidationError("title", "must not be empty")
	}
	if !e.StartTime.Before(e.EndTime) {
		return NewValidationError("start_time", "must be before end_time")
	}
	if e.MeetingURL == "" {
		return NewValidationError("meeting_url", "must not be empty")
	}
	return nil
}

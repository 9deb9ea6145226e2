package domain

import (
	"time"

	"github.com/google/uuid"
)

// BotState is the lifecycle state of one recording-agent deployment.
type BotState string

const (
	BotStatePending         BotState = "pending"
	BotStateDeploying       BotState = "deploying"
	BotStateJoined          BotState = "joined"
	BotStateRecording       BotState = "recording"
	BotStateCallEnded       BotState = "call_ended"
	BotStateTranscriptReady BotState = "transcript_ready"
	BotStateFailed          BotState = "failed"
	BotStateCancelled       BotState = "cancelled"
	// BotStateMissed is set by the scheduler when an event is discovered only
	// after its start time. Terminal, never retried.
	BotStateMissed BotState = "missed"
)

func (s BotState) String() string { return string(s) }

func (s BotState) IsValid() bool {
	switch s {
	case BotStatePending, BotStateDeploying, BotStateJoined, BotStateRecording,
		BotStateCallEnded, BotStateTranscriptReady, BotStateFailed,
		BotStateCancelled, BotStateMissed:
		return true
	}
	return false
}

// IsTerminal reports whether no further status updates may change the state.
func (s BotState) IsTerminal() bool {
	switch s {
	case BotStateTranscriptReady, BotStateFailed, BotStateCancelled, BotStateMissed:
		return true
	}
	return false
}

// StateChange is one entry of a bot's state history.
type StateChange struct {
	State      string    `json:"state"`
	Sequence   int64     `json:"sequence"`
	Detail     string    `json:"detail,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Bot tracks one recording-agent deployment for one meeting. Owned exclusively
// by the lifecycle tracker; 1:1 with its MeetingEvent.
type Bot struct {
	ID                uuid.UUID
	MeetingEventID    uuid.UUID
	ExternalBotID     string
	State             BotState
	StateHistory      []StateChange
	LastSequence      int64
	ScheduledJoinTime time.Time
	LastError         string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// StatusUpdate is one status notification from the recording service,
// delivered by webhook push or reconciliation poll. Sequence is the
// provider-assigned marker (Unix milliseconds of the status change).
type StatusUpdate struct {
	ExternalBotID string
	RawState      string
	Sequence      int64
	Detail        string
}

// MapProviderState translates a recording-service status code into a lifecycle
// state. The second return is false for codes this system does not recognize;
// such updates advance only the sequence cursor, never the state.
func MapProviderState(raw string) (BotState, bool) {
	switch raw {
	case "ready", "scheduled":
		return BotStateDeploying, true
	case "joining_call", "in_waiting_room", "in_call_not_recording":
		return BotStateJoined, true
	case "in_call_recording", "recording_permission_allowed":
		return BotStateRecording, true
	case "call_ended", "done", "recording_done":
		return BotStateCallEnded, true
	case "fatal", "recording_permission_denied":
		return BotStateFailed, true
	}
	return "", false
}

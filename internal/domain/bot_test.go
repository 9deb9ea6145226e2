package domain

import "testing"

func TestBotState_IsTerminal(t *testing.T) {
	t.Parallel()

	terminal := []BotState{BotStateTranscriptReady, BotStateFailed, BotStateCancelled, BotStateMissed}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%s.IsTerminal() = false, want true", s)
		}
	}

	live := []BotState{BotStatePending, BotStateDeploying, BotStateJoined, BotStateRecording, BotStateCallEnded}
	for _, s := range live {
		if s.IsTerminal() {
			t.Errorf("%s.IsTerminal() = true, want false", s)
		}
	}
}

func TestBotState_IsValid(t *testing.T) {
	t.Parallel()

	if !BotStateRecording.IsValid() {
		t.Error("recording should be valid")
	}
	if BotState("exploded").IsValid() {
		t.Error("unknown state should be invalid")
	}
}

func TestMapProviderState(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw   string
		want  BotState
		known bool
	}{
		{"ready", BotStateDeploying, true},
		{"joining_call", BotStateJoined, true},
		{"in_waiting_room", BotStateJoined, true},
		{"in_call_recording", BotStateRecording, true},
		{"call_ended", BotStateCallEnded, true},
		{"done", BotStateCallEnded, true},
		{"fatal", BotStateFailed, true},
		{"quantum_flux", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		got, known := MapProviderState(tc.raw)
		if known != tc.known {
			t.Errorf("MapProviderState(%q) known = %v, want %v", tc.raw, known, tc.known)
		}
		if got != tc.want {
			t.Errorf("MapProviderState(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

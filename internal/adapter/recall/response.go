package recall

import "time"

// API response shapes for the recording service. Only the fields the
// pipeline reads are declared.

type createBotResponse struct {
	ID string `json:"id"`
}

type botResponse struct {
	ID            string         `json:"id"`
	MeetingURL    string         `json:"meeting_url"`
	StatusChanges []statusChange `json:"status_changes"`
	Recordings    []recording    `json:"recordings"`
}

type statusChange struct {
	Code      string    `json:"code"`
	SubCode   string    `json:"sub_code"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type recording struct {
	Status         statusObject   `json:"status"`
	MediaShortcuts mediaShortcuts `json:"media_shortcuts"`
}

type statusObject struct {
	Code string `json:"code"`
}

type mediaShortcuts struct {
	Transcript *mediaArtifact `json:"transcript"`
}

type mediaArtifact struct {
	Status statusObject `json:"status"`
	Data   struct {
		DownloadURL string `json:"download_url"`
	} `json:"data"`
}

// transcriptEntry is one diarized entry of the downloaded transcript file:
// a participant and the words they spoke.
type transcriptEntry struct {
	Participant participant      `json:"participant"`
	Words       []transcriptWord `json:"words"`
}

type participant struct {
	Name string `json:"name"`
}

type transcriptWord struct {
	Text           string    `json:"text"`
	StartTimestamp timestamp `json:"start_timestamp"`
	EndTimestamp   timestamp `json:"end_timestamp"`
}

type timestamp struct {
	Relative float64 `json:"relative"`
}

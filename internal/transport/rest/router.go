package rest

import "net/http"

// NewRouter mounts every route on a ServeMux. The webhook intake is passed
// as a plain handler so callers can wrap it with its own middleware.
func NewRouter(
	health *HealthHandler,
	meetings *MeetingHandler,
	content *ContentHandler,
	settings *SettingsHandler,
	webhooks http.Handler,
) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", health.Live)
	mux.HandleFunc("GET /ready", health.Ready)
	mux.HandleFunc("GET /health", health.Health)

	mux.Handle("POST /webhooks/recall", webhooks)

	mux.HandleFunc("GET /api/v1/meetings/{id}/bot", meetings.GetBot)
	mux.HandleFunc("GET /api/v1/meetings/{id}/transcript", meetings.GetTranscript)
	mux.HandleFunc("GET /api/v1/meetings/{id}/content", meetings.ListContent)
	mux.HandleFunc("POST /api/v1/meetings/{id}/generate", meetings.Generate)
	mux.HandleFunc("PUT /api/v1/events/{id}/notetaker", meetings.SetNotetaker)

	mux.HandleFunc("POST /api/v1/content/{id}/publish", content.Publish)
	mux.HandleFunc("PUT /api/v1/settings/lead-time", settings.SetLeadTime)

	return mux
}

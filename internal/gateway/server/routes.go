package server

import (
	"net/http"

	"workbench/internal/gateway/handler"
	"workbench/internal/gateway/middleware"
)

// NewMux registers the gateway's REST routes and wraps them in CORS.
func NewMux(s *handler.Service) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.HandleHealth)

	// Artifacts & versions
	mux.HandleFunc("POST /artifacts", s.HandleCreateArtifact)
	mux.HandleFunc("POST /artifacts/{id}/versions", s.HandleCreateVersion)
	mux.HandleFunc("POST /versions/{versionId}/rerun", s.HandleRerun)

	// Chat & styles
	mux.HandleFunc("POST /chat", s.HandleChat)
	mux.HandleFunc("POST /conversations/{id}/style", s.HandlePinStyle)
	mux.HandleFunc("GET /styles", s.HandleListStyles)

	// Knowledge base
	mux.HandleFunc("POST /kb/sources", s.HandleCreateSource)
	mux.HandleFunc("POST /kb/ingest", s.HandleIngest)
	mux.HandleFunc("POST /search", s.HandleSearch)

	// Playbooks
	mux.HandleFunc("POST /playbooks", s.HandleCreatePlaybook)
	mux.HandleFunc("GET /playbooks", s.HandleSearchPlaybooks)

	return middleware.CORS(mux)
}

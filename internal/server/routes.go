package server

import "net/http"

// RegisterRoutes registers all API routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, s *Server) {
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /api/v1/repos", s.handleRepos)
	mux.HandleFunc("GET /api/v1/stats", s.handleStats)
	mux.HandleFunc("GET /api/v1/ingests", s.handleIngests)

	mux.HandleFunc("GET /api/v1/repos/{repo}/graph", s.handleSnapshot)
	mux.HandleFunc("POST /api/v1/repos/{repo}/impact", s.handleImpact)
	mux.HandleFunc("GET /api/v1/repos/{repo}/broken-refs", s.handleBrokenRefs)
	mux.HandleFunc("GET /api/v1/repos/{repo}/export/{format}", s.handleExport)
	mux.HandleFunc("GET /api/v1/repos/{repo}/deps/{path...}", s.handleDeps)

	if !s.readOnly {
		mux.HandleFunc("POST /api/v1/repos/{repo}/build", s.handleBuild)
	}
}

package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/docradar/docradar/internal/graph"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRepos(w http.ResponseWriter, r *http.Request) {
	repos, err := s.store.ListRepositories(r.Context())
	if err != nil {
		s.logger.Error("listing repositories", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if repos == nil {
		repos = []string{}
	}
	writeJSON(w, http.StatusOK, repos)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	repos, err := s.store.ListRepositories(ctx)
	if err != nil {
		s.logger.Error("listing repositories", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	perRepo := make(map[string]any, len(repos))
	for _, repo := range repos {
		docCount, _ := s.store.DocumentCount(ctx, repo)
		entry := map[string]any{"documents": docCount}
		if snap, _ := s.store.GetSnapshot(ctx, repo); snap != nil {
			entry["nodes"] = snap.NodeCount
			entry["edges"] = snap.EdgeCount
			entry["built_at"] = snap.BuiltAt
		}
		perRepo[repo] = entry
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"repositories": len(repos),
		"per_repo":     perRepo,
	})
}

func (s *Server) handleIngests(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.ListIngests(r.Context(), 50)
	if err != nil {
		s.logger.Error("listing ingests", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	repo := r.PathValue("repo")
	if repo == "" {
		writeError(w, http.StatusBadRequest, "repository id required")
		return
	}

	g, err := s.engine.Build(r.Context(), repo)
	if err != nil {
		s.logger.Error("building graph", "repositoryID", repo, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// handleSnapshot serves the persisted snapshot without forcing a rebuild.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	repo := r.PathValue("repo")
	snap, err := s.store.GetSnapshot(r.Context(), repo)
	if err != nil {
		s.logger.Error("reading snapshot", "repositoryID", repo, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if snap == nil {
		writeError(w, http.StatusNotFound, "no snapshot for repository (build it first)")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// impactRequest is the JSON body for POST /api/v1/repos/{repo}/impact.
type impactRequest struct {
	ChangedFiles []string `json:"changed_files"`
}

func (s *Server) handleImpact(w http.ResponseWriter, r *http.Request) {
	repo := r.PathValue("repo")

	var req impactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.ChangedFiles) == 0 {
		writeError(w, http.StatusBadRequest, "changed_files required")
		return
	}

	radius, err := s.engine.ComputeBlastRadius(r.Context(), repo, req.ChangedFiles)
	if err != nil {
		s.logger.Error("computing blast radius", "repositoryID", repo, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, radius)
}

func (s *Server) handleBrokenRefs(w http.ResponseWriter, r *http.Request) {
	repo := r.PathValue("repo")

	broken, err := s.engine.DetectBrokenReferences(r.Context(), repo)
	if err != nil {
		s.logger.Error("detecting broken references", "repositoryID", repo, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, broken)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	repo := r.PathValue("repo")
	format := r.PathValue("format")

	switch format {
	case "dot", "cytoscape", "json":
	default:
		writeError(w, http.StatusBadRequest, "format must be one of: dot, cytoscape, json")
		return
	}

	out, err := s.engine.Export(r.Context(), repo, format)
	if err != nil {
		s.logger.Error("exporting graph", "repositoryID", repo, "format", format, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeps(w http.ResponseWriter, r *http.Request) {
	repo := r.PathValue("repo")
	nodePath := r.PathValue("path")
	if nodePath == "" {
		writeError(w, http.StatusBadRequest, "node path required")
		return
	}

	deps, err := s.engine.NodeDependencies(r.Context(), repo, nodePath)
	if err != nil {
		if errors.Is(err, graph.ErrNodeNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.logger.Error("resolving dependencies", "repositoryID", repo, "path", nodePath, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, deps)
}

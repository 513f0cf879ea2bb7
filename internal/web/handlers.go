package web

import (
	"encoding/json"
	"net/http"
	"time"
)

// githubDetails identifies the repository snapshot a run should analyze.
type githubDetails struct {
	RepoURL     string `json:"repo_url"`
	Branch      string `json:"branch"`
	GithubToken string `json:"github_token"`
}

// runRequest is the body of POST /api/v1/runs and /api/v1/runs/wait.
type runRequest struct {
	AgentID string `json:"agent_id"`
	Input   struct {
		GithubDetails *githubDetails `json:"github_details"`
	} `json:"input"`
	Metadata map[string]any `json:"metadata"`
}

// runOutput is the analysis payload shared by both run endpoints. The
// comma-joined static_analyzer_output string is kept for legacy consumers.
type runOutput struct {
	StaticAnalyzerOutput string `json:"static_analyzer_output"`
	Findings             any    `json:"findings"`
	Status               string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// decodeRunRequest parses and validates a run request body.
func decodeRunRequest(r *http.Request) (*runRequest, string) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, "invalid request body"
	}
	gh := req.Input.GithubDetails
	if gh == nil || gh.RepoURL == "" || gh.Branch == "" {
		return nil, "input.github_details with repo_url and branch is required"
	}
	return &req, ""
}

// runAnalysis downloads the repository and runs the pipeline on it.
func (s *Server) runAnalysis(r *http.Request, req *runRequest) (*runOutput, int, string) {
	ctx := r.Context()
	gh := req.Input.GithubDetails

	start := time.Now()
	path, err := s.fetcher.Fetch(ctx, gh.GithubToken, gh.RepoURL, gh.Branch, s.settings.DestinationFolder)
	if err != nil {
		s.log.Error("download repository", "repo", gh.RepoURL, "error", err)
		return nil, http.StatusInternalServerError, "failed to download repository"
	}

	result, err := s.analyzer.Analyze(ctx, path)
	if err != nil {
		s.log.Error("analysis failed", "repo", gh.RepoURL, "error", err)
		return nil, http.StatusInternalServerError, "analysis failed"
	}

	if s.history != nil {
		if _, err := s.history.InsertRun(gh.RepoURL, result, int(time.Since(start).Milliseconds())); err != nil {
			s.log.Error("record run", "error", err)
		}
	}

	return &runOutput{
		StaticAnalyzerOutput: result.Legacy(),
		Findings:             result.Findings,
		Status:               string(result.Status),
	}, 0, ""
}

// handleRun creates a run and responds with its output.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	req, msg := decodeRunRequest(r)
	if req == nil {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	out, status, msg := s.runAnalysis(r, req)
	if out == nil {
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"agent_id": req.AgentID,
		"output":   out,
		"model":    s.settings.Model(),
		"metadata": map[string]any{},
	})
}

// handleRunWait behaves like handleRun but wraps the output in a run
// envelope for callers that expect the run-with-status shape.
func (s *Server) handleRunWait(w http.ResponseWriter, r *http.Request) {
	req, msg := decodeRunRequest(r)
	if req == nil {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	out, status, msg := s.runAnalysis(r, req)
	if out == nil {
		writeError(w, status, msg)
		return
	}

	runID := ""
	if v, ok := req.Metadata["id"]; ok {
		if sv, ok := v.(string); ok {
			runID = sv
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)

	writeJSON(w, http.StatusOK, map[string]any{
		"run": map[string]any{
			"run_id":     runID,
			"agent_id":   req.AgentID,
			"status":     "success",
			"created_at": now,
			"updated_at": now,
		},
		"output": out,
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Package web exposes the analyzer as a JSON HTTP API.
package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/lucasnoah/tfanalyzer/internal/analyzer"
	"github.com/lucasnoah/tfanalyzer/internal/config"
	"github.com/lucasnoah/tfanalyzer/internal/db"
	"github.com/lucasnoah/tfanalyzer/internal/github"
)

// Analyzer runs the static-analysis pipeline. Interface for testing.
type Analyzer interface {
	Analyze(ctx context.Context, path string) (*analyzer.Result, error)
}

// RepoFetcher downloads a repository snapshot and returns its local path.
// The token is per-request: each caller may supply its own credentials.
type RepoFetcher interface {
	Fetch(ctx context.Context, token, repoURL, branch, destDir string) (string, error)
}

// GithubFetcher implements RepoFetcher with the github package.
type GithubFetcher struct{}

func (GithubFetcher) Fetch(ctx context.Context, token, repoURL, branch, destDir string) (string, error) {
	return github.NewClient(token).DownloadRepoZip(ctx, repoURL, branch, destDir)
}

// Server serves the analysis API.
type Server struct {
	analyzer Analyzer
	fetcher  RepoFetcher
	settings *config.Settings
	history  *db.DB // nil when run history is disabled
	log      *slog.Logger
}

// NewServer creates a Server. history may be nil.
func NewServer(an Analyzer, fetcher RepoFetcher, settings *config.Settings, history *db.DB) *Server {
	return &Server{
		analyzer: an,
		fetcher:  fetcher,
		settings: settings,
		history:  history,
		log:      slog.Default(),
	}
}

// Handler returns the route table as an http.Handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/runs", s.handleRun)
	mux.HandleFunc("POST /api/v1/runs/wait", s.handleRunWait)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	return mux
}

// Start blocks serving HTTP on the configured address.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.settings.Host, s.settings.Port)
	s.log.Info("listening", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}

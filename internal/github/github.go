// Package github downloads repository snapshots as zipballs for analysis.
package github

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/lucasnoah/tfanalyzer/internal/workdir"
)

// Doer abstracts the HTTP client. Interface for testing.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client downloads GitHub repositories. Anonymous access works for public
// repos; a token enables private ones and higher rate limits.
type Client struct {
	http    Doer
	token   string
	baseURL string
}

// NewClient creates a GitHub client with an optional token ("" = anonymous).
func NewClient(token string) *Client {
	return NewClientWithDoer(&http.Client{Timeout: 30 * time.Second}, token, "")
}

// NewClientWithDoer creates a client with an injected HTTP doer and API base
// URL. An empty baseURL selects the public GitHub API.
func NewClientWithDoer(doer Doer, token string, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}
	return &Client{http: doer, token: token, baseURL: baseURL}
}

// ParseRepoURL extracts owner and repo from a github.com repository URL.
func ParseRepoURL(repoURL string) (owner, repo string, err error) {
	u, err := url.Parse(repoURL)
	if err != nil {
		return "", "", fmt.Errorf("parse repo URL: %w", err)
	}
	if !strings.EqualFold(u.Host, "github.com") {
		return "", "", fmt.Errorf("%q is not a GitHub URL", repoURL)
	}

	var parts []string
	for _, p := range strings.Split(u.Path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 2 {
		return "", "", fmt.Errorf("invalid repository URL %q: expected https://github.com/<owner>/<repo>", repoURL)
	}
	return parts[0], parts[1], nil
}

// DownloadRepoZip downloads the zipball of branch from repoURL, extracts it
// under destDir, and returns the path of the extracted repository root.
func (c *Client) DownloadRepoZip(ctx context.Context, repoURL, branch, destDir string) (string, error) {
	owner, repo, err := ParseRepoURL(repoURL)
	if err != nil {
		return "", err
	}

	apiURL := fmt.Sprintf("%s/repos/%s/%s/zipball/%s", c.baseURL, owner, repo, branch)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("download zipball: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download zipball: %s returned %s", apiURL, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read zipball: %w", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open zipball: %w", err)
	}
	if len(zr.File) == 0 {
		return "", fmt.Errorf("downloaded zipball for %s/%s is empty", owner, repo)
	}

	// GitHub zipballs wrap everything in a single <owner>-<repo>-<sha> root.
	root := strings.SplitN(zr.File[0].Name, "/", 2)[0]

	if err := workdir.ExtractReader(zr, destDir); err != nil {
		return "", fmt.Errorf("extract zipball: %w", err)
	}
	return filepath.Join(destDir, root), nil
}

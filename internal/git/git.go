package git

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/joescharf/prscore/internal/models"
)

// Supported server names.
const (
	ServerGitHub    = "github"
	ServerGitLab    = "gitlab"
	ServerBitbucket = "bitbucket"
)

// ErrUnsupportedServer is returned for a server name with no platform client.
var ErrUnsupportedServer = errors.New("unsupported server")

// Platform fetches the contents of files changed by a pull or merge request.
type Platform interface {
	ChangedFiles(ctx context.Context, repo string, number int) ([]models.SourceFile, error)
}

// Config holds credentials and endpoints for the platform clients. Empty
// URLs select the public hosted APIs.
type Config struct {
	GitHubToken    string
	GitHubURL      string
	GitLabToken    string
	GitLabURL      string
	BitbucketToken string
	BitbucketURL   string
	Timeout        time.Duration
}

// Registry resolves server names to platform clients.
type Registry struct {
	platforms map[string]Platform
}

// NewRegistry returns a registry with the GitHub, GitLab and Bitbucket
// clients configured from cfg.
func NewRegistry(cfg Config) *Registry {
	r := &Registry{platforms: make(map[string]Platform)}
	r.Register(ServerGitHub, NewGitHubClient(cfg.GitHubToken, cfg.GitHubURL, cfg.Timeout))
	r.Register(ServerGitLab, NewGitLabClient(cfg.GitLabToken, cfg.GitLabURL, cfg.Timeout))
	r.Register(ServerBitbucket, NewBitbucketClient(cfg.BitbucketToken, cfg.BitbucketURL, cfg.Timeout))
	return r
}

// NewEmptyRegistry returns a registry with no platforms.
func NewEmptyRegistry() *Registry {
	return &Registry{platforms: make(map[string]Platform)}
}

// Register adds or replaces the client for server.
func (r *Registry) Register(server string, p Platform) {
	r.platforms[strings.ToLower(server)] = p
}

// Platform returns the client for server, matched case-insensitively.
func (r *Registry) Platform(server string) (Platform, error) {
	p, ok := r.platforms[strings.ToLower(server)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedServer, server)
	}
	return p, nil
}

// Supports reports whether server has a registered client.
func (r *Registry) Supports(server string) bool {
	_, ok := r.platforms[strings.ToLower(server)]
	return ok
}

// apiClient is the small REST helper shared by the platform clients.
type apiClient struct {
	name    string
	baseURL string
	header  http.Header
	httpCli *http.Client
}

func newAPIClient(name, baseURL string, timeout time.Duration) *apiClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &apiClient{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		header:  make(http.Header),
		httpCli: &http.Client{Timeout: timeout},
	}
}

// get fetches path (relative to the base URL, or absolute) and returns the body.
func (c *apiClient) get(ctx context.Context, path, accept string) ([]byte, error) {
	target := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		target = c.baseURL + path
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, v := range c.header {
		req.Header[k] = v
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", c.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: not found: %s", c.name, path)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%s: authentication failed (status %d)", c.name, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%s API error (status %d): %s", c.name, resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// escapePath escapes each segment of a slash-separated path.
func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

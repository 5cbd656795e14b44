package git

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/joescharf/prscore/internal/models"
)

// DefaultGitHubURL is the public GitHub REST API.
const DefaultGitHubURL = "https://api.github.com"

const githubPageSize = 100

// GitHubClient reads pull request files through the GitHub REST API.
type GitHubClient struct {
	api *apiClient
}

// NewGitHubClient creates a client. An empty token makes anonymous requests.
func NewGitHubClient(token, baseURL string, timeout time.Duration) *GitHubClient {
	if baseURL == "" {
		baseURL = DefaultGitHubURL
	}
	api := newAPIClient("github", baseURL, timeout)
	api.header.Set("X-GitHub-Api-Version", "2022-11-28")
	if token != "" {
		api.header.Set("Authorization", "Bearer "+token)
	}
	return &GitHubClient{api: api}
}

type githubPull struct {
	Head struct {
		SHA string `json:"sha"`
	} `json:"head"`
}

type githubFile struct {
	Filename string `json:"filename"`
	Status   string `json:"status"`
}

// ChangedFiles returns the head-revision contents of every file the pull
// request touches. Removed files and files that fail to download are skipped.
func (c *GitHubClient) ChangedFiles(ctx context.Context, repo string, number int) ([]models.SourceFile, error) {
	base := "/repos/" + escapePath(repo) + fmt.Sprintf("/pulls/%d", number)

	body, err := c.api.get(ctx, base, "application/vnd.github+json")
	if err != nil {
		return nil, fmt.Errorf("fetching pull request: %w", err)
	}
	var pull githubPull
	if err := json.Unmarshal(body, &pull); err != nil {
		return nil, fmt.Errorf("parsing pull request: %w", err)
	}

	var changed []githubFile
	for page := 1; ; page++ {
		body, err := c.api.get(ctx, fmt.Sprintf("%s/files?per_page=%d&page=%d", base, githubPageSize, page), "application/vnd.github+json")
		if err != nil {
			return nil, fmt.Errorf("listing pull request files: %w", err)
		}
		var batch []githubFile
		if err := json.Unmarshal(body, &batch); err != nil {
			return nil, fmt.Errorf("parsing pull request files: %w", err)
		}
		changed = append(changed, batch...)
		if len(batch) < githubPageSize {
			break
		}
	}

	files := make([]models.SourceFile, 0, len(changed))
	for _, f := range changed {
		if f.Status == "removed" {
			continue
		}
		path := "/repos/" + escapePath(repo) + "/contents/" + escapePath(f.Filename) + "?ref=" + pull.Head.SHA
		content, err := c.api.get(ctx, path, "application/vnd.github.raw")
		if err != nil {
			slog.Warn("skipping file", "server", ServerGitHub, "repo", repo, "path", f.Filename, "error", err)
			continue
		}
		files = append(files, models.SourceFile{Path: f.Filename, Content: string(content)})
	}
	return files, nil
}

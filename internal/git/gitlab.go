package git

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/joescharf/prscore/internal/models"
)

// DefaultGitLabURL is the gitlab.com REST API.
const DefaultGitLabURL = "https://gitlab.com/api/v4"

// GitLabClient reads merge request files through the GitLab REST API.
type GitLabClient struct {
	api *apiClient
}

// NewGitLabClient creates a client authenticating with a private token.
func NewGitLabClient(token, baseURL string, timeout time.Duration) *GitLabClient {
	if baseURL == "" {
		baseURL = DefaultGitLabURL
	}
	api := newAPIClient("gitlab", baseURL, timeout)
	if token != "" {
		api.header.Set("PRIVATE-TOKEN", token)
	}
	return &GitLabClient{api: api}
}

type gitlabChanges struct {
	SHA     string `json:"sha"`
	Changes []struct {
		NewPath     string `json:"new_path"`
		DeletedFile bool   `json:"deleted_file"`
	} `json:"changes"`
}

// ChangedFiles returns the head-revision contents of every file the merge
// request touches. The project is addressed by its URL-encoded full path.
func (c *GitLabClient) ChangedFiles(ctx context.Context, repo string, number int) ([]models.SourceFile, error) {
	project := "/projects/" + url.PathEscape(repo)

	body, err := c.api.get(ctx, fmt.Sprintf("%s/merge_requests/%d/changes", project, number), "application/json")
	if err != nil {
		return nil, fmt.Errorf("fetching merge request changes: %w", err)
	}
	var mr gitlabChanges
	if err := json.Unmarshal(body, &mr); err != nil {
		return nil, fmt.Errorf("parsing merge request changes: %w", err)
	}

	files := make([]models.SourceFile, 0, len(mr.Changes))
	for _, ch := range mr.Changes {
		if ch.DeletedFile {
			continue
		}
		path := project + "/repository/files/" + url.PathEscape(ch.NewPath) + "/raw?ref=" + url.QueryEscape(mr.SHA)
		content, err := c.api.get(ctx, path, "")
		if err != nil {
			slog.Warn("skipping file", "server", ServerGitLab, "repo", repo, "path", ch.NewPath, "error", err)
			continue
		}
		files = append(files, models.SourceFile{Path: ch.NewPath, Content: string(content)})
	}
	return files, nil
}

package git

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/joescharf/prscore/internal/models"
)

// DefaultBitbucketURL is the Bitbucket Cloud REST API.
const DefaultBitbucketURL = "https://api.bitbucket.org/2.0"

// BitbucketClient reads pull request files through the Bitbucket Cloud API.
type BitbucketClient struct {
	api *apiClient
}

// NewBitbucketClient creates a client authenticating with a bearer token.
func NewBitbucketClient(token, baseURL string, timeout time.Duration) *BitbucketClient {
	if baseURL == "" {
		baseURL = DefaultBitbucketURL
	}
	api := newAPIClient("bitbucket", baseURL, timeout)
	if token != "" {
		api.header.Set("Authorization", "Bearer "+token)
	}
	return &BitbucketClient{api: api}
}

type bitbucketPull struct {
	Source struct {
		Commit struct {
			Hash string `json:"hash"`
		} `json:"commit"`
	} `json:"source"`
}

type bitbucketDiffstat struct {
	Values []struct {
		Status string `json:"status"`
		New    *struct {
			Path string `json:"path"`
		} `json:"new"`
	} `json:"values"`
	Next string `json:"next"`
}

// ChangedFiles returns the source-commit contents of every file the pull
// request touches, following diffstat pagination.
func (c *BitbucketClient) ChangedFiles(ctx context.Context, repo string, number int) ([]models.SourceFile, error) {
	base := "/repositories/" + escapePath(repo)

	body, err := c.api.get(ctx, fmt.Sprintf("%s/pullrequests/%d", base, number), "application/json")
	if err != nil {
		return nil, fmt.Errorf("fetching pull request: %w", err)
	}
	var pull bitbucketPull
	if err := json.Unmarshal(body, &pull); err != nil {
		return nil, fmt.Errorf("parsing pull request: %w", err)
	}
	hash := pull.Source.Commit.Hash

	var paths []string
	next := fmt.Sprintf("%s/pullrequests/%d/diffstat", base, number)
	for next != "" {
		body, err := c.api.get(ctx, next, "application/json")
		if err != nil {
			return nil, fmt.Errorf("fetching diffstat: %w", err)
		}
		var page bitbucketDiffstat
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("parsing diffstat: %w", err)
		}
		for _, v := range page.Values {
			if v.Status == "removed" || v.New == nil {
				continue
			}
			paths = append(paths, v.New.Path)
		}
		next = page.Next
	}

	files := make([]models.SourceFile, 0, len(paths))
	for _, p := range paths {
		content, err := c.api.get(ctx, base+"/src/"+hash+"/"+escapePath(p), "")
		if err != nil {
			slog.Warn("skipping file", "server", ServerBitbucket, "repo", repo, "path", p, "error", err)
			continue
		}
		files = append(files, models.SourceFile{Path: p, Content: string(content)})
	}
	return files, nil
}

package git

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ErrInvalidPRURL is returned when a PR/MR URL cannot be decomposed.
var ErrInvalidPRURL = errors.New("invalid PR URL")

// PRRef identifies a pull or merge request.
type PRRef struct {
	Repo   string
	Number int
	Server string
}

type urlPattern struct {
	host   string
	server string
	marker string // path segment that precedes the number
}

var urlPatterns = []urlPattern{
	{host: "github.com", server: ServerGitHub, marker: "pull"},
	{host: "gitlab.com", server: ServerGitLab, marker: "merge_requests"},
	{host: "bitbucket.org", server: ServerBitbucket, marker: "pull-requests"},
}

// ParsePRURL decomposes a GitHub, GitLab or Bitbucket PR/MR URL.
//
// Accepted shapes:
//
//	github.com/<owner>/<repo>/pull/<n>
//	gitlab.com/<owner>/<repo>/merge_requests/<n>  (or /-/merge_requests/<n>)
//	bitbucket.org/<owner>/<repo>/pull-requests/<n>
//
// Trailing segments such as /files are ignored.
func ParsePRURL(raw string) (PRRef, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return PRRef{}, fmt.Errorf("%w: empty URL", ErrInvalidPRURL)
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return PRRef{}, fmt.Errorf("%w: %v", ErrInvalidPRURL, err)
	}
	host := strings.ToLower(u.Hostname())
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")

	for _, p := range urlPatterns {
		if host != p.host && !strings.HasSuffix(host, "."+p.host) {
			continue
		}

		segs := parts
		if p.server == ServerGitLab && len(segs) > 2 && segs[2] == "-" {
			segs = append(segs[:2:2], segs[3:]...)
		}
		if len(segs) < 4 || segs[0] == "" || segs[1] == "" || segs[2] != p.marker {
			return PRRef{}, fmt.Errorf("%w: invalid %s PR URL format", ErrInvalidPRURL, p.server)
		}
		n, err := strconv.Atoi(segs[3])
		if err != nil || n <= 0 {
			return PRRef{}, fmt.Errorf("%w: invalid %s PR number %q", ErrInvalidPRURL, p.server, segs[3])
		}
		return PRRef{Repo: segs[0] + "/" + segs[1], Number: n, Server: p.server}, nil
	}

	return PRRef{}, fmt.Errorf("%w: unsupported git service: %s", ErrInvalidPRURL, host)
}

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joescharf/prscore/internal/models"
	"github.com/joescharf/prscore/internal/score"
)

// Analyzer runs the review pipeline synchronously.
type Analyzer interface {
	Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.Report, error)
}

// Server exposes the review pipeline and scorer as MCP tools.
type Server struct {
	analyzer Analyzer
	scorer   *score.Scorer
	version  string
}

// NewServer creates the MCP server wrapper. A nil scorer uses default weights.
func NewServer(a Analyzer, scorer *score.Scorer, version string) *Server {
	if scorer == nil {
		scorer = score.NewScorer(nil)
	}
	if version == "" {
		version = "dev"
	}
	return &Server{analyzer: a, scorer: scorer, version: version}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("prscore", s.version, server.WithToolCapabilities(true))

	srv.AddTool(s.analyzeTool())
	srv.AddTool(s.scoreTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// ---------------------------------------------------------------------------
// Tool definitions and handlers
// ---------------------------------------------------------------------------

// prscore_analyze
func (s *Server) analyzeTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("prscore_analyze",
		mcp.WithDescription("Analyze a pull or merge request and return the review report: per-file issues and a 0-100 quality score. Identify the PR with pr_url, or with repo, pr_number and server."),
		mcp.WithString("pr_url", mcp.Description("Full PR/MR URL on github.com, gitlab.com or bitbucket.org")),
		mcp.WithString("repo", mcp.Description("Repository as owner/name")),
		mcp.WithNumber("pr_number", mcp.Description("Pull or merge request number")),
		mcp.WithString("server", mcp.Description("github, gitlab or bitbucket (default github)")),
		mcp.WithString("disable", mcp.Description("Comma-separated check categories to skip: style, complexity, security, performance, best_practices, documentation")),
	)
	return tool, s.handleAnalyze
}

func (s *Server) handleAnalyze(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req := models.AnalyzeRequest{
		PRURL:  request.GetString("pr_url", ""),
		Repo:   request.GetString("repo", ""),
		Server: request.GetString("server", ""),
	}
	if n := request.GetInt("pr_number", 0); n != 0 {
		req.PRNumber = &n
	}
	if disabled := request.GetString("disable", ""); disabled != "" {
		req.EnabledChecks = make(map[string]bool)
		for _, key := range strings.Split(disabled, ",") {
			if key = strings.TrimSpace(key); key != "" {
				req.EnabledChecks[key] = false
			}
		}
	}

	report, err := s.analyzer.Analyze(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	data, err := json.Marshal(report)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal report: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// prscore_score
func (s *Server) scoreTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("prscore_score",
		mcp.WithDescription("Compute the weighted quality score for issue counts per category. Returns overall and per-category scores."),
		mcp.WithString("counts", mcp.Required(), mcp.Description(`JSON object of category to issue count, e.g. {"style": 3, "security": 1}`)),
	)
	return tool, s.handleScore
}

func (s *Server) handleScore(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("counts")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var counts map[string]int
	if err := json.Unmarshal([]byte(raw), &counts); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid counts JSON: %v", err)), nil
	}

	tally := models.NewTally()
	for cat, n := range counts {
		if n < 0 {
			return mcp.NewToolResultError(fmt.Sprintf("negative count for %s", cat)), nil
		}
		tally[models.Category(cat)] = n
	}

	data, err := json.Marshal(s.scorer.Score(tally))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal score: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

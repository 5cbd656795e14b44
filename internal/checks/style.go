package checks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/joescharf/prscore/internal/models"
)

// DefaultStyleCommand is the linter invoked when none is configured.
const DefaultStyleCommand = "flake8"

const styleFormat = "--format=%(row)d:%(col)d:%(code)s:%(text)s"

// Style runs an external flake8-compatible linter over each source file.
type Style struct {
	command string
	tempDir string
}

// NewStyle returns a style checker that invokes command, or flake8 when empty.
func NewStyle(command string) *Style {
	if command == "" {
		command = DefaultStyleCommand
	}
	return &Style{command: command}
}

// WithTempDir sets where content is staged for the linter. Empty means the
// system default.
func (s *Style) WithTempDir(dir string) *Style {
	s.tempDir = dir
	return s
}

func (s *Style) Name() string { return NameStyle }

func (s *Style) Check(ctx context.Context, files []models.SourceFile) *models.PerFileIssues {
	return checkEach(ctx, s.Name(), files, s.checkFile)
}

func (s *Style) checkFile(ctx context.Context, f models.SourceFile) []models.Issue {
	tmp, err := writeTemp(s.tempDir, f.Content)
	if err != nil {
		slog.Warn("style check skipped", "file", f.Path, "error", err)
		return nil
	}
	defer removeTemp(tmp)

	out, err := exec.CommandContext(ctx, s.command, styleFormat, tmp).Output()
	if err != nil {
		// flake8 exits non-zero when it reports anything; only a missing
		// or crashed binary is a failure.
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			slog.Warn("style checker unavailable", "command", s.command, "file", f.Path, "error", err)
			return nil
		}
	}

	return parseLinterOutput(f.Path, string(out))
}

// parseLinterOutput converts "row:col:code:text" lines into style issues.
func parseLinterOutput(path, out string) []models.Issue {
	var issues []models.Issue
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ":", 4)
		if len(parts) < 4 {
			slog.Debug("unparseable linter output", "file", path, "line", line)
			continue
		}
		row, err := strconv.Atoi(parts[0])
		if err != nil {
			slog.Debug("unparseable linter output", "file", path, "line", line)
			continue
		}
		issues = append(issues, models.NewIssue(
			models.CategoryStyle,
			fmt.Sprintf("%s: %s", parts[2], strings.TrimSpace(parts[3])),
			row,
		))
	}
	return issues
}

// writeTemp stages content in a .py file so external tools can read it.
func writeTemp(dir, content string) (string, error) {
	f, err := os.CreateTemp(dir, "prscore-*.py")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		removeTemp(f.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		removeTemp(f.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return f.Name(), nil
}

func removeTemp(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to remove temp file", "path", path, "error", err)
	}
}

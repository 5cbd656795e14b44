package checks

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joescharf/prscore/internal/models"
)

// Checker names, used for logging and enablement.
const (
	NameStyle      = "style"
	NameComplexity = "complexity"
	NameUnsafe     = "unsafe"
	NameAI         = "ai"
)

// Checker produces issues for one concern over a set of changed files.
//
// Implementations must register every input path in the result, even files
// they skip, and must never fail: problems are reported as issues or logged.
type Checker interface {
	Name() string
	Check(ctx context.Context, files []models.SourceFile) *models.PerFileIssues
}

// IsSource reports whether path is a Python source file.
func IsSource(path string) bool {
	return strings.HasSuffix(path, ".py")
}

// checkEach registers every file and runs fn on the source files, in input
// order. A panic in fn is logged and yields no issues for that file.
func checkEach(ctx context.Context, name string, files []models.SourceFile, fn func(context.Context, models.SourceFile) []models.Issue) *models.PerFileIssues {
	out := models.NewPerFileIssues()
	for _, f := range files {
		out.Ensure(f.Path)
		if !IsSource(f.Path) {
			continue
		}
		out.Append(f.Path, safeCheck(ctx, name, f, fn)...)
	}
	return out
}

func safeCheck(ctx context.Context, name string, f models.SourceFile, fn func(context.Context, models.SourceFile) []models.Issue) (issues []models.Issue) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("checker panicked", "checker", name, "file", f.Path, "error", fmt.Sprint(r))
			issues = nil
		}
	}()
	return fn(ctx, f)
}

// splitLines splits content into lines. An empty file has one empty line.
func splitLines(content string) []string {
	return strings.Split(content, "\n")
}

// indentOf returns the width of leading whitespace, counting a tab as 8.
func indentOf(line string) int {
	n := 0
	for _, r := range line {
		switch r {
		case ' ':
			n++
		case '\t':
			n += 8 - n%8
		default:
			return n
		}
	}
	return n
}

func isBlankOrComment(line string) bool {
	t := strings.TrimSpace(line)
	return t == "" || strings.HasPrefix(t, "#")
}

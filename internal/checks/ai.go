package checks

import (
	"context"
	"log/slog"
	"strings"

	"github.com/joescharf/prscore/internal/models"
)

// DefaultChunkSize is the character budget for one LLM request.
const DefaultChunkSize = 1000

// Suggester returns improvement suggestions for a piece of code.
type Suggester interface {
	Suggest(ctx context.Context, path, code string) ([]string, error)
}

// Chunk is a run of whole lines cut from a file.
type Chunk struct {
	Text      string
	StartLine int // 1-based line of the first line in the file
	LineCount int
}

// SplitChunks cuts content into chunks of at most maxChars characters
// (counting one newline per line), breaking only between lines. A single
// line longer than the budget becomes its own chunk.
func SplitChunks(content string, maxChars int) []Chunk {
	if maxChars <= 0 {
		maxChars = DefaultChunkSize
	}
	lines := splitLines(content)
	if len(content) <= maxChars {
		return []Chunk{{Text: content, StartLine: 1, LineCount: len(lines)}}
	}

	var (
		chunks  []Chunk
		current []string
		size    int
		start   = 1
	)
	flush := func() {
		chunks = append(chunks, Chunk{
			Text:      strings.Join(current, "\n"),
			StartLine: start,
			LineCount: len(current),
		})
		start += len(current)
		current = nil
		size = 0
	}

	for _, line := range lines {
		lineSize := len(line) + 1
		if size+lineSize > maxChars && len(current) > 0 {
			flush()
		}
		current = append(current, line)
		size += lineSize
	}
	if len(current) > 0 {
		flush()
	}
	return chunks
}

// SuggestionLine maps the i-th suggestion for a chunk to a file line. The
// mapping spreads suggestions over the chunk's lines in order; it does not
// locate the code a suggestion talks about.
func SuggestionLine(c Chunk, i, fileLines int) int {
	offset := i
	if offset > c.LineCount-1 {
		offset = c.LineCount - 1
	}
	if offset < 0 {
		offset = 0
	}
	line := c.StartLine + offset
	if line > fileLines {
		line = fileLines
	}
	if line < 1 {
		line = 1
	}
	return line
}

// AI asks an LLM for suggestions on each source file. Without a suggester it
// reports nothing.
type AI struct {
	suggester Suggester
	chunkSize int
}

// NewAI returns an AI suggestion checker. s may be nil to disable it.
func NewAI(s Suggester, chunkSize int) *AI {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &AI{suggester: s, chunkSize: chunkSize}
}

// Enabled reports whether a suggester is configured.
func (a *AI) Enabled() bool {
	return a.suggester != nil
}

func (a *AI) Name() string { return NameAI }

func (a *AI) Check(ctx context.Context, files []models.SourceFile) *models.PerFileIssues {
	if !a.Enabled() {
		out := models.NewPerFileIssues()
		for _, f := range files {
			out.Ensure(f.Path)
		}
		return out
	}
	return checkEach(ctx, a.Name(), files, a.checkFile)
}

func (a *AI) checkFile(ctx context.Context, f models.SourceFile) []models.Issue {
	fileLines := len(splitLines(f.Content))
	var issues []models.Issue
	for _, chunk := range SplitChunks(f.Content, a.chunkSize) {
		if strings.TrimSpace(chunk.Text) == "" {
			continue
		}
		suggestions, err := a.suggester.Suggest(ctx, f.Path, chunk.Text)
		if err != nil {
			slog.Warn("AI suggestions failed", "file", f.Path, "start_line", chunk.StartLine, "error", err)
			continue
		}
		for i, s := range suggestions {
			issues = append(issues, models.NewIssue(models.CategoryAISuggestion, s, SuggestionLine(chunk, i, fileLines)))
		}
	}
	return issues
}

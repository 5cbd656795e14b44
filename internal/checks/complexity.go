package checks

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/joescharf/prscore/internal/models"
)

// Rank grades cyclomatic complexity from A (simple) to F (unmaintainable).
type Rank string

const (
	RankA Rank = "A"
	RankB Rank = "B"
	RankC Rank = "C"
	RankD Rank = "D"
	RankE Rank = "E"
	RankF Rank = "F"
)

// DefaultComplexityThreshold is the lowest rank reported.
const DefaultComplexityThreshold = RankC

var rankOrder = map[Rank]int{RankA: 1, RankB: 2, RankC: 3, RankD: 4, RankE: 5, RankF: 6}

// RankFor maps a complexity value to its rank.
func RankFor(complexity int) Rank {
	switch {
	case complexity <= 5:
		return RankA
	case complexity <= 10:
		return RankB
	case complexity <= 20:
		return RankC
	case complexity <= 30:
		return RankD
	case complexity <= 40:
		return RankE
	default:
		return RankF
	}
}

// ParseRank returns the rank named by s, or false if s is not A-F.
func ParseRank(s string) (Rank, bool) {
	r := Rank(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := rankOrder[r]
	return r, ok
}

var (
	defPattern    = regexp.MustCompile(`^\s*(?:async\s+)?def\s+([A-Za-z_]\w*)\s*\(`)
	branchPattern = regexp.MustCompile(`\b(?:if|elif|for|while|except|with|and|or|assert)\b`)
)

// Complexity estimates per-function cyclomatic complexity and reports
// functions at or above the threshold rank.
type Complexity struct {
	threshold Rank
}

// NewComplexity returns a complexity checker. An unknown threshold falls back
// to the default.
func NewComplexity(threshold Rank) *Complexity {
	if _, ok := rankOrder[threshold]; !ok {
		threshold = DefaultComplexityThreshold
	}
	return &Complexity{threshold: threshold}
}

func (c *Complexity) Name() string { return NameComplexity }

func (c *Complexity) Check(ctx context.Context, files []models.SourceFile) *models.PerFileIssues {
	return checkEach(ctx, c.Name(), files, c.checkFile)
}

func (c *Complexity) checkFile(_ context.Context, f models.SourceFile) []models.Issue {
	code, serr := scanSource(f.Content)
	if serr != nil {
		slog.Debug("complexity check skipped", "file", f.Path, "error", serr)
		return nil
	}

	var issues []models.Issue
	for _, fn := range functionComplexities(splitLines(code)) {
		rank := RankFor(fn.complexity)
		if rankOrder[rank] >= rankOrder[c.threshold] {
			issues = append(issues, models.NewIssue(
				models.CategoryComplexity,
				fmt.Sprintf("Function %s has complexity %d (rank %s)", fn.name, fn.complexity, rank),
				fn.line,
			))
		}
	}
	return issues
}

type functionInfo struct {
	name       string
	line       int
	complexity int
}

// functionComplexities returns one entry per def in code-only lines, in
// source order. A function's body is every line after its signature indented
// deeper than the def; nested functions count toward their parent as well as
// themselves.
func functionComplexities(lines []string) []functionInfo {
	var out []functionInfo
	for i, line := range lines {
		m := defPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		indent := indentOf(line)
		complexity := 1
		for j := signatureEnd(lines, i) + 1; j < len(lines); j++ {
			body := lines[j]
			if isBlankOrComment(body) {
				continue
			}
			if indentOf(body) <= indent {
				break
			}
			complexity += len(branchPattern.FindAllString(body, -1))
		}
		out = append(out, functionInfo{name: m[1], line: i + 1, complexity: complexity})
	}
	return out
}

// signatureEnd returns the index of the line closing the parameter list that
// opens on lines[start]. Strings are already blanked, so brackets balance.
func signatureEnd(lines []string, start int) int {
	depth := 0
	for j := start; j < len(lines); j++ {
		for k := 0; k < len(lines[j]); k++ {
			switch lines[j][k] {
			case '(', '[', '{':
				depth++
			case ')', ']', '}':
				depth--
			}
		}
		if depth <= 0 {
			return j
		}
	}
	return start
}

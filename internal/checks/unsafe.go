package checks

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/joescharf/prscore/internal/models"
)

type unsafeCall struct {
	pattern *regexp.Regexp
	message string
}

func callPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\s*\(`)
}

// count returns how many times line calls the function directly. Attribute
// access such as obj.eval( is not a match.
func (c unsafeCall) count(line string) int {
	n := 0
	for _, loc := range c.pattern.FindAllStringIndex(line, -1) {
		if loc[0] > 0 && line[loc[0]-1] == '.' {
			continue
		}
		n++
	}
	return n
}

// unsafeCalls lists risky callables in reporting order.
var unsafeCalls = []unsafeCall{
	{callPattern("eval"), "Use of eval() is potentially dangerous"},
	{callPattern("exec"), "Use of exec() is potentially dangerous"},
	{callPattern("__import__"), "Dynamic imports can be risky"},
	{callPattern("pickle.loads"), "Unpickling data from untrusted sources is unsafe"},
	{callPattern("marshal.loads"), "Loading marshal data can be unsafe"},
	{callPattern("subprocess.call"), "Check for command injection in subprocess calls"},
	{callPattern("os.system"), "Check for command injection in os.system calls"},
	{callPattern("os.popen"), "Check for command injection in os.popen calls"},
}

type credentialPattern struct {
	pattern *regexp.Regexp
	message string
}

var credentialPatterns = []credentialPattern{
	{regexp.MustCompile(`(?i)password\s*=\s*["']\w+["']`), "Hardcoded password"},
	{regexp.MustCompile(`(?i)api_key\s*=\s*["']\w+["']`), "Hardcoded API key"},
	{regexp.MustCompile(`(?i)secret\s*=\s*["']\w+["']`), "Hardcoded secret"},
	{regexp.MustCompile(`(?i)token\s*=\s*["']\w+["']`), "Hardcoded token"},
}

var (
	importPattern     = regexp.MustCompile(`^\s*import\s+(.+)$`)
	fromImportPattern = regexp.MustCompile(`^\s*from\s+([\w.]+)\s+import\s+(.+)$`)
	identPattern      = regexp.MustCompile(`[A-Za-z_]\w*`)
)

// Unsafe flags risky calls, unused imports and hardcoded credentials. Its
// findings carry the generic bug category.
type Unsafe struct{}

// NewUnsafe returns an unsafe-pattern checker.
func NewUnsafe() *Unsafe {
	return &Unsafe{}
}

func (u *Unsafe) Name() string { return NameUnsafe }

func (u *Unsafe) Check(ctx context.Context, files []models.SourceFile) *models.PerFileIssues {
	return checkEach(ctx, u.Name(), files, u.checkFile)
}

func (u *Unsafe) checkFile(_ context.Context, f models.SourceFile) []models.Issue {
	code, serr := scanSource(f.Content)
	if serr != nil {
		return []models.Issue{models.NewIssue(models.CategoryBug, "Syntax error: "+serr.Error(), serr.line)}
	}

	lines := splitLines(code)
	var issues []models.Issue
	issues = append(issues, unsafeCallIssues(lines)...)
	issues = append(issues, unusedImportIssues(lines)...)
	issues = append(issues, credentialIssues(f.Content)...)
	return issues
}

func unsafeCallIssues(lines []string) []models.Issue {
	var issues []models.Issue
	for i, line := range lines {
		for _, call := range unsafeCalls {
			for range call.count(line) {
				issues = append(issues, models.NewIssue(models.CategoryBug, call.message, i+1))
			}
		}
	}
	return issues
}

type importedName struct {
	name string
	line int
}

// unusedImportIssues reports names bound by import statements that are never
// referenced on any other line.
func unusedImportIssues(lines []string) []models.Issue {
	var imported []importedName
	importLines := make(map[int]bool)

	for i, line := range lines {
		names := importedNames(line)
		if names == nil {
			continue
		}
		importLines[i] = true
		for _, n := range names {
			imported = append(imported, importedName{name: n, line: i + 1})
		}
	}
	if len(imported) == 0 {
		return nil
	}

	used := make(map[string]bool)
	for i, line := range lines {
		if importLines[i] {
			continue
		}
		for _, id := range identPattern.FindAllString(line, -1) {
			used[id] = true
		}
	}

	var issues []models.Issue
	for _, imp := range imported {
		if !used[imp.name] {
			issues = append(issues, models.NewIssue(models.CategoryBug, fmt.Sprintf("Unused import: %s", imp.name), imp.line))
		}
	}
	return issues
}

// importedNames returns the names an import line binds, or nil if the line
// is not an import. "import a.b" binds a; "as" aliases bind the alias.
func importedNames(line string) []string {
	if m := fromImportPattern.FindStringSubmatch(line); m != nil {
		// Relative imports such as "from . import x" are not tracked.
		if m[1] == "__future__" || strings.Trim(m[1], ".") == "" {
			return []string{}
		}
		return splitImportList(m[2], false)
	}
	if m := importPattern.FindStringSubmatch(line); m != nil {
		return splitImportList(m[1], true)
	}
	return nil
}

func splitImportList(list string, dotted bool) []string {
	list = strings.Trim(strings.TrimSpace(list), "()")
	names := []string{}
	for _, part := range strings.Split(list, ",") {
		fields := strings.Fields(part)
		switch {
		case len(fields) == 0:
			continue
		case len(fields) == 3 && fields[1] == "as":
			names = append(names, fields[2])
		case fields[0] == "*":
			continue
		case dotted:
			names = append(names, strings.SplitN(fields[0], ".", 2)[0])
		default:
			names = append(names, fields[0])
		}
	}
	return names
}

func credentialIssues(content string) []models.Issue {
	var issues []models.Issue
	for _, cp := range credentialPatterns {
		for _, loc := range cp.pattern.FindAllStringIndex(content, -1) {
			line := strings.Count(content[:loc[0]], "\n") + 1
			issues = append(issues, models.NewIssue(models.CategoryBug, cp.message, line))
		}
	}
	return issues
}

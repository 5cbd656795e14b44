package models

// Category is the kind of finding an issue reports.
type Category string

const (
	CategoryStyle         Category = "style"
	CategoryComplexity    Category = "complexity"
	CategorySecurity      Category = "security"
	CategoryPerformance   Category = "performance"
	CategoryBestPractices Category = "best_practices"
	CategoryDocumentation Category = "documentation"
	CategoryBug           Category = "bug"
	CategoryAISuggestion  Category = "ai-suggestion"
)

// BudgetCategories are the six categories every tally and score carries, in
// the order they are reported and summed.
var BudgetCategories = []Category{
	CategoryStyle,
	CategoryPerformance,
	CategorySecurity,
	CategoryComplexity,
	CategoryBestPractices,
	CategoryDocumentation,
}

// IsBudget reports whether c is one of the six scored categories.
func (c Category) IsBudget() bool {
	for _, b := range BudgetCategories {
		if b == c {
			return true
		}
	}
	return false
}

// Issue is a single finding produced by a checker. Line is 1-based and refers
// to the whole, unmodified file.
type Issue struct {
	Type    Category `json:"type"`
	Message string   `json:"message"`
	Line    int      `json:"line_number"`
}

// NewIssue builds an issue, clamping line numbers below 1 to the first line.
func NewIssue(category Category, message string, line int) Issue {
	if line < 1 {
		line = 1
	}
	return Issue{Type: category, Message: message, Line: line}
}

// SourceFile is one changed file fetched from a git platform.
type SourceFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

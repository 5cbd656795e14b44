package models

// Report is the terminal artifact of one analysis.
type Report struct {
	Repo     string       `json:"repo"`
	PRNumber int          `json:"pr_number"`
	Server   string       `json:"server"`
	Feedback []FileIssues `json:"feedback"`
	Score    Score        `json:"score"`
}

// IssueCount returns the number of issues across all feedback entries.
func (r *Report) IssueCount() int {
	n := 0
	for _, f := range r.Feedback {
		n += len(f.Issues)
	}
	return n
}

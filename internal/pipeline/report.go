package pipeline

import "github.com/joescharf/prscore/internal/models"

// BuildReport assembles the final report. Feedback lists only files with at
// least one issue, in discovery order.
func BuildReport(repo string, prNumber int, server string, issues *models.PerFileIssues, score models.Score) *models.Report {
	feedback := make([]models.FileIssues, 0)
	for _, path := range issues.Paths() {
		if found := issues.Get(path); len(found) > 0 {
			feedback = append(feedback, models.FileIssues{Path: path, Issues: found})
		}
	}
	return &models.Report{
		Repo:     repo,
		PRNumber: prNumber,
		Server:   server,
		Feedback: feedback,
		Score:    score,
	}
}

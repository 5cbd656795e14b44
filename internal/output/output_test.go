package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/prscore/internal/models"
)

func newTestUI() (*UI, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &UI{Out: out, ErrOut: errOut}, out, errOut
}

func TestInfo(t *testing.T) {
	u, out, _ := newTestUI()
	u.Info("hello %s", "world")
	assert.Contains(t, out.String(), "hello world")
}

func TestSuccess(t *testing.T) {
	u, out, _ := newTestUI()
	u.Success("done %d", 42)
	assert.Contains(t, out.String(), "done 42")
}

func TestWarning(t *testing.T) {
	u, _, errOut := newTestUI()
	u.Warning("careful %s", "now")
	assert.Contains(t, errOut.String(), "careful now")
}

func TestError(t *testing.T) {
	u, _, errOut := newTestUI()
	u.Error("failed %s", "badly")
	assert.Contains(t, errOut.String(), "failed badly")
}

func TestVerboseLog_Enabled(t *testing.T) {
	u, out, _ := newTestUI()
	u.Verbose = true
	u.VerboseLog("detail %d", 1)
	assert.Contains(t, out.String(), "detail 1")
}

func TestVerboseLog_Disabled(t *testing.T) {
	u, out, _ := newTestUI()
	u.Verbose = false
	u.VerboseLog("detail %d", 1)
	assert.Empty(t, out.String())
}

func TestDryRunMsg(t *testing.T) {
	u, _, errOut := newTestUI()
	u.DryRunMsg("would write %s", "config")
	assert.Empty(t, errOut.String())

	u.DryRun = true
	u.DryRunMsg("would write %s", "config")
	assert.Contains(t, errOut.String(), "[DRY-RUN] would write config")
}

func TestColorHelpers(t *testing.T) {
	// Color helpers should return non-empty strings
	assert.NotEmpty(t, Cyan("test"))
	assert.NotEmpty(t, Green("test"))
	assert.NotEmpty(t, Yellow("test"))
	assert.NotEmpty(t, Red("test"))
}

func TestStatusColor(t *testing.T) {
	assert.Contains(t, StatusColor(models.JobStatusPending), "pending")
	assert.Contains(t, StatusColor(models.JobStatusCompleted), "completed")
	assert.Contains(t, StatusColor(models.JobStatusFailed), "failed")
	assert.Equal(t, "unknown", StatusColor(models.JobStatus("unknown")))
}

func TestScoreColor(t *testing.T) {
	assert.Contains(t, ScoreColor(90), "90")
	assert.Contains(t, ScoreColor(60), "60")
	assert.Contains(t, ScoreColor(30), "30")
}

func TestCategoryColor(t *testing.T) {
	assert.Contains(t, CategoryColor(models.CategorySecurity), "security")
	assert.Contains(t, CategoryColor(models.CategoryStyle), "style")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcd…", Truncate("abcdefgh", 5))
}

func TestTable(t *testing.T) {
	u, out, _ := newTestUI()
	table := u.Table([]string{"Name", "Status"})
	require.NotNil(t, table)

	table.Append([]string{"job-a", "completed"})
	table.Append([]string{"job-b", "pending"})
	err := table.Render()
	require.NoError(t, err)

	result := out.String()
	assert.True(t, strings.Contains(result, "job-a"), "table output should contain job IDs")
	assert.True(t, strings.Contains(result, "job-b"), "table output should contain job IDs")
}

func TestReport(t *testing.T) {
	u, out, _ := newTestUI()
	r := &models.Report{
		Repo:     "acme/widgets",
		PRNumber: 42,
		Server:   "github",
		Feedback: []models.FileIssues{{
			Path:   "src/app.py",
			Issues: []models.Issue{models.NewIssue(models.CategoryStyle, "E501: line too long", 12)},
		}},
		Score: models.Score{Overall: 99, Categories: models.CategoryScores{
			models.CategoryStyle:    98,
			models.CategorySecurity: 100,
		}},
	}

	require.NoError(t, u.Report(r))
	result := out.String()
	assert.Contains(t, result, "acme/widgets#42")
	assert.Contains(t, result, "src/app.py")
	assert.Contains(t, result, "E501: line too long")
	assert.Contains(t, result, "1 issue(s) in 1 file(s)")
	assert.Less(t, strings.Index(result, "style"), strings.Index(result, "security"))
}

func TestReport_NoIssues(t *testing.T) {
	u, out, _ := newTestUI()
	r := &models.Report{Repo: "acme/widgets", PRNumber: 1, Server: "github", Feedback: []models.FileIssues{},
		Score: models.Score{Overall: 100, Categories: models.CategoryScores{models.CategoryStyle: 100}}}

	require.NoError(t, u.Report(r))
	assert.Contains(t, out.String(), "No issues found")
}

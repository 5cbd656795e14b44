package pipeline

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/prscore/internal/models"
)

func TestBuildReport_OmitsCleanFiles(t *testing.T) {
	perFile := models.NewPerFileIssues()
	perFile.Ensure("clean.py")
	perFile.Append("dirty.py", models.NewIssue(models.CategoryStyle, "E501: line too long", 10))

	r := BuildReport("acme/widgets", 42, "github", perFile, models.Score{Overall: 99})

	require.Len(t, r.Feedback, 1)
	assert.Equal(t, "dirty.py", r.Feedback[0].Path)
	assert.Equal(t, "acme/widgets", r.Repo)
	assert.Equal(t, 42, r.PRNumber)
	assert.Equal(t, "github", r.Server)
	assert.Equal(t, 99, r.Score.Overall)
}

func TestBuildReport_EmptyFeedbackIsArray(t *testing.T) {
	perFile := models.NewPerFileIssues()
	perFile.Ensure("clean.py")

	r := BuildReport("acme/widgets", 1, "github", perFile, models.Score{Overall: 100})

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"feedback":[]`)
}

func TestBuildReport_WireKeys(t *testing.T) {
	perFile := models.NewPerFileIssues()
	perFile.Append("a.py", models.NewIssue(models.CategoryComplexity, "Function f has complexity 11 (rank C)", 3))

	b, err := json.Marshal(BuildReport("o/r", 2, "gitlab", perFile, models.Score{}))
	require.NoError(t, err)
	s := string(b)
	for _, key := range []string{`"repo"`, `"pr_number"`, `"server"`, `"file_path"`, `"issues"`, `"type"`, `"message"`, `"line_number"`, `"overall"`} {
		assert.Contains(t, s, key)
	}
}

package git

import (
	"context"
	"testing"

	"github.com/joescharf/prscore/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPlatform struct{}

func (stubPlatform) ChangedFiles(context.Context, string, int) ([]models.SourceFile, error) {
	return nil, nil
}

func TestRegistry_DefaultPlatforms(t *testing.T) {
	r := NewRegistry(Config{})
	for _, s := range []string{"github", "GitLab", "BITBUCKET"} {
		p, err := r.Platform(s)
		require.NoError(t, err, s)
		assert.NotNil(t, p)
		assert.True(t, r.Supports(s))
	}
}

func TestRegistry_Unsupported(t *testing.T) {
	r := NewRegistry(Config{})
	_, err := r.Platform("gitea")
	assert.ErrorIs(t, err, ErrUnsupportedServer)
	assert.False(t, r.Supports("gitea"))
}

func TestRegistry_Register(t *testing.T) {
	r := NewEmptyRegistry()
	r.Register("GitHub", stubPlatform{})
	p, err := r.Platform("github")
	require.NoError(t, err)
	assert.Equal(t, stubPlatform{}, p)
}

func TestEscapePath(t *testing.T) {
	assert.Equal(t, "src/my%20file.py", escapePath("src/my file.py"))
}

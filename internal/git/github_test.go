package git

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitHubChangedFiles(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/widgets/pulls/42", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Write([]byte(`{"head":{"sha":"abc123"}}`))
	})
	mux.HandleFunc("GET /repos/acme/widgets/pulls/42/files", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		w.Write([]byte(`[
			{"filename":"src/app.py","status":"modified"},
			{"filename":"old.py","status":"removed"},
			{"filename":"gone.py","status":"added"}
		]`))
	})
	mux.HandleFunc("GET /repos/acme/widgets/contents/src/app.py", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "abc123", r.URL.Query().Get("ref"))
		assert.Equal(t, "application/vnd.github.raw", r.Header.Get("Accept"))
		w.Write([]byte("print('hi')\n"))
	})
	mux.HandleFunc("GET /repos/acme/widgets/contents/gone.py", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewGitHubClient("test-token", srv.URL, 0)
	files, err := c.ChangedFiles(context.Background(), "acme/widgets", 42)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "src/app.py", files[0].Path)
	assert.Equal(t, "print('hi')\n", files[0].Content)
}

func TestGitHubChangedFiles_PRNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Not Found"}`))
	}))
	defer srv.Close()

	c := NewGitHubClient("", srv.URL, 0)
	_, err := c.ChangedFiles(context.Background(), "acme/widgets", 99)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestGitHubChangedFiles_AuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewGitHubClient("bad-token", srv.URL, 0)
	_, err := c.ChangedFiles(context.Background(), "acme/widgets", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authentication failed")
}

func TestGitHubClient_NoTokenSendsNoAuthorization(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		if r.URL.Path == "/repos/acme/widgets/pulls/1" {
			w.Write([]byte(`{"head":{"sha":"s"}}`))
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	files, err := NewGitHubClient("", srv.URL, 0).ChangedFiles(context.Background(), "acme/widgets", 1)
	require.NoError(t, err)
	assert.Empty(t, files)
}

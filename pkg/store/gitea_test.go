package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"code.gitea.io/sdk/gitea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGiteaError_StatusMapping(t *testing.T) {
	hostErr := errors.New("host said no")

	tests := []struct {
		name   string
		status int
		want   error
	}{
		{name: "NotFound", status: http.StatusNotFound, want: ErrNotFound},
		{name: "Conflict", status: http.StatusConflict, want: ErrConflict},
		{name: "UnprocessableIsConflict", status: http.StatusUnprocessableEntity, want: ErrConflict},
		{name: "BadRequest", status: http.StatusBadRequest, want: ErrInvalidArgument},
		{name: "ServerError", status: http.StatusInternalServerError, want: ErrRemoteUnavailable},
		{name: "BadGateway", status: http.StatusBadGateway, want: ErrRemoteUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &gitea.Response{Response: &http.Response{StatusCode: tt.status}}

			err := giteaError("failed op", resp, hostErr)
			assert.ErrorIs(t, err, tt.want)
			// The host error stays wrapped underneath for logging.
			assert.ErrorIs(t, err, hostErr)
		})
	}
}

func TestGiteaError_NilResponseIsRemoteUnavailable(t *testing.T) {
	hostErr := errors.New("connection refused")

	err := giteaError("failed op", nil, hostErr)
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
	assert.ErrorIs(t, err, hostErr)
}

// newGiteaTestServer serves the version endpoint the SDK queries at client
// construction, and delegates everything else.
func newGiteaTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"version":"1.24.0"}`)
	})
	mux.HandleFunc("/", handler)

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	return ts
}

func TestGitea_ReadFile(t *testing.T) {
	ts := newGiteaTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/repos/org/repo/contents/apps/app1/values-dev-us.yaml", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"name":"values-dev-us.yaml","path":"apps/app1/values-dev-us.yaml","sha":"abc123","type":"file","size":6,"encoding":"base64","content":"aGVsbG8K"}`)
	})

	g, err := NewGitea(GiteaOptions{BaseURL: ts.URL, Token: "token", Owner: "org", Repo: "repo"})
	require.NoError(t, err)

	file, err := g.ReadFile(context.Background(), "apps/app1/values-dev-us.yaml", "main")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(file.Data))
	assert.Equal(t, "abc123", file.Revision)
}

func TestGitea_ReadFileHonoursCancelledContext(t *testing.T) {
	ts := newGiteaTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request: %s", r.URL.Path)
	})

	g, err := NewGitea(GiteaOptions{BaseURL: ts.URL, Token: "token", Owner: "org", Repo: "repo"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = g.ReadFile(ctx, "apps/app1/values-dev-us.yaml", "main")
	require.ErrorIs(t, err, context.Canceled)
}

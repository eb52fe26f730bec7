package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gitlab "gitlab.com/gitlab-org/api/client-go"
)

func TestGitlabError_StatusMapping(t *testing.T) {
	hostErr := errors.New("host said no")

	tests := []struct {
		name   string
		status int
		want   error
	}{
		{name: "NotFound", status: http.StatusNotFound, want: ErrNotFound},
		{name: "Conflict", status: http.StatusConflict, want: ErrConflict},
		{name: "BadRequest", status: http.StatusBadRequest, want: ErrInvalidArgument},
		{name: "ServerError", status: http.StatusInternalServerError, want: ErrRemoteUnavailable},
		{name: "ServiceUnavailable", status: http.StatusServiceUnavailable, want: ErrRemoteUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &gitlab.Response{Response: &http.Response{StatusCode: tt.status}}

			err := gitlabError("failed op", resp, hostErr)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, hostErr)
		})
	}
}

func TestGitlabError_NilResponseIsRemoteUnavailable(t *testing.T) {
	hostErr := errors.New("connection refused")

	err := gitlabError("failed op", nil, hostErr)
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
	assert.ErrorIs(t, err, hostErr)
}

func newGitlabTestClient(t *testing.T, handler http.HandlerFunc) *Gitlab {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	g, err := NewGitlab(GitlabOptions{BaseURL: ts.URL, Token: "token", Project: "group/repo"})
	require.NoError(t, err)

	return g
}

func TestGitlab_CreateBranch_ExistingBranchIsConflict(t *testing.T) {
	// GitLab reports an existing branch as 400, not 409.
	g := newGitlabTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"message":"Branch already exists"}`)
	})

	err := g.CreateBranch(context.Background(), "feat/app1-dev-us-auto-flip-20260831-123045", "main")
	require.ErrorIs(t, err, ErrConflict)
}

func TestGitlab_WriteFile_StaleRevisionIsConflict(t *testing.T) {
	// A stale LastCommitID also comes back as 400.
	g := newGitlabTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"message":"You are attempting to update a file that has changed since you started editing it."}`)
	})

	_, err := g.WriteFile(context.Background(), "apps/app1/values-dev-us.yaml", "bump", []byte("data"), "feat/x", "stale-sha")
	require.ErrorIs(t, err, ErrConflict)
}

package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsconsole/bluegreen-manager/pkg/store"
)

// fakeRunner serves a scripted sequence of run listings.
type fakeRunner struct {
	listings [][]store.RunSummary
	next     int
	log      string
}

func (f *fakeRunner) Dispatch(ctx context.Context, workflowID, ref string, inputs map[string]string) error {
	return nil
}

func (f *fakeRunner) ListRuns(ctx context.Context, workflowID, ref string, pageSize int) ([]store.RunSummary, error) {
	if f.next >= len(f.listings) {
		return f.listings[len(f.listings)-1], nil
	}
	runs := f.listings[f.next]
	f.next++
	return runs, nil
}

func (f *fakeRunner) RunLog(ctx context.Context, runID int64) (string, error) {
	return f.log, nil
}

func fastWatcher(runner store.WorkflowRunner) *Watcher {
	return &Watcher{
		runner:      runner,
		interval:    time.Millisecond,
		maxInterval: 5 * time.Millisecond,
	}
}

func TestWaitForCompletion_ObservesTerminalRun(t *testing.T) {
	runner := &fakeRunner{
		listings: [][]store.RunSummary{
			nil,
			{{ID: 7, Status: "running"}},
			{{ID: 7, Status: "success", Conclusion: "success", URL: "https://ci.example.com/runs/7"}},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	result, err := fastWatcher(runner).WaitForCompletion(ctx, "bluegreen.yaml", "main")
	require.NoError(t, err)
	require.True(t, result.Completed)
	assert.Equal(t, int64(7), result.Run.ID)
	assert.Equal(t, "success", result.Run.Conclusion)
}

func TestWaitForCompletion_DeadlineIsNotAnError(t *testing.T) {
	runner := &fakeRunner{
		listings: [][]store.RunSummary{
			{{ID: 7, Status: "running"}},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	result, err := fastWatcher(runner).WaitForCompletion(ctx, "bluegreen.yaml", "main")
	require.NoError(t, err)
	assert.False(t, result.Completed)
	// The last observed run is still reported.
	require.NotNil(t, result.Run)
	assert.Equal(t, "running", result.Run.Status)
}

func TestWaitForCompletion_CancellationIsAnError(t *testing.T) {
	runner := &fakeRunner{
		listings: [][]store.RunSummary{
			{{ID: 7, Status: "running"}},
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fastWatcher(runner).WaitForCompletion(ctx, "bluegreen.yaml", "main")
	require.ErrorIs(t, err, context.Canceled)
}

func TestLatestRun_NoRuns(t *testing.T) {
	runner := &fakeRunner{listings: [][]store.RunSummary{nil}}

	_, err := fastWatcher(runner).LatestRun(context.Background(), "bluegreen.yaml", "main")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestExtractPullRequestURL(t *testing.T) {
	tests := []struct {
		name  string
		log   string
		want  string
		found bool
	}{
		{
			name:  "GithubStyle",
			log:   "create pr...\ndone: https://github.com/org/repo/pull/123\nnext step",
			want:  "https://github.com/org/repo/pull/123",
			found: true,
		},
		{
			name:  "GiteaStyle",
			log:   "PR at https://gitea.example.com/org/repo/pulls/9",
			want:  "https://gitea.example.com/org/repo/pulls/9",
			found: true,
		},
		{
			name:  "GitlabStyle",
			log:   "opened https://gitlab.example.com/group/repo/-/merge_requests/42 for review",
			want:  "https://gitlab.example.com/group/repo/-/merge_requests/42",
			found: true,
		},
		{
			name:  "TrailingPunctuation",
			log:   "done: https://github.com/org/repo/pull/123.",
			want:  "https://github.com/org/repo/pull/123",
			found: true,
		},
		{
			name:  "NoLink",
			log:   "tests passed, nothing opened",
			found: false,
		},
		{
			name:  "IgnoresNonNumericPullSegment",
			log:   "cloned https://github.com/org/repo/pull/12abc/workdir",
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := ExtractPullRequestURL(tt.log)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, got)
		})
	}
}

package workflow

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"time"

	"github.com/opsconsole/bluegreen-manager/pkg/store"
)

// Watcher polls a WorkflowRunner until the latest run on a ref reaches a
// terminal state. Polling is bounded by the caller's context deadline and
// terminates with a "not yet observed" result rather than a failure: the
// operation that triggered the run has already succeeded by the time anyone
// watches it.
type Watcher struct {
	runner      store.WorkflowRunner
	interval    time.Duration
	maxInterval time.Duration
}

type WaitResult struct {
	// Run is the latest observed run, nil when none was seen at all.
	Run *store.RunSummary
	// Completed reports whether the run reached a terminal state before the
	// deadline.
	Completed bool
}

func NewWatcher(runner store.WorkflowRunner) *Watcher {
	return &Watcher{
		runner:      runner,
		interval:    2 * time.Second,
		maxInterval: 15 * time.Second,
	}
}

// LatestRun returns the newest run of a workflow on a ref, or ErrNotFound
// when there are none.
func (w *Watcher) LatestRun(ctx context.Context, workflowID, ref string) (*store.RunSummary, error) {
	runs, err := w.runner.ListRuns(ctx, workflowID, ref, 5)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, store.ErrNotFound
	}

	return &runs[0], nil
}

// WaitForCompletion polls with a capped-exponential interval until the latest
// run completes or the context deadline passes. Caller-initiated cancellation
// aborts with the context error; hitting the deadline is a WaitResult with
// Completed false.
func (w *Watcher) WaitForCompletion(ctx context.Context, workflowID, ref string) (WaitResult, error) {
	interval := w.interval
	var lastSeen *store.RunSummary

	for {
		run, err := w.LatestRun(ctx, workflowID, ref)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return WaitResult{Run: lastSeen}, err
		}
		if run != nil {
			lastSeen = run
			if run.Conclusion != "" {
				return WaitResult{Run: run, Completed: true}, nil
			}
			slog.Debug("run still in progress", "id", run.ID, "status", run.Status)
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return WaitResult{Run: lastSeen}, nil
			}

			return WaitResult{Run: lastSeen}, ctx.Err()
		case <-time.After(interval):
		}

		interval *= 2
		if interval > w.maxInterval {
			interval = w.maxInterval
		}
	}
}

var pullRequestURLPattern = regexp.MustCompile(`https?://\S+/(?:pull|pulls|merge_requests)/\d+\b`)

// ExtractPullRequestURL scans CI log output for the first pull request link,
// e.g. "https://gitea.example.com/org/repo/pulls/123".
func ExtractPullRequestURL(log string) (string, bool) {
	match := pullRequestURLPattern.FindString(log)

	return match, match != ""
}

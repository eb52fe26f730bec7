package store

import "context"

// File is the content of a versioned file together with the revision tag
// identifying the exact stored bytes. The tag is opaque; it is only ever fed
// back into WriteFile for the optimistic-concurrency check.
type File struct {
	Data     []byte
	Revision string
}

type PullRequest struct {
	ID    int64
	URL   string
	Title string
}

type RunSummary struct {
	ID         int64
	Status     string
	Conclusion string
	URL        string
}

type DirEntry struct {
	Name string
	Dir  bool
}

// DocumentStore is a thin client for one repository on a versioned-file host.
// The repository identity and credentials are bound at construction; there is
// no ambient configuration.
type DocumentStore interface {
	// DefaultRef returns the repository's default branch.
	DefaultRef(ctx context.Context) (string, error)

	// RefHead returns the revision a branch or tag currently points at.
	RefHead(ctx context.Context, ref string) (string, error)

	// CreateBranch creates newRef from fromRef. Fails with ErrConflict when
	// newRef already exists.
	CreateBranch(ctx context.Context, newRef, fromRef string) error

	// ReadFile reads a file at a ref. Fails with ErrNotFound.
	ReadFile(ctx context.Context, path, ref string) (*File, error)

	// WriteFile commits new content to a branch, conditioned on
	// expectedRevision matching the stored file. Fails with ErrConflict when
	// the revision is stale. Returns the new revision tag.
	WriteFile(ctx context.Context, path, message string, data []byte, ref, expectedRevision string) (string, error)

	// CreatePullRequest opens a review request from headRef into baseRef.
	CreatePullRequest(ctx context.Context, headRef, baseRef, title, body string) (*PullRequest, error)

	// ListDir lists direct children of a directory at a ref. Fails with
	// ErrNotFound.
	ListDir(ctx context.Context, path, ref string) ([]DirEntry, error)
}

// WorkflowRunner dispatches CI runs and reads their status and logs. Kept
// separate from DocumentStore because not every host exposes it.
type WorkflowRunner interface {
	// Dispatch triggers a workflow run on a ref. Fails with ErrNotFound when
	// the workflow does not exist and ErrInvalidArgument on rejected inputs.
	Dispatch(ctx context.Context, workflowID, ref string, inputs map[string]string) error

	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, workflowID, ref string, pageSize int) ([]RunSummary, error)

	// RunLog returns the combined log output of one run.
	RunLog(ctx context.Context, runID int64) (string, error)
}

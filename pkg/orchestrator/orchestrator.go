package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/opsconsole/bluegreen-manager/pkg/bluegreen"
	"github.com/opsconsole/bluegreen-manager/pkg/store"
)

// Orchestrator sequences one full propose-change transaction: create branch,
// read the values file, apply one operation, write back conditioned on the
// revision read, open a pull request.
//
// The sequence is deliberately not transactional: a branch created before a
// later step fails is left behind and reported, never deleted. Automatic
// cleanup could destroy concurrent manual work on the same branch name.
type Orchestrator struct {
	store store.DocumentStore
	opts  Options
	now   func() time.Time
}

type Options struct {
	// App labels the application whose values file is being changed.
	App string
	// Environment labels the target environment, e.g. "dev-us".
	Environment string
	// ValuesPath is the repository path of the values file.
	ValuesPath string
	// BaseRef is the branch proposals are based on and merged back into.
	// Empty means the repository's default branch.
	BaseRef string
	// Clock overrides the branch-name timestamp source. Nil means time.Now.
	Clock func() time.Time
}

// Proposal is the result of a successfully proposed change.
type Proposal struct {
	Branch      string
	PullRequest *store.PullRequest
	// NewActive is set for auto-flips: the colour now receiving traffic.
	NewActive bluegreen.Slot
}

func New(documentStore store.DocumentStore, opts Options) *Orchestrator {
	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	return &Orchestrator{
		store: documentStore,
		opts:  opts,
		now:   now,
	}
}

// Propose runs one operation end to end. Operation parameters are validated
// before the first remote call. Every failure after branch creation wraps the
// branch name so an operator can clean up by hand; a write conflict means a
// concurrent edit won the race and the whole proposal must be redone from a
// fresh read.
func (o *Orchestrator) Propose(ctx context.Context, op Operation) (*Proposal, error) {
	if err := op.validate(); err != nil {
		return nil, err
	}

	baseRef, err := o.baseRef(ctx)
	if err != nil {
		return nil, err
	}

	branch := o.branchName(op)
	slog.Info("proposing change", "app", o.opts.App, "env", o.opts.Environment, "action", op.Action(), "branch", branch)

	if err := o.store.CreateBranch(ctx, branch, baseRef); err != nil {
		return nil, fmt.Errorf("failed to create branch: %w", err)
	}

	// Orphans the branch on any later failure.
	orphaned := func(err error) error {
		return fmt.Errorf("branch %s was created and is left behind: %w", branch, err)
	}

	file, err := o.store.ReadFile(ctx, o.opts.ValuesPath, branch)
	if err != nil {
		return nil, orphaned(err)
	}

	doc, err := bluegreen.Parse(file.Data)
	if err != nil {
		return nil, orphaned(err)
	}

	next, out, err := op.apply(doc)
	if err != nil {
		return nil, orphaned(err)
	}

	data, err := next.Bytes()
	if err != nil {
		return nil, orphaned(err)
	}

	desc := op.describe(o.opts.App, o.opts.Environment, out)
	if _, err := o.store.WriteFile(ctx, o.opts.ValuesPath, desc.commitMessage, data, branch, file.Revision); err != nil {
		return nil, orphaned(err)
	}

	title, body, err := renderPullRequest(desc)
	if err != nil {
		return nil, orphaned(err)
	}

	pr, err := o.store.CreatePullRequest(ctx, branch, baseRef, title, body)
	if err != nil {
		return nil, orphaned(err)
	}

	slog.Info("pull request created", "branch", branch, "url", pr.URL)

	return &Proposal{
		Branch:      branch,
		PullRequest: pr,
		NewActive:   out.newActive,
	}, nil
}

// TargetPicker selects which slot a version update aims at.
type TargetPicker string

const (
	PickActive  TargetPicker = "active"
	PickStandby TargetPicker = "standby"
)

// ResolveTarget reads the values file at the base ref and returns the slot
// the picker selects, so a caller can say "update the standby" without
// knowing which colour that currently is.
func (o *Orchestrator) ResolveTarget(ctx context.Context, pick TargetPicker) (bluegreen.Slot, error) {
	baseRef, err := o.baseRef(ctx)
	if err != nil {
		return "", err
	}

	file, err := o.store.ReadFile(ctx, o.opts.ValuesPath, baseRef)
	if err != nil {
		return "", err
	}

	doc, err := bluegreen.Parse(file.Data)
	if err != nil {
		return "", err
	}

	active, err := bluegreen.ParseSlot(bluegreen.ActiveSlot(doc))
	if err != nil {
		return "", err
	}

	switch pick {
	case PickActive:
		return active, nil
	case PickStandby:
		return active.Other(), nil
	default:
		return "", fmt.Errorf("unknown target picker %q", pick)
	}
}

func (o *Orchestrator) baseRef(ctx context.Context) (string, error) {
	if o.opts.BaseRef != "" {
		return o.opts.BaseRef, nil
	}

	ref, err := o.store.DefaultRef(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base ref: %w", err)
	}

	return ref, nil
}

// branchName is deterministic for a given app, environment, action and
// second. Collisions within the same second fail loudly at branch creation
// rather than silently reusing the existing branch.
func (o *Orchestrator) branchName(op Operation) string {
	appSlug := strings.ReplaceAll(o.opts.App, "/", "-")
	stamp := o.now().UTC().Format("20060102-150405")

	return fmt.Sprintf("feat/%s-%s-%s-%s", appSlug, o.opts.Environment, op.Action(), stamp)
}

package orchestrator

import (
	"fmt"

	"github.com/opsconsole/bluegreen-manager/pkg/bluegreen"
)

// Operation is one proposed change to a values file. Implementations are
// plain descriptors; validation runs before any remote call and apply runs
// on the freshly read document.
type Operation interface {
	// Action identifies the operation kind in branch names.
	Action() string

	validate() error
	apply(doc *bluegreen.Document) (*bluegreen.Document, *outcome, error)
	describe(app, env string, out *outcome) description
}

// outcome carries the facts resolved while applying an operation, needed for
// commit message and pull request rendering.
type outcome struct {
	newActive   bluegreen.Slot
	switchedOff bool
}

type description struct {
	commitMessage string
	titleAction   string
	titleVersion  string
	bodyTemplate  string
	bodyData      map[string]any
}

// VersionUpdate overwrites one slot's version key.
type VersionUpdate struct {
	Slot    string
	Version string
}

func (op VersionUpdate) Action() string {
	return fmt.Sprintf("update-%s-version", op.Slot)
}

func (op VersionUpdate) validate() error {
	if _, err := bluegreen.ParseSlot(op.Slot); err != nil {
		return err
	}
	if op.Version == "" {
		return fmt.Errorf("version must not be empty")
	}

	return nil
}

func (op VersionUpdate) apply(doc *bluegreen.Document) (*bluegreen.Document, *outcome, error) {
	next, err := bluegreen.SetVersion(doc, op.Slot, op.Version)
	if err != nil {
		return nil, nil, err
	}

	return next, &outcome{}, nil
}

func (op VersionUpdate) describe(app, env string, out *outcome) description {
	return description{
		commitMessage: fmt.Sprintf("chore(%s): bump %s version to %s [%s]", app, op.Slot, op.Version, env),
		titleAction:   fmt.Sprintf("Update %s version", op.Slot),
		titleVersion:  op.Version,
		bodyTemplate:  versionBodyTemplate,
		bodyData: map[string]any{
			"App":     app,
			"Env":     env,
			"Slot":    op.Slot,
			"Version": op.Version,
		},
	}
}

// AutoFlip switches traffic to the standby slot, optionally turning the
// newly-standby slot's switch off.
type AutoFlip struct {
	TurnOffStandbySwitch bool
}

func (op AutoFlip) Action() string {
	return "auto-flip"
}

func (op AutoFlip) validate() error {
	return nil
}

func (op AutoFlip) apply(doc *bluegreen.Document) (*bluegreen.Document, *outcome, error) {
	next, target, err := bluegreen.FlipActive(doc)
	if err != nil {
		return nil, nil, err
	}

	out := &outcome{newActive: target}
	if op.TurnOffStandbySwitch {
		next, err = bluegreen.SetSwitch(next, string(target.Other()), "off")
		if err != nil {
			return nil, nil, err
		}
		out.switchedOff = true
	}

	return next, out, nil
}

func (op AutoFlip) describe(app, env string, out *outcome) description {
	return description{
		commitMessage: fmt.Sprintf("feat(%s): auto-flip active slot to %s [%s]", app, out.newActive, env),
		titleAction:   fmt.Sprintf("Auto flip to %s", out.newActive),
		bodyTemplate:  flipBodyTemplate,
		bodyData: map[string]any{
			"App":         app,
			"Env":         env,
			"NewActive":   string(out.newActive),
			"SwitchedOff": out.switchedOff,
		},
	}
}

// SwitchToggle sets one slot's switch on or off without touching weights.
type SwitchToggle struct {
	Slot  string
	State string
}

func (op SwitchToggle) Action() string {
	return fmt.Sprintf("set-%s-switch-%s", op.Slot, op.State)
}

func (op SwitchToggle) validate() error {
	if _, err := bluegreen.ParseSlot(op.Slot); err != nil {
		return err
	}
	if op.State != "on" && op.State != "off" {
		return fmt.Errorf("%w: got %q", bluegreen.ErrInvalidSwitchState, op.State)
	}

	return nil
}

func (op SwitchToggle) apply(doc *bluegreen.Document) (*bluegreen.Document, *outcome, error) {
	next, err := bluegreen.SetSwitch(doc, op.Slot, op.State)
	if err != nil {
		return nil, nil, err
	}

	return next, &outcome{}, nil
}

func (op SwitchToggle) describe(app, env string, out *outcome) description {
	return description{
		commitMessage: fmt.Sprintf("chore(%s): turn %s switch %s [%s]", app, op.Slot, op.State, env),
		titleAction:   fmt.Sprintf("Turn %s switch %s", op.Slot, op.State),
		bodyTemplate:  switchBodyTemplate,
		bodyData: map[string]any{
			"App":   app,
			"Env":   env,
			"Slot":  op.Slot,
			"State": op.State,
		},
	}
}

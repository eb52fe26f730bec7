package bluegreen

import (
	"errors"
	"fmt"
)

// ErrInvalidSwitchState reports a switch state other than "on" or "off".
var ErrInvalidSwitchState = errors.New("switch state must be \"on\" or \"off\"")

// Mutations never modify their input: each operation validates its arguments,
// applies itself to a clone and returns the clone. Applying the same
// operation twice yields the same document as applying it once.

// SetVersion overwrites the version key for one slot, leaving the other
// slot's key untouched. Both the canonical "appversion_<slot>" spelling and
// the legacy "appversion<slot>" spelling are recognised; every matching key
// is overwritten so differently-cased duplicates cannot go stale. When no key
// exists, Appversion_<slot> is inserted.
func SetVersion(doc *Document, slot string, version string) (*Document, error) {
	target, err := ParseSlot(slot)
	if err != nil {
		return nil, err
	}

	next := doc.Clone()
	next.setRootField(strNode(version),
		fmt.Sprintf("Appversion_%s", target),
		fmt.Sprintf("appversion_%s", target),
		fmt.Sprintf("appversion%s", target),
	)

	return next, nil
}

// FlipActive switches traffic to the standby slot. Every physically-present
// blue or green section, whatever its casing, gets activeslot set to the new
// colour and its weights set to 100/0 for the newly active colour and 0/100
// for the newly standby colour. Fails before mutating when the current
// activeslot value is not a recognised colour.
func FlipActive(doc *Document) (*Document, Slot, error) {
	target, err := StandbySlot(ActiveSlot(doc))
	if err != nil {
		return nil, "", fmt.Errorf("cannot flip: %w", err)
	}

	next := doc.Clone()
	for _, colour := range []Slot{SlotBlue, SlotGreen} {
		active := colour == target
		for _, section := range next.Sections(string(colour)) {
			setField(section, strNode(string(target)), "activeslot", "activeslot")
			if active {
				setField(section, intNode(100), "Weight", "weight")
				// "standybyweight" is a transposed legacy spelling still
				// present in older values files; write whichever exists.
				setField(section, intNode(0), "Standbyweight", "standbyweight", "standybyweight")
			} else {
				setField(section, intNode(0), "Weight", "weight")
				setField(section, intNode(100), "Standbyweight", "standbyweight", "standybyweight")
			}
		}
	}

	return next, target, nil
}

// SetSwitch sets the <slot>switch field to "on" or "off" in every section of
// the given slot. FlipActive's optional turn-off-standby-switch post-step
// uses it, and it is independently callable.
func SetSwitch(doc *Document, slot string, state string) (*Document, error) {
	target, err := ParseSlot(slot)
	if err != nil {
		return nil, err
	}
	if state != "on" && state != "off" {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidSwitchState, state)
	}

	next := doc.Clone()
	key := fmt.Sprintf("%sswitch", target)
	for _, section := range next.Sections(string(target)) {
		setField(section, strNode(state), key, key)
	}

	return next, nil
}

package bluegreen

import (
	"errors"
	"fmt"
)

// ErrInvalidSlot reports a slot name that is neither "blue" nor "green".
var ErrInvalidSlot = errors.New("slot must be \"blue\" or \"green\"")

type Slot string

const (
	SlotBlue  Slot = "blue"
	SlotGreen Slot = "green"
)

// ParseSlot folds and validates a slot name. Historical documents carry
// activeslot values with arbitrary casing and padding; anything that does not
// fold to a known colour is rejected rather than coerced.
func ParseSlot(s string) (Slot, error) {
	switch Slot(foldKey(s)) {
	case SlotBlue:
		return SlotBlue, nil
	case SlotGreen:
		return SlotGreen, nil
	default:
		return "", fmt.Errorf("%w: got %q", ErrInvalidSlot, s)
	}
}

// Other returns the opposing slot.
func (s Slot) Other() Slot {
	if s == SlotBlue {
		return SlotGreen
	}

	return SlotBlue
}

func (s Slot) String() string {
	return string(s)
}

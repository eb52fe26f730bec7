package bluegreen

// ActiveSlot reads the document's activeslot marker. Precedence: the blue
// section's field, then the green section's, then a root-level field, then
// "blue" for documents that have not been initialised with slot metadata.
//
// The value is trimmed and lower-cased but otherwise passed through
// uninterpreted; callers that need a valid colour feed it to ParseSlot.
func ActiveSlot(d *Document) string {
	for _, section := range []string{"blue", "green"} {
		for _, m := range d.Sections(section) {
			if v, ok := lookupField(m, "activeslot"); ok {
				return foldKey(v)
			}
		}
	}
	if v, ok := d.RootField("activeslot"); ok {
		return foldKey(v)
	}

	return string(SlotBlue)
}

// StandbySlot returns the slot not currently active. Unlike ActiveSlot it is
// strict: an unrecognised colour is an error, not implicitly green.
func StandbySlot(active string) (Slot, error) {
	slot, err := ParseSlot(active)
	if err != nil {
		return "", err
	}

	return slot.Other(), nil
}

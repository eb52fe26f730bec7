package bluegreen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, source string) *Document {
	t.Helper()
	doc, err := Parse([]byte(source))
	require.NoError(t, err)

	return doc
}

func TestActiveSlot_Precedence(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name: "BlueSectionWins",
			source: `
blue:
  activeslot: green
green:
  activeslot: blue
activeslot: blue
`,
			want: "green",
		},
		{
			name: "GreenSectionWhenBlueSilent",
			source: `
blue:
  weight: 100
green:
  activeslot: green
`,
			want: "green",
		},
		{
			name: "RootLevelFallback",
			source: `
activeslot: green
`,
			want: "green",
		},
		{
			name:   "DefaultsToBlueWhenAbsent",
			source: "someotherkey: value\n",
			want:   "blue",
		},
		{
			name: "ValueTrimmedAndLowercased",
			source: `
blue:
  activeslot: "  GREEN  "
`,
			want: "green",
		},
		{
			name: "UnrecognisedValuePassedThrough",
			source: `
blue:
  activeslot: gren
`,
			want: "gren",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ActiveSlot(mustParse(t, tt.source)))
		})
	}
}

func TestActiveSlot_CaseInsensitiveKeys(t *testing.T) {
	// Documents differing only in key casing must resolve identically.
	variants := []string{
		"blue:\n  activeslot: green\n",
		"Blue:\n  ActiveSlot: green\n",
		"BLUE:\n  ACTIVESLOT: green\n",
	}

	for _, source := range variants {
		assert.Equal(t, "green", ActiveSlot(mustParse(t, source)), "source: %s", source)
	}
}

func TestActiveSlot_IgnoresScalarSection(t *testing.T) {
	// A scalar "blue" key is not a section; detection falls through.
	doc := mustParse(t, `
blue: notasection
green:
  activeslot: green
`)
	assert.Equal(t, "green", ActiveSlot(doc))
}

func TestStandbySlot(t *testing.T) {
	standby, err := StandbySlot("blue")
	require.NoError(t, err)
	assert.Equal(t, SlotGreen, standby)

	standby, err = StandbySlot("green")
	require.NoError(t, err)
	assert.Equal(t, SlotBlue, standby)
}

func TestStandbySlot_RejectsUnknownColour(t *testing.T) {
	// Legacy behaviour treated anything not blue as green; that silently
	// accepted typos, so unknown values are errors now.
	_, err := StandbySlot("gren")
	require.ErrorIs(t, err, ErrInvalidSlot)
}

func TestParseSlot(t *testing.T) {
	slot, err := ParseSlot(" Blue ")
	require.NoError(t, err)
	assert.Equal(t, SlotBlue, slot)

	_, err = ParseSlot("purple")
	assert.ErrorIs(t, err, ErrInvalidSlot)

	_, err = ParseSlot("")
	assert.ErrorIs(t, err, ErrInvalidSlot)
}

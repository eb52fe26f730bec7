package bluegreen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParse_EmptyInputYieldsEmptyMapping(t *testing.T) {
	doc, err := Parse(nil)
	require.NoError(t, err)

	data, err := doc.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(data))
}

func TestParse_RejectsNonMappingRoot(t *testing.T) {
	_, err := Parse([]byte("- a\n- b\n"))
	require.Error(t, err)
}

func TestRoundTrip_PreservesUnrecognisedKeys(t *testing.T) {
	source := `# deployment values
replicaCount: 3
image:
  repository: registry.example.com/app1
  tag: v1.2.3
Appversion_blue: v1
blue:
  activeslot: blue
  weight: 100
  standbyweight: 0
  customAnnotation: keep-me
nodeSelector:
  disktype: ssd
`
	doc := mustParse(t, source)

	data, err := doc.Bytes()
	require.NoError(t, err)

	reparsed := mustParse(t, string(data))
	again, err := reparsed.Bytes()
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, 3, got["replicaCount"])
	assert.Equal(t, map[string]any{"repository": "registry.example.com/app1", "tag": "v1.2.3"}, got["image"])
	assert.Equal(t, map[string]any{"disktype": "ssd"}, got["nodeSelector"])
	assert.Contains(t, string(data), "# deployment values")
	assert.Contains(t, string(data), "customAnnotation: keep-me")
}

func TestRoundTrip_PreservesKeyOrder(t *testing.T) {
	source := "zeta: 1\nalpha: 2\nmiddle: 3\n"
	doc := mustParse(t, source)

	data, err := doc.Bytes()
	require.NoError(t, err)
	assert.Equal(t, source, string(data))
}

func TestClone_IsIndependent(t *testing.T) {
	doc := mustParse(t, "blue:\n  weight: 100\n")
	clone := doc.Clone()

	for _, section := range clone.Sections("blue") {
		setField(section, intNode(0), "Weight", "weight")
	}

	original, err := doc.Bytes()
	require.NoError(t, err)
	assert.Contains(t, string(original), "weight: 100")

	mutated, err := clone.Bytes()
	require.NoError(t, err)
	assert.Contains(t, string(mutated), "weight: 0")
}

func TestSections_ReturnsEveryCasedDuplicate(t *testing.T) {
	doc := mustParse(t, `
blue:
  weight: 100
Blue:
  weight: 0
green:
  weight: 0
`)
	assert.Len(t, doc.Sections("blue"), 2)
	assert.Len(t, doc.Sections("green"), 1)
	assert.Empty(t, doc.Sections("red"))
}

func TestSetField_WritesEveryMatchingCasing(t *testing.T) {
	doc := mustParse(t, `
blue:
  weight: 5
  Weight: 7
`)
	for _, section := range doc.Sections("blue") {
		setField(section, intNode(100), "Weight", "weight")
	}

	data, err := doc.Bytes()
	require.NoError(t, err)
	assert.Contains(t, string(data), "weight: 100")
	assert.Contains(t, string(data), "Weight: 100")
	assert.NotContains(t, string(data), ": 5")
	assert.NotContains(t, string(data), ": 7")
}

func TestSetField_InsertsCanonicalWhenAbsent(t *testing.T) {
	doc := mustParse(t, "blue:\n  activeslot: blue\n")
	for _, section := range doc.Sections("blue") {
		setField(section, intNode(100), "Weight", "weight")
	}

	data, err := doc.Bytes()
	require.NoError(t, err)
	assert.Contains(t, string(data), "Weight: 100")
}

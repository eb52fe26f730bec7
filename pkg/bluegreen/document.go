package bluegreen

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document wraps a parsed values file. The underlying yaml.Node tree keeps
// key order, comments and unrecognised keys intact so a mutation round-trips
// everything it does not touch. All key lookups are case-insensitive; the
// folding policy lives here and nowhere else.
type Document struct {
	root *yaml.Node
}

// Parse loads a values file. Empty input yields an empty mapping document.
func Parse(data []byte) (*Document, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to parse values file: %w", err)
	}

	if node.Kind == 0 || len(node.Content) == 0 {
		node = yaml.Node{
			Kind: yaml.DocumentNode,
			Content: []*yaml.Node{{
				Kind: yaml.MappingNode,
				Tag:  "!!map",
			}},
		}
	}

	if node.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("values file root is not a mapping")
	}

	return &Document{root: &node}, nil
}

// Bytes serialises the document with two-space indentation.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d.root.Content[0]); err != nil {
		return nil, fmt.Errorf("failed to serialise values file: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to serialise values file: %w", err)
	}

	return buf.Bytes(), nil
}

// Clone deep-copies the document. Mutations operate on a clone so the input
// document is untouched when an operation fails.
func (d *Document) Clone() *Document {
	return &Document{root: copyNode(d.root)}
}

func copyNode(n *yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}

	c := &yaml.Node{
		Kind:        n.Kind,
		Style:       n.Style,
		Tag:         n.Tag,
		Value:       n.Value,
		Anchor:      n.Anchor,
		HeadComment: n.HeadComment,
		LineComment: n.LineComment,
		FootComment: n.FootComment,
	}
	if n.Content != nil {
		c.Content = make([]*yaml.Node, len(n.Content))
		for i, child := range n.Content {
			c.Content[i] = copyNode(child)
		}
	}

	return c
}

func (d *Document) mapping() *yaml.Node {
	return d.root.Content[0]
}

func foldKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Sections returns every physically-present mapping section whose key folds
// to name. Legacy documents can carry e.g. both "blue" and "Blue" as distinct
// keys; callers must keep such duplicates synchronised rather than pick one.
func (d *Document) Sections(name string) []*yaml.Node {
	folded := foldKey(name)
	m := d.mapping()

	var sections []*yaml.Node
	for i := 0; i+1 < len(m.Content); i += 2 {
		if foldKey(m.Content[i].Value) == folded && m.Content[i+1].Kind == yaml.MappingNode {
			sections = append(sections, m.Content[i+1])
		}
	}

	return sections
}

// RootField looks up a scalar at the document root by any of the given
// case-insensitive names, first match wins.
func (d *Document) RootField(names ...string) (string, bool) {
	return lookupField(d.mapping(), names...)
}

func (d *Document) setRootField(value *yaml.Node, canonical string, names ...string) {
	setField(d.mapping(), value, canonical, names...)
}

func lookupField(m *yaml.Node, names ...string) (string, bool) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if matchesAny(m.Content[i].Value, names) && m.Content[i+1].Kind == yaml.ScalarNode {
			return m.Content[i+1].Value, true
		}
	}

	return "", false
}

// setField overwrites every existing key matching any of names
// (case-insensitive). Writing all matches instead of the first keeps
// differently-cased duplicate keys from going stale. When no key matches, the
// canonical spelling is inserted at the end of the mapping.
func setField(m *yaml.Node, value *yaml.Node, canonical string, names ...string) {
	found := false
	for i := 0; i+1 < len(m.Content); i += 2 {
		if matchesAny(m.Content[i].Value, names) {
			v := m.Content[i+1]
			v.Kind = value.Kind
			v.Tag = value.Tag
			v.Value = value.Value
			v.Style = 0
			v.Content = nil
			found = true
		}
	}
	if found {
		return
	}

	m.Content = append(m.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: canonical},
		copyNode(value),
	)
}

func matchesAny(key string, names []string) bool {
	folded := foldKey(key)
	for _, name := range names {
		if folded == foldKey(name) {
			return true
		}
	}

	return false
}

func strNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func intNode(n int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprintf("%d", n)}
}

package schema

import (
	"fmt"

	"github.com/minios-linux/liquidloc/jsontree"
)

// Document is a decoded configuration block: either *Section or
// *SettingsSchema.
type Document interface {
	Kind() Kind
	// Tree returns the underlying JSON tree.
	Tree() *jsontree.Node
	sealed()
}

// Section is the schema object of a section template.
type Section struct {
	tree *jsontree.Node
}

func (s *Section) Kind() Kind           { return KindSection }
func (s *Section) Tree() *jsontree.Node { return s.tree }
func (*Section) sealed()                {}

// Settings returns the setting descriptors that are objects.
func (s *Section) Settings() []*jsontree.Node { return objects(s.tree.Get("settings")) }

// Blocks returns the block descriptors that are objects.
func (s *Section) Blocks() []*jsontree.Node { return objects(s.tree.Get("blocks")) }

// Presets returns the preset objects.
func (s *Section) Presets() []*jsontree.Node { return objects(s.tree.Get("presets")) }

// SettingsSchema is the global settings document: a list of named groups,
// each with its own settings.
type SettingsSchema struct {
	tree *jsontree.Node
}

func (g *SettingsSchema) Kind() Kind           { return KindSettings }
func (g *SettingsSchema) Tree() *jsontree.Node { return g.tree }
func (*SettingsSchema) sealed()                {}

// Groups returns the group objects in document order.
func (g *SettingsSchema) Groups() []*jsontree.Node { return objects(g.tree) }

// Decode wraps tree in the Document variant for kind. The tree is shared,
// not copied.
func Decode(kind Kind, tree *jsontree.Node) (Document, error) {
	switch kind {
	case KindSection:
		if tree == nil || tree.Kind != jsontree.Object {
			return nil, fmt.Errorf("%w: section schema must be an object", ErrNotFound)
		}
		return &Section{tree: tree}, nil
	case KindSettings:
		if tree == nil || tree.Kind != jsontree.Array {
			return nil, fmt.Errorf("%w: settings schema must be an array", ErrNotFound)
		}
		return &SettingsSchema{tree: tree}, nil
	}
	return nil, fmt.Errorf("unknown document kind %v", kind)
}

// Document decodes the block's tree.
func (b *Block) Document() (Document, error) {
	return Decode(b.Kind, b.Tree)
}

func objects(n *jsontree.Node) []*jsontree.Node {
	if n == nil || n.Kind != jsontree.Array {
		return nil
	}
	out := make([]*jsontree.Node, 0, len(n.Items))
	for _, it := range n.Items {
		if it.Kind == jsontree.Object {
			out = append(out, it)
		}
	}
	return out
}

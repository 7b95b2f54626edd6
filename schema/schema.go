// Package schema locates and decodes the configuration block of a theme
// document.
//
// Section templates embed their block between Liquid tags:
//
//	{% schema %}
//	{ "name": "Header", "settings": [ ... ] }
//	{% endschema %}
//
// The global settings file (config/settings_schema.json) has no tags: the
// whole document is the block.
package schema

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/minios-linux/liquidloc/jsontree"
)

// ErrNotFound reports a configuration block that is absent, misordered,
// empty or not valid JSON.
var ErrNotFound = errors.New("schema block not found")

// Kind identifies the shape of a document.
type Kind int

const (
	// KindSection is a template with a delimited schema block.
	KindSection Kind = iota
	// KindSettings is the global settings schema: a JSON array of groups.
	KindSettings
)

// SettingsIdentifier is the document identifier of the global settings file.
const SettingsIdentifier = "settings_schema"

func (k Kind) String() string {
	switch k {
	case KindSection:
		return "section"
	case KindSettings:
		return "settings"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// KindFor returns the kind of the document with the given identifier.
func KindFor(identifier string) Kind {
	if identifier == SettingsIdentifier {
		return KindSettings
	}
	return KindSection
}

var (
	openTag  = regexp.MustCompile(`(?i)\{%-?\s*schema\s*-?%\}`)
	closeTag = regexp.MustCompile(`(?i)\{%-?\s*endschema\s*-?%\}`)
)

// Block is an extracted configuration block.
type Block struct {
	Kind Kind
	Tree *jsontree.Node
	// Start and End are the byte offsets of the block interior in the
	// document text. For KindSettings they span the whole text.
	Start, End int
}

// Extract finds and parses the configuration block of text.
func Extract(kind Kind, text string) (*Block, error) {
	b := &Block{Kind: kind, Start: 0, End: len(text)}

	if kind == KindSection {
		open := openTag.FindStringIndex(text)
		if open == nil {
			return nil, fmt.Errorf("%w: missing {%% schema %%} tag", ErrNotFound)
		}
		end := closeTag.FindStringIndex(text)
		if end == nil {
			return nil, fmt.Errorf("%w: missing {%% endschema %%} tag", ErrNotFound)
		}
		if end[0] < open[1] {
			return nil, fmt.Errorf("%w: {%% endschema %%} precedes {%% schema %%}", ErrNotFound)
		}
		b.Start, b.End = open[1], end[0]
	}

	interior := b.Interior(text)
	if strings.TrimSpace(interior) == "" {
		return nil, fmt.Errorf("%w: empty schema block", ErrNotFound)
	}
	tree, err := jsontree.Parse([]byte(interior))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	b.Tree = tree
	return b, nil
}

// Interior returns the block's text span within text.
func (b *Block) Interior(text string) string {
	return text[b.Start:b.End]
}

// Replace returns text with the block interior replaced by tree. For
// KindSettings the whole document is rewritten.
func (b *Block) Replace(text string, tree *jsontree.Node) string {
	body := string(jsontree.Marshal(tree))
	if b.Kind == KindSettings {
		return body + "\n"
	}
	return text[:b.Start] + "\n" + body + "\n" + text[b.End:]
}

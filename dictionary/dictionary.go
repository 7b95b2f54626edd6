// Package dictionary implements reading and writing of the default-locale
// schema dictionary (locales/en.default.schema.json).
//
// The expected file format is a nested JSON object with string leaves,
// partitioned by document kind:
//
//	{
//	  "sections": {
//	    "header": {
//	      "name": "Header",
//	      "settings": { "color": { "label": "Background color" } }
//	    }
//	  },
//	  "settings_schema": { ... }
//	}
//
// Files are read tolerantly (comments and trailing commas are accepted) and
// always written back as strict, two-space indented JSON.
package dictionary

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/minios-linux/liquidloc/jsontree"
)

var (
	// ErrParse reports dictionary text that is not valid (tolerant) JSON.
	ErrParse = errors.New("dictionary is not valid JSON")
	// ErrPersistence reports a failure to read or write the dictionary file.
	ErrPersistence = errors.New("dictionary persistence failed")
)

// Dictionary is a parsed translation dictionary.
type Dictionary struct {
	// Root is always an object.
	Root *jsontree.Node
}

// New returns an empty dictionary.
func New() *Dictionary {
	return &Dictionary{Root: jsontree.NewObject()}
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ParseFile reads and parses a dictionary file. A missing file yields an
// empty dictionary so the first generation pass can create it.
func ParseFile(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("%w: reading %s: %w", ErrPersistence, path, err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Parse parses dictionary text. Blank input is an empty dictionary.
func Parse(data []byte) (*Dictionary, error) {
	if strings.TrimSpace(string(data)) == "" {
		return New(), nil
	}
	root, err := jsontree.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if root.Kind != jsontree.Object {
		return nil, fmt.Errorf("%w: root must be an object, got %s", ErrParse, root.Kind)
	}
	return &Dictionary{Root: root}, nil
}

// ---------------------------------------------------------------------------
// Querying
// ---------------------------------------------------------------------------

// Lookup returns the subtree at a dotted path. A missing path yields an
// empty object rather than nil.
func (d *Dictionary) Lookup(path string) *jsontree.Node {
	if n := d.Root.Lookup(path); n != nil {
		return n
	}
	return jsontree.NewObject()
}

// Value returns the string stored at a dotted path.
func (d *Dictionary) Value(path string) (string, bool) {
	return d.Root.Lookup(path).Str()
}

// Leaves returns the dotted paths of all string leaves in document order.
func (d *Dictionary) Leaves() []string {
	var out []string
	walkLeaves(d.Root, "", func(path, _ string) bool {
		out = append(out, path)
		return true
	})
	return out
}

// Stats returns (leaves, translated) where translated counts non-empty leaves.
func (d *Dictionary) Stats() (total, translated int) {
	walkLeaves(d.Root, "", func(_, value string) bool {
		total++
		if value != "" {
			translated++
		}
		return true
	})
	return
}

// walkLeaves visits string leaves of nested objects depth-first in key
// order. Arrays are not addressable by dotted paths and are skipped.
// Returning false from fn stops the walk.
func walkLeaves(n *jsontree.Node, prefix string, fn func(path, value string) bool) bool {
	for _, k := range n.Keys() {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		v := n.Get(k)
		switch v.Kind {
		case jsontree.Object:
			if !walkLeaves(v, path, fn) {
				return false
			}
		case jsontree.String:
			if !fn(path, v.Value) {
				return false
			}
		}
	}
	return true
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// Marshal serialises the dictionary with a trailing newline.
func (d *Dictionary) Marshal() []byte {
	return append(jsontree.Marshal(d.Root), '\n')
}

// WriteFile writes the dictionary atomically: the data goes to a temporary
// file in the target directory which is then renamed over path.
func (d *Dictionary) WriteFile(path string) error {
	data := d.Marshal()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: creating directory %s: %w", ErrPersistence, dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %w", ErrPersistence, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: writing %s: %w", ErrPersistence, tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: writing %s: %w", ErrPersistence, tmpPath, err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("%w: chmod %s: %w", ErrPersistence, tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("%w: replacing %s: %w", ErrPersistence, path, err)
	}
	return nil
}

// Package merge implements dictionary merging: newly generated entries are
// folded into an existing, possibly hand-edited, dictionary.
//
// - Keys absent from the existing dictionary are added.
// - Keys already present are kept as they are, whatever the new value.
// - Empty objects, arrays and strings are pruned afterwards.
//
// Both functions are pure: inputs are never modified.
package merge

import (
	"github.com/minios-linux/liquidloc/jsontree"
)

// Merge returns existing with every key of additions that it lacks.
//
// An existing value that is itself empty (and would be pruned) counts as
// absent, so merging the same additions twice yields the same document.
func Merge(existing, additions *jsontree.Node) *jsontree.Node {
	result := Prune(existing)
	if result == nil {
		result = jsontree.NewObject()
	}
	if additions != nil && additions.Kind == jsontree.Object {
		addMissing(result, additions)
	}
	if pruned := Prune(result); pruned != nil {
		return pruned
	}
	return jsontree.NewObject()
}

// addMissing copies keys of src absent from dst, recursing into objects.
func addMissing(dst, src *jsontree.Node) {
	for _, key := range src.Keys() {
		value := src.Get(key)
		current := dst.Get(key)

		if value.Kind == jsontree.Object {
			switch {
			case current == nil:
				child := jsontree.NewObject()
				addMissing(child, value)
				dst.Set(key, child)
			case current.Kind == jsontree.Object:
				addMissing(current, value)
			}
			// A leaf already stored under key wins over new structure.
			continue
		}

		if current == nil {
			dst.Set(key, value.Clone())
		}
	}
}

// Prune returns a copy of n without empty objects, arrays or strings,
// including containers that only held empty values. It returns nil when n
// itself prunes away.
func Prune(n *jsontree.Node) *jsontree.Node {
	if n == nil {
		return nil
	}
	out := n.Clone()
	switch n.Kind {
	case jsontree.Object:
		out = jsontree.NewObject()
		for _, key := range n.Keys() {
			if v := Prune(n.Get(key)); v != nil {
				out.Set(key, v)
			}
		}
	case jsontree.Array:
		out = jsontree.NewArray()
		for _, it := range n.Items {
			if v := Prune(it); v != nil {
				out.Items = append(out.Items, v)
			}
		}
	}
	if out.IsEmpty() {
		return nil
	}
	return out
}

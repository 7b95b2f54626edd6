package dictionary

import (
	"strings"

	"github.com/minios-linux/liquidloc/jsontree"
)

// findLabel searches root depth-first, in declared key order, for the first
// string leaf equal to label ignoring case, and returns its dotted path
// relative to root.
func findLabel(root *jsontree.Node, label string) (string, bool) {
	var found string
	walkLeaves(root, "", func(path, value string) bool {
		if strings.EqualFold(value, label) {
			found = path
			return false
		}
		return true
	})
	return found, found != ""
}

// FindLabel searches the subtree at scope ("" for the whole dictionary) and
// returns the full dotted path of the first leaf matching label.
func (d *Dictionary) FindLabel(scope, label string) (string, bool) {
	path, ok := findLabel(d.Lookup(scope), label)
	if !ok {
		return "", false
	}
	if scope != "" {
		path = scope + "." + path
	}
	return path, true
}

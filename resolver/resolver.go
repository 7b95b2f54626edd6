// Package resolver maps dotted dictionary paths to the line that defines
// them in the dictionary's text.
//
// A Resolver is bound to one snapshot of the dictionary text. Each lookup
// first checks the path against the parsed dictionary, then scans the text
// forward for the path's keys in nesting order, starting from the furthest
// position already reached for one of the path's prefixes. Both the final
// result and every intermediate prefix position are cached for the life of
// the Resolver.
package resolver

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/minios-linux/liquidloc/dictionary"
	"github.com/minios-linux/liquidloc/jsontree"
)

// ErrNotFound reports a path that is not present in the dictionary.
var ErrNotFound = errors.New("dictionary path not found")

// Stats counts the work done by a Resolver.
type Stats struct {
	Lookups int
	Hits    int
	// Scanned is the number of bytes of dictionary text examined.
	Scanned int
}

// Resolver resolves paths against one dictionary text. It is not safe for
// concurrent use.
type Resolver struct {
	text       string
	tree       *jsontree.Node
	lineStarts []int
	cache      *Cache
	stats      Stats
}

// New parses text and returns a Resolver with an empty cache.
func New(text []byte) (*Resolver, error) {
	d, err := dictionary.Parse(text)
	if err != nil {
		return nil, err
	}
	s := string(text)
	starts := []int{0}
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Resolver{
		text:       s,
		tree:       d.Root,
		lineStarts: starts,
		cache:      NewCache(),
	}, nil
}

// Stats returns the counters accumulated so far.
func (r *Resolver) Stats() Stats { return r.stats }

// Cache exposes the resolver's memo.
func (r *Resolver) Cache() *Cache { return r.cache }

// Resolve returns the line defining path.
func (r *Resolver) Resolve(path string) (Location, error) {
	r.stats.Lookups++
	if loc, ok := r.cache.Get(path); ok {
		r.stats.Hits++
		return loc, nil
	}

	keys := strings.Split(path, ".")
	if path == "" || containsEmpty(keys) {
		return Location{}, fmt.Errorf("%w: %q", ErrNotFound, path)
	}
	node := r.tree.Lookup(path)
	if node == nil {
		return Location{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	value, _ := node.Str()

	start, ok := r.cache.Best(path)
	if !ok {
		start = Mark{}
	}
	line := start.Line
	if start.KeyIndex < len(keys) {
		var err error
		line, err = r.scan(keys, start)
		if err != nil {
			return Location{}, err
		}
	}

	loc := Location{Line: line, Value: value}
	r.cache.Put(path, loc)
	return loc, nil
}

// scan walks forward from m looking for keys[m.KeyIndex:], each inside the
// object value of the previous one, and returns the line of the last key.
func (r *Resolver) scan(keys []string, m Mark) (int, error) {
	s := &scanner{text: r.text, pos: m.Offset}
	defer func() { r.stats.Scanned += s.pos - m.Offset }()

	line := m.Line
	for idx := m.KeyIndex; idx < len(keys); idx++ {
		keyPos, ok := s.findKey(keys[idx])
		if !ok {
			return 0, fmt.Errorf("%w: %s (key %q not located in text)",
				ErrNotFound, strings.Join(keys, "."), keys[idx])
		}
		line = r.lineOf(keyPos)
		r.cache.Mark(strings.Join(keys[:idx+1], "."), Mark{
			Line:     line,
			KeyIndex: idx + 1,
			Offset:   s.pos,
		})
	}
	return line, nil
}

func (r *Resolver) lineOf(offset int) int {
	return sort.Search(len(r.lineStarts), func(i int) bool {
		return r.lineStarts[i] > offset
	})
}

func containsEmpty(keys []string) bool {
	for _, k := range keys {
		if k == "" {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Text scanning
// ---------------------------------------------------------------------------

// scanner is a forward-only cursor over JSON text that understands strings,
// comments and nesting, and nothing else.
type scanner struct {
	text string
	pos  int
}

// findKey expects the cursor before an object, enters it and looks for key
// among its direct members. On success the cursor is left after the key's
// colon and the offset of the key's opening quote is returned.
func (s *scanner) findKey(key string) (int, bool) {
	s.skipSpace()
	if s.pos >= len(s.text) || s.text[s.pos] != '{' {
		return 0, false
	}
	s.pos++

	depth := 0
	for s.pos < len(s.text) {
		c := s.text[s.pos]
		switch {
		case c == '"':
			start := s.pos
			raw := s.readString()
			if depth != 0 {
				continue
			}
			s.skipSpace()
			if s.pos >= len(s.text) || s.text[s.pos] != ':' {
				continue
			}
			s.pos++
			if unquote(raw) == key {
				return start, true
			}
		case c == '{' || c == '[':
			depth++
			s.pos++
		case c == '}' || c == ']':
			if depth == 0 {
				return 0, false
			}
			depth--
			s.pos++
		case c == '/':
			if !s.skipComment() {
				s.pos++
			}
		default:
			s.pos++
		}
	}
	return 0, false
}

// readString consumes a string literal and returns its raw content.
func (s *scanner) readString() string {
	start := s.pos + 1
	i := start
	for i < len(s.text) {
		switch s.text[i] {
		case '\\':
			i += 2
			continue
		case '"':
			s.pos = i + 1
			return s.text[start:i]
		}
		i++
	}
	s.pos = len(s.text)
	return s.text[start:]
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.text) {
		switch s.text[s.pos] {
		case ' ', '\t', '\n', '\r':
			s.pos++
		case '/':
			if !s.skipComment() {
				return
			}
		default:
			return
		}
	}
}

// skipComment consumes a // or /* */ comment at the cursor.
func (s *scanner) skipComment() bool {
	rest := s.text[s.pos:]
	switch {
	case strings.HasPrefix(rest, "//"):
		if i := strings.IndexByte(rest, '\n'); i >= 0 {
			s.pos += i + 1
		} else {
			s.pos = len(s.text)
		}
		return true
	case strings.HasPrefix(rest, "/*"):
		if i := strings.Index(rest[2:], "*/"); i >= 0 {
			s.pos += i + 4
		} else {
			s.pos = len(s.text)
		}
		return true
	}
	return false
}

func unquote(raw string) string {
	if !strings.Contains(raw, `\`) {
		return raw
	}
	var out string
	if err := json.Unmarshal([]byte(`"`+raw+`"`), &out); err != nil {
		return raw
	}
	return out
}

// Package jsontree implements an order-preserving JSON document model.
//
// Theme schema blocks and locale dictionaries are hand-edited files whose key
// order matters: it is the order translators read them in, and the order in
// which label lookups pick their first match. encoding/json maps lose that
// order, so every component works on *Node trees instead.
//
// Input is parsed tolerantly (HuJSON: comments and trailing commas are
// accepted); output is always strict JSON with two-space indentation.
package jsontree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tailscale/hujson"
)

// Kind identifies the JSON type held by a Node.
type Kind uint8

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Node is a single JSON value.
type Node struct {
	Kind Kind
	// Value holds the text of a String, the literal of a Number and
	// "true"/"false" for a Bool.
	Value string
	// Items holds Array elements.
	Items []*Node

	// keys preserves object key order; fields maps key -> value.
	keys   []string
	fields map[string]*Node
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// NewObject returns an empty object.
func NewObject() *Node {
	return &Node{Kind: Object, fields: make(map[string]*Node)}
}

// NewArray returns an array holding items.
func NewArray(items ...*Node) *Node {
	return &Node{Kind: Array, Items: items}
}

// NewString returns a string node.
func NewString(s string) *Node {
	return &Node{Kind: String, Value: s}
}

// ---------------------------------------------------------------------------
// Object access
// ---------------------------------------------------------------------------

// Get returns the value stored under key, or nil when n is not an object or
// the key is absent.
func (n *Node) Get(key string) *Node {
	if n == nil || n.Kind != Object {
		return nil
	}
	return n.fields[key]
}

// Has reports whether the object n holds key.
func (n *Node) Has(key string) bool {
	return n.Get(key) != nil
}

// Set stores v under key. A new key is appended; an existing key keeps its
// position.
func (n *Node) Set(key string, v *Node) {
	if n.Kind != Object {
		panic("jsontree: Set on " + n.Kind.String())
	}
	if n.fields == nil {
		n.fields = make(map[string]*Node)
	}
	if _, ok := n.fields[key]; !ok {
		n.keys = append(n.keys, key)
	}
	n.fields[key] = v
}

// Keys returns the object's keys in document order.
func (n *Node) Keys() []string {
	if n == nil || n.Kind != Object {
		return nil
	}
	out := make([]string, len(n.keys))
	copy(out, n.keys)
	return out
}

// Len returns the number of object fields or array items.
func (n *Node) Len() int {
	if n == nil {
		return 0
	}
	switch n.Kind {
	case Object:
		return len(n.keys)
	case Array:
		return len(n.Items)
	}
	return 0
}

// Child returns the object stored under key, creating it when absent.
// It returns nil if key holds a non-object value.
func (n *Node) Child(key string) *Node {
	if c := n.Get(key); c != nil {
		if c.Kind != Object {
			return nil
		}
		return c
	}
	c := NewObject()
	n.Set(key, c)
	return c
}

// Lookup walks a dot-separated path through nested objects. It returns nil
// if any segment is missing or crosses a non-object value.
func (n *Node) Lookup(path string) *Node {
	if path == "" {
		return n
	}
	cur := n
	for _, seg := range strings.Split(path, ".") {
		cur = cur.Get(seg)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Str returns the text of a String node.
func (n *Node) Str() (string, bool) {
	if n == nil || n.Kind != String {
		return "", false
	}
	return n.Value, true
}

// IsEmpty reports whether n is an empty object, array or string.
func (n *Node) IsEmpty() bool {
	if n == nil {
		return true
	}
	switch n.Kind {
	case Object, Array:
		return n.Len() == 0
	case String:
		return n.Value == ""
	}
	return false
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{Kind: n.Kind, Value: n.Value}
	switch n.Kind {
	case Array:
		c.Items = make([]*Node, len(n.Items))
		for i, it := range n.Items {
			c.Items[i] = it.Clone()
		}
	case Object:
		c.keys = make([]string, len(n.keys))
		copy(c.keys, n.keys)
		c.fields = make(map[string]*Node, len(n.fields))
		for k, v := range n.fields {
			c.fields[k] = v.Clone()
		}
	}
	return c
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// Parse decodes HuJSON data into a tree.
func Parse(data []byte) (*Node, error) {
	// Standardize rewrites its argument in place.
	std, err := hujson.Standardize(bytes.Clone(data))
	if err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(std))
	dec.UseNumber()

	root, err := decodeValue(dec)
	if err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing JSON: unexpected data after top-level value")
	}
	return root, nil
}

func decodeValue(dec *json.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := NewObject()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("expected string key, got %T", kt)
				}
				v, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			arr := NewArray()
			for dec.More() {
				v, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr.Items = append(arr.Items, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case string:
		return NewString(t), nil
	case json.Number:
		return &Node{Kind: Number, Value: t.String()}, nil
	case bool:
		if t {
			return &Node{Kind: Bool, Value: "true"}, nil
		}
		return &Node{Kind: Bool, Value: "false"}, nil
	case nil:
		return &Node{Kind: Null}, nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

// ---------------------------------------------------------------------------
// Serialization
// ---------------------------------------------------------------------------

// Marshal returns n as strict JSON indented with two spaces, without a
// trailing newline.
func Marshal(n *Node) []byte {
	var buf bytes.Buffer
	writeNode(&buf, n, 0)
	return buf.Bytes()
}

// Quote returns s encoded as a JSON string literal without HTML escaping.
func Quote(s string) string {
	var buf bytes.Buffer
	writeString(&buf, s)
	return buf.String()
}

func writeNode(buf *bytes.Buffer, n *Node, depth int) {
	if n == nil {
		buf.WriteString("null")
		return
	}
	switch n.Kind {
	case Null:
		buf.WriteString("null")
	case Bool, Number:
		buf.WriteString(n.Value)
	case String:
		writeString(buf, n.Value)
	case Array:
		if len(n.Items) == 0 {
			buf.WriteString("[]")
			return
		}
		buf.WriteString("[\n")
		for i, it := range n.Items {
			indent(buf, depth+1)
			writeNode(buf, it, depth+1)
			if i < len(n.Items)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		indent(buf, depth)
		buf.WriteByte(']')
	case Object:
		if len(n.keys) == 0 {
			buf.WriteString("{}")
			return
		}
		buf.WriteString("{\n")
		for i, k := range n.keys {
			indent(buf, depth+1)
			writeString(buf, k)
			buf.WriteString(": ")
			writeNode(buf, n.fields[k], depth+1)
			if i < len(n.keys)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		indent(buf, depth)
		buf.WriteByte('}')
	}
}

func indent(buf *bytes.Buffer, depth int) {
	for i := 0; i < depth; i++ {
		buf.WriteString("  ")
	}
}

func writeString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)
	// Encode appends a newline.
	buf.Truncate(buf.Len() - 1)
}

// Package locale generates default-locale entries from a configuration
// block.
//
// Generate walks a decoded schema document and, for every translatable
// string, either aliases it to an existing dictionary entry with the same
// text (compared ignoring case) or records it as a new entry under the
// document's partition. It returns a patched copy of the tree in which
// those strings are replaced by "t:" references, together with the new
// entries shaped like the dictionary itself.
package locale

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/gosimple/slug"

	"github.com/minios-linux/liquidloc/dictionary"
	"github.com/minios-linux/liquidloc/jsontree"
	"github.com/minios-linux/liquidloc/merge"
	"github.com/minios-linux/liquidloc/schema"
)

// RefPrefix starts every symbolic reference.
const RefPrefix = "t:"

// OptionAttribute names option labels in Policy.AliasAttributes.
const OptionAttribute = "option"

const (
	sectionsRoot = "sections"
	settingsRoot = "settings_schema"
)

// ErrIdentifier reports a document identifier that cannot be used as a
// dictionary key.
var ErrIdentifier = errors.New("invalid document identifier")

// Policy controls which attributes are translated and how aliases are
// formed.
type Policy struct {
	// Attributes lists the translatable setting attributes, in the order
	// they are processed.
	Attributes []string
	// ContentAttribute is the attribute whose new entries advance the
	// ordinal of id-less settings.
	ContentAttribute string
	// AliasRoot is the dotted dictionary path searched for duplicates;
	// empty means the whole dictionary.
	AliasRoot string
	// AliasAttributes lists the attributes that may be aliased. Option
	// labels are named OptionAttribute. An empty list disables aliasing.
	AliasAttributes []string
	// ExternalMarker marks block types supplied by apps; such blocks are
	// skipped entirely.
	ExternalMarker string
	// ReservedGroups lists global settings groups that are never
	// translated.
	ReservedGroups []string
}

// DefaultPolicy returns the policy used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{
		Attributes:       []string{"label", "info", "content"},
		ContentAttribute: "content",
		AliasAttributes:  []string{"label", "info", "content", OptionAttribute},
		ExternalMarker:   "@app",
		ReservedGroups:   []string{"theme_info"},
	}
}

// Result is the outcome of one generation pass.
type Result struct {
	// Key is the dictionary partition of the document, e.g.
	// "sections.header" or "settings_schema".
	Key string
	// Patched is a copy of the input tree with references substituted.
	Patched *jsontree.Node
	// Entries holds the new entries rooted at the dictionary top level.
	Entries *jsontree.Node
	// Created counts new entries; Aliased counts strings pointed at
	// existing entries.
	Created int
	Aliased int
}

// IsReference reports whether s is already a symbolic reference.
func IsReference(s string) bool {
	return strings.HasPrefix(s, RefPrefix)
}

// Reference returns the symbolic reference for a dotted path.
func Reference(path string) string {
	return RefPrefix + path
}

// NormalizeID turns a document identifier (a file name without extension)
// into its dictionary key. Only "section-" files drop a following "main-",
// so main-product and product keep distinct keys.
func NormalizeID(kind schema.Kind, identifier string) string {
	if kind == schema.KindSettings {
		return identifier
	}
	if !strings.HasPrefix(identifier, "section-") {
		return identifier
	}
	id := strings.TrimPrefix(identifier, "section-")
	return strings.TrimPrefix(id, "main-")
}

// GroupKey returns the dictionary key of a global settings group name.
func GroupKey(name string) string {
	if IsReference(name) {
		path := strings.TrimPrefix(name, RefPrefix)
		segs := strings.Split(path, ".")
		if len(segs) >= 2 && segs[0] == settingsRoot {
			return segs[1]
		}
		return ""
	}
	return strings.ReplaceAll(slug.Make(name), "-", "_")
}

// Generate produces the patched tree and new entries for doc. Neither doc
// nor dict is modified.
func Generate(doc schema.Document, identifier string, dict *dictionary.Dictionary, policy Policy) (*Result, error) {
	if dict == nil {
		dict = dictionary.New()
	}
	p := &pass{
		policy:  policy,
		dict:    dict,
		ordinal: 1,
	}

	switch d := doc.(type) {
	case *schema.Section:
		return p.section(d, identifier)
	case *schema.SettingsSchema:
		return p.settingsSchema(d)
	}
	return nil, fmt.Errorf("unsupported document %T", doc)
}

// pass carries the state of one Generate call.
type pass struct {
	policy  Policy
	dict    *dictionary.Dictionary
	ordinal int
	created int
	aliased int
}

func (p *pass) section(d *schema.Section, identifier string) (*Result, error) {
	key := NormalizeID(schema.KindSection, identifier)
	if key == "" || strings.ContainsAny(key, ". ") {
		return nil, fmt.Errorf("%w: %q", ErrIdentifier, identifier)
	}
	base := sectionsRoot + "." + key

	// Work on a private copy so the caller's document stays untouched.
	s, err := schema.Decode(schema.KindSection, d.Tree().Clone())
	if err != nil {
		return nil, err
	}
	patched := s.(*schema.Section)
	entry := jsontree.NewObject()

	if p.name(patched.Tree(), entry, base) {
		if presets := patched.Presets(); len(presets) > 0 && presets[0].Has("name") {
			presets[0].Set("name", patched.Tree().Get("name").Clone())
		}
	}

	for _, setting := range patched.Settings() {
		p.setting(setting, entry.Child("settings"), base)
	}

	for _, block := range patched.Blocks() {
		btype, _ := block.Get("type").Str()
		if btype == "" || p.external(btype) {
			continue
		}
		blockEntry := entry.Child("blocks").Child(btype)
		blockBase := base + ".blocks." + btype
		p.name(block, blockEntry, blockBase)
		for _, setting := range objectsOf(block.Get("settings")) {
			p.setting(setting, blockEntry.Child("settings"), blockBase)
		}
	}

	return p.result(base, patched.Tree(), sectionsRoot, key, entry), nil
}

func (p *pass) settingsSchema(d *schema.SettingsSchema) (*Result, error) {
	s, err := schema.Decode(schema.KindSettings, d.Tree().Clone())
	if err != nil {
		return nil, err
	}
	patched := s.(*schema.SettingsSchema)
	entry := jsontree.NewObject()

	for _, group := range patched.Groups() {
		name, _ := group.Get("name").Str()
		key := GroupKey(name)
		if key == "" || p.reserved(name) || p.reserved(key) {
			continue
		}
		groupEntry := entry.Child(key)
		groupBase := settingsRoot + "." + key
		p.name(group, groupEntry, groupBase)
		for _, setting := range objectsOf(group.Get("settings")) {
			p.setting(setting, groupEntry.Child("settings"), groupBase)
		}
	}

	return p.result(settingsRoot, patched.Tree(), settingsRoot, "", entry), nil
}

func (p *pass) result(key string, patched *jsontree.Node, root, sub string, entry *jsontree.Node) *Result {
	entries := jsontree.NewObject()
	if pruned := merge.Prune(entry); pruned != nil {
		if sub == "" {
			entries.Set(root, pruned)
		} else {
			entries.Child(root).Set(sub, pruned)
		}
	}
	return &Result{
		Key:     key,
		Patched: patched,
		Entries: entries,
		Created: p.created,
		Aliased: p.aliased,
	}
}

// name records holder's display name as a new entry. Names are never
// aliased. It reports whether the name was rewritten.
func (p *pass) name(holder, entry *jsontree.Node, base string) bool {
	v, ok := holder.Get("name").Str()
	if !ok || v == "" || IsReference(v) {
		return false
	}
	entry.Set("name", jsontree.NewString(v))
	holder.Set("name", jsontree.NewString(Reference(base+".name")))
	p.created++
	return true
}

// setting translates the attributes and option labels of one setting.
func (p *pass) setting(setting, settingsEntry *jsontree.Node, base string) {
	id, hasID := setting.Get("id").Str()
	if !hasID || id == "" {
		typ, _ := setting.Get("type").Str()
		if typ == "" {
			typ = "setting"
		}
		id = typ + "__" + strconv.Itoa(p.ordinal)
		hasID = false
	}
	entry := settingsEntry.Child(id)
	if entry == nil {
		// id collides with a non-object entry; leave the setting alone.
		return
	}
	prefix := base + ".settings." + id

	recorded, content := false, false
	for _, attr := range p.policy.Attributes {
		if p.translate(setting, attr, attr, entry, attr, prefix+"."+attr) {
			recorded = true
			if attr == p.policy.ContentAttribute {
				content = true
			}
		}
	}

	if options := setting.Get("options"); options != nil && options.Kind == jsontree.Array {
		for i, option := range options.Items {
			if option.Kind != jsontree.Object {
				continue
			}
			label, ok := option.Get("label").Str()
			if !ok || numeric(label) {
				continue
			}
			optKey := "options__" + strconv.Itoa(i+1)
			if p.translate(option, "label", OptionAttribute, entry.Child(optKey), "label", prefix+"."+optKey+".label") {
				recorded = true
			}
		}
	}

	if content || (!hasID && recorded) {
		p.ordinal++
	}
}

// translate handles holder[field]: an existing reference or empty value is
// left alone, a duplicate of a dictionary string becomes an alias, anything
// else is recorded as entry[entryKey] and replaced by a reference to path.
// It reports whether a new entry was recorded.
func (p *pass) translate(holder *jsontree.Node, field, kind string, entry *jsontree.Node, entryKey, path string) bool {
	v, ok := holder.Get(field).Str()
	if !ok || v == "" || IsReference(v) {
		return false
	}

	if slices.Contains(p.policy.AliasAttributes, kind) {
		if alias, found := p.dict.FindLabel(p.policy.AliasRoot, v); found {
			holder.Set(field, jsontree.NewString(Reference(alias)))
			p.aliased++
			return false
		}
	}

	entry.Set(entryKey, jsontree.NewString(v))
	holder.Set(field, jsontree.NewString(Reference(path)))
	p.created++
	return true
}

func (p *pass) external(blockType string) bool {
	return p.policy.ExternalMarker != "" && strings.Contains(blockType, p.policy.ExternalMarker)
}

func (p *pass) reserved(name string) bool {
	return slices.Contains(p.policy.ReservedGroups, name)
}

func numeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func objectsOf(n *jsontree.Node) []*jsontree.Node {
	if n == nil || n.Kind != jsontree.Array {
		return nil
	}
	var out []*jsontree.Node
	for _, it := range n.Items {
		if it.Kind == jsontree.Object {
			out = append(out, it)
		}
	}
	return out
}

// Package config implements .liquidloc.yaml project configuration and
// detection of the locale files that live next to the default dictionary.
//
// The configuration file is optional: without it every setting takes its
// default, which matches the standard theme layout:
//
//	dictionary: locales/en.default.schema.json
//	sections_dir: sections
//	settings_schema: config/settings_schema.json
//	generation:
//	  attributes: [label, info, content]
//	  content_attribute: content
//	  alias_root: ""
//	  alias_attributes: [label, info, content, option]
//	  external_block_marker: "@app"
//	  reserved_groups: [theme_info]
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/minios-linux/liquidloc/locale"
)

// FileName is the configuration file name.
const FileName = ".liquidloc.yaml"

// Defaults.
const (
	DefaultDictionary     = "locales/en.default.schema.json"
	DefaultSectionsDir    = "sections"
	DefaultSettingsSchema = "config/settings_schema.json"
)

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// File is the top-level .liquidloc.yaml structure.
type File struct {
	// Dictionary is the default-locale dictionary, relative to the root.
	Dictionary string `yaml:"dictionary,omitempty"`
	// SectionsDir holds the section templates processed by sync.
	SectionsDir string `yaml:"sections_dir,omitempty"`
	// SettingsSchema is the global settings document.
	SettingsSchema string `yaml:"settings_schema,omitempty"`
	// Generation tunes the locale generator.
	Generation Generation `yaml:"generation,omitempty"`
}

// Generation mirrors locale.Policy. A nil list takes the default; an
// explicit empty list is kept.
type Generation struct {
	Attributes          []string `yaml:"attributes,omitempty"`
	ContentAttribute    string   `yaml:"content_attribute,omitempty"`
	AliasRoot           string   `yaml:"alias_root,omitempty"`
	AliasAttributes     []string `yaml:"alias_attributes,omitempty"`
	ExternalBlockMarker string   `yaml:"external_block_marker,omitempty"`
	ReservedGroups      []string `yaml:"reserved_groups,omitempty"`
}

var knownKeys = map[string][]string{
	"": {"dictionary", "sections_dir", "settings_schema", "generation"},
	"generation": {"attributes", "content_attribute", "alias_root", "alias_attributes",
		"external_block_marker", "reserved_groups"},
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Default returns the configuration used when no file exists.
func Default() *File {
	f := &File{}
	f.applyDefaults()
	return f
}

// Load reads and validates .liquidloc.yaml from rootDir. A missing file
// yields the defaults.
func Load(rootDir string) (*File, error) {
	path := filepath.Join(rootDir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes, defaults and validates configuration data.
func Parse(data []byte) (*File, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}
	var f File
	if len(doc.Content) > 0 {
		if err := checkKeys(doc.Content[0], ""); err != nil {
			return nil, err
		}
		if err := doc.Decode(&f); err != nil {
			return nil, fmt.Errorf("parsing: %w", err)
		}
	}
	f.applyDefaults()
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// checkKeys rejects mapping keys the configuration does not know.
func checkKeys(n *yaml.Node, section string) error {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		if section == "" {
			return fmt.Errorf("top level must be a mapping")
		}
		return fmt.Errorf("%q must be a mapping", section)
	}
	allowed := knownKeys[section]
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		if !slices.Contains(allowed, key) {
			if section != "" {
				key = section + "." + key
			}
			return fmt.Errorf("line %d: unsupported key %q", n.Content[i].Line, key)
		}
		if _, nested := knownKeys[key]; nested && section == "" {
			if err := checkKeys(n.Content[i+1], key); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f *File) applyDefaults() {
	if f.Dictionary == "" {
		f.Dictionary = DefaultDictionary
	}
	if f.SectionsDir == "" {
		f.SectionsDir = DefaultSectionsDir
	}
	if f.SettingsSchema == "" {
		f.SettingsSchema = DefaultSettingsSchema
	}

	def := locale.DefaultPolicy()
	g := &f.Generation
	if g.Attributes == nil {
		g.Attributes = def.Attributes
	}
	if g.ContentAttribute == "" {
		g.ContentAttribute = def.ContentAttribute
	}
	if g.AliasAttributes == nil {
		g.AliasAttributes = def.AliasAttributes
	}
	if g.ExternalBlockMarker == "" {
		g.ExternalBlockMarker = def.ExternalMarker
	}
	if g.ReservedGroups == nil {
		g.ReservedGroups = def.ReservedGroups
	}
}

func (f *File) validate() error {
	for key, p := range map[string]string{
		"dictionary":      f.Dictionary,
		"sections_dir":    f.SectionsDir,
		"settings_schema": f.SettingsSchema,
	} {
		if filepath.IsAbs(p) {
			return fmt.Errorf("%s must be relative to the project root, got %q", key, p)
		}
	}
	if !strings.HasSuffix(f.Dictionary, ".json") {
		return fmt.Errorf("dictionary must be a .json file, got %q", f.Dictionary)
	}

	g := f.Generation
	if len(g.Attributes) == 0 {
		return fmt.Errorf("generation.attributes must not be empty")
	}
	if !slices.Contains(g.Attributes, g.ContentAttribute) {
		return fmt.Errorf("generation.content_attribute %q is not listed in generation.attributes", g.ContentAttribute)
	}
	if g.AliasRoot != "" {
		for _, seg := range strings.Split(g.AliasRoot, ".") {
			if seg == "" {
				return fmt.Errorf("generation.alias_root %q has an empty segment", g.AliasRoot)
			}
		}
	}
	for _, a := range g.AliasAttributes {
		if a != locale.OptionAttribute && !slices.Contains(g.Attributes, a) {
			return fmt.Errorf("generation.alias_attributes: %q is neither a translated attribute nor %q", a, locale.OptionAttribute)
		}
	}
	return nil
}

// Policy returns the generator policy described by the configuration.
func (f *File) Policy() locale.Policy {
	g := f.Generation
	return locale.Policy{
		Attributes:       slices.Clone(g.Attributes),
		ContentAttribute: g.ContentAttribute,
		AliasRoot:        g.AliasRoot,
		AliasAttributes:  slices.Clone(g.AliasAttributes),
		ExternalMarker:   g.ExternalBlockMarker,
		ReservedGroups:   slices.Clone(g.ReservedGroups),
	}
}

// ---------------------------------------------------------------------------
// Paths
// ---------------------------------------------------------------------------

// DictionaryPath returns the absolute dictionary path under root.
func (f *File) DictionaryPath(root string) string {
	return filepath.Join(root, f.Dictionary)
}

// SectionsPath returns the absolute sections directory under root.
func (f *File) SectionsPath(root string) string {
	return filepath.Join(root, f.SectionsDir)
}

// SettingsSchemaPath returns the absolute global settings path under root.
func (f *File) SettingsSchemaPath(root string) string {
	return filepath.Join(root, f.SettingsSchema)
}

// ---------------------------------------------------------------------------
// Locale detection
// ---------------------------------------------------------------------------

// LocaleFile is a schema locale found next to the dictionary.
type LocaleFile struct {
	Lang    string
	Path    string
	Default bool
}

// DetectLocales finds <lang>.schema.json and <lang>.default.schema.json files
// in dir, sorted by language code.
func DetectLocales(dir string) []LocaleFile {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var out []LocaleFile
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".schema.json") {
			continue
		}
		lang := strings.TrimSuffix(name, ".schema.json")
		def := false
		if l, ok := strings.CutSuffix(lang, ".default"); ok {
			lang, def = l, true
		}
		if !isLangCode(lang) {
			continue
		}
		out = append(out, LocaleFile{Lang: lang, Path: filepath.Join(dir, name), Default: def})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Lang < out[j].Lang })
	return out
}

// isLangCode checks if a string looks like a locale code: en, de, pt-BR,
// zh-TW.
func isLangCode(s string) bool {
	lower := func(b byte) bool { return b >= 'a' && b <= 'z' }
	if len(s) == 2 {
		return lower(s[0]) && lower(s[1])
	}
	parts := strings.SplitN(s, "-", 2)
	if len(parts) == 2 && len(parts[0]) == 2 && len(parts[1]) >= 2 {
		return lower(parts[0][0]) && lower(parts[0][1])
	}
	return false
}

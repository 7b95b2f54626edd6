package resolver

import (
	"errors"
	"strings"
	"testing"

	"github.com/minios-linux/liquidloc/dictionary"
	"github.com/minios-linux/liquidloc/jsontree"
	"github.com/minios-linux/liquidloc/locale"
	"github.com/minios-linux/liquidloc/merge"
	"github.com/minios-linux/liquidloc/schema"
)

const dictText = `{
  "sections": {
    "header": {
      "blocks": {
        "slide": {
          "settings": {
            "color": { "label": "Slide color" }
          }
        }
      },
      "settings": {
        "color": {
          "label": "Background color",
          "info": "Shown behind the logo"
        }
      }
    }
  }
}
`

func newResolver(t *testing.T, text string) *Resolver {
	t.Helper()
	r, err := New([]byte(text))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	return r
}

func TestResolveLines(t *testing.T) {
	r := newResolver(t, dictText)
	tests := []struct {
		path  string
		line  int
		value string
	}{
		{"sections", 2, ""},
		{"sections.header.settings", 11, ""},
		{"sections.header.settings.color.label", 13, "Background color"},
		{"sections.header.blocks.slide.settings.color.label", 7, "Slide color"},
		{"sections.header.settings.color.info", 14, "Shown behind the logo"},
	}
	for _, tc := range tests {
		loc, err := r.Resolve(tc.path)
		if err != nil {
			t.Errorf("Resolve(%q) error: %v", tc.path, err)
			continue
		}
		if loc.Line != tc.line || loc.Value != tc.value {
			t.Errorf("Resolve(%q) = %+v, want line %d value %q", tc.path, loc, tc.line, tc.value)
		}
	}
}

func TestResolveSameLineKeys(t *testing.T) {
	r := newResolver(t, `{"a": {"b": "x", "c": {"b": "nested"}, "d": "y"}}`)
	for _, path := range []string{"a.b", "a.c.b", "a.d"} {
		loc, err := r.Resolve(path)
		if err != nil || loc.Line != 1 {
			t.Errorf("Resolve(%q) = %+v, %v; want line 1", path, loc, err)
		}
	}
}

func TestResolveSkipsCommentsAndEscapes(t *testing.T) {
	text := `{
  // "b": "commented out"
  /* "b": { */
  "say \"hi\"": "quoted",
  "b": "real"
}`
	r := newResolver(t, text)
	loc, err := r.Resolve("b")
	if err != nil {
		t.Fatal(err)
	}
	if loc.Line != 5 {
		t.Fatalf("Resolve(b).Line = %d, want 5", loc.Line)
	}
}

func TestResolveNotFound(t *testing.T) {
	r := newResolver(t, dictText)
	for _, path := range []string{"", "sections.footer.name", "sections..header", "sections.header.settings.color.label.extra"} {
		if _, err := r.Resolve(path); !errors.Is(err, ErrNotFound) {
			t.Errorf("Resolve(%q) error = %v, want ErrNotFound", path, err)
		}
	}
}

func TestResolveCaching(t *testing.T) {
	r := newResolver(t, dictText)

	if _, err := r.Resolve("sections.header.settings.color.label"); err != nil {
		t.Fatal(err)
	}
	cold := r.Stats().Scanned
	if cold == 0 {
		t.Fatal("cold lookup scanned nothing")
	}

	if _, err := r.Resolve("sections.header.settings.color.label"); err != nil {
		t.Fatal(err)
	}
	if got := r.Stats(); got.Hits != 1 || got.Scanned != cold {
		t.Fatalf("after exact hit Stats = %+v, want 1 hit and no extra scanning", got)
	}

	if _, err := r.Resolve("sections.header.settings.color.info"); err != nil {
		t.Fatal(err)
	}
	if warm := r.Stats().Scanned - cold; warm >= cold {
		t.Fatalf("warm lookup scanned %d bytes, cold scanned %d", warm, cold)
	}

	exact, prefix := r.Cache().Len()
	if exact != 2 || prefix != 6 {
		t.Fatalf("cache sizes = %d, %d; want 2, 6", exact, prefix)
	}
}

func TestCacheBestIsSegmentWise(t *testing.T) {
	c := NewCache()
	c.Mark("sections", Mark{Line: 2, KeyIndex: 1, Offset: 10})
	c.Mark("sections.head", Mark{Line: 50, KeyIndex: 2, Offset: 900})
	c.Mark("sections.header", Mark{Line: 3, KeyIndex: 2, Offset: 30})

	m, ok := c.Best("sections.header.name")
	if !ok || m.Offset != 30 {
		t.Fatalf("Best = %+v, %v; want sections.header mark", m, ok)
	}
	if _, ok := c.Best("settings_schema.colors"); ok {
		t.Fatal("Best should find nothing for an unrelated path")
	}

	c.Mark("sections", Mark{Line: 99, KeyIndex: 1, Offset: 999})
	if m, _ := c.Best("sections.x"); m.Line != 2 {
		t.Fatalf("Mark overwrote an existing prefix: %+v", m)
	}
}

func TestGeneratedReferencesResolveAfterMerge(t *testing.T) {
	existing, err := dictionary.Parse([]byte(`{"sections": {"all": {"heading": "Heading"}}}`))
	if err != nil {
		t.Fatal(err)
	}
	tree, err := jsontree.Parse([]byte(`{
  "name": "Slideshow",
  "settings": [
    {"type": "header", "content": "Heading"},
    {"type": "header", "content": "Layout"},
    {"id": "align", "type": "select", "label": "Alignment",
     "options": [{"value": "l", "label": "Left"}, {"value": "r", "label": "Right"}]}
  ],
  "blocks": [{"type": "slide", "name": "Slide", "settings": [{"id": "image", "label": "Image"}]}]
}`))
	if err != nil {
		t.Fatal(err)
	}
	doc, err := schema.Decode(schema.KindSection, tree)
	if err != nil {
		t.Fatal(err)
	}
	res, err := locale.Generate(doc, "section-slideshow", existing, locale.DefaultPolicy())
	if err != nil {
		t.Fatal(err)
	}

	merged := &dictionary.Dictionary{Root: merge.Merge(existing.Root, res.Entries)}
	text := string(merged.Marshal())
	r := newResolver(t, text)
	lines := strings.Split(text, "\n")

	refs := FindReferences(string(jsontree.Marshal(res.Patched)))
	if len(refs) != 8 {
		t.Fatalf("found %d references, want 8", len(refs))
	}
	for _, ref := range refs {
		loc, err := r.Resolve(ref.Path)
		if err != nil {
			t.Errorf("Resolve(%q) error: %v", ref.Path, err)
			continue
		}
		segs := strings.Split(ref.Path, ".")
		last := jsontree.Quote(segs[len(segs)-1]) + ":"
		if !strings.Contains(lines[loc.Line-1], last) {
			t.Errorf("Resolve(%q) line %d = %q, missing %s", ref.Path, loc.Line, lines[loc.Line-1], last)
		}
	}
}

package resolver

import (
	"errors"
	"fmt"
	"regexp"
	"unicode/utf8"
)

// refPattern matches a quoted symbolic reference; group 1 is the path.
var refPattern = regexp.MustCompile(`"t:([A-Za-z0-9_-]+(?:\.[A-Za-z0-9_-]+)*)"`)

// Reference is a symbolic reference found in a document. Start and End are
// byte offsets of the path, without the "t: prefix and closing quote.
type Reference struct {
	Path       string
	Start, End int
}

// FindReferences returns the references in text in order of appearance.
func FindReferences(text string) []Reference {
	var refs []Reference
	for _, m := range refPattern.FindAllStringSubmatchIndex(text, -1) {
		refs = append(refs, Reference{
			Path:  text[m[2]:m[3]],
			Start: m[2],
			End:   m[3],
		})
	}
	return refs
}

// Link is a navigable reference.
type Link struct {
	Reference
	Resolved bool
	// Line is the defining line in the dictionary (1-based), 0 when
	// unresolved.
	Line int
	// Target is "<dictionary path>#L<line>".
	Target  string
	Tooltip string
}

// Provider produces links from document text to a dictionary file.
type Provider struct {
	// DictionaryPath is used to build link targets.
	DictionaryPath string
}

// Links resolves every reference in document against dictionaryText with a
// fresh Resolver. A reference that cannot be resolved yields an unresolved
// link and does not stop the others.
func (p *Provider) Links(document string, dictionaryText []byte) ([]Link, Stats, error) {
	r, err := New(dictionaryText)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("loading dictionary %s: %w", p.DictionaryPath, err)
	}

	refs := FindReferences(document)
	links := make([]Link, 0, len(refs))
	for _, ref := range refs {
		link := Link{Reference: ref}
		loc, err := r.Resolve(ref.Path)
		switch {
		case errors.Is(err, ErrNotFound):
			link.Tooltip = "unresolved: " + ref.Path
		case err != nil:
			return nil, r.Stats(), err
		default:
			link.Resolved = true
			link.Line = loc.Line
			link.Target = fmt.Sprintf("%s#L%d", p.DictionaryPath, loc.Line)
			link.Tooltip = loc.Value
			if link.Tooltip == "" {
				link.Tooltip = ref.Path
			}
		}
		links = append(links, link)
	}
	return links, r.Stats(), nil
}

// Position converts a byte offset in text to a 1-based line and column.
// Columns count runes.
func Position(text string, offset int) (line, col int) {
	if offset > len(text) {
		offset = len(text)
	}
	line, lineStart := 1, 0
	for i := 0; i < offset; i++ {
		if text[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	return line, utf8.RuneCountInString(text[lineStart:offset]) + 1
}

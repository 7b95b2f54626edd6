package workspace

import (
	"fmt"
	"os"
	"strings"

	"github.com/minios-linux/liquidloc/locale"
	"github.com/minios-linux/liquidloc/resolver"
)

// Links resolves every "t:" reference in the document at path against the
// current dictionary.
func (w *Workspace) Links(path string) ([]resolver.Link, error) {
	path = w.abs(path)
	doc, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	dictText, err := w.dictionaryText()
	if err != nil {
		return nil, err
	}

	p := &resolver.Provider{DictionaryPath: w.rel(w.DictionaryPath())}
	links, stats, err := p.Links(string(doc), dictText)
	if err != nil {
		return nil, err
	}
	w.log.Debug("resolved links", "file", w.rel(path), "links", len(links),
		"cached", stats.Hits, "scanned", stats.Scanned)
	return links, nil
}

// Resolve resolves a single reference, with or without its "t:" prefix.
func (w *Workspace) Resolve(ref string) (resolver.Location, error) {
	path := strings.TrimPrefix(strings.Trim(ref, `"`), locale.RefPrefix)
	dictText, err := w.dictionaryText()
	if err != nil {
		return resolver.Location{}, err
	}
	r, err := resolver.New(dictText)
	if err != nil {
		return resolver.Location{}, fmt.Errorf("%s: %w", w.rel(w.DictionaryPath()), err)
	}
	return r.Resolve(path)
}

func (w *Workspace) dictionaryText() ([]byte, error) {
	data, err := readOptional(w.DictionaryPath())
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", w.DictionaryPath(), err)
	}
	return data, nil
}

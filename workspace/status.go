package workspace

import (
	"path/filepath"

	"github.com/minios-linux/liquidloc/config"
	"github.com/minios-linux/liquidloc/dictionary"
	"github.com/minios-linux/liquidloc/langmeta"
)

// Status describes the dictionary and its sibling locale files.
type Status struct {
	Dictionary string
	Exists     bool
	// Leaves counts string entries; Translated counts the non-empty ones.
	Leaves     int
	Translated int
	Partitions []string
	Sections   int
	Documents  int
	Locales    []LocaleStatus
}

// LocaleStatus is the coverage of one locale file: how many of the default
// dictionary's entries it translates.
type LocaleStatus struct {
	Lang       string
	Meta       langmeta.Meta
	Path       string
	Default    bool
	Total      int
	Translated int
	Err        error
}

// Percent returns the translated share, 0-100.
func (l LocaleStatus) Percent() int {
	if l.Total == 0 {
		return 0
	}
	return l.Translated * 100 / l.Total
}

// Status reads the dictionary and every locale file next to it.
func (w *Workspace) Status() (*Status, error) {
	dictPath := w.DictionaryPath()
	st := &Status{Dictionary: w.rel(dictPath), Exists: fileExists(dictPath)}

	dict, err := dictionary.ParseFile(dictPath)
	if err != nil {
		return nil, err
	}
	st.Leaves, st.Translated = dict.Stats()
	st.Partitions = dict.Root.Keys()
	st.Sections = dict.Lookup("sections").Len()

	if docs, err := w.Documents(); err == nil {
		st.Documents = len(docs)
	}

	leaves := dict.Leaves()
	for _, lf := range config.DetectLocales(filepath.Dir(dictPath)) {
		ls := LocaleStatus{
			Lang:    lf.Lang,
			Meta:    langmeta.Resolve(lf.Lang),
			Path:    w.rel(lf.Path),
			Default: lf.Default,
			Total:   len(leaves),
		}
		if filepath.Clean(lf.Path) == filepath.Clean(dictPath) {
			ls.Translated = st.Translated
			st.Locales = append(st.Locales, ls)
			continue
		}
		other, err := dictionary.ParseFile(lf.Path)
		if err != nil {
			ls.Err = err
			st.Locales = append(st.Locales, ls)
			continue
		}
		for _, path := range leaves {
			if v, ok := other.Value(path); ok && v != "" {
				ls.Translated++
			}
		}
		st.Locales = append(st.Locales, ls)
	}
	return st, nil
}

// Package workspace ties the liquidloc components to a theme directory on
// disk: it finds the project root, reads documents and the dictionary, runs
// extraction, generation and merging, and writes the results back.
//
// Every operation re-reads its inputs from disk, so a failed run never
// leaves stale state behind for the next one.
package workspace

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/minios-linux/liquidloc/config"
	"github.com/minios-linux/liquidloc/dictionary"
	"github.com/minios-linux/liquidloc/jsontree"
	"github.com/minios-linux/liquidloc/locale"
	"github.com/minios-linux/liquidloc/logging"
	"github.com/minios-linux/liquidloc/merge"
	"github.com/minios-linux/liquidloc/schema"
)

// Workspace is an opened theme directory.
type Workspace struct {
	Root   string
	Config *config.File
	log    *slog.Logger
}

// Open returns a workspace rooted at root. A nil cfg is loaded from the
// root's .liquidloc.yaml; a nil logger discards output.
func Open(root string, cfg *config.File, log *slog.Logger) (*Workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	}
	if fi, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("opening workspace: %w", err)
	} else if !fi.IsDir() {
		return nil, fmt.Errorf("opening workspace: %s is not a directory", abs)
	}
	if cfg == nil {
		if cfg, err = config.Load(abs); err != nil {
			return nil, err
		}
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Workspace{Root: abs, Config: cfg, log: log}, nil
}

// FindRoot locates the project root for start, a document or directory.
// It walks up to the first directory holding .liquidloc.yaml or a locales
// directory with the default dictionary. Without a match, a file's root is
// two levels above it (sections/header.liquid -> .) and a directory is its
// own root.
func FindRoot(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", start, err)
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("finding project root: %w", err)
	}
	dir := abs
	if !fi.IsDir() {
		dir = filepath.Dir(abs)
	}

	for d := dir; ; {
		if fileExists(filepath.Join(d, config.FileName)) ||
			fileExists(filepath.Join(d, filepath.FromSlash(config.DefaultDictionary))) {
			return d, nil
		}
		parent := filepath.Dir(d)
		if parent == d {
			break
		}
		d = parent
	}

	if fi.IsDir() {
		return abs, nil
	}
	return filepath.Dir(dir), nil
}

// DocumentID returns the identifier of the document at path: its file name
// without extension.
func DocumentID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// DictionaryPath returns the absolute path of the default dictionary.
func (w *Workspace) DictionaryPath() string {
	return w.Config.DictionaryPath(w.Root)
}

// rel returns path relative to the root, for logs and lock keys.
func (w *Workspace) rel(path string) string {
	if r, err := filepath.Rel(w.Root, path); err == nil && !strings.HasPrefix(r, "..") {
		return filepath.ToSlash(r)
	}
	return path
}

func (w *Workspace) abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(w.Root, path)
}

// ---------------------------------------------------------------------------
// translate
// ---------------------------------------------------------------------------

// TranslateOptions controls Translate.
type TranslateOptions struct {
	// DryRun computes everything but writes nothing.
	DryRun bool
}

// Outcome describes one translate run.
type Outcome struct {
	Path string
	ID   string
	// Key is the dictionary partition, e.g. "sections.header".
	Key     string
	Created int
	Aliased int
	// Block is the patched configuration block.
	Block string
	// Entries are the new entries before merging.
	Entries *jsontree.Node
	// DictionaryChanged and DocumentChanged report what was (or, in a dry
	// run, would be) written.
	DictionaryChanged bool
	DocumentChanged   bool
	// Interior is the document's block interior after the run.
	Interior string
}

// Translate extracts the configuration block of the document at path,
// generates entries for it, merges them into the dictionary and replaces
// the block with its patched form. The dictionary is written before the
// document.
func (w *Workspace) Translate(path string, opts TranslateOptions) (*Outcome, error) {
	path = w.abs(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return w.translate(path, string(data), opts)
}

func (w *Workspace) translate(path, text string, opts TranslateOptions) (*Outcome, error) {
	id := DocumentID(path)
	kind := schema.KindFor(id)

	block, err := schema.Extract(kind, text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", w.rel(path), err)
	}
	doc, err := block.Document()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", w.rel(path), err)
	}

	dictPath := w.DictionaryPath()
	raw, err := readOptional(dictPath)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", dictionary.ErrPersistence, dictPath, err)
	}
	dict, err := dictionary.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", w.rel(dictPath), err)
	}

	res, err := locale.Generate(doc, id, dict, w.Config.Policy())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", w.rel(path), err)
	}
	merged := &dictionary.Dictionary{Root: merge.Merge(dict.Root, res.Entries)}
	newText := block.Replace(text, res.Patched)

	out := &Outcome{
		Path:              path,
		ID:                id,
		Key:               res.Key,
		Created:           res.Created,
		Aliased:           res.Aliased,
		Block:             string(jsontree.Marshal(res.Patched)),
		Entries:           res.Entries,
		DictionaryChanged: string(merged.Marshal()) != string(raw),
		DocumentChanged:   newText != text,
		Interior:          block.Interior(text),
	}
	w.log.Debug("generated entries",
		"file", w.rel(path), "key", res.Key, "created", res.Created, "aliased", res.Aliased)

	if opts.DryRun {
		return out, nil
	}

	if out.DictionaryChanged {
		if err := merged.WriteFile(dictPath); err != nil {
			return nil, err
		}
		w.log.Debug("wrote dictionary", "file", w.rel(dictPath))
	}
	if out.DocumentChanged {
		if err := writeFileAtomic(path, []byte(newText)); err != nil {
			return nil, fmt.Errorf("writing %s: %w", w.rel(path), err)
		}
		w.log.Debug("wrote document", "file", w.rel(path))
	}

	if after, err := schema.Extract(kind, newText); err == nil {
		out.Interior = after.Interior(newText)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// File helpers
// ---------------------------------------------------------------------------

func fileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}

// readOptional reads path; a missing file reads as empty.
func readOptional(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

// writeFileAtomic replaces path through a temporary file in the same
// directory, keeping the original permissions.
func writeFileAtomic(path string, data []byte) error {
	mode := os.FileMode(0644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), mode); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

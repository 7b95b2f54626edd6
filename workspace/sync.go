package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/minios-linux/liquidloc/lockfile"
	"github.com/minios-linux/liquidloc/schema"
)

// SyncReport summarizes a sync run. Each slice holds root-relative paths.
type SyncReport struct {
	Translated []string
	Unchanged  []string
	// Skipped documents have no schema block.
	Skipped []string
	Failed  []string
	Created int
	Aliased int
}

// Documents returns the documents sync processes: every *.liquid template in
// the sections directory, sorted, followed by the global settings schema
// when it exists.
func (w *Workspace) Documents() ([]string, error) {
	dir := w.Config.SectionsPath(w.Root)
	matches, err := filepath.Glob(filepath.Join(dir, "*.liquid"))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	sort.Strings(matches)
	if settings := w.Config.SettingsSchemaPath(w.Root); fileExists(settings) {
		matches = append(matches, settings)
	}
	return matches, nil
}

// Sync translates every document in turn, each as an independent run.
// Documents whose schema block is unchanged since the last sync are skipped
// unless force is set. Failures do not stop the run; they are joined into
// the returned error.
func (w *Workspace) Sync(force bool) (*SyncReport, error) {
	docs, err := w.Documents()
	if err != nil {
		return nil, err
	}
	lock, err := lockfile.Load(w.Root)
	if err != nil {
		return nil, err
	}
	fp, err := lockfile.Fingerprint(w.Config)
	if err != nil {
		return nil, err
	}
	if lock.UseSettings(fp) {
		w.log.Info("configuration changed, reprocessing all documents")
	}

	report := &SyncReport{}
	var errs []error
	var keys []string

	for _, path := range docs {
		rel := w.rel(path)
		key := lockfile.DocumentKey(rel)
		keys = append(keys, key)

		data, err := os.ReadFile(path)
		if err != nil {
			report.Failed = append(report.Failed, rel)
			errs = append(errs, fmt.Errorf("reading %s: %w", rel, err))
			continue
		}
		text := string(data)

		block, err := schema.Extract(schema.KindFor(DocumentID(path)), text)
		switch {
		case errors.Is(err, schema.ErrNotFound):
			w.log.Warn("no schema block", "file", rel, "err", err)
			report.Skipped = append(report.Skipped, rel)
			continue
		case err != nil:
			report.Failed = append(report.Failed, rel)
			errs = append(errs, fmt.Errorf("%s: %w", rel, err))
			continue
		}
		if !force && !lock.IsChanged(key, block.Interior(text)) {
			w.log.Debug("unchanged", "file", rel)
			report.Unchanged = append(report.Unchanged, rel)
			continue
		}

		out, err := w.translate(path, text, TranslateOptions{})
		if err != nil {
			w.log.Error("translate failed", "file", rel, "err", err)
			report.Failed = append(report.Failed, rel)
			errs = append(errs, err)
			continue
		}
		lock.Update(key, out.Interior)
		report.Translated = append(report.Translated, rel)
		report.Created += out.Created
		report.Aliased += out.Aliased
	}

	lock.Clean(keys)
	if err := lock.Save(); err != nil {
		errs = append(errs, err)
	}
	return report, errors.Join(errs...)
}

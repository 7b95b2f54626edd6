// Package lockfile implements liquidloc.lock, which records what the last
// sync saw: an MD5 of every processed schema block and a fingerprint of the
// generation settings in effect. A document is skipped on the next sync only
// if both still match.
//
// The lock file is stored at the project root next to .liquidloc.yaml.
package lockfile

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// LockFileName is the default lock file name.
const LockFileName = "liquidloc.lock"

// Version is the lock file format version.
const Version = 1

// LockFile is the parsed liquidloc.lock.
type LockFile struct {
	Version int `yaml:"version"`
	// Settings fingerprints the generation settings the checksums were
	// recorded under.
	Settings string `yaml:"settings,omitempty"`
	// Checksums maps a document key to the MD5 of its schema block.
	Checksums map[string]string `yaml:"checksums"`

	mu   sync.Mutex
	path string
}

// Load reads the lock file in dir. A missing file yields an empty lock.
func Load(dir string) (*LockFile, error) {
	path := filepath.Join(dir, LockFileName)
	lf := &LockFile{Version: Version, Checksums: make(map[string]string), path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return lf, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, lf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if lf.Version > Version {
		return nil, fmt.Errorf("%s: unsupported lock file version %d", path, lf.Version)
	}
	if lf.Checksums == nil {
		lf.Checksums = make(map[string]string)
	}
	return lf, nil
}

// Save writes the lock file back to where it was loaded from.
func (lf *LockFile) Save() error {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	if lf.path == "" {
		return fmt.Errorf("lock file path not set")
	}
	lf.Version = Version
	data, err := yaml.Marshal(lf)
	if err != nil {
		return fmt.Errorf("marshaling lock file: %w", err)
	}
	if err := os.WriteFile(lf.path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", lf.path, err)
	}
	return nil
}

// Path returns the lock file path.
func (lf *LockFile) Path() string {
	return lf.path
}

// ---------------------------------------------------------------------------
// Checksums
// ---------------------------------------------------------------------------

// Hash returns the MD5 hex digest of s.
func Hash(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Fingerprint hashes the YAML encoding of v. It is used for settings
// structs, whose YAML form is stable.
func Fingerprint(v any) (string, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("fingerprinting settings: %w", err)
	}
	return Hash(string(data)), nil
}

// DocumentKey builds the lock key of a document from its path relative to
// the project root, e.g. "sections/header.liquid".
func DocumentKey(relPath string) string {
	return filepath.ToSlash(relPath)
}

// UseSettings records the settings fingerprint for this run. If it differs
// from the recorded one, every checksum is dropped and UseSettings reports
// true.
func (lf *LockFile) UseSettings(fingerprint string) bool {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	if lf.Settings == fingerprint {
		return false
	}
	reset := lf.Settings != "" || len(lf.Checksums) > 0
	lf.Settings = fingerprint
	clear(lf.Checksums)
	return reset
}

// IsChanged reports whether the schema block of doc differs from the one
// recorded by the last Update. Unknown documents are always changed.
func (lf *LockFile) IsChanged(doc, block string) bool {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	old, ok := lf.Checksums[doc]
	return !ok || old != Hash(block)
}

// Update records the schema block of doc.
func (lf *LockFile) Update(doc, block string) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	lf.Checksums[doc] = Hash(block)
}

// Clean drops documents that are not in current.
func (lf *LockFile) Clean(current []string) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	keep := make(map[string]bool, len(current))
	for _, k := range current {
		keep[k] = true
	}
	for k := range lf.Checksums {
		if !keep[k] {
			delete(lf.Checksums, k)
		}
	}
}

// Len returns the number of tracked documents.
func (lf *LockFile) Len() int {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	return len(lf.Checksums)
}

// Documents returns the tracked document keys, sorted.
func (lf *LockFile) Documents() []string {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	docs := make([]string, 0, len(lf.Checksums))
	for d := range lf.Checksums {
		docs = append(docs, d)
	}
	sort.Strings(docs)
	return docs
}

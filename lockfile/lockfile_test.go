package lockfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHash(t *testing.T) {
	if got, want := Hash(""), "d41d8cd98f00b204e9800998ecf8427e"; got != want {
		t.Fatalf("Hash(\"\") = %q, want %q", got, want)
	}
	if Hash(`{"name": "Header"}`) == Hash(`{"name": "Footer"}`) {
		t.Fatal("different blocks hash the same")
	}
}

func TestLoadMissing(t *testing.T) {
	lf, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if lf.Version != Version || lf.Len() != 0 || lf.Settings != "" {
		t.Fatalf("Load() = %+v, want empty lock", lf)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	lf, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	lf.UseSettings("fp1")
	lf.Update(DocumentKey(filepath.Join("sections", "header.liquid")), "a")
	lf.Update(DocumentKey(filepath.Join("sections", "footer.liquid")), "b")
	lf.Update("config/settings_schema.json", "c")
	if err := lf.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, LockFileName))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "settings: fp1") {
		t.Fatalf("saved lock missing settings fingerprint:\n%s", data)
	}

	again, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"config/settings_schema.json", "sections/footer.liquid", "sections/header.liquid"}
	if diff := cmp.Diff(want, again.Documents()); diff != "" {
		t.Fatalf("Documents() mismatch (-want +got):\n%s", diff)
	}
	if again.IsChanged("sections/header.liquid", "a") {
		t.Fatal("reloaded checksum does not match")
	}
	if again.UseSettings("fp1") {
		t.Fatal("same fingerprint reset the lock")
	}
}

func TestIsChanged(t *testing.T) {
	lf := &LockFile{Checksums: make(map[string]string)}
	doc := "sections/header.liquid"

	if !lf.IsChanged(doc, "block") {
		t.Fatal("unknown document reported unchanged")
	}
	lf.Update(doc, "block")
	if lf.IsChanged(doc, "block") {
		t.Fatal("same block reported changed")
	}
	if !lf.IsChanged(doc, "block v2") {
		t.Fatal("edited block reported unchanged")
	}
}

func TestUseSettings(t *testing.T) {
	lf := &LockFile{Checksums: make(map[string]string)}
	if lf.UseSettings("fp1") {
		t.Fatal("first fingerprint on an empty lock reported a reset")
	}
	lf.Update("sections/a.liquid", "a")

	if !lf.UseSettings("fp2") {
		t.Fatal("changed fingerprint did not report a reset")
	}
	if lf.Len() != 0 {
		t.Fatalf("Len() after reset = %d, want 0", lf.Len())
	}
	if lf.Settings != "fp2" {
		t.Fatalf("Settings = %q, want fp2", lf.Settings)
	}
}

func TestFingerprint(t *testing.T) {
	type settings struct {
		Attributes []string `yaml:"attributes"`
	}
	a, err := Fingerprint(settings{Attributes: []string{"label", "info"}})
	if err != nil {
		t.Fatal(err)
	}
	b, _ := Fingerprint(settings{Attributes: []string{"label", "info"}})
	c, _ := Fingerprint(settings{Attributes: []string{"label"}})
	if a != b {
		t.Fatal("Fingerprint is not deterministic")
	}
	if a == c {
		t.Fatal("different settings share a fingerprint")
	}
}

func TestClean(t *testing.T) {
	lf := &LockFile{Checksums: make(map[string]string)}
	lf.Update("sections/a.liquid", "a")
	lf.Update("sections/b.liquid", "b")

	lf.Clean([]string{"sections/b.liquid"})
	if diff := cmp.Diff([]string{"sections/b.liquid"}, lf.Documents()); diff != "" {
		t.Fatalf("Documents() after Clean mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := map[string]string{
		"newer version": "version: 99\nchecksums: {}\n",
		"not yaml":      "checksums: [unclosed\n",
	}
	for name, content := range tests {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, LockFileName), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(dir); err == nil {
			t.Errorf("%s: Load() succeeded, want error", name)
		}
	}
}

func TestSaveWithoutPath(t *testing.T) {
	lf := &LockFile{Checksums: make(map[string]string)}
	if err := lf.Save(); err == nil {
		t.Fatal("Save() without path succeeded")
	}
}

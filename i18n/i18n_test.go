package i18n

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func clearLocaleEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LANGUAGE", "")
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "")
}

func TestPreferredLanguages(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want []string
	}{
		{
			name: "LANGUAGE list then LC_ALL",
			env:  map[string]string{"LANGUAGE": "ru_RU.UTF-8:en_US", "LC_ALL": "de_DE.UTF-8", "LANG": "fr_FR"},
			want: []string{"ru_RU", "en_US", "de_DE"},
		},
		{
			name: "C and POSIX are skipped",
			env:  map[string]string{"LANGUAGE": "C", "LC_ALL": "POSIX", "LC_MESSAGES": "fr_FR.UTF-8"},
			want: []string{"fr_FR"},
		},
		{
			name: "modifier is stripped",
			env:  map[string]string{"LANG": "sr_RS@latin"},
			want: []string{"sr_RS"},
		},
		{
			name: "nothing set",
			want: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearLocaleEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if diff := cmp.Diff(tc.want, preferredLanguages()); diff != "" {
				t.Fatalf("preferredLanguages() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTAndNFallbackWhenUninitialized(t *testing.T) {
	old := po
	po = nil
	t.Cleanup(func() { po = old })

	if got := T("Theme"); got != "Theme" {
		t.Fatalf("T fallback = %q, want %q", got, "Theme")
	}
	if got := N("%d document failed", "%d documents failed", 1); got != "%d document failed" {
		t.Fatalf("N singular fallback = %q", got)
	}
	if got := N("%d document failed", "%d documents failed", 2); got != "%d documents failed" {
		t.Fatalf("N plural fallback = %q", got)
	}
}

func TestInit(t *testing.T) {
	oldPo, oldLang := po, lang
	t.Cleanup(func() { po, lang = oldPo, oldLang })

	if !slices.Contains(Available(), "ru") {
		t.Fatalf("Available() = %v, want ru", Available())
	}

	Init("ru_RU")
	if Lang() != "ru" {
		t.Fatalf("Lang() = %q, want ru", Lang())
	}
	if got := T("Theme"); got != "Тема" {
		t.Fatalf("T(Theme) = %q, want %q", got, "Тема")
	}
	if got := T("not in the catalog"); got != "not in the catalog" {
		t.Fatalf("T passthrough = %q", got)
	}

	Init("eo")
	if Lang() != "" || T("Theme") != "Theme" {
		t.Fatalf("Init(eo) loaded %q", Lang())
	}

	clearLocaleEnv(t)
	t.Setenv("LANGUAGE", "eo:ru")
	Init("")
	if Lang() != "ru" {
		t.Fatalf("Init(\"\") with LANGUAGE=eo:ru loaded %q, want ru", Lang())
	}
}

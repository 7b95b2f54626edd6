// Package i18n translates liquidloc's own messages.
//
// Catalogs are gettext .po files embedded under
// locales/{lang}/LC_MESSAGES/liquidloc.po and read with gotext. T and N
// pass the message id through unchanged until Init has found a catalog.
package i18n

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/leonelquinteros/gotext"
)

//go:embed all:locales
var locales embed.FS

const domain = "liquidloc"

var (
	po   *gotext.Locale
	lang string
)

// Init selects the message catalog. An empty lang is taken from the
// environment. Each candidate is tried as given and then by its base
// language, so ru_RU falls back to ru.
func Init(want string) {
	po, lang = nil, ""

	candidates := []string{want}
	if want == "" {
		candidates = preferredLanguages()
	}
	for _, c := range candidates {
		for _, l := range []string{c, baseLanguage(c)} {
			if l == "" || !hasCatalog(l) {
				continue
			}
			loc := gotext.NewLocaleFSWithPath(l, locales, "locales")
			loc.AddDomain(domain)
			loc.SetDomain(domain)
			po, lang = loc, l
			return
		}
	}
}

// Lang returns the language of the loaded catalog, or "" when messages are
// untranslated.
func Lang() string {
	return lang
}

// Available lists the languages with an embedded catalog.
func Available() []string {
	entries, err := fs.ReadDir(locales, "locales")
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() && hasCatalog(e.Name()) {
			out = append(out, e.Name())
		}
	}
	return out
}

// T translates msgid.
func T(msgid string) string {
	if po == nil {
		return msgid
	}
	return po.Get(msgid)
}

// N translates a message with plural forms.
func N(singular, plural string, n int) string {
	if po == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return po.GetN(singular, plural, n)
}

func hasCatalog(l string) bool {
	_, err := fs.Stat(locales, path.Join("locales", l, "LC_MESSAGES", domain+".po"))
	return err == nil
}

func baseLanguage(l string) string {
	if i := strings.IndexAny(l, "_-"); i > 0 {
		return l[:i]
	}
	return ""
}

// preferredLanguages reads the environment in GNU gettext order: every
// entry of LANGUAGE, then the first of LC_ALL, LC_MESSAGES and LANG.
// Encodings are stripped; C and POSIX mean no translation.
func preferredLanguages() []string {
	var out []string
	if v := os.Getenv("LANGUAGE"); v != "" {
		for _, l := range strings.Split(v, ":") {
			if l = normalize(l); l != "" {
				out = append(out, l)
			}
		}
	}
	for _, env := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if l := normalize(os.Getenv(env)); l != "" {
			out = append(out, l)
			break
		}
	}
	return out
}

func normalize(l string) string {
	if i := strings.IndexAny(l, ".@"); i >= 0 {
		l = l[:i]
	}
	if l == "C" || l == "POSIX" {
		return ""
	}
	return l
}

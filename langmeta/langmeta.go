// Package langmeta provides display metadata (English and native names,
// emoji flags) for the locale codes used by theme locale files.
package langmeta

import "strings"

// Meta describes language display metadata.
type Meta struct {
	Name   string
	Native string
	// Region is the ISO 3166 code used for the flag.
	Region string
}

// Flag returns the emoji flag of the language's region, or "".
func (m Meta) Flag() string {
	return FlagFromRegion(m.Region)
}

// Registry contains canonical language metadata.
// Locale variants are resolved in Resolve() via normalization and base fallback.
var Registry = map[string]Meta{
	"bg":    {Name: "Bulgarian", Native: "Български", Region: "BG"},
	"cs":    {Name: "Czech", Native: "Čeština", Region: "CZ"},
	"da":    {Name: "Danish", Native: "Dansk", Region: "DK"},
	"de":    {Name: "German", Native: "Deutsch", Region: "DE"},
	"el":    {Name: "Greek", Native: "Ελληνικά", Region: "GR"},
	"en":    {Name: "English", Native: "English", Region: "US"},
	"es":    {Name: "Spanish", Native: "Español", Region: "ES"},
	"fi":    {Name: "Finnish", Native: "Suomi", Region: "FI"},
	"fr":    {Name: "French", Native: "Français", Region: "FR"},
	"hr":    {Name: "Croatian", Native: "Hrvatski", Region: "HR"},
	"hu":    {Name: "Hungarian", Native: "Magyar", Region: "HU"},
	"id":    {Name: "Indonesian", Native: "Bahasa Indonesia", Region: "ID"},
	"it":    {Name: "Italian", Native: "Italiano", Region: "IT"},
	"ja":    {Name: "Japanese", Native: "日本語", Region: "JP"},
	"ko":    {Name: "Korean", Native: "한국어", Region: "KR"},
	"lt":    {Name: "Lithuanian", Native: "Lietuvių", Region: "LT"},
	"nb":    {Name: "Norwegian Bokmål", Native: "Norsk bokmål", Region: "NO"},
	"nl":    {Name: "Dutch", Native: "Nederlands", Region: "NL"},
	"pl":    {Name: "Polish", Native: "Polski", Region: "PL"},
	"pt":    {Name: "Portuguese", Native: "Português", Region: "PT"},
	"pt-BR": {Name: "Portuguese (Brazil)", Native: "Português (Brasil)", Region: "BR"},
	"pt-PT": {Name: "Portuguese (Portugal)", Native: "Português (Portugal)", Region: "PT"},
	"ro":    {Name: "Romanian", Native: "Română", Region: "RO"},
	"ru":    {Name: "Russian", Native: "Русский", Region: "RU"},
	"sk":    {Name: "Slovak", Native: "Slovenčina", Region: "SK"},
	"sl":    {Name: "Slovenian", Native: "Slovenščina", Region: "SI"},
	"sv":    {Name: "Swedish", Native: "Svenska", Region: "SE"},
	"th":    {Name: "Thai", Native: "ไทย", Region: "TH"},
	"tr":    {Name: "Turkish", Native: "Türkçe", Region: "TR"},
	"uk":    {Name: "Ukrainian", Native: "Українська", Region: "UA"},
	"vi":    {Name: "Vietnamese", Native: "Tiếng Việt", Region: "VN"},
	"zh-CN": {Name: "Chinese (Simplified)", Native: "简体中文", Region: "CN"},
	"zh-TW": {Name: "Chinese (Traditional)", Native: "繁體中文", Region: "TW"},
}

func canonicalize(lang string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	if len(parts) >= 2 {
		parts[1] = strings.ToUpper(parts[1])
	}
	return strings.Join(parts, "-")
}

// Resolve returns best-effort language metadata for locale codes,
// supporting variants like pt_BR, pt-BR, hr-HR and base fallbacks. A
// region in the code overrides the registry's flag region.
func Resolve(lang string) Meta {
	if m, ok := Registry[lang]; ok {
		return m
	}
	normalized := canonicalize(lang)
	if m, ok := Registry[normalized]; ok {
		return m
	}
	if parts := strings.SplitN(normalized, "-", 2); len(parts) == 2 {
		if m, ok := Registry[parts[0]]; ok {
			if len(parts[1]) == 2 {
				m.Region = parts[1]
			}
			return m
		}
	}
	return Meta{Name: lang}
}

// FlagFromRegion converts a two-letter region code to its emoji flag.
func FlagFromRegion(region string) string {
	if len(region) != 2 {
		return ""
	}
	region = strings.ToUpper(region)
	var b strings.Builder
	for i := 0; i < 2; i++ {
		c := region[i]
		if c < 'A' || c > 'Z' {
			return ""
		}
		b.WriteRune(rune(0x1F1E6 + int(c-'A')))
	}
	return b.String()
}

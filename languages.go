package ghostreader

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// RTLLanguages contains base language codes that use right-to-left text direction.
var RTLLanguages = map[string]bool{
	"ar": true, // Arabic
	"he": true, // Hebrew
	"fa": true, // Persian/Farsi
	"ur": true, // Urdu
	"ps": true, // Pashto
	"sd": true, // Sindhi
	"ug": true, // Uyghur
}

// ParseLocale parses a locale identifier. Both "pt_BR" and "pt-BR" are accepted.
func ParseLocale(locale string) (language.Tag, error) {
	return language.Parse(strings.ReplaceAll(locale, "_", "-"))
}

// LanguageName returns the English name of a locale (e.g., "de" → "German").
// Falls back to the locale itself if it cannot be parsed.
func LanguageName(locale string) string {
	tag, err := ParseLocale(locale)
	if err != nil {
		return locale
	}
	if name := display.Tags(language.English).Name(tag); name != "" {
		return name
	}
	return locale
}

// BaseLanguage returns the base language code of a locale (e.g., "en" from "en_US").
func BaseLanguage(locale string) string {
	tag, err := ParseLocale(locale)
	if err != nil {
		base, _, _ := strings.Cut(strings.ReplaceAll(locale, "_", "-"), "-")
		return strings.ToLower(base)
	}
	base, _ := tag.Base()
	return base.String()
}

// SameLanguage reports whether two locales share a base language.
func SameLanguage(a, b string) bool {
	return BaseLanguage(a) == BaseLanguage(b)
}

// GetDirection returns "rtl" for right-to-left languages, "ltr" otherwise.
func GetDirection(locale string) string {
	if RTLLanguages[BaseLanguage(locale)] {
		return "rtl"
	}
	return "ltr"
}

// IsRTL returns true if the language uses right-to-left text direction.
func IsRTL(locale string) bool {
	return GetDirection(locale) == "rtl"
}

// Package cache provides the memoized translation cache and its persistence.
package cache

// Translations maps a locale to its flattened key/value pairs.
type Translations = map[string]map[string]string

// TranslationCache is the interface for memoized translation lookup.
type TranslationCache interface {
	// Lookup retrieves a translation. Returns empty string and false on a miss.
	Lookup(locale, key string) (string, bool)

	// Merge adds or overwrites the given keys for a locale.
	Merge(locale string, entries map[string]string) MergeResult
}

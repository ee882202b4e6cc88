package cache

import (
	"sort"
	"sync"
)

// Memoized is a thread-safe locale -> key -> value store.
//
// Content is only ever added or overwritten through Merge, or added through
// Memoize; keys absent from
// merged data are never removed. Seed is the one wholesale replacement and is
// meant for the initial population.
type Memoized struct {
	locales Translations
	mu      sync.RWMutex
}

// NewMemoized creates an empty memoized cache.
func NewMemoized() *Memoized {
	return &Memoized{
		locales: make(Translations),
	}
}

// Seed replaces the cache content with a copy of translations.
func (c *Memoized) Seed(translations Translations) {
	seeded := copyTranslations(translations)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.locales = seeded
}

// Merge adds entries to the locale's bucket. New values overwrite existing
// ones at the same key.
func (c *Memoized) Merge(locale string, entries map[string]string) MergeResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.mergeLocked(locale, entries)
}

// MergeAll merges every locale in translations.
func (c *Memoized) MergeAll(translations Translations) MergeResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	var result MergeResult
	for locale, entries := range translations {
		result.add(c.mergeLocked(locale, entries))
	}
	return result
}

// Memoize stores value under key only when the locale has no entry for key
// yet. It reports whether the value was stored; an existing entry always wins.
func (c *Memoized) Memoize(locale, key, value string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	bucket, ok := c.locales[locale]
	if !ok {
		bucket = make(map[string]string)
		c.locales[locale] = bucket
	}
	if _, exists := bucket[key]; exists {
		return false
	}
	bucket[key] = value
	return true
}

// mergeLocked must be called with the write lock held.
func (c *Memoized) mergeLocked(locale string, entries map[string]string) MergeResult {
	bucket, ok := c.locales[locale]
	if !ok {
		bucket = make(map[string]string, len(entries))
		c.locales[locale] = bucket
	}

	result := diffLocale(locale, bucket, entries)
	for key, value := range entries {
		bucket[key] = value
	}
	return result
}

// Lookup retrieves a translation.
// Returns the value and true if found, empty string and false otherwise.
func (c *Memoized) Lookup(locale, key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	value, ok := c.locales[locale][key]
	return value, ok
}

// Locales returns the cached locales in sorted order.
func (c *Memoized) Locales() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	locales := make([]string, 0, len(c.locales))
	for locale := range c.locales {
		locales = append(locales, locale)
	}
	sort.Strings(locales)
	return locales
}

// Entries returns a copy of one locale's key/value pairs.
func (c *Memoized) Entries(locale string) map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make(map[string]string, len(c.locales[locale]))
	for key, value := range c.locales[locale] {
		result[key] = value
	}
	return result
}

// Snapshot returns a deep copy of the whole cache.
// This is used for export and persistence.
func (c *Memoized) Snapshot() Translations {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyTranslations(c.locales)
}

// Len returns the number of cached keys across all locales.
func (c *Memoized) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, bucket := range c.locales {
		n += len(bucket)
	}
	return n
}

func copyTranslations(src Translations) Translations {
	dst := make(Translations, len(src))
	for locale, bucket := range src {
		entries := make(map[string]string, len(bucket))
		for key, value := range bucket {
			entries[key] = value
		}
		dst[locale] = entries
	}
	return dst
}

// Verify Memoized implements TranslationCache
var _ TranslationCache = (*Memoized)(nil)

package ghostreader

import "sync"

// MissingRegistry accumulates fallback-served translations until they are
// reported to the remote service.
//
// The registry starts uninitialized and ignores writes until Initialize is
// called, which the retriever does once the initial fetch completed.
type MissingRegistry struct {
	entries     Missings
	initialized bool
	mu          sync.Mutex
}

// NewMissingRegistry creates an uninitialized registry.
func NewMissingRegistry() *MissingRegistry {
	return &MissingRegistry{}
}

// Initialize switches the registry to tracking mode with an empty mapping.
// Calling it again keeps the current entries.
func (r *MissingRegistry) Initialize() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		return
	}
	r.entries = make(Missings)
	r.initialized = true
}

// Initialized reports whether the registry is tracking.
func (r *MissingRegistry) Initialized() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.initialized
}

// Track records one value. Returns false if the registry is not initialized.
func (r *MissingRegistry) Track(key, locale, source, value string) bool {
	return r.Merge(Missings{key: {locale: {source: value}}})
}

// Merge deep-merges m into the registry; values in m win.
// Returns false if the registry is not initialized.
func (r *MissingRegistry) Merge(m Missings) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.initialized {
		return false
	}
	mergeMissings(r.entries, m, true)
	return true
}

// Drain returns the current entries and resets the registry to empty.
func (r *MissingRegistry) Drain() Missings {
	r.mu.Lock()
	defer r.mu.Unlock()

	drained := r.entries
	if r.initialized {
		r.entries = make(Missings)
	}
	return drained
}

// Restore merges previously drained entries back in. Values tracked since the
// drain take precedence.
func (r *MissingRegistry) Restore(m Missings) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.initialized {
		return
	}
	mergeMissings(r.entries, m, false)
}

// IsEmpty reports whether there is nothing to report.
func (r *MissingRegistry) IsEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries) == 0
}

// Len returns the number of distinct keys tracked.
func (r *MissingRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Snapshot returns a deep copy of the current entries.
func (r *MissingRegistry) Snapshot() Missings {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entries == nil {
		return nil
	}
	snap := make(Missings, len(r.entries))
	mergeMissings(snap, r.entries, true)
	return snap
}

// mergeMissings copies src into dst. With overwrite false existing leaves in
// dst are kept.
func mergeMissings(dst, src Missings, overwrite bool) {
	for key, locales := range src {
		dstLocales, ok := dst[key]
		if !ok {
			dstLocales = make(map[string]map[string]string, len(locales))
			dst[key] = dstLocales
		}
		for locale, sources := range locales {
			dstSources, ok := dstLocales[locale]
			if !ok {
				dstSources = make(map[string]string, len(sources))
				dstLocales[locale] = dstSources
			}
			for source, value := range sources {
				if _, exists := dstSources[source]; exists && !overwrite {
					continue
				}
				dstSources[source] = value
			}
		}
	}
}

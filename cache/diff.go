package cache

// MergeResult describes what a merge changed.
type MergeResult struct {
	Added     int          // Keys that did not exist before
	Updated   int          // Keys whose value changed
	Unchanged int          // Keys merged with an identical value
	Changed   Translations // Added and updated entries, by locale
}

// HasChanges returns true if the merge added or updated any key.
func (r MergeResult) HasChanges() bool {
	return r.Added > 0 || r.Updated > 0
}

func (r *MergeResult) add(other MergeResult) {
	r.Added += other.Added
	r.Updated += other.Updated
	r.Unchanged += other.Unchanged
	for locale, entries := range other.Changed {
		if r.Changed == nil {
			r.Changed = make(Translations)
		}
		if r.Changed[locale] == nil {
			r.Changed[locale] = make(map[string]string, len(entries))
		}
		for key, value := range entries {
			r.Changed[locale][key] = value
		}
	}
}

// diffLocale compares incoming entries against a locale's current bucket.
func diffLocale(locale string, current, incoming map[string]string) MergeResult {
	var result MergeResult
	changed := make(map[string]string)

	for key, value := range incoming {
		old, exists := current[key]
		switch {
		case !exists:
			result.Added++
			changed[key] = value
		case old != value:
			result.Updated++
			changed[key] = value
		default:
			result.Unchanged++
		}
	}

	if len(changed) > 0 {
		result.Changed = Translations{locale: changed}
	}
	return result
}

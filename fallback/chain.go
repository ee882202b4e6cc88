package fallback

import (
	"context"
	"errors"
	"sort"

	"github.com/ZaguanLabs/ghostreader"
)

// Chain consults fallbacks in order and returns the first answer.
//
// A *MissingTranslationError moves on to the next fallback; any other error
// stops the chain.
type Chain []Fallback

// NewChain creates a chain of fallbacks.
func NewChain(fallbacks ...Fallback) Chain {
	return Chain(fallbacks)
}

// Translate returns the first successful result.
func (c Chain) Translate(ctx context.Context, locale, key string, opts *Options) (any, error) {
	var last error
	for _, fb := range c {
		value, err := fb.Translate(ctx, locale, key, opts)
		if err == nil {
			return value, nil
		}

		var missing *ghostreader.MissingTranslationError
		if !errors.As(err, &missing) {
			return nil, err
		}
		last = err
	}

	if last != nil {
		return nil, last
	}
	return nil, &ghostreader.MissingTranslationError{Locale: locale, Key: ghostreader.NormalizeKey(optsScope(opts), key)}
}

// AvailableLocales returns the union of the chained fallbacks' locales.
func (c Chain) AvailableLocales() []string {
	seen := make(map[string]bool)
	var locales []string
	for _, fb := range c {
		lister, ok := fb.(ghostreader.LocaleLister)
		if !ok {
			continue
		}
		for _, l := range lister.AvailableLocales() {
			if !seen[l] {
				seen[l] = true
				locales = append(locales, l)
			}
		}
	}
	sort.Strings(locales)
	return locales
}

// Verify Chain implements Fallback
var _ Fallback = Chain(nil)

package ghostreader

import (
	"context"
	"net/http"

	"github.com/ZaguanLabs/ghostreader/cache"
)

// SourceDefault is the source tag under which fallback hits are recorded.
const SourceDefault = "default"

// Translations maps a locale to its flattened key/value pairs.
type Translations = cache.Translations

// Missings maps a translation key to locale to source tag to the value the
// fallback produced for it.
type Missings map[string]map[string]map[string]string

// Response is the result of a fetch against the remote service.
type Response struct {
	Status int            // HTTP-style status code (0 when the transport has none)
	Data   map[string]any // Per-locale nested translation trees
}

// OK reports whether the response carries a success status.
func (r *Response) OK() bool {
	return r != nil && r.Status >= http.StatusOK && r.Status < http.StatusMultipleChoices
}

// Options carries the per-lookup arguments handed through to the fallback.
type Options struct {
	Scope   []string       // Key prefix segments (e.g. ["activerecord", "errors"])
	Values  map[string]any // Interpolation values
	Count   any            // Plural count
	Default string         // Default message when the fallback supports one
}

// dependsOnArguments reports whether a fallback result computed with these
// options may differ from one computed without them.
func (o *Options) dependsOnArguments() bool {
	return o != nil && (len(o.Values) > 0 || o.Count != nil || o.Default != "")
}

// withoutScope returns a copy of o with Scope cleared, for handing a key that
// already carries its scope to the fallback.
func (o *Options) withoutScope() *Options {
	if o == nil || len(o.Scope) == 0 {
		return o
	}
	c := *o
	c.Scope = nil
	return &c
}

func (o *Options) scope() []string {
	if o == nil {
		return nil
	}
	return o.Scope
}

// Client is the contract of the remote translation service.
type Client interface {
	// InitialFetch returns the full translation snapshot.
	InitialFetch(ctx context.Context) (*Response, error)

	// IncrementalFetch returns a delta or a full refresh.
	IncrementalFetch(ctx context.Context) (*Response, error)

	// Report pushes collected missing translations.
	Report(ctx context.Context, missings Missings) error
}

// Fallback is the secondary translation source consulted on cache misses.
//
// Translate returns a scalar value (usually a string). Structured results are
// rejected by the backend.
type Fallback interface {
	Translate(ctx context.Context, locale, key string, opts *Options) (any, error)
}

// LocaleLister is implemented by fallbacks that know which locales they serve.
type LocaleLister interface {
	AvailableLocales() []string
}

// SnapshotStore persists the memoized translations between process runs.
type SnapshotStore interface {
	Save(ctx context.Context, translations Translations) error
	Load(ctx context.Context) (Translations, error)
}

package ghostreader

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// KeySeparator joins the segments of a flattened key.
const KeySeparator = "."

// FlattenLocales flattens every locale tree in data. Locale entries that are
// not trees are ignored.
func FlattenLocales(data map[string]any) Translations {
	result := make(Translations, len(data))
	for locale, tree := range data {
		m, ok := asTree(tree)
		if !ok {
			continue
		}
		result[locale] = Flatten(m)
	}
	return result
}

// Flatten turns a nested translation tree into dot-joined keys.
//
// Empty segments are kept, so {"": "x"} yields the key "" and
// {"a": {"": {"b": "x"}}} yields "a..b". Leaves that are not strings are
// coerced by leafString.
func Flatten(tree map[string]any) map[string]string {
	flat := make(map[string]string)
	flattenInto(flat, "", tree, true)
	return flat
}

func flattenInto(flat map[string]string, prefix string, tree map[string]any, root bool) {
	for k, v := range tree {
		key := k
		if !root {
			key = prefix + KeySeparator + k
		}

		if sub, ok := asTree(v); ok {
			if len(sub) == 0 {
				// An empty branch carries no translations.
				continue
			}
			flattenInto(flat, key, sub, false)
			continue
		}
		flat[key] = leafString(v)
	}
}

// asTree accepts both JSON-decoded and YAML-decoded maps.
func asTree(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[string]string:
		tree := make(map[string]any, len(m))
		for k, s := range m {
			tree[k] = s
		}
		return tree, true
	case map[any]any:
		tree := make(map[string]any, len(m))
		for k, s := range m {
			tree[fmt.Sprint(k)] = s
		}
		return tree, true
	}
	return nil, false
}

// leafString coerces a leaf value into its cached representation.
func leafString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case json.Number:
		return val.String()
	case fmt.Stringer:
		return val.String()
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// NormalizeKey joins scope segments and key into a flattened lookup key,
// dropping empty segments. Flatten keeps empty segments, so a stored key
// such as "a..b" or ".a" is never produced here and cannot be reached by
// lookup; only the bare "" key is.
func NormalizeKey(scope []string, key string) string {
	var parts []string
	add := func(s string) {
		for _, seg := range strings.Split(s, KeySeparator) {
			if seg != "" {
				parts = append(parts, seg)
			}
		}
	}
	for _, s := range scope {
		add(s)
	}
	add(key)
	return strings.Join(parts, KeySeparator)
}

package collector

import (
	"maps"
	"slices"

	"github.com/kailas-cloud/dataextract/internal/domain/field"
)

// Unflatten nests namespaced keys: "a.b" becomes out["a"]["b"], "a" stays
// out["a"]. Keys are processed in sorted order, so when a global key and a
// namespace share a name the namespace group wins.
func Unflatten(flat map[string]any) map[string]any {
	out := make(map[string]any, len(flat))
	groups := make(map[string]map[string]any)
	for _, key := range slices.Sorted(maps.Keys(flat)) {
		value := flat[key]
		if !field.IsNamespaced(key) {
			out[key] = value
			continue
		}

		domain, sub := field.SplitName(key)
		group, ok := groups[domain]
		if !ok {
			group = make(map[string]any)
			groups[domain] = group
			out[domain] = group
		}
		group[sub] = value
	}
	return out
}

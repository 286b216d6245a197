// Package reconcile computes and applies the add/remove delta that makes an
// association set equal to a desired set of identifiers.
package reconcile

// Result describes what Apply changed.
type Result[K comparable] struct {
	Added   []K
	Removed []K
	Unknown []K // desired identifiers that resolve could not find
}

// Changed reports whether the association set was modified.
func (r Result[K]) Changed() bool { return len(r.Added) > 0 || len(r.Removed) > 0 }

// Diff returns the identifiers to add to and remove from current so that it equals desired.
// Duplicates collapse; add keeps the first-occurrence order of desired, remove the order of current.
func Diff[K comparable](current, desired []K) (add, remove []K) {
	want := toSet(desired)
	have := toSet(current)
	for _, k := range dedup(desired) {
		if _, ok := have[k]; !ok {
			add = append(add, k)
		}
	}
	for _, k := range dedup(current) {
		if _, ok := want[k]; !ok {
			remove = append(remove, k)
		}
	}
	return add, remove
}

// Apply reconciles assoc against desired and returns the new association set.
//
// A nil or empty desired clears assoc. Identifiers in desired that resolve cannot
// find are reported in Result.Unknown and otherwise ignored. Surviving associations
// keep their relative order; additions follow in desired order. assoc itself is not modified.
func Apply[K comparable, T any](assoc []T, desired []K, key func(T) K, resolve func(K) (T, bool)) ([]T, Result[K]) {
	var res Result[K]
	want := toSet(desired)

	out := make([]T, 0, len(desired))
	kept := make(map[K]struct{}, len(assoc))
	dropped := make(map[K]struct{})
	for _, item := range assoc {
		k := key(item)
		if _, dup := kept[k]; dup {
			continue
		}
		if _, ok := want[k]; !ok {
			if _, seen := dropped[k]; !seen {
				dropped[k] = struct{}{}
				res.Removed = append(res.Removed, k)
			}
			continue
		}
		kept[k] = struct{}{}
		out = append(out, item)
	}

	for _, k := range dedup(desired) {
		if _, ok := kept[k]; ok {
			continue
		}
		item, ok := resolve(k)
		if !ok {
			res.Unknown = append(res.Unknown, k)
			continue
		}
		kept[k] = struct{}{}
		out = append(out, item)
		res.Added = append(res.Added, k)
	}
	return out, res
}

func toSet[K comparable](ks []K) map[K]struct{} {
	s := make(map[K]struct{}, len(ks))
	for _, k := range ks {
		s[k] = struct{}{}
	}
	return s
}

func dedup[K comparable](ks []K) []K {
	seen := make(map[K]struct{}, len(ks))
	out := make([]K, 0, len(ks))
	for _, k := range ks {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

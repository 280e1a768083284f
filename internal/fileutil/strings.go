package fileutil

import "sort"

func MapKeysSorted(values map[string]bool) []string {
	out := make([]string, 0, len(values))
	for key := range values {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

func ToSet(paths []string) map[string]bool {
	set := make(map[string]bool, len(paths))
	for _, path := range paths {
		set[path] = true
	}
	return set
}

// Missing returns the entries of want that are not in have, sorted.
func Missing(want []string, have map[string]bool) []string {
	out := make([]string, 0)
	for _, item := range want {
		if !have[item] {
			out = append(out, item)
		}
	}
	sort.Strings(out)
	return out
}

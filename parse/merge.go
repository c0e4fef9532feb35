package parse

// Merge deep-merges fragments in order into a new map. Nested maps are
// merged key by key; any other value, arrays included, is replaced by the
// later fragment's value at the same path. The fragments are not modified.
func Merge(fragments ...map[string]any) map[string]any {
	out := make(map[string]any)
	for _, f := range fragments {
		mergeMap(out, f)
	}
	return out
}

func mergeMap(dst, src map[string]any) {
	for k, v := range src {
		sm, ok := v.(map[string]any)
		if !ok {
			dst[k] = v
			continue
		}
		dm, ok := dst[k].(map[string]any)
		if !ok {
			// copy so later merges never write into a fragment
			dm = make(map[string]any, len(sm))
			dst[k] = dm
		}
		mergeMap(dm, sm)
	}
}

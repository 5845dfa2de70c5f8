package process

import (
	"sort"
	"strings"
)

// envWith returns base with each KEY=VALUE override applied: existing keys
// are replaced, new keys appended.
func envWith(base []string, overrides ...string) []string {
	replaced := make(map[string]bool, len(overrides))
	for _, kv := range overrides {
		k, _, _ := strings.Cut(kv, "=")
		replaced[k] = true
	}

	out := make([]string, 0, len(base)+len(overrides))
	for _, kv := range base {
		k, _, _ := strings.Cut(kv, "=")
		if replaced[k] {
			continue
		}
		out = append(out, kv)
	}
	return append(out, overrides...)
}

// envPairs renders vars as KEY=VALUE in key order.
func envPairs(vars map[string]string) []string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + vars[k]
	}
	return pairs
}

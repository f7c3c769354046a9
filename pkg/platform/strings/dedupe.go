// Package strings holds small helpers for parsing list-valued settings.
package strings

import (
	"strings"
)

// SplitList splits a comma-separated setting into its trimmed, non-empty
// elements, keeping the first occurrence of each. Order is preserved.
//
//	SplitList(" kafka-1:9092, kafka-2:9092,,kafka-1:9092")
//	// []string{"kafka-1:9092", "kafka-2:9092"}
func SplitList(raw string) []string {
	return dedupe(strings.Split(raw, ","), false)
}

// SplitListLower is SplitList with case folding, for identity lists where
// "Alice" and "alice" name the same caller.
func SplitListLower(raw string) []string {
	return dedupe(strings.Split(raw, ","), true)
}

func dedupe(values []string, lower bool) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if lower {
			v = strings.ToLower(v)
		}
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}

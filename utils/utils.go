package utils

import (
	"strings"

	"github.com/google/uuid"
)

func GetUUID() string {
	return uuid.New().String()
}

// SplitList splits comma-separated free text into trimmed, de-duplicated
// entries. Duplicates are detected case-insensitively; the first spelling wins.
func SplitList(input string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, p := range strings.Split(input, ",") {
		item := strings.TrimSpace(p)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}

// SplitTags normalizes tags to lower case, dropping blanks and duplicates.
func SplitTags(tags []string) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, raw := range tags {
		for _, t := range SplitList(raw) {
			tag := strings.ToLower(t)
			if !seen[tag] {
				seen[tag] = true
				out = append(out, tag)
			}
		}
	}
	return out
}

package usecase

import "strings"

// jsonObjectSubstring extracts the outermost brace-delimited substring
// from free-text model output. Returns "" when no object is present.
func jsonObjectSubstring(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return ""
	}
	return raw[start : end+1]
}

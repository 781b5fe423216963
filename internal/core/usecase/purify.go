package usecase

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxTargets bounds retrieval cost per request no matter how many
// entities the planner extracts.
const maxTargets = 5

// purifyEntity turns a raw extracted entity into a literal search term:
// punctuation is stripped, then operational stop words are removed. When
// stripping leaves two characters or fewer the punctuation-stripped form
// is returned instead, so short program-name tokens survive.
func purifyEntity(raw string, stopWords []string) string {
	stripped := strings.Join(strings.Fields(stripPunctuation(raw)), " ")

	kept := make([]string, 0, 8)
	for _, word := range strings.Fields(stripped) {
		if !equalsFoldAny(word, stopWords) {
			kept = append(kept, word)
		}
	}
	cleaned := strings.Join(kept, " ")

	if utf8.RuneCountInString(cleaned) <= 2 {
		return stripped
	}
	return cleaned
}

// buildTargets derives the search-target set from extracted entities:
// purified, first-seen deduplicated, capped at maxTargets. An empty
// result degrades to the raw query itself.
func buildTargets(entities []string, query string, stopWords []string) []string {
	seen := make(map[string]struct{}, len(entities))
	targets := make([]string, 0, maxTargets)
	for _, entity := range entities {
		target := purifyEntity(entity, stopWords)
		if target == "" {
			continue
		}
		if _, dup := seen[target]; dup {
			continue
		}
		seen[target] = struct{}{}
		targets = append(targets, target)
		if len(targets) == maxTargets {
			break
		}
	}

	if len(targets) == 0 {
		return []string{query}
	}
	return targets
}

func stripPunctuation(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func equalsFoldAny(word string, list []string) bool {
	for _, item := range list {
		if strings.EqualFold(word, item) {
			return true
		}
	}
	return false
}

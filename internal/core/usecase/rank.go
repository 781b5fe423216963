package usecase

import (
	"sort"
	"strings"

	"github.com/uinjkt-dev/campus-assistant/internal/core/domain"
)

// Additive score adjustments layered on top of raw cosine similarity.
// The magnitudes dwarf base similarity on purpose, and their ordering is
// an invariant the tests pin down: a program-name match outweighs every
// secondary signal, a fee-table row outweighs a degree or year match.
const (
	entityMatchBonus = 250000
	tariffRowBonus   = 150000
	degreeMatchBonus = 100000
	yearMatchBonus   = 80000
	yearMissPenalty  = 50000

	// contextLimit caps the ranked context handed to generation.
	contextLimit = 20
)

// rankCandidates deduplicates the retrieval pool by exact content,
// applies the heuristic bonuses, and returns the top contextLimit results
// in descending score order together with the per-target found map.
// The sort is stable, so ties keep retrieval order.
func rankCandidates(pool []domain.Candidate, targets, years []string, intent domain.Intent, lex domain.Lexicon) ([]domain.RankedResult, map[string]bool) {
	found := make(map[string]bool, len(targets))
	for _, target := range targets {
		found[target] = false
	}

	seen := make(map[string]struct{}, len(pool))
	ranked := make([]domain.RankedResult, 0, len(pool))

	for _, candidate := range pool {
		if _, dup := seen[candidate.Content]; dup {
			continue
		}
		seen[candidate.Content] = struct{}{}

		content := strings.ToLower(candidate.Content)
		score := candidate.Score

		for _, target := range targets {
			lowered := strings.ToLower(target)
			if !strings.Contains(content, lowered) {
				continue
			}
			score += entityMatchBonus
			found[target] = true

			// Reward matching both program and degree level over
			// program alone, but only when the target itself names a
			// degree: "S1 Biologi" asks for S1 specifically.
			if degree := degreeToken(lowered, lex.DegreeTokens); degree != "" && strings.Contains(content, degree) {
				score += degreeMatchBonus
			}
		}

		for _, year := range years {
			if strings.Contains(content, year) {
				score += yearMatchBonus
			} else {
				score -= yearMissPenalty
			}
		}

		if intent == domain.IntentFinance && containsAny(content, lex.TariffKeywords) {
			score += tariffRowBonus
		}

		ranked = append(ranked, domain.RankedResult{
			Content: candidate.Content,
			Score:   score,
			Source:  sourceLabel(candidate.Metadata),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > contextLimit {
		ranked = ranked[:contextLimit]
	}
	return ranked, found
}

// degreeToken returns the first degree-level token the target contains as
// a standalone word, or "".
func degreeToken(target string, degreeTokens []string) string {
	for _, word := range strings.Fields(target) {
		for _, token := range degreeTokens {
			if word == token {
				return token
			}
		}
	}
	return ""
}

func containsAny(content string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(content, kw) {
			return true
		}
	}
	return false
}

func sourceLabel(metadata map[string]string) string {
	if src, ok := metadata[domain.MetaSource]; ok && src != "" {
		return src
	}
	return "Database"
}

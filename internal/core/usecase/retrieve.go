package usecase

import (
	"context"
	"log/slog"
	"sync"

	"github.com/uinjkt-dev/campus-assistant/internal/core/domain"
)

const (
	// Comparison queries mention several programs, so the per-target
	// result count widens when more than one target is in play.
	multiTargetK  = 60
	singleTargetK = 40

	// The KATEGORI filter is a precision aid, not a hard constraint:
	// category tagging in the corpus is incomplete, so a thin filtered
	// result set on a finance query triggers an unfiltered second pass.
	financeMinFiltered = 10
	financeFallbackK   = 25
)

// retrieve fans out one similarity search per target and pools the
// results in target order, so ranking input stays deterministic no matter
// how the searches interleave. A failed target is skipped, never fatal.
func (uc *ChatUseCase) retrieve(ctx context.Context, targets []string, intent domain.Intent) []domain.Candidate {
	filter := categoryFilter(intent)
	k := singleTargetK
	if len(targets) > 1 {
		k = multiTargetK
	}

	perTarget := make([][]domain.Candidate, len(targets))
	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target string) {
			defer wg.Done()
			perTarget[i] = uc.searchTarget(ctx, target, k, filter, intent)
		}(i, target)
	}
	wg.Wait()

	total := 0
	for _, res := range perTarget {
		total += len(res)
	}
	pool := make([]domain.Candidate, 0, total)
	for _, res := range perTarget {
		pool = append(pool, res...)
	}
	return pool
}

func (uc *ChatUseCase) searchTarget(ctx context.Context, target string, k int, filter map[string]string, intent domain.Intent) []domain.Candidate {
	results, err := uc.index.SimilaritySearch(ctx, target, k, filter)
	if err != nil {
		slog.Warn("target_search_failed", "target", target, "error", err)
		return nil
	}

	if intent == domain.IntentFinance && len(results) < financeMinFiltered {
		fallback, err := uc.index.SimilaritySearch(ctx, target, financeFallbackK, nil)
		if err != nil {
			slog.Warn("fallback_search_failed", "target", target, "error", err)
			return results
		}
		results = append(results, fallback...)
	}
	return results
}

func categoryFilter(intent domain.Intent) map[string]string {
	switch intent {
	case domain.IntentFinance:
		return map[string]string{domain.MetaKategori: domain.KategoriKeuangan}
	case domain.IntentDeskripsi:
		return map[string]string{domain.MetaKategori: domain.KategoriAkademik}
	default:
		return nil
	}
}

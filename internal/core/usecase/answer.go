package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/uinjkt-dev/campus-assistant/internal/core/domain"
	"github.com/uinjkt-dev/campus-assistant/internal/core/ports"
)

const (
	// historyWindow bounds how many prior turns reach the generator.
	historyWindow = 6

	defaultGenerationTimeout = 60 * time.Second

	technicalDifficultyAnswer = "Maaf, sedang ada kendala teknis. Silakan coba beberapa saat lagi."
	noContextMarker           = "(tidak ada data ditemukan)"
)

// ChatUseCase runs the full question pipeline: plan, purify, retrieve,
// rank, generate. All external calls are injected; nothing here holds
// cross-request state.
type ChatUseCase struct {
	model      ports.ChatModel
	index      ports.VectorIndex
	models     domain.ModelSet
	lex        domain.Lexicon
	genTimeout time.Duration
}

func NewChatUseCase(model ports.ChatModel, index ports.VectorIndex, models domain.ModelSet, lex domain.Lexicon) *ChatUseCase {
	return &ChatUseCase{
		model:      model,
		index:      index,
		models:     models,
		lex:        lex.Normalize(),
		genTimeout: defaultGenerationTimeout,
	}
}

// WithGenerationTimeout overrides the per-request generation deadline.
// Non-positive values keep the default.
func (uc *ChatUseCase) WithGenerationTimeout(d time.Duration) *ChatUseCase {
	if d > 0 {
		uc.genTimeout = d
	}
	return uc
}

// AnswerQuery answers a student question from the indexed corpus.
// Every pipeline failure degrades: a broken plan becomes the default
// plan, a failed target search is skipped, a failed primary model falls
// back, and a total generation failure yields a fixed
// technical-difficulty answer with empty sources and diagnostics. The
// only returned error is invalid input.
func (uc *ChatUseCase) AnswerQuery(ctx context.Context, query string, history []domain.ChatTurn) (*domain.ChatResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "answer query", errors.New("query is required"))
	}

	plan := uc.plan(ctx, query)
	targets := buildTargets(plan.Entities, query, uc.lex.StopWords)
	pool := uc.retrieve(ctx, targets, plan.Intent)
	ranked, found := rankCandidates(pool, targets, plan.Years, plan.Intent, uc.lex)

	answer, modelUsed, err := uc.generate(ctx, query, history, ranked, targets, found)
	if err != nil {
		slog.Error("generation_failed", "intent", plan.Intent, "targets", targets, "error", err)
		return &domain.ChatResult{Answer: technicalDifficultyAnswer}, nil
	}

	return &domain.ChatResult{
		Answer:  answer,
		Sources: ranked,
		Diagnostics: domain.Diagnostics{
			Plan:      plan,
			Targets:   targets,
			Found:     found,
			Intent:    plan.Intent,
			ModelUsed: modelUsed,
		},
	}, nil
}

// generate composes the grounded answer with the primary model, retrying
// once against the fallback. A deadline hit surfaces as a distinct
// generation-timeout error.
func (uc *ChatUseCase) generate(ctx context.Context, query string, history []domain.ChatTurn, ranked []domain.RankedResult, targets []string, found map[string]bool) (string, string, error) {
	genCtx, cancel := context.WithTimeout(ctx, uc.genTimeout)
	defer cancel()

	messages := buildGeneratorMessages(query, history, ranked, targets, found)

	answer, err := uc.model.Invoke(genCtx, uc.models.Primary, messages)
	if err == nil {
		return answer, uc.models.Primary, nil
	}
	slog.Warn("primary_model_failed", "model", uc.models.Primary, "error", err)

	answer, fallbackErr := uc.model.Invoke(genCtx, uc.models.Fallback, messages)
	if fallbackErr == nil {
		return answer, uc.models.Fallback, nil
	}
	if errors.Is(fallbackErr, context.DeadlineExceeded) && genCtx.Err() != nil {
		return "", "", fmt.Errorf("generation timeout after %s: %w", uc.genTimeout, fallbackErr)
	}
	return "", "", fmt.Errorf("primary: %w; fallback: %w", err, fallbackErr)
}

func buildGeneratorMessages(query string, history []domain.ChatTurn, ranked []domain.RankedResult, targets []string, found map[string]bool) []domain.ChatTurn {
	missing := make([]string, 0, len(targets))
	for _, target := range targets {
		if !found[target] {
			missing = append(missing, target)
		}
	}

	system := fmt.Sprintf(`Kamu adalah Humas UIN Jakarta. WAJIB patuh pada [DATA TERVERIFIKASI].
Panduan Jawaban:
1. DILARANG MENGARANG. Jika data benar-benar tidak ada di [DATA TERVERIFIKASI], katakan tidak ditemukan.
2. Gunakan TABEL Markdown untuk rincian UKT/Biaya agar mudah dibaca mahasiswa.
3. WAJIB sertakan sitasi nomor sumber tepat di belakang angka biaya, contoh: Rp 3.500.000 [SUMBER 1].
4. Jika data prodi tidak lengkap (misal S1 ada tapi S2 tidak), sajikan yang ada secara detail dan nyatakan sisanya tidak tersedia.
5. Jika membandingkan (mana yang lebih mahal), hitung selisihnya jika kedua data ada.
Konteks Internal: Cari=%v. Hilang=%v.`, targets, missing)

	messages := make([]domain.ChatTurn, 0, historyWindow+2)
	messages = append(messages, domain.ChatTurn{Role: "system", Content: system})
	messages = append(messages, recentTurns(history, historyWindow)...)
	messages = append(messages, domain.ChatTurn{
		Role:    "user",
		Content: fmt.Sprintf("Q: %s\n\n[DATA TERVERIFIKASI]:\n%s", query, contextText(ranked)),
	})
	return messages
}

// contextText renders the ranked context as numbered entries so inline
// citations can reference them.
func contextText(ranked []domain.RankedResult) string {
	if len(ranked) == 0 {
		return noContextMarker
	}
	var b strings.Builder
	for i, r := range ranked {
		fmt.Fprintf(&b, "[SUMBER %d]: %s | DATA: %s\n", i+1, r.Source, r.Content)
	}
	return b.String()
}

func recentTurns(history []domain.ChatTurn, limit int) []domain.ChatTurn {
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	out := make([]domain.ChatTurn, 0, len(history))
	for _, turn := range history {
		content := strings.TrimSpace(turn.Content)
		if content == "" {
			continue
		}
		role := "user"
		if strings.EqualFold(strings.TrimSpace(turn.Role), "assistant") {
			role = "assistant"
		}
		out = append(out, domain.ChatTurn{Role: role, Content: content})
	}
	return out
}

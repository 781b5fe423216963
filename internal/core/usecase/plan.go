package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/uinjkt-dev/campus-assistant/internal/core/domain"
)

// plannerSystemPrompt demands one strict JSON object. Financial keywords
// force FINANCE, and degree qualifiers stay attached to program names
// because tariffs differ per degree level.
const plannerSystemPrompt = `Tugas: Ekstrak JSON {"entities": ["Prodi/Jenjang"], "intent": "FINANCE"|"DESKRIPSI", "years": ["Tahun"]}.
Aturan Mutlak:
1. FINANCE: WAJIB digunakan jika ada kata: UKT, biaya, tarif, spp, semester, bayar, total, hitung, MAHAL, MURAH, LEBIH, BANDINGKAN.
   - Contoh: "Mana yang lebih..." atau "Berapa total..." adalah FINANCE.
2. ENTITIES: Ambil Nama Prodi LENGKAP dengan Jenjangnya.
   - Contoh: "S1 Agribisnis", "S2 Hukum", "Profesi Ners".
3. JANGAN mengabaikan Jenjang (S1/S2/S3) karena tarifnya berbeda.
Jawab HANYA dengan objek JSON tersebut, tanpa teks lain.`

// plan runs the structured-extraction step. It is best effort: any
// invocation or parse failure degrades to the empty default plan and the
// request continues with intent UMUM.
func (uc *ChatUseCase) plan(ctx context.Context, query string) domain.Plan {
	raw, err := uc.model.Invoke(ctx, uc.models.Planner, []domain.ChatTurn{
		{Role: "system", Content: plannerSystemPrompt},
		{Role: "user", Content: query},
	})
	if err != nil {
		slog.Warn("planner_invoke_failed", "error", err)
		return domain.DefaultPlan()
	}

	plan, err := parsePlan(raw)
	if err != nil {
		slog.Warn("planner_parse_failed", "error", err)
		return domain.DefaultPlan()
	}
	return plan
}

func parsePlan(raw string) (domain.Plan, error) {
	obj := jsonObjectSubstring(raw)
	if obj == "" {
		return domain.Plan{}, fmt.Errorf("no json object in planner output")
	}

	var parsed struct {
		Entities []string `json:"entities"`
		Intent   string   `json:"intent"`
		Years    []string `json:"years"`
	}
	if err := json.Unmarshal([]byte(obj), &parsed); err != nil {
		return domain.Plan{}, fmt.Errorf("unmarshal planner json: %w", err)
	}

	plan := domain.Plan{
		Entities: parsed.Entities,
		Intent:   domain.ParseIntent(parsed.Intent),
		Years:    parsed.Years,
	}
	if plan.Entities == nil {
		plan.Entities = []string{}
	}
	if plan.Years == nil {
		plan.Years = []string{}
	}
	return plan, nil
}

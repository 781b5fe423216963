package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/uinjkt-dev/campus-assistant/internal/core/domain"
	"github.com/uinjkt-dev/campus-assistant/internal/core/ports"
)

// judgeSystemPrompt scores faithfulness: honest unavailability rates as
// high as accuracy, fabrication and false negatives rate as failure.
const judgeSystemPrompt = `Tugas: Kamu adalah auditor ahli UIN Jakarta.
Bandingkan JAWABAN dengan DATA KONTEKS untuk menilai akurasi dan integritas.

Aturan Penilaian:
1. Skor 10 (Sempurna): Jawaban akurat sesuai data KONTEKS, ATAU jawaban jujur menyatakan "Data tidak ditemukan" jika informasi memang benar-benar tidak ada di KONTEKS.
2. Skor 8-9 (Sangat Baik): Jawaban benar tapi kurang lengkap sedikit, atau memberikan saran yang relevan meski data spesifik tidak ada.
3. Skor 5 (Risiko): Ada kesalahan angka, data tertukar antara prodi/jenjang, atau menggunakan data tahun yang salah dari KONTEKS.
4. Skor 1 (Gagal): HALUSINASI (mengarang angka/informasi yang tidak ada di KONTEKS) atau menjawab "tidak ada" padahal datanya jelas-jelas tersedia di KONTEKS.

Output WAJIB JSON: {"score": 1-10, "reason": "penjelasan singkat"}`

// EvaluateUseCase audits generated answers against their retrieved
// context with a judge model. It is a test/monitoring collaborator and
// never raises: every failure degrades to the zero-score sentinel.
type EvaluateUseCase struct {
	model ports.ChatModel
	judge string
}

func NewEvaluateUseCase(model ports.ChatModel, judgeModel string) *EvaluateUseCase {
	return &EvaluateUseCase{model: model, judge: judgeModel}
}

func (uc *EvaluateUseCase) Evaluate(ctx context.Context, query, answer, contextText string) domain.Evaluation {
	raw, err := uc.model.Invoke(ctx, uc.judge, []domain.ChatTurn{
		{Role: "system", Content: judgeSystemPrompt},
		{Role: "user", Content: fmt.Sprintf(
			"PERTANYAAN USER: %s\n\nJAWABAN MODEL: %s\n\nDATA KONTEKS (Referensimu): \n%s",
			query, answer, contextText,
		)},
	})
	if err != nil {
		return domain.Evaluation{Score: 0, Reason: fmt.Sprintf("Evaluator Error: %v", err)}
	}

	obj := jsonObjectSubstring(raw)
	if obj == "" {
		return domain.Evaluation{Score: 0, Reason: "Gagal parsing output AI"}
	}
	var verdict domain.Evaluation
	if err := json.Unmarshal([]byte(obj), &verdict); err != nil {
		return domain.Evaluation{Score: 0, Reason: "Gagal parsing output AI"}
	}
	return verdict
}

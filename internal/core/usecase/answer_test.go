package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/uinjkt-dev/campus-assistant/internal/core/domain"
)

func TestAnswerQueryRejectsEmptyQuery(t *testing.T) {
	uc := NewChatUseCase(&fakeChatModel{}, &fakeVectorIndex{}, testModelSet(), domain.DefaultLexicon())

	_, err := uc.AnswerQuery(context.Background(), "   ", nil)
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestAnswerQuerySurvivesMalformedPlannerOutput(t *testing.T) {
	model := &fakeChatModel{
		responses: map[string]string{
			"planner-model": "maaf, saya tidak bisa membuat JSON",
			"primary-model": "Jawaban dari data.",
		},
	}
	index := &fakeVectorIndex{
		search: func(text string, _ int, _ map[string]string) ([]domain.Candidate, error) {
			return []domain.Candidate{{Content: "some row"}}, nil
		},
	}
	uc := NewChatUseCase(model, index, testModelSet(), domain.DefaultLexicon())

	res, err := uc.AnswerQuery(context.Background(), "Berapa UKT Agribisnis?", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Answer != "Jawaban dari data." {
		t.Fatalf("answer = %q", res.Answer)
	}
	if res.Diagnostics.Intent != domain.IntentUmum {
		t.Fatalf("broken plan must degrade to default intent, got %s", res.Diagnostics.Intent)
	}
	if len(res.Diagnostics.Targets) == 0 {
		t.Fatalf("expected query-derived fallback target")
	}
}

func TestAnswerQueryFallsBackToSecondaryModel(t *testing.T) {
	model := &fakeChatModel{
		responses: map[string]string{
			"planner-model":  `{"intent":"FINANCE","entities":["Agribisnis"],"years":[]}`,
			"fallback-model": "Jawaban cadangan.",
		},
		errs: map[string]error{
			"primary-model": errors.New("rate limited"),
		},
	}
	uc := NewChatUseCase(model, &fakeVectorIndex{}, testModelSet(), domain.DefaultLexicon())

	res, err := uc.AnswerQuery(context.Background(), "Berapa UKT Agribisnis?", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Answer != "Jawaban cadangan." {
		t.Fatalf("answer = %q", res.Answer)
	}
	if res.Diagnostics.ModelUsed != "fallback-model" {
		t.Fatalf("ModelUsed = %q, want fallback-model", res.Diagnostics.ModelUsed)
	}
}

func TestAnswerQueryDegradesWhenAllModelsFail(t *testing.T) {
	model := &fakeChatModel{
		errs: map[string]error{
			"planner-model":  errors.New("down"),
			"primary-model":  errors.New("down"),
			"fallback-model": errors.New("down"),
		},
	}
	uc := NewChatUseCase(model, &fakeVectorIndex{}, testModelSet(), domain.DefaultLexicon())

	res, err := uc.AnswerQuery(context.Background(), "Berapa UKT Agribisnis?", nil)
	if err != nil {
		t.Fatalf("total generation failure must not surface as error, got %v", err)
	}
	if res.Answer != technicalDifficultyAnswer {
		t.Fatalf("answer = %q, want technical-difficulty text", res.Answer)
	}
	if len(res.Sources) != 0 {
		t.Fatalf("degraded result must carry no sources, got %d", len(res.Sources))
	}
}

func TestAnswerQueryRendersNoContextMarker(t *testing.T) {
	model := &fakeChatModel{
		responses: map[string]string{
			"planner-model": `{"intent":"UMUM","entities":[],"years":[]}`,
			"primary-model": "Data tidak ditemukan.",
		},
	}
	uc := NewChatUseCase(model, &fakeVectorIndex{}, testModelSet(), domain.DefaultLexicon())

	if _, err := uc.AnswerQuery(context.Background(), "pertanyaan aneh", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calls := model.callsFor("primary-model")
	if len(calls) != 1 {
		t.Fatalf("expected one generation call, got %d", len(calls))
	}
	userMsg := calls[0].messages[len(calls[0].messages)-1]
	if !strings.Contains(userMsg.Content, noContextMarker) {
		t.Fatalf("empty retrieval must render %q, got %q", noContextMarker, userMsg.Content)
	}
}

func TestAnswerQueryCitesSourcesInGeneratorPrompt(t *testing.T) {
	model := &fakeChatModel{
		responses: map[string]string{
			"planner-model": `{"intent":"FINANCE","entities":["Teknik Informatika"],"years":[]}`,
			"primary-model": "ok",
		},
	}
	index := &fakeVectorIndex{
		search: func(string, int, map[string]string) ([]domain.Candidate, error) {
			return []domain.Candidate{{
				Content:  "Teknik Informatika kelompok 3 Rp 3.500.000",
				Metadata: map[string]string{domain.MetaSource: "ukt_2024.csv"},
			}}, nil
		},
	}
	uc := NewChatUseCase(model, index, testModelSet(), domain.DefaultLexicon())

	res, err := uc.AnswerQuery(context.Background(), "Berapa UKT Teknik Informatika?", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Sources) != 1 || res.Sources[0].Source != "ukt_2024.csv" {
		t.Fatalf("sources = %+v", res.Sources)
	}
	if !res.Diagnostics.Found["Teknik Informatika"] {
		t.Fatalf("expected target marked found in diagnostics")
	}

	calls := model.callsFor("primary-model")
	userMsg := calls[0].messages[len(calls[0].messages)-1].Content
	if !strings.Contains(userMsg, "[SUMBER 1]: ukt_2024.csv") {
		t.Fatalf("generator prompt missing numbered source, got %q", userMsg)
	}
}

func TestBuildGeneratorMessagesTrimsHistory(t *testing.T) {
	history := []domain.ChatTurn{
		{Role: "user", Content: "turn 1"},
		{Role: "assistant", Content: "turn 2"},
		{Role: "user", Content: "turn 3"},
		{Role: "assistant", Content: "turn 4"},
		{Role: "user", Content: "turn 5"},
		{Role: "assistant", Content: "turn 6"},
		{Role: "user", Content: "turn 7"},
		{Role: "ASSISTANT", Content: "turn 8"},
	}

	messages := buildGeneratorMessages("q", history, nil, nil, nil)
	// system + windowed history + current question.
	if len(messages) != historyWindow+2 {
		t.Fatalf("message count = %d, want %d", len(messages), historyWindow+2)
	}
	first := messages[1]
	if first.Content != "turn 3" {
		t.Fatalf("history window must keep the most recent turns, first kept = %q", first.Content)
	}
	last := messages[len(messages)-2]
	if last.Role != "assistant" || last.Content != "turn 8" {
		t.Fatalf("role must normalize case, got %+v", last)
	}
}

func TestBuildGeneratorMessagesListsMissingTargets(t *testing.T) {
	found := map[string]bool{"Agribisnis": true, "Biologi": false}
	messages := buildGeneratorMessages("q", nil, nil, []string{"Agribisnis", "Biologi"}, found)

	system := messages[0].Content
	if !strings.Contains(system, "Hilang=[Biologi]") {
		t.Fatalf("system prompt must name missing targets, got %q", system)
	}
}

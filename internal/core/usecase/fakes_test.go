package usecase

import (
	"context"
	"sync"

	"github.com/uinjkt-dev/campus-assistant/internal/core/domain"
)

// fakeChatModel scripts Invoke output per model name and records every
// call so tests can assert on routing and prompt content.
type fakeChatModel struct {
	mu        sync.Mutex
	responses map[string]string
	errs      map[string]error
	calls     []modelCall
}

type modelCall struct {
	model    string
	messages []domain.ChatTurn
}

func (f *fakeChatModel) Invoke(_ context.Context, model string, messages []domain.ChatTurn) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, modelCall{model: model, messages: messages})
	if err, ok := f.errs[model]; ok {
		return "", err
	}
	return f.responses[model], nil
}

func (f *fakeChatModel) callsFor(model string) []modelCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []modelCall
	for _, c := range f.calls {
		if c.model == model {
			out = append(out, c)
		}
	}
	return out
}

// fakeVectorIndex answers similarity searches from a scripted function.
// Searches run concurrently, so call recording is locked.
type fakeVectorIndex struct {
	mu     sync.Mutex
	search func(text string, k int, filter map[string]string) ([]domain.Candidate, error)
	calls  []searchCall
}

type searchCall struct {
	text   string
	k      int
	filter map[string]string
}

func (f *fakeVectorIndex) SimilaritySearch(_ context.Context, text string, k int, filter map[string]string) ([]domain.Candidate, error) {
	f.mu.Lock()
	f.calls = append(f.calls, searchCall{text: text, k: k, filter: filter})
	f.mu.Unlock()
	if f.search == nil {
		return nil, nil
	}
	return f.search(text, k, filter)
}

func (f *fakeVectorIndex) AddDocuments(context.Context, []domain.CorpusDocument, []string) error {
	return nil
}

func (f *fakeVectorIndex) DeleteByFilter(context.Context, map[string]string) error {
	return nil
}

func (f *fakeVectorIndex) DeleteAll(context.Context) error {
	return nil
}

func (f *fakeVectorIndex) recorded() []searchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]searchCall, len(f.calls))
	copy(out, f.calls)
	return out
}

func testModelSet() domain.ModelSet {
	return domain.ModelSet{
		Planner:  "planner-model",
		Primary:  "primary-model",
		Fallback: "fallback-model",
		Judge:    "judge-model",
	}
}

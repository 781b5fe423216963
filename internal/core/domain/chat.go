package domain

// Intent classifies a student question for retrieval filtering.
type Intent string

const (
	IntentFinance   Intent = "FINANCE"
	IntentDeskripsi Intent = "DESKRIPSI"
	IntentUmum      Intent = "UMUM"
)

// ParseIntent normalizes a raw planner value, defaulting to UMUM.
func ParseIntent(raw string) Intent {
	switch Intent(raw) {
	case IntentFinance, IntentDeskripsi:
		return Intent(raw)
	default:
		return IntentUmum
	}
}

// Plan is the structured extraction produced once per query.
// It is immutable after planning; a failed extraction degrades to
// DefaultPlan and the rest of the pipeline must tolerate it.
type Plan struct {
	Entities []string `json:"entities"`
	Intent   Intent   `json:"intent"`
	Years    []string `json:"years"`
}

func DefaultPlan() Plan {
	return Plan{
		Entities: []string{},
		Intent:   IntentUmum,
		Years:    []string{},
	}
}

type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Candidate is a retrieved document scoped to one request.
// Score is cosine similarity from the index: higher is better.
type Candidate struct {
	Content  string
	Score    float64
	Metadata map[string]string
}

// RankedResult is a candidate after heuristic re-scoring.
type RankedResult struct {
	Content string  `json:"content"`
	Score   float64 `json:"score"`
	Source  string  `json:"source"`
}

// Diagnostics is returned alongside the answer for observability.
// It is never persisted by the pipeline itself.
type Diagnostics struct {
	Plan      Plan            `json:"plan"`
	Targets   []string        `json:"targets"`
	Found     map[string]bool `json:"found"`
	Intent    Intent          `json:"intent"`
	ModelUsed string          `json:"model_used"`
}

type ChatResult struct {
	Answer      string         `json:"answer"`
	Sources     []RankedResult `json:"sources"`
	Diagnostics Diagnostics    `json:"diagnostics"`
}

// Evaluation is the verdict of the faithfulness judge. Score 0 is the
// sentinel for a judge that failed to produce a parseable verdict.
type Evaluation struct {
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

// ModelSet names the chat models used by the pipeline.
type ModelSet struct {
	Planner  string
	Primary  string
	Fallback string
	Judge    string
}

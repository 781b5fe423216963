package usecase

import (
	"testing"

	"github.com/uinjkt-dev/campus-assistant/internal/core/domain"
)

func TestParsePlanExtractsObjectFromProse(t *testing.T) {
	raw := "Here is the extraction:\n{\"entities\": [\"S1 Biologi\"], \"intent\": \"FINANCE\", \"years\": [\"2024\"]}\nDone."

	plan, err := parsePlan(raw)
	if err != nil {
		t.Fatalf("parsePlan() error = %v", err)
	}
	if plan.Intent != domain.IntentFinance {
		t.Fatalf("intent = %s, want FINANCE", plan.Intent)
	}
	if len(plan.Entities) != 1 || plan.Entities[0] != "S1 Biologi" {
		t.Fatalf("entities = %v", plan.Entities)
	}
	if len(plan.Years) != 1 || plan.Years[0] != "2024" {
		t.Fatalf("years = %v", plan.Years)
	}
}

func TestParsePlanRejectsProseWithoutObject(t *testing.T) {
	if _, err := parsePlan("cannot extract anything useful"); err == nil {
		t.Fatalf("expected error for braceless output")
	}
}

func TestParsePlanNormalizesUnknownIntent(t *testing.T) {
	plan, err := parsePlan(`{"entities": [], "intent": "WEIRD", "years": null}`)
	if err != nil {
		t.Fatalf("parsePlan() error = %v", err)
	}
	if plan.Intent != domain.IntentUmum {
		t.Fatalf("intent = %s, want UMUM", plan.Intent)
	}
	if plan.Entities == nil || plan.Years == nil {
		t.Fatalf("expected non-nil slices, got %v / %v", plan.Entities, plan.Years)
	}
}

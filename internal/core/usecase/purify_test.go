package usecase

import (
	"reflect"
	"testing"

	"github.com/uinjkt-dev/campus-assistant/internal/core/domain"
)

func TestPurifyEntityStripsNoiseWords(t *testing.T) {
	lex := domain.DefaultLexicon()
	got := purifyEntity("Berapa biaya UKT S1 Agribisnis?", lex.StopWords)
	if got != "S1 Agribisnis" {
		t.Fatalf("purifyEntity() = %q, want %q", got, "S1 Agribisnis")
	}
}

func TestPurifyEntityKeepsShortResultUnstripped(t *testing.T) {
	lex := domain.DefaultLexicon()
	// Everything except "TI" is a stop word; over-stripping would leave a
	// two-character term, so the punctuation-stripped form wins.
	got := purifyEntity("biaya kuliah TI", lex.StopWords)
	if got != "biaya kuliah TI" {
		t.Fatalf("purifyEntity() = %q, want punctuation-stripped original", got)
	}
}

func TestBuildTargetsFallsBackToQuery(t *testing.T) {
	lex := domain.DefaultLexicon()
	query := "Berapa UKT Teknik Informatika?"

	targets := buildTargets(nil, query, lex.StopWords)
	if !reflect.DeepEqual(targets, []string{query}) {
		t.Fatalf("buildTargets() = %v, want [%q]", targets, query)
	}
}

func TestBuildTargetsDeduplicatesAndCaps(t *testing.T) {
	lex := domain.DefaultLexicon()
	entities := []string{
		"S1 Agribisnis", "S1 Agribisnis!", "S2 Hukum", "Kimia", "Fisika",
		"Biologi", "Matematika",
	}

	targets := buildTargets(entities, "q", lex.StopWords)
	if len(targets) != maxTargets {
		t.Fatalf("expected %d targets, got %d: %v", maxTargets, len(targets), targets)
	}
	seen := make(map[string]struct{}, len(targets))
	for _, target := range targets {
		if _, dup := seen[target]; dup {
			t.Fatalf("duplicate target %q in %v", target, targets)
		}
		seen[target] = struct{}{}
	}
	if targets[0] != "S1 Agribisnis" {
		t.Fatalf("expected first-seen order, got %v", targets)
	}
}

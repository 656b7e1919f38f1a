package rules

import (
	"strings"
	"testing"

	"github.com/casetrace/evidence-analyzer/pkg/models"
)

func TestDenialVsAssertion(t *testing.T) {
	tests := []struct {
		name string
		pair Pair
		want bool
	}{
		{
			name: "denial against assertion",
			pair: Pair{
				TextA:          "I never spoke to Marcus that night.",
				TextB:          "I saw Marcus on the phone around midnight.",
				SharedEntities: []string{"Marcus"},
			},
			want: true,
		},
		{
			name: "two assertions",
			pair: Pair{
				TextA:          "I saw Marcus at the bar.",
				TextB:          "I met Marcus outside.",
				SharedEntities: []string{"Marcus"},
			},
			want: false,
		},
		{
			name: "no shared entity anchored in either text",
			pair: Pair{
				TextA:          "I never spoke to him.",
				TextB:          "I saw him on the phone.",
				SharedEntities: []string{"Marcus"},
			},
			want: false,
		},
		{
			name: "no shared entities at all",
			pair: Pair{
				TextA: "I never spoke to Marcus.",
				TextB: "I saw Marcus on the phone.",
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := DenialVsAssertion{}.Evaluate(tt.pair)
			if ok != tt.want {
				t.Fatalf("expected flagged=%v, got %v", tt.want, ok)
			}
			if ok && f.Type != models.TypeDenialVsAssertion {
				t.Errorf("unexpected type %s", f.Type)
			}
		})
	}
}

func TestLocationConflict(t *testing.T) {
	pair := Pair{
		TextA:          "Marcus was at home all evening.",
		TextB:          "I saw Marcus at the scene.",
		SharedEntities: []string{"Marcus"},
	}

	f, ok := LocationConflict{}.Evaluate(pair)
	if !ok {
		t.Fatal("expected location conflict")
	}
	if f.Type != models.TypeLocationConflict {
		t.Errorf("unexpected type %s", f.Type)
	}
	if !strings.Contains(f.Explanation, "home") || !strings.Contains(f.Explanation, "scene") {
		t.Errorf("explanation should name both locations: %q", f.Explanation)
	}
}

func TestLocationConflict_OverlappingLocations(t *testing.T) {
	pair := Pair{
		TextA:          "Marcus was at the scene and later at home.",
		TextB:          "I saw Marcus at the scene.",
		SharedEntities: []string{"Marcus"},
	}

	if _, ok := (LocationConflict{}).Evaluate(pair); ok {
		t.Error("overlapping location sets must not flag")
	}
}

func TestLocationConflict_OneSideWithoutLocations(t *testing.T) {
	pair := Pair{
		TextA:          "Marcus seemed nervous that evening.",
		TextB:          "I saw Marcus at the scene.",
		SharedEntities: []string{"Marcus"},
	}

	if _, ok := (LocationConflict{}).Evaluate(pair); ok {
		t.Error("pair with one empty location set must not flag")
	}
}

func TestTimeConflict(t *testing.T) {
	pair := Pair{
		TextA:          "Marcus left at 9 PM.",
		TextB:          "Marcus did not leave until 11:30 pm.",
		SharedEntities: []string{"Marcus"},
	}

	f, ok := TimeConflict{}.Evaluate(pair)
	if !ok {
		t.Fatal("expected time conflict")
	}
	if f.Type != models.TypeTimeConflict {
		t.Errorf("unexpected type %s", f.Type)
	}
}

func TestTimeConflict_WhitespaceInsensitiveNormalization(t *testing.T) {
	pair := Pair{
		TextA:          "Marcus left at 9 PM.",
		TextB:          "Marcus left at 9PM sharp.",
		SharedEntities: []string{"Marcus"},
	}

	if _, ok := (TimeConflict{}).Evaluate(pair); ok {
		t.Error("9 PM and 9PM normalize to the same mention and must not flag")
	}
}

func TestStatementVsEvidence(t *testing.T) {
	pair := Pair{
		TextA:          "Marcus was never at the warehouse.",
		TextB:          "CCTV footage shows Marcus entering the warehouse.",
		SharedEntities: []string{"Marcus"},
	}

	f, ok := StatementVsEvidence{}.Evaluate(pair)
	if !ok {
		t.Fatal("expected statement-vs-evidence conflict")
	}
	if f.Type != models.TypeStatementVsEvidence {
		t.Errorf("unexpected type %s", f.Type)
	}
}

func TestStatementVsEvidence_NoDenialOnStatementSide(t *testing.T) {
	pair := Pair{
		TextA:          "Marcus was at the warehouse that evening.",
		TextB:          "CCTV footage shows Marcus entering the warehouse.",
		SharedEntities: []string{"Marcus"},
	}

	if _, ok := (StatementVsEvidence{}).Evaluate(pair); ok {
		t.Error("assertion against evidence must not flag; the rule requires a denial")
	}
}

func TestStatementVsEvidence_BothCiteEvidence(t *testing.T) {
	pair := Pair{
		TextA:          "Phone records show Marcus was not in the area.",
		TextB:          "CCTV footage shows Marcus entering the warehouse.",
		SharedEntities: []string{"Marcus"},
	}

	if _, ok := (StatementVsEvidence{}).Evaluate(pair); ok {
		t.Error("two evidence-citing chunks must not flag under this rule")
	}
}

func TestMultipleRulesCanFireOnOnePair(t *testing.T) {
	pair := Pair{
		TextA:          "Marcus was at home at 8 PM.",
		TextB:          "I saw Marcus at the scene at 10 PM.",
		SharedEntities: []string{"Marcus"},
	}

	var fired []models.ContradictionType
	for _, r := range Ordered() {
		if f, ok := r.Evaluate(pair); ok {
			fired = append(fired, f.Type)
		}
	}

	hasLocation, hasTime := false, false
	for _, typ := range fired {
		if typ == models.TypeLocationConflict {
			hasLocation = true
		}
		if typ == models.TypeTimeConflict {
			hasTime = true
		}
	}
	if !hasLocation || !hasTime {
		t.Errorf("expected both location and time conflicts, got %v", fired)
	}
}

func TestExplanationsContainNoAdjudication(t *testing.T) {
	pair := Pair{
		TextA:          "Marcus was at home at 8 PM and never left.",
		TextB:          "CCTV footage shows Marcus at the scene at 10 PM. I saw him there.",
		SharedEntities: []string{"Marcus"},
	}

	for _, r := range Ordered() {
		f, ok := r.Evaluate(pair)
		if !ok {
			continue
		}
		lower := strings.ToLower(f.Explanation)
		for _, banned := range []string{"true", "false", "correct", "likely"} {
			if strings.Contains(lower, banned) {
				t.Errorf("rule %s explanation adjudicates (%q): %q", r.Name(), banned, f.Explanation)
			}
		}
	}
}

func TestRuleOrderIsFixed(t *testing.T) {
	want := []string{"denial_vs_assertion", "location_conflict", "time_conflict", "statement_vs_evidence"}
	got := Ordered()
	if len(got) != len(want) {
		t.Fatalf("expected %d rules, got %d", len(want), len(got))
	}
	for i, r := range got {
		if r.Name() != want[i] {
			t.Errorf("rule %d: expected %s, got %s", i, want[i], r.Name())
		}
	}
}

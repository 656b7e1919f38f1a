// Package rules holds the deterministic text-pattern detectors. Each rule
// is a pure function over the two chunk texts, the pre-computed shared
// entities, and an optional coincident timestamp. Rules never consult
// anything beyond those inputs: no external knowledge, no inference past
// literal pattern matching.
package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/casetrace/evidence-analyzer/pkg/models"
)

// Pair is the rule-engine view of a candidate pair.
type Pair struct {
	TextA          string
	TextB          string
	SharedEntities []string
	Timestamp      string
}

// Finding is a triggered contradiction type with its factual explanation.
// Explanations describe what was matched; they never adjudicate which
// statement is accurate.
type Finding struct {
	Type        models.ContradictionType
	Explanation string
}

// Rule decides whether one specific contradiction type applies to a pair.
type Rule interface {
	Name() string
	Evaluate(p Pair) (Finding, bool)
}

// Ordered returns the detectors in their fixed evaluation order. The order
// is part of the output contract: contradiction identifiers are positional,
// so reordering rules changes identifiers.
func Ordered() []Rule {
	return []Rule{
		DenialVsAssertion{},
		LocationConflict{},
		TimeConflict{},
		StatementVsEvidence{},
	}
}

// DenialVsAssertion flags pairs where one chunk denies and the other
// asserts, about an entity named in both texts.
type DenialVsAssertion struct{}

func (DenialVsAssertion) Name() string { return "denial_vs_assertion" }

func (DenialVsAssertion) Evaluate(p Pair) (Finding, bool) {
	entity, ok := anchoredEntity(p)
	if !ok {
		return Finding{}, false
	}

	denialA := matchesAny(p.TextA, denialPatterns)
	denialB := matchesAny(p.TextB, denialPatterns)
	assertA := matchesAny(p.TextA, assertionPatterns)
	assertB := matchesAny(p.TextB, assertionPatterns)

	if (denialA && assertB) || (denialB && assertA) {
		return Finding{
			Type: models.TypeDenialVsAssertion,
			Explanation: fmt.Sprintf(
				"One statement contains a denial while the other contains an assertion concerning %s.", entity),
		}, true
	}
	return Finding{}, false
}

// LocationConflict flags pairs whose extracted location mentions are both
// non-empty and disjoint.
type LocationConflict struct{}

func (LocationConflict) Name() string { return "location_conflict" }

func (LocationConflict) Evaluate(p Pair) (Finding, bool) {
	entity, ok := anchoredEntity(p)
	if !ok {
		return Finding{}, false
	}

	locsA := extractLocations(p.TextA)
	locsB := extractLocations(p.TextB)
	if len(locsA) == 0 || len(locsB) == 0 || !disjoint(locsA, locsB) {
		return Finding{}, false
	}

	return Finding{
		Type: models.TypeLocationConflict,
		Explanation: fmt.Sprintf(
			"The statements place events at different locations (%s vs %s) concerning %s.",
			strings.Join(locsA, ", "), strings.Join(locsB, ", "), entity),
	}, true
}

// TimeConflict flags pairs whose extracted time-of-day mentions are both
// non-empty and disjoint. The comparison is a literal disjoint-set check
// over normalized mentions; it does not reason about whether the two
// statements describe the same event window, which is a known over-flagging
// limitation of the reviewed rule set.
type TimeConflict struct{}

func (TimeConflict) Name() string { return "time_conflict" }

func (TimeConflict) Evaluate(p Pair) (Finding, bool) {
	entity, ok := anchoredEntity(p)
	if !ok {
		return Finding{}, false
	}

	timesA := extractTimes(p.TextA)
	timesB := extractTimes(p.TextB)
	if len(timesA) == 0 || len(timesB) == 0 || !disjoint(timesA, timesB) {
		return Finding{}, false
	}

	return Finding{
		Type: models.TypeTimeConflict,
		Explanation: fmt.Sprintf(
			"The statements give different times (%s vs %s) concerning %s.",
			strings.Join(timesA, ", "), strings.Join(timesB, ", "), entity),
	}, true
}

// StatementVsEvidence flags pairs where one chunk cites a documented
// evidence source and the other, evidence-free chunk contains a denial.
type StatementVsEvidence struct{}

func (StatementVsEvidence) Name() string { return "statement_vs_evidence" }

func (StatementVsEvidence) Evaluate(p Pair) (Finding, bool) {
	entity, ok := anchoredEntity(p)
	if !ok {
		return Finding{}, false
	}

	evidenceA := matchesAny(p.TextA, evidenceTerms)
	evidenceB := matchesAny(p.TextB, evidenceTerms)
	if evidenceA == evidenceB {
		return Finding{}, false
	}

	statement := p.TextA
	if evidenceA {
		statement = p.TextB
	}
	if !matchesAny(statement, denialPatterns) {
		return Finding{}, false
	}

	return Finding{
		Type: models.TypeStatementVsEvidence,
		Explanation: fmt.Sprintf(
			"One statement cites a documented evidence source while the other contains a denial concerning %s.", entity),
	}, true
}

// anchoredEntity returns the first shared entity whose name token appears
// literally, case-insensitively, in at least one of the two texts. Shared
// entities are established by the pairing stage (entity-map intersection or
// speaker attribution), so a first-person chunk legitimately anchors an
// entity that is only named in its counterpart.
func anchoredEntity(p Pair) (string, bool) {
	lowerA := strings.ToLower(p.TextA)
	lowerB := strings.ToLower(p.TextB)
	for _, entity := range p.SharedEntities {
		for _, token := range strings.Fields(strings.ToLower(entity)) {
			if strings.Contains(lowerA, token) || strings.Contains(lowerB, token) {
				return entity, true
			}
		}
	}
	return "", false
}

func extractLocations(text string) []string {
	matches := locationPattern.FindAllStringSubmatch(text, -1)
	return normalizeSet(matches, func(m []string) string {
		return strings.ToLower(m[1])
	})
}

func extractTimes(text string) []string {
	matches := timePattern.FindAllStringSubmatch(text, -1)
	return normalizeSet(matches, func(m []string) string {
		t := m[1]
		if m[2] != "" {
			t += ":" + m[2]
		}
		return t + strings.ToLower(m[3]) + "m"
	})
}

func normalizeSet(matches [][]string, key func([]string) string) []string {
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		k := key(m)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func disjoint(xs, ys []string) bool {
	set := make(map[string]struct{}, len(xs))
	for _, x := range xs {
		set[x] = struct{}{}
	}
	for _, y := range ys {
		if _, ok := set[y]; ok {
			return false
		}
	}
	return true
}

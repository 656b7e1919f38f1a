package nli

import (
	"context"
	"math"
	"regexp"
	"strings"

	"gonum.org/v1/gonum/floats"
)

var negationMarkers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bnot\b`),
	regexp.MustCompile(`(?i)\bnever\b`),
	regexp.MustCompile(`(?i)\bno\b`),
	regexp.MustCompile(`(?i)\bdidn'?t\b`),
	regexp.MustCompile(`(?i)\bwasn'?t\b`),
	regexp.MustCompile(`(?i)\bden(?:y|ies|ied)\b`),
}

var tokenPattern = regexp.MustCompile(`[a-z0-9']+`)

// HeuristicClassifier is a deterministic lexical stand-in for a trained NLI
// model. It compares token-count vectors by cosine similarity and reads
// negation polarity: two statements about the same material with opposite
// polarity classify as contradiction, same polarity as entailment, and
// lexically unrelated statements as neutral.
type HeuristicClassifier struct {
	// MinOverlap is the cosine similarity below which a pair is neutral.
	MinOverlap float64
}

// NewHeuristicClassifier returns a classifier with the default overlap bound.
func NewHeuristicClassifier() *HeuristicClassifier {
	return &HeuristicClassifier{MinOverlap: 0.2}
}

// Classify implements Classifier. It never returns an error and never
// consults anything beyond the two texts.
func (h *HeuristicClassifier) Classify(_ context.Context, textA, textB string) (Label, float64, error) {
	sim := tokenCosine(textA, textB)
	if sim < h.MinOverlap {
		return LabelNeutral, clamp(1 - sim), nil
	}

	if negated(textA) != negated(textB) {
		return LabelContradiction, clamp(0.5 + sim/2), nil
	}
	return LabelEntailment, clamp(0.5 + sim/2), nil
}

func negated(text string) bool {
	for _, m := range negationMarkers {
		if m.MatchString(text) {
			return true
		}
	}
	return false
}

// tokenCosine computes cosine similarity between the token-count vectors of
// the two texts, with negation markers excluded so polarity words do not
// count as shared material.
func tokenCosine(textA, textB string) float64 {
	countsA := tokenCounts(textA)
	countsB := tokenCounts(textB)
	if len(countsA) == 0 || len(countsB) == 0 {
		return 0
	}

	vocab := make(map[string]int)
	for tok := range countsA {
		if _, ok := vocab[tok]; !ok {
			vocab[tok] = len(vocab)
		}
	}
	for tok := range countsB {
		if _, ok := vocab[tok]; !ok {
			vocab[tok] = len(vocab)
		}
	}

	va := make([]float64, len(vocab))
	vb := make([]float64, len(vocab))
	for tok, i := range vocab {
		va[i] = float64(countsA[tok])
		vb[i] = float64(countsB[tok])
	}

	magA := math.Sqrt(floats.Dot(va, va))
	magB := math.Sqrt(floats.Dot(vb, vb))
	if magA == 0 || magB == 0 {
		return 0
	}
	return floats.Dot(va, vb) / (magA * magB)
}

func tokenCounts(text string) map[string]int {
	counts := make(map[string]int)
	for _, tok := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		if isNegationToken(tok) {
			continue
		}
		counts[tok]++
	}
	return counts
}

func isNegationToken(tok string) bool {
	switch tok {
	case "not", "never", "no", "didn't", "didnt", "wasn't", "wasnt", "deny", "denies", "denied":
		return true
	}
	return false
}

func clamp(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

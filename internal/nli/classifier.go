// Package nli provides the secondary confirmation stage: a narrow
// natural-language-inference contract used to veto or tighten already
// flagged pairs. Classifiers are never used for discovery.
package nli

import "context"

// Label is an NLI verdict over an ordered pair of texts.
type Label string

const (
	LabelContradiction Label = "contradiction"
	LabelNeutral       Label = "neutral"
	LabelEntailment    Label = "entailment"
)

// Classifier is the pluggable confirmation boundary: two texts in, a label
// and a confidence scalar out. The heuristic implementation and a trained
// model behind an API are interchangeable without touching pipeline logic.
type Classifier interface {
	Classify(ctx context.Context, textA, textB string) (Label, float64, error)
}

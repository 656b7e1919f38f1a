package contradiction

import (
	"context"
	"fmt"
	"regexp"

	"github.com/casetrace/evidence-analyzer/internal/chunk"
	"github.com/casetrace/evidence-analyzer/internal/nli"
	"github.com/casetrace/evidence-analyzer/internal/pairing"
	"github.com/casetrace/evidence-analyzer/internal/rules"
	"github.com/casetrace/evidence-analyzer/pkg/models"
)

// Detector runs the contradiction-detection pipeline. It holds no mutable
// state across invocations; every Detect call is self-contained.
type Detector struct {
	classifier nli.Classifier
	rules      []rules.Rule
}

// NewDetector creates a detector. The classifier is only consulted when a
// run's config enables secondary confirmation; pass nil to fall back to the
// deterministic heuristic classifier.
func NewDetector(classifier nli.Classifier) *Detector {
	if classifier == nil {
		classifier = nli.NewHeuristicClassifier()
	}
	return &Detector{
		classifier: classifier,
		rules:      rules.Ordered(),
	}
}

// Detect flags contradictions among the given case's chunks. Chunks from
// other cases are excluded from pairing entirely. The output is fully
// determined by the inputs: same chunks, entities, timeline, and config
// always produce the same contradictions in the same order with the same
// identifiers.
func (d *Detector) Detect(
	ctx context.Context,
	caseID string,
	chunks []chunk.Accessor,
	entities map[string][]string,
	timeline []models.TimelineEvent,
	cfg Config,
) (models.ContradictionResult, error) {
	result := models.ContradictionResult{
		CaseID:         caseID,
		Contradictions: []models.Contradiction{},
		ByType:         make(map[models.ContradictionType]int),
		BySeverity:     make(map[models.ContradictionSeverity]int),
	}

	inCase := make([]chunk.Accessor, 0, len(chunks))
	for _, c := range chunks {
		if c.CaseID() == caseID {
			inCase = append(inCase, c)
		}
	}
	result.ChunksAnalyzed = len(inCase)

	pairs := pairing.BuildPairs(inCase, pairing.Options{
		RequireEntityOverlap: cfg.RequireEntityOverlap,
		Entities:             entities,
	})
	pairs = pairing.AttachTimestamps(pairs, timelineByChunk(timeline))
	result.PairsCompared = len(pairs)

	seq := 0
	for _, pair := range pairs {
		// A cross-case pair past the pairing stage is a programming fault.
		// Skipping it silently would corrupt the positional ID sequence, so
		// fail loudly instead.
		if pair.A.CaseID() != caseID || pair.B.CaseID() != caseID {
			panic(fmt.Sprintf("contradiction: cross-case pair %s/%s reached rule stage for case %s",
				pair.A.ID(), pair.B.ID(), caseID))
		}

		rulePair := rules.Pair{
			TextA:          pair.A.Text(),
			TextB:          pair.B.Text(),
			SharedEntities: pair.SharedEntities,
			Timestamp:      pair.Timestamp,
		}

		for _, rule := range d.rules {
			finding, ok := rule.Evaluate(rulePair)
			if !ok {
				continue
			}

			confidence := CombineConfidence(pair.A.Confidence(), pair.B.Confidence())
			if confidence < cfg.MinConfidence {
				continue
			}

			if cfg.UseNLI {
				label, nliConf, err := d.classifier.Classify(ctx, rulePair.TextA, rulePair.TextB)
				if err != nil {
					return models.ContradictionResult{}, fmt.Errorf("secondary confirmation: %w", err)
				}
				if label != nli.LabelContradiction || nliConf < cfg.MinNLIConfidence {
					continue
				}
				confidence = CombineConfidence(confidence, nliConf)
			}

			severity := ClassifySeverity(finding.Type, confidence, len(pair.SharedEntities), pair.Timestamp != "")

			result.Contradictions = append(result.Contradictions, models.Contradiction{
				ContradictionID: GenerateContradictionID(caseID, seq),
				CaseID:          caseID,
				Type:            finding.Type,
				ChunkA:          chunk.Reference(pair.A),
				ChunkB:          chunk.Reference(pair.B),
				Confidence:      confidence,
				Severity:        severity,
				Explanation:     finding.Explanation,
				Status:          models.StatusFlagged,
				SharedEntities:  pair.SharedEntities,
				Timestamp:       pair.Timestamp,
			})
			seq++
		}
	}

	result.TotalContradictions = len(result.Contradictions)
	for _, c := range result.Contradictions {
		result.ByType[c.Type]++
		result.BySeverity[c.Severity]++
	}

	return result, nil
}

// VerifyDeterminism re-runs detection on identical input and reports
// whether every run produced the same total and the same ordered identifier
// list. Runs use the default configuration, which keeps the pipeline on the
// deterministic classifier path.
func (d *Detector) VerifyDeterminism(
	ctx context.Context,
	caseID string,
	chunks []chunk.Accessor,
	entities map[string][]string,
	runs int,
) (bool, error) {
	if runs < 2 {
		runs = 2
	}

	reference, err := d.Detect(ctx, caseID, chunks, entities, nil, DefaultConfig())
	if err != nil {
		return false, err
	}

	for i := 1; i < runs; i++ {
		run, err := d.Detect(ctx, caseID, chunks, entities, nil, DefaultConfig())
		if err != nil {
			return false, err
		}
		if run.TotalContradictions != reference.TotalContradictions {
			return false, nil
		}
		for j := range run.Contradictions {
			if run.Contradictions[j].ContradictionID != reference.Contradictions[j].ContradictionID {
				return false, nil
			}
		}
	}

	return true, nil
}

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)

// GenerateContradictionID builds the deterministic positional identifier
// for a contradiction: CONT_<case id with non-alphanumerics replaced by
// underscores>_<zero-padded sequence index>.
func GenerateContradictionID(caseID string, index int) string {
	return fmt.Sprintf("CONT_%s_%04d", nonAlphanumeric.ReplaceAllString(caseID, "_"), index)
}

func timelineByChunk(events []models.TimelineEvent) map[string]string {
	if len(events) == 0 {
		return nil
	}
	byChunk := make(map[string]string, len(events))
	for _, e := range events {
		byChunk[e.ChunkID] = e.Timestamp
	}
	return byChunk
}

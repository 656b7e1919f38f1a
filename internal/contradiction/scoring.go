package contradiction

import (
	"math"

	"github.com/casetrace/evidence-analyzer/pkg/models"
)

// CombineConfidence folds per-source confidences into a pair confidence by
// taking the minimum. The minimum is deliberate: one highly-confident chunk
// must not mask uncertainty in its counterpart.
func CombineConfidence(values ...float64) float64 {
	combined := math.Inf(1)
	for _, v := range values {
		if v < combined {
			combined = v
		}
	}
	if math.IsInf(combined, 1) {
		return 0
	}
	return combined
}

// baselineSeverity is the fixed per-type severity baseline.
var baselineSeverity = map[models.ContradictionType]models.ContradictionSeverity{
	models.TypeTimeConflict:        models.SeverityMedium,
	models.TypeLocationConflict:    models.SeverityHigh,
	models.TypeStatementVsEvidence: models.SeverityCritical,
	models.TypeDenialVsAssertion:   models.SeverityHigh,
}

// ClassifySeverity maps a contradiction onto the severity scale: the
// type baseline as an integer rank, adjusted by confidence, entity overlap
// size, and timestamp coincidence, clamped back into the scale. Pure
// function; identical inputs always produce the identical severity.
func ClassifySeverity(typ models.ContradictionType, confidence float64, sharedEntities int, hasTimestamp bool) models.ContradictionSeverity {
	rank := models.SeverityRank(baselineSeverity[typ])

	if confidence >= 0.9 {
		rank++
	}
	if confidence < 0.6 {
		rank--
	}
	if sharedEntities >= 2 {
		rank++
	}
	if hasTimestamp && typ == models.TypeLocationConflict {
		rank++
	}

	if rank < 1 {
		rank = 1
	}
	if rank > 4 {
		rank = 4
	}
	return models.RankSeverity(rank)
}

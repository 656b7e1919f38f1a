package models

// Chunk is a provenance-tagged unit of evidentiary text produced by the
// upstream extraction subsystem. Chunks are read-only inputs: the analyzer
// never edits, merges, or deletes them.
type Chunk struct {
	ChunkID    string  `json:"chunk_id"`
	CaseID     string  `json:"case_id"`
	DocumentID string  `json:"document_id"`
	PageRange  [2]int  `json:"page_range"`
	Speaker    string  `json:"speaker,omitempty"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// ChunkReference is the projection of a Chunk embedded in output records so
// the original evidence location stays traceable. It carries the literal
// text and page range; no summarization happens at this boundary.
type ChunkReference struct {
	ChunkID    string `json:"chunk_id"`
	CaseID     string `json:"case_id"`
	DocumentID string `json:"document_id"`
	PageRange  [2]int `json:"page_range"`
	Speaker    string `json:"speaker,omitempty"`
	Text       string `json:"text"`
}

// ContradictionType classifies a detected contradiction. The set is closed:
// adding a member is a policy change, not something done in passing.
type ContradictionType string

const (
	TypeTimeConflict        ContradictionType = "TIME_CONFLICT"
	TypeLocationConflict    ContradictionType = "LOCATION_CONFLICT"
	TypeStatementVsEvidence ContradictionType = "STATEMENT_VS_EVIDENCE"
	TypeDenialVsAssertion   ContradictionType = "DENIAL_VS_ASSERTION"
)

// ContradictionSeverity is an ordered coarse ranking of how directly two
// chunks conflict. It says nothing about which chunk is accurate.
type ContradictionSeverity string

const (
	SeverityLow      ContradictionSeverity = "LOW"
	SeverityMedium   ContradictionSeverity = "MEDIUM"
	SeverityHigh     ContradictionSeverity = "HIGH"
	SeverityCritical ContradictionSeverity = "CRITICAL"
)

// ContradictionStatus has a single value. Contradictions are flagged and
// stay flagged; resolution belongs to human reviewers, not this system.
type ContradictionStatus string

const StatusFlagged ContradictionStatus = "FLAGGED"

// Contradiction is a flagged, unresolved factual inconsistency between two
// chunks of the same case. ChunkA and ChunkB are canonically ordered by
// chunk id.
type Contradiction struct {
	ContradictionID string                `json:"contradiction_id"`
	CaseID          string                `json:"case_id"`
	Type            ContradictionType     `json:"type"`
	ChunkA          ChunkReference        `json:"chunk_a"`
	ChunkB          ChunkReference        `json:"chunk_b"`
	Confidence      float64               `json:"confidence"`
	Severity        ContradictionSeverity `json:"severity"`
	Explanation     string                `json:"explanation"`
	Status          ContradictionStatus   `json:"status"`
	SharedEntities  []string              `json:"shared_entities"`
	Timestamp       string                `json:"timestamp,omitempty"`
}

// ContradictionResult is the aggregate output of one detection run.
type ContradictionResult struct {
	CaseID              string                        `json:"case_id"`
	Contradictions      []Contradiction               `json:"contradictions"`
	TotalContradictions int                           `json:"total_contradictions"`
	ChunksAnalyzed      int                           `json:"chunks_analyzed"`
	PairsCompared       int                           `json:"pairs_compared"`
	ByType              map[ContradictionType]int     `json:"by_type"`
	BySeverity          map[ContradictionSeverity]int `json:"by_severity"`
}

// TimelineEvent maps a chunk onto a timeline position. Events are supplied
// by the upstream timeline subsystem and only annotate pairs; they never
// filter them.
type TimelineEvent struct {
	ChunkID   string `json:"chunk_id"`
	Timestamp string `json:"timestamp"`
}

// SeverityRank maps a severity onto its position in the LOW < MEDIUM <
// HIGH < CRITICAL ordering. Unknown severities rank below LOW.
func SeverityRank(s ContradictionSeverity) int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// RankSeverity is the inverse of SeverityRank, clamping out-of-range ranks
// to the nearest bound.
func RankSeverity(rank int) ContradictionSeverity {
	switch {
	case rank <= 1:
		return SeverityLow
	case rank == 2:
		return SeverityMedium
	case rank == 3:
		return SeverityHigh
	default:
		return SeverityCritical
	}
}

package contradiction

// Config holds detection configuration. It is passed explicitly into every
// pipeline invocation; there is no shared state between runs.
type Config struct {
	// UseNLI enables the secondary confirmation pass over rule-flagged
	// pairs. Confirmation can only veto or tighten, never discover.
	UseNLI bool `json:"use_nli"`
	// MinConfidence discards flagged pairs whose combined confidence falls
	// below this threshold.
	MinConfidence float64 `json:"min_confidence"`
	// RequireEntityOverlap restricts pairing to entity-sharing pairs.
	RequireEntityOverlap bool `json:"require_entity_overlap"`
	// MinNLIConfidence is the confirmation confidence below which an
	// enabled classifier vetoes the pair.
	MinNLIConfidence float64 `json:"min_nli_confidence"`
}

// DefaultConfig returns default detection configuration.
func DefaultConfig() Config {
	return Config{
		UseNLI:               false,
		MinConfidence:        0.5,
		RequireEntityOverlap: true,
		MinNLIConfidence:     0.7,
	}
}

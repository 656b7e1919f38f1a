package rules

import "regexp"

// The lexicons below are the reviewed rule vocabulary. They are fixed on
// purpose: detection behavior must match the documented rule set, so
// extending a lexicon is a policy change, not a tuning knob.

// denialPatterns match negation markers in a statement.
var denialPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bnot\b`),
	regexp.MustCompile(`(?i)\bnever\b`),
	regexp.MustCompile(`(?i)\bdidn'?t\b`),
	regexp.MustCompile(`(?i)\bwasn'?t\b`),
	regexp.MustCompile(`(?i)\bden(?:y|ies|ied)\b`),
}

// assertionPatterns match first- and third-person declarative claim markers.
var assertionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bI was\b`),
	regexp.MustCompile(`(?i)\bI saw\b`),
	regexp.MustCompile(`(?i)\bI have\b`),
	regexp.MustCompile(`(?i)\bI heard\b`),
	regexp.MustCompile(`(?i)\bI met\b`),
	regexp.MustCompile(`(?i)\b(?:he|she|they) (?:was|were)\b`),
	regexp.MustCompile(`(?i)\b(?:he|she|they) (?:saw|heard|met)\b`),
}

// locationPattern extracts location mentions via fixed prepositional forms.
var locationPattern = regexp.MustCompile(
	`(?i)\b(?:at|in)\s+(?:the\s+|his\s+|her\s+|their\s+|my\s+)?` +
		`(home|scene|house|apartment|office|work|station|bar|club|park|hotel|garage|warehouse|hospital|car)\b`)

// timePattern extracts time-of-day mentions: a clock number with an
// optional minutes part and a meridiem marker.
var timePattern = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*([ap])\.?m\.?\b`)

// evidenceTerms is the evidence lexicon for the statement-vs-evidence rule.
var evidenceTerms = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bforensic`),
	regexp.MustCompile(`(?i)\bDNA\b`),
	regexp.MustCompile(`(?i)\bfingerprint`),
	regexp.MustCompile(`(?i)\bCCTV\b`),
	regexp.MustCompile(`(?i)\bfootage\b`),
	regexp.MustCompile(`(?i)\bsurveillance\b`),
	regexp.MustCompile(`(?i)\brecords?\b`),
	regexp.MustCompile(`(?i)\blogs?\b`),
	regexp.MustCompile(`(?i)\bballistics?\b`),
	regexp.MustCompile(`(?i)\blab (?:result|report)s?\b`),
}

func matchesAny(text string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

package models

// Confidence qualifies a detected language.
type Confidence string

const (
	// ConfidenceHigh is reported for script matches and lexical scoring.
	ConfidenceHigh Confidence = "high"
	// ConfidenceLow is reported for diacritic-only fallback heuristics.
	ConfidenceLow Confidence = "low"
)

// Tier names the rule family that produced a detection.
type Tier string

const (
	TierScript   Tier = "script-exact"
	TierScored   Tier = "latin-scored"
	TierFallback Tier = "heuristic"
	TierNone     Tier = "none"
)

// Confidence maps the tier to the confidence it reports.
func (t Tier) Confidence() Confidence {
	switch t {
	case TierScript, TierScored:
		return ConfidenceHigh
	case TierFallback:
		return ConfidenceLow
	default:
		return ""
	}
}

// Result is the detector output. Both fields are nil when the text is too
// short or nothing matched.
type Result struct {
	Language   *string     `json:"language"`
	Confidence *Confidence `json:"confidence"`
}

// Unknown is the result for undetectable input.
func Unknown() Result {
	return Result{}
}

// Detected builds a result for a matched language.
func Detected(language string, confidence Confidence) Result {
	return Result{Language: &language, Confidence: &confidence}
}

// Found reports whether a language was detected.
func (r Result) Found() bool {
	return r.Language != nil
}

// LanguageOr returns the detected language or fallback.
func (r Result) LanguageOr(fallback string) string {
	if r.Language == nil {
		return fallback
	}
	return *r.Language
}

// Score is the normalised latin-scored value for one language.
type Score struct {
	Language string  `json:"language"`
	Value    float64 `json:"score"`
}

package model

// CategoryKind distinguishes deductions from bonuses
type CategoryKind string

const (
	KindRisk       CategoryKind = "RISK"
	KindCompliance CategoryKind = "COMPLIANCE"
)

// Severity labels a risk category
type Severity string

const (
	SeverityInformational Severity = "informational"
	SeverityModerate      Severity = "moderate"
	SeveritySevere        Severity = "severe"
)

// Valid reports whether s is a known severity
func (s Severity) Valid() bool {
	switch s {
	case SeverityInformational, SeverityModerate, SeveritySevere:
		return true
	}
	return false
}

// MatchRule is a single textual detector. Exactly one of Phrase or Pattern is set.
type MatchRule struct {
	Phrase  string `json:"phrase,omitempty" yaml:"phrase,omitempty"`   // literal, matched after normalization
	Pattern string `json:"pattern,omitempty" yaml:"pattern,omitempty"` // RE2 expression
}

// String returns the rule as it appears in reports
func (r MatchRule) String() string {
	if r.Pattern != "" {
		return "pattern:" + r.Pattern
	}
	return "phrase:" + r.Phrase
}

// PatternCategory is a named detection unit of the catalog
type PatternCategory struct {
	ID             string       `json:"id" yaml:"id"`
	Kind           CategoryKind `json:"kind" yaml:"kind"`
	DisplayName    string       `json:"display_name" yaml:"display_name"`
	Weight         int          `json:"weight" yaml:"weight"`
	Severity       Severity     `json:"severity,omitempty" yaml:"severity,omitempty"`
	Recommendation string       `json:"recommendation" yaml:"recommendation"`
	Gap            string       `json:"gap,omitempty" yaml:"gap,omitempty"` // compliance only: emitted when absent
	Rules          []MatchRule  `json:"rules" yaml:"rules"`
}

// Magnitude returns the absolute weight
func (c PatternCategory) Magnitude() int {
	if c.Weight < 0 {
		return -c.Weight
	}
	return c.Weight
}

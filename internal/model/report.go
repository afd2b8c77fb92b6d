package model

import "time"

// Tier is the discrete fairness classification of a score
type Tier string

const (
	TierFair     Tier = "FAIR"
	TierModerate Tier = "MODERATE"
	TierUnfair   Tier = "UNFAIR"
)

// MatchResult is the per-category outcome of scanning one document
type MatchResult struct {
	CategoryID   string       `json:"category_id"`
	Kind         CategoryKind `json:"kind"`
	DisplayName  string       `json:"display_name"`
	Severity     Severity     `json:"severity,omitempty"`
	Weight       int          `json:"weight"`
	Matched      bool         `json:"matched"`
	MatchCount   int          `json:"match_count"`             // distinct rules that fired
	MatchedRules []string     `json:"matched_rules,omitempty"` // rule strings, catalog order
	Excerpts     []string     `json:"excerpts,omitempty"`      // normalized context around hits

	// Order is the category's catalog declaration index; breaks ranking ties.
	Order int `json:"-"`
}

// Adjustment is one applied deduction or bonus
type Adjustment struct {
	CategoryID string       `json:"category_id"`
	Kind       CategoryKind `json:"kind"`
	Points     int          `json:"points"` // negative for deductions
}

// AnalysisResult is the structured output of one analysis
type AnalysisResult struct {
	Title          string       `json:"title"`
	DocumentType   DocumentType `json:"document_type"`
	CatalogVersion string       `json:"catalog_version"`

	Score int  `json:"score"` // 0-100
	Tier  Tier `json:"tier"`

	DetectedRisks      []MatchResult `json:"detected_risks"`      // most severe first
	DetectedCompliance []MatchResult `json:"detected_compliance"` // catalog order
	Recommendations    []string      `json:"recommendations"`     // index-aligned with DetectedRisks
	ComplianceGaps     []string      `json:"compliance_gaps"`     // suggestions for absent compliance categories

	Breakdown []Adjustment `json:"breakdown"` // transparent scoring record, catalog order
}

// Report wraps an analysis with source metadata for CLI output
type Report struct {
	Source    string          `json:"source"`               // path, URL or "stdin"
	FetchMeta *FetchMeta      `json:"fetch_meta,omitempty"` // set for URL sources
	CreatedAt time.Time       `json:"created_at"`
	Analysis  *AnalysisResult `json:"analysis"`

	LLM *LLMSummary `json:"llm,omitempty"` // Optional LLM summary (separate, never affects score)
}

// FetchMeta contains HTTP metadata from fetching a URL source
type FetchMeta struct {
	StatusCode   int               `json:"status_code"`
	ContentType  string            `json:"content_type,omitempty"`
	LastModified string            `json:"last_modified,omitempty"`
	ETag         string            `json:"etag,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"`
}

// LLMSummary contains optional LLM-generated summary
// CRITICAL: This never affects scoring and is clearly separated
type LLMSummary struct {
	Enabled      bool     `json:"enabled"`
	Provider     string   `json:"provider,omitempty"`
	Model        string   `json:"model,omitempty"`
	StrictQuotes bool     `json:"strict_quotes"` // Whether quote verification was enabled
	SummaryMD    string   `json:"summary_md,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
}

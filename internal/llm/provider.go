package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/termlens/internal/model"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Summarize explains an analysis in plain language
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// SummarizeRequest contains the input for LLM summarization
type SummarizeRequest struct {
	// Analysis is the finished, already-scored result to explain
	Analysis model.AnalysisResult

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// SummarizeResponse contains the LLM's summary output
type SummarizeResponse struct {
	// Summary is the generated summary text
	Summary string

	// Quotes are the passages the summary presents as verbatim document text
	Quotes []string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI-compatible endpoints
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// StrictQuotes rejects summaries that quote text absent from the document
	StrictQuotes bool

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:     "", // Disabled by default
		Timeout:      30,
		StrictQuotes: true,
		MaxTokens:    800,
	}
}

const maxPromptExcerpts = 12

// BuildPrompt constructs the default summarization prompt. The score and
// tier are final; the model is only asked to explain them.
func BuildPrompt(a model.AnalysisResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are explaining an automated fairness review of a %s titled %q.
The review is rule-based. Its score and tier are FINAL and you must not dispute, recompute or restate them differently.

RULES:
1. Only put text in double quotes if it appears verbatim in the excerpts below.
2. Do not invent clauses, obligations or rights that are not listed.
3. This is not legal advice; say so in one short sentence at the end.

Review result:
- Score: %d/100
- Tier: %s
- Risks detected: %d
- Compliance signals detected: %d
`, a.DocumentType.Label(), a.Title, a.Score, a.Tier, len(a.DetectedRisks), len(a.DetectedCompliance))

	b.WriteString("\nDetected risks (most severe first):\n")
	if len(a.DetectedRisks) == 0 {
		b.WriteString("- (none)\n")
	}
	excerpts := 0
	for _, r := range a.DetectedRisks {
		fmt.Fprintf(&b, "- %s (%s, %d points)\n", r.DisplayName, r.Severity, r.Weight)
		for _, ex := range r.Excerpts {
			if excerpts >= maxPromptExcerpts {
				break
			}
			fmt.Fprintf(&b, "  excerpt: %s\n", ex)
			excerpts++
		}
	}

	if len(a.DetectedCompliance) > 0 {
		b.WriteString("\nCompliance signals:\n")
		for _, c := range a.DetectedCompliance {
			fmt.Fprintf(&b, "- %s (+%d points)\n", c.DisplayName, c.Weight)
		}
	}

	if len(a.ComplianceGaps) > 0 {
		b.WriteString("\nMissing compliance coverage:\n")
		for _, g := range a.ComplianceGaps {
			fmt.Fprintf(&b, "- %s\n", g)
		}
	}

	b.WriteString("\nWrite a 3-5 sentence plain-language summary for a non-lawyer.")
	return b.String()
}

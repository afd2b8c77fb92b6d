// Package llm produces optional plain-language summaries of an analysis.
//
// Summaries are generated strictly after scoring and are stored separately
// from the analysis; nothing a model returns can change a score, tier or
// finding.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/termlens/internal/model"
)

// Summarizer wraps a provider with quote verification and graceful failure
type Summarizer struct {
	provider Provider
	config   Config
}

// NewSummarizer creates a summarizer. A disabled config yields a summarizer
// whose IsEnabled reports false.
func NewSummarizer(config Config) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return &Summarizer{provider: provider, config: config}, nil
}

// NewSummarizerWithProvider wraps an already-constructed provider
func NewSummarizerWithProvider(provider Provider, config Config) *Summarizer {
	return &Summarizer{provider: provider, config: config}
}

// IsEnabled reports whether a provider is configured
func (s *Summarizer) IsEnabled() bool {
	return s != nil && s.provider != nil
}

// ProviderName returns the configured provider name, or ""
func (s *Summarizer) ProviderName() string {
	if !s.IsEnabled() {
		return ""
	}
	return s.provider.Name()
}

// GenerateSummary summarizes report.Analysis. documentText is the analyzed
// text, used to verify quotes in strict mode. Provider failures are reported
// as warnings on the returned summary, never as errors.
func (s *Summarizer) GenerateSummary(ctx context.Context, report model.Report, documentText string) (*model.LLMSummary, error) {
	if !s.IsEnabled() {
		return nil, nil
	}
	if report.Analysis == nil {
		return nil, fmt.Errorf("report has no analysis to summarize")
	}

	if !s.provider.IsAvailable(ctx) {
		return &model.LLMSummary{
			Enabled:      false,
			Provider:     s.provider.Name(),
			StrictQuotes: s.config.StrictQuotes,
			Warnings:     []string{fmt.Sprintf("LLM provider %s is not available", s.provider.Name())},
		}, nil
	}

	summary := &model.LLMSummary{
		Enabled:      true,
		Provider:     s.provider.Name(),
		Model:        s.config.Model,
		StrictQuotes: s.config.StrictQuotes,
	}

	resp, err := s.provider.Summarize(ctx, SummarizeRequest{
		Analysis:  *report.Analysis,
		Model:     s.config.Model,
		MaxTokens: s.config.MaxTokens,
	})
	if err != nil {
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("LLM summary generation failed: %v", err))
		return summary, nil
	}
	summary.Model = resp.Model

	if s.config.StrictQuotes {
		if missing := unverifiedQuotes(resp.Quotes, documentText); len(missing) > 0 {
			summary.Warnings = append(summary.Warnings,
				fmt.Sprintf("QUOTE LEAK: summary discarded, %d quoted passage(s) not found in document: %s",
					len(missing), strings.Join(missing, " | ")))
			return summary, nil
		}
		if len(resp.Quotes) > 0 {
			summary.Warnings = append(summary.Warnings, fmt.Sprintf("Verified %d quotes against the document", len(resp.Quotes)))
		}
	}

	summary.SummaryMD = resp.Summary
	if resp.TokensUsed > 0 {
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("Tokens used: %d", resp.TokensUsed))
	}
	return summary, nil
}

// RenderSeparateMarkdown renders a summary as a standalone markdown file,
// kept apart from the main report.
func RenderSeparateMarkdown(summary *model.LLMSummary) string {
	if summary == nil || !summary.Enabled {
		return ""
	}

	var b strings.Builder
	b.WriteString("# LLM Summary\n\n")
	b.WriteString("> **GENERATED CONTENT.** This summary was written by a language model after the review finished. ")
	b.WriteString("The score, tier and findings were determined independently by the rule-based engine. This is not legal advice.\n\n")

	fmt.Fprintf(&b, "- **Provider:** %s\n", summary.Provider)
	if summary.Model != "" {
		fmt.Fprintf(&b, "- **Model:** %s\n", summary.Model)
	}
	fmt.Fprintf(&b, "- **Strict Quote Mode:** %t\n\n", summary.StrictQuotes)

	b.WriteString("## Summary\n\n")
	if summary.SummaryMD == "" {
		b.WriteString("_No summary generated._\n")
	} else {
		b.WriteString(summary.SummaryMD)
		b.WriteString("\n")
	}

	if len(summary.Warnings) > 0 {
		b.WriteString("\n## Notes\n\n")
		for _, w := range summary.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	return b.String()
}

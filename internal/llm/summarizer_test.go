package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/termlens/internal/model"
)

// MockProvider implements the Provider interface for testing
type MockProvider struct {
	name      string
	available bool
	response  *SummarizeResponse
	err       error
	lastReq   SummarizeRequest
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func (m *MockProvider) IsAvailable(ctx context.Context) bool {
	return m.available
}

const docText = "We may sell your personal information to third parties. All purchases are non-refundable."

func testReport() model.Report {
	return model.Report{
		Source: "terms.txt",
		Analysis: &model.AnalysisResult{
			Title:        "Acme Terms",
			DocumentType: model.DocTermsOfService,
			Score:        60,
			Tier:         model.TierModerate,
			DetectedRisks: []model.MatchResult{{
				CategoryID:  "data_selling",
				DisplayName: "Data Selling",
				Severity:    model.SeveritySevere,
				Weight:      -30,
				Matched:     true,
				MatchCount:  1,
				Excerpts:    []string{"we may sell your personal information to third parties"},
			}},
		},
	}
}

func TestNewSummarizer_DisabledProvider(t *testing.T) {
	summarizer, err := NewSummarizer(Config{Provider: ""})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if summarizer.IsEnabled() {
		t.Error("Expected summarizer to be disabled")
	}
	if summarizer.ProviderName() != "" {
		t.Error("Expected empty provider name when disabled")
	}

	summary, err := summarizer.GenerateSummary(context.Background(), testReport(), docText)
	if err != nil || summary != nil {
		t.Errorf("Expected (nil, nil) when disabled, got (%v, %v)", summary, err)
	}
}

func TestNewSummarizer_UnknownProvider(t *testing.T) {
	if _, err := NewSummarizer(Config{Provider: "anthropic"}); err == nil {
		t.Error("Expected error for unsupported provider")
	}
}

func TestNewSummarizer_OpenAIRequiresKey(t *testing.T) {
	if _, err := NewSummarizer(Config{Provider: "openai"}); err == nil {
		t.Error("Expected error when OpenAI key is missing")
	}
}

func TestSummarizer_NilIsDisabled(t *testing.T) {
	var s *Summarizer
	if s.IsEnabled() || s.ProviderName() != "" {
		t.Error("Expected nil summarizer to behave as disabled")
	}
}

func TestSummarizer_GenerateSummary_ProviderUnavailable(t *testing.T) {
	summarizer := &Summarizer{
		provider: &MockProvider{name: "test-provider", available: false},
		config:   Config{StrictQuotes: true},
	}

	summary, err := summarizer.GenerateSummary(context.Background(), testReport(), docText)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if summary == nil || summary.Enabled {
		t.Fatalf("Expected disabled summary with warnings, got %+v", summary)
	}
	if len(summary.Warnings) == 0 || !strings.Contains(summary.Warnings[0], "not available") {
		t.Errorf("Expected warning about provider unavailability, got %v", summary.Warnings)
	}
}

func TestSummarizer_GenerateSummary_Success(t *testing.T) {
	mock := &MockProvider{
		name:      "test-provider",
		available: true,
		response: &SummarizeResponse{
			Summary:    `The terms say "we may sell your personal information to third parties".`,
			Quotes:     []string{"we may sell your personal information to third parties"},
			Model:      "test-model",
			TokensUsed: 150,
		},
	}
	summarizer := &Summarizer{
		provider: mock,
		config:   Config{Model: "test-model", StrictQuotes: true, MaxTokens: 500},
	}

	summary, err := summarizer.GenerateSummary(context.Background(), testReport(), docText)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !summary.Enabled || summary.Provider != "test-provider" || summary.Model != "test-model" {
		t.Errorf("Unexpected summary metadata: %+v", summary)
	}
	if !summary.StrictQuotes {
		t.Error("Expected strict quote mode to be recorded")
	}
	if summary.SummaryMD == "" {
		t.Error("Expected summary text")
	}
	if mock.lastReq.Analysis.Score != 60 || mock.lastReq.MaxTokens != 500 {
		t.Errorf("Expected analysis and limits to be passed through, got %+v", mock.lastReq)
	}

	joined := strings.Join(summary.Warnings, "\n")
	if !strings.Contains(joined, "Tokens used: 150") {
		t.Error("Expected warning about tokens used")
	}
	if !strings.Contains(joined, "Verified 1 quotes") {
		t.Error("Expected note about verified quotes")
	}
}

func TestSummarizer_GenerateSummary_QuoteLeak(t *testing.T) {
	summarizer := &Summarizer{
		provider: &MockProvider{
			name:      "test-provider",
			available: true,
			response: &SummarizeResponse{
				Summary: `They promise "a full refund within thirty days".`,
				Quotes:  []string{"a full refund within thirty days"},
			},
		},
		config: Config{StrictQuotes: true},
	}

	summary, err := summarizer.GenerateSummary(context.Background(), testReport(), docText)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if summary.SummaryMD != "" {
		t.Error("Expected summary with invented quote to be discarded")
	}
	if len(summary.Warnings) == 0 || !strings.Contains(summary.Warnings[0], "QUOTE LEAK") {
		t.Errorf("Expected quote leak warning, got %v", summary.Warnings)
	}
}

func TestSummarizer_GenerateSummary_QuotesNotCheckedWhenLenient(t *testing.T) {
	summarizer := &Summarizer{
		provider: &MockProvider{
			name:      "test-provider",
			available: true,
			response: &SummarizeResponse{
				Summary: `They promise "a full refund within thirty days".`,
				Quotes:  []string{"a full refund within thirty days"},
			},
		},
		config: Config{StrictQuotes: false},
	}

	summary, _ := summarizer.GenerateSummary(context.Background(), testReport(), docText)
	if summary.SummaryMD == "" {
		t.Error("Expected summary to be kept when strict quotes are off")
	}
}

func TestSummarizer_GenerateSummary_ProviderError(t *testing.T) {
	summarizer := &Summarizer{
		provider: &MockProvider{name: "test-provider", available: true, err: errors.New("API rate limit exceeded")},
		config:   Config{StrictQuotes: true},
	}

	summary, err := summarizer.GenerateSummary(context.Background(), testReport(), docText)
	if err != nil {
		t.Errorf("Expected no error (graceful degradation), got %v", err)
	}
	if summary == nil || !summary.Enabled {
		t.Fatal("Expected enabled summary carrying the failure")
	}
	if len(summary.Warnings) == 0 || !strings.Contains(summary.Warnings[0], "failed") ||
		!strings.Contains(summary.Warnings[0], "rate limit") {
		t.Errorf("Expected warning to mention error: %v", summary.Warnings)
	}
}

func TestSummarizer_GenerateSummary_NoAnalysis(t *testing.T) {
	summarizer := &Summarizer{provider: &MockProvider{name: "p", available: true}}
	if _, err := summarizer.GenerateSummary(context.Background(), model.Report{}, ""); err == nil {
		t.Error("Expected error for report without analysis")
	}
}

func TestRenderSeparateMarkdown(t *testing.T) {
	if RenderSeparateMarkdown(nil) != "" {
		t.Error("Expected empty markdown when nil")
	}
	if RenderSeparateMarkdown(&model.LLMSummary{Enabled: false}) != "" {
		t.Error("Expected empty markdown when disabled")
	}

	md := RenderSeparateMarkdown(&model.LLMSummary{
		Enabled:      true,
		Provider:     "openai",
		Model:        "gpt-4o-mini",
		StrictQuotes: true,
		SummaryMD:    "This is the generated summary content.",
		Warnings:     []string{"Tokens used: 150"},
	})

	for _, section := range []string{
		"# LLM Summary",
		"GENERATED CONTENT",
		"determined independently",
		"not legal advice",
		"openai",
		"gpt-4o-mini",
		"Strict Quote Mode:** true",
		"This is the generated summary content.",
		"## Notes",
		"Tokens used: 150",
	} {
		if !strings.Contains(md, section) {
			t.Errorf("Expected markdown to contain %q", section)
		}
	}

	empty := RenderSeparateMarkdown(&model.LLMSummary{Enabled: true, Provider: "p"})
	if !strings.Contains(empty, "No summary generated") {
		t.Error("Expected message about no summary")
	}
}

func TestBuildPrompt(t *testing.T) {
	a := *testReport().Analysis
	a.ComplianceGaps = []string{"Add GDPR compliance clauses for EU users"}

	prompt := BuildPrompt(a)
	for _, want := range []string{
		"Terms of Service",
		`"Acme Terms"`,
		"Score: 60/100",
		"Tier: MODERATE",
		"Data Selling (severe, -30 points)",
		"excerpt: we may sell your personal information",
		"Add GDPR compliance clauses",
		"FINAL",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
}

func TestBuildPrompt_NoRisks(t *testing.T) {
	prompt := BuildPrompt(model.AnalysisResult{DocumentType: model.DocEULA, Score: 100, Tier: model.TierFair})
	if !strings.Contains(prompt, "- (none)") {
		t.Error("Expected prompt to state that no risks were found")
	}
}

func TestExtractQuotes(t *testing.T) {
	text := "It says “we may sell your data” and \"binding arbitration applies.\" " +
		`and "Service" and again "we may sell your data".`
	got := extractQuotes(text)

	want := []string{"we may sell your data", "binding arbitration applies"}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Quote %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestUnverifiedQuotes(t *testing.T) {
	doc := "ALL PURCHASES ARE\nNON–REFUNDABLE."
	missing := unverifiedQuotes([]string{"all purchases are non-refundable", "refunds within 30 days"}, doc)
	if len(missing) != 1 || missing[0] != "refunds within 30 days" {
		t.Errorf("Expected only the invented quote to be flagged, got %v", missing)
	}
}

func TestConfigFromModel(t *testing.T) {
	cfg := ConfigFromModel(
		model.LLMConfig{Provider: "ollama", Model: "llama3.1", Timeout: 10, MaxTokens: 200, StrictQuotes: true},
		model.HTTPConfig{HTTPSProxy: "http://proxy:8080"},
	)
	if cfg.Provider != "ollama" || cfg.Model != "llama3.1" || cfg.Timeout != 10 || !cfg.StrictQuotes {
		t.Errorf("Unexpected config: %+v", cfg)
	}
	if cfg.HTTPSProxy != "http://proxy:8080" {
		t.Error("Expected proxy settings to carry over")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != "" {
		t.Error("Expected LLM to be disabled by default")
	}
	if !cfg.StrictQuotes {
		t.Error("Expected strict quotes by default")
	}
}

package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/termlens/internal/llm"
	"github.com/ppiankov/termlens/internal/model"
)

// Renderer writes reports as JSON, Markdown or a short terminal summary
type Renderer struct {
	includeFooter bool
	out           io.Writer
}

// NewRenderer creates a renderer; summaries go to stderr
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter, out: os.Stderr}
}

// MarshalJSON encodes a value as indented JSON with a trailing newline
func MarshalJSON(v interface{}) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// RenderJSON writes the report as indented JSON to path
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := MarshalJSON(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return writeFile(path, data)
}

// RenderMarkdown writes the human-readable report to path
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return writeFile(path, []byte(r.Markdown(report)))
}

// RenderLLMMarkdown writes an already-rendered LLM summary to path
func (r *Renderer) RenderLLMMarkdown(markdown string, path string) error {
	return writeFile(path, []byte(markdown))
}

// Markdown renders the report body
func (r *Renderer) Markdown(report *model.Report) string {
	a := report.Analysis
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", a.Title)
	fmt.Fprintf(&b, "- **Source:** %s\n", report.Source)
	fmt.Fprintf(&b, "- **Document type:** %s\n", a.DocumentType.Label())
	fmt.Fprintf(&b, "- **Score:** %d/100\n", a.Score)
	fmt.Fprintf(&b, "- **Tier:** %s\n", a.Tier)
	fmt.Fprintf(&b, "- **Catalog version:** %s\n\n", a.CatalogVersion)

	b.WriteString("## Detected risks\n\n")
	if len(a.DetectedRisks) == 0 {
		b.WriteString("No risk patterns detected.\n\n")
	}
	for i, risk := range a.DetectedRisks {
		fmt.Fprintf(&b, "### %d. %s (%s, %d)\n\n", i+1, risk.DisplayName, risk.Severity, risk.Weight)
		for _, ex := range risk.Excerpts {
			fmt.Fprintf(&b, "> %s\n\n", ex)
		}
		if i < len(a.Recommendations) {
			fmt.Fprintf(&b, "**Recommendation:** %s\n\n", a.Recommendations[i])
		}
	}

	b.WriteString("## Compliance signals\n\n")
	if len(a.DetectedCompliance) == 0 {
		b.WriteString("No compliance signals detected.\n\n")
	}
	for _, c := range a.DetectedCompliance {
		fmt.Fprintf(&b, "- %s (+%d)\n", c.DisplayName, c.Weight)
	}
	if len(a.DetectedCompliance) > 0 {
		b.WriteString("\n")
	}

	if len(a.ComplianceGaps) > 0 {
		b.WriteString("## Compliance gaps\n\n")
		for _, g := range a.ComplianceGaps {
			fmt.Fprintf(&b, "- %s\n", g)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Score breakdown\n\n")
	b.WriteString("| Category | Kind | Points |\n|---|---|---:|\n")
	fmt.Fprintf(&b, "| base | | %d |\n", model.BaseScore)
	for _, adj := range a.Breakdown {
		fmt.Fprintf(&b, "| %s | %s | %+d |\n", adj.CategoryID, adj.Kind, adj.Points)
	}
	fmt.Fprintf(&b, "| **total (clamped 0-100)** | | **%d** |\n", a.Score)

	if r.includeFooter {
		b.WriteString("\n---\n\n")
		b.WriteString("_Generated by termlens. Findings come from pattern matching against a fixed catalog; ")
		b.WriteString("they are indicators for review, not legal advice._\n")
	}
	return b.String()
}

// RenderSummary prints a compact result to the terminal
func (r *Renderer) RenderSummary(report *model.Report) {
	a := report.Analysis
	fmt.Fprintf(r.out, "\n%s\n", a.Title)
	fmt.Fprintf(r.out, "  Source: %s\n", report.Source)
	fmt.Fprintf(r.out, "  Score:  %d/100 (%s)\n", a.Score, a.Tier)

	if len(a.DetectedRisks) > 0 {
		fmt.Fprintf(r.out, "  Risks:\n")
		for _, risk := range a.DetectedRisks {
			fmt.Fprintf(r.out, "    %4d  %s\n", risk.Weight, risk.DisplayName)
		}
	}
	if len(a.DetectedCompliance) > 0 {
		fmt.Fprintf(r.out, "  Compliance:\n")
		for _, c := range a.DetectedCompliance {
			fmt.Fprintf(r.out, "    %+4d  %s\n", c.Weight, c.DisplayName)
		}
	}
	if report.LLM != nil && report.LLM.Enabled {
		fmt.Fprintf(r.out, "  LLM summary: %s\n", report.LLM.Provider)
	}
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderReport writes the requested outputs. When mdPath is set and the
// report carries an LLM summary, the summary goes to a sibling .llm.md file.
func (r *Renderer) RenderReport(report *model.Report, jsonPath, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := r.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(r.out, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := r.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(r.out, "✓ Wrote Markdown: %s\n", mdPath)
		}

		if md := llm.RenderSeparateMarkdown(report.LLM); md != "" {
			llmPath := strings.TrimSuffix(mdPath, ".md") + ".llm.md"
			if err := r.RenderLLMMarkdown(md, llmPath); err != nil {
				fmt.Fprintf(r.out, "Warning: failed to write LLM summary: %v\n", err)
			} else if verbose {
				fmt.Fprintf(r.out, "✓ Wrote LLM Summary: %s\n", llmPath)
			}
		}
	}

	r.RenderSummary(report)
	return nil
}

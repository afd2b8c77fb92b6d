package worker

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/ppiankov/termlens/internal/model"
	"github.com/ppiankov/termlens/internal/pipeline"
)

// ManifestFile is the name of the batch index written next to the reports
const ManifestFile = "manifest.json"

// ManifestEntry summarizes one analyzed source
type ManifestEntry struct {
	Source     string     `json:"source"`
	Status     string     `json:"status"` // "ok" or "error"
	Score      *int       `json:"score,omitempty"`
	Tier       model.Tier `json:"tier,omitempty"`
	Error      string     `json:"error,omitempty"`
	ReportFile string     `json:"report_file,omitempty"`
	Markdown   string     `json:"markdown_file,omitempty"`
	DurationMS int64      `json:"duration_ms"`
}

// Manifest indexes the reports produced by one batch run
type Manifest struct {
	RunID          string          `json:"run_id"`
	CatalogVersion string          `json:"catalog_version,omitempty"`
	StartedAt      time.Time       `json:"started_at"`
	FinishedAt     time.Time       `json:"finished_at"`
	Total          int             `json:"total"`
	Succeeded      int             `json:"succeeded"`
	Failed         int             `json:"failed"`
	Entries        []ManifestEntry `json:"entries"`
}

// NewManifest builds a manifest for outcomes, in outcome order. Report
// files are not assigned; see WriteBatch.
func NewManifest(startedAt time.Time, outcomes []*AnalysisOutcome) *Manifest {
	m := &Manifest{
		RunID:      uuid.NewString(),
		StartedAt:  startedAt.UTC(),
		FinishedAt: time.Now().UTC(),
		Total:      len(outcomes),
		Entries:    make([]ManifestEntry, len(outcomes)),
	}

	for i, o := range outcomes {
		entry := ManifestEntry{
			Source:     o.Source.Label(),
			DurationMS: o.Duration.Milliseconds(),
		}
		if o.Error != nil || o.Report == nil || o.Report.Analysis == nil {
			entry.Status = "error"
			if o.Error != nil {
				entry.Error = o.Error.Error()
			}
			m.Failed++
		} else {
			score := o.Report.Analysis.Score
			entry.Status = "ok"
			entry.Score = &score
			entry.Tier = o.Report.Analysis.Tier
			if m.CatalogVersion == "" {
				m.CatalogVersion = o.Report.Analysis.CatalogVersion
			}
			m.Succeeded++
		}
		m.Entries[i] = entry
	}
	return m
}

// WriteBatch writes one JSON report per successful outcome plus a manifest
// into dir, creating it if needed. A non-nil renderer also writes a
// Markdown report next to each JSON one.
func WriteBatch(dir string, startedAt time.Time, outcomes []*AnalysisOutcome, renderer *pipeline.Renderer) (*Manifest, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	m := NewManifest(startedAt, outcomes)
	for i, o := range outcomes {
		if m.Entries[i].Status != "ok" {
			continue
		}
		base := fmt.Sprintf("%03d-%s", i+1, slug(o.Source.Label()))
		data, err := pipeline.MarshalJSON(o.Report)
		if err != nil {
			return nil, fmt.Errorf("marshal report %s: %w", o.Source.Label(), err)
		}
		if err := os.WriteFile(filepath.Join(dir, base+".json"), data, 0o644); err != nil {
			return nil, fmt.Errorf("write report: %w", err)
		}
		m.Entries[i].ReportFile = base + ".json"

		if renderer != nil {
			if err := renderer.RenderMarkdown(o.Report, filepath.Join(dir, base+".md")); err != nil {
				return nil, err
			}
			m.Entries[i].Markdown = base + ".md"
		}
	}

	data, err := pipeline.MarshalJSON(m)
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), data, 0o644); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}
	return m, nil
}

const maxSlugLen = 60

// slug turns a path or URL into a file-name-safe fragment
func slug(s string) string {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "https://"), "http://")

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
		} else if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}

	out := strings.TrimRight(b.String(), "-")
	if len(out) > maxSlugLen {
		out = strings.TrimRight(out[:maxSlugLen], "-")
	}
	if out == "" {
		out = "source"
	}
	return out
}

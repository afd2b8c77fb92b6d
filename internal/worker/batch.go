package worker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/termlens/internal/model"
	"github.com/ppiankov/termlens/internal/pipeline"
	"go.uber.org/zap"
)

// Analyzer analyzes one source; *pipeline.Engine satisfies it
type Analyzer interface {
	AnalyzeSource(ctx context.Context, src pipeline.Source) (*model.Report, error)
}

// CrawlDelayer reports the robots.txt crawl delay for a URL. Analyzers that
// implement it have their hosts slowed down to match.
type CrawlDelayer interface {
	CrawlDelay(ctx context.Context, rawURL string) time.Duration
}

var (
	_ Analyzer     = (*pipeline.Engine)(nil)
	_ CrawlDelayer = (*pipeline.Engine)(nil)
)

// AnalysisJob analyzes a single source
type AnalysisJob struct {
	Source   pipeline.Source
	Analyzer Analyzer
	Limiter  *Limiter
}

// Execute runs the analysis, waiting on the host rate limit for URL sources
func (j *AnalysisJob) Execute(ctx context.Context) Result {
	start := time.Now()

	if j.Limiter != nil && j.Source.IsURL() {
		if cd, ok := j.Analyzer.(CrawlDelayer); ok {
			j.Limiter.ApplyCrawlDelay(j.Source.Location, cd.CrawlDelay(ctx, j.Source.Location))
		}
		if err := j.Limiter.Wait(ctx, j.Source.Location); err != nil {
			return &AnalysisOutcome{Source: j.Source, Error: fmt.Errorf("rate limit: %w", err), Duration: time.Since(start)}
		}
	}

	report, err := j.Analyzer.AnalyzeSource(ctx, j.Source)
	return &AnalysisOutcome{
		Source:   j.Source,
		Report:   report,
		Error:    err,
		Duration: time.Since(start),
	}
}

// AnalysisOutcome is the result of one analysis job
type AnalysisOutcome struct {
	Source   pipeline.Source
	Report   *model.Report
	Error    error
	Duration time.Duration
}

// GetError returns the error from the analysis
func (o *AnalysisOutcome) GetError() error {
	return o.Error
}

// ErrNotRun marks sources skipped because the batch was cancelled
var ErrNotRun = errors.New("not analyzed: batch cancelled")

// BatchProcessor analyzes many sources concurrently
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
	limiter     *Limiter
	log         *zap.Logger
}

// NewBatchProcessor creates a batch processor. A requestsPerSecond of zero
// or less disables host rate limiting.
func NewBatchProcessor(analyzer Analyzer, concurrency int, requestsPerSecond float64, burst int, log *zap.Logger) *BatchProcessor {
	if log == nil {
		log = zap.NewNop()
	}
	b := &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
		log:         log,
	}
	if requestsPerSecond > 0 {
		b.limiter = NewLimiter(requestsPerSecond, burst)
	}
	return b
}

// ProcessSources analyzes every source and returns one outcome per source,
// in input order. A failing source never stops the batch.
func (b *BatchProcessor) ProcessSources(ctx context.Context, sources []pipeline.Source) []*AnalysisOutcome {
	if len(sources) == 0 {
		return []*AnalysisOutcome{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, src := range sources {
		if !pool.Submit(&AnalysisJob{Source: src, Analyzer: b.analyzer, Limiter: b.limiter}) {
			break
		}
	}

	results := pool.Wait()
	if b.limiter != nil {
		b.log.Debug("rate-limited hosts", zap.Int("hosts", b.limiter.Hosts()))
	}

	outcomes := make([]*AnalysisOutcome, len(sources))
	for i, src := range sources {
		var outcome *AnalysisOutcome
		if i < len(results) && results[i] != nil {
			outcome = results[i].(*AnalysisOutcome)
		} else {
			outcome = &AnalysisOutcome{Source: src, Error: ErrNotRun}
		}
		if outcome.Error == nil && (outcome.Report == nil || outcome.Report.Analysis == nil) {
			outcome.Error = errors.New("analyzer returned no report")
		}
		outcomes[i] = outcome

		if outcome.Error != nil {
			b.log.Warn("analysis failed", zap.String("source", src.Label()), zap.Error(outcome.Error))
		} else {
			b.log.Debug("analysis finished",
				zap.String("source", src.Label()),
				zap.Int("score", outcome.Report.Analysis.Score),
				zap.Duration("duration", outcome.Duration))
		}
	}

	return outcomes
}

// ProcessFile reads sources from a file and analyzes them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*AnalysisOutcome, error) {
	sources, err := ReadSourcesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read sources: %w", err)
	}

	return b.ProcessSources(ctx, sources), nil
}

// ReadSourcesFromFile reads one source per line. A line is a path or URL,
// optionally followed by a document type:
//
//	https://example.com/privacy privacy policy
//	./eula.txt EULA
//
// Blank lines and lines starting with # are skipped; repeated locations are
// read once.
func ReadSourcesFromFile(filePath string) ([]pipeline.Source, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var sources []pipeline.Source
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		src, err := ParseSourceLine(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", filePath, lineNo, err)
		}
		if !seen[src.Location] {
			seen[src.Location] = true
			sources = append(sources, src)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return sources, nil
}

// ParseSourceLine parses "location [document type]"
func ParseSourceLine(line string) (pipeline.Source, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return pipeline.Source{}, errors.New("empty source line")
	}

	src := pipeline.Source{Location: fields[0]}
	if len(fields) > 1 {
		docType, err := model.ParseDocumentType(strings.Join(fields[1:], " "))
		if err != nil {
			return pipeline.Source{}, err
		}
		src.Type = docType
	}
	return src, nil
}

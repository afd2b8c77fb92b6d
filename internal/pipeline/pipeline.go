// Package pipeline orchestrates one analysis: validate, match, score,
// classify, rank and assemble. It also resolves input sources (files, stdin,
// URLs) into documents and renders finished reports.
package pipeline

import (
	"encoding/json"
	"time"

	"github.com/ppiankov/termlens/internal/cache"
	"github.com/ppiankov/termlens/internal/catalog"
	"github.com/ppiankov/termlens/internal/extract"
	"github.com/ppiankov/termlens/internal/llm"
	"github.com/ppiankov/termlens/internal/model"
	"github.com/ppiankov/termlens/internal/rank"
	"github.com/ppiankov/termlens/internal/score"
	"github.com/ppiankov/termlens/internal/util"
	"go.uber.org/zap"
)

// Engine analyzes documents against one catalog. It holds no mutable state
// on the analysis path and is safe for concurrent use.
type Engine struct {
	catalog *catalog.Catalog
	config  model.EngineConfig
	matcher *extract.Matcher
	scorer  *score.Scorer
	log     *zap.Logger

	cache    cache.Cache
	cacheTTL time.Duration

	fetcher    *Fetcher
	robots     *util.RobotsChecker
	summarizer *llm.Summarizer
	sources    *SourceReader
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine's logger
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithEngineConfig applies matching and aggregation settings
func WithEngineConfig(cfg model.EngineConfig) Option {
	return func(e *Engine) {
		e.config = cfg
	}
}

// WithCache memoizes results in c. A nil cache disables memoization.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(e *Engine) {
		e.cache = c
		e.cacheTTL = ttl
	}
}

// WithFetcher enables URL sources
func WithFetcher(f *Fetcher) Option {
	return func(e *Engine) {
		e.fetcher = f
	}
}

// WithRobots makes URL sources honor robots.txt
func WithRobots(r *util.RobotsChecker) Option {
	return func(e *Engine) {
		e.robots = r
	}
}

// WithSummarizer attaches an optional LLM summary to reports
func WithSummarizer(s *llm.Summarizer) Option {
	return func(e *Engine) {
		e.summarizer = s
	}
}

// WithSourceReader replaces how file and stdin sources are read
func WithSourceReader(r *SourceReader) Option {
	return func(e *Engine) {
		e.sources = r
	}
}

// NewEngine creates an engine for cat
func NewEngine(cat *catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog: cat,
		config:  model.DefaultConfig().Engine,
		log:     zap.NewNop(),
		sources: NewSourceReader(nil),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.matcher = extract.NewMatcher(cat, e.config.ExcerptRadius, e.config.MaxExcerpts)
	e.scorer = score.NewScorer(score.WithLogger(e.log), score.WithCompoundMatches(e.config.CompoundMatches))
	return e
}

// Catalog returns the catalog the engine analyzes against
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Analyze scores one document. It fails only with *model.InvalidDocumentError;
// empty or boilerplate content yields a perfect score with no findings.
// Identical input always produces byte-identical JSON output.
func (e *Engine) Analyze(doc model.Document) (*model.AnalysisResult, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	if doc.Title == "" {
		doc.Title = model.DefaultTitle
	}

	var key string
	if e.cache != nil {
		key = e.cacheKey(doc)
		if data, ok := e.cache.Get(key); ok {
			var cached model.AnalysisResult
			if err := json.Unmarshal(data, &cached); err == nil {
				e.log.Debug("analysis cache hit", zap.String("title", doc.Title))
				return &cached, nil
			}
			e.log.Warn("discarding unreadable cache entry", zap.String("key", key))
		}
	}

	result := e.analyze(doc)

	if e.cache != nil {
		if data, err := json.Marshal(result); err == nil {
			if err := e.cache.Set(key, data, e.cacheTTL); err != nil {
				e.log.Warn("cache write failed", zap.Error(err))
			}
		}
	}
	return result, nil
}

func (e *Engine) cacheKey(doc model.Document) string {
	return cache.AnalysisKey(e.catalog.Fingerprint(), e.config.Fingerprint(), doc)
}

func (e *Engine) analyze(doc model.Document) *model.AnalysisResult {
	results := e.matcher.Match(doc)

	total, breakdown := e.scorer.Aggregate(model.BaseScore, results)
	ranked := rank.Rank(results)

	result := &model.AnalysisResult{
		Title:              doc.Title,
		DocumentType:       doc.Type,
		CatalogVersion:     e.catalog.Version(),
		Score:              total,
		Tier:               score.Classify(total),
		DetectedRisks:      ranked,
		DetectedCompliance: rank.Compliance(results),
		Recommendations:    rank.Recommendations(e.catalog, ranked),
		ComplianceGaps:     rank.Gaps(e.catalog, results),
		Breakdown:          breakdown,
	}

	e.log.Info("document analyzed",
		zap.String("title", doc.Title),
		zap.String("type", string(doc.Type)),
		zap.Int("score", result.Score),
		zap.String("tier", string(result.Tier)),
		zap.Int("risks", len(result.DetectedRisks)),
		zap.Int("compliance", len(result.DetectedCompliance)),
	)
	return result
}

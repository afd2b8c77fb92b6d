package pipeline

import (
	"fmt"

	"github.com/ppiankov/termlens/internal/cache"
	"github.com/ppiankov/termlens/internal/catalog"
	"github.com/ppiankov/termlens/internal/llm"
	"github.com/ppiankov/termlens/internal/model"
	"github.com/ppiankov/termlens/internal/util"
	"go.uber.org/zap"
)

// LoadCatalog returns the catalog named by cfg, or the built-in one
func LoadCatalog(cfg model.CatalogConfig) (*catalog.Catalog, error) {
	if cfg.Path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(cfg.Path)
}

// NewEngineFromConfig wires a fully featured engine from configuration:
// catalog, cache, fetcher with robots.txt checks, and the optional summarizer.
func NewEngineFromConfig(cfg *model.Config, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}

	cat, err := LoadCatalog(cfg.Catalog)
	if err != nil {
		return nil, err
	}
	risks, compliance := cat.Counts()
	log.Debug("catalog loaded",
		zap.String("version", cat.Version()),
		zap.String("fingerprint", cat.Fingerprint()[:12]),
		zap.Int("risks", risks),
		zap.Int("compliance", compliance),
	)

	fetcher := NewFetcher(
		cfg.HTTP.Timeout,
		cfg.HTTP.UserAgent,
		cfg.HTTP.MaxBodyBytes,
		cfg.HTTP.InsecureTLS,
		cfg.HTTP.HTTPProxy,
		cfg.HTTP.HTTPSProxy,
		cfg.HTTP.NoProxy,
	)

	opts := []Option{
		WithLogger(log),
		WithEngineConfig(cfg.Engine),
		WithFetcher(fetcher),
		WithCache(cache.New(cfg.Cache), cfg.Cache.DiskTTL),
	}
	if cfg.HTTP.RespectRobots {
		opts = append(opts, WithRobots(util.NewRobotsChecker(fetcher.Client(), cfg.HTTP.UserAgent)))
	}

	if cfg.LLM.Provider != "" {
		summarizer, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
		if err != nil {
			return nil, fmt.Errorf("init LLM provider: %w", err)
		}
		opts = append(opts, WithSummarizer(summarizer))
	}

	return NewEngine(cat, opts...), nil
}

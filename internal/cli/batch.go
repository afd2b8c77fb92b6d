package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/termlens/internal/pipeline"
	"github.com/ppiankov/termlens/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	noMarkdown   bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Score many documents from a list file in parallel",
	Long: `Batch analyzes every source listed in a file, one per line:

  # comments and blank lines are ignored
  https://example.com/privacy privacy policy
  ./contracts/eula.txt eula
  ./contracts/terms.html

Each line is a path or URL optionally followed by a document type. URL
sources are rate limited per host. A JSON (and Markdown) report is written
per source, plus a manifest.json with the run id and every score.

Example:
  termlens batch sources.txt
  termlens batch sources.txt --concurrency 8 --output-dir ./reports`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default from config)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./termlens-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "batch-timeout", 10*time.Minute, "total timeout for the batch")
	batchCmd.Flags().BoolVar(&noMarkdown, "no-md", false, "write JSON reports only")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	batchCmd.Flags().StringVar(&catalogPath, "catalog", "", "pattern catalog file (default: built-in)")
	batchCmd.Flags().BoolVar(&compound, "compound", false, "multiply risk deductions by the number of rules that matched")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the analysis cache")

	addHTTPFlags(batchCmd)
	addLLMFlags(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if concurrency > 0 {
		cfg.Concurrency.Workers = concurrency
	}

	sources, err := worker.ReadSourcesFromFile(file)
	if err != nil {
		return err
	}

	engine, err := pipeline.NewEngineFromConfig(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s (%d sources)\n", file, len(sources))
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Catalog:      %s\n", engine.Catalog().Version())
	if cfg.LLM.Provider != "" {
		fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	}
	fmt.Fprintf(os.Stderr, "\n")

	started := time.Now()
	processor := worker.NewBatchProcessor(engine, cfg.Concurrency.Workers,
		cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize, logger)
	outcomes := processor.ProcessSources(ctx, sources)

	var renderer *pipeline.Renderer
	if !noMarkdown {
		renderer = pipeline.NewRenderer(cfg.Output.IncludeFooter)
	}
	manifest, err := worker.WriteBatch(outputDir, started, outcomes, renderer)
	if err != nil {
		return err
	}

	for _, entry := range manifest.Entries {
		if entry.Status != "ok" {
			fmt.Fprintf(os.Stderr, "✗ %s: %s\n", entry.Source, entry.Error)
			continue
		}
		fmt.Fprintf(os.Stderr, "✓ %s (%d/100, %s)\n", entry.Source, *entry.Score, entry.Tier)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Run:       %s\n", manifest.RunID)
	fmt.Fprintf(os.Stderr, "  Total:     %d\n", manifest.Total)
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", manifest.Succeeded)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", manifest.Failed)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if manifest.Failed > 0 && manifest.Succeeded == 0 {
		return fmt.Errorf("all %d sources failed", manifest.Failed)
	}
	return nil
}

package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/termlens/internal/model"
	"github.com/ppiankov/termlens/internal/pipeline"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	docType     string
	docTitle    string
	outJSON     string
	outMD       string
	catalogPath string
	timeout     time.Duration
	userAgent   string
	maxBytes    int64
	noCache     bool
	noFooter    bool
	noRobots    bool
	insecureTLS bool
	compound    bool
	httpProxy   string
	httpsProxy  string
	llmEnabled  bool
	llmProvider string
	llmModel    string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file|url|->",
	Short: "Score a single legal document",
	Long: `Analyze scans one document against the pattern catalog and reports:
- A fairness score from 0 to 100 and its tier (FAIR, MODERATE, UNFAIR)
- Detected risk patterns, most severe first, each with a recommendation
- Detected compliance signals and missing compliance clauses
- A breakdown of every point added or deducted

The document may be a text, HTML or JSON file, an http(s) URL, or "-" for
standard input. The document type is inferred from the file name, URL or
page title when --type is not given.

With neither --json nor --md, the JSON report is written to stdout.

Example:
  termlens analyze ./privacy.txt
  termlens analyze https://example.com/terms --md report.md
  cat eula.txt | termlens analyze - --type eula --title "Acme EULA"
  termlens analyze ./tos.html --llm --llm-provider ollama --llm-model llama3.1`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Document flags
	analyzeCmd.Flags().StringVarP(&docType, "type", "t", "", "document type (tos, privacy, eula); inferred when empty")
	analyzeCmd.Flags().StringVar(&docTitle, "title", "", "document title")

	// Output flags
	analyzeCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path")
	analyzeCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// Engine flags
	analyzeCmd.Flags().StringVar(&catalogPath, "catalog", "", "pattern catalog file (default: built-in)")
	analyzeCmd.Flags().BoolVar(&compound, "compound", false, "multiply risk deductions by the number of rules that matched")
	analyzeCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the analysis cache")

	addHTTPFlags(analyzeCmd)
	addLLMFlags(analyzeCmd)
}

func addHTTPFlags(cmd *cobra.Command) {
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "HTTP timeout for URL sources")
	cmd.Flags().StringVar(&userAgent, "ua", "", "HTTP User-Agent")
	cmd.Flags().Int64Var(&maxBytes, "max-bytes", 0, "max response bytes to read")
	cmd.Flags().BoolVar(&insecureTLS, "insecure", false, "skip TLS certificate verification")
	cmd.Flags().BoolVar(&noRobots, "no-robots", false, "do not check robots.txt before fetching")
	cmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	cmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
}

func addLLMFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&llmEnabled, "llm", false, "attach an LLM summary (never affects the score)")
	cmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, ollama)")
	cmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

// buildConfig layers explicitly set flags over the loaded configuration
func buildConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()

	if flags.Changed("catalog") {
		cfg.Catalog.Path = catalogPath
	}
	if flags.Changed("compound") {
		cfg.Engine.CompoundMatches = compound
	}
	if flags.Changed("no-cache") {
		cfg.Cache.Enabled = !noCache
	}
	if flags.Changed("no-footer") {
		cfg.Output.IncludeFooter = !noFooter
	}
	if flags.Changed("timeout") {
		cfg.HTTP.Timeout = timeout
	}
	if userAgent != "" {
		cfg.HTTP.UserAgent = userAgent
	}
	if maxBytes > 0 {
		cfg.HTTP.MaxBodyBytes = maxBytes
	}
	if flags.Changed("insecure") {
		cfg.HTTP.InsecureTLS = insecureTLS
	}
	if flags.Changed("no-robots") {
		cfg.HTTP.RespectRobots = !noRobots
	}
	if httpProxy != "" {
		cfg.HTTP.HTTPProxy = httpProxy
	}
	if httpsProxy != "" {
		cfg.HTTP.HTTPSProxy = httpsProxy
	}

	if llmEnabled {
		cfg.LLM.Provider = llmProvider
		if llmModel != "" {
			cfg.LLM.Model = llmModel
		}
		switch llmProvider {
		case "openai":
			if cfg.LLM.APIKey == "" {
				cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
			}
			if cfg.LLM.APIKey == "" {
				return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
			}
		case "ollama":
			if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" && cfg.LLM.BaseURL == "" {
				cfg.LLM.BaseURL = baseURL
			}
		}
	} else if flags.Changed("llm") {
		cfg.LLM.Provider = ""
	}

	return cfg, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	src := pipeline.Source{Location: args[0], Title: docTitle}
	if docType != "" {
		t, err := model.ParseDocumentType(docType)
		if err != nil {
			return err
		}
		src.Type = t
	}

	engine, err := pipeline.NewEngineFromConfig(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), analyzeDeadline(cfg))
	defer cancel()

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Analyzing: %s\n", src.Label())
		fmt.Fprintf(os.Stderr, "Catalog:   %s\n", engine.Catalog().Version())
		fmt.Fprintln(os.Stderr)
	}

	report, err := engine.AnalyzeSource(ctx, src)
	if err != nil {
		return fmt.Errorf("analyze failed: %w", err)
	}
	if report.LLM != nil {
		for _, w := range report.LLM.Warnings {
			logger.Warn("llm summary", zap.String("note", w))
		}
	}

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	if outJSON == "" && outMD == "" {
		data, err := pipeline.MarshalJSON(report)
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	if err := renderer.RenderReport(report, outJSON, outMD, cfg.Output.Verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	return nil
}

// analyzeDeadline bounds a single analysis: fetch retries plus an LLM call
func analyzeDeadline(cfg *model.Config) time.Duration {
	d := 4*cfg.HTTP.Timeout + 5*time.Second
	if cfg.LLM.Provider != "" {
		d += time.Duration(cfg.LLM.Timeout) * time.Second
	}
	return d
}

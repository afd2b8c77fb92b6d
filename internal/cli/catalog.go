package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/ppiankov/termlens/internal/catalog"
	"github.com/ppiankov/termlens/internal/model"
	"github.com/ppiankov/termlens/internal/pipeline"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and validate pattern catalogs",
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a catalog file and list every problem found",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.LoadFile(args[0])
		if err != nil {
			var verr *catalog.ValidationError
			if errors.As(err, &verr) {
				for _, p := range verr.Problems {
					fmt.Fprintf(cmd.OutOrStdout(), "✗ %s\n", p)
				}
				return fmt.Errorf("%s: %d problem(s)", args[0], len(verr.Problems))
			}
			return err
		}

		risks, compliance := cat.Counts()
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: version %s, %d risk and %d compliance categories\n",
			args[0], cat.Version(), risks, compliance)
		return nil
	},
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the categories of the active catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("catalog") {
			cfg.Catalog.Path = catalogPath
		}

		cat, err := pipeline.LoadCatalog(cfg.Catalog)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Catalog %s (%s)\n\n", cat.Version(), cat.Fingerprint()[:12])

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tKIND\tWEIGHT\tSEVERITY\tRULES")
		for _, c := range cat.Categories() {
			severity := string(c.Severity)
			if c.Kind == model.KindCompliance {
				severity = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%+d\t%s\t%d\n", c.ID, c.Kind, c.Weight, severity, len(c.Rules))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogValidateCmd)
	catalogCmd.AddCommand(catalogListCmd)

	catalogListCmd.Flags().StringVar(&catalogPath, "catalog", "", "pattern catalog file (default: built-in)")
}

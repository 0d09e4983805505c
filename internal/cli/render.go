package cli

import (
	"context"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/classmap/internal/config"
)

// renderCmd represents the render command
var renderCmd = &cobra.Command{
	Use:   "render <dump.json>",
	Short: "Re-render the graph and table from a hierarchy dump",
	Long: `Render reads a <Class>_hierarchy.json written by generate and writes the
matching <Class>_graph.dot and <Class>_data.txt without querying the
code-search service. Use it to restyle output or apply a different
catalogue to an existing run.

Examples:
  classmap render views::View_hierarchy.json --header
  classmap render out/views::Button_hierarchy.json --out restyled
`,
	Args: func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(1)(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	},
	RunE: runRender,
}

var (
	renderOutFlag       string
	renderCatalogueFlag string
	renderHeaderFlag    bool
)

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringVarP(&renderOutFlag, "out", "o", "", "Output directory (overrides output.dir)")
	renderCmd.Flags().StringVar(&renderCatalogueFlag, "catalogue", "", "YAML file listing the methods to tabulate")
	renderCmd.Flags().BoolVar(&renderHeaderFlag, "header", false, "Emit a header row in the table")
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("out") {
		cfg.Output.Dir = renderOutFlag
	}
	if flags.Changed("catalogue") {
		cfg.Catalogue.File = renderCatalogueFlag
	}
	if flags.Changed("header") {
		cfg.Output.Header = renderHeaderFlag
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	return renderDump(cmd.Context(), cfg, args[0], afero.NewOsFs(), cmd.OutOrStdout())
}

func renderDump(ctx context.Context, cfg *config.Config, dumpPath string, fs afero.Fs, out io.Writer) error {
	cat, err := loadCatalogue(cfg)
	if err != nil {
		return err
	}

	result, err := newGenerator(cfg, cat, fs).RenderDump(ctx, dumpPath)
	if err != nil {
		return err
	}

	printSummary(out, result)
	return nil
}

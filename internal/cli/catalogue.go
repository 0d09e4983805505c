package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/classmap/internal/config"
	"github.com/mvp-joe/classmap/internal/hierarchy"
)

var catalogueNamesFlag bool

// catalogueCmd represents the catalogue command
var catalogueCmd = &cobra.Command{
	Use:   "catalogue",
	Short: "Print the catalogue of tracked methods",
	Long: `Catalogue prints the ancestor methods whose overrides are tracked, one
signature per line, in table column order. The built-in catalogue is
used unless catalogue.file or --catalogue names a YAML file of the form:

  signatures:
    - cpp:views::class-View::OnMousePressed(...)@chromium/../../ui/views/view.h|decl
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("catalogue") {
			cfg.Catalogue.File = catalogueFlag
		}
		if err := validateConfig(cfg); err != nil {
			return err
		}
		return printCatalogue(cfg, cmd.OutOrStdout(), catalogueNamesFlag)
	},
}

func init() {
	rootCmd.AddCommand(catalogueCmd)
	catalogueCmd.Flags().StringVar(&catalogueFlag, "catalogue", "", "YAML file listing the methods to track")
	catalogueCmd.Flags().BoolVar(&catalogueNamesFlag, "names", false, "Print Class::Method names instead of signatures")
}

func printCatalogue(cfg *config.Config, out io.Writer, names bool) error {
	cat, err := loadCatalogue(cfg)
	if err != nil {
		return err
	}
	for _, entry := range cat.Entries() {
		if names {
			fmt.Fprintln(out, hierarchy.MethodName(entry))
		} else {
			fmt.Fprintln(out, entry)
		}
	}
	return nil
}

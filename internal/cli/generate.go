package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/classmap/internal/config"
	"github.com/mvp-joe/classmap/internal/hierarchy"
	"github.com/mvp-joe/classmap/internal/oracle"
	"github.com/mvp-joe/classmap/internal/report"
	"github.com/mvp-joe/classmap/internal/signature"
)

var (
	signatureFlag string
	pathFlag      string
	wordFlag      string
	outFlag       string
	fixtureFlag   string
	catalogueFlag string
	excludeFlag   []string
	headerFlag    bool
	quietFlag     bool
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Map the subclasses of a class and the methods they override",
	Long: `Generate walks every transitive subclass of a root class and writes its
hierarchy dump, Graphviz graph and spreadsheet table.

The root is given either as a full code-search signature (-s) or as a
file path and class name (-p and -w) resolved through the service.

Examples:
  # Start from a known signature
  classmap generate -s 'cpp:views::class-Button@chromium/../../ui/views/controls/button/button.h|def'

  # Resolve the root from a header and class name
  classmap generate -p ui/views/controls/button/button.h -w Button

  # Offline run against a recorded fixture, skipping test code
  classmap generate -p ui/views/view.h -w View --fixture testdata/views.json --exclude '**/test/**'
`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVarP(&signatureFlag, "signature", "s", "", "Root class signature")
	generateCmd.Flags().StringVarP(&pathFlag, "path", "p", "", "File declaring the root class (use with --word)")
	generateCmd.Flags().StringVarP(&wordFlag, "word", "w", "", "Root class name (use with --path)")
	generateCmd.Flags().StringVarP(&outFlag, "out", "o", "", "Output directory (overrides output.dir)")
	generateCmd.Flags().StringVar(&fixtureFlag, "fixture", "", "Answer queries from a JSON fixture instead of the service")
	generateCmd.Flags().StringVar(&catalogueFlag, "catalogue", "", "YAML file listing the methods to track")
	generateCmd.Flags().StringArrayVar(&excludeFlag, "exclude", nil, "Skip subclasses whose file matches this glob (repeatable)")
	generateCmd.Flags().BoolVar(&headerFlag, "header", false, "Emit a header row in the table")
	generateCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
}

// rootQuery names the root class either directly or by (path, word).
type rootQuery struct {
	Signature signature.Signature
	Path      string
	Word      string
}

func parseRootQuery(sig, path, word string) (rootQuery, error) {
	switch {
	case sig != "" && (path != "" || word != ""):
		return rootQuery{}, usageErrorf("use either --signature or --path with --word, not both")
	case sig != "":
		s := signature.Signature(sig)
		if err := s.Validate(); err != nil {
			return rootQuery{}, &usageError{err: err}
		}
		return rootQuery{Signature: s}, nil
	case path != "" && word != "":
		return rootQuery{Path: path, Word: word}, nil
	case path != "" || word != "":
		return rootQuery{}, usageErrorf("--path and --word must be given together")
	default:
		return rootQuery{}, usageErrorf("a root class is required: give --signature, or --path with --word")
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	query, err := parseRootQuery(signatureFlag, pathFlag, wordFlag)
	if err != nil {
		return err
	}

	// Set up context with cancellation for Ctrl+C
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyGenerateFlags(cmd, cfg)
	if err := validateConfig(cfg); err != nil {
		return err
	}

	return generate(ctx, cfg, query, afero.NewOsFs(), cmd.OutOrStdout(), NewCLIProgressReporter(quietFlag))
}

// applyGenerateFlags lets explicitly set flags win over config and env.
func applyGenerateFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("out") {
		cfg.Output.Dir = outFlag
	}
	if flags.Changed("fixture") {
		cfg.Oracle.Fixture = fixtureFlag
	}
	if flags.Changed("catalogue") {
		cfg.Catalogue.File = catalogueFlag
	}
	if flags.Changed("exclude") {
		cfg.Traversal.Exclude = append(cfg.Traversal.Exclude, excludeFlag...)
	}
	if flags.Changed("header") {
		cfg.Output.Header = headerFlag
	}
}

// generate resolves the root, runs the generator and prints a summary to out.
// A nil progress disables progress reporting.
func generate(ctx context.Context, cfg *config.Config, query rootQuery, fs afero.Fs, out io.Writer, progress report.Progress) error {
	o, err := newOracle(cfg)
	if err != nil {
		return err
	}

	root := query.Signature
	if root == "" {
		if verbose {
			log.Printf("Resolving %s in %s", query.Word, query.Path)
		}
		root, err = o.ResolveSignature(ctx, query.Path, query.Word)
		if err != nil {
			return fmt.Errorf("failed to resolve %s in %s: %w", query.Word, query.Path, err)
		}
	}
	if verbose {
		log.Printf("Root class: %s", root)
	}

	cat, err := loadCatalogue(cfg)
	if err != nil {
		return err
	}

	excludes, err := hierarchy.CompileExcludes(cfg.Traversal.Exclude)
	if err != nil {
		return &usageError{err: err}
	}

	gen := newGenerator(cfg, cat, fs)
	gen.Oracle = o
	gen.Exclude = excludes
	gen.Progress = progress

	result, err := gen.Generate(ctx, root)
	if err != nil {
		return err
	}

	if !quietFlag {
		printSummary(out, result)
	}
	return nil
}

// newOracle builds the fixture or HTTP oracle named by cfg.
func newOracle(cfg *config.Config) (oracle.Oracle, error) {
	if cfg.Oracle.Fixture != "" {
		static, err := oracle.LoadStatic(cfg.Oracle.Fixture)
		if err != nil {
			return nil, fmt.Errorf("failed to load fixture: %w", err)
		}
		if verbose {
			log.Printf("Answering queries from fixture %s (%d records)", cfg.Oracle.Fixture, len(static.Records))
		}
		return static, nil
	}

	return oracle.NewHTTPClient(cfg.Oracle.Endpoint,
		oracle.WithTimeout(cfg.Oracle.Timeout()),
		oracle.WithRateLimit(cfg.Oracle.RequestsPerSecond),
		oracle.WithVerbose(verbose),
	), nil
}

func loadCatalogue(cfg *config.Config) (hierarchy.Catalogue, error) {
	if cfg.Catalogue.File == "" {
		return hierarchy.DefaultCatalogue(), nil
	}
	cat, err := hierarchy.LoadCatalogue(cfg.Catalogue.File)
	if err != nil {
		return hierarchy.Catalogue{}, fmt.Errorf("failed to load catalogue: %w", err)
	}
	return cat, nil
}

// newGenerator wires the rendering settings from cfg.
func newGenerator(cfg *config.Config, cat hierarchy.Catalogue, fs afero.Fs) *report.Generator {
	return &report.Generator{
		Catalogue: cat,
		Fs:        fs,
		OutputDir: cfg.Output.Dir,
		Linker:    signature.NewLinker(cfg.Source.URLBase),
		Colors: report.Colors{
			Override: cfg.Output.OverrideColor,
			Plain:    cfg.Output.PlainColor,
		},
		Markers: report.Markers{
			Yes: cfg.Output.YesMarker,
			No:  cfg.Output.NoMarker,
		},
		Header:  cfg.Output.Header,
		Verbose: verbose,
	}
}

func printSummary(out io.Writer, result *report.Result) {
	fmt.Fprintf(out, "✓ %s: %s classes, %s overriding (%s edges, took %.1fs)\n",
		result.Root.ClassName(),
		formatNumber(result.Hierarchy.Len()),
		formatNumber(result.Overriding),
		formatNumber(result.Hierarchy.EdgeCount()),
		result.Duration.Seconds())
	for _, path := range result.Files {
		fmt.Fprintf(out, "  %s\n", path)
	}
}

package cli

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mvp-joe/classmap/internal/config"
	"github.com/mvp-joe/classmap/internal/oracle"
)

// Exit codes.
const (
	ExitFailure    = 1
	ExitUsage      = 2
	ExitUnresolved = 3
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "classmap",
	Short: "Classmap - map a C++ class hierarchy and its overrides",
	Long: `Classmap walks a code-search cross-reference service from a root class,
records every transitive subclass, and marks which classes override a
catalogue of virtual methods declared on their ancestors.

Each run writes three artifacts named after the root class:
  <Class>_hierarchy.json   ordered JSON dump of the hierarchy
  <Class>_graph.dot        Graphviz digraph, overriding classes highlighted
  <Class>_data.txt         tab-separated table for spreadsheet import`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(ExitCode(err))
	}
}

func init() {
	cobra.OnInitialize(initLogging)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .classmap/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageErrorf("%v\n\n%s", err, cmd.UsageString())
	})
}

func initLogging() {
	log.SetFlags(log.Ltime)
	log.SetPrefix("classmap: ")
}

// loadConfig reads --config when given, otherwise .classmap/config.yml in the working directory.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if cfgFile != "" {
		cfg, err = config.NewFileLoader(cfgFile).Load()
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if verbose && cfgFile != "" {
		log.Printf("Using config file: %s", cfgFile)
	}
	return cfg, nil
}

// validateConfig checks cfg after command-line flags have been applied, so a
// flag can repair a bad file value. Failures are usage errors.
func validateConfig(cfg *config.Config) error {
	if err := config.Validate(cfg); err != nil {
		return &usageError{err: fmt.Errorf("invalid configuration: %w", err)}
	}
	return nil
}

// usageError marks failures caused by how the command was invoked.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	var usage *usageError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &usage):
		return ExitUsage
	case errors.Is(err, oracle.ErrSignatureNotFound):
		return ExitUnresolved
	default:
		return ExitFailure
	}
}

// Package cli implements the brainview command line.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"braingraph/infrastructure/config"
	"braingraph/infrastructure/di"
	pkgerrors "braingraph/pkg/errors"
)

// Flags shared by every command
var (
	configFile  string
	backendURL  string
	logLevel    string
	prefsPath   string
	noColorFlag bool
)

var (
	container *di.Container
	cleanup   func()
)

var rootCmd = &cobra.Command{
	Use:   "brainview",
	Short: "Brainview - render and inspect a knowledge graph",
	Long: `Brainview talks to a graph backend and renders the explore, map,
media and path views to PNG files. It also searches the graph and prints
graph statistics.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if cleanup != nil {
			cleanup()
			cleanup = nil
		}
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "configuration file (yaml, json or toml)")
	flags.StringVar(&backendURL, "backend", "", "graph backend base URL")
	flags.StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flags.StringVar(&prefsPath, "prefs", "", "preferences file, overrides the configured path")
	flags.BoolVar(&noColorFlag, "no-color", false, "disable colored output")

	rootCmd.AddCommand(renderCmd, searchCmd, statsCmd, overviewCmd, presetsCmd, prefsCmd)
}

// Execute runs the root command
func Execute() error {
	err := rootCmd.Execute()
	// PersistentPostRun is skipped when a command fails
	if cleanup != nil {
		cleanup()
		cleanup = nil
	}
	if err != nil {
		printError(rootCmd.ErrOrStderr(), err)
	}
	return err
}

func setup(cmd *cobra.Command, args []string) error {
	if noColorFlag {
		disableColor()
	}
	if configFile != "" {
		if err := os.Setenv("CONFIG_FILE", configFile); err != nil {
			return err
		}
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if backendURL != "" {
		cfg.BackendURL = backendURL
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if prefsPath != "" {
		cfg.PreferencesPath = prefsPath
		if cfg.PreferencesBackend == "none" {
			cfg.PreferencesBackend = "file"
		}
	}
	// one-shot commands have no use for a request surface
	cfg.EnableMetrics = false
	if err := cfg.Validate(); err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}

	container, cleanup, err = di.InitializeContainer(cfg)
	return err
}

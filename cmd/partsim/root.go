package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joshuapare/partsim/internal/config"
	"github.com/joshuapare/partsim/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	// Global flags
	verbose     bool
	quiet       bool
	jsonOut     bool
	logStderr   bool
	configPath  string
	statePath   string
	sessionName string

	// cfg is the effective configuration, set before any command runs.
	cfg = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "partsim",
	Short: "Simulate dynamic-partition memory allocation",
	Long: `partsim places programs into a simulated memory using First Fit,
Best Fit and Worst Fit, each with and without compaction, so the six
strategies can be compared on the same workload. The simulation state is
kept in a local database between commands.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return setup() },
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&logStderr, "log", false, "Write debug logs to stderr")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.partsim/config.toml)")
	rootCmd.PersistentFlags().StringVar(&statePath, "state", "", "State database (overrides state_path)")
	rootCmd.PersistentFlags().StringVarP(&sessionName, "session", "s", "", "Session name (overrides session)")
}

// setup loads the config file, applies flag overrides and starts logging.
func setup() error {
	path := configPath
	if path == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, ".partsim", "config.toml")
		}
	}

	loaded := config.Default()
	if path != "" {
		var err error
		loaded, err = config.Load(path)
		if err != nil {
			return err
		}
	}
	if statePath != "" {
		loaded.StatePath = statePath
	}
	if sessionName != "" {
		loaded.Session = sessionName
	}
	if loaded.StatePath == "" {
		return fmt.Errorf("no state path: set state_path or use --state")
	}
	cfg = loaded

	logOpts := cfg.LoggerOptions()
	if logStderr {
		logOpts.Enabled = true
		logOpts.Stderr = true
		logOpts.Level = logger.ParseLevel("debug")
	}
	return logger.Init(logOpts)
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

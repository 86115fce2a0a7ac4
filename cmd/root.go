// Package cmd implements the drawer CLI.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/adalundhe/drawer/core/config"
)

var (
	configPath  string
	showHidden  bool
	excludes    []string
	debounceStr string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "drawer",
	Short: "Drawer - a live-synchronized file browser core",
	Long: `Drawer maintains an in-memory tree of a directory and keeps it
synchronized with the file system while you browse it.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().BoolVar(&showHidden, "show-hidden", false, "include dot-prefixed entries")
	rootCmd.PersistentFlags().StringSliceVar(&excludes, "exclude", nil, "glob patterns to omit from the tree")
	rootCmd.PersistentFlags().StringVar(&debounceStr, "debounce", "", "change batch quiet window (e.g. 250ms)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func Execute() error {
	return rootCmd.Execute()
}

// loadConfig builds the effective configuration from the config file and
// command-line flags.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if showHidden {
		cfg.Scan.ShowHidden = true
	}
	if len(excludes) > 0 {
		cfg.Scan.ExcludePatterns = append(cfg.Scan.ExcludePatterns, excludes...)
		cfg.Watch.ExcludePatterns = append(cfg.Watch.ExcludePatterns, excludes...)
	}
	if debounceStr != "" {
		cfg.Watch.Debounce = debounceStr
	}
	return cfg, nil
}

// newLogger builds the CLI logger honoring the verbose flag.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

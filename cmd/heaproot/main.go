// ABOUTME: Entry point for the heaproot command line tool
// ABOUTME: Builds the cobra command tree and sets up logging from config

package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/prateek/heaproot"
)

func newRootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)
	cfg := defaultConfig()

	root := &cobra.Command{
		Use:           "heaproot",
		Short:         "Inspect heap snapshots written by the heaproot collector",
		Version:       heaproot.Version,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			*cfg = *loaded
			if cmd.Flags().Changed("log-level") {
				cfg.Log.Level = logLevel
			}
			level, err := cfg.level()
			if err != nil {
				return err
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug|info|warn|error)")

	root.AddCommand(newStatsCmd())
	root.AddCommand(newPathsCmd(cfg))
	root.AddCommand(newDemoCmd(cfg))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

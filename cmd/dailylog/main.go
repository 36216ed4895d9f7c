package main

import (
	"context"
	"fmt"
	"os"

	"github.com/lixenwraith/dailylog"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dailylog",
	Short: "dailylog - asynchronous logging with daily file rotation",
	Long: `dailylog runs small services on top of the dailylog pipeline.

Every command writes colored records to the console and plain records to
<directory>/<name>_<YYYY-MM-DD>.log, switching files at local midnight.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"dailylog version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("config", "", "TOML or YAML config file (settings under [log] / log:)")
	rootCmd.PersistentFlags().StringArray("set", nil, "Override a setting, key=value (repeatable)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(echoCmd)
	rootCmd.AddCommand(stressCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads --config and applies every --set override on top
func loadConfig(cmd *cobra.Command, extra ...string) (*dailylog.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	sets, _ := cmd.Flags().GetStringArray("set")

	cfg := dailylog.DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = dailylog.NewConfigFromFile(path); err != nil {
			return nil, err
		}
	}

	overrides := append(extra, sets...)
	if err := cfg.ApplyOverride(overrides...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// startPipeline loads the configuration and initializes the pipeline
func startPipeline(cmd *cobra.Command, extra ...string) (*dailylog.Pipeline, error) {
	cfg, err := loadConfig(cmd, extra...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	p, err := dailylog.Initialize(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	return p, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "dailylog version %s\nCommit: %s\nBuilt: %s\n", Version, Commit, BuildTime)
	},
}

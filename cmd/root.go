package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kayz/osprey/internal/browser"
	"github.com/kayz/osprey/internal/config"
	"github.com/kayz/osprey/internal/fetch"
	"github.com/kayz/osprey/internal/logger"
	"github.com/kayz/osprey/internal/services"
)

var (
	logLevel   string
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "osprey",
	Short: "osprey OSINT aggregation toolkit",
	Long: `osprey fans a single query out to a catalog of OSINT services and
merges the answers into one report.

Commands:
  osprey search     Run a query against every matching service
  osprey classify   Show how a query would be classified
  osprey services   List available services
  osprey web        Run the Web UI server
  osprey watch      Re-run a search on a cron schedule`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Parse and set log level
		level, err := logger.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logger.SetLevel(level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info",
		"Log level: trace, debug, info, warn, error, fatal")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file path (default: .osprey.yaml next to the executable)")
}

// loadConfig resolves the configuration honoring the --config flag.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromPath(configPath)
	}
	return config.Load()
}

// buildDispatcher wires the full pipeline: config, fetcher, optional
// headless renderer, service registry, dispatcher.
func buildDispatcher() (*services.Dispatcher, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	fetcher, err := fetch.NewClient(cfg.Fetcher)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	var renderer browser.Renderer
	if cfg.Browser.Enabled {
		renderer = browser.NewRodRenderer(cfg.Browser.Bin)
	}

	registry := services.NewDefaultRegistry(cfg, fetcher, renderer)
	return services.NewDispatcher(registry), cfg, nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/config"
)

var (
	configPath string
	sourceRoot string
	verbose    bool

	cfg    *config.Config
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dsfr-mcp",
	Short: "DSFR component knowledge server",
	Long: `dsfr-mcp ingests a DSFR source tree (components, core, utilities,
icons, colours and the markdown documentation) and answers lookups over it,
either as an MCP server on stdio or from the command line.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig()
		if err != nil {
			return err
		}
		cfg = loaded

		level := cfg.SlogLevel()
		if verbose {
			level = slog.LevelDebug
		}
		// stdout is reserved for the MCP protocol
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
		return nil
	},
}

// loadConfig resolves the file (flag, then DSFR_CONFIG), the environment and the flags
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = os.Getenv(config.EnvConfigFile)
	}
	loaded, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := loaded.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if sourceRoot != "" {
		loaded.SourceRoot = sourceRoot
	}
	if err := loaded.Validate(); err != nil {
		return nil, err
	}
	return loaded, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML configuration file (default $DSFR_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&sourceRoot, "source", "s", "", "DSFR source tree (overrides source_root)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

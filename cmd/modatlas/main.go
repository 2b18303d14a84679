package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"modatlas/internal/config"
	"modatlas/internal/logging"
)

var (
	// Global flags
	verbose    bool
	workspace  string
	policyPath string
	aliasPath  string

	// Loaded configuration
	cfg *config.Config

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "modatlas",
	Short: "modAtlas - module policy graph resolution",
	Long: `modAtlas resolves approximate module references against a declared
policy graph and extracts bounded, token-budgeted neighborhoods around them.

The policy document (modules, allowed/forbidden callers) is the single
source of truth; modAtlas tolerates shorthand input but never guesses:
ambiguous references are reported with candidates, not silently resolved.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logger
		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if workspace == "" {
			workspace, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to determine workspace: %w", err)
			}
		}

		if err := logging.Initialize(workspace); err != nil {
			logger.Warn("File logging unavailable", zap.Error(err))
		}

		cfg, err = config.Load(filepath.Join(workspace, ".modatlas", "config.yaml"))
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		// Flag overrides beat config and env
		if policyPath != "" {
			cfg.Paths.PolicyFile = policyPath
		}
		if aliasPath != "" {
			cfg.Paths.AliasFile = aliasPath
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "workspace directory (default: cwd)")
	rootCmd.PersistentFlags().StringVar(&policyPath, "policy", "", "path to policy document (overrides config)")
	rootCmd.PersistentFlags().StringVar(&aliasPath, "aliases", "", "path to alias table (overrides config)")

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(atlasCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

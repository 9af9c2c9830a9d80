package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jask/budregistry/internal/config"
	"github.com/jask/budregistry/internal/logging"
)

var (
	verbose    bool
	configPath string

	cfg    config.Config
	logger = zap.NewNop()
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var importPath string
	root := &cobra.Command{
		Use:           "budregistry",
		Short:         "Cannabis product registry: catalog, registration wizard and assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				if err := os.Setenv("BUDREGISTRY_CONFIG", configPath); err != nil {
					return err
				}
			}
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			logger, err = logging.New(cfg.Log, verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), importPath)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug-level logging (to the configured log file)")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $HOME/.config/budregistry/config.toml)")
	root.Flags().StringVar(&importPath, "import", "", "CSV of products to add to the catalog before starting")

	root.AddCommand(
		newCatalogCmd(),
		newGenerateCmd(),
		newChatCmd(),
		newKeyCmd(),
		newConfigCmd(),
	)
	return root
}

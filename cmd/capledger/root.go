// Root command for the capledger CLI.
package main

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/capledger/internal/paths"
	"github.com/mesh-intelligence/capledger/pkg/capledger"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagJSON      bool
	flagActor     string
)

// configDataDir holds the data_dir value loaded from config.yaml. Set by
// PersistentPreRunE so all subcommands can use it.
var configDataDir string

var rootCmd = &cobra.Command{
	Use:     "capledger",
	Short:   "Capledger models legal-entity ownership structures",
	Long: `Capledger stores entities, share classes and ownership edges as a
single source of truth, enforces structural invariants (no circular
ownership, referential integrity, positive share counts), keeps an
append-only audit trail, and derives cap tables and ownership
hierarchies from the raw graph.`,
	Version:       capledger.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			return err
		}

		cfg, err := loadConfig(configDir)
		if err != nil {
			return err
		}

		configDataDir = cfg.GetString(cfgKeyDataDir)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: $(CWD)/.capledger)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default: $(CWD)/.capledger-db)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().StringVar(&flagActor, "actor", "cli", "actor recorded in the audit trail")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(newEntityCmd())
	rootCmd.AddCommand(newShareClassCmd())
	rootCmd.AddCommand(newOwnershipCmd())
	rootCmd.AddCommand(newCapTableCmd())
	rootCmd.AddCommand(newHierarchyCmd())
	rootCmd.AddCommand(newAuditCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newImportCmd())
}

// resolveDataDir applies precedence: --data-dir flag > config.yaml
// data_dir > CAPLEDGER_DATA_DIR env > default $(CWD)/.capledger-db.
func resolveDataDir() (string, error) {
	return paths.ResolveDataDir(flagDataDir, configDataDir)
}

// resolveConfigDir applies precedence: --config-dir flag >
// CAPLEDGER_CONFIG_DIR env > default $(CWD)/.capledger.
func resolveConfigDir() (string, error) {
	return paths.ResolveConfigDir(flagConfigDir)
}

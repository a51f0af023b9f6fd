// Init and version commands.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/capledger/pkg/capledger"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the config directory and snapshot backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Config dir and default config.yaml are created by the
		// persistent pre-run; opening the ledger creates the database.
		led, err := openLedger()
		if err != nil {
			return err
		}
		defer led.Close()

		dataDir, err := resolveDataDir()
		if err != nil {
			return err
		}
		fmt.Printf("initialized capledger in %s\n", dataDir)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("capledger v" + capledger.Version)
	},
}

// Share class subcommands.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/capledger/pkg/types"
)

func newShareClassCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shareclass",
		Short: "Manage share classes",
	}
	cmd.AddCommand(newShareClassAddCmd())
	cmd.AddCommand(newShareClassListCmd())
	cmd.AddCommand(newShareClassGetCmd())
	cmd.AddCommand(newShareClassUpdateCmd())
	cmd.AddCommand(newShareClassDeleteCmd())
	return cmd
}

func newShareClassAddCmd() *cobra.Command {
	var (
		entityID   string
		name       string
		kind       string
		authorized int64
		voting     bool
		reason     string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a share class for an entity",
		RunE: func(cmd *cobra.Command, args []string) error {
			led, err := openLedger()
			if err != nil {
				return err
			}
			defer led.Close()

			sc, err := led.CreateShareClass(&types.ShareClass{
				EntityID:              entityID,
				Name:                  name,
				Kind:                  kind,
				TotalAuthorizedShares: authorized,
				VotingRights:          voting,
			}, flagActor, reason)
			if err != nil {
				return err
			}
			return printResult(sc, func() {
				fmt.Printf("created share class %s (%s, %d authorized)\n", sc.ClassID, sc.Name, sc.TotalAuthorizedShares)
			})
		},
	}
	cmd.Flags().StringVar(&entityID, "entity", "", "issuing entity id (required)")
	cmd.Flags().StringVar(&name, "name", "", "class name (required)")
	cmd.Flags().StringVar(&kind, "kind", types.ClassCommon, "class kind: common, preferred, options, convertible")
	cmd.Flags().Int64Var(&authorized, "authorized", 0, "total authorized shares (required, positive)")
	cmd.Flags().BoolVar(&voting, "voting", true, "voting rights")
	cmd.Flags().StringVar(&reason, "reason", "", "change reason for the audit trail")
	cmd.MarkFlagRequired("entity")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("authorized")
	return cmd
}

func newShareClassListCmd() *cobra.Command {
	var entityID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List an entity's share classes",
		RunE: func(cmd *cobra.Command, args []string) error {
			led, err := openLedger()
			if err != nil {
				return err
			}
			defer led.Close()

			classes, err := led.GetShareClassesByEntity(entityID)
			if err != nil {
				return err
			}
			return printResult(classes, func() {
				for _, sc := range classes {
					fmt.Printf("%s  %-12s  %10d authorized  v%d  %s\n",
						sc.ClassID, sc.Kind, sc.TotalAuthorizedShares, sc.Version, sc.Name)
				}
			})
		},
	}
	cmd.Flags().StringVar(&entityID, "entity", "", "issuing entity id (required)")
	cmd.MarkFlagRequired("entity")
	return cmd
}

func newShareClassGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <class-id>",
		Short: "Show one share class",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			led, err := openLedger()
			if err != nil {
				return err
			}
			defer led.Close()

			sc, err := led.GetShareClass(args[0])
			if err != nil {
				return err
			}
			return printResult(sc, func() {
				fmt.Printf("%s  %s (%s, %d authorized, v%d)\n",
					sc.ClassID, sc.Name, sc.Kind, sc.TotalAuthorizedShares, sc.Version)
			})
		},
	}
}

func newShareClassUpdateCmd() *cobra.Command {
	var (
		name       string
		kind       string
		authorized int64
		voting     bool
		version    int64
		reason     string
	)
	cmd := &cobra.Command{
		Use:   "update <class-id>",
		Short: "Update a share class",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch types.ShareClassPatch
			if cmd.Flags().Changed("name") {
				patch.Name = &name
			}
			if cmd.Flags().Changed("kind") {
				patch.Kind = &kind
			}
			if cmd.Flags().Changed("authorized") {
				patch.TotalAuthorizedShares = &authorized
			}
			if cmd.Flags().Changed("voting") {
				patch.VotingRights = &voting
			}

			led, err := openLedger()
			if err != nil {
				return err
			}
			defer led.Close()

			sc, err := led.UpdateShareClass(args[0], patch, version, flagActor, reason)
			if err != nil {
				return err
			}
			return printResult(sc, func() {
				fmt.Printf("updated share class %s to v%d\n", sc.ClassID, sc.Version)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&kind, "kind", "", "new kind")
	cmd.Flags().Int64Var(&authorized, "authorized", 0, "new authorized share count")
	cmd.Flags().BoolVar(&voting, "voting", true, "voting rights")
	cmd.Flags().Int64Var(&version, "expect-version", 0, "expected record version (0 = current)")
	cmd.Flags().StringVar(&reason, "reason", "", "change reason for the audit trail")
	return cmd
}

func newShareClassDeleteCmd() *cobra.Command {
	var (
		version int64
		reason  string
	)
	cmd := &cobra.Command{
		Use:   "delete <class-id>",
		Short: "Delete a share class with no ownership references",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			led, err := openLedger()
			if err != nil {
				return err
			}
			defer led.Close()

			if err := led.DeleteShareClass(args[0], version, flagActor, reason); err != nil {
				return err
			}
			fmt.Printf("deleted share class %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().Int64Var(&version, "expect-version", 0, "expected record version (0 = current)")
	cmd.Flags().StringVar(&reason, "reason", "", "change reason for the audit trail")
	return cmd
}

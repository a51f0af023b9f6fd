// Ownership subcommands.
package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/capledger/pkg/types"
)

func newOwnershipCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ownership",
		Short: "Manage ownership edges",
	}
	cmd.AddCommand(newOwnershipAddCmd())
	cmd.AddCommand(newOwnershipListCmd())
	cmd.AddCommand(newOwnershipGetCmd())
	cmd.AddCommand(newOwnershipUpdateCmd())
	cmd.AddCommand(newOwnershipDeleteCmd())
	cmd.AddCommand(newOwnershipCheckCmd())
	return cmd
}

func newOwnershipAddCmd() *cobra.Command {
	var (
		owner     string
		owned     string
		classID   string
		shares    int64
		effective string
		expiry    string
		reason    string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an ownership edge",
		RunE: func(cmd *cobra.Command, args []string) error {
			candidate := &types.Ownership{
				OwnerEntityID: owner,
				OwnedEntityID: owned,
				ShareClassID:  classID,
				Shares:        shares,
				ChangeReason:  reason,
			}
			if effective != "" {
				t, err := time.Parse("2006-01-02", effective)
				if err != nil {
					return fmt.Errorf("parsing --effective: %w", err)
				}
				candidate.EffectiveDate = t
			}
			if expiry != "" {
				t, err := time.Parse("2006-01-02", expiry)
				if err != nil {
					return fmt.Errorf("parsing --expiry: %w", err)
				}
				candidate.ExpiryDate = &t
			}

			led, err := openLedger()
			if err != nil {
				return err
			}
			defer led.Close()

			// Surface non-blocking warnings before committing.
			result, err := led.ValidateOwnershipChange(candidate)
			if err != nil {
				return err
			}
			warnOnWarnings(result)

			ownership, err := led.CreateOwnership(candidate, flagActor)
			if err != nil {
				return err
			}
			return printResult(ownership, func() {
				fmt.Printf("created ownership %s (%s -> %s, %d shares)\n",
					ownership.OwnershipID, ownership.OwnerEntityID, ownership.OwnedEntityID, ownership.Shares)
			})
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner entity id (required)")
	cmd.Flags().StringVar(&owned, "owned", "", "owned entity id (required)")
	cmd.Flags().StringVar(&classID, "class", "", "share class id of the owned entity (required)")
	cmd.Flags().Int64Var(&shares, "shares", 0, "share count (required, positive)")
	cmd.Flags().StringVar(&effective, "effective", "", "effective date YYYY-MM-DD (default: now)")
	cmd.Flags().StringVar(&expiry, "expiry", "", "expiry date YYYY-MM-DD")
	cmd.Flags().StringVar(&reason, "reason", "", "change reason for the audit trail")
	cmd.MarkFlagRequired("owner")
	cmd.MarkFlagRequired("owned")
	cmd.MarkFlagRequired("class")
	cmd.MarkFlagRequired("shares")
	return cmd
}

func newOwnershipListCmd() *cobra.Command {
	var filter types.OwnershipFilter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ownership edges, optionally filtered",
		RunE: func(cmd *cobra.Command, args []string) error {
			led, err := openLedger()
			if err != nil {
				return err
			}
			defer led.Close()

			ownerships, err := led.QueryOwnerships(filter)
			if err != nil {
				return err
			}
			return printResult(ownerships, func() {
				for _, o := range ownerships {
					fmt.Printf("%s  %s -> %s  %10d shares  v%d\n",
						o.OwnershipID, o.OwnerEntityID, o.OwnedEntityID, o.Shares, o.Version)
				}
			})
		},
	}
	cmd.Flags().StringVar(&filter.OwnerEntityID, "owner", "", "owner entity id filter")
	cmd.Flags().StringVar(&filter.OwnedEntityID, "owned", "", "owned entity id filter")
	cmd.Flags().StringVar(&filter.ShareClassID, "class", "", "share class id filter")
	cmd.Flags().StringVar(&filter.EntityID, "entity", "", "edges touching this entity on either side")
	cmd.Flags().Int64Var(&filter.MinShares, "min-shares", 0, "minimum share count")
	return cmd
}

func newOwnershipGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <ownership-id>",
		Short: "Show one ownership edge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			led, err := openLedger()
			if err != nil {
				return err
			}
			defer led.Close()

			o, err := led.GetOwnership(args[0])
			if err != nil {
				return err
			}
			return printResult(o, func() {
				fmt.Printf("%s  %s -> %s  %d shares of class %s (v%d)\n",
					o.OwnershipID, o.OwnerEntityID, o.OwnedEntityID, o.Shares, o.ShareClassID, o.Version)
			})
		},
	}
}

func newOwnershipUpdateCmd() *cobra.Command {
	var (
		shares  int64
		classID string
		expiry  string
		version int64
		reason  string
	)
	cmd := &cobra.Command{
		Use:   "update <ownership-id>",
		Short: "Update an ownership edge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch types.OwnershipPatch
			if cmd.Flags().Changed("shares") {
				patch.Shares = &shares
			}
			if cmd.Flags().Changed("class") {
				patch.ShareClassID = &classID
			}
			if cmd.Flags().Changed("expiry") {
				if expiry == "" {
					patch.ClearExpiry = true
				} else {
					t, err := time.Parse("2006-01-02", expiry)
					if err != nil {
						return fmt.Errorf("parsing --expiry: %w", err)
					}
					patch.ExpiryDate = &t
				}
			}

			led, err := openLedger()
			if err != nil {
				return err
			}
			defer led.Close()

			o, err := led.UpdateOwnership(args[0], patch, version, flagActor, reason)
			if err != nil {
				return err
			}
			return printResult(o, func() {
				fmt.Printf("updated ownership %s to v%d\n", o.OwnershipID, o.Version)
			})
		},
	}
	cmd.Flags().Int64Var(&shares, "shares", 0, "new share count")
	cmd.Flags().StringVar(&classID, "class", "", "new share class id")
	cmd.Flags().StringVar(&expiry, "expiry", "", "new expiry date YYYY-MM-DD (empty clears it)")
	cmd.Flags().Int64Var(&version, "expect-version", 0, "expected record version (0 = current)")
	cmd.Flags().StringVar(&reason, "reason", "", "change reason for the audit trail")
	return cmd
}

func newOwnershipDeleteCmd() *cobra.Command {
	var (
		version int64
		reason  string
	)
	cmd := &cobra.Command{
		Use:   "delete <ownership-id>",
		Short: "Delete an ownership edge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			led, err := openLedger()
			if err != nil {
				return err
			}
			defer led.Close()

			if err := led.DeleteOwnership(args[0], version, flagActor, reason); err != nil {
				return err
			}
			fmt.Printf("deleted ownership %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().Int64Var(&version, "expect-version", 0, "expected record version (0 = current)")
	cmd.Flags().StringVar(&reason, "reason", "", "change reason for the audit trail")
	return cmd
}

func newOwnershipCheckCmd() *cobra.Command {
	var (
		owner   string
		owned   string
		classID string
		shares  int64
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Dry-run validation of a candidate edge without committing",
		RunE: func(cmd *cobra.Command, args []string) error {
			led, err := openLedger()
			if err != nil {
				return err
			}
			defer led.Close()

			result, err := led.ValidateOwnershipChange(&types.Ownership{
				OwnerEntityID: owner,
				OwnedEntityID: owned,
				ShareClassID:  classID,
				Shares:        shares,
			})
			if err != nil {
				return err
			}
			return printResult(result, func() {
				if result.IsValid() {
					fmt.Println("valid")
				}
				for _, v := range result.Errors {
					fmt.Printf("error: %s: %s\n", v.Rule, v.Message)
				}
				for _, v := range result.Warnings {
					fmt.Printf("warning: %s: %s\n", v.Rule, v.Message)
				}
			})
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner entity id (required)")
	cmd.Flags().StringVar(&owned, "owned", "", "owned entity id (required)")
	cmd.Flags().StringVar(&classID, "class", "", "share class id (required)")
	cmd.Flags().Int64Var(&shares, "shares", 0, "share count")
	cmd.MarkFlagRequired("owner")
	cmd.MarkFlagRequired("owned")
	cmd.MarkFlagRequired("class")
	return cmd
}

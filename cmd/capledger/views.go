// Derived view subcommands: cap table, hierarchy, audit trail.
package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/capledger/pkg/types"
)

func newCapTableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "captable <entity-id>",
		Short: "Show the computed cap table for an entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			led, err := openLedger()
			if err != nil {
				return err
			}
			defer led.Close()

			view, err := led.GetCapTableView(args[0])
			if err != nil {
				return err
			}
			if view == nil {
				return &types.NotFoundError{Kind: types.TargetEntity, ID: args[0]}
			}
			return printResult(view, func() {
				fmt.Printf("%s (%s)\n", view.EntityName, view.EntityID)
				fmt.Printf("  issued %d / authorized %d / available %d\n",
					view.TotalIssuedShares, view.AuthorizedShares, view.AvailableShares)
				for _, sc := range view.ShareClasses {
					fmt.Printf("  class %-12s %10d / %-10d (%.2f%% issued)\n",
						sc.Kind, sc.IssuedShares, sc.AuthorizedShares, sc.PercentIssued)
				}
				for _, o := range view.Ownerships {
					fmt.Printf("  %-30s %10d shares  %6.2f%%  (%.2f%% fully diluted)\n",
						o.OwnerName, o.Shares, o.Percentage, o.FullyDilutedPercentage)
				}
			})
		},
	}
}

func newHierarchyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hierarchy",
		Short: "Show the leveled ownership hierarchy",
		RunE: func(cmd *cobra.Command, args []string) error {
			led, err := openLedger()
			if err != nil {
				return err
			}
			defer led.Close()

			h, err := led.GetOwnershipHierarchy()
			if err != nil {
				return err
			}
			return printResult(h, func() {
				levels := make([]int, 0, len(h.Groups))
				for lvl := range h.Groups {
					levels = append(levels, lvl)
				}
				sort.Ints(levels)
				for _, lvl := range levels {
					fmt.Printf("level %d:\n", lvl)
					for _, id := range h.Groups[lvl] {
						fmt.Printf("  %s\n", id)
					}
				}
			})
		},
	}
}

func newAuditCmd() *cobra.Command {
	var (
		entityID string
		from     string
		to       string
	)
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the audit trail",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := types.AuditFilter{EntityID: entityID}
			if from != "" {
				t, err := time.Parse("2006-01-02", from)
				if err != nil {
					return fmt.Errorf("parsing --from: %w", err)
				}
				filter.From = t
			}
			if to != "" {
				t, err := time.Parse("2006-01-02", to)
				if err != nil {
					return fmt.Errorf("parsing --to: %w", err)
				}
				filter.To = t
			}

			led, err := openLedger()
			if err != nil {
				return err
			}
			defer led.Close()

			entries, err := led.GetAuditTrail(filter)
			if err != nil {
				return err
			}
			return printResult(entries, func() {
				for _, e := range entries {
					fmt.Printf("%s  %-6s  %-11s  %s  by %s\n",
						e.Timestamp.Format(time.RFC3339), e.Action, e.TargetType, e.TargetID, e.UserID)
				}
			})
		},
	}
	cmd.Flags().StringVar(&entityID, "entity", "", "entries touching this entity id")
	cmd.Flags().StringVar(&from, "from", "", "start date YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "end date YYYY-MM-DD")
	return cmd
}

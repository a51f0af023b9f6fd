// Entity subcommands.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/capledger/pkg/types"
)

func newEntityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entity",
		Short: "Manage legal entities",
	}
	cmd.AddCommand(newEntityAddCmd())
	cmd.AddCommand(newEntityListCmd())
	cmd.AddCommand(newEntityGetCmd())
	cmd.AddCommand(newEntityUpdateCmd())
	cmd.AddCommand(newEntityDeleteCmd())
	return cmd
}

func newEntityAddCmd() *cobra.Command {
	var (
		name         string
		entityType   string
		jurisdiction string
		metaPairs    []string
		reason       string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an entity",
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := parseMetadata(metaPairs)
			if err != nil {
				return err
			}

			led, err := openLedger()
			if err != nil {
				return err
			}
			defer led.Close()

			entity, err := led.CreateEntity(&types.Entity{
				Name:         name,
				Type:         entityType,
				Jurisdiction: jurisdiction,
				Metadata:     meta,
			}, flagActor, reason)
			if err != nil {
				return err
			}
			return printResult(entity, func() {
				fmt.Printf("created entity %s (%s)\n", entity.EntityID, entity.Name)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "entity name (required)")
	cmd.Flags().StringVar(&entityType, "type", "", "entity type: corporation, llc, partnership, trust, individual (required)")
	cmd.Flags().StringVar(&jurisdiction, "jurisdiction", "", "governing jurisdiction")
	cmd.Flags().StringArrayVar(&metaPairs, "meta", nil, "metadata key=value (repeatable)")
	cmd.Flags().StringVar(&reason, "reason", "", "change reason for the audit trail")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("type")
	return cmd
}

func newEntityListCmd() *cobra.Command {
	var query types.EntityQuery
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entities, optionally filtered",
		RunE: func(cmd *cobra.Command, args []string) error {
			led, err := openLedger()
			if err != nil {
				return err
			}
			defer led.Close()

			entities, err := led.SearchEntities(query)
			if err != nil {
				return err
			}
			return printResult(entities, func() {
				for _, e := range entities {
					fmt.Printf("%s  %-12s  v%d  %s\n", e.EntityID, e.Type, e.Version, e.Name)
				}
			})
		},
	}
	cmd.Flags().StringVar(&query.Name, "name", "", "case-insensitive name substring")
	cmd.Flags().StringVar(&query.Type, "type", "", "entity type filter")
	cmd.Flags().StringVar(&query.Jurisdiction, "jurisdiction", "", "jurisdiction filter")
	return cmd
}

func newEntityGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <entity-id>",
		Short: "Show one entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			led, err := openLedger()
			if err != nil {
				return err
			}
			defer led.Close()

			entity, err := led.GetEntity(args[0])
			if err != nil {
				return err
			}
			return printResult(entity, func() {
				fmt.Printf("%s  %s (%s, v%d)\n", entity.EntityID, entity.Name, entity.Type, entity.Version)
				if entity.Jurisdiction != "" {
					fmt.Printf("  jurisdiction: %s\n", entity.Jurisdiction)
				}
				for k, v := range entity.Metadata {
					fmt.Printf("  %s: %s\n", k, v)
				}
			})
		},
	}
}

func newEntityUpdateCmd() *cobra.Command {
	var (
		name         string
		entityType   string
		jurisdiction string
		metaPairs    []string
		version      int64
		reason       string
	)
	cmd := &cobra.Command{
		Use:   "update <entity-id>",
		Short: "Update an entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := parseMetadata(metaPairs)
			if err != nil {
				return err
			}

			var patch types.EntityPatch
			if cmd.Flags().Changed("name") {
				patch.Name = &name
			}
			if cmd.Flags().Changed("type") {
				patch.Type = &entityType
			}
			if cmd.Flags().Changed("jurisdiction") {
				patch.Jurisdiction = &jurisdiction
			}
			patch.Metadata = meta

			led, err := openLedger()
			if err != nil {
				return err
			}
			defer led.Close()

			entity, err := led.UpdateEntity(args[0], patch, version, flagActor, reason)
			if err != nil {
				return err
			}
			return printResult(entity, func() {
				fmt.Printf("updated entity %s to v%d\n", entity.EntityID, entity.Version)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&entityType, "type", "", "new type")
	cmd.Flags().StringVar(&jurisdiction, "jurisdiction", "", "new jurisdiction")
	cmd.Flags().StringArrayVar(&metaPairs, "meta", nil, "metadata key=value to merge (repeatable)")
	cmd.Flags().Int64Var(&version, "expect-version", 0, "expected record version (0 = current)")
	cmd.Flags().StringVar(&reason, "reason", "", "change reason for the audit trail")
	return cmd
}

func newEntityDeleteCmd() *cobra.Command {
	var (
		version int64
		reason  string
	)
	cmd := &cobra.Command{
		Use:   "delete <entity-id>",
		Short: "Delete an entity with no ownership references",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			led, err := openLedger()
			if err != nil {
				return err
			}
			defer led.Close()

			if err := led.DeleteEntity(args[0], version, flagActor, reason); err != nil {
				return err
			}
			fmt.Printf("deleted entity %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().Int64Var(&version, "expect-version", 0, "expected record version (0 = current)")
	cmd.Flags().StringVar(&reason, "reason", "", "change reason for the audit trail")
	return cmd
}

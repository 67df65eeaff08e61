package main

import (
	"context"
	"fmt"

	"github.com/palak-ardeshna/crmd/internal/client"
	"github.com/palak-ardeshna/crmd/internal/model"
	"github.com/spf13/cobra"
)

var filterCmd = &cobra.Command{
	Use:     "filter",
	Short:   "Manage filter tags (sources, categories, statuses)",
	GroupID: "workflow",
}

var filterAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a filter tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, _ := cmd.Flags().GetString("kind")

		tag, err := crmClient.CreateFilterTag(context.Background(), &client.CreateFilterTagRequest{
			Name:      args[0],
			Kind:      model.FilterKind(kind),
			CreatedBy: actor,
		})
		if err != nil {
			return fmt.Errorf("creating filter tag: %w", err)
		}

		if jsonOutput {
			printJSON(tag)
		} else {
			fmt.Printf("Added %s filter %s (%s)\n", tag.Kind, tag.ID, tag.Name)
		}
		return nil
	},
}

var filterListCmd = &cobra.Command{
	Use:   "list",
	Short: "List filter tags",
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, _ := cmd.Flags().GetString("kind")

		filters, err := crmClient.ListFilterTags(context.Background(), model.FilterKind(kind))
		if err != nil {
			return fmt.Errorf("listing filter tags: %w", err)
		}

		if jsonOutput {
			printJSON(filters)
		} else {
			printFilterListTable(filters)
		}
		return nil
	},
}

var filterRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a filter tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		if err := crmClient.DeleteFilterTag(context.Background(), id); err != nil {
			return fmt.Errorf("deleting filter tag %s: %w", id, err)
		}
		fmt.Printf("Removed %s\n", id)
		return nil
	},
}

func init() {
	filterAddCmd.Flags().StringP("kind", "k", "source", "filter kind (source, category, status)")
	filterListCmd.Flags().StringP("kind", "k", "", "filter by kind")

	filterCmd.AddCommand(filterAddCmd)
	filterCmd.AddCommand(filterListCmd)
	filterCmd.AddCommand(filterRemoveCmd)
}

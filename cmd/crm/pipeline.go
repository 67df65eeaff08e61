package main

import (
	"context"
	"fmt"

	"github.com/palak-ardeshna/crmd/internal/client"
	"github.com/palak-ardeshna/crmd/internal/registry"
	"github.com/spf13/cobra"
)

var pipelineCmd = &cobra.Command{
	Use:     "pipeline",
	Short:   "Manage pipelines",
	GroupID: "workflow",
}

var pipelineCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a pipeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := crmClient.CreatePipeline(context.Background(), &client.CreatePipelineRequest{
			Name:      args[0],
			CreatedBy: actor,
		})
		if err != nil {
			return fmt.Errorf("creating pipeline: %w", err)
		}

		if jsonOutput {
			printJSON(p)
		} else {
			fmt.Printf("Created pipeline %s (%s)\n", p.ID, p.Name)
		}
		return nil
	},
}

var pipelineListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pipelines",
	RunE: func(cmd *cobra.Command, args []string) error {
		pipelines, err := crmClient.ListPipelines(context.Background())
		if err != nil {
			return fmt.Errorf("listing pipelines: %w", err)
		}

		if jsonOutput {
			printJSON(pipelines)
		} else {
			printPipelineListTable(pipelines)
		}
		return nil
	},
}

var pipelineDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a pipeline and reassign its records",
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		reassignTo, _ := cmd.Flags().GetString("reassign-to")

		ctx := context.Background()

		// Check protection locally before issuing the delete, so the user
		// gets the reason instead of a bare 403.
		pipelines, err := crmClient.ListPipelines(ctx)
		if err != nil {
			return fmt.Errorf("listing pipelines: %w", err)
		}
		stages, err := crmClient.ListStages(ctx, "", "")
		if err != nil {
			return fmt.Errorf("listing stages: %w", err)
		}
		set := registry.NewPipelineSet(pipelines, registry.NewStageSet(stages))
		if err := set.CheckDelete(id); err != nil {
			return err
		}

		if reassignTo == "" {
			if next, ok := registry.NextSelection(set.IDs(), id); ok {
				reassignTo = next
			}
		}

		if err := crmClient.DeletePipeline(ctx, id, reassignTo); err != nil {
			return fmt.Errorf("deleting pipeline %s: %w", id, err)
		}

		if reassignTo != "" {
			fmt.Printf("Deleted %s (records reassigned to %s)\n", id, reassignTo)
		} else {
			fmt.Printf("Deleted %s\n", id)
		}
		return nil
	},
	Args: cobra.ExactArgs(1),
}

func init() {
	pipelineDeleteCmd.Flags().String("reassign-to", "", "pipeline to move orphaned records into (default: next pipeline in order)")

	pipelineCmd.AddCommand(pipelineCreateCmd)
	pipelineCmd.AddCommand(pipelineListCmd)
	pipelineCmd.AddCommand(pipelineDeleteCmd)
}

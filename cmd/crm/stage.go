package main

import (
	"context"
	"fmt"

	"github.com/palak-ardeshna/crmd/internal/client"
	"github.com/palak-ardeshna/crmd/internal/model"
	"github.com/spf13/cobra"
)

var stageCmd = &cobra.Command{
	Use:     "stage",
	Short:   "Manage stages",
	GroupID: "workflow",
}

var stageCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a stage in a pipeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pipeline, _ := cmd.Flags().GetString("pipeline")
		kind, _ := cmd.Flags().GetString("kind")
		order, _ := cmd.Flags().GetInt("order")
		isDefault, _ := cmd.Flags().GetBool("default")

		st, err := crmClient.CreateStage(context.Background(), &client.CreateStageRequest{
			Name:       args[0],
			PipelineID: pipeline,
			Kind:       model.Kind(kind),
			Order:      order,
			IsDefault:  isDefault,
			CreatedBy:  actor,
		})
		if err != nil {
			return fmt.Errorf("creating stage: %w", err)
		}

		if jsonOutput {
			printJSON(st)
		} else {
			fmt.Printf("Created stage %s (%s)\n", st.ID, st.Name)
		}
		return nil
	},
}

var stageListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stages",
	RunE: func(cmd *cobra.Command, args []string) error {
		pipeline, _ := cmd.Flags().GetString("pipeline")
		kind, _ := cmd.Flags().GetString("kind")

		stages, err := crmClient.ListStages(context.Background(), pipeline, model.Kind(kind))
		if err != nil {
			return fmt.Errorf("listing stages: %w", err)
		}

		if jsonOutput {
			printJSON(stages)
		} else {
			printStageListTable(stages)
		}
		return nil
	},
}

var stageUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a stage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]

		req := &client.UpdateStageRequest{}
		if cmd.Flags().Changed("name") {
			v, _ := cmd.Flags().GetString("name")
			req.Name = &v
		}
		if cmd.Flags().Changed("order") {
			v, _ := cmd.Flags().GetInt("order")
			req.Order = &v
		}
		if cmd.Flags().Changed("default") {
			v, _ := cmd.Flags().GetBool("default")
			req.IsDefault = &v
		}

		st, err := crmClient.UpdateStage(context.Background(), id, req)
		if err != nil {
			return fmt.Errorf("updating stage %s: %w", id, err)
		}

		if jsonOutput {
			printJSON(st)
		} else {
			fmt.Printf("Updated stage %s (%s)\n", st.ID, st.Name)
		}
		return nil
	},
}

var stageDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		if err := crmClient.DeleteStage(context.Background(), id); err != nil {
			return fmt.Errorf("deleting stage %s: %w", id, err)
		}
		fmt.Printf("Deleted %s\n", id)
		return nil
	},
}

func init() {
	stageCreateCmd.Flags().String("pipeline", "", "pipeline ID (required)")
	stageCreateCmd.Flags().StringP("kind", "k", "lead", "record kind this stage serves")
	stageCreateCmd.Flags().Int("order", 0, "sort order within the pipeline")
	stageCreateCmd.Flags().Bool("default", false, "make this the default stage of its (pipeline, kind) partition")
	_ = stageCreateCmd.MarkFlagRequired("pipeline")

	stageListCmd.Flags().String("pipeline", "", "filter by pipeline ID")
	stageListCmd.Flags().StringP("kind", "k", "", "filter by record kind")

	stageUpdateCmd.Flags().String("name", "", "stage name")
	stageUpdateCmd.Flags().Int("order", 0, "sort order within the pipeline")
	stageUpdateCmd.Flags().Bool("default", false, "make this the default stage of its (pipeline, kind) partition")

	stageCmd.AddCommand(stageCreateCmd)
	stageCmd.AddCommand(stageListCmd)
	stageCmd.AddCommand(stageUpdateCmd)
	stageCmd.AddCommand(stageDeleteCmd)
}

package main

import (
	"context"
	"fmt"

	"github.com/palak-ardeshna/crmd/internal/client"
	"github.com/spf13/cobra"
)

var moveCmd = &cobra.Command{
	Use:     "move <id>",
	Short:   "Move a record to another stage or pipeline",
	GroupID: "workflow",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		pipeline, _ := cmd.Flags().GetString("pipeline")
		stage, _ := cmd.Flags().GetString("stage")

		if pipeline == "" && stage == "" {
			return fmt.Errorf("at least one of --pipeline or --stage is required")
		}

		req := &client.UpdateRecordRequest{}
		if pipeline != "" {
			req.PipelineID = &pipeline
		}
		if stage != "" {
			req.StageID = &stage
		}

		rec, err := crmClient.UpdateRecord(context.Background(), id, req)
		if err != nil {
			return fmt.Errorf("moving record %s: %w", id, err)
		}

		if jsonOutput {
			printJSON(rec)
		} else {
			fmt.Printf("Moved %s to pipeline %s, stage %s\n", rec.ID, rec.PipelineID, rec.StageID)
		}
		return nil
	},
}

func init() {
	moveCmd.Flags().String("pipeline", "", "target pipeline ID (record lands on its default stage when --stage is omitted)")
	moveCmd.Flags().String("stage", "", "target stage ID")
}

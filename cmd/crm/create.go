package main

import (
	"context"
	"fmt"

	"github.com/palak-ardeshna/crmd/internal/client"
	"github.com/palak-ardeshna/crmd/internal/model"
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:     "create <title>",
	Short:   "Create a new record",
	GroupID: "records",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := args[0]

		kind, _ := cmd.Flags().GetString("kind")
		pipeline, _ := cmd.Flags().GetString("pipeline")
		stage, _ := cmd.Flags().GetString("stage")
		clientName, _ := cmd.Flags().GetString("client")
		source, _ := cmd.Flags().GetString("source")
		category, _ := cmd.Flags().GetString("category")
		status, _ := cmd.Flags().GetString("status")
		priority, _ := cmd.Flags().GetInt("priority")
		value, _ := cmd.Flags().GetFloat64("value")
		description, _ := cmd.Flags().GetString("description")
		fieldPairs, _ := cmd.Flags().GetStringArray("field")

		fieldsJSON, err := parseFields(fieldPairs)
		if err != nil {
			return fmt.Errorf("parsing fields: %w", err)
		}

		req := &client.CreateRecordRequest{
			Kind:        model.Kind(kind),
			Title:       title,
			PipelineID:  pipeline,
			StageID:     stage,
			Client:      clientName,
			Source:      source,
			Category:    category,
			Status:      status,
			Priority:    priority,
			Value:       value,
			Description: description,
			CreatedBy:   actor,
			Fields:      fieldsJSON,
		}

		rec, err := crmClient.CreateRecord(context.Background(), req)
		if err != nil {
			return fmt.Errorf("creating record: %w", err)
		}

		if jsonOutput {
			printJSON(rec)
		} else {
			printRecordTable(rec)
		}
		return nil
	},
}

func init() {
	createCmd.Flags().StringP("kind", "k", "lead", "record kind (lead, project, proposal)")
	createCmd.Flags().String("pipeline", "", "pipeline ID (default stage of the pipeline is used when --stage is omitted)")
	createCmd.Flags().String("stage", "", "stage ID")
	createCmd.Flags().String("client", "", "client name")
	createCmd.Flags().String("source", "", "source tag")
	createCmd.Flags().String("category", "", "category tag")
	createCmd.Flags().StringP("status", "s", "", "status tag")
	createCmd.Flags().IntP("priority", "p", 2, "record priority (0-4)")
	createCmd.Flags().Float64("value", 0, "monetary value")
	createCmd.Flags().StringP("description", "d", "", "record description")
	createCmd.Flags().StringArrayP("field", "f", nil, "typed field (key=value, repeatable)")
}

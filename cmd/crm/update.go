package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/palak-ardeshna/crmd/internal/client"
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:     "update <id>",
	Short:   "Update a record",
	GroupID: "records",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]

		req := &client.UpdateRecordRequest{}

		if cmd.Flags().Changed("title") {
			v, _ := cmd.Flags().GetString("title")
			req.Title = &v
		}
		if cmd.Flags().Changed("client") {
			v, _ := cmd.Flags().GetString("client")
			req.Client = &v
		}
		if cmd.Flags().Changed("source") {
			v, _ := cmd.Flags().GetString("source")
			req.Source = &v
		}
		if cmd.Flags().Changed("category") {
			v, _ := cmd.Flags().GetString("category")
			req.Category = &v
		}
		if cmd.Flags().Changed("status") {
			v, _ := cmd.Flags().GetString("status")
			req.Status = &v
		}
		if cmd.Flags().Changed("priority") {
			v, _ := cmd.Flags().GetInt("priority")
			req.Priority = &v
		}
		if cmd.Flags().Changed("value") {
			v, _ := cmd.Flags().GetFloat64("value")
			req.Value = &v
		}
		if cmd.Flags().Changed("description") {
			v, _ := cmd.Flags().GetString("description")
			req.Description = &v
		}
		if cmd.Flags().Changed("field") {
			fieldPairs, _ := cmd.Flags().GetStringArray("field")
			fieldsJSON, err := parseFields(fieldPairs)
			if err != nil {
				return fmt.Errorf("parsing fields: %w", err)
			}
			req.Fields = json.RawMessage(fieldsJSON)
		}

		rec, err := crmClient.UpdateRecord(context.Background(), id, req)
		if err != nil {
			return fmt.Errorf("updating record %s: %w", id, err)
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
	updateCmd.Flags().String("title", "", "record title")
	updateCmd.Flags().String("client", "", "client name")
	updateCmd.Flags().String("source", "", "source tag")
	updateCmd.Flags().String("category", "", "category tag")
	updateCmd.Flags().StringP("status", "s", "", "status tag")
	updateCmd.Flags().IntP("priority", "p", 0, "record priority (0-4)")
	updateCmd.Flags().Float64("value", 0, "monetary value")
	updateCmd.Flags().StringP("description", "d", "", "record description")
	updateCmd.Flags().StringArrayP("field", "f", nil, "typed field (key=value, repeatable; merged into existing fields)")
}

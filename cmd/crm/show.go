package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:     "show <id>",
	Short:   "Show details of a record",
	GroupID: "records",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]

		rec, err := crmClient.GetRecord(context.Background(), id)
		if err != nil {
			return fmt.Errorf("getting record %s: %w", id, err)
		}

		if jsonOutput {
			printJSON(rec)
		} else {
			printRecordTable(rec)
		}
		return nil
	},
}

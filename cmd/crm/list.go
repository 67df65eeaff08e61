package main

import (
	"context"
	"fmt"

	"github.com/palak-ardeshna/crmd/internal/mirror"
	"github.com/palak-ardeshna/crmd/internal/model"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List records",
	GroupID: "records",
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, _ := cmd.Flags().GetString("kind")
		mode, _ := cmd.Flags().GetString("mode")
		page, _ := cmd.Flags().GetInt("page")
		pageSize, _ := cmd.Flags().GetInt("page-size")
		pipeline, _ := cmd.Flags().GetString("pipeline")
		stage, _ := cmd.Flags().GetString("stage")
		source, _ := cmd.Flags().GetString("source")
		category, _ := cmd.Flags().GetString("category")
		status, _ := cmd.Flags().GetString("status")
		clientName, _ := cmd.Flags().GetString("client")
		search, _ := cmd.Flags().GetString("search")
		sortBy, _ := cmd.Flags().GetString("sort")

		if !model.Kind(kind).IsValid() {
			return fmt.Errorf("unknown record kind %q", kind)
		}

		filter := model.RecordFilter{
			PipelineID: pipeline,
			StageID:    stage,
			Source:     source,
			Category:   category,
			Status:     status,
			Client:     clientName,
			Search:     search,
			Sort:       sortBy,
		}
		if cmd.Flags().Changed("priority") {
			p, _ := cmd.Flags().GetInt("priority")
			filter.Priority = &p
		}

		ctx := context.Background()
		m := mirror.New(crmClient, model.Kind(kind))
		if err := m.SetPageSize(ctx, pageSize); err != nil {
			return fmt.Errorf("listing records: %w", err)
		}
		if err := m.SetMode(ctx, mirror.Mode(mode)); err != nil {
			return fmt.Errorf("listing records: %w", err)
		}
		if err := m.SetFilter(ctx, filter); err != nil {
			return fmt.Errorf("listing records: %w", err)
		}
		if page > 1 {
			if err := m.SetPage(ctx, page); err != nil {
				return fmt.Errorf("listing records: %w", err)
			}
		}

		records := m.Visible()
		if jsonOutput {
			printJSON(records)
		} else {
			printRecordListTable(records, m.Total())
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringP("kind", "k", "lead", "record kind (lead, project, proposal)")
	listCmd.Flags().String("mode", "client", "pagination mode (client or server)")
	listCmd.Flags().Int("page", 1, "1-based page number")
	listCmd.Flags().Int("page-size", mirror.DefaultPageSize, "records per page")
	listCmd.Flags().String("pipeline", "", "filter by pipeline ID")
	listCmd.Flags().String("stage", "", "filter by stage ID")
	listCmd.Flags().String("source", "", "filter by source tag")
	listCmd.Flags().String("category", "", "filter by category tag")
	listCmd.Flags().StringP("status", "s", "", "filter by status tag")
	listCmd.Flags().String("client", "", "filter by client name")
	listCmd.Flags().IntP("priority", "p", 0, "filter by priority")
	listCmd.Flags().String("search", "", "substring match on title and description")
	listCmd.Flags().String("sort", "", "sort order (priority, created_at, updated_at, title, status, value)")
}

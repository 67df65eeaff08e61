package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/palak-ardeshna/crmd/internal/model"
	"github.com/palak-ardeshna/crmd/internal/ui"
)

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printRecordTable(rec *model.Record) {
	fmt.Printf("ID:          %s\n", rec.ID)
	fmt.Printf("Kind:        %s\n", rec.Kind)
	fmt.Printf("Title:       %s\n", rec.Title)
	fmt.Printf("Pipeline:    %s\n", rec.PipelineID)
	fmt.Printf("Stage:       %s\n", rec.StageID)
	if rec.Client != "" {
		fmt.Printf("Client:      %s\n", rec.Client)
	}
	if rec.Source != "" {
		fmt.Printf("Source:      %s\n", rec.Source)
	}
	if rec.Category != "" {
		fmt.Printf("Category:    %s\n", rec.Category)
	}
	if rec.Status != "" {
		fmt.Printf("Status:      %s\n", rec.Status)
	}
	fmt.Printf("Priority:    %s\n", ui.RenderPriority(strconv.Itoa(rec.Priority), rec.Priority))
	if rec.Value != 0 {
		fmt.Printf("Value:       %.2f\n", rec.Value)
	}
	if rec.Description != "" {
		fmt.Printf("Description: %s\n", rec.Description)
	}
	if len(rec.Fields) > 0 {
		fmt.Printf("Fields:      %s\n", string(rec.Fields))
	}
	fmt.Printf("Created By:  %s\n", rec.CreatedBy)
	if !rec.CreatedAt.IsZero() {
		fmt.Printf("Created At:  %s\n", rec.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	if !rec.UpdatedAt.IsZero() {
		fmt.Printf("Updated At:  %s\n", rec.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
}

func printRecordListTable(records []*model.Record, total int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tSTAGE\tSTATUS\tPRIORITY\tTITLE\tCLIENT")
	for _, r := range records {
		title := r.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			r.ID,
			r.Kind,
			r.StageID,
			r.Status,
			r.Priority,
			title,
			r.Client,
		)
	}
	w.Flush()
	fmt.Printf("\n%d records (%d total)\n", len(records), total)
}

func printPipelineListTable(pipelines []model.Pipeline) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCREATED BY\tCREATED AT")
	for _, p := range pipelines {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			p.ID, p.Name, p.CreatedBy, p.CreatedAt.Format("2006-01-02"))
	}
	w.Flush()
}

func printStageListTable(stages []model.Stage) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPIPELINE\tKIND\tORDER\tDEFAULT")
	for _, st := range stages {
		def := ""
		if st.IsDefault {
			def = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			st.ID, st.Name, st.PipelineID, st.Kind, st.Order, def)
	}
	w.Flush()
}

func printFilterListTable(filters []model.FilterTag) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tNAME")
	for _, f := range filters {
		fmt.Fprintf(w, "%s\t%s\t%s\n", f.ID, f.Kind, f.Name)
	}
	w.Flush()
}

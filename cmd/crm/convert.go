package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/palak-ardeshna/crmd/internal/bridge"
	"github.com/palak-ardeshna/crmd/internal/client"
	"github.com/palak-ardeshna/crmd/internal/model"
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:     "convert",
	Short:   "Convert a record into another kind via the staging slot",
	GroupID: "workflow",
}

var convertStageCmd = &cobra.Command{
	Use:   "stage <source-id>",
	Short: "Stage a record for conversion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sourceID := args[0]
		target, _ := cmd.Flags().GetString("to")

		targetKind := model.Kind(target)
		if !targetKind.IsValid() {
			return fmt.Errorf("unknown target kind %q", target)
		}

		src, err := crmClient.GetRecord(context.Background(), sourceID)
		if err != nil {
			return fmt.Errorf("getting record %s: %w", sourceID, err)
		}

		// Carry the transferable attributes over as creation defaults.
		fields := map[string]any{
			"title":  src.Title,
			"client": src.Client,
			"source": src.Source,
		}
		if src.Value != 0 {
			fields["value"] = src.Value
		}
		if src.Description != "" {
			fields["description"] = src.Description
		}
		if len(src.Fields) > 0 {
			var extra map[string]any
			if err := json.Unmarshal(src.Fields, &extra); err == nil {
				for k, v := range extra {
					fields[k] = v
				}
			}
		}

		b, err := bridge.New()
		if err != nil {
			return fmt.Errorf("opening conversion slot: %w", err)
		}
		if err := b.Stage(&bridge.Payload{
			SourceKind: src.Kind,
			SourceID:   src.ID,
			TargetKind: targetKind,
			Fields:     fields,
		}); err != nil {
			return fmt.Errorf("staging conversion: %w", err)
		}

		fmt.Printf("Staged %s %s for conversion to %s\n", src.Kind, src.ID, targetKind)
		fmt.Printf("Run %q to complete it\n", "crm convert apply")
		return nil
	},
}

var convertApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Consume the pending conversion and create the target record",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := bridge.New()
		if err != nil {
			return fmt.Errorf("opening conversion slot: %w", err)
		}

		p, err := b.Consume()
		if err != nil {
			return fmt.Errorf("consuming conversion: %w", err)
		}
		if p == nil {
			return fmt.Errorf("no conversion pending")
		}

		req := &client.CreateRecordRequest{
			Kind:      p.TargetKind,
			CreatedBy: actor,
		}
		extra := make(map[string]any)
		for k, v := range p.Fields {
			switch k {
			case "title":
				req.Title, _ = v.(string)
			case "client":
				req.Client, _ = v.(string)
			case "source":
				req.Source, _ = v.(string)
			case "value":
				req.Value, _ = v.(float64)
			case "description":
				req.Description, _ = v.(string)
			default:
				extra[k] = v
			}
		}
		if len(extra) > 0 {
			fieldsJSON, err := json.Marshal(extra)
			if err != nil {
				return fmt.Errorf("encoding fields: %w", err)
			}
			req.Fields = fieldsJSON
		}
		if cmd.Flags().Changed("title") {
			req.Title, _ = cmd.Flags().GetString("title")
		}
		if req.Title == "" {
			return fmt.Errorf("staged payload has no title; pass --title")
		}

		rec, err := crmClient.CreateRecord(context.Background(), req)
		if err != nil {
			return fmt.Errorf("creating %s: %w", p.TargetKind, err)
		}

		if jsonOutput {
			printJSON(rec)
		} else {
			fmt.Printf("Converted %s %s into %s %s\n", p.SourceKind, p.SourceID, rec.Kind, rec.ID)
		}
		return nil
	},
}

var convertStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the pending conversion, if any",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := bridge.New()
		if err != nil {
			return fmt.Errorf("opening conversion slot: %w", err)
		}

		// Peek without consuming: re-stage what we read.
		p, err := b.Consume()
		if err != nil {
			return fmt.Errorf("reading conversion slot: %w", err)
		}
		if p == nil {
			fmt.Println("no conversion pending")
			return nil
		}
		if err := b.Stage(p); err != nil {
			return fmt.Errorf("restoring conversion slot: %w", err)
		}

		if jsonOutput {
			printJSON(p)
		} else {
			fmt.Printf("Pending: %s %s -> %s (staged %s)\n",
				p.SourceKind, p.SourceID, p.TargetKind,
				p.StagedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

func init() {
	convertStageCmd.Flags().String("to", "project", "target record kind")
	convertApplyCmd.Flags().String("title", "", "title for the new record (overrides the staged title)")

	convertCmd.AddCommand(convertStageCmd)
	convertCmd.AddCommand(convertApplyCmd)
	convertCmd.AddCommand(convertStatusCmd)
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/palak-ardeshna/crmd/internal/events"
	"github.com/palak-ardeshna/crmd/internal/model"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Short:   "Watch for record changes matching a filter",
	GroupID: "views",
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, _ := cmd.Flags().GetString("kind")
		interval, _ := cmd.Flags().GetDuration("interval")
		once, _ := cmd.Flags().GetBool("once")
		pipeline, _ := cmd.Flags().GetString("pipeline")
		stage, _ := cmd.Flags().GetString("stage")
		status, _ := cmd.Flags().GetString("status")
		search, _ := cmd.Flags().GetString("search")

		filter := model.RecordFilter{
			Kind:       model.Kind(kind),
			PipelineID: pipeline,
			StageID:    stage,
			Status:     status,
			Search:     search,
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		seen := make(map[string]time.Time)

		// Initial query.
		if err := queryAndPrint(ctx, filter, seen); err != nil {
			return err
		}
		if once {
			return nil
		}

		// Event-driven when NATS is reachable; polling otherwise.
		natsURL := os.Getenv("CRM_NATS_URL")
		if natsURL == "" {
			natsURL = activeProfileNATSURL()
		}
		if natsURL != "" {
			return watchNATS(ctx, natsURL, filter, seen)
		}
		return watchPoll(ctx, interval, filter, seen)
	},
}

// watchNATS subscribes to NATS events and re-queries on changes with debounce.
func watchNATS(ctx context.Context, natsURL string, filter model.RecordFilter, seen map[string]time.Time) error {
	// reconnectCh receives a signal when the NATS client reconnects after
	// a disconnect, so we can immediately re-query for missed events.
	reconnectCh := make(chan struct{}, 1)

	sub, err := events.NewNATSSubscriber(natsURL,
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("nats: disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Printf("nats: reconnected")
			select {
			case reconnectCh <- struct{}{}:
			default:
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("connecting to NATS: %w", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe("crm.>")
	if err != nil {
		return fmt.Errorf("subscribing to events: %w", err)
	}
	defer cancel()

	debounce := time.NewTimer(0)
	debounce.Stop()
	// Drain the timer channel in case it fired between NewTimer and Stop.
	select {
	case <-debounce.C:
	default:
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-ch:
			if !ok {
				return nil
			}
			debounce.Reset(200 * time.Millisecond)
		case <-reconnectCh:
			debounce.Reset(0) // immediate re-query
		case <-debounce.C:
			if err := queryAndPrint(ctx, filter, seen); err != nil {
				return err
			}
		}
	}
}

// watchPoll polls for changes at the given interval.
func watchPoll(ctx context.Context, interval time.Duration, filter model.RecordFilter, seen map[string]time.Time) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
		if err := queryAndPrint(ctx, filter, seen); err != nil {
			return err
		}
	}
}

// queryAndPrint calls ListRecords, diffs against the seen map, and prints any changes.
func queryAndPrint(ctx context.Context, filter model.RecordFilter, seen map[string]time.Time) error {
	resp, err := crmClient.ListRecords(ctx, filter)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("listing records: %w", err)
	}

	changed := diffRecords(resp.Records, seen)
	if len(changed) > 0 {
		if jsonOutput {
			printJSON(changed)
		} else {
			printRecordListTable(changed, resp.Total)
		}
	}
	return nil
}

// diffRecords compares records against the seen map and returns those that are
// new or have a different updated_at timestamp. It updates seen in place.
func diffRecords(records []*model.Record, seen map[string]time.Time) []*model.Record {
	var changed []*model.Record
	for _, r := range records {
		prev, ok := seen[r.ID]
		if !ok || !r.UpdatedAt.Equal(prev) {
			changed = append(changed, r)
		}
		seen[r.ID] = r.UpdatedAt
	}
	return changed
}

func init() {
	watchCmd.Flags().StringP("kind", "k", "lead", "record kind to watch")
	watchCmd.Flags().Duration("interval", 5*time.Second, "polling interval")
	watchCmd.Flags().Bool("once", false, "exit after first query")
	watchCmd.Flags().String("pipeline", "", "filter by pipeline ID")
	watchCmd.Flags().String("stage", "", "filter by stage ID")
	watchCmd.Flags().StringP("status", "s", "", "filter by status tag")
	watchCmd.Flags().String("search", "", "substring match on title and description")
}

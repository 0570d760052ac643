package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sprintcoach/pkg/mq"
	"sprintcoach/pkg/outbox"
)

var (
	replayID     int64
	replayFailed bool
	replayLimit  int
)

// outboxCmd represents the outbox command
var outboxCmd = &cobra.Command{
	Use:   "outbox",
	Short: "Inspect and replay outbox events",
}

var outboxReplayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Publish outbox events again, by id or every failed one",
	RunE: func(cmd *cobra.Command, args []string) error {
		if (replayID != 0) == replayFailed {
			return errors.New("pass exactly one of --id or --failed")
		}
		return withEnv(cmd.Context(), false, func(e *env) error {
			publisher, err := mq.NewPublisher(e.cfg.MQ.URL)
			if err != nil {
				return err
			}
			defer publisher.Close()

			replay := outbox.NewReplayService(e.c.Outbox, publisher, e.log)
			if replayID != 0 {
				if err := replay.ReplayEvent(cmd.Context(), replayID); err != nil {
					return fmt.Errorf("replay event %d: %w", replayID, err)
				}
				e.log.Info("Outbox event replayed", zap.Int64("event_id", replayID))
				fmt.Fprintf(cmd.OutOrStdout(), "replayed event %d\n", replayID)
				return nil
			}

			n, err := replay.ReplayFailedEvents(cmd.Context(), replayLimit)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "replayed %d failed events\n", n)
			return nil
		})
	},
}

func init() {
	outboxReplayCmd.Flags().Int64Var(&replayID, "id", 0, "outbox event id")
	outboxReplayCmd.Flags().BoolVar(&replayFailed, "failed", false, "replay every failed event")
	outboxReplayCmd.Flags().IntVar(&replayLimit, "limit", 100, "maximum failed events to replay")
	outboxCmd.AddCommand(outboxReplayCmd)
	rootCmd.AddCommand(outboxCmd)
}

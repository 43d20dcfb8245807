package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/systune-io/systune/pkg/action"
)

func newApplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply <action-id> [action-id...]",
		Short: "Execute maintenance actions against the current snapshot",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := newRuntime(ctx)
			if err != nil {
				return err
			}

			snap := rt.prober.Cached(ctx, rt.cacheTTL())
			batch, err := rt.registry.ExecuteBatch(ctx, args, snap)
			if err != nil {
				return err
			}

			printBatch(batch)

			if verbose {
				fmt.Println("\nRecorded mutations:")
				for _, call := range rt.recorder.Calls() {
					fmt.Printf("  %-24s %-28s %s\n", call.Op, call.Target, call.Value)
				}
			}

			if !batch.AllSucceeded() {
				return fmt.Errorf("%d of %d actions did not fully succeed", len(batch.Failed()), len(batch.Results))
			}
			return nil
		},
	}
	return cmd
}

func printBatch(batch action.BatchResult) {
	for _, result := range batch.Results {
		fmt.Printf("%-28s %s", result.ActionID, result.Status)
		if result.Reason != "" {
			fmt.Printf("  (%s)", result.Reason)
		}
		fmt.Println()
		for _, sub := range result.SubSteps {
			fmt.Printf("  %-26s %s", sub.Name, sub.Status)
			if sub.Detail != "" {
				fmt.Printf("  %s", sub.Detail)
			}
			fmt.Println()
		}
	}
}

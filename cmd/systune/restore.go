package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Run the emergency restore plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := newRuntime(ctx)
			if err != nil {
				return err
			}

			plan := rt.restorePlan()
			fmt.Printf("Restoring %d actions: %v\n\n", len(plan.Actions), plan.Actions)

			batch, err := rt.registry.ExecuteRestore(ctx, plan)
			if err != nil {
				return err
			}
			printBatch(batch)

			if !batch.AllSucceeded() {
				return fmt.Errorf("%d of %d restore actions did not fully succeed", len(batch.Failed()), len(batch.Results))
			}
			return nil
		},
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/systune-io/systune/pkg/action"
)

func newRevertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revert <action-id>",
		Short: "Revert a single action to its recorded values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := newRuntime(ctx)
			if err != nil {
				return err
			}

			result, err := rt.registry.Revert(ctx, args[0])
			if err != nil {
				return err
			}
			printBatch(action.BatchResult{Results: []action.ActionResult{result}})

			if result.Status == action.StatusFailure {
				return fmt.Errorf("revert of %s failed", result.ActionID)
			}
			return nil
		},
	}
}

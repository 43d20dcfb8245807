package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newActionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "actions",
		Short: "List registered maintenance actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context())
			if err != nil {
				return err
			}
			for _, summary := range rt.registry.List() {
				fmt.Printf("%-28s %s\n", summary.ID, summary.Description)
			}
			return nil
		},
	}
}

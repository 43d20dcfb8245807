package main

import (
	"context"
	"fmt"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/systune-io/systune/pkg/facts"
)

func newProbeCmd() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Collect system facts and print the snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := newRuntime(ctx)
			if err != nil {
				return err
			}

			snap := snapshotFor(ctx, rt.prober, rt.cacheTTL(), refresh)

			for _, key := range snap.Keys() {
				fact, _ := snap.Fact(key)
				if fact.OK() {
					fmt.Printf("%-24s %v\n", key, fact.Value)
				} else {
					fmt.Printf("%-24s error: %v\n", key, fact.Err)
				}
			}
			fmt.Printf("\n%d facts as of %s\n", snap.Len(), snap.TakenAt().Format("15:04:05.000"))

			if verbose {
				fmt.Printf("\n%s\n", spew.Sdump(snap.Values()))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Bypass the snapshot cache")
	return cmd
}

// snapshotFor serves the cached snapshot, or forces a single fresh probe
// when a refresh was requested. The cache is never consulted on the
// refresh path, so the command probes at most once either way.
func snapshotFor(ctx context.Context, p *facts.Prober, ttl time.Duration, refresh bool) *facts.Snapshot {
	if refresh {
		return p.Refresh(ctx)
	}
	return p.Cached(ctx, ttl)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roadmap/roadmap/internal/types"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active claim's status, or a repo-wide status summary",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		a := openApp()
		defer a.sess.Close()

		claim, err := resolveOrActive(a, nil)
		if err == nil {
			if jsonOutput {
				emitJSON(a.claimJSON(claim))
			} else {
				fmt.Printf("%s  %s\n", statusStyle(a.statusOf(claim.ID), string(a.statusOf(claim.ID))), claim.Statement)
			}
			return
		}

		counts := map[types.Status]int{}
		for _, id := range a.graph.TopoOrder() {
			counts[a.statusOf(id)]++
		}
		if jsonOutput {
			emitJSON(counts)
			return
		}
		fmt.Printf("%s %d   %s %d   %s %d   %s %d\n",
			statusStyle(types.StatusProven, "PROVEN"), counts[types.StatusProven],
			statusStyle(types.StatusStale, "STALE"), counts[types.StatusStale],
			statusStyle(types.StatusBroken, "BROKEN"), counts[types.StatusBroken],
			statusStyle(types.StatusUnproven, "UNPROVEN"), counts[types.StatusUnproven])
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

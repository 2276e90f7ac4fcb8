package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roadmap/roadmap/internal/types"
)

var historyCmd = &cobra.Command{
	Use:   "history [<ref>]",
	Short: "Show the proof log for one claim, or a repo-wide recent-activity feed",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := openApp()
		defer a.sess.Close()

		var proofs []*types.Proof
		var err error
		if len(args) == 1 {
			claim, rerr := a.resolve(args[0], false)
			if rerr != nil {
				fail(classifyStore(rerr))
			}
			proofs, err = a.sess.Store.ProofHistory(context.Background(), claim.ID)
		} else {
			proofs, err = a.sess.Store.RecentProofs(context.Background(), 50)
		}
		if err != nil {
			fail(classifyStore(err))
		}

		if jsonOutput {
			out := make([]*types.ProofJSON, 0, len(proofs))
			for _, p := range proofs {
				out = append(out, p.JSON())
			}
			emitJSON(out)
			return
		}

		if len(proofs) == 0 {
			fmt.Println(muted("no proof history"))
			return
		}
		for _, p := range proofs {
			fmt.Printf("%s  %s  exit %-3d  %s  %dms\n",
				p.RecordedAt.Format("2006-01-02 15:04:05"), p.Kind, p.ExitCode, shortCommit(p.CommitID), p.DurationMS)
		}
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roadmap/roadmap/internal/types"
)

var staleCmd = &cobra.Command{
	Use:   "stale",
	Short: "List every claim currently STALE, with the first paths that invalidated it",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		a := openApp()
		defer a.sess.Close()

		type entry struct {
			claim *types.Claim
			paths []string
		}
		var stale []entry
		for _, id := range a.graph.TopoOrder() {
			if a.statusOf(id) != types.StatusStale {
				continue
			}
			claim := a.graph.Claim(id)
			proof, err := a.sess.Store.LatestProof(context.Background(), id)
			var paths []string
			if err == nil {
				if repoState, err := a.repoStateSince(proof.CommitID); err == nil {
					paths = repoState.Invalidated
					if !repoState.Clean {
						paths = append(paths, repoState.DirtyPaths...)
					}
				}
			}
			if len(paths) > 3 {
				paths = paths[:3]
			}
			stale = append(stale, entry{claim, paths})
		}

		if jsonOutput {
			out := make([]map[string]any, 0, len(stale))
			for _, e := range stale {
				out = append(out, map[string]any{"slug": e.claim.Slug, "invalidated": e.paths})
			}
			emitJSON(out)
			return
		}

		if len(stale) == 0 {
			fmt.Println(muted("nothing is stale"))
			return
		}
		for _, e := range stale {
			line := statusStyle(types.StatusStale, e.claim.Slug)
			if len(e.paths) > 0 {
				line += "  " + muted(strings.Join(e.paths, ", "))
			}
			fmt.Println(line)
		}
	},
}

func init() {
	rootCmd.AddCommand(staleCmd)
}

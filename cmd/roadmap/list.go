package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every claim with its derived status and dependency edges",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		a := openApp()
		defer a.sess.Close()

		ids := a.graph.TopoOrder()

		if jsonOutput {
			out := make([]any, 0, len(ids))
			for _, id := range ids {
				out = append(out, a.claimJSON(a.graph.Claim(id)))
			}
			emitJSON(out)
			return
		}

		if len(ids) == 0 {
			fmt.Println(muted("no claims yet — add one with `roadmap add \"<statement>\"`"))
			return
		}
		for _, id := range ids {
			c := a.graph.Claim(id)
			line := fmt.Sprintf("%s  %s", statusStyle(a.statusOf(id), c.Slug), c.Statement)
			if after := slugsOf(a, a.graph.Blockers(id)); len(after) > 0 {
				line += muted(fmt.Sprintf("  after: %s", strings.Join(after, ", ")))
			}
			fmt.Println(line)
		}
	},
}

func slugsOf(a *app, ids []int64) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if c := a.graph.Claim(id); c != nil {
			out = append(out, c.Slug)
		}
	}
	return out
}

func init() {
	rootCmd.AddCommand(listCmd)
}

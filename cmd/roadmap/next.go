package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "List claims ready to work on: not yet PROVEN, with every blocker PROVEN",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		a := openApp()
		defer a.sess.Close()

		frontier := a.graph.Frontier(a.statusOf)

		if jsonOutput {
			out := make([]*struct {
				ID     int64  `json:"id"`
				Slug   string `json:"slug"`
				Status string `json:"status"`
			}, 0, len(frontier))
			for _, id := range frontier {
				c := a.graph.Claim(id)
				out = append(out, &struct {
					ID     int64  `json:"id"`
					Slug   string `json:"slug"`
					Status string `json:"status"`
				}{c.ID, c.Slug, string(a.statusOf(id))})
			}
			emitJSON(out)
			return
		}

		if len(frontier) == 0 {
			fmt.Println(muted("nothing ready: every claim is proven or still blocked"))
			return
		}
		for _, id := range frontier {
			c := a.graph.Claim(id)
			fmt.Printf("%s  %s\n", statusStyle(a.statusOf(id), c.Slug), c.Statement)
		}
	},
}

func init() {
	rootCmd.AddCommand(nextCmd)
}

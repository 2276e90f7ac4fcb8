package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove <ref>",
	Short: "Remove a claim, cascading its dependency edges and proof history",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := openApp()
		defer a.sess.Close()

		claim, err := a.resolve(args[0], false)
		if err != nil {
			fail(classifyStore(err))
		}
		if err := a.sess.Store.RemoveClaim(context.Background(), claim.ID); err != nil {
			fail(classifyStore(err))
		}

		if jsonOutput {
			emitJSON(map[string]any{"removed": claim.Slug})
		} else {
			fmt.Printf("removed %s\n", claim.Slug)
		}
	},
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

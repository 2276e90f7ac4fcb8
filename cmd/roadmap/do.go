package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var doStrict bool

var doCmd = &cobra.Command{
	Use:   "do <ref>",
	Short: "Focus on a claim: validate it isn't blocked, and set it active",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := openApp()
		defer a.sess.Close()

		claim, err := a.resolve(args[0], doStrict)
		if err != nil {
			fail(classifyStore(err))
		}
		if err := a.graph.ValidateFocus(claim.ID, a.statusOf); err != nil {
			fail(err)
		}
		if err := a.sess.Store.SetActive(context.Background(), claim.ID); err != nil {
			fail(classifyStore(err))
		}

		if jsonOutput {
			emitJSON(map[string]any{"active": claim.Slug})
		} else {
			fmt.Printf("now focused on %s: %s\n", bold(claim.Slug), claim.Statement)
		}
	},
}

func init() {
	doCmd.Flags().BoolVar(&doStrict, "strict", false, "require an exact id/slug match; never fuzzy-resolve or prompt")
	rootCmd.AddCommand(doCmd)
}

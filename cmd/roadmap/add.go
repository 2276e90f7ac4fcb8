package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roadmap/roadmap/internal/store"
)

var (
	addAfter  []string
	addBlocks []string
	addTest   string
	addScope  []string
	addNotes  string
)

var addCmd = &cobra.Command{
	Use:   "add <statement>",
	Short: "Add a new claim",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := openApp()
		defer a.sess.Close()

		after, err := resolveAll(a, addAfter)
		if err != nil {
			fail(classifyStore(err))
		}
		blocks, err := resolveAll(a, addBlocks)
		if err != nil {
			fail(classifyStore(err))
		}

		scope := addScope
		if !cmd.Flags().Changed("scope") {
			scope = a.sess.Config.DefaultScopes
		}

		claim, err := a.sess.Store.CreateClaim(context.Background(), store.ClaimSpec{
			Statement: args[0],
			Notes:     addNotes,
			ProveCmd:  addTest,
			Scope:     scope,
		}, after, blocks)
		if err != nil {
			fail(classifyStore(err))
		}

		if jsonOutput {
			emitJSON(map[string]any{"id": claim.ID, "slug": claim.Slug})
		} else {
			fmt.Printf("added %s: %s\n", bold(claim.Slug), claim.Statement)
		}
	},
}

// resolveAll resolves each ref strictly (agent/flag call paths never want
// an interactive disambiguation prompt mid-flag-parsing) and returns their ids.
func resolveAll(a *app, refs []string) ([]int64, error) {
	ids := make([]int64, 0, len(refs))
	for _, ref := range refs {
		claim, err := a.resolve(ref, true)
		if err != nil {
			return nil, err
		}
		ids = append(ids, claim.ID)
	}
	return ids, nil
}

func init() {
	addCmd.Flags().StringSliceVar(&addAfter, "after", nil, "refs this claim depends on (blockers)")
	addCmd.Flags().StringSliceVar(&addBlocks, "blocks", nil, "refs this claim blocks")
	addCmd.Flags().StringVar(&addTest, "test", "", "prove_cmd: the shell command that verifies this claim")
	addCmd.Flags().StringVar(&addNotes, "notes", "", "free-text notes: why this claim exists or what its falsifier checks")
	addCmd.Flags().StringSliceVar(&addScope, "scope", nil, "glob patterns this claim's proof is scoped to")
	rootCmd.AddCommand(addCmd)
}

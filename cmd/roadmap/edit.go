package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roadmap/roadmap/internal/store"
)

var (
	editStatement    string
	editNotes        string
	editTest         string
	editScope        []string
	editAddAfter     []string
	editAddBlocks    []string
	editRemoveAfter  []string
	editRemoveBlocks []string
)

var editCmd = &cobra.Command{
	Use:   "edit <ref>",
	Short: "Edit a claim's statement, prove_cmd, scope, or dependency edges",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := openApp()
		defer a.sess.Close()

		claim, err := a.resolve(args[0], false)
		if err != nil {
			fail(classifyStore(err))
		}

		edit := store.ClaimEdit{}
		if cmd.Flags().Changed("statement") {
			edit.Statement = &editStatement
		}
		if cmd.Flags().Changed("test") {
			edit.ProveCmd = &editTest
		}
		if cmd.Flags().Changed("notes") {
			edit.Notes = &editNotes
		}
		if cmd.Flags().Changed("scope") {
			edit.Scope = editScope
			edit.SetScope = true
		}

		addAfter, err := resolveAll(a, editAddAfter)
		if err != nil {
			fail(classifyStore(err))
		}
		addBlocks, err := resolveAll(a, editAddBlocks)
		if err != nil {
			fail(classifyStore(err))
		}
		removeAfter, err := resolveAll(a, editRemoveAfter)
		if err != nil {
			fail(classifyStore(err))
		}
		removeBlocks, err := resolveAll(a, editRemoveBlocks)
		if err != nil {
			fail(classifyStore(err))
		}

		updated, err := a.sess.Store.EditClaim(context.Background(), claim.ID, edit, addAfter, addBlocks, removeAfter, removeBlocks)
		if err != nil {
			fail(classifyStore(err))
		}

		if jsonOutput {
			emitJSON(map[string]any{"id": updated.ID, "slug": updated.Slug})
		} else {
			fmt.Printf("updated %s\n", bold(updated.Slug))
		}
	},
}

func init() {
	editCmd.Flags().StringVar(&editStatement, "statement", "", "new statement text")
	editCmd.Flags().StringVar(&editNotes, "notes", "", "free-text notes: why this claim exists or what its falsifier checks")
	editCmd.Flags().StringVar(&editTest, "test", "", "new prove_cmd")
	editCmd.Flags().StringSliceVar(&editScope, "scope", nil, "replace the scope glob list")
	editCmd.Flags().StringSliceVar(&editAddAfter, "after", nil, "refs to add as blockers")
	editCmd.Flags().StringSliceVar(&editAddBlocks, "blocks", nil, "refs to add as blocked")
	editCmd.Flags().StringSliceVar(&editRemoveAfter, "remove-after", nil, "refs to remove as blockers")
	editCmd.Flags().StringSliceVar(&editRemoveBlocks, "remove-blocks", nil, "refs to remove as blocked")
	rootCmd.AddCommand(editCmd)
}

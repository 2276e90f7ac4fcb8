package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roadmap/roadmap/internal/git"
	"github.com/roadmap/roadmap/internal/session"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .roadmap/ at the repository root",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cwd, err := os.Getwd()
		if err != nil {
			fail(err)
		}
		root, err := git.MainRepoRoot(cwd)
		if err != nil {
			fail(err)
		}
		sess, err := session.Init(root)
		if err != nil {
			fail(err)
		}
		defer sess.Close()

		if jsonOutput {
			emitJSON(map[string]string{"root": sess.Root})
		} else {
			fmt.Printf("initialized roadmap in %s\n", sess.Root)
		}
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

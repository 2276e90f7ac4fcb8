package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/roadmap/roadmap/internal/deptree"
	"github.com/roadmap/roadmap/internal/status"
	"github.com/roadmap/roadmap/internal/types"
)

var whyCmd = &cobra.Command{
	Use:   "why <ref>",
	Short: "Explain a claim's current derived status",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := openApp()
		defer a.sess.Close()

		claim, err := a.resolve(args[0], false)
		if err != nil {
			fail(classifyStore(err))
		}
		s := a.statusOf(claim.ID)
		explanation := explain(a, claim, s)

		if jsonOutput {
			emitJSON(map[string]any{"id": claim.ID, "slug": claim.Slug, "status": s, "explanation": explanation})
			return
		}

		rendered, err := renderMarkdown(fmt.Sprintf("## %s\n\n%s\n", claim.Slug, claim.Statement))
		if err == nil {
			fmt.Print(rendered)
		} else {
			fmt.Printf("%s: %s\n", claim.Slug, claim.Statement)
		}
		fmt.Printf("%s — %s\n\n", statusStyle(s, string(s)), explanation)

		if len(a.graph.Blockers(claim.ID)) > 0 {
			fmt.Println(bold("blocked by:"))
			nodes := deptree.Build(a.graph, claim.ID, deptree.Blockers, a.statusOf, 0)
			r := deptree.NewRenderer(0)
			r.StyleFunc = statusStyle
			r.WarnFunc = muted
			r.Render(nodes)
		}
	},
}

// explain turns the Status Deriver's verdict (spec.md §4.5) into a one or
// two sentence prose explanation, operationalizing the invalidation set as
// user-facing output instead of an internal detail.
func explain(a *app, claim *types.Claim, s types.Status) string {
	proof, err := a.sess.Store.LatestProof(context.Background(), claim.ID)
	if err != nil {
		return "never proven: no prove_cmd has been run and no attestation recorded."
	}

	switch s {
	case types.StatusUnproven:
		return "never proven."
	case types.StatusBroken:
		return fmt.Sprintf("the last proof attempt at commit %s exited %d.", shortCommit(proof.CommitID), proof.ExitCode)
	case types.StatusProven:
		return fmt.Sprintf("proven at commit %s, and nothing in its scope has changed since.", shortCommit(proof.CommitID))
	case types.StatusStale:
		repoState, err := a.repoStateSince(proof.CommitID)
		if err != nil || len(repoState.Invalidated) == 0 {
			return "stale: the working tree has uncommitted changes since the last proof."
		}
		matches := make([]string, 0, 3)
		for _, p := range repoState.Invalidated {
			if len(claim.Scope) == 0 || status.MatchesScope(claim.Scope, p) {
				matches = append(matches, p)
				if len(matches) == 3 {
					break
				}
			}
		}
		return fmt.Sprintf("stale since commit %s: %s changed.", shortCommit(proof.CommitID), strings.Join(matches, ", "))
	default:
		return string(s)
	}
}

func renderMarkdown(md string) (string, error) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

func init() {
	rootCmd.AddCommand(whyCmd)
}

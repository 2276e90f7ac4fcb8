package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/roadmap/roadmap/internal/apperr"
	"github.com/roadmap/roadmap/internal/runner"
)

var (
	checkForce     bool
	checkReason    string
	checkTimeoutMS int
)

var checkCmd = &cobra.Command{
	Use:   "check [<ref>]",
	Short: "Verify a claim: run its prove_cmd against a clean commit, or attest it with --force",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := openApp()
		defer a.sess.Close()

		claim, err := resolveOrActive(a, args)
		if err != nil {
			fail(classifyStore(err))
		}

		tr := setupTracing()
		defer tr.shutdown()

		rn := &runner.Runner{
			Store:  a.sess.Store,
			Repo:   a.sess.Repo,
			Root:   a.sess.Root,
			OnSpan: tr.onSpan,
		}

		if checkForce {
			if checkReason == "" {
				fail(apperr.New(apperr.ExecutionFailed, "--force requires --reason"))
			}
			result, err := rn.Attest(rootCtx, claim, checkReason)
			if err != nil {
				fail(err)
			}
			printCheckResult(claim.Slug, result)
			return
		}

		timeout := a.sess.Config.CheckTimeout()
		if cmd.Flags().Changed("timeout") {
			timeout = time.Duration(checkTimeoutMS) * time.Millisecond
		}

		result, checkErr := rn.Check(rootCtx, claim, timeout)
		if checkErr != nil {
			kind, _ := apperr.KindOf(checkErr)
			if kind == apperr.ExecutionFailed && result != nil {
				printCheckResult(claim.Slug, result)
				if !jsonOutput {
					fmt.Fprintf(os.Stderr, "prove_cmd stderr:\n%s\n", result.Proof.StderrTail)
				}
				os.Exit(apperr.ExitCode(kind))
			}
			fail(checkErr)
		}
		printCheckResult(claim.Slug, result)
	},
}

func printCheckResult(slug string, result *runner.Result) {
	p := result.Proof
	if jsonOutput {
		emitJSON(p.JSON())
		return
	}
	status := "PROVEN"
	if p.ExitCode != 0 {
		status = "BROKEN"
	}
	fmt.Printf("%s %s (exit %d, commit %s)\n", slug, status, p.ExitCode, shortCommit(p.CommitID))
}

func shortCommit(id string) string {
	if len(id) > 10 {
		return id[:10]
	}
	return id
}

func init() {
	checkCmd.Flags().BoolVar(&checkForce, "force", false, "record an attestation instead of running prove_cmd")
	checkCmd.Flags().StringVar(&checkReason, "reason", "", "reason for the attestation (required with --force)")
	checkCmd.Flags().IntVar(&checkTimeoutMS, "timeout", 0, "prove_cmd timeout in milliseconds (default: config check-timeout-seconds)")
	rootCmd.AddCommand(checkCmd)
}

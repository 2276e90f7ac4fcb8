// Command roadmap is the CLI front end for the Roadmap core: a DAG of
// verifiable claims, backed by an append-only proof log and a git-aware
// status deriver (spec.md §1/§2).
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roadmap/roadmap/internal/session"
)

var (
	jsonOutput  bool
	noColorFlag bool
	traceFlag   bool

	logger *slog.Logger
	cfg    = viper.New()

	rootCtx    context.Context
	rootCancel context.CancelFunc
)

var rootCmd = &cobra.Command{
	Use:   "roadmap",
	Short: "roadmap - a dependency-aware ledger of verifiable claims",
	Long: `Roadmap tracks claims about a codebase as a DAG with dependency edges,
verifies them by running their prove_cmd against a clean commit, and
derives each claim's status (UNPROVEN/PROVEN/STALE/BROKEN) fresh on every
read from the append-only proof log and the current git state.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		rootCtx, rootCancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

		if !cmd.Flags().Changed("json") {
			jsonOutput = cfg.GetBool("json")
		}
		if !cmd.Flags().Changed("no-color") {
			noColorFlag = cfg.GetBool("no-color")
		}
		if !cmd.Flags().Changed("trace") {
			traceFlag = cfg.GetBool("trace")
		}
		if noColorFlag {
			colorEnabled = false
		}

		level := slog.LevelInfo
		if v := os.Getenv("ROADMAP_DEBUG"); v != "" {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if rootCancel != nil {
			rootCancel()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit machine-readable JSON instead of human-readable text")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&traceFlag, "trace", false, "emit an OpenTelemetry span/metric trace for this invocation to stderr")

	cfg.SetEnvPrefix("ROADMAP")
	cfg.AutomaticEnv()
	_ = cfg.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = cfg.BindPFlag("no-color", rootCmd.PersistentFlags().Lookup("no-color"))
	_ = cfg.BindPFlag("trace", rootCmd.PersistentFlags().Lookup("trace"))
}

// openApp is the common entry sequence for every command except init:
// open the Session rooted at cwd and build the Graph Kernel snapshot.
func openApp() *app {
	cwd, err := os.Getwd()
	if err != nil {
		fail(err)
	}
	sess, err := session.Open(cwd)
	if err != nil {
		fail(err)
	}
	a, err := newApp(sess, logger)
	if err != nil {
		fail(err)
	}
	return a
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/calderaops/snapsweep/internal/output"
	"github.com/calderaops/snapsweep/internal/store"
)

// runStore is the slice of the audit store the history command reads.
type runStore interface {
	GetRun(id int64) (*store.Run, error)
	ListDecisions(runID int64) ([]*store.Decision, error)
}

var (
	historyFlagLimit int
	historyFlagRun   int64
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past retention runs from the audit database",
	Long: `List past retention runs, newest first. Each run records the policy it
applied, how many snapshots it kept and deleted, and whether it was a
dry-run. Use --run to show the per-snapshot decisions of one run.`,
	Example: `  # Last 20 runs
  snapsweep history

  # Every recorded run
  snapsweep history --limit 0

  # Decisions of run 12
  snapsweep history --run 12`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyFlagLimit, "limit", 20, "maximum runs to show (0 = all)")
	historyCmd.Flags().Int64Var(&historyFlagRun, "run", 0, "show the decisions of one run by ID")

	RootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if historyFlagRun > 0 {
		return showRun(st, historyFlagRun)
	}

	runs, err := st.ListRuns(historyFlagLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	fmt.Print(output.RenderRunTable(runs))
	return nil
}

func showRun(st runStore, id int64) error {
	run, err := st.GetRun(id)
	if err != nil {
		return fmt.Errorf("run %d not found: %w", id, err)
	}

	fmt.Printf("Run %d — %s\n", run.ID, run.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("  Source: %s\n", run.Source)
	fmt.Printf("  Policy: %dh / %dd / %dw / %dm / %dy\n",
		run.KeepHours, run.KeepDays, run.KeepWeeks, run.KeepMonths, run.KeepYears)
	if !run.Anchor.IsZero() {
		fmt.Printf("  Anchor: %s\n", run.Anchor.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("  Status: %s", run.Status)
	if run.DryRun {
		fmt.Print(" (dry-run)")
	}
	fmt.Println()
	fmt.Println()

	decisions, err := st.ListDecisions(id)
	if err != nil {
		return fmt.Errorf("failed to list decisions: %w", err)
	}
	fmt.Print(output.RenderDecisionTable(decisions))
	return nil
}

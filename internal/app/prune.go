package app

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/calderaops/snapsweep/internal/engine"
	"github.com/calderaops/snapsweep/internal/output"
)

var (
	pruneFlagSource string
	pruneFlagDryRun bool
	pruneFlagYes    bool
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete snapshots that fall outside the retention policy",
	Long: `Apply the retention policy to the source directory and delete every
snapshot it does not retain.

Retention keeps one snapshot per hour, day, ISO week, month and year,
counting back from the newest snapshot. The newest snapshot is always
kept. Deletion is best-effort: a snapshot that fails to delete is
reported and the remaining candidates are still attempted.

Safety features:
  - Only directories directly inside the source directory are touched
  - Only names matching the snapshot pattern are eligible
  - Entries with unparseable timestamps are skipped, never deleted
  - Every run is recorded in the audit database

Examples:
  # Preview what would be removed (dry-run)
  snapsweep prune --source /backups --dry-run

  # Apply the default policy (24h / 7d / 4w / 12m / 10y)
  snapsweep prune --source /backups

  # Keep only dailies and weeklies, skip confirmation
  snapsweep prune --source /backups --keep-hours 0 --keep-months 0 --keep-years 0 --yes`,
	RunE: runPrune,
}

func init() {
	pruneCmd.Flags().StringVar(&pruneFlagSource, "source", "", "snapshot directory to prune")
	pruneCmd.Flags().BoolVar(&pruneFlagDryRun, "dry-run", false, "show what would be removed without removing")
	pruneCmd.Flags().BoolVar(&pruneFlagYes, "yes", false, "skip confirmation prompt")
	registerPolicyFlags(pruneCmd)

	RootCmd.AddCommand(pruneCmd)
}

func runPrune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := buildLogger(cfg)
	if err != nil {
		return err
	}
	source, err := resolveSource(cfg, pruneFlagSource)
	if err != nil {
		return err
	}
	engCfg, err := buildEngineConfig(cfg, cmd, source, pruneFlagDryRun)
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	eng := engine.New(engCfg, st, logger)

	plan, _, err := eng.Plan()
	if err != nil {
		return err
	}

	if plan.Empty() {
		fmt.Println("No snapshots found.")
		return nil
	}

	fmt.Println()
	fmt.Print(output.RenderPlanTable(plan.Decisions))
	fmt.Println()
	fmt.Println(output.RenderPlanSummary(plan))
	fmt.Println()

	doomed := len(plan.Doomed())
	if doomed == 0 {
		fmt.Println("All snapshots are within policy. Nothing to remove.")
		return nil
	}

	if pruneFlagDryRun {
		outcome, err := eng.Execute(plan)
		if err != nil {
			return err
		}
		fmt.Printf("Dry-run mode: no snapshots were removed (run %d recorded).\n", outcome.RunID)
		return nil
	}

	if !pruneFlagYes {
		if !confirmPrune(doomed) {
			fmt.Println("Prune cancelled.")
			return nil
		}
	}

	outcome, err := eng.Execute(plan)
	if outcome != nil {
		rep := outcome.Report
		fmt.Printf("\n✓ Removed %d snapshots in %s\n", rep.Deleted, rep.Duration.Round(time.Millisecond))
		if rep.Missing > 0 {
			fmt.Printf("  %d already gone\n", rep.Missing)
		}
		if rep.Failed > 0 {
			fmt.Printf("\n⚠  %d failures:\n", rep.Failed)
			for _, res := range rep.Results {
				if res.Err != nil {
					fmt.Printf("  - %s: %v\n", res.Name, res.Err)
				}
			}
		}
	}
	return err
}

// confirmPrune prompts the user to confirm deletion.
func confirmPrune(count int) bool {
	reader := bufio.NewReader(os.Stdin)

	fmt.Printf("Remove %d snapshots? [y/N]: ", count)

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

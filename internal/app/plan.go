package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/calderaops/snapsweep/internal/engine"
	"github.com/calderaops/snapsweep/internal/output"
)

var planFlagSource string

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Preview the retention decision for every snapshot",
	Long: `Compute the keep/remove decision for every snapshot in the source
directory without deleting anything and without touching the audit
database. The same policy flags as 'prune' apply, so 'plan' shows
exactly what a subsequent 'prune' with the same flags would do.`,
	Example: `  # Preview with the default policy
  snapsweep plan --source /backups

  # Preview a dailies-only policy
  snapsweep plan --source /backups --keep-hours 0 --keep-weeks 0 --keep-months 0 --keep-years 0`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVar(&planFlagSource, "source", "", "snapshot directory to inspect")
	registerPolicyFlags(planCmd)

	RootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := buildLogger(cfg)
	if err != nil {
		return err
	}
	source, err := resolveSource(cfg, planFlagSource)
	if err != nil {
		return err
	}
	engCfg, err := buildEngineConfig(cfg, cmd, source, true)
	if err != nil {
		return err
	}

	// No store: plan is read-only and leaves no audit record.
	eng := engine.New(engCfg, nil, logger)

	plan, skipped, err := eng.Plan()
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
	if len(skipped) > 0 {
		fmt.Printf("Skipped %d entries with unparseable timestamps.\n", len(skipped))
	}
	return nil
}

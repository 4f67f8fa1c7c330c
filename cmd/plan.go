package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/theirongolddev/tripbudget/internal/cli"
	"github.com/theirongolddev/tripbudget/internal/estimator"
	"github.com/theirongolddev/tripbudget/internal/form"
	"github.com/theirongolddev/tripbudget/internal/logging"
	"github.com/theirongolddev/tripbudget/internal/model"
	"github.com/theirongolddev/tripbudget/internal/trips"
	"github.com/theirongolddev/tripbudget/internal/tui"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	flagPlan     form.TripInput
	flagPlanSeed uint64
	flagPlanJSON bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Estimate the cost of a trip",
	Example: `  tripbudget plan --destination "Paris, France" --budget 5000 --duration 7 --people 2 --month June
  tripbudget plan --json --seed 42 -D Lisbon -b 2500 -t 5 -p 1 -m October`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&flagPlan.Destination, "destination", "D", "", "Where you are going")
	planCmd.Flags().StringVarP(&flagPlan.Budget, "budget", "b", "", "Total budget in USD")
	planCmd.Flags().StringVarP(&flagPlan.Duration, "duration", "t", "", "Trip length in days")
	planCmd.Flags().StringVarP(&flagPlan.People, "people", "p", "", "Number of travelers")
	planCmd.Flags().StringVarP(&flagPlan.Month, "month", "m", "", "Travel month (e.g. June)")
	planCmd.Flags().Uint64Var(&flagPlanSeed, "seed", 0, "Fix the random source for repeatable estimates")
	planCmd.Flags().BoolVar(&flagPlanJSON, "json", false, "Print the plan as JSON")
	rootCmd.AddCommand(planCmd)
}

// missingFields reports whether any trip flag was left empty.
func missingFields(in form.TripInput) bool {
	return in.Destination == "" || in.Budget == "" || in.Duration == "" ||
		in.People == "" || in.Month == ""
}

func interactive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}

func runPlan(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	level := cfg.Logging.Level
	if flagQuiet && flagLogLevel == "" {
		level = "error"
	}
	log := logging.New(os.Stderr, level, cfg.Logging.Format)

	in := flagPlan
	if in.Month == "" {
		if m, ok := model.ParseMonth(cfg.General.DefaultMonth); ok {
			in.Month = m.String()
		}
	}
	if missingFields(in) {
		if !interactive() {
			_, errs := form.ParseTrip(in)
			return fmt.Errorf("missing trip details: %w", errs)
		}
		if err := tui.NewTripForm(&in).RunWithContext(cmd.Context()); err != nil {
			return fmt.Errorf("trip form: %w", err)
		}
	}

	req, errs := form.ParseTrip(in)
	if !errs.Empty() {
		return fmt.Errorf("invalid trip: %w", errs)
	}

	if flagPlanSeed != 0 {
		cfg.Estimator.Seed = flagPlanSeed
	}
	store := trips.NewStore(estimator.FromConfig(cfg))
	plan := store.Create(req)
	log.Debug("trip estimated", "trip_id", plan.ID, "total", plan.TotalEstimated, "sufficient", plan.IsSufficient)

	if flagPlanJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	}

	fmt.Fprint(cmd.OutOrStdout(), cli.RenderPlan(plan))
	return nil
}

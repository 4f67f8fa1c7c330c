package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/theirongolddev/tripbudget/internal/cli"
	"github.com/theirongolddev/tripbudget/internal/estimator"
	"github.com/theirongolddev/tripbudget/internal/model"
	"github.com/theirongolddev/tripbudget/internal/pipeline"
	"github.com/theirongolddev/tripbudget/internal/trips"

	"github.com/spf13/cobra"
)

var (
	flagBatchSeed       uint64
	flagBatchJSON       bool
	flagBatchCollection string
)

var batchCmd = &cobra.Command{
	Use:   "batch <file-or-dir>...",
	Short: "Estimate every trip in JSONL files",
	Long: `Reads one trip request per line from each file, and from every .jsonl file
under each directory. Each line is a JSON object with destination, budget,
duration, people and month. The parent directory names the collection.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().Uint64Var(&flagBatchSeed, "seed", 0, "Fix the random source for repeatable estimates")
	batchCmd.Flags().BoolVar(&flagBatchJSON, "json", false, "Print outcomes as JSON")
	batchCmd.Flags().StringVarP(&flagBatchCollection, "collection", "c", "", "Only plan collections matching (substring match)")
	rootCmd.AddCommand(batchCmd)
}

type batchOutcome struct {
	File       string            `json:"file"`
	Line       int               `json:"line"`
	Collection string            `json:"collection"`
	Plan       *model.TripPlan   `json:"plan,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	progressf("  Scanning trip files...\n")
	result, err := pipeline.Load(args, func(current, total int) {
		if current%50 == 0 || current == total {
			progressf("\r  Parsing [%d/%d]", current, total)
		}
	})
	if err != nil {
		return err
	}
	if result.TotalFiles > 0 {
		progressf("\r  Read %s trips from %d files (%d collections)    \n",
			cli.FormatNumber(int64(len(result.Entries))), result.ParsedFiles, result.CollectionCount)
	}

	if flagBatchSeed != 0 {
		cfg.Estimator.Seed = flagBatchSeed
	}
	store := trips.NewStore(estimator.FromConfig(cfg))
	outcomes := pipeline.Plan(store, result.Entries)
	if flagBatchCollection != "" {
		outcomes = pipeline.FilterByCollection(outcomes, flagBatchCollection)
	}

	if flagBatchJSON {
		out := make([]batchOutcome, 0, len(outcomes))
		for _, o := range outcomes {
			bo := batchOutcome{File: o.Entry.File, Line: o.Entry.Line, Collection: o.Entry.Collection}
			if o.OK() {
				plan := o.Plan
				bo.Plan = &plan
			} else {
				bo.Errors = o.Errors
			}
			out = append(out, bo)
		}
		for _, le := range result.LineErrors {
			fmt.Fprintf(cmd.ErrOrStderr(), "  %s\n", le.Error())
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Fprint(cmd.OutOrStdout(), renderBatch(result, outcomes))
	return nil
}

func renderBatch(result *pipeline.LoadResult, outcomes []pipeline.Outcome) string {
	plans := pipeline.Plans(outcomes)
	stats := trips.Aggregate(plans)

	out := cli.RenderTitle(fmt.Sprintf("Batch: %s trips", cli.FormatNumber(int64(len(outcomes))))) + "\n\n"

	out += cli.RenderTable(cli.Table{
		Title: "Summary",
		Rows: [][]string{
			{"Planned", cli.FormatNumber(int64(stats.TotalTrips))},
			{"Invalid", cli.FormatNumber(int64(len(outcomes) - len(plans)))},
			{"Destinations", cli.FormatNumber(int64(stats.Destinations))},
			{"On budget", cli.FormatPercent(stats.SufficientRate())},
			{"Estimated", cli.FormatUSD(float64(stats.TotalEstimated))},
			{"Budget saved", cli.FormatUSD(stats.BudgetSaved)},
		},
	}) + "\n"

	rows := make([][]string, 0, len(plans))
	for _, p := range plans {
		verdict := "ok"
		if !p.IsSufficient {
			verdict = "short " + cli.FormatUSD(p.ExtraRequired)
		}
		rows = append(rows, []string{
			p.Destination,
			p.Month.String(),
			cli.FormatDays(p.Duration),
			cli.FormatUSD(p.Budget),
			cli.FormatUSD(float64(p.TotalEstimated)),
			verdict,
		})
	}
	if len(rows) > 0 {
		out += cli.RenderTable(cli.Table{
			Title:   "Trips",
			Headers: []string{"Destination", "Month", "Length", "Budget", "Estimate", "Status"},
			Rows:    rows,
		}) + "\n"
	}

	cols := pipeline.AggregateCollections(outcomes)
	if len(cols) > 1 {
		colRows := make([][]string, 0, len(cols))
		for _, c := range cols {
			colRows = append(colRows, []string{
				c.Collection,
				cli.FormatNumber(int64(c.Trips)),
				cli.FormatNumber(int64(c.Insufficient)),
				cli.FormatUSD(float64(c.TotalEstimated)),
				cli.FormatUSD(c.Shortfall),
			})
		}
		out += cli.RenderTable(cli.Table{
			Title:   "Collections",
			Headers: []string{"Collection", "Trips", "Short", "Estimate", "Shortfall"},
			Rows:    colRows,
		}) + "\n"
	}

	months := pipeline.AggregateMonths(plans)
	var peak int64
	for _, m := range months {
		peak = max(peak, m.TotalEstimated)
	}
	if peak > 0 {
		out += "  Estimated by month\n"
		for _, m := range months {
			out += cli.RenderHorizontalBar(m.Month.String()[:3], float64(m.TotalEstimated), float64(peak), 40) + "\n"
		}
		out += "\n"
	}

	if len(plans) < len(outcomes) || len(result.LineErrors) > 0 {
		out += "  Invalid entries\n"
	}
	for _, o := range outcomes {
		if !o.OK() {
			out += fmt.Sprintf("  %s:%d: %s\n", o.Entry.File, o.Entry.Line, o.Errors.Error())
		}
	}
	for _, le := range result.LineErrors {
		out += fmt.Sprintf("  %s\n", le.Error())
	}
	if result.FileErrors > 0 {
		fmt.Fprintf(os.Stderr, "  %d files could not be read completely\n", result.FileErrors)
	}

	return out
}

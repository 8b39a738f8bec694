package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tribunal/internal/aggregate"
	"tribunal/internal/display"
	"tribunal/internal/store"
)

var runsFlags struct {
	dbPath string
	show   string
	layer  string
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List persisted runs, or show one run's scored results",
	RunE:  runRuns,
}

func init() {
	f := runsCmd.Flags()
	f.StringVar(&runsFlags.dbPath, "db", store.DefaultDBPath, "Path to the run database")
	f.StringVar(&runsFlags.show, "show", "", "Run ID to show results for")
	f.StringVar(&runsFlags.layer, "layer", string(aggregate.LayerArea), "Result layer to show (item, dimension, area, cluster, macro)")
}

func runRuns(cmd *cobra.Command, _ []string) error {
	db, err := store.Open(runsFlags.dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	out := cmd.OutOrStdout()
	if runsFlags.show == "" {
		runs, err := db.ListRuns()
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(out, "no runs recorded")
			return nil
		}
		for _, r := range runs {
			state := "ok"
			if r.Blocked {
				state = "blocked"
			}
			fmt.Fprintf(out, "%s  %s  macro=%.3f  %s\n",
				r.ID, r.StartedAt.Format("2006-01-02 15:04"), r.MacroScore, state)
		}
		return nil
	}

	results, err := db.Results(runsFlags.show, aggregate.Layer(runsFlags.layer))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s results for run %s\n", display.Layer(aggregate.Layer(runsFlags.layer)), runsFlags.show)
	for _, r := range results {
		fmt.Fprintf(out, "  %-12s %.3f  conf=%.2f  %s\n", r.Key, r.Score, r.Confidence, display.Quality(r.Quality))
	}
	return nil
}

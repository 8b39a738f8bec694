package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"tribunal/internal/baseline"
	"tribunal/internal/catalog"
	"tribunal/internal/config"
	"tribunal/internal/display"
	"tribunal/internal/orchestrate"
	"tribunal/internal/store"
)

var evaluateFlags struct {
	catalogPath string
	chunksPath  string
	configPath  string
	dbPath      string
	workers     int
	noStore     bool
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Run the full pipeline: plan, fuse evidence, aggregate, persist",
	RunE:  runEvaluate,
}

func init() {
	f := evaluateCmd.Flags()
	f.StringVar(&evaluateFlags.catalogPath, "catalog", "", "Path to the method catalog (yaml or json)")
	f.StringVar(&evaluateFlags.chunksPath, "chunks", "", "Path to the 60-chunk document matrix (yaml or json)")
	f.StringVar(&evaluateFlags.configPath, "config", "", "Path to a config file (defaults apply when omitted)")
	f.StringVar(&evaluateFlags.dbPath, "db", store.DefaultDBPath, "Path to the run database")
	f.IntVar(&evaluateFlags.workers, "workers", 0, "Worker count override (0 keeps the configured value)")
	f.BoolVar(&evaluateFlags.noStore, "no-store", false, "Skip persisting the run")
	_ = evaluateCmd.MarkFlagRequired("catalog")
	_ = evaluateCmd.MarkFlagRequired("chunks")
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	cfg := config.Default()
	if evaluateFlags.configPath != "" {
		var err error
		cfg, err = config.LoadFromPath(evaluateFlags.configPath)
		if err != nil {
			return err
		}
	}
	if evaluateFlags.workers > 0 {
		cfg.Workers = evaluateFlags.workers
	}

	cat, err := catalog.LoadFromPath(evaluateFlags.catalogPath)
	if err != nil {
		return err
	}
	matrix, err := orchestrate.LoadMatrixFromPath(evaluateFlags.chunksPath)
	if err != nil {
		return err
	}

	orch := orchestrate.New(cat, matrix, cfg)
	res, err := orch.Run(cmd.Context(), baseline.Resolver{}, baseline.Producer{})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	macro := res.Pyramid.Macro
	fmt.Fprintf(out, "Plan %s over matrix %s\n", res.Plan.ID(), matrix.IntegrityHash()[:12])
	fmt.Fprintf(out, "Macro score: %.3f  confidence: %.2f  quality: %s\n",
		macro.Score, macro.Confidence, display.QualityWithCode(macro.Quality))
	for _, c := range res.Pyramid.Clusters {
		fmt.Fprintf(out, "  %-12s %.3f  %s\n", c.Key, c.Score, display.Quality(c.Quality))
	}
	if n := len(res.InvalidItems); n > 0 {
		fmt.Fprintf(out, "%d item(s) failed closed: %v\n", n, res.InvalidItems)
	}

	if evaluateFlags.noStore {
		return nil
	}
	return persistRun(out, cfg, matrix, res)
}

func persistRun(out io.Writer, cfg config.Config, matrix *orchestrate.ChunkMatrix, res *orchestrate.RunResult) error {
	db, err := store.Open(evaluateFlags.dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	run := &store.Run{
		ID:         uuid.NewString(),
		StartedAt:  time.Now().UTC(),
		PlanID:     res.Plan.ID(),
		MatrixHash: matrix.IntegrityHash(),
		ConfigJSON: string(cfgJSON),
		MacroScore: res.Pyramid.Macro.Score,
		Blocked:    res.Pyramid.Macro.Blocked,
	}
	if err := db.CreateRun(run); err != nil {
		return err
	}
	if err := db.SavePlan(run.ID, res.Plan); err != nil {
		return err
	}
	for _, layer := range res.Pyramid.Layers() {
		if err := db.SaveResults(run.ID, layer); err != nil {
			return err
		}
	}
	fmt.Fprintf(out, "Saved run %s to %s\n", run.ID, evaluateFlags.dbPath)
	return nil
}

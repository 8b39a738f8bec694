package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tribunal/internal/catalog"
	"tribunal/internal/config"
	"tribunal/internal/orchestrate"
)

var planFlags struct {
	catalogPath string
	chunksPath  string
	tasks       bool
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Build and print the execution plan without running it",
	RunE:  runPlan,
}

func init() {
	f := planCmd.Flags()
	f.StringVar(&planFlags.catalogPath, "catalog", "", "Path to the method catalog (yaml or json)")
	f.StringVar(&planFlags.chunksPath, "chunks", "", "Path to the 60-chunk document matrix (yaml or json)")
	f.BoolVar(&planFlags.tasks, "tasks", false, "Print every task in the plan")
	_ = planCmd.MarkFlagRequired("catalog")
	_ = planCmd.MarkFlagRequired("chunks")
}

func runPlan(cmd *cobra.Command, _ []string) error {
	cat, err := catalog.LoadFromPath(planFlags.catalogPath)
	if err != nil {
		return err
	}
	matrix, err := orchestrate.LoadMatrixFromPath(planFlags.chunksPath)
	if err != nil {
		return err
	}

	plan, err := orchestrate.New(cat, matrix, config.Default()).BuildPlan()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Plan:   %s\n", plan.ID())
	fmt.Fprintf(out, "Matrix: %s\n", matrix.IntegrityHash())
	fmt.Fprintf(out, "Tasks:  %d\n", plan.Len())
	if planFlags.tasks {
		for _, t := range plan.Tasks() {
			fmt.Fprintf(out, "  %s  %-12s -> %s\n", t.ID, t.ItemID, t.ChunkKey)
		}
	}
	return nil
}

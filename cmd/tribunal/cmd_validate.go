package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"tribunal/internal/catalog"
	"tribunal/internal/chain"
	"tribunal/internal/display"
	"tribunal/internal/veto"
)

var validateFlags struct {
	catalogPath string
	chains      bool
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check catalog coherence: phases, declared counts, veto asymmetry",
	RunE:  runValidate,
}

func init() {
	f := validateCmd.Flags()
	f.StringVar(&validateFlags.catalogPath, "catalog", "", "Path to the method catalog (yaml or json)")
	f.BoolVar(&validateFlags.chains, "chains", false, "Print each composed chain's phase breakdown")
	_ = validateCmd.MarkFlagRequired("catalog")
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cat, err := catalog.LoadFromPath(validateFlags.catalogPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var composer chain.Composer
	bad := 0
	for i := range cat.Items {
		im := &cat.Items[i]
		ec, err := composer.Compose(im)
		if err != nil {
			bad++
			fmt.Fprintf(out, "FAIL %s: %v\n", im.ItemID, err)
			continue
		}
		if err := veto.CheckAsymmetry(ec); err != nil {
			bad++
			fmt.Fprintf(out, "FAIL %s: %v\n", im.ItemID, err)
			continue
		}
		if validateFlags.chains {
			printChain(out, ec)
		}
	}
	if bad > 0 {
		return fmt.Errorf("%d of %d items failed coherence checks", bad, len(cat.Items))
	}
	fmt.Fprintf(out, "OK: %d items, all chains coherent\n", len(cat.Items))
	return nil
}

func printChain(out io.Writer, ec *chain.EpistemicChain) {
	fmt.Fprintf(out, "%s (%d methods -> %s)\n", ec.ItemID(), ec.Len(), ec.OutputTarget())
	phases := []struct {
		phase   catalog.Phase
		methods []catalog.Method
	}{
		{catalog.PhaseConstruction, ec.Empirical()},
		{catalog.PhaseComputation, ec.Inferential()},
		{catalog.PhaseLitigation, ec.Audit()},
	}
	for _, p := range phases {
		fmt.Fprintf(out, "  %-12s %-20s %d method(s)\n",
			display.Phase(p.phase), chain.Epistemology(p.phase), len(p.methods))
	}
}

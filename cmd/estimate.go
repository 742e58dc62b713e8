package main

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/geo-intel/internal/cost"
	"github.com/sells-group/geo-intel/internal/intel"
)

var estimateScenario cost.Scenario

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate the cost of one intelligence report",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("estimate"); err != nil {
			return eris.Wrap(err, "config: validation failed")
		}

		rates, err := cost.LoadRates(cfg.Pricing.Path)
		if err != nil {
			return err
		}

		s := estimateScenario
		if s.Model == "" {
			s.Model = cfg.Anthropic.Model
		}
		if len(s.Engines) == 0 {
			s.Engines = cfg.Intel.Engines
		}

		est := cost.NewEstimator(rates, intel.CostProfiles()).Estimate(s)

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(est)
	},
}

func init() {
	f := estimateCmd.Flags()
	f.StringVar(&estimateScenario.Model, "model", "", "Claude model (default from config)")
	f.IntVar(&estimateScenario.Prompts, "prompts", 20, "prompts per report")
	f.IntVar(&estimateScenario.Clusters, "clusters", 5, "prompt clusters per report")
	f.IntVar(&estimateScenario.Competitors, "competitors", 10, "competitors per report")
	f.IntVar(&estimateScenario.Opportunities, "opportunities", 10, "opportunities per report")
	f.StringSliceVar(&estimateScenario.Engines, "engines", nil, "answer engines queried (default from config)")
	f.BoolVar(&estimateScenario.Batch, "batch", false, "price Claude calls at batch rates")
	rootCmd.AddCommand(estimateCmd)
}

package main

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/geo-intel/internal/model"
)

var (
	runWorkspace       string
	runBrand           string
	runDomain          string
	runOpportunities   bool
	runRecommendations bool
	runMaxOpps         int
	runMaxPriority     string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate one intelligence report and print it as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if runMaxPriority != "" {
			if _, ok := model.Priority(runMaxPriority).Rank(); !ok {
				return eris.Errorf("unknown priority %q", runMaxPriority)
			}
		}

		env, err := initEnv(ctx, "run")
		if err != nil {
			return err
		}
		defer env.Close()

		resp := env.Orchestrator.Orchestrate(ctx, runWorkspace, runBrand, runDomain, runOptions(cmd))
		dq := env.Orchestrator.ValidateDataQuality(resp)
		if runMaxPriority != "" {
			resp.Recommendations = model.FilterByMaxPriority(resp.Recommendations, model.Priority(runMaxPriority))
		}

		zap.L().Info("report complete",
			zap.String("workspace_id", runWorkspace),
			zap.Float64("confidence", resp.Metadata.Confidence),
			zap.Int("warnings", len(resp.Metadata.Warnings)),
			zap.Int("errors", len(resp.Metadata.Errors)),
		)

		stderr := cmd.ErrOrStderr()
		for _, e := range resp.Metadata.Errors {
			fmt.Fprintf(stderr, "error: %s\n", e)
		}
		for _, issue := range dq.Issues {
			fmt.Fprintf(stderr, "data quality: %s\n", issue)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	},
}

// runOptions maps the flags the user actually set onto request options.
func runOptions(cmd *cobra.Command) model.Options {
	var opts model.Options
	if cmd.Flags().Changed("opportunities") {
		v := runOpportunities
		opts.IncludeOpportunities = &v
	}
	if cmd.Flags().Changed("recommendations") {
		v := runRecommendations
		opts.IncludeRecommendations = &v
	}
	opts.MaxOpportunities = runMaxOpps
	return opts
}

func init() {
	runCmd.Flags().StringVar(&runWorkspace, "workspace", "", "workspace ID (required)")
	runCmd.Flags().StringVar(&runBrand, "brand", "", "brand name (required)")
	runCmd.Flags().StringVar(&runDomain, "domain", "", "brand domain (required)")
	runCmd.Flags().BoolVar(&runOpportunities, "opportunities", true, "generate opportunities")
	runCmd.Flags().BoolVar(&runRecommendations, "recommendations", true, "generate recommendations")
	runCmd.Flags().IntVar(&runMaxOpps, "max-opportunities", 0, "opportunity cap (default from config)")
	runCmd.Flags().StringVar(&runMaxPriority, "max-priority", "", "print only recommendations at or above this priority (critical, high, medium, low)")
	_ = runCmd.MarkFlagRequired("workspace")
	_ = runCmd.MarkFlagRequired("brand")
	_ = runCmd.MarkFlagRequired("domain")
	rootCmd.AddCommand(runCmd)
}

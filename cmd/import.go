package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/geo-intel/internal/model"
)

var importPath string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import answer-engine observations from a JSON file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("import"); err != nil {
			return eris.Wrap(err, "config: validation failed")
		}

		obs, err := readObservations(importPath)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		n, err := st.AddObservations(ctx, obs)
		if err != nil {
			return eris.Wrap(err, "import observations")
		}

		zap.L().Info("import complete",
			zap.Int("observations", n),
			zap.String("file", importPath),
		)
		return nil
	},
}

// readObservations decodes a JSON array of observations.
func readObservations(path string) ([]model.Observation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read observations %s", path)
	}
	var obs []model.Observation
	if err := json.Unmarshal(data, &obs); err != nil {
		return nil, eris.Wrapf(err, "parse observations %s", path)
	}
	if len(obs) == 0 {
		return nil, eris.Errorf("no observations in %s", path)
	}
	return obs, nil
}

func init() {
	importCmd.Flags().StringVar(&importPath, "file", "", "path to observations JSON file (required)")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}

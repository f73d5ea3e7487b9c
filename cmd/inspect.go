package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"cardiopredict/db"
	"cardiopredict/ml"
)

func newInspectCmd() *cobra.Command {
	var recent int
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Load the artifacts and print what they contain",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			artifacts, err := ml.LoadArtifacts(cfg.ModelPath(), cfg.ScalerPath())
			if err != nil {
				return err
			}
			out := struct {
				Model       string                `json:"model"`
				Scaler      string                `json:"scaler"`
				Artifacts   ml.ArtifactInfo       `json:"artifacts"`
				Classifiers []string              `json:"supported_classifiers"`
				Scalers     []string              `json:"supported_scalers"`
				Recent      []db.PredictionRecord `json:"recent_predictions,omitempty"`
			}{
				Model:       cfg.ModelPath(),
				Scaler:      cfg.ScalerPath(),
				Artifacts:   artifacts.Info(),
				Classifiers: ml.ClassifierTypes(),
				Scalers:     ml.ScalerTypes(),
			}

			if recent > 0 {
				if cfg.Store.Path == "" {
					return errors.New("--recent needs store.path to be configured")
				}
				store, err := db.OpenPredictionStore(cfg.Store.Path)
				if err != nil {
					return fmt.Errorf("open prediction log: %w", err)
				}
				defer store.Close()
				if out.Recent, err = store.Recent(cmd.Context(), recent); err != nil {
					return fmt.Errorf("read prediction log: %w", err)
				}
			}

			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	cmd.Flags().IntVar(&recent, "recent", 0, "also print the last N logged predictions")
	return cmd
}

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"cardiopredict/ml"
	"cardiopredict/predict"
)

func newPredictCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Run one /predict request body through the artifacts without serving",
		Long: "Reads a request body such as {\"features\": [...]} from --file or stdin and " +
			"prints the HTTP status and response the API would return.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			artifacts, err := ml.LoadArtifacts(cfg.ModelPath(), cfg.ScalerPath())
			if err != nil {
				return err
			}

			var body []byte
			if file == "" || file == "-" {
				body, err = io.ReadAll(cmd.InOrStdin())
			} else {
				body, err = os.ReadFile(file)
			}
			if err != nil {
				return fmt.Errorf("read request body: %w", err)
			}

			status, response := runPredict(predict.NewHandler(artifacts), body)
			data, err := json.Marshal(response)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d %s\n", status, data)
			return err
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "request body file (default stdin)")
	return cmd
}

// runPredict mirrors the status and body of POST /predict. Client errors are
// reported by kind since there is no request to localize against.
func runPredict(h *predict.Handler, body []byte) (int, any) {
	result, err := h.Handle(body)
	if err != nil {
		kind := predict.KindOf(err)
		return kind.Status(), map[string]string{"error": err.Error(), "kind": kind.String()}
	}
	return http.StatusOK, result
}

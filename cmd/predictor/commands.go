package main

import (
	"fmt"
	"os"

	"github.com/Alias1177/CardioPredictor/internal/features"
	"github.com/Alias1177/CardioPredictor/internal/render"
	"github.com/Alias1177/CardioPredictor/internal/validate"
	"github.com/Alias1177/CardioPredictor/models"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the most recent results, newest first.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		return render.History(cmd.OutOrStdout(), e.controller.History())
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget all recent results.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		e.controller.ClearHistory(cmd.Context())
		_, err = fmt.Fprintln(cmd.OutOrStdout(), "History cleared")
		return err
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether the prediction service has a model loaded.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		status := e.controller.Status(cmd.Context())
		health := "unknown"
		if h, err := e.client.Health(cmd.Context()); err == nil && h.Status != "" {
			health = h.Status
		}
		return render.Status(cmd.OutOrStdout(), e.client.BaseURL(), status, health)
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "List the fields a record needs.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return render.Schema(cmd.OutOrStdout(), features.Heart())
	},
}

var modelInfoCmd = &cobra.Command{
	Use:   "model-info",
	Short: "Describe the model the service is running.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		info, err := e.client.ModelInfo(cmd.Context())
		if err != nil {
			return fmt.Errorf("fetching model info: %w", err)
		}
		return render.ModelInfo(cmd.OutOrStdout(), info)
	},
}

var batchFile string

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Score every record in a YAML list in one request.",
	Long:  "Batch results are shown but not added to the recent results.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		rows, err := readBatchFile(batchFile)
		if err != nil {
			return err
		}

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		out := cmd.OutOrStdout()
		requests, failed := validateRows(rows, e.controller.Schema())
		if len(failed) > 0 {
			for i, errs := range failed {
				if errs == nil {
					continue
				}
				fmt.Fprintf(out, "Row %d:\n", i+1)
				_ = render.ValidationErrors(out, e.controller.Schema(), errs)
			}
			return errReported
		}

		results, err := e.client.BatchPredict(cmd.Context(), requests)
		if err != nil {
			_ = render.PredictionFailure(out)
			return errReported
		}
		return render.Batch(out, results)
	},
}

func init() {
	batchCmd.Flags().StringVarP(&batchFile, "file", "f", "", "YAML file holding a list of records")
	_ = batchCmd.MarkFlagRequired("file")
}

func readBatchFile(path string) ([]models.RawInputRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading batch file: %w", err)
	}

	var rows []map[string]any
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing batch file %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("batch file %s has no records", path)
	}

	records := make([]models.RawInputRecord, len(rows))
	for i, r := range rows {
		records[i] = models.RawInputRecord(r)
	}
	return records, nil
}

// validateRows returns the normalized rows, or per-row errors indexed like rows when any row fails
func validateRows(rows []models.RawInputRecord, schema features.Schema) ([]models.NormalizedRequest, []models.ValidationError) {
	requests := make([]models.NormalizedRequest, 0, len(rows))
	failed := make([]models.ValidationError, len(rows))
	anyFailed := false

	for i, raw := range rows {
		req, errs := validate.Validate(raw, schema)
		if len(errs) > 0 {
			failed[i] = errs
			anyFailed = true
			continue
		}
		requests = append(requests, req)
	}

	if anyFailed {
		return nil, failed
	}
	return requests, nil
}

package main

import (
	"fmt"
	"os"

	"github.com/Alias1177/CardioPredictor/internal/features"
	"github.com/Alias1177/CardioPredictor/internal/render"
	"github.com/Alias1177/CardioPredictor/internal/session"
	"github.com/Alias1177/CardioPredictor/internal/validate"
	"github.com/Alias1177/CardioPredictor/models"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

var (
	recordFile  string
	useDefaults bool
)

var predictCmd = &cobra.Command{
	Use:   "predict [name=value ...]",
	Short: "Submit one record for a risk estimate.",
	Example: `  predictor predict age=57 sex=1 cp=3 trestbps=150 chol=276 fbs=0 restecg=2 thalach=112 exang=1 oldpeak=0.6 slope=1 ca=1 thal=1
  predictor predict --file patient.yaml
  predictor predict --defaults age=63`,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := buildRecord(args)
		if err != nil {
			return err
		}

		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		out := cmd.OutOrStdout()
		switch o := e.controller.Submit(cmd.Context(), raw).(type) {
		case session.ValidationFailed:
			_ = render.ValidationErrors(out, e.controller.Schema(), o.Errors)
			return errReported
		case session.PredictionFailed:
			_ = render.PredictionFailure(out)
			return errReported
		case session.Succeeded:
			return render.Presentation(out, o.Presentation)
		}
		return nil
	},
}

func init() {
	predictCmd.Flags().StringVarP(&recordFile, "file", "f", "", "YAML or JSON file holding the record")
	predictCmd.Flags().BoolVar(&useDefaults, "defaults", false, "Start from the sample record; name=value arguments override it")
}

// buildRecord layers the sample record, the file and the arguments, later sources winning
func buildRecord(args []string) (models.RawInputRecord, error) {
	raw := models.RawInputRecord{}
	if useDefaults {
		raw = features.Defaults()
	}

	if recordFile != "" {
		fromFile, err := readRecordFile(recordFile)
		if err != nil {
			return nil, err
		}
		for k, v := range fromFile {
			raw[k] = v
		}
	}

	pairs, err := validate.ParsePairs(args)
	if err != nil {
		return nil, err
	}
	for k, v := range pairs {
		raw[k] = v
	}
	return raw, nil
}

func readRecordFile(path string) (models.RawInputRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading record file: %w", err)
	}

	var record map[string]any
	if err := yaml.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("parsing record file %s: %w", path, err)
	}
	return models.RawInputRecord(record), nil
}

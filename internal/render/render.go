// Package render prints controller output for terminal front ends.
package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/Alias1177/CardioPredictor/internal/features"
	"github.com/Alias1177/CardioPredictor/internal/interpret"
	"github.com/Alias1177/CardioPredictor/models"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

var (
	positiveColor = color.New(color.FgRed, color.Bold)
	negativeColor = color.New(color.FgGreen, color.Bold)
	errorColor    = color.New(color.FgRed)
	mutedColor    = color.New(color.FgHiBlack)
)

// Disclaimer is shown under every result
const Disclaimer = "This tool provides educational insights and does not constitute medical advice."

// Presentation prints a single prediction result
func Presentation(w io.Writer, p models.PresentationResult) error {
	c := negativeColor
	if p.IsPositive {
		c = positiveColor
	}
	_, err := fmt.Fprintf(w, "Result: %s\nHealthy probability: %.1f%%\nHeart patient probability: %.1f%%\n%s\n",
		c.Sprint(p.Classification), p.NegativePct, p.PositivePct, mutedColor.Sprint(Disclaimer))
	return err
}

// ValidationErrors prints field errors in schema order
func ValidationErrors(w io.Writer, schema features.Schema, errs models.ValidationError) error {
	if _, err := fmt.Fprintln(w, errorColor.Sprint("Please fix the following fields:")); err != nil {
		return err
	}
	for _, f := range schema.Fields() {
		msg, ok := errs[f.Name]
		if !ok {
			continue
		}
		if _, err := fmt.Fprintf(w, "  %s (%s): %s\n", f.Label, f.Name, msg); err != nil {
			return err
		}
	}
	return nil
}

// PredictionFailure prints the single generic failure line shown for network and protocol errors
func PredictionFailure(w io.Writer) error {
	_, err := fmt.Fprintln(w, errorColor.Sprint("Prediction failed. The service could not be reached or returned an unexpected response."))
	return err
}

// History prints the recent predictions, newest first
func History(w io.Writer, log models.HistoryLog) error {
	if len(log) == 0 {
		_, err := fmt.Fprintln(w, "No recent results")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "When", "Result", "Confidence"})

	var data [][]string
	for i, e := range log {
		label := interpret.LabelNegative
		if e.Result.Label == 1 {
			label = interpret.LabelPositive
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			models.FormatEntryTime(e.At),
			label,
			fmt.Sprintf("%d%%", interpret.Confidence(e.Result)),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// Schema prints the fields a submission needs
func Schema(w io.Writer, schema features.Schema) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Name", "Label", "Range", "Hint"})

	var data [][]string
	for _, f := range schema.Fields() {
		data = append(data, []string{f.Name, f.Label, formatRange(f), f.Hint})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// Status prints the advisory service status
func Status(w io.Writer, baseURL string, status models.ServiceStatus, health string) error {
	c := negativeColor
	if status != models.StatusReady {
		c = errorColor
	}
	if baseURL == "" {
		baseURL = "(same origin)"
	}
	_, err := fmt.Fprintf(w, "Service: %s\nModel: %s\nHealth: %s\n", baseURL, c.Sprint(string(status)), health)
	return err
}

// ModelInfo prints the service's model description
func ModelInfo(w io.Writer, info models.ModelInfo) error {
	_, err := fmt.Fprintf(w, "Model: %s %s\nFeatures: %v\n", info.Name, info.Version, info.Features)
	return err
}

// Batch prints one row per batch result
func Batch(w io.Writer, results []models.PredictionResult) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Row", "Result", "Healthy %", "Heart patient %"})

	var data [][]string
	for i, r := range results {
		p := interpret.Present(r)
		data = append(data, []string{
			strconv.Itoa(i + 1),
			p.Classification,
			strconv.FormatFloat(p.NegativePct, 'f', 1, 64),
			strconv.FormatFloat(p.PositivePct, 'f', 1, 64),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func formatRange(f features.FieldSpec) string {
	switch {
	case f.Min != nil && f.Max != nil:
		return fmt.Sprintf("%g..%g", *f.Min, *f.Max)
	case f.Min != nil:
		return fmt.Sprintf(">= %g", *f.Min)
	case f.Max != nil:
		return fmt.Sprintf("<= %g", *f.Max)
	}
	return "any"
}

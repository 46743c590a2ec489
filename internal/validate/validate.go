// Package validate checks raw user input against a feature schema.
package validate

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Alias1177/CardioPredictor/internal/features"
	"github.com/Alias1177/CardioPredictor/models"
	"github.com/go-playground/validator/v10"
)

// Messages surfaced per field
const (
	MsgRequired   = "Required"
	MsgNotNumber  = "Must be a number"
	MsgNotInteger = "Must be a whole number"
)

var rangeChecker = validator.New()

// Validate coerces every schema field of raw to a finite number and applies the declared ranges.
// Exactly one of the return values is non-nil. Keys outside the schema are ignored.
func Validate(raw models.RawInputRecord, schema features.Schema) (models.NormalizedRequest, models.ValidationError) {
	out := make(models.NormalizedRequest, schema.Len())
	errs := make(models.ValidationError)

	for _, field := range schema.Fields() {
		value, present := raw[field.Name]
		if !present || isBlank(value) {
			if field.Required {
				errs[field.Name] = MsgRequired
			}
			continue
		}

		num, ok := coerce(value)
		if !ok {
			errs[field.Name] = MsgNotNumber
			continue
		}
		if field.Integer && math.Trunc(num) != num {
			errs[field.Name] = MsgNotInteger
			continue
		}
		if msg := checkRange(num, field); msg != "" {
			errs[field.Name] = msg
			continue
		}
		out[field.Name] = num
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

// coerce accepts textual and native numeric input. Anything else, NaN and Inf are rejected.
func coerce(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func checkRange(v float64, field features.FieldSpec) string {
	if field.Min != nil {
		if err := rangeChecker.Var(v, "gte="+formatBound(*field.Min)); err != nil {
			return "Min " + formatBound(*field.Min)
		}
	}
	if field.Max != nil {
		if err := rangeChecker.Var(v, "lte="+formatBound(*field.Max)); err != nil {
			return "Max " + formatBound(*field.Max)
		}
	}
	return ""
}

func formatBound(b float64) string {
	return strconv.FormatFloat(b, 'f', -1, 64)
}

// ParsePairs turns "name=value" tokens into a raw record. Later tokens win on duplicate names.
func ParsePairs(tokens []string) (models.RawInputRecord, error) {
	raw := make(models.RawInputRecord, len(tokens))
	for _, tok := range tokens {
		name, value, found := strings.Cut(tok, "=")
		name = strings.ToLower(strings.TrimSpace(name))
		if !found || name == "" {
			return nil, fmt.Errorf("expected name=value, got %q", tok)
		}
		raw[name] = strings.TrimSpace(value)
	}
	return raw, nil
}

// Package features declares the clinical inputs the prediction model consumes.
package features

import "github.com/Alias1177/CardioPredictor/models"

// FieldSpec describes one required input of the model
type FieldSpec struct {
	Name        string
	Label       string
	Description string
	Hint        string
	Min         *float64
	Max         *float64
	Required    bool
	Integer     bool // categorical or count values that must be whole numbers
}

// Schema is an ordered, read-only list of fields.
// Order is for display only; requests are keyed by name.
type Schema struct {
	fields []FieldSpec
	index  map[string]int
}

// NewSchema builds a schema from fields in display order. Duplicate names keep the first declaration.
func NewSchema(fields ...FieldSpec) Schema {
	s := Schema{
		fields: make([]FieldSpec, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if _, dup := s.index[f.Name]; dup {
			continue
		}
		s.index[f.Name] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	return s
}

// Fields returns a copy of the fields in declared order
func (s Schema) Fields() []FieldSpec {
	out := make([]FieldSpec, len(s.fields))
	copy(out, s.fields)
	return out
}

// Names returns field names in declared order
func (s Schema) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Lookup finds a field by name
func (s Schema) Lookup(name string) (FieldSpec, bool) {
	i, ok := s.index[name]
	if !ok {
		return FieldSpec{}, false
	}
	return s.fields[i], true
}

// Len returns the number of fields
func (s Schema) Len() int {
	return len(s.fields)
}

func bound(v float64) *float64 {
	return &v
}

func ranged(name, label, description, hint string, lo, hi float64, integer bool) FieldSpec {
	return FieldSpec{
		Name:        name,
		Label:       label,
		Description: description,
		Hint:        hint,
		Min:         bound(lo),
		Max:         bound(hi),
		Required:    true,
		Integer:     integer,
	}
}

var heart = NewSchema(
	ranged("age", "Age", "Age in years.", "", 18, 100, false),
	ranged("sex", "Sex", "Biological sex encoded as 0 or 1.", "0 = female, 1 = male", 0, 1, true),
	ranged("cp", "Chest Pain Type (cp)", "Chest pain category (encoded 0-3).", "0: Typical, 1: Atypical, 2: Non-anginal, 3: Asymptomatic", 0, 3, true),
	ranged("trestbps", "Resting Blood Pressure (trestbps)", "Resting blood pressure in mm Hg.", "", 80, 200, false),
	ranged("chol", "Serum Cholesterol (chol)", "Serum cholesterol in mg/dl.", "", 100, 500, false),
	ranged("fbs", "Fasting Blood Sugar (fbs)", "Whether fasting blood sugar > 120 mg/dl (encoded).", "0 = false, 1 = true", 0, 1, true),
	ranged("restecg", "Resting ECG (restecg)", "Resting electrocardiographic results (encoded 0-2).", "0: Normal, 1: ST-T abnormality, 2: LVH (Estes)", 0, 2, true),
	ranged("thalach", "Max Heart Rate (thalach)", "Maximum heart rate achieved (bpm).", "", 60, 250, false),
	ranged("exang", "Exercise Induced Angina (exang)", "Exercise-induced angina (encoded).", "0 = no, 1 = yes", 0, 1, true),
	ranged("oldpeak", "ST Depression (oldpeak)", "ST depression induced by exercise relative to rest.", "", 0, 6, false),
	ranged("slope", "ST Slope (slope)", "Slope of the peak exercise ST segment (encoded 0-2).", "0: Upsloping, 1: Flat, 2: Downsloping", 0, 2, true),
	ranged("ca", "Major Vessels (ca)", "Number of major vessels (0-3) colored by fluoroscopy.", "", 0, 3, true),
	ranged("thal", "Thalassemia (thal)", "Thalassemia (encoded 0-2).", "0: Normal, 1: Fixed defect, 2: Reversible defect", 0, 2, true),
)

// Heart returns the heart disease model's schema
func Heart() Schema {
	return heart
}

// Defaults returns a sample record that passes validation against Heart
func Defaults() models.RawInputRecord {
	return models.RawInputRecord{
		"age":      57,
		"sex":      1,
		"cp":       3,
		"trestbps": 150,
		"chol":     276,
		"fbs":      0,
		"restecg":  2,
		"thalach":  112,
		"exang":    1,
		"oldpeak":  0.6,
		"slope":    1,
		"ca":       1,
		"thal":     1,
	}
}

package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeartOrder(t *testing.T) {
	want := []string{"age", "sex", "cp", "trestbps", "chol", "fbs", "restecg", "thalach", "exang", "oldpeak", "slope", "ca", "thal"}
	assert.Equal(t, want, Heart().Names())
	assert.Equal(t, len(want), Heart().Len())
}

func TestFieldsReturnsCopy(t *testing.T) {
	fields := Heart().Fields()
	fields[0].Name = "changed"

	assert.Equal(t, "age", Heart().Fields()[0].Name)
}

func TestLookup(t *testing.T) {
	f, ok := Heart().Lookup("oldpeak")
	require.True(t, ok)
	require.NotNil(t, f.Min)
	require.NotNil(t, f.Max)
	assert.Equal(t, 0.0, *f.Min)
	assert.Equal(t, 6.0, *f.Max)
	assert.False(t, f.Integer)

	_, ok = Heart().Lookup("unknown")
	assert.False(t, ok)
}

func TestNewSchemaDropsDuplicates(t *testing.T) {
	s := NewSchema(FieldSpec{Name: "a", Label: "first"}, FieldSpec{Name: "a", Label: "second"}, FieldSpec{Name: "b"})

	assert.Equal(t, []string{"a", "b"}, s.Names())
	f, _ := s.Lookup("a")
	assert.Equal(t, "first", f.Label)
}

func TestDefaultsCoverSchema(t *testing.T) {
	d := Defaults()
	assert.Len(t, d, Heart().Len())
	for _, name := range Heart().Names() {
		assert.Contains(t, d, name)
	}
}

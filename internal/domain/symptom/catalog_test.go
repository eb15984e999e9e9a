package symptom

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_LoadsEmbeddedCatalog(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	assert.NotEmpty(t, cat.Version)
	assert.Greater(t, cat.Len(), 0)

	fall, ok := cat.Lookup("fall")
	require.True(t, ok)
	assert.Equal(t, 2, fall.Points)

	confusion, ok := cat.Lookup("confusion")
	require.True(t, ok)
	assert.Equal(t, 3, confusion.Points)
}

func TestCatalog_LookupUnknown(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	_, ok := cat.Lookup("not-a-real-id")
	assert.False(t, ok)
	_, ok = cat.Lookup("")
	assert.False(t, ok)
}

func TestCatalog_CategoriesPreserveOrder(t *testing.T) {
	cat, err := NewCatalog("t", []Category{
		{ID: "b", Name: "B", Symptoms: []Symptom{{ID: "b1", Label: "B one", Points: 1}}},
		{ID: "a", Name: "A", Symptoms: []Symptom{{ID: "a2", Label: "A two", Points: 2}, {ID: "a1", Label: "A one", Points: 0}}},
	})
	require.NoError(t, err)

	cats := cat.Categories()
	require.Len(t, cats, 2)
	assert.Equal(t, "b", cats[0].ID)
	assert.Equal(t, "a", cats[1].ID)
	assert.Equal(t, "a2", cats[1].Symptoms[0].ID)
	assert.Equal(t, "a1", cats[1].Symptoms[1].ID)
}

func TestCatalog_CategoriesReturnsCopy(t *testing.T) {
	cat, err := NewCatalog("t", []Category{
		{ID: "a", Name: "A", Symptoms: []Symptom{{ID: "a1", Label: "A one", Points: 1}}},
	})
	require.NoError(t, err)

	cats := cat.Categories()
	cats[0].Symptoms[0].Points = 99

	s, ok := cat.Lookup("a1")
	require.True(t, ok)
	assert.Equal(t, 1, s.Points)
	assert.Equal(t, 1, cat.Categories()[0].Symptoms[0].Points)
}

func TestNewCatalog_Validation(t *testing.T) {
	tests := []struct {
		name string
		cats []Category
	}{
		{"empty category id", []Category{{ID: "", Symptoms: []Symptom{{ID: "x", Points: 1}}}}},
		{"empty symptom id", []Category{{ID: "c", Symptoms: []Symptom{{ID: "", Points: 1}}}}},
		{"negative points", []Category{{ID: "c", Symptoms: []Symptom{{ID: "x", Points: -1}}}}},
		{"duplicate across categories", []Category{
			{ID: "c1", Symptoms: []Symptom{{ID: "x", Points: 1}}},
			{ID: "c2", Symptoms: []Symptom{{ID: "x", Points: 2}}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog("t", tt.cats)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidCatalog))
		})
	}
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("categories: ["))
	assert.Error(t, err)

	_, err = Parse([]byte("version: x\ncategories: []\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidCatalog))
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	doc := `version: "test-1"
categories:
  - id: custom
    name: Custom
    symptoms:
      - id: wobbly
        label: Wobbly on feet
        points: 4
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cat, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "test-1", cat.Version)

	s, ok := cat.Lookup("wobbly")
	require.True(t, ok)
	assert.Equal(t, "Wobbly on feet", s.Label)
	assert.Equal(t, 4, s.Points)
}

func TestLoad_EmptyPathUsesDefault(t *testing.T) {
	cat, err := Load("")
	require.NoError(t, err)
	_, ok := cat.Lookup("fall")
	assert.True(t, ok)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

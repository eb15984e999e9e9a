package symptom

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalogYAML []byte

// ErrInvalidCatalog is returned when a catalog document fails validation.
var ErrInvalidCatalog = errors.New("invalid symptom catalog")

// Catalog is an immutable, ordered set of symptom categories indexed by
// symptom id. It is safe for concurrent use once constructed.
type Catalog struct {
	Version    string
	categories []Category
	byID       map[string]Symptom
}

type catalogFile struct {
	Version    string     `yaml:"version"`
	Categories []Category `yaml:"categories"`
}

// NewCatalog validates the categories and builds the id index. Symptom ids
// must be non-empty and unique across all categories, and points must not
// be negative.
func NewCatalog(version string, categories []Category) (*Catalog, error) {
	byID := make(map[string]Symptom)
	cats := make([]Category, 0, len(categories))
	for _, cat := range categories {
		if cat.ID == "" {
			return nil, fmt.Errorf("%w: category with empty id", ErrInvalidCatalog)
		}
		syms := make([]Symptom, len(cat.Symptoms))
		copy(syms, cat.Symptoms)
		for _, s := range syms {
			if s.ID == "" {
				return nil, fmt.Errorf("%w: category %q has a symptom with empty id", ErrInvalidCatalog, cat.ID)
			}
			if s.Points < 0 {
				return nil, fmt.Errorf("%w: symptom %q has negative points", ErrInvalidCatalog, s.ID)
			}
			if _, dup := byID[s.ID]; dup {
				return nil, fmt.Errorf("%w: duplicate symptom id %q", ErrInvalidCatalog, s.ID)
			}
			byID[s.ID] = s
		}
		cats = append(cats, Category{ID: cat.ID, Name: cat.Name, Symptoms: syms})
	}
	return &Catalog{Version: version, categories: cats, byID: byID}, nil
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode symptom catalog: %w", err)
	}
	if len(f.Categories) == 0 {
		return nil, fmt.Errorf("%w: no categories", ErrInvalidCatalog)
	}
	return NewCatalog(f.Version, f.Categories)
}

// Load reads a catalog from path. An empty path yields the built-in catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read symptom catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalogYAML)
}

// Lookup implements Lookuper.
func (c *Catalog) Lookup(id string) (Symptom, bool) {
	s, ok := c.byID[id]
	return s, ok
}

// Categories returns the categories in presentation order. The returned
// slice is a copy; callers may not mutate the catalog through it.
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	for i, cat := range c.categories {
		syms := make([]Symptom, len(cat.Symptoms))
		copy(syms, cat.Symptoms)
		out[i] = Category{ID: cat.ID, Name: cat.Name, Symptoms: syms}
	}
	return out
}

// Len returns the number of symptoms in the catalog.
func (c *Catalog) Len() int {
	return len(c.byID)
}

// Package habits holds the static habit library and picks the daily plan for a body type.
package habits

import (
	_ "embed"
	"fmt"

	"github.com/joshdurbin/bodycode-mcp/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// DefaultFocusMessage is used when no focus line exists for a category and type
const DefaultFocusMessage = "Focus on building sustainable habits"

// Category is one of the five habit categories
type Category string

const (
	CategorySleep     Category = "sleep"
	CategoryNutrition Category = "nutrition"
	CategoryMovement  Category = "movement"
	CategoryRecovery  Category = "recovery"
	CategoryEmotional Category = "emotional"
)

// Categories is the rotation order for the daily main focus
var Categories = []Category{
	CategorySleep,
	CategoryNutrition,
	CategoryMovement,
	CategoryRecovery,
	CategoryEmotional,
}

// Habit is a catalog entry
type Habit struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Target      string `json:"target,omitempty" yaml:"target"`
	Duration    string `json:"duration,omitempty" yaml:"duration"`
	Why         string `json:"why" yaml:"why"`
	Action      string `json:"action" yaml:"action"`
}

// Entry is a habit together with where it lives in the catalog
type Entry struct {
	Habit
	Category Category        `json:"category"`
	BodyType domain.BodyType `json:"body_type"`
}

type catalogFile struct {
	Types map[domain.BodyType]map[Category][]Habit `yaml:"types"`
	Focus map[Category]map[domain.BodyType]string  `yaml:"focus"`
}

// Catalog is the loaded habit library
type Catalog struct {
	types map[domain.BodyType]map[Category][]Habit
	focus map[Category]map[domain.BodyType]string
	byID  map[string]Entry
}

// LoadCatalog parses and validates the embedded habit library
func LoadCatalog() (*Catalog, error) {
	return parseCatalog(catalogYAML)
}

// MustLoadCatalog panics if the embedded library is broken
func MustLoadCatalog() *Catalog {
	c, err := LoadCatalog()
	if err != nil {
		panic(err)
	}
	return c
}

func parseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing habit catalog: %w", err)
	}

	known := make(map[Category]bool, len(Categories))
	for _, c := range Categories {
		known[c] = true
	}

	byID := make(map[string]Entry)
	for _, t := range domain.CanonicalTypes {
		cats, ok := f.Types[t]
		if !ok {
			return nil, fmt.Errorf("habit catalog missing body type %q", t)
		}
		for cat, list := range cats {
			if !known[cat] {
				return nil, fmt.Errorf("habit catalog %s has unknown category %q", t, cat)
			}
			for _, h := range list {
				if h.ID == "" {
					return nil, fmt.Errorf("habit catalog %s/%s has an entry without id", t, cat)
				}
				if _, dup := byID[h.ID]; dup {
					return nil, fmt.Errorf("duplicate habit id %q", h.ID)
				}
				byID[h.ID] = Entry{Habit: h, Category: cat, BodyType: t}
			}
		}
	}

	return &Catalog{types: f.Types, focus: f.Focus, byID: byID}, nil
}

// Pool returns the habits for a type and category. Types without a library
// use the default type's.
func (c *Catalog) Pool(t domain.BodyType, cat Category) []Habit {
	lib, ok := c.types[t]
	if !ok {
		lib = c.types[domain.DefaultType]
	}
	return lib[cat]
}

// FocusMessage returns the one-line guidance for a category and type
func (c *Catalog) FocusMessage(cat Category, t domain.BodyType) string {
	if msg, ok := c.focus[cat][t]; ok && msg != "" {
		return msg
	}
	return DefaultFocusMessage
}

// LookupHabitByID finds a habit anywhere in the catalog
func (c *Catalog) LookupHabitByID(id string) (Entry, bool) {
	e, ok := c.byID[id]
	return e, ok
}

// Len is the number of habits in the catalog
func (c *Catalog) Len() int {
	return len(c.byID)
}

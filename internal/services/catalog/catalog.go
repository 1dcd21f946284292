package catalog

import (
	"fmt"
	"os"

	"SmartCVD/internal/domain/models"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

// Catalog is the immutable reference table of interventions and lipid therapies.
// It is built once at start and shared by pointer; accessors return copies.
type Catalog struct {
	interventions []models.Intervention
	therapies     []models.LipidTherapy
	intIndex      map[string]int
	therapyIndex  map[string]int
	ezetimibe     int
}

// file is the YAML layout accepted by Load.
type file struct {
	Interventions []models.Intervention `yaml:"interventions"`
	Therapies     []models.LipidTherapy `yaml:"therapies"`
}

// New validates the entries and builds a catalog over copies of them.
func New(interventions []models.Intervention, therapies []models.LipidTherapy) (*Catalog, error) {
	c := &Catalog{
		interventions: append([]models.Intervention(nil), interventions...),
		therapies:     append([]models.LipidTherapy(nil), therapies...),
		intIndex:      make(map[string]int, len(interventions)),
		therapyIndex:  make(map[string]int, len(therapies)),
		ezetimibe:     -1,
	}
	for i := range c.interventions {
		iv := &c.interventions[i]
		if err := defaults.Set(iv); err != nil {
			return nil, fmt.Errorf("intervention defaults: %w", err)
		}
		if err := models.Validate(iv); err != nil {
			return nil, fmt.Errorf("intervention %q: %w", iv.ID, err)
		}
		if _, dup := c.intIndex[iv.ID]; dup {
			return nil, fmt.Errorf("duplicate intervention id %q", iv.ID)
		}
		c.intIndex[iv.ID] = i
	}
	for i := range c.therapies {
		th := &c.therapies[i]
		if err := defaults.Set(th); err != nil {
			return nil, fmt.Errorf("therapy defaults: %w", err)
		}
		if err := models.Validate(th); err != nil {
			return nil, fmt.Errorf("therapy %q: %w", th.ID, err)
		}
		if th.ID == models.StatinNone {
			return nil, fmt.Errorf("therapy id %q is reserved", th.ID)
		}
		if _, dup := c.therapyIndex[th.ID]; dup {
			return nil, fmt.Errorf("duplicate therapy id %q", th.ID)
		}
		if th.Kind == models.TherapyEzetimibe {
			if c.ezetimibe >= 0 {
				return nil, fmt.Errorf("more than one ezetimibe entry")
			}
			c.ezetimibe = i
		}
		c.therapyIndex[th.ID] = i
	}
	if c.ezetimibe < 0 {
		return nil, fmt.Errorf("catalog needs an ezetimibe entry")
	}
	return c, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(defaultInterventions(), defaultTherapies())
	if err != nil {
		panic(fmt.Sprintf("built-in catalog: %v", err))
	}
	return c
}

// Load reads a YAML catalog file. Sections left out fall back to the built-in entries.
func Load(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(f.Interventions) == 0 {
		f.Interventions = defaultInterventions()
	}
	if len(f.Therapies) == 0 {
		f.Therapies = defaultTherapies()
	}
	return New(f.Interventions, f.Therapies)
}

// Intervention looks up an intervention by id.
func (c *Catalog) Intervention(id string) (models.Intervention, bool) {
	i, ok := c.intIndex[id]
	if !ok {
		return models.Intervention{}, false
	}
	return c.interventions[i], true
}

// Therapy looks up a lipid therapy by id.
func (c *Catalog) Therapy(id string) (models.LipidTherapy, bool) {
	i, ok := c.therapyIndex[id]
	if !ok {
		return models.LipidTherapy{}, false
	}
	return c.therapies[i], true
}

// Ezetimibe returns the single ezetimibe entry.
func (c *Catalog) Ezetimibe() models.LipidTherapy {
	return c.therapies[c.ezetimibe]
}

// Interventions lists interventions in catalog order.
func (c *Catalog) Interventions() []models.Intervention {
	return append([]models.Intervention(nil), c.interventions...)
}

// Therapies lists lipid therapies in catalog order, optionally filtered by kind.
func (c *Catalog) Therapies(kinds ...models.TherapyKind) []models.LipidTherapy {
	out := make([]models.LipidTherapy, 0, len(c.therapies))
	for _, th := range c.therapies {
		if len(kinds) == 0 || hasKind(kinds, th.Kind) {
			out = append(out, th)
		}
	}
	return out
}

// View returns a copy suitable for serialization.
func (c *Catalog) View() models.CatalogView {
	return models.CatalogView{Interventions: c.Interventions(), Therapies: c.Therapies()}
}

func hasKind(kinds []models.TherapyKind, k models.TherapyKind) bool {
	for _, x := range kinds {
		if x == k {
			return true
		}
	}
	return false
}

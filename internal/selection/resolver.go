package selection

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/GTDGit/drapery_api/internal/models"
)

// Tab is one selection tab shown for a treatment.
type Tab struct {
	Key   models.SelectionCategory `yaml:"key" json:"key"`
	Label string                   `yaml:"label" json:"label"`
}

// TreatmentRule describes the tabs and accepted subcategories of one treatment.
type TreatmentRule struct {
	Tabs                  []Tab    `yaml:"tabs" json:"tabs"`
	FabricSubcategories   []string `yaml:"fabric_subcategories" json:"fabricSubcategories"`
	MaterialSubcategories []string `yaml:"material_subcategories" json:"materialSubcategories"`
}

// Resolver maps treatment categories to tabs and subcategories.
// It is immutable once built and safe for concurrent use.
type Resolver struct {
	rules map[models.TreatmentCategory]TreatmentRule
}

var fallbackTabs = []Tab{{Key: models.SelectionFabric, Label: "Fabric"}}

func defaultRules() map[models.TreatmentCategory]TreatmentRule {
	fabric := Tab{Key: models.SelectionFabric, Label: "Fabric"}
	material := Tab{Key: models.SelectionMaterial, Label: "Material"}
	hardware := Tab{Key: models.SelectionHardware, Label: "Hardware"}

	return map[models.TreatmentCategory]TreatmentRule{
		models.TreatmentCurtains: {
			Tabs:                []Tab{fabric, hardware},
			FabricSubcategories: []string{"curtain_fabric", "lining_fabric", "sheer_fabric"},
		},
		models.TreatmentRomanBlinds: {
			Tabs:                []Tab{fabric, hardware},
			FabricSubcategories: []string{"roman_fabric", "curtain_fabric", "lining_fabric"},
		},
		models.TreatmentRollerBlinds: {
			Tabs:                []Tab{fabric, hardware},
			FabricSubcategories: []string{"roller_fabric", "blockout_fabric", "sunscreen_fabric"},
		},
		models.TreatmentVenetianBlinds: {
			Tabs:                  []Tab{material, hardware},
			MaterialSubcategories: []string{"venetian_slats", "aluminium_slats", "timber_slats"},
		},
		models.TreatmentVerticalBlinds: {
			Tabs:                  []Tab{{Key: models.SelectionBoth, Label: "Vanes"}, hardware},
			FabricSubcategories:   []string{"vertical_fabric"},
			MaterialSubcategories: []string{"vertical_slats", "vertical_vanes"},
		},
		models.TreatmentCellularBlinds: {
			Tabs:                []Tab{fabric},
			FabricSubcategories: []string{"cellular_fabric"},
		},
		models.TreatmentPanelGlide: {
			Tabs:                []Tab{fabric, hardware},
			FabricSubcategories: []string{"panel_glide_fabric", "panel_fabric"},
		},
		models.TreatmentShutters: {
			Tabs:                  []Tab{material},
			MaterialSubcategories: []string{"shutter_panels", "shutter_material"},
		},
		models.TreatmentAwnings: {
			Tabs:                []Tab{fabric, hardware},
			FabricSubcategories: []string{"awning_fabric"},
		},
		models.TreatmentWallpaper: {
			Tabs:                  []Tab{material},
			MaterialSubcategories: []string{"wallcovering", "wallpaper"},
		},
	}
}

// DefaultResolver returns the built-in treatment table.
func DefaultResolver() *Resolver {
	return &Resolver{rules: defaultRules()}
}

// NewResolver validates rules and builds a Resolver from them. Every rule
// needs at least one tab and only known tab keys.
func NewResolver(rules map[models.TreatmentCategory]TreatmentRule) (*Resolver, error) {
	for tc, rule := range rules {
		if len(rule.Tabs) == 0 {
			return nil, fmt.Errorf("treatment %q: %w", tc, ErrNoTabs)
		}
		for _, tab := range rule.Tabs {
			if !tab.Key.Valid() {
				return nil, fmt.Errorf("treatment %q tab %q: %w", tc, tab.Key, ErrInvalidCategory)
			}
		}
	}
	return &Resolver{rules: rules}, nil
}

// LoadResolver reads a YAML treatment file and layers it over the defaults.
// Entries in the file replace the built-in rule of the same treatment.
func LoadResolver(path string) (*Resolver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read treatment catalog: %w", err)
	}

	var file struct {
		Treatments map[models.TreatmentCategory]TreatmentRule `yaml:"treatments"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse treatment catalog: %w", err)
	}

	rules := defaultRules()
	for tc, rule := range file.Treatments {
		rules[tc] = rule
	}
	return NewResolver(rules)
}

// Known reports whether the treatment has its own rule.
func (r *Resolver) Known(tc models.TreatmentCategory) bool {
	_, ok := r.rules[tc]
	return ok
}

// Treatments lists the treatments with a rule, sorted by key.
func (r *Resolver) Treatments() []models.TreatmentCategory {
	out := make([]models.TreatmentCategory, 0, len(r.rules))
	for tc := range r.rules {
		out = append(out, tc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Tabs returns the ordered tabs for tc. Unknown treatments get a single fabric tab.
func (r *Resolver) Tabs(tc models.TreatmentCategory) []Tab {
	rule, ok := r.rules[tc]
	if !ok {
		return append([]Tab(nil), fallbackTabs...)
	}
	return append([]Tab(nil), rule.Tabs...)
}

// DefaultTab is the first tab of tc.
func (r *Resolver) DefaultTab(tc models.TreatmentCategory) models.SelectionCategory {
	return r.Tabs(tc)[0].Key
}

// HasTab reports whether tab is offered for tc.
func (r *Resolver) HasTab(tc models.TreatmentCategory, tab models.SelectionCategory) bool {
	for _, t := range r.Tabs(tc) {
		if t.Key == tab {
			return true
		}
	}
	return false
}

// FabricSubcategories lists the fabric subcategories sent to the remote source.
func (r *Resolver) FabricSubcategories(tc models.TreatmentCategory) []string {
	return append([]string(nil), r.rules[tc].FabricSubcategories...)
}

// MaterialSubcategories lists the accepted subcategories for material-typed items.
func (r *Resolver) MaterialSubcategories(tc models.TreatmentCategory) []string {
	return append([]string(nil), r.rules[tc].MaterialSubcategories...)
}

// Subcategories returns the union of subcategories relevant to tab.
func (r *Resolver) Subcategories(tc models.TreatmentCategory, tab models.SelectionCategory) []string {
	var out []string
	for _, c := range Constituents(tab) {
		switch c {
		case models.SelectionFabric:
			out = append(out, r.FabricSubcategories(tc)...)
		case models.SelectionMaterial:
			out = append(out, r.MaterialSubcategories(tc)...)
		}
	}
	return out
}

// Constituents expands a composite category into its slots. Simple
// categories expand to themselves.
func Constituents(c models.SelectionCategory) []models.SelectionCategory {
	if c == models.SelectionBoth {
		return []models.SelectionCategory{models.SelectionFabric, models.SelectionMaterial}
	}
	return []models.SelectionCategory{c}
}

// SlotFor returns the slot an item occupies when picked on tab. Items picked
// on the composite tab go to the fabric or material slot by their own category.
func SlotFor(tab models.SelectionCategory, item models.CatalogItem) models.SelectionCategory {
	if tab != models.SelectionBoth {
		return tab
	}
	if _, ok := item.Variant().(models.MaterialItem); ok {
		return models.SelectionMaterial
	}
	return models.SelectionFabric
}

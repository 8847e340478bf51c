package selection

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/drapery_api/internal/models"
)

func tabKeys(tabs []Tab) []models.SelectionCategory {
	out := make([]models.SelectionCategory, 0, len(tabs))
	for _, t := range tabs {
		out = append(out, t.Key)
	}
	return out
}

func TestDefaultResolver_Tabs(t *testing.T) {
	r := DefaultResolver()

	tests := []struct {
		treatment models.TreatmentCategory
		want      []models.SelectionCategory
	}{
		{models.TreatmentCurtains, []models.SelectionCategory{models.SelectionFabric, models.SelectionHardware}},
		{models.TreatmentVenetianBlinds, []models.SelectionCategory{models.SelectionMaterial, models.SelectionHardware}},
		{models.TreatmentVerticalBlinds, []models.SelectionCategory{models.SelectionBoth, models.SelectionHardware}},
		{models.TreatmentShutters, []models.SelectionCategory{models.SelectionMaterial}},
		{"macrame", []models.SelectionCategory{models.SelectionFabric}},
	}
	for _, tt := range tests {
		t.Run(string(tt.treatment), func(t *testing.T) {
			got := tabKeys(r.Tabs(tt.treatment))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Tabs(%s) mismatch (-want +got):\n%s", tt.treatment, diff)
			}
			assert.Equal(t, tt.want[0], r.DefaultTab(tt.treatment))
		})
	}
}

func TestResolver_UnknownTreatment(t *testing.T) {
	r := DefaultResolver()
	assert.False(t, r.Known("macrame"))
	assert.True(t, r.HasTab("macrame", models.SelectionFabric))
	assert.False(t, r.HasTab("macrame", models.SelectionHardware))
	assert.Empty(t, r.Subcategories("macrame", models.SelectionFabric))
}

func TestResolver_Subcategories(t *testing.T) {
	r := DefaultResolver()

	got := r.Subcategories(models.TreatmentVerticalBlinds, models.SelectionBoth)
	want := []string{"vertical_fabric", "vertical_slats", "vertical_vanes"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Subcategories mismatch (-want +got):\n%s", diff)
	}

	assert.Empty(t, r.Subcategories(models.TreatmentCurtains, models.SelectionHardware))

	// Callers get copies.
	sub := r.FabricSubcategories(models.TreatmentCurtains)
	sub[0] = "changed"
	assert.NotEqual(t, "changed", r.FabricSubcategories(models.TreatmentCurtains)[0])
}

func TestResolver_Treatments(t *testing.T) {
	got := DefaultResolver().Treatments()
	require.NotEmpty(t, got)
	assert.Contains(t, got, models.TreatmentCurtains)
	for i := 1; i < len(got); i++ {
		assert.Less(t, string(got[i-1]), string(got[i]))
	}
}

func TestConstituentsAndSlotFor(t *testing.T) {
	assert.Equal(t, []models.SelectionCategory{models.SelectionFabric, models.SelectionMaterial}, Constituents(models.SelectionBoth))
	assert.Equal(t, []models.SelectionCategory{models.SelectionHardware}, Constituents(models.SelectionHardware))

	assert.Equal(t, models.SelectionMaterial, SlotFor(models.SelectionBoth, material("m1", "Vane", "vertical_vanes")))
	assert.Equal(t, models.SelectionFabric, SlotFor(models.SelectionBoth, fabric("f1", "Vane fabric", "vertical_fabric")))
	assert.Equal(t, models.SelectionHardware, SlotFor(models.SelectionHardware, fabric("f1", "x", "y")))
}

func writeRules(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "treatments.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadResolver(t *testing.T) {
	path := writeRules(t, `
treatments:
  curtains:
    tabs:
      - key: hardware
        label: Tracks
  sheer_panels:
    tabs:
      - key: fabric
        label: Sheer
    fabric_subcategories: [sheer_fabric]
`)
	r, err := LoadResolver(path)
	require.NoError(t, err)

	assert.Equal(t, []Tab{{Key: models.SelectionHardware, Label: "Tracks"}}, r.Tabs(models.TreatmentCurtains))
	assert.True(t, r.Known("sheer_panels"))
	assert.Equal(t, []string{"sheer_fabric"}, r.FabricSubcategories("sheer_panels"))
	// Untouched defaults survive.
	assert.Equal(t, models.SelectionBoth, r.DefaultTab(models.TreatmentVerticalBlinds))
}

func TestLoadResolver_Invalid(t *testing.T) {
	t.Run("no tabs", func(t *testing.T) {
		_, err := LoadResolver(writeRules(t, "treatments:\n  curtains:\n    tabs: []\n"))
		assert.ErrorIs(t, err, ErrNoTabs)
	})
	t.Run("unknown tab key", func(t *testing.T) {
		_, err := LoadResolver(writeRules(t, "treatments:\n  curtains:\n    tabs:\n      - key: trims\n"))
		assert.ErrorIs(t, err, ErrInvalidCategory)
	})
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadResolver(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}

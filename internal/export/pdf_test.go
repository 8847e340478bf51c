package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/drapery_api/internal/models"
)

func TestRenderPDF(t *testing.T) {
	out, err := RenderPDF(Sheet{
		Treatment:    models.TreatmentCurtains,
		Measurements: models.Measurements{Width: 240, Height: 210, Unit: models.UnitCM},
		Lines: []Line{
			{Category: models.SelectionFabric, Item: models.CatalogItem{Name: "Linen", Supplier: "Acme"}, Cost: decimal.RequireFromString("89.25")},
			{Category: models.SelectionHardware, Item: models.CatalogItem{Name: "Track"}, Cost: decimal.RequireFromString("120")},
		},
		PreparedBy:  "sam@example.com",
		GeneratedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestRenderPDFEmpty(t *testing.T) {
	_, err := RenderPDF(Sheet{})
	assert.ErrorIs(t, err, ErrEmptySheet)
}

func TestTruncate(t *testing.T) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 10)

	assert.Equal(t, "Linen", truncate(pdf, "Linen", 50))

	long := strings.Repeat("Blockout ", 20)
	got := truncate(pdf, long, 30)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, pdf.GetStringWidth(got), 30.0)
}

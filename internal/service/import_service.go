package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/drapery_api/internal/importer"
	"github.com/GTDGit/drapery_api/internal/models"
	"github.com/GTDGit/drapery_api/internal/utils"
)

// ItemWriter persists imported items.
type ItemWriter interface {
	CreateBatch(ctx context.Context, items []models.CatalogItem) (int, error)
}

// VendorResolver finds or creates a vendor by name.
type VendorResolver interface {
	EnsureByName(ctx context.Context, name string) (*models.Vendor, error)
}

// ImportService loads vendor price lists into the catalog.
type ImportService struct {
	items   ItemWriter
	vendors VendorResolver
	catalog *CatalogService
}

// NewImportService creates a new ImportService. catalog may be nil.
func NewImportService(items ItemWriter, vendors VendorResolver, catalog *CatalogService) *ImportService {
	return &ImportService{items: items, vendors: vendors, catalog: catalog}
}

// Import parses the file and stores its rows. A file with any rejected row
// is not stored at all; the result lists what was wrong.
func (s *ImportService) Import(ctx context.Context, filename string, r io.Reader) (importer.ImportResult, error) {
	res := importer.Import(filename, r)
	if res.HasErrors() {
		log.Warn().Str("file", filename).Int("errors", len(res.Errors)).Msg("Import rejected")
		return res, utils.ErrInvalidImport
	}

	vendorIDs := make(map[string]string)
	for i := range res.Items {
		supplier := strings.TrimSpace(res.Items[i].Supplier)
		if supplier == "" {
			continue
		}
		key := strings.ToLower(supplier)
		id, ok := vendorIDs[key]
		if !ok {
			v, err := s.vendors.EnsureByName(ctx, supplier)
			if err != nil {
				return res, fmt.Errorf("resolve vendor %q: %w", supplier, err)
			}
			id = v.ID
			vendorIDs[key] = id
		}
		res.Items[i].VendorID = &id
	}

	n, err := s.items.CreateBatch(ctx, res.Items)
	if err != nil {
		return res, err
	}
	res.Imported = n

	if s.catalog != nil {
		s.catalog.InvalidateInventory(ctx)
	}
	log.Info().Str("file", filename).Int("imported", n).Int("vendors", len(vendorIDs)).Msg("Catalog import complete")
	return res, nil
}

package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/GTDGit/drapery_api/internal/models"
	"github.com/GTDGit/drapery_api/internal/repository"
)

// FilterOptions are the values offered by the filter pickers.
type FilterOptions struct {
	Vendors     []models.Vendor     `json:"vendors"`
	Collections []models.Collection `json:"collections"`
	Tags        []string            `json:"tags"`
	PriceGroups []string            `json:"priceGroups"`
}

// FilterOptionsService loads picker values for the filter bar.
type FilterOptionsService struct {
	vendors *repository.VendorRepository
	catalog *repository.CatalogRepository
}

// NewFilterOptionsService creates a new FilterOptionsService.
func NewFilterOptionsService(vendors *repository.VendorRepository, catalog *repository.CatalogRepository) *FilterOptionsService {
	return &FilterOptionsService{vendors: vendors, catalog: catalog}
}

// Get loads all picker values concurrently. Collections are limited to
// vendorID when it is set.
func (s *FilterOptionsService) Get(ctx context.Context, vendorID string) (*FilterOptions, error) {
	var out FilterOptions
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		out.Vendors, err = s.vendors.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.Collections, err = s.vendors.ListCollections(gctx, vendorID)
		return err
	})
	g.Go(func() (err error) {
		out.Tags, err = s.catalog.GetDistinctTags(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.PriceGroups, err = s.catalog.GetDistinctPriceGroups(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListVendors returns active vendors.
func (s *FilterOptionsService) ListVendors(ctx context.Context) ([]models.Vendor, error) {
	return s.vendors.List(ctx)
}

// ListCollections returns collections, optionally of one vendor.
func (s *FilterOptionsService) ListCollections(ctx context.Context, vendorID string) ([]models.Collection, error) {
	return s.vendors.ListCollections(ctx, vendorID)
}

package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/GTDGit/drapery_api/internal/cache"
	"github.com/GTDGit/drapery_api/internal/models"
	"github.com/GTDGit/drapery_api/internal/repository"
	"github.com/GTDGit/drapery_api/internal/selection"
	"github.com/GTDGit/drapery_api/internal/utils"
)

// CatalogStore is the catalog persistence used by CatalogService.
type CatalogStore interface {
	ListPaged(ctx context.Context, filter *repository.CatalogFilter) (*repository.CatalogPage, error)
	GetAll(ctx context.Context) ([]models.CatalogItem, error)
	GetByID(ctx context.Context, id string) (*models.CatalogItem, error)
}

// InventoryCache stores the full inventory between fetches. A nil cache
// means every inventory request reads the store.
type InventoryCache interface {
	Get(ctx context.Context) (*cache.InventorySnapshot, error)
	Set(ctx context.Context, items []models.CatalogItem) error
	Invalidate(ctx context.Context) error
}

// CatalogService serves catalog pages and the full inventory to selection
// panels. It satisfies selection.CatalogSource.
type CatalogService struct {
	store    CatalogStore
	inv      InventoryCache
	pageSize int
	group    singleflight.Group
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(store CatalogStore, inv InventoryCache, pageSize int) *CatalogService {
	if pageSize <= 0 {
		pageSize = 50
	}
	return &CatalogService{store: store, inv: inv, pageSize: pageSize}
}

// FetchPage returns one page of the server-scoped catalog list.
func (s *CatalogService) FetchPage(ctx context.Context, q selection.CatalogQuery, page int) (selection.Page, error) {
	res, err := s.store.ListPaged(ctx, toCatalogFilter(q, page, s.pageSize))
	if err != nil {
		return selection.Page{}, err
	}
	return selection.Page{Items: res.Items, Page: res.Page, HasMore: res.HasMore()}, nil
}

// ListItems is the paged catalog browse used by the catalog API.
func (s *CatalogService) ListItems(ctx context.Context, q selection.CatalogQuery, page int) (*repository.CatalogPage, error) {
	return s.store.ListPaged(ctx, toCatalogFilter(q, page, s.pageSize))
}

func toCatalogFilter(q selection.CatalogQuery, page, defaultSize int) *repository.CatalogFilter {
	limit := q.PageSize
	if limit <= 0 {
		limit = defaultSize
	}
	cats := make([]string, 0, len(q.Categories))
	for _, c := range q.Categories {
		cats = append(cats, string(c))
	}
	return &repository.CatalogFilter{
		Categories:      cats,
		Subcategories:   q.Subcategories,
		Search:          q.Search,
		VendorID:        q.VendorID,
		ParentProductID: q.ParentProductID,
		TemplateID:      q.TemplateID,
		Page:            page,
		Limit:           limit,
	}
}

// FetchInventory returns the unfiltered inventory, from cache when warm.
// Concurrent misses share one store read.
func (s *CatalogService) FetchInventory(ctx context.Context) ([]models.CatalogItem, error) {
	if s.inv != nil {
		snap, err := s.inv.Get(ctx)
		if err == nil {
			return snap.Items, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			log.Warn().Err(err).Msg("inventory cache read failed, reading store")
		}
	}

	v, err, _ := s.group.Do("inventory", func() (interface{}, error) {
		return s.loadInventory(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.CatalogItem), nil
}

// WarmInventory reloads the inventory from the store into the cache.
func (s *CatalogService) WarmInventory(ctx context.Context) (int, error) {
	v, err, _ := s.group.Do("inventory", func() (interface{}, error) {
		return s.loadInventory(ctx)
	})
	if err != nil {
		return 0, err
	}
	return len(v.([]models.CatalogItem)), nil
}

// InvalidateInventory drops the cached inventory, e.g. after an import.
func (s *CatalogService) InvalidateInventory(ctx context.Context) {
	if s.inv == nil {
		return
	}
	if err := s.inv.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("inventory cache invalidation failed")
	}
}

func (s *CatalogService) loadInventory(ctx context.Context) ([]models.CatalogItem, error) {
	items, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if s.inv != nil {
		if err := s.inv.Set(ctx, items); err != nil {
			log.Warn().Err(err).Msg("inventory cache write failed")
		}
	}
	return items, nil
}

// GetItem returns a single catalog item.
func (s *CatalogService) GetItem(ctx context.Context, id string) (*models.CatalogItem, error) {
	item, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.ErrItemNotFound
	}
	return item, err
}

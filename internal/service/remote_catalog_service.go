package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/GTDGit/drapery_api/internal/models"
	"github.com/GTDGit/drapery_api/internal/selection"
	"github.com/GTDGit/drapery_api/internal/utils"
	"github.com/GTDGit/drapery_api/pkg/catalogapi"
)

// CatalogAPI is the hosted catalog used by RemoteCatalogService.
type CatalogAPI interface {
	ListItems(ctx context.Context, p catalogapi.ListParams) (*catalogapi.ItemsPage, error)
	GetItem(ctx context.Context, id string) (*models.CatalogItem, error)
	AllItems(ctx context.Context) ([]models.CatalogItem, error)
}

// RemoteCatalogService serves selection panels from a hosted catalog API
// instead of the local database. The full inventory is kept in memory for
// ttl between reads.
type RemoteCatalogService struct {
	api      CatalogAPI
	pageSize int
	ttl      time.Duration
	group    singleflight.Group

	mu       sync.RWMutex
	items    []models.CatalogItem
	loadedAt time.Time
	now      func() time.Time
}

// NewRemoteCatalogService creates a new RemoteCatalogService.
func NewRemoteCatalogService(api CatalogAPI, pageSize int, ttl time.Duration) *RemoteCatalogService {
	if pageSize <= 0 {
		pageSize = 50
	}
	return &RemoteCatalogService{api: api, pageSize: pageSize, ttl: ttl, now: time.Now}
}

// FetchPage returns one page of the server-scoped catalog list.
func (s *RemoteCatalogService) FetchPage(ctx context.Context, q selection.CatalogQuery, page int) (selection.Page, error) {
	f := toCatalogFilter(q, page, s.pageSize)
	res, err := s.api.ListItems(ctx, catalogapi.ListParams{
		Categories:      f.Categories,
		Subcategories:   f.Subcategories,
		Search:          f.Search,
		VendorID:        f.VendorID,
		ParentProductID: f.ParentProductID,
		TemplateID:      f.TemplateID,
		Page:            f.Page,
		Limit:           f.Limit,
	})
	if err != nil {
		return selection.Page{}, err
	}
	return selection.Page{Items: res.Items, Page: res.Page, HasMore: res.HasMore()}, nil
}

// FetchInventory returns the unfiltered inventory, reusing the last read
// while it is younger than ttl.
func (s *RemoteCatalogService) FetchInventory(ctx context.Context) ([]models.CatalogItem, error) {
	s.mu.RLock()
	fresh := s.items != nil && s.now().Sub(s.loadedAt) < s.ttl
	items := s.items
	s.mu.RUnlock()
	if fresh {
		return items, nil
	}

	v, err, _ := s.group.Do("inventory", func() (interface{}, error) {
		return s.loadInventory(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.CatalogItem), nil
}

// WarmInventory refreshes the in-memory inventory.
func (s *RemoteCatalogService) WarmInventory(ctx context.Context) (int, error) {
	v, err, _ := s.group.Do("inventory", func() (interface{}, error) {
		return s.loadInventory(ctx)
	})
	if err != nil {
		return 0, err
	}
	return len(v.([]models.CatalogItem)), nil
}

func (s *RemoteCatalogService) loadInventory(ctx context.Context) ([]models.CatalogItem, error) {
	start := s.now()
	items, err := s.api.AllItems(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.items = items
	s.loadedAt = s.now()
	s.mu.Unlock()
	log.Debug().Int("items", len(items)).Dur("took", s.now().Sub(start)).Msg("Remote inventory loaded")
	return items, nil
}

// GetItem returns a single catalog item.
func (s *RemoteCatalogService) GetItem(ctx context.Context, id string) (*models.CatalogItem, error) {
	item, err := s.api.GetItem(ctx, id)
	if errors.Is(err, catalogapi.ErrNotFound) {
		return nil, utils.ErrItemNotFound
	}
	return item, err
}

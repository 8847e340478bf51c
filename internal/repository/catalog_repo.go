package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/GTDGit/drapery_api/internal/models"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// CatalogRepository handles data access for catalog items.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository creates a new CatalogRepository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// CatalogFilter holds the server-side scoping of a catalog listing.
// Empty fields are ignored. When ParentProductID is set the category and
// subcategory scoping is skipped: the parent link is already exact.
type CatalogFilter struct {
	Categories      []string
	Subcategories   []string
	Search          string
	VendorID        string
	ParentProductID string
	TemplateID      string
	Page            int
	Limit           int
}

// CatalogPage contains paginated catalog results.
type CatalogPage struct {
	Items      []models.CatalogItem
	TotalItems int
	TotalPages int
	Page       int
	Limit      int
}

// HasMore reports whether pages remain after this one.
func (p *CatalogPage) HasMore() bool {
	return p.Page < p.TotalPages
}

const catalogColumns = `
	c.id, c.name, c.category, c.subcategory, c.vendor_id, c.supplier, c.collection_id,
	c.tags, c.selling_price, c.unit_price, c.price_per_unit, c.quantity, c.track_inventory,
	c.parent_product_id, c.image_url, c.color, c.unit, c.fabric_width, c.is_active,
	c.created_at, c.updated_at`

// buildCatalogWhere builds the WHERE clause and args for filter.
// Legacy rows (empty subcategory) stay in the result so the caller can
// surface them separately.
func buildCatalogWhere(filter *CatalogFilter) (string, []interface{}) {
	where := `WHERE c.is_active = true`
	args := []interface{}{}
	argIdx := 1

	if filter.ParentProductID != "" {
		where += fmt.Sprintf(" AND c.parent_product_id::text = $%d", argIdx)
		args = append(args, filter.ParentProductID)
		argIdx++
	} else {
		if len(filter.Categories) > 0 {
			where += fmt.Sprintf(" AND c.category = ANY($%d)", argIdx)
			args = append(args, pq.Array(filter.Categories))
			argIdx++
		}
		if len(filter.Subcategories) > 0 {
			where += fmt.Sprintf(" AND (lower(c.subcategory) = ANY($%d) OR btrim(c.subcategory) = '')", argIdx)
			subs := make([]string, 0, len(filter.Subcategories))
			for _, sub := range filter.Subcategories {
				subs = append(subs, strings.ToLower(strings.TrimSpace(sub)))
			}
			args = append(args, pq.Array(subs))
			argIdx++
		}
	}
	if filter.Search != "" {
		where += fmt.Sprintf(" AND (c.name ILIKE $%d OR c.supplier ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		argIdx++
	}
	if filter.VendorID != "" {
		where += fmt.Sprintf(" AND c.vendor_id::text = $%d", argIdx)
		args = append(args, filter.VendorID)
	}
	return where, args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes term match literally inside an ILIKE pattern.
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}

// ListPaged returns one page of active items matching filter, with the price
// group resolved through the template's pricing grid when TemplateID is set.
func (r *CatalogRepository) ListPaged(ctx context.Context, filter *CatalogFilter) (*CatalogPage, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 200 {
		filter.Limit = 200
	}
	offset := (filter.Page - 1) * filter.Limit

	where, args := buildCatalogWhere(filter)

	countQuery := `SELECT COUNT(1) FROM catalog_items c ` + where
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, err
	}

	priceGroup := "c.price_group"
	join := ""
	if filter.TemplateID != "" {
		join = fmt.Sprintf(`LEFT JOIN pricing_grid_items pg ON pg.item_id = c.id AND pg.template_id::text = $%d`, len(args)+1)
		priceGroup = "COALESCE(pg.price_group, c.price_group)"
		args = append(args, filter.TemplateID)
	}

	listQuery := fmt.Sprintf(`
		SELECT %s, %s AS price_group
		FROM catalog_items c
		%s
		%s
		ORDER BY c.name, c.id
		LIMIT $%d OFFSET $%d`,
		catalogColumns, priceGroup, join, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, offset)

	items := make([]models.CatalogItem, 0)
	if err := r.db.SelectContext(ctx, &items, listQuery, args...); err != nil {
		return nil, err
	}

	return &CatalogPage{
		Items:      items,
		TotalItems: total,
		TotalPages: (total + filter.Limit - 1) / filter.Limit,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

// GetAll returns every active item, unscoped. It feeds the full-inventory list.
func (r *CatalogRepository) GetAll(ctx context.Context) ([]models.CatalogItem, error) {
	q := `SELECT ` + catalogColumns + `, c.price_group FROM catalog_items c
		WHERE c.is_active = true
		ORDER BY c.category, c.name, c.id`

	items := make([]models.CatalogItem, 0)
	if err := r.db.SelectContext(ctx, &items, q); err != nil {
		return nil, err
	}
	return items, nil
}

// GetByID returns a single item by id.
func (r *CatalogRepository) GetByID(ctx context.Context, id string) (*models.CatalogItem, error) {
	q := `SELECT ` + catalogColumns + `, c.price_group FROM catalog_items c WHERE c.id::text = $1 LIMIT 1`

	var item models.CatalogItem
	if err := r.db.GetContext(ctx, &item, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

const insertCatalogItem = `
	INSERT INTO catalog_items (
		name, category, subcategory, vendor_id, supplier, collection_id, tags,
		selling_price, unit_price, price_per_unit, price_group, quantity, track_inventory,
		parent_product_id, image_url, color, unit, fabric_width, is_active
	) VALUES (
		:name, :category, :subcategory, :vendor_id, :supplier, :collection_id, :tags,
		:selling_price, :unit_price, :price_per_unit, :price_group, :quantity, :track_inventory,
		:parent_product_id, :image_url, :color, :unit, :fabric_width, :is_active
	)
	RETURNING id, created_at, updated_at`

// Create inserts a new item and fills its generated fields.
func (r *CatalogRepository) Create(ctx context.Context, item *models.CatalogItem) error {
	stmt, err := r.db.PrepareNamedContext(ctx, insertCatalogItem)
	if err != nil {
		return err
	}
	defer stmt.Close()
	return stmt.QueryRowxContext(ctx, item).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
}

// CreateBatch inserts items in one transaction. Either all rows land or none.
func (r *CatalogRepository) CreateBatch(ctx context.Context, items []models.CatalogItem) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareNamedContext(ctx, insertCatalogItem)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i := range items {
		if err := stmt.QueryRowxContext(ctx, &items[i]).Scan(&items[i].ID, &items[i].CreatedAt, &items[i].UpdatedAt); err != nil {
			return 0, fmt.Errorf("insert %q: %w", items[i].Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(items), nil
}

// GetDistinctTags returns every tag in use, for the tag filter picker.
func (r *CatalogRepository) GetDistinctTags(ctx context.Context) ([]string, error) {
	const q = `SELECT DISTINCT unnest(tags) AS tag FROM catalog_items WHERE is_active = true ORDER BY tag`
	tags := make([]string, 0)
	if err := r.db.SelectContext(ctx, &tags, q); err != nil {
		return nil, err
	}
	return tags, nil
}

// GetDistinctPriceGroups returns the price groups in use.
func (r *CatalogRepository) GetDistinctPriceGroups(ctx context.Context) ([]string, error) {
	const q = `SELECT DISTINCT price_group FROM catalog_items
		WHERE is_active = true AND price_group IS NOT NULL AND price_group != ''
		ORDER BY price_group`
	groups := make([]string, 0)
	if err := r.db.SelectContext(ctx, &groups, q); err != nil {
		return nil, err
	}
	return groups, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/drapery_api/internal/models"
)

// VendorRepository handles data access for vendors and collections.
type VendorRepository struct {
	db *sqlx.DB
}

// NewVendorRepository creates a new VendorRepository.
func NewVendorRepository(db *sqlx.DB) *VendorRepository {
	return &VendorRepository{db: db}
}

// List returns all active vendors ordered by name.
func (r *VendorRepository) List(ctx context.Context) ([]models.Vendor, error) {
	const q = `SELECT id, name, is_active, created_at FROM vendors WHERE is_active = true ORDER BY name`
	vendors := make([]models.Vendor, 0)
	if err := r.db.SelectContext(ctx, &vendors, q); err != nil {
		return nil, err
	}
	return vendors, nil
}

// GetByID returns a vendor by id.
func (r *VendorRepository) GetByID(ctx context.Context, id string) (*models.Vendor, error) {
	const q = `SELECT id, name, is_active, created_at FROM vendors WHERE id::text = $1`
	var v models.Vendor
	if err := r.db.GetContext(ctx, &v, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

// EnsureByName returns the vendor called name, creating it when missing.
func (r *VendorRepository) EnsureByName(ctx context.Context, name string) (*models.Vendor, error) {
	const q = `
		INSERT INTO vendors (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, is_active, created_at`
	var v models.Vendor
	if err := r.db.GetContext(ctx, &v, q, strings.TrimSpace(name)); err != nil {
		return nil, err
	}
	return &v, nil
}

// ListCollections returns collections, optionally restricted to one vendor.
func (r *VendorRepository) ListCollections(ctx context.Context, vendorID string) ([]models.Collection, error) {
	q := `SELECT id, vendor_id, name, created_at FROM collections`
	args := []interface{}{}
	if vendorID != "" {
		q += ` WHERE vendor_id::text = $1`
		args = append(args, vendorID)
	}
	q += ` ORDER BY name`

	collections := make([]models.Collection, 0)
	if err := r.db.SelectContext(ctx, &collections, q, args...); err != nil {
		return nil, err
	}
	return collections, nil
}

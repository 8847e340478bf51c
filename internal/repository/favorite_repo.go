package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"
)

// FavoriteRepository persists user favorites. It satisfies
// selection.FavoriteStore with the owner being the user id.
type FavoriteRepository struct {
	db *sqlx.DB
}

// NewFavoriteRepository creates a new FavoriteRepository.
func NewFavoriteRepository(db *sqlx.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// ListFavorites returns the item ids owner has starred.
func (r *FavoriteRepository) ListFavorites(ctx context.Context, owner string) ([]string, error) {
	userID, err := strconv.Atoi(owner)
	if err != nil {
		return nil, fmt.Errorf("invalid owner %q: %w", owner, err)
	}
	const q = `SELECT item_id FROM user_favorites WHERE user_id = $1 ORDER BY created_at DESC`
	ids := make([]string, 0)
	if err := r.db.SelectContext(ctx, &ids, q, userID); err != nil {
		return nil, err
	}
	return ids, nil
}

// ToggleFavorite removes the favorite when present, inserts it otherwise,
// and reports whether it is now a favorite.
func (r *FavoriteRepository) ToggleFavorite(ctx context.Context, owner, itemID string) (bool, error) {
	userID, err := strconv.Atoi(owner)
	if err != nil {
		return false, fmt.Errorf("invalid owner %q: %w", owner, err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM user_favorites WHERE user_id = $1 AND item_id = $2`, userID, itemID)
	if err != nil {
		return false, err
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	on := removed == 0
	if on {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_favorites (user_id, item_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			userID, itemID); err != nil {
			return false, err
		}
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return on, nil
}

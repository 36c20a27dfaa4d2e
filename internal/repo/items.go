package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Items provides access to catalog items.
type Items struct {
	DB DBTX
}

const itemColumns = `id, name, slug, category, cost_basis, markup_percent, stock, created_at, updated_at`

// List returns a page of items ordered by name, optionally filtered by category.
func (r Items) List(ctx context.Context, category string, limit, offset int) ([]Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items`
	args := []any{}
	if category != "" {
		query += ` WHERE category = $1`
		args = append(args, category)
	}
	query += fmt.Sprintf(` ORDER BY name LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Slug, &it.Category, &it.CostBasis, &it.MarkupPercent, &it.Stock, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Count returns the number of items matching the optional category filter.
func (r Items) Count(ctx context.Context, category string) (int64, error) {
	query := `SELECT count(*) FROM items`
	args := []any{}
	if category != "" {
		query += ` WHERE category = $1`
		args = append(args, category)
	}
	var total int64
	if err := r.DB.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return total, nil
}

// GetBySlug returns a single item by slug.
func (r Items) GetBySlug(ctx context.Context, slug string) (Item, error) {
	var it Item
	err := r.DB.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE slug = $1`, slug).
		Scan(&it.ID, &it.Name, &it.Slug, &it.Category, &it.CostBasis, &it.MarkupPercent, &it.Stock, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return Item{}, err
	}
	return it, nil
}

// GetByID returns a single item by identifier.
func (r Items) GetByID(ctx context.Context, id string) (Item, error) {
	var it Item
	err := r.DB.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id).
		Scan(&it.ID, &it.Name, &it.Slug, &it.Category, &it.CostBasis, &it.MarkupPercent, &it.Stock, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return Item{}, err
	}
	return it, nil
}

// GetByIDs resolves items keyed by identifier. Missing identifiers are simply
// absent from the returned map; callers decide how to treat them.
func (r Items) GetByIDs(ctx context.Context, ids []string) (map[string]Item, error) {
	if len(ids) == 0 {
		return map[string]Item{}, nil
	}
	rows, err := r.DB.Query(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("get items by ids: %w", err)
	}
	defer rows.Close()
	result := make(map[string]Item, len(ids))
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Slug, &it.Category, &it.CostBasis, &it.MarkupPercent, &it.Stock, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		result[it.ID] = it
	}
	return result, rows.Err()
}

// Create inserts a new item and returns it with generated fields populated.
func (r Items) Create(ctx context.Context, it Item) (Item, error) {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	err := r.DB.QueryRow(ctx, `
		INSERT INTO items (id, name, slug, category, cost_basis, markup_percent, stock)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		it.ID, it.Name, it.Slug, it.Category, it.CostBasis, it.MarkupPercent, it.Stock,
	).Scan(&it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return Item{}, fmt.Errorf("create item: %w", err)
	}
	return it, nil
}

// Update overwrites the mutable fields of an item.
func (r Items) Update(ctx context.Context, it Item) error {
	tag, err := r.DB.Exec(ctx, `
		UPDATE items
		SET name = $2, slug = $3, category = $4, cost_basis = $5, markup_percent = $6, stock = $7, updated_at = now()
		WHERE id = $1`,
		it.ID, it.Name, it.Slug, it.Category, it.CostBasis, it.MarkupPercent, it.Stock,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

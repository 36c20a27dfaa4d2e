package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Bundles provides access to bundles and their content lists.
type Bundles struct {
	DB DBTX
}

// List returns bundles with contents, ordered by name.
func (r Bundles) List(ctx context.Context, limit, offset int) ([]Bundle, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, name, slug, category, created_at
		FROM bundles ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list bundles: %w", err)
	}
	defer rows.Close()
	var bundles []Bundle
	for rows.Next() {
		var b Bundle
		if err := rows.Scan(&b.ID, &b.Name, &b.Slug, &b.Category, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan bundle: %w", err)
		}
		bundles = append(bundles, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range bundles {
		contents, err := r.contents(ctx, bundles[i].ID)
		if err != nil {
			return nil, err
		}
		bundles[i].Contents = contents
	}
	return bundles, nil
}

// Count returns the total number of bundles.
func (r Bundles) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.DB.QueryRow(ctx, `SELECT count(*) FROM bundles`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count bundles: %w", err)
	}
	return total, nil
}

// GetBySlug returns one bundle with its content list.
func (r Bundles) GetBySlug(ctx context.Context, slug string) (Bundle, error) {
	var b Bundle
	err := r.DB.QueryRow(ctx, `
		SELECT id, name, slug, category, created_at
		FROM bundles WHERE slug = $1`, slug).
		Scan(&b.ID, &b.Name, &b.Slug, &b.Category, &b.CreatedAt)
	if err != nil {
		return Bundle{}, err
	}
	contents, err := r.contents(ctx, b.ID)
	if err != nil {
		return Bundle{}, err
	}
	b.Contents = contents
	return b, nil
}

// GetByID returns one bundle with its content list.
func (r Bundles) GetByID(ctx context.Context, id string) (Bundle, error) {
	var b Bundle
	err := r.DB.QueryRow(ctx, `
		SELECT id, name, slug, category, created_at
		FROM bundles WHERE id = $1`, id).
		Scan(&b.ID, &b.Name, &b.Slug, &b.Category, &b.CreatedAt)
	if err != nil {
		return Bundle{}, err
	}
	contents, err := r.contents(ctx, b.ID)
	if err != nil {
		return Bundle{}, err
	}
	b.Contents = contents
	return b, nil
}

// Create inserts a bundle and its contents.
func (r Bundles) Create(ctx context.Context, b Bundle) (Bundle, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	err := r.DB.QueryRow(ctx, `
		INSERT INTO bundles (id, name, slug, category)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		b.ID, b.Name, b.Slug, b.Category,
	).Scan(&b.CreatedAt)
	if err != nil {
		return Bundle{}, fmt.Errorf("create bundle: %w", err)
	}
	for _, c := range b.Contents {
		if _, err := r.DB.Exec(ctx, `
			INSERT INTO bundle_contents (bundle_id, item_id, qty)
			VALUES ($1, $2, $3)`, b.ID, c.ItemID, c.Qty); err != nil {
			return Bundle{}, fmt.Errorf("create bundle content: %w", err)
		}
	}
	return b, nil
}

func (r Bundles) contents(ctx context.Context, bundleID string) ([]BundleContent, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT item_id, qty FROM bundle_contents WHERE bundle_id = $1`, bundleID)
	if err != nil {
		return nil, fmt.Errorf("list bundle contents: %w", err)
	}
	defer rows.Close()
	var contents []BundleContent
	for rows.Next() {
		var c BundleContent
		if err := rows.Scan(&c.ItemID, &c.Qty); err != nil {
			return nil, fmt.Errorf("scan bundle content: %w", err)
		}
		contents = append(contents, c)
	}
	return contents, rows.Err()
}

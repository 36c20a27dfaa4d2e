package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Extras provides access to fixed-price add-ons.
type Extras struct {
	DB DBTX
}

// List returns all extras ordered by name.
func (r Extras) List(ctx context.Context) ([]Extra, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, name, price FROM extras ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list extras: %w", err)
	}
	defer rows.Close()
	var extras []Extra
	for rows.Next() {
		var e Extra
		if err := rows.Scan(&e.ID, &e.Name, &e.Price); err != nil {
			return nil, fmt.Errorf("scan extra: %w", err)
		}
		extras = append(extras, e)
	}
	return extras, rows.Err()
}

// GetByIDs resolves extras keyed by identifier; missing ids are absent from
// the map.
func (r Extras) GetByIDs(ctx context.Context, ids []string) (map[string]Extra, error) {
	if len(ids) == 0 {
		return map[string]Extra{}, nil
	}
	rows, err := r.DB.Query(ctx, `SELECT id, name, price FROM extras WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("get extras by ids: %w", err)
	}
	defer rows.Close()
	result := make(map[string]Extra, len(ids))
	for rows.Next() {
		var e Extra
		if err := rows.Scan(&e.ID, &e.Name, &e.Price); err != nil {
			return nil, fmt.Errorf("scan extra: %w", err)
		}
		result[e.ID] = e
	}
	return result, rows.Err()
}

// Create inserts a new extra.
func (r Extras) Create(ctx context.Context, e Extra) (Extra, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if _, err := r.DB.Exec(ctx, `
		INSERT INTO extras (id, name, price) VALUES ($1, $2, $3)`,
		e.ID, e.Name, e.Price); err != nil {
		return Extra{}, fmt.Errorf("create extra: %w", err)
	}
	return e, nil
}

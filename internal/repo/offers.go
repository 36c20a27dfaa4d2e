package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Offers provides access to promotional offers.
type Offers struct {
	DB DBTX
}

const offerColumns = `id, name, kind, scope, target, percent, amount, buy_qty, get_qty, expires_at, active, created_at`

// ListActive returns offers flagged active, in creation order. Expiry is not
// filtered here: the selector treats expiry relative to its own "now" so that
// evaluation stays deterministic under test.
func (r Offers) ListActive(ctx context.Context) ([]Offer, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+offerColumns+` FROM offers WHERE active ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list active offers: %w", err)
	}
	defer rows.Close()
	return scanOffers(rows)
}

// List returns a page of offers in creation order.
func (r Offers) List(ctx context.Context, limit, offset int) ([]Offer, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+offerColumns+` FROM offers ORDER BY created_at LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	defer rows.Close()
	return scanOffers(rows)
}

// Count returns the total number of offers.
func (r Offers) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.DB.QueryRow(ctx, `SELECT count(*) FROM offers`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count offers: %w", err)
	}
	return total, nil
}

// GetByID returns a single offer.
func (r Offers) GetByID(ctx context.Context, id string) (Offer, error) {
	var o Offer
	err := r.DB.QueryRow(ctx, `SELECT `+offerColumns+` FROM offers WHERE id = $1`, id).
		Scan(&o.ID, &o.Name, &o.Kind, &o.Scope, &o.Target, &o.Percent, &o.Amount, &o.BuyQty, &o.GetQty, &o.ExpiresAt, &o.Active, &o.CreatedAt)
	if err != nil {
		return Offer{}, err
	}
	return o, nil
}

// Create inserts a new offer.
func (r Offers) Create(ctx context.Context, o Offer) (Offer, error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	err := r.DB.QueryRow(ctx, `
		INSERT INTO offers (id, name, kind, scope, target, percent, amount, buy_qty, get_qty, expires_at, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at`,
		o.ID, o.Name, o.Kind, o.Scope, o.Target, o.Percent, o.Amount, o.BuyQty, o.GetQty, o.ExpiresAt, o.Active,
	).Scan(&o.CreatedAt)
	if err != nil {
		return Offer{}, fmt.Errorf("create offer: %w", err)
	}
	return o, nil
}

// Update overwrites the mutable fields of an offer.
func (r Offers) Update(ctx context.Context, o Offer) error {
	tag, err := r.DB.Exec(ctx, `
		UPDATE offers
		SET name = $2, kind = $3, scope = $4, target = $5, percent = $6, amount = $7,
		    buy_qty = $8, get_qty = $9, expires_at = $10, active = $11
		WHERE id = $1`,
		o.ID, o.Name, o.Kind, o.Scope, o.Target, o.Percent, o.Amount, o.BuyQty, o.GetQty, o.ExpiresAt, o.Active,
	)
	if err != nil {
		return fmt.Errorf("update offer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes an offer.
func (r Offers) Delete(ctx context.Context, id string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM offers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete offer: %w", err)
	}
	return nil
}

// DeactivateExpired flags active offers past their expiry and returns the
// identifiers swept.
func (r Offers) DeactivateExpired(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := r.DB.Query(ctx, `
		UPDATE offers SET active = false
		WHERE active AND expires_at <= $1
		RETURNING id`, now)
	if err != nil {
		return nil, fmt.Errorf("deactivate expired offers: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan offer id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type offerRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanOffers(rows offerRows) ([]Offer, error) {
	var offers []Offer
	for rows.Next() {
		var o Offer
		if err := rows.Scan(&o.ID, &o.Name, &o.Kind, &o.Scope, &o.Target, &o.Percent, &o.Amount, &o.BuyQty, &o.GetQty, &o.ExpiresAt, &o.Active, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Orders provides access to persisted orders.
type Orders struct {
	DB DBTX
}

// Create inserts an order header.
func (r Orders) Create(ctx context.Context, o Order) (Order, error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	err := r.DB.QueryRow(ctx, `
		INSERT INTO orders (id, status, currency, subtotal, discount, total, applied_offer_id)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
		RETURNING created_at`,
		o.ID, o.Status, o.Currency, o.Subtotal, o.Discount, o.Total, o.AppliedOfferID,
	).Scan(&o.CreatedAt)
	if err != nil {
		return Order{}, fmt.Errorf("create order: %w", err)
	}
	return o, nil
}

// CreateLine inserts one order line.
func (r Orders) CreateLine(ctx context.Context, l OrderLine) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	_, err := r.DB.Exec(ctx, `
		INSERT INTO order_lines (id, order_id, product_id, name, category, qty, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		l.ID, l.OrderID, l.ProductID, l.Name, l.Category, l.Qty, l.UnitPrice, l.Subtotal,
	)
	if err != nil {
		return fmt.Errorf("create order line: %w", err)
	}
	return nil
}

// GetByID returns an order header.
func (r Orders) GetByID(ctx context.Context, id string) (Order, error) {
	var o Order
	var appliedOffer *string
	err := r.DB.QueryRow(ctx, `
		SELECT id, status, currency, subtotal, discount, total, applied_offer_id, created_at
		FROM orders WHERE id = $1`, id).
		Scan(&o.ID, &o.Status, &o.Currency, &o.Subtotal, &o.Discount, &o.Total, &appliedOffer, &o.CreatedAt)
	if err != nil {
		return Order{}, err
	}
	if appliedOffer != nil {
		o.AppliedOfferID = *appliedOffer
	}
	return o, nil
}

// Lines returns the lines of an order.
func (r Orders) Lines(ctx context.Context, orderID string) ([]OrderLine, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, order_id, product_id, name, category, qty, unit_price, subtotal
		FROM order_lines WHERE order_id = $1`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	defer rows.Close()
	var lines []OrderLine
	for rows.Next() {
		var l OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Name, &l.Category, &l.Qty, &l.UnitPrice, &l.Subtotal); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

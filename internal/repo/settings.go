package repo

import (
	"context"
	"fmt"
)

// Settings provides access to the single store settings record.
type Settings struct {
	DB DBTX
}

// Get returns the current settings snapshot.
func (r Settings) Get(ctx context.Context) (StoreSettings, error) {
	var s StoreSettings
	err := r.DB.QueryRow(ctx, `
		SELECT exchange_rate, currency, updated_at FROM store_settings WHERE id = 1`).
		Scan(&s.ExchangeRate, &s.Currency, &s.UpdatedAt)
	if err != nil {
		return StoreSettings{}, err
	}
	return s, nil
}

// Upsert writes the settings record, creating it on first boot.
func (r Settings) Upsert(ctx context.Context, s StoreSettings) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO store_settings (id, exchange_rate, currency, updated_at)
		VALUES (1, $1, $2, now())
		ON CONFLICT (id) DO UPDATE
		SET exchange_rate = EXCLUDED.exchange_rate, currency = EXCLUDED.currency, updated_at = now()`,
		s.ExchangeRate, s.Currency,
	)
	if err != nil {
		return fmt.Errorf("upsert store settings: %w", err)
	}
	return nil
}

// EnsureDefault seeds the settings row when missing so first boot has a
// usable exchange rate.
func (r Settings) EnsureDefault(ctx context.Context, rate float64, currency string) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO store_settings (id, exchange_rate, currency)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO NOTHING`,
		rate, currency,
	)
	if err != nil {
		return fmt.Errorf("seed store settings: %w", err)
	}
	return nil
}

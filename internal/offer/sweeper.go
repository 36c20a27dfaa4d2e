package offer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-katalog/internal/events"
	"github.com/noah-isme/backend-katalog/internal/obs"
)

type expiryStore interface {
	DeactivateExpired(ctx context.Context, now time.Time) ([]string, error)
}

// Sweeper deactivates offers past their expiry so stale promotions stop
// surfacing in admin listings. Selection already ignores expired offers; the
// sweep keeps stored state in line with what the selector sees.
type Sweeper struct {
	Store  expiryStore
	Bus    *events.Bus
	Logger zerolog.Logger
	Now    func() time.Time
}

// Sweep flags expired offers inactive and returns how many were swept.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	if s == nil || s.Store == nil {
		return 0, errors.New("sweeper not configured")
	}
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	ids, err := s.Store.DeactivateExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("sweep expired offers: %w", err)
	}
	for _, id := range ids {
		if s.Bus != nil {
			if _, err := s.Bus.Emit(ctx, events.TopicOfferExpired, id, map[string]any{"offerId": id}); err != nil {
				s.Logger.Error().Err(err).Str("offer_id", id).Msg("emit offer.expired")
			}
		}
	}
	if len(ids) > 0 {
		if obs.OffersExpiredTotal != nil {
			obs.OffersExpiredTotal.Add(float64(len(ids)))
		}
		s.Logger.Info().Int("count", len(ids)).Msg("expired offers deactivated")
	}
	return len(ids), nil
}

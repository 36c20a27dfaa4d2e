package offer_test

import (
	"context"
	"testing"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-katalog/internal/offer"
	"github.com/noah-isme/backend-katalog/internal/promo"
	"github.com/noah-isme/backend-katalog/internal/repo"
)

type memOffers struct {
	offers []repo.Offer
	nextID int
}

func (m *memOffers) List(_ context.Context, limit, offset int) ([]repo.Offer, error) {
	if offset >= len(m.offers) {
		return nil, nil
	}
	end := offset + limit
	if end > len(m.offers) {
		end = len(m.offers)
	}
	return m.offers[offset:end], nil
}

func (m *memOffers) Count(_ context.Context) (int64, error) {
	return int64(len(m.offers)), nil
}

func (m *memOffers) ListActive(_ context.Context) ([]repo.Offer, error) {
	var out []repo.Offer
	for _, o := range m.offers {
		if o.Active {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memOffers) GetByID(_ context.Context, id string) (repo.Offer, error) {
	for _, o := range m.offers {
		if o.ID == id {
			return o, nil
		}
	}
	return repo.Offer{}, pgx.ErrNoRows
}

func (m *memOffers) Create(_ context.Context, o repo.Offer) (repo.Offer, error) {
	m.nextID++
	o.ID = "offer-" + string(rune('0'+m.nextID))
	o.CreatedAt = time.Now()
	m.offers = append(m.offers, o)
	return o, nil
}

func (m *memOffers) Update(_ context.Context, o repo.Offer) error {
	for i := range m.offers {
		if m.offers[i].ID == o.ID {
			o.CreatedAt = m.offers[i].CreatedAt
			m.offers[i] = o
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (m *memOffers) Delete(_ context.Context, id string) error {
	for i := range m.offers {
		if m.offers[i].ID == id {
			m.offers = append(m.offers[:i], m.offers[i+1:]...)
			return nil
		}
	}
	return nil
}

func newService(store *memOffers) *offer.Service {
	return &offer.Service{
		Store:    store,
		Validate: validator.New(),
		Now:      func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func expiry() time.Time {
	return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
}

func TestCreateValidatesByKind(t *testing.T) {
	svc := newService(&memOffers{})
	ctx := context.Background()

	_, err := svc.Create(ctx, offer.Payload{Name: "zero pct", Kind: "percentage", Percent: 0, ExpiresAt: expiry()})
	require.Error(t, err)

	_, err = svc.Create(ctx, offer.Payload{Name: "bad kind", Kind: "bogo", ExpiresAt: expiry()})
	require.Error(t, err)

	_, err = svc.Create(ctx, offer.Payload{Name: "no target", Kind: "fixed", Amount: 100, Scope: "category", ExpiresAt: expiry()})
	require.Error(t, err)

	_, err = svc.Create(ctx, offer.Payload{Name: "bxgy no qty", Kind: "buyXgetY", Target: "item-1", BuyQty: 0, GetQty: 1, ExpiresAt: expiry()})
	require.Error(t, err)

	created, err := svc.Create(ctx, offer.Payload{Name: "ok", Kind: "percentage", Percent: 10, ExpiresAt: expiry()})
	require.NoError(t, err)
	require.Equal(t, "all", created.Scope)
	require.True(t, created.Active)
}

func TestListPaginates(t *testing.T) {
	store := &memOffers{}
	svc := newService(store)
	ctx := context.Background()
	for _, name := range []string{"first", "second", "third"} {
		_, err := svc.Create(ctx, offer.Payload{Name: name, Kind: "percentage", Percent: 5, ExpiresAt: expiry()})
		require.NoError(t, err)
	}

	offers, total, err := svc.List(ctx, 2, 0)
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, offers, 2)

	offers, _, err = svc.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, offers, 1)
	require.Equal(t, "third", offers[0].Name)
}

func TestUpdateMissingOfferIsNotFound(t *testing.T) {
	svc := newService(&memOffers{})
	_, err := svc.Update(context.Background(), "missing", offer.Payload{Name: "x", Kind: "fixed", Amount: 100, ExpiresAt: expiry()})
	require.Error(t, err)
}

func TestToPromoConversion(t *testing.T) {
	row := repo.Offer{
		ID: "offer-1", Kind: "buyXgetY", Target: "item-1",
		BuyQty: 3, GetQty: 1, ExpiresAt: expiry(), Active: true,
	}
	converted := offer.ToPromo(row)
	require.NotNil(t, converted.Discount)
	require.Equal(t, promo.KindBuyXGetY, converted.Discount.Kind)
	require.Equal(t, 3, converted.Discount.BuyQty)

	row.Active = false
	require.Nil(t, offer.ToPromo(row).Discount)

	row.Active = true
	row.Kind = "mystery"
	require.Nil(t, offer.ToPromo(row).Discount)
}

func TestPreviewSelectsBestOffer(t *testing.T) {
	store := &memOffers{}
	svc := newService(store)
	ctx := context.Background()

	_, err := svc.Create(ctx, offer.Payload{Name: "10% food", Kind: "percentage", Scope: "category", Target: "food", Percent: 10, ExpiresAt: expiry()})
	require.NoError(t, err)
	_, err = svc.Create(ctx, offer.Payload{Name: "flat 150", Kind: "fixed", Amount: 150, ExpiresAt: expiry()})
	require.NoError(t, err)

	lines := []promo.CartLine{
		{ProductID: "item-1", Category: "food", UnitPrice: 1000, Qty: 2},
		{ProductID: "item-2", Category: "drink", UnitPrice: 500, Qty: 1},
	}
	selection, err := svc.Preview(ctx, lines)
	require.NoError(t, err)
	require.Equal(t, int64(200), int64(selection.Discount))
	require.Equal(t, store.offers[0].ID, selection.OfferID)
}

func TestPreviewWithExpiredOffersOnly(t *testing.T) {
	store := &memOffers{offers: []repo.Offer{{
		ID: "offer-old", Kind: "fixed", Scope: "all", Amount: 500,
		ExpiresAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Active: true,
	}}}
	svc := newService(store)

	selection, err := svc.Preview(context.Background(), []promo.CartLine{{ProductID: "item-1", UnitPrice: 1000, Qty: 1}})
	require.NoError(t, err)
	require.Zero(t, selection.Discount)
	require.Empty(t, selection.OfferID)
}

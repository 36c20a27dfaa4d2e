package catalog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-katalog/internal/catalog"
	"github.com/noah-isme/backend-katalog/internal/repo"
)

type fakeItems struct {
	items []repo.Item
}

func (f *fakeItems) List(_ context.Context, category string, limit, offset int) ([]repo.Item, error) {
	var out []repo.Item
	for _, it := range f.items {
		if category != "" && it.Category != category {
			continue
		}
		out = append(out, it)
	}
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeItems) Count(_ context.Context, category string) (int64, error) {
	var n int64
	for _, it := range f.items {
		if category != "" && it.Category != category {
			continue
		}
		n++
	}
	return n, nil
}

func (f *fakeItems) GetBySlug(_ context.Context, slug string) (repo.Item, error) {
	for _, it := range f.items {
		if it.Slug == slug {
			return it, nil
		}
	}
	return repo.Item{}, pgx.ErrNoRows
}

func (f *fakeItems) GetByIDs(_ context.Context, ids []string) (map[string]repo.Item, error) {
	out := make(map[string]repo.Item)
	for _, id := range ids {
		for _, it := range f.items {
			if it.ID == id {
				out[id] = it
			}
		}
	}
	return out, nil
}

type fakeBundles struct {
	bundles []repo.Bundle
}

func (f *fakeBundles) List(_ context.Context, limit, offset int) ([]repo.Bundle, error) {
	out := f.bundles
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeBundles) Count(_ context.Context) (int64, error) {
	return int64(len(f.bundles)), nil
}

func (f *fakeBundles) GetBySlug(_ context.Context, slug string) (repo.Bundle, error) {
	for _, b := range f.bundles {
		if b.Slug == slug {
			return b, nil
		}
	}
	return repo.Bundle{}, pgx.ErrNoRows
}

type fakeExtras struct {
	extras []repo.Extra
}

func (f *fakeExtras) List(_ context.Context) ([]repo.Extra, error) {
	return f.extras, nil
}

type fakeSettings struct {
	settings repo.StoreSettings
}

func (f *fakeSettings) Get(_ context.Context) (repo.StoreSettings, error) {
	return f.settings, nil
}

type itemsResponse struct {
	Data       []catalog.ItemView `json:"data"`
	Pagination struct {
		Page       int `json:"page"`
		PerPage    int `json:"per_page"`
		TotalItems int `json:"total_items"`
	} `json:"pagination"`
}

type itemDetailResponse struct {
	Data catalog.ItemDetail `json:"data"`
}

type bundlesResponse struct {
	Data []catalog.BundleView `json:"data"`
}

type bundleDetailResponse struct {
	Data catalog.BundleView `json:"data"`
}

type extrasResponse struct {
	Data []catalog.ExtraView `json:"data"`
}

func newTestHandler(t *testing.T) *catalog.Handler {
	t.Helper()
	items := &fakeItems{items: []repo.Item{
		{ID: "item-1", Name: "Kopi Susu", Slug: "kopi-susu", Category: "drink", CostBasis: 1.2, MarkupPercent: 25, Stock: 10, CreatedAt: time.Now(), UpdatedAt: time.Now()},
		{ID: "item-2", Name: "Roti Bakar", Slug: "roti-bakar", Category: "food", CostBasis: 0.8, MarkupPercent: 50, Stock: 0, CreatedAt: time.Now(), UpdatedAt: time.Now()},
	}}
	bundles := &fakeBundles{bundles: []repo.Bundle{
		{
			ID: "bundle-1", Name: "Sarapan", Slug: "sarapan", Category: "combo",
			Contents: []repo.BundleContent{
				{ItemID: "item-1", Qty: 1},
				{ItemID: "item-2", Qty: 2},
				{ItemID: "item-gone", Qty: 5},
			},
		},
	}}
	extras := &fakeExtras{extras: []repo.Extra{{ID: "extra-1", Name: "Extra Shot", Price: 5000}}}
	settings := &fakeSettings{settings: repo.StoreSettings{ExchangeRate: 10000, Currency: "IDR"}}

	svc, err := catalog.NewService(catalog.ServiceConfig{
		Items:        items,
		Bundles:      bundles,
		Extras:       extras,
		Settings:     settings,
		DefaultPage:  1,
		DefaultLimit: 20,
		MaxLimit:     100,
	})
	require.NoError(t, err)
	return catalog.NewHandler(catalog.HandlerConfig{Service: svc})
}

func TestCatalogHandlers(t *testing.T) {
	handler := newTestHandler(t)

	t.Run("items list", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/items?limit=1", nil)
		rec := httptest.NewRecorder()
		handler.Items(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "2", rec.Header().Get("X-Total-Count"))

		var resp itemsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 1)
		require.Equal(t, "Kopi Susu", resp.Data[0].Name)
		// 1.2 * 10000 * 1.25 = 15000, already a multiple of ten
		require.Equal(t, int64(15000), int64(resp.Data[0].Price))
		require.True(t, resp.Data[0].InStock)
		require.Equal(t, 1, resp.Pagination.Page)
		require.Equal(t, 2, resp.Pagination.TotalItems)
	})

	t.Run("items filtered by category", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/items?category=food", nil)
		rec := httptest.NewRecorder()
		handler.Items(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp itemsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 1)
		require.Equal(t, "roti-bakar", resp.Data[0].Slug)
		require.False(t, resp.Data[0].InStock)
	})

	t.Run("invalid page rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/items?page=zero", nil)
		rec := httptest.NewRecorder()
		handler.Items(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("item detail", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/items/roti-bakar", nil)
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("slug", "roti-bakar")
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
		rec := httptest.NewRecorder()
		handler.ItemDetail(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp itemDetailResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "Roti Bakar", resp.Data.Name)
		// 0.8 * 10000 * 1.5 = 12000
		require.Equal(t, int64(12000), int64(resp.Data.Price))
		require.Equal(t, "IDR", resp.Data.Currency)
		require.Equal(t, 0, resp.Data.Stock)
	})

	t.Run("item detail not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/items/none", nil)
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("slug", "none")
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
		rec := httptest.NewRecorder()
		handler.ItemDetail(rec, req)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("bundle detail skips unresolvable contents", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/bundles/sarapan", nil)
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("slug", "sarapan")
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
		rec := httptest.NewRecorder()
		handler.BundleDetail(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp bundleDetailResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		// item-gone contributes nothing: 15000*1 + 12000*2 = 39000
		require.Equal(t, int64(39000), int64(resp.Data.Price))
		require.Len(t, resp.Data.Contents, 2)
	})

	t.Run("bundles list", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/bundles", nil)
		rec := httptest.NewRecorder()
		handler.Bundles(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "1", rec.Header().Get("X-Total-Count"))

		var resp bundlesResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 1)
		require.Equal(t, "sarapan", resp.Data[0].Slug)
	})

	t.Run("extras list", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/extras", nil)
		rec := httptest.NewRecorder()
		handler.Extras(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp extrasResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 1)
		require.Equal(t, int64(5000), int64(resp.Data[0].Price))
	})
}

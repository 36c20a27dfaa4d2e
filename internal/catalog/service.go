package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/noah-isme/backend-katalog/internal/common"
	"github.com/noah-isme/backend-katalog/internal/pricing"
	"github.com/noah-isme/backend-katalog/internal/repo"
)

type itemProvider interface {
	List(ctx context.Context, category string, limit, offset int) ([]repo.Item, error)
	Count(ctx context.Context, category string) (int64, error)
	GetBySlug(ctx context.Context, slug string) (repo.Item, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]repo.Item, error)
}

type bundleProvider interface {
	List(ctx context.Context, limit, offset int) ([]repo.Bundle, error)
	Count(ctx context.Context) (int64, error)
	GetBySlug(ctx context.Context, slug string) (repo.Bundle, error)
}

type extraProvider interface {
	List(ctx context.Context) ([]repo.Extra, error)
}

type settingsProvider interface {
	Get(ctx context.Context) (repo.StoreSettings, error)
}

// Service orchestrates catalog queries, price conversion, and caching.
type Service struct {
	items        itemProvider
	bundles      bundleProvider
	extras       extraProvider
	settings     settingsProvider
	cache        *Cache
	defaultPage  int
	defaultLimit int
	maxLimit     int
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Items        itemProvider
	Bundles      bundleProvider
	Extras       extraProvider
	Settings     settingsProvider
	Cache        *Cache
	DefaultPage  int
	DefaultLimit int
	MaxLimit     int
}

// ListParams captures filters for item listing.
type ListParams struct {
	Category string
	Page     int
	Limit    int
}

// ItemView is an entry in list responses with its converted sell price.
type ItemView struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Slug     string        `json:"slug"`
	Category string        `json:"category,omitempty"`
	Price    pricing.Money `json:"price"`
	InStock  bool          `json:"inStock"`
}

// ItemDetail aggregates the full item payload.
type ItemDetail struct {
	ItemView
	Stock    int    `json:"stock"`
	Currency string `json:"currency"`
}

// BundleContentView describes one item inside a bundle.
type BundleContentView struct {
	ItemID    string        `json:"itemId"`
	Name      string        `json:"name"`
	Qty       int           `json:"qty"`
	UnitPrice pricing.Money `json:"unitPrice"`
}

// BundleView is a bundle with its aggregated price.
type BundleView struct {
	ID       string              `json:"id"`
	Name     string              `json:"name"`
	Slug     string              `json:"slug"`
	Category string              `json:"category,omitempty"`
	Price    pricing.Money       `json:"price"`
	Contents []BundleContentView `json:"contents"`
}

// ExtraView is a fixed-price add-on.
type ExtraView struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Price pricing.Money `json:"price"`
}

// ItemListResult contains list data and pagination metadata.
type ItemListResult struct {
	Items []ItemView
	Total int64
	Page  int
	Limit int
}

// BundleListResult contains bundle list data and pagination metadata.
type BundleListResult struct {
	Bundles []BundleView
	Total   int64
	Page    int
	Limit   int
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Items == nil || cfg.Bundles == nil || cfg.Settings == nil {
		return nil, errors.New("catalog: item, bundle, and settings providers are required")
	}
	defaultPage := cfg.DefaultPage
	if defaultPage < 1 {
		defaultPage = 1
	}
	defaultLimit := cfg.DefaultLimit
	if defaultLimit < 1 {
		defaultLimit = 20
	}
	maxLimit := cfg.MaxLimit
	if maxLimit < 1 {
		maxLimit = 100
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	return &Service{
		items:        cfg.Items,
		bundles:      cfg.Bundles,
		extras:       cfg.Extras,
		settings:     cfg.Settings,
		cache:        cfg.Cache,
		defaultPage:  defaultPage,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}, nil
}

// ParseListParams normalises raw query values into strongly typed filters.
func (s *Service) ParseListParams(values url.Values) (ListParams, error) {
	params := ListParams{
		Page:  s.defaultPage,
		Limit: s.defaultLimit,
	}
	params.Category = strings.TrimSpace(values.Get("category"))

	if v := strings.TrimSpace(values.Get("page")); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return params, badRequest("page", "page must be a positive integer", err)
		}
		params.Page = page
	}
	if v := strings.TrimSpace(values.Get("limit")); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return params, badRequest("limit", "limit must be a positive integer", err)
		}
		if limit > s.maxLimit {
			limit = s.maxLimit
		}
		params.Limit = limit
	}
	return params, nil
}

// ListItems returns the filtered item list with converted sell prices.
func (s *Service) ListItems(ctx context.Context, params ListParams) (ItemListResult, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return ItemListResult{}, fmt.Errorf("load settings: %w", err)
	}
	rate := pricing.ExchangeRate(settings.ExchangeRate)

	key, cacheable := s.listCacheKey(params, settings.ExchangeRate)
	if cacheable {
		var cached cachedItemList
		ok, err := s.cache.GetJSON(ctx, key, &cached)
		if err == nil && ok {
			return ItemListResult{Items: cached.Items, Total: cached.Total, Page: params.Page, Limit: params.Limit}, nil
		}
	}

	total, err := s.items.Count(ctx, params.Category)
	if err != nil {
		return ItemListResult{}, fmt.Errorf("count items: %w", err)
	}
	offset := (params.Page - 1) * params.Limit
	if offset < 0 {
		offset = 0
	}
	rows, err := s.items.List(ctx, params.Category, params.Limit, offset)
	if err != nil {
		return ItemListResult{}, fmt.Errorf("list items: %w", err)
	}
	items := make([]ItemView, 0, len(rows))
	for _, row := range rows {
		items = append(items, itemView(row, rate))
	}
	if cacheable {
		_ = s.cache.SetJSON(ctx, key, cachedItemList{Items: items, Total: total})
	}
	return ItemListResult{Items: items, Total: total, Page: params.Page, Limit: params.Limit}, nil
}

// GetItemDetail returns one item by slug with its converted sell price.
func (s *Service) GetItemDetail(ctx context.Context, slug string) (ItemDetail, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return ItemDetail{}, badRequest("slug", "slug is required", nil)
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return ItemDetail{}, fmt.Errorf("load settings: %w", err)
	}
	key := detailCacheKey("items", slug, settings.ExchangeRate)
	var cached ItemDetail
	if ok, err := s.cache.GetJSON(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}
	item, err := s.items.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ItemDetail{}, notFound("item not found", err)
		}
		return ItemDetail{}, fmt.Errorf("get item by slug: %w", err)
	}
	detail := ItemDetail{
		ItemView: itemView(item, pricing.ExchangeRate(settings.ExchangeRate)),
		Stock:    item.Stock,
		Currency: settings.Currency,
	}
	_ = s.cache.SetJSON(ctx, key, detail)
	return detail, nil
}

// ListBundles returns bundles with aggregated prices. Bundle contents whose
// item no longer exists are left out of the sum and the contents list.
func (s *Service) ListBundles(ctx context.Context, params ListParams) (BundleListResult, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return BundleListResult{}, fmt.Errorf("load settings: %w", err)
	}
	total, err := s.bundles.Count(ctx)
	if err != nil {
		return BundleListResult{}, fmt.Errorf("count bundles: %w", err)
	}
	offset := (params.Page - 1) * params.Limit
	if offset < 0 {
		offset = 0
	}
	rows, err := s.bundles.List(ctx, params.Limit, offset)
	if err != nil {
		return BundleListResult{}, fmt.Errorf("list bundles: %w", err)
	}
	views := make([]BundleView, 0, len(rows))
	for _, b := range rows {
		view, err := s.bundleView(ctx, b, pricing.ExchangeRate(settings.ExchangeRate))
		if err != nil {
			return BundleListResult{}, err
		}
		views = append(views, view)
	}
	return BundleListResult{Bundles: views, Total: total, Page: params.Page, Limit: params.Limit}, nil
}

// GetBundleDetail returns one bundle by slug with its aggregated price.
func (s *Service) GetBundleDetail(ctx context.Context, slug string) (BundleView, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return BundleView{}, badRequest("slug", "slug is required", nil)
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return BundleView{}, fmt.Errorf("load settings: %w", err)
	}
	bundle, err := s.bundles.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return BundleView{}, notFound("bundle not found", err)
		}
		return BundleView{}, fmt.Errorf("get bundle by slug: %w", err)
	}
	return s.bundleView(ctx, bundle, pricing.ExchangeRate(settings.ExchangeRate))
}

// ListExtras returns all fixed-price add-ons.
func (s *Service) ListExtras(ctx context.Context) ([]ExtraView, error) {
	if s.extras == nil {
		return []ExtraView{}, nil
	}
	rows, err := s.extras.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list extras: %w", err)
	}
	views := make([]ExtraView, 0, len(rows))
	for _, e := range rows {
		views = append(views, ExtraView{ID: e.ID, Name: e.Name, Price: pricing.Money(e.Price)})
	}
	return views, nil
}

func (s *Service) bundleView(ctx context.Context, b repo.Bundle, rate pricing.ExchangeRate) (BundleView, error) {
	ids := make([]string, 0, len(b.Contents))
	for _, c := range b.Contents {
		ids = append(ids, c.ItemID)
	}
	resolved, err := s.items.GetByIDs(ctx, ids)
	if err != nil {
		return BundleView{}, fmt.Errorf("resolve bundle items: %w", err)
	}
	view := BundleView{
		ID:       b.ID,
		Name:     b.Name,
		Slug:     b.Slug,
		Category: b.Category,
		Contents: make([]BundleContentView, 0, len(b.Contents)),
	}
	priceItems := make(map[string]pricing.Item, len(resolved))
	contents := make([]pricing.BundleContent, 0, len(b.Contents))
	for _, c := range b.Contents {
		contents = append(contents, pricing.BundleContent{ItemID: c.ItemID, Qty: c.Qty})
		item, ok := resolved[c.ItemID]
		if !ok {
			continue
		}
		priceItems[c.ItemID] = pricing.Item{CostBasis: item.CostBasis, MarkupPercent: item.MarkupPercent}
		view.Contents = append(view.Contents, BundleContentView{
			ItemID:    c.ItemID,
			Name:      item.Name,
			Qty:       c.Qty,
			UnitPrice: pricing.SellPrice(priceItems[c.ItemID], rate),
		})
	}
	view.Price = pricing.BundlePrice(contents, priceItems, rate)
	return view, nil
}

func itemView(item repo.Item, rate pricing.ExchangeRate) ItemView {
	return ItemView{
		ID:       item.ID,
		Name:     item.Name,
		Slug:     item.Slug,
		Category: item.Category,
		Price:    pricing.SellPrice(pricing.Item{CostBasis: item.CostBasis, MarkupPercent: item.MarkupPercent}, rate),
		InStock:  item.Stock > 0,
	}
}

type cachedItemList struct {
	Items []ItemView `json:"items"`
	Total int64      `json:"total"`
}

// Cache keys embed the exchange rate so a settings update never serves prices
// converted at a stale rate.
func (s *Service) listCacheKey(params ListParams, rate float64) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	if params.Page != s.defaultPage || params.Limit != s.defaultLimit || params.Category != "" {
		return "", false
	}
	return fmt.Sprintf("catalog:items:list:default:rate:%g", rate), true
}

func detailCacheKey(kind, slug string, rate float64) string {
	return fmt.Sprintf("catalog:%s:detail:%s:rate:%g", kind, slug, rate)
}

func notFound(message string, err error) *common.AppError {
	return &common.AppError{Code: "NOT_FOUND", Message: message, HTTPStatus: http.StatusNotFound, Err: err}
}

func badRequest(field, message string, err error) *common.AppError {
	return &common.AppError{
		Code:       "BAD_REQUEST",
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
		Details: map[string]any{
			"field": field,
		},
	}
}

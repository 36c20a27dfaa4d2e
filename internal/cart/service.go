package cart

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/noah-isme/backend-katalog/internal/obs"
	"github.com/noah-isme/backend-katalog/internal/pricing"
	"github.com/noah-isme/backend-katalog/internal/promo"
	"github.com/noah-isme/backend-katalog/internal/repo"
)

type itemProvider interface {
	GetByID(ctx context.Context, id string) (repo.Item, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]repo.Item, error)
}

type bundleProvider interface {
	GetByID(ctx context.Context, id string) (repo.Bundle, error)
}

type extraProvider interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]repo.Extra, error)
}

type settingsProvider interface {
	Get(ctx context.Context) (repo.StoreSettings, error)
}

type offerProvider interface {
	ActiveOffers(ctx context.Context) ([]promo.Offer, error)
}

// Service encapsulates cart domain operations.
type Service struct {
	Store    *Store
	Items    itemProvider
	Bundles  bundleProvider
	Extras   extraProvider
	Settings settingsProvider
	Offers   offerProvider
	Now      func() time.Time
}

// AddParams describes a line to add to a cart.
type AddParams struct {
	Kind     string   `json:"kind"`
	RefID    string   `json:"refId"`
	Qty      int      `json:"qty"`
	ExtraIDs []string `json:"extraIds"`
}

// QuotedExtra is a resolved add-on inside a quote.
type QuotedExtra struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Price pricing.Money `json:"price"`
}

// QuotedLine is one priced line of a quote.
type QuotedLine struct {
	LineID    string        `json:"lineId"`
	Kind      LineKind      `json:"kind"`
	RefID     string        `json:"refId"`
	Name      string        `json:"name"`
	Category  string        `json:"category,omitempty"`
	UnitPrice pricing.Money `json:"unitPrice"`
	Qty       int           `json:"qty"`
	Extras    []QuotedExtra `json:"extras,omitempty"`
	Total     pricing.Money `json:"total"`
}

// Quote is the fully priced view of a cart with the best discount applied.
type Quote struct {
	CartID   string          `json:"cartId"`
	Lines    []QuotedLine    `json:"lines"`
	Subtotal pricing.Money   `json:"subtotal"`
	Discount pricing.Money   `json:"discount"`
	Total    pricing.Money   `json:"total"`
	OfferID  string          `json:"offerId,omitempty"`
	Currency string          `json:"currency"`
	Summary  pricing.Summary `json:"-"`
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Create initialises an empty cart.
func (s *Service) Create(ctx context.Context) (Cart, error) {
	if s == nil || s.Store == nil {
		return Cart{}, errors.New("cart service not configured")
	}
	c := Cart{ID: uuid.NewString(), Lines: []Line{}, UpdatedAt: s.now()}
	if err := s.Store.Save(ctx, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

// Get loads a cart document.
func (s *Service) Get(ctx context.Context, id string) (Cart, error) {
	if s == nil || s.Store == nil {
		return Cart{}, errors.New("cart service not configured")
	}
	return s.Store.Get(ctx, id)
}

// AddLine appends a line, or increments the quantity of an identical line.
func (s *Service) AddLine(ctx context.Context, cartID string, params AddParams) (Cart, error) {
	if s == nil || s.Store == nil {
		return Cart{}, errors.New("cart service not configured")
	}
	if params.Qty <= 0 {
		return Cart{}, fmt.Errorf("qty must be positive: %w", ErrInvalidInput)
	}
	kind := LineKind(strings.TrimSpace(params.Kind))
	if kind == "" {
		kind = LineItem
	}
	refID := strings.TrimSpace(params.RefID)
	if refID == "" {
		return Cart{}, fmt.Errorf("refId is required: %w", ErrInvalidInput)
	}

	var name string
	switch kind {
	case LineItem:
		item, err := s.Items.GetByID(ctx, refID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return Cart{}, fmt.Errorf("unknown item %s: %w", refID, ErrInvalidInput)
			}
			return Cart{}, fmt.Errorf("resolve item: %w", err)
		}
		name = item.Name
	case LineBundle:
		if len(params.ExtraIDs) > 0 {
			return Cart{}, fmt.Errorf("extras cannot attach to bundles: %w", ErrInvalidInput)
		}
		bundle, err := s.Bundles.GetByID(ctx, refID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return Cart{}, fmt.Errorf("unknown bundle %s: %w", refID, ErrInvalidInput)
			}
			return Cart{}, fmt.Errorf("resolve bundle: %w", err)
		}
		name = bundle.Name
	default:
		return Cart{}, fmt.Errorf("unknown line kind %q: %w", params.Kind, ErrInvalidInput)
	}
	if len(params.ExtraIDs) > 0 && s.Extras != nil {
		resolved, err := s.Extras.GetByIDs(ctx, params.ExtraIDs)
		if err != nil {
			return Cart{}, fmt.Errorf("resolve extras: %w", err)
		}
		for _, id := range params.ExtraIDs {
			if _, ok := resolved[id]; !ok {
				return Cart{}, fmt.Errorf("unknown extra %s: %w", id, ErrInvalidInput)
			}
		}
	}

	c, err := s.Store.Get(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	if idx := findLine(c.Lines, kind, refID, params.ExtraIDs); idx >= 0 {
		c.Lines[idx].Qty += params.Qty
	} else {
		c.Lines = append(c.Lines, Line{
			ID:       uuid.NewString(),
			Kind:     kind,
			RefID:    refID,
			Name:     name,
			Qty:      params.Qty,
			ExtraIDs: params.ExtraIDs,
		})
	}
	c.UpdatedAt = s.now()
	if err := s.Store.Save(ctx, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

// UpdateQty sets the quantity for a cart line.
func (s *Service) UpdateQty(ctx context.Context, cartID, lineID string, qty int) (Cart, error) {
	if s == nil || s.Store == nil {
		return Cart{}, errors.New("cart service not configured")
	}
	if qty <= 0 {
		return Cart{}, fmt.Errorf("qty must be positive: %w", ErrInvalidInput)
	}
	c, err := s.Store.Get(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			c.Lines[i].Qty = qty
			c.UpdatedAt = s.now()
			if err := s.Store.Save(ctx, c); err != nil {
				return Cart{}, err
			}
			return c, nil
		}
	}
	return Cart{}, ErrNotFound
}

// RemoveLine deletes a cart line.
func (s *Service) RemoveLine(ctx context.Context, cartID, lineID string) (Cart, error) {
	if s == nil || s.Store == nil {
		return Cart{}, errors.New("cart service not configured")
	}
	c, err := s.Store.Get(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			c.UpdatedAt = s.now()
			if err := s.Store.Save(ctx, c); err != nil {
				return Cart{}, err
			}
			return c, nil
		}
	}
	return Cart{}, ErrNotFound
}

// Quote resolves fresh prices for every line, runs offer selection, and
// returns the cart totals. Lines whose catalog entry disappeared since they
// were added are skipped rather than failing the quote.
func (s *Service) Quote(ctx context.Context, cartID string) (Quote, error) {
	q, err := s.quote(ctx, cartID)
	if obs.QuoteTotal != nil {
		result := "ok"
		if err != nil {
			result = "error"
		}
		obs.QuoteTotal.WithLabelValues(result).Inc()
	}
	return q, err
}

func (s *Service) quote(ctx context.Context, cartID string) (Quote, error) {
	if s == nil || s.Store == nil {
		return Quote{}, errors.New("cart service not configured")
	}
	c, err := s.Store.Get(ctx, cartID)
	if err != nil {
		return Quote{}, err
	}
	settings, err := s.Settings.Get(ctx)
	if err != nil {
		return Quote{}, fmt.Errorf("load settings: %w", err)
	}
	rate := pricing.ExchangeRate(settings.ExchangeRate)

	quoted, promoLines, err := s.priceLines(ctx, c.Lines, rate)
	if err != nil {
		return Quote{}, err
	}

	var offers []promo.Offer
	if s.Offers != nil {
		offers, err = s.Offers.ActiveOffers(ctx)
		if err != nil {
			return Quote{}, err
		}
	}
	selection := promo.SelectBest(promoLines, offers, s.now(), nil)
	recordDiscountKind(offers, selection)

	lineSubtotals := make([]pricing.Money, 0, len(quoted))
	for _, l := range quoted {
		lineSubtotals = append(lineSubtotals, l.Total)
	}
	summary := pricing.Compute(lineSubtotals, selection.Discount)
	return Quote{
		CartID:   c.ID,
		Lines:    quoted,
		Subtotal: summary.Subtotal,
		Discount: summary.Discount,
		Total:    summary.Total,
		OfferID:  selection.OfferID,
		Currency: settings.Currency,
		Summary:  summary,
	}, nil
}

func (s *Service) priceLines(ctx context.Context, lines []Line, rate pricing.ExchangeRate) ([]QuotedLine, []promo.CartLine, error) {
	itemIDs := make([]string, 0, len(lines))
	extraIDs := make([]string, 0)
	for _, l := range lines {
		if l.Kind == LineItem {
			itemIDs = append(itemIDs, l.RefID)
		}
		extraIDs = append(extraIDs, l.ExtraIDs...)
	}
	items, err := s.Items.GetByIDs(ctx, itemIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve items: %w", err)
	}
	extras := map[string]repo.Extra{}
	if len(extraIDs) > 0 && s.Extras != nil {
		extras, err = s.Extras.GetByIDs(ctx, extraIDs)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve extras: %w", err)
		}
	}

	quoted := make([]QuotedLine, 0, len(lines))
	promoLines := make([]promo.CartLine, 0, len(lines))
	for _, l := range lines {
		switch l.Kind {
		case LineItem:
			item, ok := items[l.RefID]
			if !ok {
				continue
			}
			unit := pricing.SellPrice(pricing.Item{CostBasis: item.CostBasis, MarkupPercent: item.MarkupPercent}, rate)
			ql := QuotedLine{
				LineID:    l.ID,
				Kind:      l.Kind,
				RefID:     l.RefID,
				Name:      item.Name,
				Category:  item.Category,
				UnitPrice: unit,
				Qty:       l.Qty,
			}
			pl := promo.CartLine{ProductID: l.RefID, Category: item.Category, UnitPrice: unit, Qty: l.Qty}
			perUnit := unit
			for _, id := range l.ExtraIDs {
				ex, ok := extras[id]
				if !ok {
					continue
				}
				ql.Extras = append(ql.Extras, QuotedExtra{ID: ex.ID, Name: ex.Name, Price: pricing.Money(ex.Price)})
				pl.Extras = append(pl.Extras, promo.Extra{ID: ex.ID, Name: ex.Name, Price: pricing.Money(ex.Price)})
				perUnit += pricing.Money(ex.Price)
			}
			ql.Total = perUnit * pricing.Money(l.Qty)
			quoted = append(quoted, ql)
			promoLines = append(promoLines, pl)
		case LineBundle:
			bundle, err := s.Bundles.GetByID(ctx, l.RefID)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					continue
				}
				return nil, nil, fmt.Errorf("resolve bundle: %w", err)
			}
			unit, err := s.bundlePrice(ctx, bundle, rate)
			if err != nil {
				return nil, nil, err
			}
			ql := QuotedLine{
				LineID:    l.ID,
				Kind:      l.Kind,
				RefID:     l.RefID,
				Name:      bundle.Name,
				Category:  bundle.Category,
				UnitPrice: unit,
				Qty:       l.Qty,
				Total:     unit * pricing.Money(l.Qty),
			}
			quoted = append(quoted, ql)
			promoLines = append(promoLines, promo.CartLine{ProductID: l.RefID, Category: bundle.Category, UnitPrice: unit, Qty: l.Qty})
		}
	}
	return quoted, promoLines, nil
}

func (s *Service) bundlePrice(ctx context.Context, bundle repo.Bundle, rate pricing.ExchangeRate) (pricing.Money, error) {
	ids := make([]string, 0, len(bundle.Contents))
	contents := make([]pricing.BundleContent, 0, len(bundle.Contents))
	for _, c := range bundle.Contents {
		ids = append(ids, c.ItemID)
		contents = append(contents, pricing.BundleContent{ItemID: c.ItemID, Qty: c.Qty})
	}
	resolved, err := s.Items.GetByIDs(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("resolve bundle items: %w", err)
	}
	priceItems := make(map[string]pricing.Item, len(resolved))
	for id, item := range resolved {
		priceItems[id] = pricing.Item{CostBasis: item.CostBasis, MarkupPercent: item.MarkupPercent}
	}
	return pricing.BundlePrice(contents, priceItems, rate), nil
}

func recordDiscountKind(offers []promo.Offer, selection promo.Selection) {
	if obs.DiscountSelectedTotal == nil {
		return
	}
	kind := "none"
	if selection.OfferID != "" {
		for _, o := range offers {
			if o.ID == selection.OfferID && o.Discount != nil {
				kind = string(o.Discount.Kind)
				break
			}
		}
	}
	obs.DiscountSelectedTotal.WithLabelValues(kind).Inc()
}

func findLine(lines []Line, kind LineKind, refID string, extraIDs []string) int {
	for i, l := range lines {
		if l.Kind == kind && l.RefID == refID && sameExtras(l.ExtraIDs, extraIDs) {
			return i
		}
	}
	return -1
}

func sameExtras(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

package offer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"

	"github.com/noah-isme/backend-katalog/internal/common"
	"github.com/noah-isme/backend-katalog/internal/pricing"
	"github.com/noah-isme/backend-katalog/internal/promo"
	"github.com/noah-isme/backend-katalog/internal/repo"
)

type store interface {
	List(ctx context.Context, limit, offset int) ([]repo.Offer, error)
	Count(ctx context.Context) (int64, error)
	ListActive(ctx context.Context) ([]repo.Offer, error)
	GetByID(ctx context.Context, id string) (repo.Offer, error)
	Create(ctx context.Context, o repo.Offer) (repo.Offer, error)
	Update(ctx context.Context, o repo.Offer) error
	Delete(ctx context.Context, id string) error
}

// Service manages promotional offers and exposes them to the selector.
type Service struct {
	Store    store
	Validate *validator.Validate
	Now      func() time.Time
}

// Payload carries the offer fields accepted from admins. The discount engine
// itself is permissive; bounds are enforced here at the admin boundary.
type Payload struct {
	Name      string    `json:"name" validate:"required"`
	Kind      string    `json:"kind" validate:"required,oneof=percentage fixed buyXgetY"`
	Scope     string    `json:"scope" validate:"omitempty,oneof=all category product"`
	Target    string    `json:"target"`
	Percent   float64   `json:"percent" validate:"gte=0,lte=100"`
	Amount    int64     `json:"amount" validate:"gte=0"`
	BuyQty    int       `json:"buyQty" validate:"gte=0"`
	GetQty    int       `json:"getQty" validate:"gte=0"`
	ExpiresAt time.Time `json:"expiresAt" validate:"required"`
	Active    *bool     `json:"active"`
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// List returns a page of offers plus the total count.
func (s *Service) List(ctx context.Context, limit, offset int) ([]repo.Offer, int64, error) {
	total, err := s.Store.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count offers: %w", err)
	}
	offers, err := s.Store.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list offers: %w", err)
	}
	return offers, total, nil
}

// Get returns one offer by id.
func (s *Service) Get(ctx context.Context, id string) (repo.Offer, error) {
	o, err := s.Store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repo.Offer{}, notFound(err)
		}
		return repo.Offer{}, fmt.Errorf("get offer: %w", err)
	}
	return o, nil
}

// Create validates and persists a new offer.
func (s *Service) Create(ctx context.Context, payload Payload) (repo.Offer, error) {
	o, err := s.buildOffer(payload)
	if err != nil {
		return repo.Offer{}, err
	}
	created, err := s.Store.Create(ctx, o)
	if err != nil {
		return repo.Offer{}, fmt.Errorf("create offer: %w", err)
	}
	return created, nil
}

// Update replaces an existing offer's fields.
func (s *Service) Update(ctx context.Context, id string, payload Payload) (repo.Offer, error) {
	o, err := s.buildOffer(payload)
	if err != nil {
		return repo.Offer{}, err
	}
	o.ID = id
	if err := s.Store.Update(ctx, o); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repo.Offer{}, notFound(err)
		}
		return repo.Offer{}, fmt.Errorf("update offer: %w", err)
	}
	return s.Get(ctx, id)
}

// Delete removes an offer.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.Store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete offer: %w", err)
	}
	return nil
}

// ActiveOffers loads active offers converted for the selector, in creation
// order so ties resolve toward the oldest offer.
func (s *Service) ActiveOffers(ctx context.Context) ([]promo.Offer, error) {
	rows, err := s.Store.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active offers: %w", err)
	}
	offers := make([]promo.Offer, 0, len(rows))
	for _, row := range rows {
		offers = append(offers, ToPromo(row))
	}
	return offers, nil
}

// Preview evaluates the current active offers against a hypothetical cart
// without persisting anything.
func (s *Service) Preview(ctx context.Context, lines []promo.CartLine) (promo.Selection, error) {
	offers, err := s.ActiveOffers(ctx)
	if err != nil {
		return promo.Selection{}, err
	}
	return promo.SelectBest(lines, offers, s.now(), nil), nil
}

func (s *Service) buildOffer(payload Payload) (repo.Offer, error) {
	payload.Name = strings.TrimSpace(payload.Name)
	payload.Target = strings.TrimSpace(payload.Target)
	if payload.Scope == "" {
		payload.Scope = string(promo.ScopeAll)
	}
	if s.Validate != nil {
		if err := s.Validate.Struct(payload); err != nil {
			return repo.Offer{}, badRequest("invalid offer payload", err)
		}
	}
	switch promo.Kind(payload.Kind) {
	case promo.KindPercentage:
		if payload.Percent <= 0 {
			return repo.Offer{}, badRequest("percent must be positive for percentage offers", nil)
		}
	case promo.KindFixed:
		if payload.Amount <= 0 {
			return repo.Offer{}, badRequest("amount must be positive for fixed offers", nil)
		}
	case promo.KindBuyXGetY:
		if payload.Target == "" {
			return repo.Offer{}, badRequest("target product is required for buyXgetY offers", nil)
		}
		if payload.BuyQty < 1 || payload.GetQty < 1 {
			return repo.Offer{}, badRequest("buyQty and getQty must be at least 1", nil)
		}
	}
	if promo.Scope(payload.Scope) != promo.ScopeAll && promo.Kind(payload.Kind) != promo.KindBuyXGetY && payload.Target == "" {
		return repo.Offer{}, badRequest("target is required for scoped offers", nil)
	}
	active := true
	if payload.Active != nil {
		active = *payload.Active
	}
	return repo.Offer{
		Name:      payload.Name,
		Kind:      payload.Kind,
		Scope:     payload.Scope,
		Target:    payload.Target,
		Percent:   payload.Percent,
		Amount:    payload.Amount,
		BuyQty:    payload.BuyQty,
		GetQty:    payload.GetQty,
		ExpiresAt: payload.ExpiresAt,
		Active:    active,
	}, nil
}

// ToPromo converts a stored offer into the selector's representation. Offers
// flagged inactive carry no discount so the selector skips them.
func ToPromo(o repo.Offer) promo.Offer {
	out := promo.Offer{ID: o.ID, ExpiresAt: o.ExpiresAt}
	if !o.Active {
		return out
	}
	var d promo.Discount
	switch promo.Kind(o.Kind) {
	case promo.KindPercentage:
		d = promo.Percentage(promo.Scope(o.Scope), o.Target, o.Percent)
	case promo.KindFixed:
		d = promo.Fixed(promo.Scope(o.Scope), o.Target, pricing.Money(o.Amount))
	case promo.KindBuyXGetY:
		d = promo.BuyXGetY(o.Target, o.BuyQty, o.GetQty)
	default:
		return out
	}
	out.Discount = &d
	return out
}

func notFound(err error) *common.AppError {
	return &common.AppError{Code: "NOT_FOUND", Message: "offer not found", HTTPStatus: http.StatusNotFound, Err: err}
}

func badRequest(message string, err error) *common.AppError {
	return &common.AppError{Code: "BAD_REQUEST", Message: message, HTTPStatus: http.StatusBadRequest, Err: err}
}

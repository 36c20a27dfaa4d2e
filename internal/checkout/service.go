package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-katalog/internal/cart"
	"github.com/noah-isme/backend-katalog/internal/events"
	"github.com/noah-isme/backend-katalog/internal/obs"
	"github.com/noah-isme/backend-katalog/internal/repo"
)

// ErrEmptyCart rejects checkout of a cart with no priceable lines.
var ErrEmptyCart = errors.New("cart is empty")

type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Input is the checkout request payload.
type Input struct {
	CartID string `json:"cartId"`
}

// Output summarises the created order.
type Output struct {
	OrderID  string `json:"orderId"`
	Status   string `json:"status"`
	Subtotal int64  `json:"subtotal"`
	Discount int64  `json:"discount"`
	Total    int64  `json:"total"`
	OfferID  string `json:"offerId,omitempty"`
	Currency string `json:"currency"`
}

// Service turns a quoted cart into a persisted order.
type Service struct {
	DB      txBeginner
	CartSvc *cart.Service
	Events  *events.Bus
	Logger  zerolog.Logger
}

// Create prices the cart one final time, persists the order and its lines in
// one transaction, clears the cart, and emits order.created.
func (s *Service) Create(ctx context.Context, in Input) (Output, error) {
	out, err := s.create(ctx, in)
	if obs.CheckoutTotal != nil {
		result := "ok"
		if err != nil {
			result = "error"
		}
		obs.CheckoutTotal.WithLabelValues(result).Inc()
	}
	return out, err
}

func (s *Service) create(ctx context.Context, in Input) (Output, error) {
	if s == nil || s.CartSvc == nil {
		return Output{}, errors.New("checkout service not configured")
	}
	cartID := strings.TrimSpace(in.CartID)
	if cartID == "" {
		return Output{}, errors.New("cartId is required")
	}
	quote, err := s.CartSvc.Quote(ctx, cartID)
	if err != nil {
		return Output{}, err
	}
	if len(quote.Lines) == 0 {
		return Output{}, ErrEmptyCart
	}
	if s.DB == nil {
		return Output{}, errors.New("checkout service not configured")
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return Output{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	orders := repo.Orders{DB: tx}
	order, err := orders.Create(ctx, repo.Order{
		Status:         "created",
		Currency:       quote.Currency,
		Subtotal:       int64(quote.Subtotal),
		Discount:       int64(quote.Discount),
		Total:          int64(quote.Total),
		AppliedOfferID: quote.OfferID,
	})
	if err != nil {
		return Output{}, err
	}
	for _, line := range quote.Lines {
		if err := orders.CreateLine(ctx, repo.OrderLine{
			OrderID:   order.ID,
			ProductID: line.RefID,
			Name:      line.Name,
			Category:  line.Category,
			Qty:       line.Qty,
			UnitPrice: int64(line.UnitPrice),
			Subtotal:  int64(line.Total),
		}); err != nil {
			return Output{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return Output{}, err
	}

	if s.CartSvc.Store != nil {
		if err := s.CartSvc.Store.Delete(ctx, cartID); err != nil {
			return Output{}, fmt.Errorf("clear cart after checkout: %w", err)
		}
	}
	if s.Events != nil {
		// The order is already committed; a failed event must not fail checkout.
		if _, err := s.Events.Emit(ctx, events.TopicOrderCreated, order.ID, map[string]any{
			"orderId":  order.ID,
			"cartId":   cartID,
			"total":    int64(quote.Total),
			"discount": int64(quote.Discount),
			"offerId":  quote.OfferID,
		}); err != nil {
			s.Logger.Error().Err(err).Str("order_id", order.ID).Msg("emit order.created")
		}
	}
	return Output{
		OrderID:  order.ID,
		Status:   order.Status,
		Subtotal: order.Subtotal,
		Discount: order.Discount,
		Total:    order.Total,
		OfferID:  order.AppliedOfferID,
		Currency: order.Currency,
	}, nil
}

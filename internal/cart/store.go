package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound indicates the requested cart could not be located.
var ErrNotFound = errors.New("cart not found")

// ErrInvalidInput is returned when the provided payload is invalid.
var ErrInvalidInput = errors.New("invalid input")

// LineKind distinguishes item lines from bundle lines.
type LineKind string

const (
	LineItem   LineKind = "item"
	LineBundle LineKind = "bundle"
)

// Line references a priced catalog entry inside a cart. Prices are resolved
// at quote time so carts never pin a stale exchange rate.
type Line struct {
	ID       string   `json:"id"`
	Kind     LineKind `json:"kind"`
	RefID    string   `json:"refId"`
	Name     string   `json:"name"`
	Qty      int      `json:"qty"`
	ExtraIDs []string `json:"extraIds,omitempty"`
}

// Cart is the stored cart document.
type Cart struct {
	ID        string    `json:"id"`
	Lines     []Line    `json:"lines"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store keeps cart documents in Redis with a sliding TTL.
type Store struct {
	Client *redis.Client
	TTL    time.Duration
}

func (s *Store) ttl() time.Duration {
	if s == nil || s.TTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.TTL
}

func cartKey(id string) string {
	return "cart:" + id
}

// Get loads a cart document.
func (s *Store) Get(ctx context.Context, id string) (Cart, error) {
	if s == nil || s.Client == nil {
		return Cart{}, errors.New("cart store not configured")
	}
	data, err := s.Client.Get(ctx, cartKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Cart{}, ErrNotFound
		}
		return Cart{}, fmt.Errorf("load cart: %w", err)
	}
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return Cart{}, fmt.Errorf("decode cart: %w", err)
	}
	return c, nil
}

// Save writes a cart document and refreshes its TTL.
func (s *Store) Save(ctx context.Context, c Cart) error {
	if s == nil || s.Client == nil {
		return errors.New("cart store not configured")
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.Client.Set(ctx, cartKey(c.ID), data, s.ttl()).Err(); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// Delete removes a cart document.
func (s *Store) Delete(ctx context.Context, id string) error {
	if s == nil || s.Client == nil {
		return errors.New("cart store not configured")
	}
	if err := s.Client.Del(ctx, cartKey(id)).Err(); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}

package settings

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-katalog/internal/common"
	"github.com/noah-isme/backend-katalog/internal/events"
	"github.com/noah-isme/backend-katalog/internal/repo"
)

type store interface {
	Get(ctx context.Context) (repo.StoreSettings, error)
	Upsert(ctx context.Context, s repo.StoreSettings) error
}

// Service manages the store-wide pricing settings.
type Service struct {
	Store    store
	Bus      *events.Bus
	Validate *validator.Validate
	Logger   zerolog.Logger
}

// UpdateParams carries the mutable settings fields.
type UpdateParams struct {
	ExchangeRate float64 `json:"exchangeRate" validate:"required,gt=0"`
	Currency     string  `json:"currency" validate:"required,len=3,alpha"`
}

// Get returns the current settings snapshot.
func (s *Service) Get(ctx context.Context) (repo.StoreSettings, error) {
	if s == nil || s.Store == nil {
		return repo.StoreSettings{}, errors.New("settings: store not configured")
	}
	snapshot, err := s.Store.Get(ctx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repo.StoreSettings{}, &common.AppError{
				Code:       "NOT_FOUND",
				Message:    "store settings not initialised",
				HTTPStatus: http.StatusNotFound,
				Err:        err,
			}
		}
		return repo.StoreSettings{}, fmt.Errorf("get settings: %w", err)
	}
	return snapshot, nil
}

// Update validates and persists new settings, then emits settings.updated.
func (s *Service) Update(ctx context.Context, params UpdateParams) (repo.StoreSettings, error) {
	if s == nil || s.Store == nil {
		return repo.StoreSettings{}, errors.New("settings: store not configured")
	}
	params.Currency = strings.ToUpper(strings.TrimSpace(params.Currency))
	if s.Validate != nil {
		if err := s.Validate.Struct(params); err != nil {
			return repo.StoreSettings{}, &common.AppError{
				Code:       "BAD_REQUEST",
				Message:    "invalid settings payload",
				HTTPStatus: http.StatusBadRequest,
				Err:        err,
			}
		}
	}
	next := repo.StoreSettings{ExchangeRate: params.ExchangeRate, Currency: params.Currency}
	if err := s.Store.Upsert(ctx, next); err != nil {
		return repo.StoreSettings{}, fmt.Errorf("update settings: %w", err)
	}
	if s.Bus != nil {
		// Settings are persisted at this point; a failed event only loses the
		// notification, so log and carry on.
		if _, err := s.Bus.Emit(ctx, events.TopicSettingsUpdated, "store", map[string]any{
			"exchangeRate": params.ExchangeRate,
			"currency":     params.Currency,
		}); err != nil {
			s.Logger.Error().Err(err).Msg("emit settings.updated")
		}
	}
	return s.Store.Get(ctx)
}

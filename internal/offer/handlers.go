package offer

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-katalog/internal/common"
	"github.com/noah-isme/backend-katalog/internal/pricing"
	"github.com/noah-isme/backend-katalog/internal/promo"
)

// Handler exposes administrative offer management endpoints plus the
// discount preview.
type Handler struct {
	Svc *Service
}

type previewRequest struct {
	Lines []previewLine `json:"lines"`
}

type previewLine struct {
	ProductID string         `json:"productId"`
	Category  string         `json:"category"`
	UnitPrice int64          `json:"unitPrice"`
	Qty       int            `json:"qty"`
	Extras    []previewExtra `json:"extras"`
}

type previewExtra struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

type previewResponse struct {
	Discount pricing.Money `json:"discount"`
	OfferID  string        `json:"offerId,omitempty"`
}

// defaultOfferPageSize bounds the admin offer listing per page.
const defaultOfferPageSize = 50

// List handles GET /api/v1/admin/offers with lenient pagination.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "offer service not configured", nil)
		return
	}
	page, perPage := common.ParsePagination(r, defaultOfferPageSize)
	offers, total, err := h.Svc.List(r.Context(), perPage, common.Offset(page, perPage))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       offers,
		"pagination": common.Pagination{Page: page, PerPage: perPage, TotalItems: int(total)},
	})
}

// Get handles GET /api/v1/admin/offers/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "offer service not configured", nil)
		return
	}
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "id is required", nil)
		return
	}
	o, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": o})
}

// Create handles POST /api/v1/admin/offers.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "offer service not configured", nil)
		return
	}
	var payload Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	created, err := h.Svc.Create(r.Context(), payload)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": created})
}

// Update handles PUT /api/v1/admin/offers/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "offer service not configured", nil)
		return
	}
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "id is required", nil)
		return
	}
	var payload Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	updated, err := h.Svc.Update(r.Context(), id, payload)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": updated})
}

// Delete handles DELETE /api/v1/admin/offers/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "offer service not configured", nil)
		return
	}
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "id is required", nil)
		return
	}
	if err := h.Svc.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]string{"id": id}})
}

// Preview handles POST /api/v1/offers/preview: it evaluates active offers
// against the supplied cart lines without persisting state.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "offer service not configured", nil)
		return
	}
	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	lines := make([]promo.CartLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		line := promo.CartLine{
			ProductID: l.ProductID,
			Category:  l.Category,
			UnitPrice: pricing.Money(l.UnitPrice),
			Qty:       l.Qty,
		}
		for _, ex := range l.Extras {
			line.Extras = append(line.Extras, promo.Extra{ID: ex.ID, Name: ex.Name, Price: pricing.Money(ex.Price)})
		}
		lines = append(lines, line)
	}
	selection, err := h.Svc.Preview(r.Context(), lines)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": previewResponse{Discount: selection.Discount, OfferID: selection.OfferID}})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		common.JSONError(w, status, appErr.Code, appErr.Message, appErr.Details)
		return
	}
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
}

package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/techzone/storefront/internal/domain/promotion"
)

type createPromotionRequest struct {
	Name               string          `json:"name"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	ValidUntil         time.Time       `json:"validUntil"`
	ProductIDs         []int64         `json:"productIds"`
}

type promotionResponse struct {
	ID                 int64           `json:"id"`
	Name               string          `json:"name"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	ValidUntil         time.Time       `json:"validUntil"`
	IsActive           bool            `json:"isActive"`
	ProductIDs         []int64         `json:"productIds"`
}

func toPromotionResponse(p *promotion.Promotion) promotionResponse {
	return promotionResponse{
		ID:                 p.ID,
		Name:               p.Name,
		DiscountPercentage: p.DiscountPercentage,
		ValidUntil:         p.ValidUntil,
		IsActive:           p.IsActive,
		ProductIDs:         p.ProductIDs,
	}
}

func (h *Handler) createPromotion(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	var req createPromotionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.promotions.Create(r.Context(), promotion.CreateRequest{
		Name:               req.Name,
		DiscountPercentage: req.DiscountPercentage,
		ValidUntil:         req.ValidUntil,
		ProductIDs:         req.ProductIDs,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPromotionResponse(p))
}

func (h *Handler) listPromotions(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	page, limit := pageParams(r)
	promos, err := h.promotions.List(r.Context(), page, limit)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := make([]promotionResponse, len(promos))
	for i := range promos {
		resp[i] = toPromotionResponse(&promos[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) applyPromotion(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid promotion id")
		return
	}
	if err := h.promotions.Apply(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deactivatePromotion(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid promotion id")
		return
	}
	if err := h.promotions.Deactivate(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deletePromotion(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid promotion id")
		return
	}
	if err := h.promotions.Delete(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) clearExpiredPromotions(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	if err := h.promotions.ClearExpired(r.Context()); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

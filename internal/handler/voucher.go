package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/techzone/storefront/internal/domain/voucher"
)

type createVoucherRequest struct {
	Name               string          `json:"name"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	Description        string          `json:"description"`
	// ExpiresAt defaults to one month from creation when omitted.
	ExpiresAt *time.Time `json:"expiresAt"`
}

func (h *Handler) createVoucher(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	var req createVoucherRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cr := voucher.CreateRequest{
		Name:               req.Name,
		DiscountPercentage: req.DiscountPercentage,
		Description:        req.Description,
	}
	if req.ExpiresAt != nil {
		cr.ExpiresAt = *req.ExpiresAt
	}

	code, err := h.vouchers.Create(r.Context(), cr)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"code": code})
}

func (h *Handler) listVouchers(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	page, limit := pageParams(r)
	codes, err := h.vouchers.ListCodes(r.Context(), page, limit)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, codes)
}

func (h *Handler) activateVoucher(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	if err := h.vouchers.Activate(r.Context(), r.PathValue("code")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deactivateVoucher(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	if err := h.vouchers.Deactivate(r.Context(), r.PathValue("code")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteVoucher(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	if err := h.vouchers.Delete(r.Context(), r.PathValue("code")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// canUseVoucher is the read-only usability probe clients call before
// checkout. Redemption itself happens inside order creation.
func (h *Handler) canUseVoucher(w http.ResponseWriter, r *http.Request) {
	usable, err := h.vouchers.IsUsable(r.Context(), r.PathValue("code"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"usable": usable})
}

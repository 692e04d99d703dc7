// Package handler exposes the storefront services over a small JSON API.
// Authentication happens upstream; the gateway forwards the caller identity
// in X-User-ID and X-User-Role headers.
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/techzone/storefront/internal/domain/catalog"
	"github.com/techzone/storefront/internal/domain/order"
	"github.com/techzone/storefront/internal/domain/pagination"
	"github.com/techzone/storefront/internal/domain/payment"
	"github.com/techzone/storefront/internal/domain/promotion"
	"github.com/techzone/storefront/internal/domain/shipping"
	"github.com/techzone/storefront/internal/domain/voucher"
)

// Handler routes API requests to the domain services.
type Handler struct {
	products   catalog.Repository
	orders     *order.Service
	promotions *promotion.Service
	vouchers   *voucher.Service
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	products catalog.Repository,
	orders *order.Service,
	promotions *promotion.Service,
	vouchers *voucher.Service,
) *Handler {
	return &Handler{
		products:   products,
		orders:     orders,
		promotions: promotions,
		vouchers:   vouchers,
	}
}

// Register attaches all API routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("GET /api/products/{id}", h.getProduct)

	mux.HandleFunc("POST /api/orders", h.createOrder)
	mux.HandleFunc("GET /api/orders", h.listOrders)
	mux.HandleFunc("GET /api/orders/{id}", h.getOrder)
	mux.HandleFunc("PUT /api/orders/{id}", h.updateOrder)
	mux.HandleFunc("DELETE /api/orders/{id}", h.deleteOrder)
	mux.HandleFunc("PUT /api/orders/{id}/process", h.processOrder)
	mux.HandleFunc("PUT /api/orders/{id}/deliver", h.deliverOrder)
	mux.HandleFunc("PUT /api/orders/{id}/cancel", h.cancelOrder)
	mux.HandleFunc("GET /api/customers/{id}/orders", h.listCustomerOrders)
	mux.HandleFunc("GET /api/customers/{id}/order-total", h.customerOrderTotal)

	mux.HandleFunc("POST /api/promotions", h.createPromotion)
	mux.HandleFunc("GET /api/promotions", h.listPromotions)
	mux.HandleFunc("POST /api/promotions/{id}/apply", h.applyPromotion)
	mux.HandleFunc("POST /api/promotions/{id}/deactivate", h.deactivatePromotion)
	mux.HandleFunc("DELETE /api/promotions/{id}", h.deletePromotion)
	mux.HandleFunc("POST /api/promotions/clear-expired", h.clearExpiredPromotions)

	mux.HandleFunc("POST /api/vouchers", h.createVoucher)
	mux.HandleFunc("GET /api/vouchers", h.listVouchers)
	mux.HandleFunc("PUT /api/vouchers/{code}/activate", h.activateVoucher)
	mux.HandleFunc("PUT /api/vouchers/{code}/deactivate", h.deactivateVoucher)
	mux.HandleFunc("DELETE /api/vouchers/{code}", h.deleteVoucher)
	mux.HandleFunc("GET /api/vouchers/{code}/can-use", h.canUseVoucher)
}

// actorFrom builds the caller identity from the gateway-injected headers.
func actorFrom(r *http.Request) order.Actor {
	roles := strings.Split(r.Header.Get("X-User-Role"), ",")
	admin := false
	for _, role := range roles {
		if strings.EqualFold(strings.TrimSpace(role), "admin") {
			admin = true
			break
		}
	}
	return order.Actor{
		UserID: r.Header.Get("X-User-ID"),
		Admin:  admin,
	}
}

// requireAdmin writes 403 and returns false when the caller is not an admin.
func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if !actorFrom(r).Admin {
		writeError(w, http.StatusForbidden, "admin role required")
		return false
	}
	return true
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Code: status, Message: msg})
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// pageParams parses 1-indexed pagination query parameters with defaults.
func pageParams(r *http.Request) (page, limit int) {
	page, limit = 1, 10
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			page = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	return page, limit
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// writeDomainError maps domain errors to HTTP responses. Unmatched errors are
// logged and reported as 500 without leaking internals.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		pnf *order.ProductNotFoundError
		iq  *order.InvalidQuantityError
		ic  *order.InvalidColorError
		is  *order.InvalidStorageError
		smm *order.StorageModifierMismatchError
		pag *pagination.InvalidError
	)

	switch {
	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, promotion.ErrNotFound),
		errors.Is(err, voucher.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, order.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &pnf), errors.As(err, &iq), errors.As(err, &ic),
		errors.As(err, &is), errors.As(err, &smm),
		errors.Is(err, order.ErrEmptyLines),
		errors.Is(err, order.ErrInvalidPaymentMethod),
		isInvalidShipping(err),
		errors.As(err, &pag),
		errors.Is(err, promotion.ErrExpired):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case isPaymentDeclined(err):
		writeError(w, http.StatusPaymentRequired, "payment declined")
	case errors.Is(err, voucher.ErrAlreadyUsed):
		writeError(w, http.StatusConflict, err.Error())
	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func isInvalidShipping(err error) bool {
	var e *shipping.InvalidMethodError
	return errors.As(err, &e)
}

func isPaymentDeclined(err error) bool {
	return errors.Is(err, payment.ErrDeclined)
}

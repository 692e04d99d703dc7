package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/techzone/storefront/internal/domain/catalog"
)

type productResponse struct {
	ID               int64             `json:"id"`
	Name             string            `json:"name"`
	Price            decimal.Decimal   `json:"price"`
	DiscountPrice    *decimal.Decimal  `json:"discountPrice,omitempty"`
	Colors           []string          `json:"colors"`
	StorageOptions   []string          `json:"storageOptions"`
	StorageModifiers []decimal.Decimal `json:"storageModifiers"`
	Stock            int               `json:"stock"`
	IsBestSeller     bool              `json:"isBestSeller"`
	IsFeatured       bool              `json:"isFeatured"`
	IsNewArrival     bool              `json:"isNewArrival"`
	Description      string            `json:"description"`
	Images           []string          `json:"images"`
}

func toProductResponse(p *catalog.Product) productResponse {
	return productResponse{
		ID:               p.ID,
		Name:             p.Name,
		Price:            p.Price,
		DiscountPrice:    p.DiscountPrice,
		Colors:           p.Colors,
		StorageOptions:   p.StorageOptions,
		StorageModifiers: p.StorageModifiers,
		Stock:            p.Stock,
		IsBestSeller:     p.IsBestSeller,
		IsFeatured:       p.IsFeatured,
		IsNewArrival:     p.IsNewArrival,
		Description:      p.Description,
		Images:           p.Images,
	}
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := make([]productResponse, len(products))
	for i := range products {
		resp[i] = toProductResponse(&products[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

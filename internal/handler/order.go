package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/techzone/storefront/internal/domain/order"
	"github.com/techzone/storefront/internal/domain/payment"
	"github.com/techzone/storefront/internal/domain/shipping"
)

type lineRequest struct {
	ProductID       int64           `json:"productId"`
	Quantity        int             `json:"quantity"`
	Color           string          `json:"color"`
	Storage         string          `json:"storage"`
	StorageModifier decimal.Decimal `json:"storageModifier"`
}

type createOrderRequest struct {
	CustomerName   string        `json:"customerName"`
	Province       string        `json:"province"`
	District       string        `json:"district"`
	Address        string        `json:"address"`
	PhoneNumber    string        `json:"phoneNumber"`
	PaymentMethod  string        `json:"paymentMethod"`
	ShippingMethod string        `json:"shippingMethod"`
	CardNumber     string        `json:"cardNumber"`
	CardHolder     string        `json:"cardHolder"`
	CardExpireDate string        `json:"cardExpireDate"`
	CardCvv        string        `json:"cardCvv"`
	VoucherCode    string        `json:"voucherCode"`
	Lines          []lineRequest `json:"lines"`
}

type updateOrderRequest struct {
	Province      *string    `json:"province"`
	District      *string    `json:"district"`
	Address       *string    `json:"address"`
	PaymentMethod *string    `json:"paymentMethod"`
	Status        *string    `json:"status"`
	Lines         []lineJSON `json:"lines"`
}

type lineJSON struct {
	ProductID       int64           `json:"productId"`
	Quantity        int             `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	Color           string          `json:"color"`
	Storage         string          `json:"storage"`
	StorageModifier decimal.Decimal `json:"storageModifier"`
}

type orderResponse struct {
	ID              string           `json:"id"`
	UserID          string           `json:"userId,omitempty"`
	CustomerName    string           `json:"customerName"`
	Status          string           `json:"status"`
	OrderDate       string           `json:"orderDate"`
	PaymentMethod   string           `json:"paymentMethod"`
	Province        string           `json:"province"`
	District        string           `json:"district"`
	Address         string           `json:"address"`
	PhoneNumber     string           `json:"phoneNumber"`
	ShippingMethod  string           `json:"shippingMethod"`
	ShippingFee     decimal.Decimal  `json:"shippingFee"`
	TrackingID      string           `json:"trackingId"`
	Tax             decimal.Decimal  `json:"tax"`
	VoucherCode     string           `json:"voucherCode,omitempty"`
	VoucherDiscount *decimal.Decimal `json:"voucherDiscount,omitempty"`
	Subtotal        decimal.Decimal  `json:"subtotal"`
	Total           decimal.Decimal  `json:"total"`
	Lines           []lineJSON       `json:"lines"`
}

func toOrderResponse(o *order.Order) orderResponse {
	lines := make([]lineJSON, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = lineJSON{
			ProductID:       l.ProductID,
			Quantity:        l.Quantity,
			Price:           l.Price,
			Color:           l.Color,
			Storage:         l.Storage,
			StorageModifier: l.StorageModifier,
		}
	}
	return orderResponse{
		ID:              o.ID,
		UserID:          o.UserID,
		CustomerName:    o.CustomerName,
		Status:          string(o.Status),
		OrderDate:       o.OrderDate.Format("2006-01-02T15:04:05Z07:00"),
		PaymentMethod:   string(o.PaymentMethod),
		Province:        o.Province,
		District:        o.District,
		Address:         o.Address,
		PhoneNumber:     o.PhoneNumber,
		ShippingMethod:  string(o.ShippingMethod),
		ShippingFee:     o.ShippingFee,
		TrackingID:      o.TrackingID,
		Tax:             o.Tax,
		VoucherCode:     o.VoucherCode,
		VoucherDiscount: o.VoucherDiscount,
		Subtotal:        o.Subtotal(),
		Total:           o.Total(),
		Lines:           lines,
	}
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lines := make([]order.LineRequest, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = order.LineRequest{
			ProductID:       l.ProductID,
			Quantity:        l.Quantity,
			Color:           l.Color,
			Storage:         l.Storage,
			StorageModifier: l.StorageModifier,
		}
	}

	o, err := h.orders.Create(r.Context(), order.CreateRequest{
		UserID:         actorFrom(r).UserID,
		CustomerName:   req.CustomerName,
		Province:       req.Province,
		District:       req.District,
		Address:        req.Address,
		PhoneNumber:    req.PhoneNumber,
		PaymentMethod:  payment.Method(req.PaymentMethod),
		ShippingMethod: shipping.Method(req.ShippingMethod),
		Instrument: payment.Instrument{
			CardNumber:     req.CardNumber,
			CardHolder:     req.CardHolder,
			CardExpireDate: req.CardExpireDate,
			CardCvv:        req.CardCvv,
		},
		VoucherCode: req.VoucherCode,
		Lines:       lines,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(o))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	var req updateOrderRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	upd := order.UpdateRequest{
		Province: req.Province,
		District: req.District,
		Address:  req.Address,
	}
	if req.PaymentMethod != nil {
		m := payment.Method(*req.PaymentMethod)
		upd.PaymentMethod = &m
	}
	if req.Status != nil {
		s := order.Status(*req.Status)
		upd.Status = &s
	}
	if req.Lines != nil {
		upd.Lines = make([]order.Line, len(req.Lines))
		for i, l := range req.Lines {
			upd.Lines[i] = order.Line{
				ProductID:       l.ProductID,
				Quantity:        l.Quantity,
				Price:           l.Price,
				Color:           l.Color,
				Storage:         l.Storage,
				StorageModifier: l.StorageModifier,
			}
		}
	}

	o, err := h.orders.Update(r.Context(), r.PathValue("id"), upd)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.Delete(r.Context(), r.PathValue("id"), actorFrom(r)); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) processOrder(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	if err := h.orders.Process(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deliverOrder(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	if err := h.orders.Deliver(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.Cancel(r.Context(), r.PathValue("id"), actorFrom(r)); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listOrders is the admin listing with optional status, payment method and
// user filters.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	var f order.Filter
	q := r.URL.Query()
	if v := q.Get("status"); v != "" {
		s := order.Status(v)
		f.Status = &s
	}
	if v := q.Get("paymentMethod"); v != "" {
		m := payment.Method(v)
		f.PaymentMethod = &m
	}
	if v := q.Get("userId"); v != "" {
		f.UserID = &v
	}

	page, limit := pageParams(r)
	orders, err := h.orders.ListFilter(r.Context(), f, page, limit)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := make([]orderResponse, len(orders))
	for i := range orders {
		resp[i] = toOrderResponse(&orders[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) listCustomerOrders(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	actor := actorFrom(r)
	if !actor.Admin && actor.UserID != userID {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	page, limit := pageParams(r)
	orders, err := h.orders.ListByCustomer(r.Context(), userID, page, limit)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := make([]orderResponse, len(orders))
	for i := range orders {
		resp[i] = toOrderResponse(&orders[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) customerOrderTotal(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	total, err := h.orders.TotalValueFromCustomer(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"total": total})
}

package httpapi

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"warungpos/backend/internal/billing"
	"warungpos/backend/internal/domain"
	"warungpos/backend/internal/ledger"
	"warungpos/backend/internal/receipt"
)

type addItemRequest struct {
	ProductID string `json:"productId"`
	Qty       *int   `json:"qty"`
}

type patchItemRequest struct {
	Qty   *int             `json:"qty"`
	Name  *string          `json:"name"`
	Price *decimal.Decimal `json:"price"`
}

type checkoutRequest struct {
	Customer *domain.CustomerInfo `json:"customer"`
}

func (a *API) handleGetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.service.Cart())
}

func (a *API) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}
	qty := 1
	if req.Qty != nil {
		qty = *req.Qty
	}
	view, err := a.service.AddItem(strings.TrimSpace(req.ProductID), qty)
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handlePatchItem applies the given fields in order name, price, qty. A
// refused quantity is not an error: the cart comes back unchanged with a
// warning.
func (a *API) handlePatchItem(w http.ResponseWriter, r *http.Request) {
	var req patchItemRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}
	itemID := chi.URLParam(r, "id")

	view := a.service.Cart()
	var err error
	if req.Name != nil {
		if view, err = a.service.SetItemName(itemID, *req.Name); err != nil {
			a.fail(w, err)
			return
		}
	}
	if req.Price != nil {
		if view, err = a.service.SetItemPrice(itemID, *req.Price); err != nil {
			a.fail(w, err)
			return
		}
	}
	resp := map[string]any{"cart": view}
	if req.Qty != nil {
		view, err = a.service.SetItemQuantity(itemID, *req.Qty)
		resp["cart"] = view
		if errors.Is(err, billing.ErrItemNotInCart) {
			a.fail(w, err)
			return
		}
		if err != nil {
			resp["warning"] = err.Error()
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	view, err := a.service.RemoveItem(chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *API) handleSetCustomer(w http.ResponseWriter, r *http.Request) {
	var req domain.CustomerInfo
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, a.service.SetCustomer(req))
}

func (a *API) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}
	order, err := a.service.Checkout(r.Context(), req.Customer)
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (a *API) handleCancelCart(w http.ResponseWriter, r *http.Request) {
	view, err := a.service.CancelCart(r.Context())
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func orderQuery(query url.Values) ledger.Query {
	return ledger.Query{
		Search: query.Get("q"),
		From:   strings.TrimSpace(query.Get("from")),
		To:     strings.TrimSpace(query.Get("to")),
	}
}

func (a *API) handleListOrders(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	orders := a.service.Orders(orderQuery(query))
	limit := parsePositiveLimit(query.Get("limit"), len(orders), 5000)
	if limit < len(orders) {
		orders = orders[:limit]
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": orders})
}

func (a *API) handleClearOrders(w http.ResponseWriter, r *http.Request) {
	if err := a.service.ClearHistory(r.Context()); err != nil {
		a.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := a.service.Order(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (a *API) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := a.service.DeleteOrder(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleBeginEdit(w http.ResponseWriter, r *http.Request) {
	view, err := a.service.BeginEdit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *API) handleReceipt(w http.ResponseWriter, r *http.Request) {
	layout, err := a.service.Receipt(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, err)
		return
	}

	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format"))) {
	case "pdf":
		data, err := receipt.PDF(layout)
		if err != nil {
			a.fail(w, err)
			return
		}
		writeFile(w, "application/pdf", "receipt-"+layout.OrderID+".pdf", data)
	case "escpos":
		writeJSON(w, http.StatusOK, receipt.ESCPOS(layout))
	default:
		page, err := receipt.HTML(layout)
		if err != nil {
			a.fail(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	}
}

// handleReceiptBundle zips the receipts of every order matching the history
// filter.
func (a *API) handleReceiptBundle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	format := strings.ToLower(strings.TrimSpace(query.Get("format")))
	if format == "" {
		format = "pdf"
	}
	if format != "pdf" && format != "html" {
		a.writeError(w, http.StatusBadRequest, errors.New("format must be pdf or html"))
		return
	}

	layouts := a.service.Receipts(orderQuery(query))
	if len(layouts) == 0 {
		a.writeError(w, http.StatusNotFound, errors.New("no orders match the filter"))
		return
	}
	data, err := receipt.Bundle(layouts, format)
	if err != nil {
		a.fail(w, err)
		return
	}
	writeFile(w, "application/zip", receipt.BundleFileName, data)
}

package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"ordena.org/internal/authz"
	"ordena.org/internal/order"
	"ordena.org/internal/token"
	"ordena.org/internal/userdir"
)

type orderRequest struct {
	CustomerName string           `json:"customer_name"`
	Status       string           `json:"status"`
	TotalPrice   int64            `json:"total_price"`
	Items        []order.LineItem `json:"items"`
}

func (req orderRequest) draft() (order.Draft, error) {
	status, err := order.ParseStatus(req.Status)
	if err != nil {
		return order.Draft{}, err
	}
	return order.Draft{
		Status:     status,
		TotalPrice: req.TotalPrice,
		Items:      req.Items,
	}, nil
}

func (a *API) handleOrders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listOrders(w, r)
	case http.MethodPost:
		a.createOrder(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleOrderResource(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/orders/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "resource not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		a.getOrder(w, r, id)
	case http.MethodPut:
		a.updateOrder(w, r, id)
	case http.MethodDelete:
		a.deleteOrder(w, r, id)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (a *API) listOrders(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	orders, err := a.orders.ListOrders(r.Context(), bearerToken(r), filter)
	if err != nil {
		handleOrderError(w, err)
		return
	}
	if orders == nil {
		orders = []order.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func (a *API) getOrder(w http.ResponseWriter, r *http.Request, id string) {
	rec, err := a.orders.GetOrder(r.Context(), bearerToken(r), id)
	if err != nil {
		handleOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (a *API) createOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	draft, err := req.draft()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rec, err := a.orders.CreateOrder(r.Context(), bearerToken(r), draft, req.CustomerName)
	if err != nil {
		handleOrderError(w, err)
		return
	}
	w.Header().Set("Location", "/v1/orders/"+rec.ID)
	writeJSON(w, http.StatusCreated, rec)
}

func (a *API) updateOrder(w http.ResponseWriter, r *http.Request, id string) {
	var req orderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	draft, err := req.draft()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rec, err := a.orders.UpdateOrder(r.Context(), bearerToken(r), id, draft, req.CustomerName)
	if err != nil {
		handleOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (a *API) deleteOrder(w http.ResponseWriter, r *http.Request, id string) {
	if err := a.orders.DeleteOrder(r.Context(), bearerToken(r), id); err != nil {
		handleOrderError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseListFilter(r *http.Request) (order.ListFilter, error) {
	var f order.ListFilter
	q := r.URL.Query()
	if raw := q.Get("status"); raw != "" {
		status, err := order.ParseStatus(raw)
		if err != nil {
			return order.ListFilter{}, err
		}
		f.Status = &status
	}
	if raw := q.Get("min_price"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return order.ListFilter{}, errors.New("min_price must be an integer")
		}
		f.MinPrice = &v
	}
	if raw := q.Get("max_price"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return order.ListFilter{}, errors.New("max_price must be an integer")
		}
		f.MaxPrice = &v
	}
	return f, nil
}

// handleOrderError maps domain errors onto status codes. Directory outages
// stay distinguishable from unknown customers: the former is a server-side
// failure, the latter a 404.
func handleOrderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, token.ErrMissing),
		errors.Is(err, token.ErrMalformed),
		errors.Is(err, token.ErrSignatureInvalid),
		errors.Is(err, token.ErrExpired),
		errors.Is(err, token.ErrClaimsFormat):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, authz.ErrAccessDenied):
		writeError(w, http.StatusForbidden, "access denied")
	case errors.Is(err, order.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrNotFound):
		writeError(w, http.StatusNotFound, "order not found")
	case errors.Is(err, userdir.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "customer not found")
	case errors.Is(err, userdir.ErrUnavailable):
		writeError(w, http.StatusInternalServerError, "user directory unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "order operation failed")
	}
}

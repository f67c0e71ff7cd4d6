package httpapi

import (
	"net/http"
	"strings"

	"ordena.org/internal/product"
)

func (a *API) handleProducts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		products, err := a.products.List(r.Context())
		if err != nil {
			handleProductError(w, err)
			return
		}
		if products == nil {
			products = []product.Product{}
		}
		writeJSON(w, http.StatusOK, products)
	case http.MethodPost:
		var draft product.Draft
		if err := decodeJSON(w, r, &draft); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		created, err := a.products.Create(r.Context(), draft)
		if err != nil {
			handleProductError(w, err)
			return
		}
		w.Header().Set("Location", "/v1/products/"+created.ID)
		writeJSON(w, http.StatusCreated, created)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleProductResource(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/products/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "resource not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		p, err := a.products.Get(r.Context(), id)
		if err != nil {
			handleProductError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	case http.MethodPut:
		var draft product.Draft
		if err := decodeJSON(w, r, &draft); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		updated, err := a.products.Update(r.Context(), id, draft)
		if err != nil {
			handleProductError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if err := a.products.Delete(r.Context(), id); err != nil {
			handleProductError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

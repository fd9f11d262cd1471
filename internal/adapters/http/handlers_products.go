package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mladenvic/promoaffiliate/internal/application"
	"github.com/mladenvic/promoaffiliate/internal/contracts"
	"github.com/mladenvic/promoaffiliate/internal/domain"
)

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeValidationError(r.Context(), w, "list_products", err)
		return
	}
	active, err := parseOptionalBool(r.URL.Query().Get("isActive"), "isActive")
	if err != nil {
		writeValidationError(r.Context(), w, "list_products", err)
		return
	}
	res, err := h.service.ListProducts(r.Context(), actorFromContext(r.Context()), application.ListProductsInput{
		PageInput: page,
		Category:  r.URL.Query().Get("category"),
		IsActive:  active,
	})
	if err != nil {
		writeMappedError(r.Context(), w, "list_products", err)
		return
	}
	writeSuccess(w, http.StatusOK, contracts.PageResponse[domain.Product]{
		Items:      res.Items,
		Pagination: pageInfo(res.Page, res.Limit, res.HasMore),
	})
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.GetProduct(r.Context(), actorFromContext(r.Context()), chi.URLParam(r, "productID"))
	if err != nil {
		writeMappedError(r.Context(), w, "get_product", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req contracts.ProductRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "create_product", err)
		return
	}
	res, err := h.service.CreateProduct(r.Context(), actorFromContext(r.Context()), productInput(req))
	if err != nil {
		writeMappedError(r.Context(), w, "create_product", err)
		return
	}
	writeSuccess(w, http.StatusCreated, res)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req contracts.ProductRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "update_product", err)
		return
	}
	res, err := h.service.UpdateProduct(r.Context(), actorFromContext(r.Context()), chi.URLParam(r, "productID"), productInput(req))
	if err != nil {
		writeMappedError(r.Context(), w, "update_product", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProduct(r.Context(), actorFromContext(r.Context()), chi.URLParam(r, "productID")); err != nil {
		writeMappedError(r.Context(), w, "delete_product", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func productInput(req contracts.ProductRequest) application.ProductInput {
	return application.ProductInput{
		Title:          req.Title,
		Description:    req.Description,
		Price:          req.Price,
		Category:       req.Category,
		CommissionRate: req.CommissionRate,
		CommissionType: req.CommissionType,
		ExternalURL:    req.ExternalURL,
		IsActive:       req.IsActive,
	}
}

package main

import (
	"encoding/json"
	"net/http"

	"github.com/safar/go-order-fulfillment/internal/store"
	"github.com/shopspring/decimal"
)

func decodeProductRequest(w http.ResponseWriter, r *http.Request) (store.ProductRequest, bool) {
	var req struct {
		Name         string  `json:"name"`
		Description  string  `json:"description"`
		Price        float64 `json:"price"`
		Category     string  `json:"category"`
		SKU          string  `json:"sku"`
		InitialStock int     `json:"initial_stock"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return store.ProductRequest{}, false
	}
	if req.Name == "" || req.SKU == "" {
		respondError(w, http.StatusBadRequest, "name and sku are required")
		return store.ProductRequest{}, false
	}
	if req.Price < 0 || req.InitialStock < 0 {
		respondError(w, http.StatusBadRequest, "price and initial_stock must not be negative")
		return store.ProductRequest{}, false
	}
	return store.ProductRequest{
		Name:         req.Name,
		Description:  req.Description,
		Price:        decimal.NewFromFloat(req.Price).Round(2),
		Category:     req.Category,
		SKU:          req.SKU,
		InitialStock: req.InitialStock,
	}, true
}

func (a *app) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeProductRequest(w, r)
	if !ok {
		return
	}

	product, err := store.CreateProduct(r.Context(), a.db, req)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, product)
}

func (a *app) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	product, err := store.GetProduct(r.Context(), a.db, id)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, product)
}

func (a *app) handleListProducts(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)

	result, err := store.ListProducts(r.Context(), a.db, page, pageSize)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (a *app) handleListProductsByCategory(w http.ResponseWriter, r *http.Request) {
	products, err := store.ListProductsByCategory(r.Context(), a.db, r.PathValue("category"))
	if err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, products)
}

func (a *app) handleListAvailableProducts(w http.ResponseWriter, r *http.Request) {
	products, err := store.ListAvailableProducts(r.Context(), a.db)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, products)
}

func (a *app) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	req, ok := decodeProductRequest(w, r)
	if !ok {
		return
	}

	product, err := store.UpdateProduct(r.Context(), a.db, id, req)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, product)
}

func (a *app) handleDeactivateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	if err := store.DeactivateProduct(r.Context(), a.db, id); err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

func (a *app) handleGetProductStock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	stock, err := store.GetStock(r.Context(), a.db, id)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, stock)
}

package main

import (
	"encoding/json"
	"net/http"

	"github.com/safar/go-order-fulfillment/internal/store"
)

func decodeCustomerRequest(w http.ResponseWriter, r *http.Request) (store.CustomerRequest, bool) {
	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Phone   string `json:"phone"`
		Address string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return store.CustomerRequest{}, false
	}
	if req.Name == "" || req.Email == "" {
		respondError(w, http.StatusBadRequest, "name and email are required")
		return store.CustomerRequest{}, false
	}
	return store.CustomerRequest{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	}, true
}

func (a *app) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCustomerRequest(w, r)
	if !ok {
		return
	}

	customer, err := store.CreateCustomer(r.Context(), a.db, req)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, customer)
}

func (a *app) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid customer ID")
		return
	}

	customer, err := store.GetCustomer(r.Context(), a.db, id)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, customer)
}

func (a *app) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)

	result, err := store.ListCustomers(r.Context(), a.db, page, pageSize)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (a *app) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid customer ID")
		return
	}

	req, ok := decodeCustomerRequest(w, r)
	if !ok {
		return
	}

	customer, err := store.UpdateCustomer(r.Context(), a.db, id, req)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, customer)
}

func (a *app) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid customer ID")
		return
	}

	if err := store.DeleteCustomer(r.Context(), a.db, id); err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

func (a *app) handleCustomerOrderHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid customer ID")
		return
	}

	orders, err := store.GetOrderHistory(r.Context(), a.db, id)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, orders)
}

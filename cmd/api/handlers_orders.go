package main

import (
	"encoding/json"
	"net/http"

	"github.com/safar/go-order-fulfillment/internal/store"
)

type orderItemPayload struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

func toItemRequests(w http.ResponseWriter, payload []orderItemPayload) ([]store.OrderItemRequest, bool) {
	if len(payload) == 0 {
		respondError(w, http.StatusBadRequest, "at least one item is required")
		return nil, false
	}

	items := make([]store.OrderItemRequest, 0, len(payload))
	for _, item := range payload {
		if item.ProductID < 1 || item.Quantity < 1 {
			respondError(w, http.StatusBadRequest, "item product_id and quantity must be positive")
			return nil, false
		}
		items = append(items, store.OrderItemRequest{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return items, true
}

func (a *app) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerID int64              `json:"customer_id"`
		Items      []orderItemPayload `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items, ok := toItemRequests(w, req.Items)
	if !ok {
		return
	}

	order, err := store.CreateOrder(r.Context(), a.db, store.CreateOrderRequest{
		CustomerID: req.CustomerID,
		Items:      items,
	})
	if err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, order)
}

func (a *app) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	order, err := store.GetOrder(r.Context(), a.db, id)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, order)
}

func (a *app) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := store.ListOrders(r.Context(), a.db)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, orders)
}

func (a *app) handleAddOrderItems(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	var req struct {
		Items []orderItemPayload `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items, ok := toItemRequests(w, req.Items)
	if !ok {
		return
	}

	order, err := store.AddOrderItems(r.Context(), a.db, id, items)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, order)
}

func (a *app) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := store.UpdateOrderStatus(r.Context(), a.db, id, req.Status)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, order)
}

func (a *app) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	if err := store.DeleteOrder(r.Context(), a.db, id); err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

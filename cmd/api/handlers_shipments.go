package main

import (
	"encoding/json"
	"net/http"

	"github.com/safar/go-order-fulfillment/internal/store"
)

func (a *app) handleCreateShipment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID               int64  `json:"order_id"`
		Carrier               string `json:"carrier"`
		EstimatedDeliveryDate string `json:"estimated_delivery_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OrderID < 1 || req.Carrier == "" {
		respondError(w, http.StatusBadRequest, "order_id and carrier are required")
		return
	}

	shipment, err := store.CreateShipment(r.Context(), a.db, req.OrderID, req.Carrier, req.EstimatedDeliveryDate)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, shipment)
}

func (a *app) handleGetShipment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid shipment ID")
		return
	}

	shipment, err := store.GetShipment(r.Context(), a.db, id)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, shipment)
}

func (a *app) handleListShipments(w http.ResponseWriter, r *http.Request) {
	shipments, err := store.ListShipments(r.Context(), a.db)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, shipments)
}

func (a *app) handleUpdateShipmentStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid shipment ID")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	shipment, err := store.UpdateShipmentStatus(r.Context(), a.db, id, req.Status)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, shipment)
}

func (a *app) handleTrackShipmentByOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(r, "orderId")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	shipment, err := store.TrackShipmentByOrderID(r.Context(), a.db, orderID)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, shipment)
}

func (a *app) handleTrackShipmentByCode(w http.ResponseWriter, r *http.Request) {
	shipment, err := store.TrackShipmentByCode(r.Context(), a.db, r.PathValue("code"))
	if err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, shipment)
}

func (a *app) handleDeleteShipment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid shipment ID")
		return
	}

	if err := store.DeleteShipment(r.Context(), a.db, id); err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

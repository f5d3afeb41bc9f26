package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/safar/go-order-fulfillment/internal/database"
	"go.uber.org/zap"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// headers are already written, nothing left to do
		return
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondStoreError maps the domain error taxonomy onto HTTP statuses.
// Anything outside the taxonomy is logged and hidden behind an opaque
// 500.
func (a *app) respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case database.IsNotFound(err):
		respondError(w, http.StatusNotFound, err.Error())
	case database.IsRuleViolation(err):
		respondError(w, http.StatusConflict, err.Error())
	case database.IsUniqueViolation(err):
		respondError(w, http.StatusConflict, "duplicate value violates a unique constraint")
	default:
		a.log.Error("internal error", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

func pageParams(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

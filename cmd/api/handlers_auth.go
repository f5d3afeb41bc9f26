package main

import (
	"encoding/json"
	"net/http"

	"github.com/safar/go-order-fulfillment/internal/auth"
	"github.com/safar/go-order-fulfillment/internal/store"
)

type authResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (a *app) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
		Password  string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	hash, err := auth.HashPassword(req.Password, a.cfg.Auth.BcryptCost)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}

	user, err := store.CreateUser(r.Context(), a.db, req.FirstName, req.LastName, req.Email, hash, "ROLE_USER")
	if err != nil {
		a.respondStoreError(w, err)
		return
	}

	token, err := a.tokens.Generate(user.Email, user.Role)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, authResponse{Token: token, Email: user.Email, Role: user.Role})
}

func (a *app) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := store.GetUserByEmail(r.Context(), a.db, req.Email)
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		// same response for unknown email and wrong password
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := a.tokens.Generate(user.Email, user.Role)
	if err != nil {
		a.respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, authResponse{Token: token, Email: user.Email, Role: user.Role})
}

func (a *app) handleMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"email": claims.Subject,
		"role":  claims.Role,
	})
}

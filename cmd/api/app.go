package main

import (
	"database/sql"
	"net/http"

	"github.com/safar/go-order-fulfillment/internal/auth"
	"github.com/safar/go-order-fulfillment/internal/config"
	"go.uber.org/zap"
)

type app struct {
	db     *sql.DB
	cfg    *config.Config
	log    *zap.Logger
	tokens *auth.TokenManager
}

func (a *app) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/register", a.handleRegister)
	mux.HandleFunc("POST /api/auth/login", a.handleLogin)

	protected := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, a.requireAuth(h))
	}

	protected("GET /api/auth/me", a.handleMe)

	protected("POST /api/customers", a.handleCreateCustomer)
	protected("GET /api/customers", a.handleListCustomers)
	protected("GET /api/customers/{id}", a.handleGetCustomer)
	protected("PUT /api/customers/{id}", a.handleUpdateCustomer)
	protected("DELETE /api/customers/{id}", a.handleDeleteCustomer)
	protected("GET /api/customers/{id}/orders", a.handleCustomerOrderHistory)

	protected("POST /api/products", a.handleCreateProduct)
	protected("GET /api/products", a.handleListProducts)
	protected("GET /api/products/available", a.handleListAvailableProducts)
	protected("GET /api/products/category/{category}", a.handleListProductsByCategory)
	protected("GET /api/products/{id}", a.handleGetProduct)
	protected("PUT /api/products/{id}", a.handleUpdateProduct)
	protected("DELETE /api/products/{id}", a.handleDeactivateProduct)
	protected("GET /api/products/{id}/stock", a.handleGetProductStock)

	protected("POST /api/orders", a.handleCreateOrder)
	protected("GET /api/orders", a.handleListOrders)
	protected("GET /api/orders/{id}", a.handleGetOrder)
	protected("POST /api/orders/{id}/items", a.handleAddOrderItems)
	protected("PUT /api/orders/{id}/status", a.handleUpdateOrderStatus)
	protected("DELETE /api/orders/{id}", a.handleDeleteOrder)

	protected("POST /api/shipments", a.handleCreateShipment)
	protected("GET /api/shipments", a.handleListShipments)
	protected("GET /api/shipments/track/order/{orderId}", a.handleTrackShipmentByOrder)
	protected("GET /api/shipments/track/code/{code}", a.handleTrackShipmentByCode)
	protected("GET /api/shipments/{id}", a.handleGetShipment)
	protected("PUT /api/shipments/{id}/status", a.handleUpdateShipmentStatus)
	protected("DELETE /api/shipments/{id}", a.handleDeleteShipment)

	return mux
}

package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/safar/go-order-fulfillment/internal/database"
	"github.com/safar/go-order-fulfillment/internal/store"
)

func TestCreateProductNormalizesSKU(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	product, err := store.CreateProduct(ctx, db, store.ProductRequest{
		Name:         "Widget",
		Price:        decimal.RequireFromString("10.00"),
		SKU:          "  wgt-1 ",
		InitialStock: 5,
	})
	if err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}

	if product.SKU != "WGT-1" {
		t.Errorf("Expected SKU WGT-1, got %s", product.SKU)
	}
	if product.Stock == nil || product.Stock.Available != 5 {
		t.Errorf("Expected stock row with 5 available, got %+v", product.Stock)
	}

	// Duplicate detection works across case variants.
	_, err = store.CreateProduct(ctx, db, store.ProductRequest{
		Name:         "Other Widget",
		Price:        decimal.RequireFromString("12.00"),
		SKU:          "Wgt-1",
		InitialStock: 1,
	})
	if !database.IsRuleViolation(err) {
		t.Fatalf("Expected rule violation for duplicate SKU, got: %v", err)
	}
}

func TestDeactivateProduct(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	product := createTestProduct(t, db, "Widget", "WGT-1", "10.00", 5)

	if err := store.DeactivateProduct(ctx, db, product.ID); err != nil {
		t.Fatalf("Failed to deactivate product: %v", err)
	}

	// Second call is a no-op.
	if err := store.DeactivateProduct(ctx, db, product.ID); err != nil {
		t.Fatalf("Expected repeated deactivation to succeed, got: %v", err)
	}

	if _, err := store.GetProduct(ctx, db, product.ID); !errors.Is(err, database.ErrProductNotFound) {
		t.Errorf("Expected deactivated product invisible on read, got: %v", err)
	}
	if _, err := store.GetStock(ctx, db, product.ID); !errors.Is(err, database.ErrProductNotFound) {
		t.Errorf("Expected deactivated product's stock invisible, got: %v", err)
	}

	available, err := store.ListAvailableProducts(ctx, db)
	if err != nil {
		t.Fatalf("Failed to list available products: %v", err)
	}
	if len(available) != 0 {
		t.Errorf("Expected no available products, got %d", len(available))
	}

	// The full listing still carries the row for back-office views.
	page, err := store.ListProducts(ctx, db, 1, 20)
	if err != nil {
		t.Fatalf("Failed to list products: %v", err)
	}
	if page.Total != 1 {
		t.Errorf("Expected 1 product in the full listing, got %d", page.Total)
	}
}

func TestOrderingDeactivatedProductFails(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	customer := createTestCustomer(t, db, "Alice", "alice@example.com")
	product := createTestProduct(t, db, "Widget", "WGT-1", "10.00", 5)

	if err := store.DeactivateProduct(ctx, db, product.ID); err != nil {
		t.Fatalf("Failed to deactivate product: %v", err)
	}

	_, err := store.CreateOrder(ctx, db, store.CreateOrderRequest{
		CustomerID: customer.ID,
		Items: []store.OrderItemRequest{
			{ProductID: product.ID, Quantity: 1},
		},
	})
	if !database.IsRuleViolation(err) {
		t.Fatalf("Expected rule violation ordering deactivated product, got: %v", err)
	}
}

func TestUpdateProductReplacesStock(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	product := createTestProduct(t, db, "Widget", "WGT-1", "10.00", 5)

	updated, err := store.UpdateProduct(ctx, db, product.ID, store.ProductRequest{
		Name:         "Widget v2",
		Price:        decimal.RequireFromString("12.50"),
		Category:     "tools",
		SKU:          "WGT-2",
		InitialStock: 8,
	})
	if err != nil {
		t.Fatalf("Failed to update product: %v", err)
	}

	if updated.Name != "Widget v2" {
		t.Errorf("Expected name Widget v2, got %s", updated.Name)
	}
	if updated.SKU != "WGT-2" {
		t.Errorf("Expected SKU WGT-2, got %s", updated.SKU)
	}
	if updated.Price.StringFixed(2) != "12.50" {
		t.Errorf("Expected price 12.50, got %s", updated.Price.StringFixed(2))
	}
	if updated.Stock == nil || updated.Stock.Quantity != 8 {
		t.Errorf("Expected stock replaced with 8, got %+v", updated.Stock)
	}
}

func TestUpdateProductDuplicateSKU(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	createTestProduct(t, db, "Widget", "WGT-1", "10.00", 5)
	other := createTestProduct(t, db, "Gadget", "GDG-1", "20.00", 5)

	_, err := store.UpdateProduct(ctx, db, other.ID, store.ProductRequest{
		Name:         "Gadget",
		Price:        decimal.RequireFromString("20.00"),
		SKU:          "wgt-1",
		InitialStock: 5,
	})
	if !database.IsRuleViolation(err) {
		t.Fatalf("Expected rule violation for duplicate SKU, got: %v", err)
	}
}

func TestStockReservedFloor(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	product := createTestProduct(t, db, "Widget", "WGT-1", "10.00", 10)

	// Simulate a held reservation so the floor has something to catch.
	if _, err := db.ExecContext(ctx,
		`UPDATE stocks SET reserved_quantity = 4 WHERE product_id = $1`,
		product.ID); err != nil {
		t.Fatalf("Failed to seed reserved quantity: %v", err)
	}

	_, err := store.UpdateProduct(ctx, db, product.ID, store.ProductRequest{
		Name:         "Widget",
		Price:        decimal.RequireFromString("10.00"),
		SKU:          "WGT-1",
		InitialStock: 2,
	})
	if !errors.Is(err, database.ErrInvalidStockAdjustment) {
		t.Fatalf("Expected invalid stock adjustment below reserved floor, got: %v", err)
	}

	stock, err := store.GetStock(ctx, db, product.ID)
	if err != nil {
		t.Fatalf("Failed to get stock: %v", err)
	}
	if stock.Quantity != 10 {
		t.Errorf("Expected quantity untouched at 10, got %d", stock.Quantity)
	}
	if stock.Available != 6 {
		t.Errorf("Expected available 6, got %d", stock.Available)
	}
}

func TestListProductsByCategory(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	if _, err := store.CreateProduct(ctx, db, store.ProductRequest{
		Name: "Hammer", Price: decimal.RequireFromString("15.00"),
		Category: "tools", SKU: "HMR-1", InitialStock: 3,
	}); err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}
	if _, err := store.CreateProduct(ctx, db, store.ProductRequest{
		Name: "Apple", Price: decimal.RequireFromString("0.50"),
		Category: "food", SKU: "APL-1", InitialStock: 100,
	}); err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}

	tools, err := store.ListProductsByCategory(ctx, db, "tools")
	if err != nil {
		t.Fatalf("Failed to list by category: %v", err)
	}
	if len(tools) != 1 || tools[0].SKU != "HMR-1" {
		t.Errorf("Expected only HMR-1 in tools, got %+v", tools)
	}
}

func TestListAvailableProductsExcludesSoldOut(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	createTestProduct(t, db, "In stock", "INS-1", "5.00", 2)
	createTestProduct(t, db, "Sold out", "OUT-1", "5.00", 0)

	available, err := store.ListAvailableProducts(ctx, db)
	if err != nil {
		t.Fatalf("Failed to list available products: %v", err)
	}
	if len(available) != 1 || available[0].SKU != "INS-1" {
		t.Errorf("Expected only INS-1 available, got %+v", available)
	}
}

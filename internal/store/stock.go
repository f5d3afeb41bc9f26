package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/safar/go-order-fulfillment/internal/database"
	"github.com/safar/go-order-fulfillment/internal/models"
)

// GetStock returns the stock row for an active product. Deactivated
// products are reported as not found, same as the catalog read path.
func GetStock(ctx context.Context, db *sql.DB, productID int64) (*models.Stock, error) {
	var status models.ProductStatus
	err := db.QueryRowContext(ctx,
		`SELECT status FROM products WHERE id = $1`,
		productID).Scan(&status)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product status: %w", err)
	}
	if status == models.ProductStatusInactive {
		return nil, database.ErrProductNotFound
	}

	stock := &models.Stock{}
	err = db.QueryRowContext(ctx,
		`SELECT id, product_id, quantity, reserved_quantity, created_at, updated_at
		 FROM stocks
		 WHERE product_id = $1`,
		productID).Scan(
		&stock.ID,
		&stock.ProductID,
		&stock.Quantity,
		&stock.ReservedQuantity,
		&stock.CreatedAt,
		&stock.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrStockNotFound
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}

	stock.Available = stock.Quantity - stock.ReservedQuantity
	return stock, nil
}

// ReserveAndConsume decrements the product's on-hand quantity inside
// the caller's transaction. The stock row is locked first, then the
// decrement is guarded again in SQL so two orders racing for the same
// product can never drive availability negative.
func ReserveAndConsume(ctx context.Context, tx *sql.Tx, product *models.Product, quantity int) error {
	var onHand, reserved int
	err := tx.QueryRowContext(ctx,
		`SELECT quantity, reserved_quantity
		 FROM stocks
		 WHERE product_id = $1
		 FOR UPDATE`,
		product.ID).Scan(&onHand, &reserved)
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w for product id %d", database.ErrStockNotFound, product.ID)
		}
		return fmt.Errorf("lock stock: %w", err)
	}

	available := onHand - reserved
	if available < quantity {
		return fmt.Errorf("%w for %s: available %d, requested %d",
			database.ErrInsufficientStock, product.Name, available, quantity)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE stocks
		 SET quantity = quantity - $1,
		     updated_at = NOW()
		 WHERE product_id = $2
		   AND quantity - reserved_quantity >= $1`,
		quantity, product.ID)
	if err != nil {
		return fmt.Errorf("consume stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w for %s", database.ErrInsufficientStock, product.Name)
	}

	return nil
}

// RestoreStock returns quantity to the ledger when a still-cancellable
// order is deleted. A missing stock row is skipped, not an error.
func RestoreStock(ctx context.Context, tx *sql.Tx, productID int64, quantity int) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE stocks
		 SET quantity = quantity + $1,
		     updated_at = NOW()
		 WHERE product_id = $2`,
		quantity, productID)
	if err != nil {
		return fmt.Errorf("restore stock: %w", err)
	}
	return nil
}

// SetStockQuantity replaces the on-hand quantity. The reserved quantity
// acts as a floor for the new value.
func SetStockQuantity(ctx context.Context, tx *sql.Tx, productID int64, newQuantity int) error {
	var reserved int
	err := tx.QueryRowContext(ctx,
		`SELECT reserved_quantity
		 FROM stocks
		 WHERE product_id = $1
		 FOR UPDATE`,
		productID).Scan(&reserved)
	if err != nil {
		if err == sql.ErrNoRows {
			return database.ErrStockNotFound
		}
		return fmt.Errorf("lock stock: %w", err)
	}

	if newQuantity < reserved {
		return database.ErrInvalidStockAdjustment
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE stocks
		 SET quantity = $1,
		     updated_at = NOW()
		 WHERE product_id = $2`,
		newQuantity, productID)
	if err != nil {
		return fmt.Errorf("set stock quantity: %w", err)
	}

	return nil
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/safar/go-order-fulfillment/internal/database"
	"github.com/safar/go-order-fulfillment/internal/models"
	"github.com/shopspring/decimal"
)

type ProductRequest struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
	SKU         string
	// InitialStock is the starting on-hand quantity on create, and the
	// replacement quantity on update.
	InitialStock int
}

func NormalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

const productColumns = `id, name, description, price, category, sku, status, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }, product *models.Product) error {
	return row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.Category,
		&product.SKU,
		&product.Status,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
}

// CreateProduct inserts the product and its stock row in one
// transaction. SKUs are stored uppercase and must be unique.
func CreateProduct(ctx context.Context, db *sql.DB, req ProductRequest) (*models.Product, error) {
	sku := NormalizeSKU(req.SKU)
	product := &models.Product{}

	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var exists bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM products WHERE sku = $1)`,
			sku).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check sku exists: %w", err)
		}
		if exists {
			return database.Rulef("product with SKU %s already exists", sku)
		}

		err = scanProduct(tx.QueryRowContext(ctx,
			`INSERT INTO products (name, description, price, category, sku, status, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, 'ACTIVE', NOW(), NOW())
			 RETURNING `+productColumns,
			req.Name, req.Description, req.Price, req.Category, sku), product)
		if err != nil {
			return fmt.Errorf("create product: %w", err)
		}

		stock := &models.Stock{}
		err = tx.QueryRowContext(ctx,
			`INSERT INTO stocks (product_id, quantity, reserved_quantity, created_at, updated_at)
			 VALUES ($1, $2, 0, NOW(), NOW())
			 RETURNING id, product_id, quantity, reserved_quantity, created_at, updated_at`,
			product.ID, req.InitialStock).Scan(
			&stock.ID,
			&stock.ProductID,
			&stock.Quantity,
			&stock.ReservedQuantity,
			&stock.CreatedAt,
			&stock.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("create stock: %w", err)
		}

		stock.Available = stock.Quantity - stock.ReservedQuantity
		product.Stock = stock
		return nil
	})
	if err != nil {
		return nil, err
	}

	return product, nil
}

// GetProduct is the catalog read path: deactivated products are
// invisible and reported as not found.
func GetProduct(ctx context.Context, db *sql.DB, id int64) (*models.Product, error) {
	product, err := getProductWithStock(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if product.Status == models.ProductStatusInactive {
		return nil, database.ErrProductNotFound
	}
	return product, nil
}

func getProductWithStock(ctx context.Context, db *sql.DB, id int64) (*models.Product, error) {
	product := &models.Product{}
	err := scanProduct(db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id), product)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	stock := &models.Stock{}
	err = db.QueryRowContext(ctx,
		`SELECT id, product_id, quantity, reserved_quantity, created_at, updated_at
		 FROM stocks WHERE product_id = $1`, id).Scan(
		&stock.ID,
		&stock.ProductID,
		&stock.Quantity,
		&stock.ReservedQuantity,
		&stock.CreatedAt,
		&stock.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return product, nil
		}
		return nil, fmt.Errorf("get product stock: %w", err)
	}

	stock.Available = stock.Quantity - stock.ReservedQuantity
	product.Stock = stock
	return product, nil
}

// GetOrderableProduct resolves a product for order-item attachment
// inside the caller's transaction. Unlike the read path, a deactivated
// product is a rule violation here, with a message naming the product.
func GetOrderableProduct(ctx context.Context, tx *sql.Tx, id int64) (*models.Product, error) {
	product := &models.Product{}
	err := scanProduct(tx.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id), product)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	if product.Status == models.ProductStatusInactive {
		return nil, database.Rulef("product %s is deactivated", product.Name)
	}

	return product, nil
}

func ListProducts(ctx context.Context, db *sql.DB, page, pageSize int) (*OffsetPage, error) {
	var total int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	offset := (page - 1) * pageSize
	products, err := queryProducts(ctx, db,
		`SELECT p.id, p.name, p.description, p.price, p.category, p.sku, p.status,
		        p.created_at, p.updated_at,
		        s.id, s.quantity, s.reserved_quantity, s.created_at, s.updated_at
		 FROM products p
		 LEFT JOIN stocks s ON s.product_id = p.id
		 ORDER BY p.created_at DESC
		 LIMIT $1 OFFSET $2`,
		pageSize, offset)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	return &OffsetPage{
		Items:      products,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

func ListProductsByCategory(ctx context.Context, db *sql.DB, category string) ([]models.Product, error) {
	return queryProducts(ctx, db,
		`SELECT p.id, p.name, p.description, p.price, p.category, p.sku, p.status,
		        p.created_at, p.updated_at,
		        s.id, s.quantity, s.reserved_quantity, s.created_at, s.updated_at
		 FROM products p
		 LEFT JOIN stocks s ON s.product_id = p.id
		 WHERE p.category = $1
		 ORDER BY p.created_at DESC`,
		category)
}

// ListAvailableProducts returns active products with positive available
// quantity.
func ListAvailableProducts(ctx context.Context, db *sql.DB) ([]models.Product, error) {
	return queryProducts(ctx, db,
		`SELECT p.id, p.name, p.description, p.price, p.category, p.sku, p.status,
		        p.created_at, p.updated_at,
		        s.id, s.quantity, s.reserved_quantity, s.created_at, s.updated_at
		 FROM products p
		 JOIN stocks s ON s.product_id = p.id
		 WHERE p.status = 'ACTIVE'
		   AND s.quantity - s.reserved_quantity > 0
		 ORDER BY p.created_at DESC`)
}

func queryProducts(ctx context.Context, db *sql.DB, query string, args ...any) ([]models.Product, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var product models.Product
		var stockID sql.NullInt64
		var quantity, reserved sql.NullInt64
		var stockCreated, stockUpdated sql.NullTime

		err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Description,
			&product.Price,
			&product.Category,
			&product.SKU,
			&product.Status,
			&product.CreatedAt,
			&product.UpdatedAt,
			&stockID,
			&quantity,
			&reserved,
			&stockCreated,
			&stockUpdated,
		)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}

		if stockID.Valid {
			product.Stock = &models.Stock{
				ID:               stockID.Int64,
				ProductID:        product.ID,
				Quantity:         int(quantity.Int64),
				ReservedQuantity: int(reserved.Int64),
				Available:        int(quantity.Int64 - reserved.Int64),
				CreatedAt:        stockCreated.Time,
				UpdatedAt:        stockUpdated.Time,
			}
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return products, nil
}

// UpdateProduct rewrites the catalog fields of an active product and
// replaces its stock quantity, keeping the reserved floor.
func UpdateProduct(ctx context.Context, db *sql.DB, id int64, req ProductRequest) (*models.Product, error) {
	sku := NormalizeSKU(req.SKU)

	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		current := &models.Product{}
		err := scanProduct(tx.QueryRowContext(ctx,
			`SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id), current)
		if err != nil {
			if err == sql.ErrNoRows {
				return database.ErrProductNotFound
			}
			return fmt.Errorf("get product: %w", err)
		}
		if current.Status == models.ProductStatusInactive {
			return database.ErrProductNotFound
		}

		if current.SKU != sku {
			var exists bool
			err := tx.QueryRowContext(ctx,
				`SELECT EXISTS(SELECT 1 FROM products WHERE sku = $1)`,
				sku).Scan(&exists)
			if err != nil {
				return fmt.Errorf("check sku exists: %w", err)
			}
			if exists {
				return database.Rulef("product with SKU %s already exists", sku)
			}
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE products
			 SET name = $1, description = $2, price = $3, category = $4, sku = $5, updated_at = NOW()
			 WHERE id = $6`,
			req.Name, req.Description, req.Price, req.Category, sku, id)
		if err != nil {
			return fmt.Errorf("update product: %w", err)
		}

		return SetStockQuantity(ctx, tx, id, req.InitialStock)
	})
	if err != nil {
		return nil, err
	}

	return GetProduct(ctx, db, id)
}

// DeactivateProduct flips the product to INACTIVE. Idempotent: a second
// call is a no-op. Stock rows and historical order items survive.
func DeactivateProduct(ctx context.Context, db *sql.DB, id int64) error {
	var status models.ProductStatus
	err := db.QueryRowContext(ctx,
		`SELECT status FROM products WHERE id = $1`, id).Scan(&status)
	if err != nil {
		if err == sql.ErrNoRows {
			return database.ErrProductNotFound
		}
		return fmt.Errorf("get product status: %w", err)
	}

	if status == models.ProductStatusInactive {
		return nil
	}

	_, err = db.ExecContext(ctx,
		`UPDATE products SET status = 'INACTIVE', updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate product: %w", err)
	}

	return nil
}

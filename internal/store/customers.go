package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/safar/go-order-fulfillment/internal/database"
	"github.com/safar/go-order-fulfillment/internal/models"
)

type CustomerRequest struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

const customerColumns = `id, name, email, phone, address, created_at, updated_at`

func scanCustomer(row interface{ Scan(...any) error }, customer *models.Customer) error {
	return row.Scan(
		&customer.ID,
		&customer.Name,
		&customer.Email,
		&customer.Phone,
		&customer.Address,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)
}

func CreateCustomer(ctx context.Context, db *sql.DB, req CustomerRequest) (*models.Customer, error) {
	email := NormalizeEmail(req.Email)

	var exists bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM customers WHERE email = $1)`,
		email).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check email exists: %w", err)
	}
	if exists {
		return nil, database.Rulef("customer with email %s already exists", email)
	}

	customer := &models.Customer{}
	err = scanCustomer(db.QueryRowContext(ctx,
		`INSERT INTO customers (name, email, phone, address, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, NOW(), NOW())
		 RETURNING `+customerColumns,
		req.Name, email, req.Phone, req.Address), customer)
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}

	return customer, nil
}

func GetCustomer(ctx context.Context, db *sql.DB, id int64) (*models.Customer, error) {
	customer := &models.Customer{}
	err := scanCustomer(db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = $1`, id), customer)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}

	orders, err := queryOrderSummaries(ctx, db, id)
	if err != nil {
		return nil, err
	}
	customer.Orders = orders

	return customer, nil
}

func ListCustomers(ctx context.Context, db *sql.DB, page, pageSize int) (*OffsetPage, error) {
	var total int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}

	offset := (page - 1) * pageSize
	rows, err := db.QueryContext(ctx,
		`SELECT `+customerColumns+`
		 FROM customers
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`,
		pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var customers []models.Customer
	for rows.Next() {
		var customer models.Customer
		if err := scanCustomer(rows, &customer); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, customer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	return &OffsetPage{
		Items:      customers,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

func UpdateCustomer(ctx context.Context, db *sql.DB, id int64, req CustomerRequest) (*models.Customer, error) {
	email := NormalizeEmail(req.Email)

	current := &models.Customer{}
	err := scanCustomer(db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = $1`, id), current)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}

	if current.Email != email {
		var exists bool
		err := db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM customers WHERE email = $1)`,
			email).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("check email exists: %w", err)
		}
		if exists {
			return nil, database.Rulef("customer with email %s already exists", email)
		}
	}

	_, err = db.ExecContext(ctx,
		`UPDATE customers
		 SET name = $1, email = $2, phone = $3, address = $4, updated_at = NOW()
		 WHERE id = $5`,
		req.Name, email, req.Phone, req.Address, id)
	if err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}

	return GetCustomer(ctx, db, id)
}

// DeleteCustomer always fails. Customers anchor order history and are
// never removed.
func DeleteCustomer(ctx context.Context, db *sql.DB, id int64) error {
	return database.Rulef("customer deletion is not allowed")
}

// GetOrderHistory returns the customer's orders, newest first, without
// line items.
func GetOrderHistory(ctx context.Context, db *sql.DB, customerID int64) ([]models.OrderSummary, error) {
	var exists bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM customers WHERE id = $1)`,
		customerID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check customer exists: %w", err)
	}
	if !exists {
		return nil, database.ErrCustomerNotFound
	}

	return queryOrderSummaries(ctx, db, customerID)
}

func queryOrderSummaries(ctx context.Context, db *sql.DB, customerID int64) ([]models.OrderSummary, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, status, total, created_at
		 FROM orders
		 WHERE customer_id = $1
		 ORDER BY created_at DESC`,
		customerID)
	if err != nil {
		return nil, fmt.Errorf("list customer orders: %w", err)
	}
	defer rows.Close()

	var orders []models.OrderSummary
	for rows.Next() {
		var order models.OrderSummary
		err := rows.Scan(&order.ID, &order.Status, &order.Total, &order.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan order summary: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return orders, nil
}

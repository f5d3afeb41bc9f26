package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/safar/go-order-fulfillment/internal/database"
	"github.com/safar/go-order-fulfillment/internal/models"
	"github.com/shopspring/decimal"
)

type CreateOrderRequest struct {
	CustomerID int64
	Items      []OrderItemRequest
}

type OrderItemRequest struct {
	ProductID int64
	Quantity  int
}

// CreateOrder opens a PENDING order and attaches the requested lines.
// Each line resolves an orderable product, consumes stock and captures
// the subtotal at the current price. Any line failure rolls back the
// whole order.
func CreateOrder(ctx context.Context, db *sql.DB, req CreateOrderRequest) (*models.Order, error) {
	var orderID int64

	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var exists bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM customers WHERE id = $1)`,
			req.CustomerID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check customer exists: %w", err)
		}
		if !exists {
			return database.ErrCustomerNotFound
		}

		err = tx.QueryRowContext(ctx,
			`INSERT INTO orders (customer_id, status, total, created_at, updated_at)
			 VALUES ($1, $2, 0, NOW(), NOW())
			 RETURNING id`,
			req.CustomerID, models.OrderStatusPending).Scan(&orderID)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		total, err := attachItems(ctx, tx, orderID, req.Items)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE orders SET total = $1, updated_at = NOW() WHERE id = $2`,
			total, orderID)
		if err != nil {
			return fmt.Errorf("set order total: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return GetOrder(ctx, db, orderID)
}

// attachItems runs the per-line flow shared by order creation and item
// addition, returning the total of the new lines.
func attachItems(ctx context.Context, tx *sql.Tx, orderID int64, items []OrderItemRequest) (decimal.Decimal, error) {
	total := decimal.Zero

	for _, item := range items {
		product, err := GetOrderableProduct(ctx, tx, item.ProductID)
		if err != nil {
			return decimal.Zero, err
		}

		if err := ReserveAndConsume(ctx, tx, product, item.Quantity); err != nil {
			return decimal.Zero, err
		}

		subtotal := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		_, err = tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, product_id, quantity, unit_price, subtotal, created_at)
			 VALUES ($1, $2, $3, $4, $5, NOW())`,
			orderID, product.ID, item.Quantity, product.Price, subtotal)
		if err != nil {
			return decimal.Zero, fmt.Errorf("create order item: %w", err)
		}

		total = total.Add(subtotal)
	}

	return total, nil
}

// AddOrderItems appends lines to an existing order. Only PENDING and
// CONFIRMED orders accept new items.
func AddOrderItems(ctx context.Context, db *sql.DB, orderID int64, items []OrderItemRequest) (*models.Order, error) {
	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var status models.OrderStatus
		err := tx.QueryRowContext(ctx,
			`SELECT status FROM orders WHERE id = $1 FOR UPDATE`,
			orderID).Scan(&status)
		if err != nil {
			if err == sql.ErrNoRows {
				return database.ErrOrderNotFound
			}
			return fmt.Errorf("lock order: %w", err)
		}

		if status != models.OrderStatusPending && status != models.OrderStatusConfirmed {
			return database.Rulef("cannot add items to order with status %s", status)
		}

		additional, err := attachItems(ctx, tx, orderID, items)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE orders SET total = total + $1, updated_at = NOW() WHERE id = $2`,
			additional, orderID)
		if err != nil {
			return fmt.Errorf("update order total: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return GetOrder(ctx, db, orderID)
}

// UpdateOrderStatus drives the order state machine. The transition is
// planned first, without mutation, then the order and its shipment are
// written together.
func UpdateOrderStatus(ctx context.Context, db *sql.DB, orderID int64, status string) (*models.Order, error) {
	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var current models.OrderStatus
		err := tx.QueryRowContext(ctx,
			`SELECT status FROM orders WHERE id = $1 FOR UPDATE`,
			orderID).Scan(&current)
		if err != nil {
			if err == sql.ErrNoRows {
				return database.ErrOrderNotFound
			}
			return fmt.Errorf("lock order: %w", err)
		}

		var shipmentStatus *models.ShipmentStatus
		var existing models.ShipmentStatus
		err = tx.QueryRowContext(ctx,
			`SELECT status FROM shipments WHERE order_id = $1 FOR UPDATE`,
			orderID).Scan(&existing)
		switch err {
		case nil:
			shipmentStatus = &existing
		case sql.ErrNoRows:
		default:
			return fmt.Errorf("lock shipment: %w", err)
		}

		plan, err := PlanOrderTransition(current, status, shipmentStatus)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`,
			plan.NewStatus, orderID)
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}

		if plan.CreateShipment {
			eta := time.Now().AddDate(0, 0, plan.DeliveryOffsetDays).Format("2006-01-02")
			err := insertShipment(ctx, tx, orderID, plan.ShipmentStatus, "Standard Carrier", eta)
			if err != nil {
				return err
			}
		}
		if plan.UpdateShipment {
			_, err := tx.ExecContext(ctx,
				`UPDATE shipments SET status = $1, updated_at = NOW() WHERE order_id = $2`,
				plan.ShipmentStatus, orderID)
			if err != nil {
				return fmt.Errorf("update shipment status: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return GetOrder(ctx, db, orderID)
}

// DeleteOrder removes an order with its items and shipment. Stock is
// restored only when the order was still PENDING or CONFIRMED; shipped
// and cancelled orders are deleted without restoration.
func DeleteOrder(ctx context.Context, db *sql.DB, orderID int64) error {
	return database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var status models.OrderStatus
		err := tx.QueryRowContext(ctx,
			`SELECT status FROM orders WHERE id = $1 FOR UPDATE`,
			orderID).Scan(&status)
		if err != nil {
			if err == sql.ErrNoRows {
				return database.ErrOrderNotFound
			}
			return fmt.Errorf("lock order: %w", err)
		}

		if status == models.OrderStatusPending || status == models.OrderStatusConfirmed {
			rows, err := tx.QueryContext(ctx,
				`SELECT product_id, quantity FROM order_items WHERE order_id = $1`,
				orderID)
			if err != nil {
				return fmt.Errorf("list order items: %w", err)
			}

			type line struct {
				productID int64
				quantity  int
			}
			var lines []line
			for rows.Next() {
				var l line
				if err := rows.Scan(&l.productID, &l.quantity); err != nil {
					rows.Close()
					return fmt.Errorf("scan order item: %w", err)
				}
				lines = append(lines, l)
			}
			if err := rows.Err(); err != nil {
				rows.Close()
				return fmt.Errorf("rows error: %w", err)
			}
			rows.Close()

			for _, l := range lines {
				if err := RestoreStock(ctx, tx, l.productID, l.quantity); err != nil {
					return err
				}
			}
		}

		// order_items and shipments cascade on delete
		_, err = tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
		if err != nil {
			return fmt.Errorf("delete order: %w", err)
		}

		return nil
	})
}

const orderColumns = `o.id, o.customer_id, o.status, o.total, o.created_at, o.updated_at,
	        c.name, c.email`

func GetOrder(ctx context.Context, db *sql.DB, id int64) (*models.Order, error) {
	order := &models.Order{Customer: &models.Customer{}}

	err := db.QueryRowContext(ctx,
		`SELECT `+orderColumns+`
		 FROM orders o
		 JOIN customers c ON c.id = o.customer_id
		 WHERE o.id = $1`,
		id).Scan(
		&order.ID,
		&order.CustomerID,
		&order.Status,
		&order.Total,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.Customer.Name,
		&order.Customer.Email,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	order.Customer.ID = order.CustomerID

	items, err := queryOrderItems(ctx, db, []int64{id})
	if err != nil {
		return nil, err
	}
	order.Items = items[id]

	shipments, err := queryOrderShipments(ctx, db, []int64{id})
	if err != nil {
		return nil, err
	}
	order.Shipment = shipments[id]

	return order, nil
}

// ListOrders returns every order with its customer, items and shipment.
func ListOrders(ctx context.Context, db *sql.DB) ([]models.Order, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+orderColumns+`
		 FROM orders o
		 JOIN customers c ON c.id = o.customer_id
		 ORDER BY o.created_at DESC, o.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	var ids []int64
	for rows.Next() {
		order := models.Order{Customer: &models.Customer{}}
		err := rows.Scan(
			&order.ID,
			&order.CustomerID,
			&order.Status,
			&order.Total,
			&order.CreatedAt,
			&order.UpdatedAt,
			&order.Customer.Name,
			&order.Customer.Email,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		order.Customer.ID = order.CustomerID
		orders = append(orders, order)
		ids = append(ids, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	if len(orders) == 0 {
		return orders, nil
	}

	items, err := queryOrderItems(ctx, db, ids)
	if err != nil {
		return nil, err
	}
	shipments, err := queryOrderShipments(ctx, db, ids)
	if err != nil {
		return nil, err
	}

	for i := range orders {
		orders[i].Items = items[orders[i].ID]
		orders[i].Shipment = shipments[orders[i].ID]
	}

	return orders, nil
}

func queryOrderItems(ctx context.Context, db *sql.DB, orderIDs []int64) (map[int64][]models.OrderItem, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT i.id, i.order_id, i.product_id, i.quantity, i.unit_price, i.subtotal, i.created_at,
		        p.name, p.sku
		 FROM order_items i
		 JOIN products p ON p.id = i.product_id
		 WHERE i.order_id = ANY($1)
		 ORDER BY i.id`,
		pq.Array(orderIDs))
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	items := make(map[int64][]models.OrderItem)
	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Quantity,
			&item.UnitPrice,
			&item.Subtotal,
			&item.CreatedAt,
			&item.ProductName,
			&item.ProductSKU,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items[item.OrderID] = append(items[item.OrderID], item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}

func queryOrderShipments(ctx context.Context, db *sql.DB, orderIDs []int64) (map[int64]*models.Shipment, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, order_id, tracking_code, status, carrier, estimated_delivery_date, created_at, updated_at
		 FROM shipments
		 WHERE order_id = ANY($1)`,
		pq.Array(orderIDs))
	if err != nil {
		return nil, fmt.Errorf("get shipments: %w", err)
	}
	defer rows.Close()

	shipments := make(map[int64]*models.Shipment)
	for rows.Next() {
		shipment := &models.Shipment{}
		err := rows.Scan(
			&shipment.ID,
			&shipment.OrderID,
			&shipment.TrackingCode,
			&shipment.Status,
			&shipment.Carrier,
			&shipment.EstimatedDeliveryDate,
			&shipment.CreatedAt,
			&shipment.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan shipment: %w", err)
		}
		shipments[shipment.OrderID] = shipment
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return shipments, nil
}

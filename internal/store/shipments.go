package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/safar/go-order-fulfillment/internal/database"
	"github.com/safar/go-order-fulfillment/internal/models"
)

// NewTrackingCode returns a fresh code in the TRK-XXXXXXXX format. The
// first eight characters of a UUID are hex digits, so the suffix stays
// within [A-Z0-9].
func NewTrackingCode() string {
	return "TRK-" + strings.ToUpper(uuid.NewString()[:8])
}

func insertShipment(ctx context.Context, tx *sql.Tx, orderID int64, status models.ShipmentStatus, carrier, estimatedDeliveryDate string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO shipments (order_id, tracking_code, status, carrier, estimated_delivery_date, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW(), NOW())`,
		orderID, NewTrackingCode(), status, carrier, estimatedDeliveryDate)
	if err != nil {
		return fmt.Errorf("create shipment: %w", err)
	}
	return nil
}

// CreateShipment attaches a shipment to an order that has none yet and
// forces the order to SHIPPED.
func CreateShipment(ctx context.Context, db *sql.DB, orderID int64, carrier, estimatedDeliveryDate string) (*models.Shipment, error) {
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

		var exists bool
		err = tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM shipments WHERE order_id = $1)`,
			orderID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check shipment exists: %w", err)
		}
		if exists {
			return database.Rulef("order %d already has a shipment", orderID)
		}

		if err := insertShipment(ctx, tx, orderID, models.ShipmentStatusPending, carrier, estimatedDeliveryDate); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`,
			models.OrderStatusShipped, orderID)
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return TrackShipmentByOrderID(ctx, db, orderID)
}

// UpdateShipmentStatus drives the shipment state machine. Marking a
// shipment RETURNED cancels its order as a side effect.
func UpdateShipmentStatus(ctx context.Context, db *sql.DB, shipmentID int64, status string) (*models.Shipment, error) {
	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var current models.ShipmentStatus
		var orderID int64
		err := tx.QueryRowContext(ctx,
			`SELECT status, order_id FROM shipments WHERE id = $1 FOR UPDATE`,
			shipmentID).Scan(&current, &orderID)
		if err != nil {
			if err == sql.ErrNoRows {
				return database.ErrShipmentNotFound
			}
			return fmt.Errorf("lock shipment: %w", err)
		}

		var orderStatus models.OrderStatus
		err = tx.QueryRowContext(ctx,
			`SELECT status FROM orders WHERE id = $1 FOR UPDATE`,
			orderID).Scan(&orderStatus)
		if err != nil {
			return fmt.Errorf("lock order: %w", err)
		}

		plan, err := PlanShipmentTransition(current, status, orderStatus)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE shipments SET status = $1, updated_at = NOW() WHERE id = $2`,
			plan.NewStatus, shipmentID)
		if err != nil {
			return fmt.Errorf("update shipment status: %w", err)
		}

		if plan.CancelOrder {
			_, err := tx.ExecContext(ctx,
				`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`,
				models.OrderStatusCancelled, orderID)
			if err != nil {
				return fmt.Errorf("cancel order: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return GetShipment(ctx, db, shipmentID)
}

const shipmentColumns = `s.id, s.order_id, s.tracking_code, s.status, s.carrier, s.estimated_delivery_date,
	        s.created_at, s.updated_at,
	        o.status, o.total, o.created_at`

func scanShipmentWithOrder(row interface{ Scan(...any) error }) (*models.Shipment, error) {
	shipment := &models.Shipment{Order: &models.OrderSummary{}}
	err := row.Scan(
		&shipment.ID,
		&shipment.OrderID,
		&shipment.TrackingCode,
		&shipment.Status,
		&shipment.Carrier,
		&shipment.EstimatedDeliveryDate,
		&shipment.CreatedAt,
		&shipment.UpdatedAt,
		&shipment.Order.Status,
		&shipment.Order.Total,
		&shipment.Order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	shipment.Order.ID = shipment.OrderID
	return shipment, nil
}

func getShipmentWhere(ctx context.Context, db *sql.DB, where string, arg any) (*models.Shipment, error) {
	shipment, err := scanShipmentWithOrder(db.QueryRowContext(ctx,
		`SELECT `+shipmentColumns+`
		 FROM shipments s
		 JOIN orders o ON o.id = s.order_id
		 WHERE `+where, arg))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrShipmentNotFound
		}
		return nil, fmt.Errorf("get shipment: %w", err)
	}
	return shipment, nil
}

func GetShipment(ctx context.Context, db *sql.DB, id int64) (*models.Shipment, error) {
	return getShipmentWhere(ctx, db, `s.id = $1`, id)
}

func TrackShipmentByOrderID(ctx context.Context, db *sql.DB, orderID int64) (*models.Shipment, error) {
	return getShipmentWhere(ctx, db, `s.order_id = $1`, orderID)
}

func TrackShipmentByCode(ctx context.Context, db *sql.DB, trackingCode string) (*models.Shipment, error) {
	return getShipmentWhere(ctx, db, `s.tracking_code = $1`, trackingCode)
}

func ListShipments(ctx context.Context, db *sql.DB) ([]models.Shipment, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+shipmentColumns+`
		 FROM shipments s
		 JOIN orders o ON o.id = s.order_id
		 ORDER BY s.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}
	defer rows.Close()

	var shipments []models.Shipment
	for rows.Next() {
		shipment, err := scanShipmentWithOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shipment: %w", err)
		}
		shipments = append(shipments, *shipment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return shipments, nil
}

// DeleteShipment detaches and removes a shipment. The owning order
// keeps its current status.
func DeleteShipment(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM shipments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete shipment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrShipmentNotFound
	}

	return nil
}

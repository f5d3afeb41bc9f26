package store

import (
	"github.com/safar/go-order-fulfillment/internal/database"
	"github.com/safar/go-order-fulfillment/internal/models"
)

// OrderTransition describes the shipment side effects a successful order
// status change requires. Planning is pure; the transaction in
// UpdateOrderStatus applies the effects.
type OrderTransition struct {
	NewStatus      models.OrderStatus
	CreateShipment bool
	UpdateShipment bool
	// ShipmentStatus is the status for the created or updated shipment.
	ShipmentStatus models.ShipmentStatus
	// DeliveryOffsetDays is the estimated delivery offset from now for a
	// shipment created by this transition.
	DeliveryOffsetDays int
}

// PlanOrderTransition validates an order status change and returns the
// required side effects. shipmentStatus is nil when the order has no
// shipment. Validation order: unknown status name, CANCELLED is
// terminal, CONFIRMED only re-enters CONFIRMED, SHIPPED never reverts
// to PENDING.
func PlanOrderTransition(current models.OrderStatus, target string, shipmentStatus *models.ShipmentStatus) (OrderTransition, error) {
	newStatus, ok := models.ParseOrderStatus(target)
	if !ok {
		return OrderTransition{}, database.Rulef("invalid order status: %s", target)
	}

	if current == models.OrderStatusCancelled {
		return OrderTransition{}, database.Rulef("cannot modify order with status CANCELLED")
	}
	if current == models.OrderStatusConfirmed && newStatus != models.OrderStatusConfirmed {
		return OrderTransition{}, database.Rulef("cannot modify order status once it is CONFIRMED")
	}
	if current == models.OrderStatusShipped && newStatus == models.OrderStatusPending {
		return OrderTransition{}, database.Rulef("cannot return an order to PENDING after it was SHIPPED")
	}

	tr := OrderTransition{NewStatus: newStatus}

	switch newStatus {
	case models.OrderStatusShipped:
		if shipmentStatus == nil {
			tr.CreateShipment = true
			tr.ShipmentStatus = models.ShipmentStatusOutForDelivery
			tr.DeliveryOffsetDays = 3
		} else {
			tr.UpdateShipment = true
			tr.ShipmentStatus = models.ShipmentStatusOutForDelivery
		}
	case models.OrderStatusConfirmed:
		if shipmentStatus == nil {
			tr.CreateShipment = true
			tr.ShipmentStatus = models.ShipmentStatusDelivered
		} else if *shipmentStatus != models.ShipmentStatusReturned {
			tr.UpdateShipment = true
			tr.ShipmentStatus = models.ShipmentStatusDelivered
		}
	case models.OrderStatusCancelled:
		if shipmentStatus != nil {
			tr.UpdateShipment = true
			tr.ShipmentStatus = models.ShipmentStatusReturned
		}
	}

	return tr, nil
}

// ShipmentTransition describes the order side effect of a direct
// shipment status change.
type ShipmentTransition struct {
	NewStatus models.ShipmentStatus
	// CancelOrder forces the owning order to CANCELLED. Set only when
	// the shipment is being returned and the order is not cancelled yet.
	CancelOrder bool
}

// PlanShipmentTransition validates a direct shipment status change.
// RETURNED is terminal, and a shipment may only be returned while its
// owning order is CONFIRMED.
func PlanShipmentTransition(current models.ShipmentStatus, target string, orderStatus models.OrderStatus) (ShipmentTransition, error) {
	if current == models.ShipmentStatusReturned {
		return ShipmentTransition{}, database.Rulef("cannot modify shipment with status RETURNED")
	}

	newStatus, ok := models.ParseShipmentStatus(target)
	if !ok {
		return ShipmentTransition{}, database.Rulef("invalid shipment status: %s", target)
	}

	if newStatus == models.ShipmentStatusReturned && orderStatus != models.OrderStatusConfirmed {
		return ShipmentTransition{}, database.Rulef("shipment can only be marked RETURNED while its order is CONFIRMED")
	}

	return ShipmentTransition{
		NewStatus:   newStatus,
		CancelOrder: newStatus == models.ShipmentStatusReturned && orderStatus != models.OrderStatusCancelled,
	}, nil
}

package models

import "strings"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// ParseOrderStatus normalizes a status name. The second return value is
// false for anything outside the four order states.
func ParseOrderStatus(name string) (OrderStatus, bool) {
	switch OrderStatus(strings.ToUpper(strings.TrimSpace(name))) {
	case OrderStatusPending:
		return OrderStatusPending, true
	case OrderStatusConfirmed:
		return OrderStatusConfirmed, true
	case OrderStatusShipped:
		return OrderStatusShipped, true
	case OrderStatusCancelled:
		return OrderStatusCancelled, true
	}
	return "", false
}

type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "ACTIVE"
	ProductStatusInactive ProductStatus = "INACTIVE"
)

type ShipmentStatus string

const (
	ShipmentStatusPending        ShipmentStatus = "PENDING"
	ShipmentStatusInTransit      ShipmentStatus = "IN_TRANSIT"
	ShipmentStatusOutForDelivery ShipmentStatus = "OUT_FOR_DELIVERY"
	ShipmentStatusDelivered      ShipmentStatus = "DELIVERED"
	ShipmentStatusReturned       ShipmentStatus = "RETURNED"
)

func ParseShipmentStatus(name string) (ShipmentStatus, bool) {
	switch ShipmentStatus(strings.ToUpper(strings.TrimSpace(name))) {
	case ShipmentStatusPending:
		return ShipmentStatusPending, true
	case ShipmentStatusInTransit:
		return ShipmentStatusInTransit, true
	case ShipmentStatusOutForDelivery:
		return ShipmentStatusOutForDelivery, true
	case ShipmentStatusDelivered:
		return ShipmentStatusDelivered, true
	case ShipmentStatusReturned:
		return ShipmentStatusReturned, true
	}
	return "", false
}

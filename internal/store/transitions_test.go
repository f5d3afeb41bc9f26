package store

import (
	"testing"

	"github.com/safar/go-order-fulfillment/internal/database"
	"github.com/safar/go-order-fulfillment/internal/models"
)

func shipmentStatus(s models.ShipmentStatus) *models.ShipmentStatus {
	return &s
}

func TestPlanOrderTransitionTable(t *testing.T) {
	// Every (current, target) pair either yields a plan or a rule
	// violation; nothing is unspecified.
	tests := []struct {
		name     string
		current  models.OrderStatus
		target   string
		shipment *models.ShipmentStatus
		wantErr  bool
		want     OrderTransition
	}{
		{
			name:    "pending to pending is a no-op",
			current: models.OrderStatusPending,
			target:  "PENDING",
			want:    OrderTransition{NewStatus: models.OrderStatusPending},
		},
		{
			name:    "pending to shipped creates shipment out for delivery",
			current: models.OrderStatusPending,
			target:  "SHIPPED",
			want: OrderTransition{
				NewStatus:          models.OrderStatusShipped,
				CreateShipment:     true,
				ShipmentStatus:     models.ShipmentStatusOutForDelivery,
				DeliveryOffsetDays: 3,
			},
		},
		{
			name:     "pending to shipped updates existing shipment",
			current:  models.OrderStatusPending,
			target:   "SHIPPED",
			shipment: shipmentStatus(models.ShipmentStatusPending),
			want: OrderTransition{
				NewStatus:      models.OrderStatusShipped,
				UpdateShipment: true,
				ShipmentStatus: models.ShipmentStatusOutForDelivery,
			},
		},
		{
			name:    "pending to confirmed creates delivered shipment",
			current: models.OrderStatusPending,
			target:  "CONFIRMED",
			want: OrderTransition{
				NewStatus:      models.OrderStatusConfirmed,
				CreateShipment: true,
				ShipmentStatus: models.ShipmentStatusDelivered,
			},
		},
		{
			name:     "pending to confirmed delivers existing shipment",
			current:  models.OrderStatusPending,
			target:   "CONFIRMED",
			shipment: shipmentStatus(models.ShipmentStatusInTransit),
			want: OrderTransition{
				NewStatus:      models.OrderStatusConfirmed,
				UpdateShipment: true,
				ShipmentStatus: models.ShipmentStatusDelivered,
			},
		},
		{
			name:     "confirming leaves returned shipment alone",
			current:  models.OrderStatusPending,
			target:   "CONFIRMED",
			shipment: shipmentStatus(models.ShipmentStatusReturned),
			want:     OrderTransition{NewStatus: models.OrderStatusConfirmed},
		},
		{
			name:    "pending to cancelled without shipment",
			current: models.OrderStatusPending,
			target:  "CANCELLED",
			want:    OrderTransition{NewStatus: models.OrderStatusCancelled},
		},
		{
			name:     "cancelling returns existing shipment",
			current:  models.OrderStatusPending,
			target:   "CANCELLED",
			shipment: shipmentStatus(models.ShipmentStatusDelivered),
			want: OrderTransition{
				NewStatus:      models.OrderStatusCancelled,
				UpdateShipment: true,
				ShipmentStatus: models.ShipmentStatusReturned,
			},
		},
		{
			name:    "shipped to pending is forbidden",
			current: models.OrderStatusShipped,
			target:  "PENDING",
			wantErr: true,
		},
		{
			name:     "shipped to shipped re-applies out for delivery",
			current:  models.OrderStatusShipped,
			target:   "SHIPPED",
			shipment: shipmentStatus(models.ShipmentStatusOutForDelivery),
			want: OrderTransition{
				NewStatus:      models.OrderStatusShipped,
				UpdateShipment: true,
				ShipmentStatus: models.ShipmentStatusOutForDelivery,
			},
		},
		{
			name:     "shipped to confirmed delivers shipment",
			current:  models.OrderStatusShipped,
			target:   "CONFIRMED",
			shipment: shipmentStatus(models.ShipmentStatusOutForDelivery),
			want: OrderTransition{
				NewStatus:      models.OrderStatusConfirmed,
				UpdateShipment: true,
				ShipmentStatus: models.ShipmentStatusDelivered,
			},
		},
		{
			name:     "shipped to cancelled returns shipment",
			current:  models.OrderStatusShipped,
			target:   "CANCELLED",
			shipment: shipmentStatus(models.ShipmentStatusOutForDelivery),
			want: OrderTransition{
				NewStatus:      models.OrderStatusCancelled,
				UpdateShipment: true,
				ShipmentStatus: models.ShipmentStatusReturned,
			},
		},
		{
			name:     "confirmed to confirmed is allowed",
			current:  models.OrderStatusConfirmed,
			target:   "CONFIRMED",
			shipment: shipmentStatus(models.ShipmentStatusDelivered),
			want: OrderTransition{
				NewStatus:      models.OrderStatusConfirmed,
				UpdateShipment: true,
				ShipmentStatus: models.ShipmentStatusDelivered,
			},
		},
		{
			name:    "confirmed to pending is forbidden",
			current: models.OrderStatusConfirmed,
			target:  "PENDING",
			wantErr: true,
		},
		{
			name:    "confirmed to shipped is forbidden",
			current: models.OrderStatusConfirmed,
			target:  "SHIPPED",
			wantErr: true,
		},
		{
			name:    "confirmed to cancelled is forbidden",
			current: models.OrderStatusConfirmed,
			target:  "CANCELLED",
			wantErr: true,
		},
		{
			name:    "cancelled is terminal for pending target",
			current: models.OrderStatusCancelled,
			target:  "PENDING",
			wantErr: true,
		},
		{
			name:    "cancelled is terminal for shipped target",
			current: models.OrderStatusCancelled,
			target:  "SHIPPED",
			wantErr: true,
		},
		{
			name:    "cancelled is terminal for confirmed target",
			current: models.OrderStatusCancelled,
			target:  "CONFIRMED",
			wantErr: true,
		},
		{
			name:    "cancelled is terminal for cancelled target",
			current: models.OrderStatusCancelled,
			target:  "CANCELLED",
			wantErr: true,
		},
		{
			name:    "unknown status name is rejected",
			current: models.OrderStatusPending,
			target:  "DELIVERED",
			wantErr: true,
		},
		{
			name:    "status names are case-insensitive",
			current: models.OrderStatusPending,
			target:  "shipped",
			want: OrderTransition{
				NewStatus:          models.OrderStatusShipped,
				CreateShipment:     true,
				ShipmentStatus:     models.ShipmentStatusOutForDelivery,
				DeliveryOffsetDays: 3,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PlanOrderTransition(tt.current, tt.target, tt.shipment)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error, got plan %+v", got)
				}
				if !database.IsRuleViolation(err) {
					t.Errorf("Expected rule violation, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected plan %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestPlanShipmentTransition(t *testing.T) {
	tests := []struct {
		name        string
		current     models.ShipmentStatus
		target      string
		orderStatus models.OrderStatus
		wantErr     bool
		want        ShipmentTransition
	}{
		{
			name:        "pending to in transit",
			current:     models.ShipmentStatusPending,
			target:      "IN_TRANSIT",
			orderStatus: models.OrderStatusShipped,
			want:        ShipmentTransition{NewStatus: models.ShipmentStatusInTransit},
		},
		{
			name:        "in transit to out for delivery",
			current:     models.ShipmentStatusInTransit,
			target:      "OUT_FOR_DELIVERY",
			orderStatus: models.OrderStatusShipped,
			want:        ShipmentTransition{NewStatus: models.ShipmentStatusOutForDelivery},
		},
		{
			name:        "returned is terminal",
			current:     models.ShipmentStatusReturned,
			target:      "DELIVERED",
			orderStatus: models.OrderStatusCancelled,
			wantErr:     true,
		},
		{
			name:        "returned target requires confirmed order",
			current:     models.ShipmentStatusDelivered,
			target:      "RETURNED",
			orderStatus: models.OrderStatusShipped,
			wantErr:     true,
		},
		{
			name:        "returning a confirmed order's shipment cancels the order",
			current:     models.ShipmentStatusDelivered,
			target:      "RETURNED",
			orderStatus: models.OrderStatusConfirmed,
			want: ShipmentTransition{
				NewStatus:   models.ShipmentStatusReturned,
				CancelOrder: true,
			},
		},
		{
			name:        "unknown status name is rejected",
			current:     models.ShipmentStatusPending,
			target:      "LOST",
			orderStatus: models.OrderStatusShipped,
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PlanShipmentTransition(tt.current, tt.target, tt.orderStatus)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error, got plan %+v", got)
				}
				if !database.IsRuleViolation(err) {
					t.Errorf("Expected rule violation, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected plan %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestNewTrackingCodeFormat(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := NewTrackingCode()
		if len(code) != 12 || code[:4] != "TRK-" {
			t.Fatalf("Unexpected tracking code format: %s", code)
		}
		for _, c := range code[4:] {
			if !(c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
				t.Fatalf("Unexpected character %q in tracking code %s", c, code)
			}
		}
		if seen[code] {
			t.Fatalf("Duplicate tracking code: %s", code)
		}
		seen[code] = true
	}
}

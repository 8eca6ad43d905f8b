package services

import (
	"context"
	"errors"
	"testing"

	"github.com/avelez/boxkeep/core"
)

func seedOrders(storage *FakeStorage) {
	_ = storage.CreateUser(context.Background(), &core.User{ID: "user-1", Email: "alice@example.com"})
	_ = storage.CreateUser(context.Background(), &core.User{ID: "user-2", Email: "bob@example.com"})
	_ = storage.CreateOrderFromEvent(context.Background(), "evt_1", &core.Order{
		ID: "order-1", UserID: "user-1", Status: core.StatusAwaitingKitShipment,
	}, nil)
	_ = storage.CreateOrderFromEvent(context.Background(), "evt_2", &core.Order{
		ID: "order-2", UserID: "user-2", Status: core.StatusAwaitingPickupScheduling,
	}, nil)
}

func TestOrderService_GetOrders(t *testing.T) {
	storage := NewFakeStorage()
	seedOrders(storage)
	service := NewOrderService(storage)

	orders, err := service.GetOrders(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetOrders() unexpected error: %v", err)
	}
	if len(orders) != 1 || orders[0].ID != "order-1" {
		t.Errorf("GetOrders() = %+v", orders)
	}

	if _, err := service.GetOrders(context.Background(), "ghost"); !errors.Is(err, core.ErrUserNotFound) {
		t.Errorf("GetOrders() error = %v, want %v", err, core.ErrUserNotFound)
	}
}

func TestOrderService_ValidateOrderOwnership(t *testing.T) {
	storage := NewFakeStorage()
	seedOrders(storage)
	service := NewOrderService(storage)

	owned, err := service.ValidateOrderOwnership(context.Background(), "user-1", "order-1")
	if err != nil || !owned {
		t.Errorf("ValidateOrderOwnership() = %v, %v; want true", owned, err)
	}

	owned, err = service.ValidateOrderOwnership(context.Background(), "user-1", "order-2")
	if err != nil || owned {
		t.Errorf("ValidateOrderOwnership() = %v, %v; want false", owned, err)
	}

	if _, err := service.ValidateOrderOwnership(context.Background(), "user-1", "ghost"); !errors.Is(err, core.ErrOrderNotFound) {
		t.Errorf("ValidateOrderOwnership() error = %v, want %v", err, core.ErrOrderNotFound)
	}
}

func TestOrderService_ChangeOrderStatus(t *testing.T) {
	storage := NewFakeStorage()
	seedOrders(storage)
	service := NewOrderService(storage)

	order, err := service.ChangeOrderStatus(context.Background(), "order-1", core.StatusAwaitingPickupScheduling)
	if err != nil {
		t.Fatalf("ChangeOrderStatus() unexpected error: %v", err)
	}
	if order.Status != core.StatusAwaitingPickupScheduling {
		t.Errorf("status = %q", order.Status)
	}
}

func TestOrderService_ListOrders(t *testing.T) {
	storage := NewFakeStorage()
	seedOrders(storage)
	service := NewOrderService(storage)

	tests := []struct {
		name   string
		filter core.OrderFilter
		want   int
	}{
		{name: "no filter", want: 2},
		{name: "by user", filter: core.OrderFilter{UserID: "user-2"}, want: 1},
		{name: "by status", filter: core.OrderFilter{Status: core.StatusAwaitingKitShipment}, want: 1},
		{name: "by user and status, no match", filter: core.OrderFilter{UserID: "user-2", Status: core.StatusAwaitingKitShipment}, want: 0},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			orders, err := service.ListOrders(context.Background(), test.filter)
			if err != nil {
				t.Fatalf("ListOrders() unexpected error: %v", err)
			}
			if len(orders) != test.want {
				t.Errorf("ListOrders() = %d orders, want %d", len(orders), test.want)
			}
		})
	}
}

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/avelez/boxkeep/core"
)

// OrderService exposes the read and status surfaces over orders.
// Creation happens only in the payment webhook flow.
type OrderService struct {
	db core.Storage
}

func NewOrderService(db core.Storage) *OrderService {
	return &OrderService{db: db}
}

// GetOrders lists the orders owned by a user.
func (s *OrderService) GetOrders(ctx context.Context, userID string) ([]*core.Order, error) {
	if _, err := s.db.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	orders, err := s.db.GetOrdersByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (s *OrderService) GetOrderByID(ctx context.Context, orderID string) (*core.Order, error) {
	return s.db.GetOrderByID(ctx, orderID)
}

// ChangeOrderStatus moves an order to a new state. Transitions beyond the
// two initial states are driven by the fulfillment flow calling this.
func (s *OrderService) ChangeOrderStatus(ctx context.Context, orderID string, status core.OrderStatus) (*core.Order, error) {
	if err := s.db.UpdateOrderStatus(ctx, orderID, status); err != nil {
		return nil, err
	}
	return s.db.GetOrderByID(ctx, orderID)
}

// ValidateOrderOwnership reports whether the order belongs to the user.
func (s *OrderService) ValidateOrderOwnership(ctx context.Context, userID, orderID string) (bool, error) {
	order, err := s.db.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, core.ErrOrderNotFound) {
			return false, err
		}
		return false, fmt.Errorf("failed to load order: %w", err)
	}
	return order.UserID == userID, nil
}

// ListOrders is the admin view with optional customer and status filters.
func (s *OrderService) ListOrders(ctx context.Context, filter core.OrderFilter) ([]*core.Order, error) {
	orders, err := s.db.ListOrders(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

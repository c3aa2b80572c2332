package service

import (
	"context"

	"github.com/ainan-ahmed/EcommForAll-sub001/internal/order/domain"
	"github.com/google/uuid"
)

const defaultListLimit = 20

// GetOrder returns the order only to its owner.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrForbidden
	}
	return order, nil
}

// ListOrders returns the user's orders, most recent first.
func (s *OrderService) ListOrders(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Order, error) {
	if limit < 1 {
		limit = defaultListLimit
	}
	return s.repo.ListOrdersByUserID(ctx, userID, limit)
}

// HasActiveOrder reports whether the user has any order that has not yet
// reached a terminal status.
func (s *OrderService) HasActiveOrder(ctx context.Context, userID uuid.UUID) (bool, error) {
	return s.repo.HasActiveOrder(ctx, userID)
}

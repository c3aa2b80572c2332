package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ainan-ahmed/EcommForAll-sub001/internal/order/domain"
	"github.com/ainan-ahmed/EcommForAll-sub001/internal/order/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StatusUpdate carries a requested transition plus its per-target fields.
// Tracking data is required when moving to SHIPPED, a reason when moving to
// CANCELLED; both are ignored for other targets.
type StatusUpdate struct {
	To                 domain.OrderStatus
	TrackingNumber     string
	Carrier            string
	CancellationReason string
}

// UpdateStatus advances the order lifecycle. The transition is validated
// against the loaded status and then applied with a compare-and-set, so two
// racing updates cannot both win.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, upd StatusUpdate) (*domain.Order, error) {
	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(upd.To) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, upd.To)
	}

	patch := repository.StatusPatch{}
	switch upd.To {
	case domain.OrderStatusShipped:
		if strings.TrimSpace(upd.TrackingNumber) == "" || strings.TrimSpace(upd.Carrier) == "" {
			return nil, ErrMissingTracking
		}
		patch.TrackingNumber = &upd.TrackingNumber
		patch.Carrier = &upd.Carrier
	case domain.OrderStatusCancelled:
		if strings.TrimSpace(upd.CancellationReason) == "" {
			return nil, ErrMissingReason
		}
		patch.CancellationReason = &upd.CancellationReason
	}

	if err := s.repo.UpdateStatus(ctx, orderID, order.Status, upd.To, patch); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, ErrConcurrentModification
		}
		return nil, err
	}

	s.logger.Info("order status updated",
		zap.String("order_id", orderID.String()),
		zap.String("from", order.Status.String()),
		zap.String("to", upd.To.String()))

	return s.repo.GetOrderByID(ctx, orderID)
}

// CancelOrder is the customer-facing cancellation path: it checks ownership
// before delegating to the same transition machinery.
func (s *OrderService) CancelOrder(ctx context.Context, userID, orderID uuid.UUID, reason string) (*domain.Order, error) {
	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrForbidden
	}
	return s.UpdateStatus(ctx, orderID, StatusUpdate{
		To:                 domain.OrderStatusCancelled,
		CancellationReason: reason,
	})
}

// UpdatePaymentStatus advances the payment axis independently of the order
// status.
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, to domain.PaymentStatus) (*domain.Order, error) {
	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.PaymentStatus.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.PaymentStatus, to)
	}

	if err := s.repo.UpdatePaymentStatus(ctx, orderID, order.PaymentStatus, to); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, ErrConcurrentModification
		}
		return nil, err
	}

	s.logger.Info("payment status updated",
		zap.String("order_id", orderID.String()),
		zap.String("from", order.PaymentStatus.String()),
		zap.String("to", to.String()))

	return s.repo.GetOrderByID(ctx, orderID)
}

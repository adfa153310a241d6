package service

import (
	"context"
	"strings"

	"github.com/leafcart/internal/constants"
	"github.com/leafcart/internal/logger"
	"github.com/leafcart/internal/models"

	"gorm.io/gorm"
)

// 订单状态流转：pending → processing → shipped → delivered，
// 未到终态前均可取消。
var allowedTransitions = map[string]map[string]bool{
	constants.OrderStatusPending: {
		constants.OrderStatusProcessing: true,
		constants.OrderStatusCancelled:  true,
	},
	constants.OrderStatusProcessing: {
		constants.OrderStatusShipped:   true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusShipped: {
		constants.OrderStatusDelivered: true,
		constants.OrderStatusCancelled: true,
	},
}

// 支付状态流转（仅记录标记）
var allowedPaymentTransitions = map[string]map[string]bool{
	constants.PaymentStatusPending: {
		constants.PaymentStatusPaid:     true,
		constants.PaymentStatusFailed:   true,
		constants.PaymentStatusRefunded: true,
	},
	constants.PaymentStatusPaid: {
		constants.PaymentStatusRefunded: true,
	},
}

// UpdateOrderStatusInput 后台更新订单状态输入
type UpdateOrderStatusInput struct {
	Status         string
	TrackingNumber string
	ActorID        uint
}

// UpdateStatus 更新订单状态
// 取消未发货订单释放预留库存；发货时将预留转为出库。
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uint, input UpdateOrderStatusInput) (*models.Order, error) {
	target := strings.ToLower(strings.TrimSpace(input.Status))
	if !isKnownOrderStatus(target) {
		return nil, ErrInvalidOrderStatus
	}

	var from string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		inventory := s.inventory.WithTx(tx)
		order, err := orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		from = order.Status
		if !canTransitionStatus(from, target) {
			return ErrOrderStatusInvalid
		}

		now := s.now()
		updates := map[string]interface{}{
			"status":     target,
			"updated_at": now,
		}
		switch target {
		case constants.OrderStatusCancelled:
			updates["cancelled_at"] = now
			if from == constants.OrderStatusPending || from == constants.OrderStatusProcessing {
				for _, line := range aggregateLines(order.Items) {
					if err := inventory.Release(line.ProductID, line.Quantity); err != nil {
						return err
					}
				}
			}
		case constants.OrderStatusShipped:
			updates["shipped_at"] = now
			if tracking := strings.TrimSpace(input.TrackingNumber); tracking != "" {
				updates["tracking_number"] = tracking
			}
			for _, line := range aggregateLines(order.Items) {
				if err := inventory.Consume(line.ProductID, line.Quantity); err != nil {
					return err
				}
			}
		case constants.OrderStatusDelivered:
			updates["delivered_at"] = now
		}
		return orderRepo.UpdateFields(order.ID, updates)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveStatusTransition(from, target)
	logger.Infow("order_status_updated",
		"order_id", orderID,
		"from", from,
		"to", target,
		"actor_id", input.ActorID,
	)
	return s.orderRepo.GetByID(orderID)
}

// UpdatePaymentStatus 更新支付状态标记
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, orderID uint, status string, actorID uint) (*models.Order, error) {
	target := strings.ToLower(strings.TrimSpace(status))
	if !isKnownPaymentStatus(target) {
		return nil, ErrInvalidPaymentStatus
	}

	var from string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		order, err := orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		from = order.PaymentStatus
		nexts, ok := allowedPaymentTransitions[from]
		if !ok || !nexts[target] {
			return ErrPaymentStatusTransition
		}
		return orderRepo.UpdateFields(order.ID, map[string]interface{}{
			"payment_status": target,
		})
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("order_payment_status_updated",
		"order_id", orderID,
		"from", from,
		"to", target,
		"actor_id", actorID,
	)
	return s.orderRepo.GetByID(orderID)
}

func canTransitionStatus(current, target string) bool {
	nexts, ok := allowedTransitions[current]
	if !ok {
		return false
	}
	return nexts[target]
}

func isKnownOrderStatus(status string) bool {
	switch status {
	case constants.OrderStatusPending,
		constants.OrderStatusProcessing,
		constants.OrderStatusShipped,
		constants.OrderStatusDelivered,
		constants.OrderStatusCancelled:
		return true
	default:
		return false
	}
}

func isKnownPaymentStatus(status string) bool {
	switch status {
	case constants.PaymentStatusPending,
		constants.PaymentStatusPaid,
		constants.PaymentStatusFailed,
		constants.PaymentStatusRefunded:
		return true
	default:
		return false
	}
}

package service

import (
	"strings"

	"github.com/leafcart/internal/models"
	"github.com/leafcart/internal/repository"
)

// GetOrderForUser 获取用户自己的订单
func (s *OrderService) GetOrderForUser(userID, orderID uint) (*models.Order, error) {
	if userID == 0 {
		return nil, ErrUserRequired
	}
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetOrderByNoForUser 按订单号获取用户订单
func (s *OrderService) GetOrderByNoForUser(userID uint, orderNo string) (*models.Order, error) {
	if userID == 0 {
		return nil, ErrUserRequired
	}
	orderNo = strings.TrimSpace(orderNo)
	if orderNo == "" {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.GetByOrderNoAndUser(orderNo, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListOrdersForUser 用户订单列表
func (s *OrderService) ListOrdersForUser(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	if filter.UserID == 0 {
		return nil, 0, ErrUserRequired
	}
	if err := normalizeOrderFilter(&filter); err != nil {
		return nil, 0, err
	}
	return s.orderRepo.ListByUser(filter)
}

// ListOrdersAdmin 后台订单列表
func (s *OrderService) ListOrdersAdmin(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	if err := normalizeOrderFilter(&filter); err != nil {
		return nil, 0, err
	}
	return s.orderRepo.ListAdmin(filter)
}

// GetOrderAdmin 后台获取订单详情
func (s *OrderService) GetOrderAdmin(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func normalizeOrderFilter(filter *repository.OrderListFilter) error {
	filter.Status = strings.ToLower(strings.TrimSpace(filter.Status))
	if filter.Status != "" && !isKnownOrderStatus(filter.Status) {
		return ErrInvalidOrderStatus
	}
	filter.PaymentStatus = strings.ToLower(strings.TrimSpace(filter.PaymentStatus))
	if filter.PaymentStatus != "" && !isKnownPaymentStatus(filter.PaymentStatus) {
		return ErrInvalidPaymentStatus
	}
	return nil
}

package service

import (
	"strings"
	"time"

	"github.com/leafcart/internal/constants"
	"github.com/leafcart/internal/logger"
	"github.com/leafcart/internal/metrics"
	"github.com/leafcart/internal/models"
	"github.com/leafcart/internal/repository"

	"gorm.io/gorm"
)

// InventoryService 库存账本服务
// 所有写操作都可通过 WithTx 绑定到调用方事务。
type InventoryService struct {
	db      *gorm.DB
	repo    repository.InventoryRepository
	metrics *metrics.OrderMetrics
}

// NewInventoryService 创建库存服务
func NewInventoryService(db *gorm.DB, repo repository.InventoryRepository, m *metrics.OrderMetrics) *InventoryService {
	return &InventoryService{db: db, repo: repo, metrics: m}
}

// WithTx 绑定事务
func (s *InventoryService) WithTx(tx *gorm.DB) *InventoryService {
	if tx == nil {
		return s
	}
	return &InventoryService{db: tx, repo: s.repo.WithTx(tx), metrics: s.metrics}
}

// AdjustStockInput 库存调整输入
type AdjustStockInput struct {
	ProductID  uint
	Delta      int
	ChangeType string
	ActorID    uint
	Notes      string
}

// CheckAvailability 判断可用量是否满足需求
// 记录不存在视为不可用而非错误；在事务内以行锁读取。
func (s *InventoryService) CheckAvailability(productID uint, quantity int) (bool, error) {
	if quantity <= 0 {
		return false, ErrInvalidQuantity
	}
	inv, err := s.repo.GetByProductIDForUpdate(productID)
	if err != nil {
		return false, err
	}
	if inv == nil {
		return false, nil
	}
	return inv.Available() >= quantity, nil
}

// PeekAvailability 不加锁的可用性检查（仅用于金额预览）
func (s *InventoryService) PeekAvailability(productID uint, quantity int) (bool, error) {
	if quantity <= 0 {
		return false, ErrInvalidQuantity
	}
	inv, err := s.repo.GetByProductID(productID)
	if err != nil {
		return false, err
	}
	if inv == nil {
		return false, nil
	}
	return inv.Available() >= quantity, nil
}

// Reserve 在调用方事务内增加预留量
// 条件更新保证并发下不会超卖，未命中返回 OutOfStockError。
func (s *InventoryService) Reserve(productID uint, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	ok, err := s.repo.Reserve(productID, quantity)
	if err != nil {
		return err
	}
	if !ok {
		return &OutOfStockError{ProductID: productID}
	}
	return nil
}

// Release 释放预留量（订单取消）
func (s *InventoryService) Release(productID uint, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	ok, err := s.repo.Release(productID, quantity)
	if err != nil {
		return err
	}
	if !ok {
		logger.Warnw("inventory_release_skipped", "product_id", productID, "quantity", quantity)
	}
	return nil
}

// Consume 出库（订单发货），同时扣减在库量与预留量
func (s *InventoryService) Consume(productID uint, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	ok, err := s.repo.Consume(productID, quantity)
	if err != nil {
		return err
	}
	if !ok {
		return ErrStockBelowReserved
	}
	return nil
}

// AdjustStock 调整在库量并追加库存日志
func (s *InventoryService) AdjustStock(input AdjustStockInput) (*models.Inventory, error) {
	changeType := strings.ToLower(strings.TrimSpace(input.ChangeType))
	if changeType == "" {
		if input.Delta > 0 {
			changeType = constants.InventoryChangeRestock
		} else {
			changeType = constants.InventoryChangeAdjustment
		}
	}
	if !isValidChangeType(changeType) || input.Delta == 0 {
		return nil, ErrInvalidStockChange
	}

	var result *models.Inventory
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		inv, err := repo.GetByProductIDForUpdate(input.ProductID)
		if err != nil {
			return err
		}
		if inv == nil {
			return ErrInventoryNotFound
		}

		var restockedAt *time.Time
		if input.Delta > 0 {
			now := time.Now()
			restockedAt = &now
		}
		ok, err := repo.ApplyDelta(input.ProductID, input.Delta, restockedAt)
		if err != nil {
			return err
		}
		if !ok {
			return ErrStockBelowReserved
		}

		entry := &models.InventoryLog{
			ProductID:     input.ProductID,
			ChangeType:    changeType,
			QuantityDelta: input.Delta,
			Notes:         strings.TrimSpace(input.Notes),
			ActorID:       input.ActorID,
		}
		if err := repo.CreateLog(entry); err != nil {
			return err
		}

		result, err = repo.GetByProductID(input.ProductID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveStockAdjustment(changeType)
	logger.Infow("inventory_adjusted",
		"product_id", input.ProductID,
		"delta", input.Delta,
		"change_type", changeType,
		"actor_id", input.ActorID,
	)
	return result, nil
}

// SetLowStockThreshold 设置低库存阈值
func (s *InventoryService) SetLowStockThreshold(productID uint, threshold int) (*models.Inventory, error) {
	if threshold < 0 {
		return nil, ErrInvalidThreshold
	}
	ok, err := s.repo.UpdateThreshold(productID, threshold)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInventoryNotFound
	}
	return s.repo.GetByProductID(productID)
}

// EnsureRecord 确保商品存在库存记录（已存在则原样返回）
func (s *InventoryService) EnsureRecord(productID uint, quantity, threshold int) (*models.Inventory, error) {
	if quantity < 0 || threshold < 0 {
		return nil, ErrInvalidStockChange
	}
	inv, err := s.repo.GetByProductID(productID)
	if err != nil {
		return nil, err
	}
	if inv != nil {
		return inv, nil
	}
	now := time.Now()
	inv = &models.Inventory{
		ProductID:         productID,
		Quantity:          quantity,
		LowStockThreshold: threshold,
	}
	if quantity > 0 {
		inv.LastRestockDate = &now
	}
	if err := s.repo.Create(inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// GetByProduct 获取商品库存
func (s *InventoryService) GetByProduct(productID uint) (*models.Inventory, error) {
	inv, err := s.repo.GetByProductID(productID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, ErrInventoryNotFound
	}
	return inv, nil
}

// ListLowStock 低库存列表（可用量升序）
func (s *InventoryService) ListLowStock() ([]models.Inventory, error) {
	return s.repo.ListLowStock()
}

// List 库存分页列表
func (s *InventoryService) List(filter repository.InventoryListFilter) ([]models.Inventory, int64, error) {
	return s.repo.List(filter)
}

// ListLogs 库存日志分页列表
func (s *InventoryService) ListLogs(filter repository.InventoryLogListFilter) ([]models.InventoryLog, int64, error) {
	if filter.ChangeType != "" {
		filter.ChangeType = strings.ToLower(strings.TrimSpace(filter.ChangeType))
		if !isValidChangeType(filter.ChangeType) {
			return nil, 0, ErrInvalidStockChange
		}
	}
	return s.repo.ListLogs(filter)
}

func isValidChangeType(changeType string) bool {
	switch changeType {
	case constants.InventoryChangeAdjustment, constants.InventoryChangeRestock, constants.InventoryChangeReservation:
		return true
	default:
		return false
	}
}
